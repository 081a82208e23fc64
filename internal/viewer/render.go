// Package viewer draws a ring-toss session in a terminal.
package viewer

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/ringtoss/backend/internal/game"
	"github.com/ringtoss/backend/internal/physics"
)

// Viewport maps the tank's x/y plane onto terminal cells. Row 0 holds the
// status line and the last row the key help.
type Viewport struct {
	Cols, Rows int
}

// Project returns the cell for a world position.
func (v Viewport) Project(p physics.Vec3) (col, row int, ok bool) {
	if v.Cols < 3 || v.Rows < 4 {
		return 0, 0, false
	}
	left := -game.TankWidth / 2
	bottom := game.FloorY
	fx := (p.X - left) / game.TankWidth
	fy := (p.Y - bottom) / game.TankHeight
	if fx < 0 || fx > 1 || fy < 0 || fy > 1 {
		return 0, 0, false
	}

	inner := v.Rows - 2
	col = int(math.Round(fx * float64(v.Cols-1)))
	row = 1 + int(math.Round((1-fy)*float64(inner-1)))
	return col, row, true
}

func rgb(c uint32) tcell.Color {
	return tcell.NewRGBColor(int32(c>>16&0xff), int32(c>>8&0xff), int32(c&0xff))
}

// Draw renders snap onto screen. It does not call Show.
func Draw(screen tcell.Screen, snap *game.Snapshot, muted bool) {
	screen.Clear()
	cols, rows := screen.Size()
	v := Viewport{Cols: cols, Rows: rows}
	base := tcell.StyleDefault

	drawTank(screen, v, base.Foreground(tcell.ColorGray))

	for _, p := range snap.Pegs {
		style := base.Foreground(rgb(p.Color))
		bottom := p.Position.Y - p.PinHeight/2
		for y := bottom; y <= p.Top; y += game.TankHeight / float64(max(rows-2, 1)) {
			if c, r, ok := v.Project(physics.Vec3{X: p.Position.X, Y: y}); ok {
				screen.SetContent(c, r, '|', nil, style)
			}
		}
		if c, r, ok := v.Project(physics.Vec3{X: p.Position.X, Y: bottom}); ok {
			for dc := -1; dc <= 1; dc++ {
				screen.SetContent(c+dc, r, '=', nil, style)
			}
		}
	}

	for _, b := range snap.Bubbles {
		if c, r, ok := v.Project(b.Position); ok {
			screen.SetContent(c, r, 'o', nil, base.Foreground(tcell.ColorLightCyan))
		}
	}

	for _, ring := range snap.Rings {
		c, r, ok := v.Project(ring.Position)
		if !ok {
			continue
		}
		style := base.Foreground(rgb(ring.Color))
		glyph := 'O'
		if ring.Seated {
			style = style.Bold(true).Reverse(true)
			glyph = '@'
		}
		screen.SetContent(c, r, glyph, nil, style)
	}

	status := fmt.Sprintf(" score %d/%d  best %d  round %d  power %.0f", snap.Score, snap.Total, snap.Best, snap.Round, snap.BubblePower)
	if snap.Pumping {
		status += "  [pump]"
	}
	if muted {
		status += "  [muted]"
	}
	if snap.Won {
		status += "  ALL RINGS SEATED!"
	}
	drawText(screen, 0, 0, status, base.Bold(true))
	drawText(screen, 0, rows-1, " arrows/w/s push  x random  d drop  space/p pump  +/- power  n reset  m mute  q quit", base.Foreground(tcell.ColorGray))
}

func drawTank(screen tcell.Screen, v Viewport, style tcell.Style) {
	for r := 1; r < v.Rows-1; r++ {
		screen.SetContent(0, r, '│', nil, style)
		screen.SetContent(v.Cols-1, r, '│', nil, style)
	}
	for c := 0; c < v.Cols; c++ {
		screen.SetContent(c, v.Rows-2, '─', nil, style)
	}

	// Slope, sampled along its length.
	a, b := game.SlopeEnds()
	for i := 0; i <= 40; i++ {
		f := float64(i) / 40
		p := physics.Vec3{X: a.X + (b.X-a.X)*f, Y: a.Y + (b.Y-a.Y)*f}
		if c, r, ok := v.Project(p); ok {
			screen.SetContent(c, r, '\\', nil, style)
		}
	}
}

func drawText(screen tcell.Screen, col, row int, text string, style tcell.Style) {
	for i, ch := range []rune(text) {
		screen.SetContent(col+i, row, ch, nil, style)
	}
}
