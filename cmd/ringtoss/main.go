// Command ringtoss runs a single tank locally and draws it in the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/ringtoss/backend/internal/config"
	"github.com/ringtoss/backend/internal/game"
	"github.com/ringtoss/backend/internal/viewer"
)

type frame struct {
	snap   *game.Snapshot
	events []game.Event
}

func main() {
	rings := flag.Int("rings", 5, "number of rings (1-20)")
	layout := flag.String("layout", "classic", "peg layout preset")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	quiet := flag.Bool("quiet", false, "disable sound")
	flag.Parse()

	if err := run(*rings, *layout, *seed, *quiet); err != nil {
		fmt.Fprintln(os.Stderr, "ringtoss:", err)
		os.Exit(1)
	}
}

func run(rings int, layout string, seed int64, quiet bool) error {
	cfg := config.Load()

	layouts := game.DefaultLayouts()
	if cfg.LayoutsFile != "" {
		var err error
		if layouts, err = game.LoadLayoutsFile(cfg.LayoutsFile); err != nil {
			return err
		}
	}

	s, err := game.NewSession(game.SessionConfig{
		ID:      "local",
		Rings:   rings,
		Layout:  layout,
		Seed:    seed,
		Tuning:  cfg.Tuning(),
		World:   cfg.World(),
		Layouts: layouts,
		Logger:  zap.NewNop(),
	})
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.HideCursor()

	var sound *viewer.Sound
	if !quiet {
		// Terminals without an audio device still get the game.
		sound, _ = viewer.NewSound()
	}

	frames := make(chan frame, 4)
	s.OnTick(func(snap *game.Snapshot, events []game.Event) {
		select {
		case frames <- frame{snap, events}:
		default:
			// Drop the frame but never the events.
			if len(events) > 0 {
				go func() { frames <- frame{snap, events} }()
			}
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx, cfg.TickRateHz)

	keyEvents := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			keyEvents <- ev
		}
	}()

	keys := viewer.NewKeys()
	muted := sound.Muted()
	redraw := time.NewTicker(time.Second / 30)
	defer redraw.Stop()

	latest := s.Snapshot()
	for {
		select {
		case f := <-frames:
			latest = f.snap
			sound.Play(f.events)

		case ev := <-keyEvents:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
			case *tcell.EventKey:
				action, ctl := keys.Handle(ev)
				switch action {
				case viewer.ActionQuit:
					return nil
				case viewer.ActionMute:
					muted = sound.ToggleMute()
				case viewer.ActionControl:
					_ = s.Apply(ctl)
				}
			}

		case <-redraw.C:
			viewer.Draw(screen, latest, muted)
			screen.Show()
		}
	}
}
