package viewer

import (
	"github.com/gdamore/tcell/v2"

	"github.com/ringtoss/backend/internal/game"
)

// Action is a key binding's effect outside the session.
type Action int

const (
	ActionNone Action = iota
	ActionControl
	ActionQuit
	ActionMute
)

// PushStrength is the impulse applied per key press.
const PushStrength = 4.0

// Keys turns key presses into session controls. It remembers the bubble
// power so +/- step from the current value.
type Keys struct {
	power float64
}

func NewKeys() *Keys {
	return &Keys{power: game.DefaultBubblePower}
}

// Handle maps ev to an action and, for ActionControl, the control to apply.
func (k *Keys) Handle(ev *tcell.EventKey) (Action, game.Control) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return ActionQuit, game.Control{}
	case tcell.KeyUp:
		return push(game.DirUp)
	case tcell.KeyDown:
		return push(game.DirDown)
	case tcell.KeyLeft:
		return push(game.DirLeft)
	case tcell.KeyRight:
		return push(game.DirRight)
	case tcell.KeyRune:
	default:
		return ActionNone, game.Control{}
	}

	switch ev.Rune() {
	case 'q':
		return ActionQuit, game.Control{}
	case 'm':
		return ActionMute, game.Control{}
	case 'w':
		return push(game.DirForward)
	case 's':
		return push(game.DirBackward)
	case 'x':
		return ActionControl, game.Control{Type: game.ControlRandom, Strength: PushStrength}
	case 'd':
		return ActionControl, game.Control{Type: game.ControlDrop}
	case 'n':
		return ActionControl, game.Control{Type: game.ControlReset}
	case ' ':
		// Terminals report no key release; the pump stops itself after its
		// maximum hold, or on 'p'.
		return ActionControl, game.Control{Type: game.ControlPumpStart}
	case 'p':
		return ActionControl, game.Control{Type: game.ControlPumpStop}
	case '+', '=':
		return k.setPower(k.power + 2)
	case '-':
		return k.setPower(k.power - 2)
	}
	return ActionNone, game.Control{}
}

func (k *Keys) setPower(p float64) (Action, game.Control) {
	if p < 2 {
		p = 2
	}
	if p > game.MaxBubblePower {
		p = game.MaxBubblePower
	}
	k.power = p
	return ActionControl, game.Control{Type: game.ControlBubbles, Power: &p}
}

func push(d game.Direction) (Action, game.Control) {
	return ActionControl, game.Control{Type: game.ControlForce, Direction: string(d), Strength: PushStrength}
}
