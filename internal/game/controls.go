package game

import (
	"fmt"

	"github.com/ringtoss/backend/internal/physics"
)

// Control types accepted from the HTTP and WebSocket APIs.
const (
	ControlForce     = "force"
	ControlRandom    = "random"
	ControlDrop      = "drop"
	ControlReset     = "reset"
	ControlPumpStart = "pump_start"
	ControlPumpStop  = "pump_stop"
	ControlBubbles   = "bubbles"
)

// Control is a player action addressed to a session.
type Control struct {
	Type      string        `json:"type"`
	Direction string        `json:"direction,omitempty"`
	Strength  float64       `json:"strength,omitempty"`
	Power     *float64      `json:"power,omitempty"`
	Spawn     *physics.Vec3 `json:"spawn,omitempty"`
}

// Apply validates c and queues it for the next tick, so callers learn about
// bad input immediately and never touch simulation state themselves.
func (s *Session) Apply(c Control) error {
	switch c.Type {
	case ControlForce:
		d, err := ParseDirection(c.Direction)
		if err != nil {
			return err
		}
		if err := validStrength(c.Strength); err != nil {
			return err
		}
		return s.Do(func(s *Session) { _ = s.ApplyDirectional(d, c.Strength) })

	case ControlRandom:
		if err := validStrength(c.Strength); err != nil {
			return err
		}
		return s.Do(func(s *Session) { _ = s.ApplyRandom(c.Strength) })

	case ControlDrop:
		return s.Do((*Session).DropOnSlope)

	case ControlReset:
		return s.Do((*Session).Reset)

	case ControlPumpStart:
		return s.Do((*Session).StartPump)

	case ControlPumpStop:
		return s.Do((*Session).StopPump)

	case ControlBubbles:
		if c.Power == nil && c.Spawn == nil {
			return fmt.Errorf("%w: power or spawn required", ErrInvalidBubbleArgs)
		}
		if c.Power != nil && (*c.Power <= 0 || *c.Power > MaxBubblePower) {
			return fmt.Errorf("%w: power must be within (0,%g]", ErrInvalidBubbleArgs, MaxBubblePower)
		}
		if c.Spawn != nil && !insideTank(*c.Spawn) {
			return fmt.Errorf("%w: spawn point outside the tank", ErrInvalidBubbleArgs)
		}
		return s.Do(func(s *Session) {
			if c.Power != nil {
				_ = s.SetBubblePower(*c.Power)
			}
			if c.Spawn != nil {
				_ = s.SetBubbleSpawn(*c.Spawn)
			}
		})
	}
	return fmt.Errorf("%w: %q", ErrUnknownCommand, c.Type)
}

// UpdateTuning validates t and queues it for the next tick.
func (s *Session) UpdateTuning(t Tuning) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return s.Do(func(s *Session) { _ = s.SetTuning(t) })
}

func insideTank(p physics.Vec3) bool {
	return p.X > -TankWidth/2 && p.X < TankWidth/2 &&
		p.Y > TankCenterY-TankHeight/2 && p.Y < TankCenterY+TankHeight/2 &&
		p.Z >= -TankDepth/2 && p.Z <= TankDepth/2
}
