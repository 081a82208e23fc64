package game

import (
	"time"

	"go.uber.org/zap"

	"github.com/ringtoss/backend/internal/physics"
)

// Reason explains the outcome of the seating predicate for one ring.
type Reason string

const (
	ReasonOnPeg         Reason = "on_peg"
	ReasonOutsideWindow Reason = "outside_window"
	ReasonNotAligned    Reason = "not_aligned"
	ReasonBelowFloor    Reason = "below_floor"
)

// Transition records a ring whose seated flag flipped during a check.
type Transition struct {
	RingID int    `json:"ring_id"`
	PegID  int    `json:"peg_id,omitempty"`
	Seated bool   `json:"seated"`
	Reason Reason `json:"reason"`
}

// Report is the outcome of one check.
type Report struct {
	CheckedAt   time.Time    `json:"checked_at"`
	Seated      int          `json:"seated"`
	Total       int          `json:"total"`
	Transitions []Transition `json:"transitions,omitempty"`
}

// Monitor periodically re-derives each ring's seated flag from its position and
// applies the matching physical profile when the flag flips.
type Monitor struct {
	tuning  Tuning
	clock   Clock
	logger  *zap.Logger
	last    time.Time
	checked bool
}

// NewMonitor creates a monitor. A nil clock means the system clock.
func NewMonitor(t Tuning, clock Clock, logger *zap.Logger) *Monitor {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{tuning: t, clock: clock, logger: logger}
}

func (m *Monitor) Tuning() Tuning { return m.tuning }

// SetTuning replaces the parameters used from the next check on. Rings keep
// their current flags until then.
func (m *Monitor) SetTuning(t Tuning) error {
	if err := t.Validate(); err != nil {
		return err
	}
	m.tuning = t
	return nil
}

// Due reports whether the check interval has elapsed since the last check.
func (m *Monitor) Due() bool {
	if !m.checked {
		return true
	}
	return m.clock.Now().Sub(m.last) >= m.tuning.Interval()
}

// Poll runs Check if it is due.
func (m *Monitor) Poll(rings []*Ring, pegs []*Peg) (Report, bool) {
	if !m.Due() {
		return Report{}, false
	}
	return m.Check(rings, pegs), true
}

// Restart makes the next Poll run immediately.
func (m *Monitor) Restart() {
	m.checked = false
}

// Check evaluates every ring against every peg now.
func (m *Monitor) Check(rings []*Ring, pegs []*Peg) Report {
	now := m.clock.Now()
	m.last = now
	m.checked = true

	report := Report{CheckedAt: now, Total: len(rings)}
	if len(rings) == 0 || len(pegs) == 0 {
		report.Seated = CountSeated(rings)
		return report
	}

	for _, r := range rings {
		peg, reason := m.tuning.Evaluate(r.Position(), pegs)
		seated := peg != nil

		if seated && !r.Seated {
			r.Seated = true
			r.SeatedOn = peg.ID
			m.tuning.Seated.Apply(r)
			report.Transitions = append(report.Transitions, Transition{RingID: r.ID, PegID: peg.ID, Seated: true, Reason: reason})
			m.logger.Debug("ring seated", zap.Int("ring", r.ID), zap.Int("peg", peg.ID))
		} else if !seated && r.Seated {
			prev := r.SeatedOn
			r.Seated = false
			r.SeatedOn = 0
			m.tuning.Unseated.Apply(r)
			report.Transitions = append(report.Transitions, Transition{RingID: r.ID, PegID: prev, Seated: false, Reason: reason})
			m.logger.Debug("ring unseated", zap.Int("ring", r.ID), zap.Int("peg", prev), zap.String("reason", string(reason)))
		} else if seated {
			r.SeatedOn = peg.ID
		}

		if r.Seated {
			report.Seated++
		}
	}
	return report
}

// Evaluate is the seating predicate for a single position. It returns the peg
// the position is seated on, or nil and the reason it is not.
func (t Tuning) Evaluate(pos physics.Vec3, pegs []*Peg) (*Peg, Reason) {
	if pos.Y < t.FloorY {
		return nil, ReasonBelowFloor
	}
	reason := ReasonNotAligned
	for _, p := range pegs {
		if pos.HorizontalDistance(p.Position) > t.Proximity {
			continue
		}
		lo, hi := t.window(p)
		if pos.Y >= lo && pos.Y <= hi {
			return p, ReasonOnPeg
		}
		reason = ReasonOutsideWindow
	}
	return nil, reason
}

// CountSeated returns the number of rings currently flagged seated.
func CountSeated(rings []*Ring) int {
	n := 0
	for _, r := range rings {
		if r.Seated {
			n++
		}
	}
	return n
}
