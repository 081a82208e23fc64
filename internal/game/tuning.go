package game

import (
	"fmt"
	"time"
)

// Tuning holds the seating predicate parameters and the two physical profiles.
type Tuning struct {
	IntervalMS int     `json:"interval_ms" yaml:"interval_ms"`
	Proximity  float64 `json:"proximity" yaml:"proximity"`
	LowerSlack float64 `json:"lower_slack" yaml:"lower_slack"`
	UpperSlack float64 `json:"upper_slack" yaml:"upper_slack"`
	FloorY     float64 `json:"floor_y" yaml:"floor_y"`

	Seated   Profile `json:"seated" yaml:"seated"`
	Unseated Profile `json:"unseated" yaml:"unseated"`
}

// DefaultTuning seats a ring resting anywhere on the pin or its base, and
// rings stacked well above the tip.
func DefaultTuning() Tuning {
	return Tuning{
		IntervalMS: 500,
		Proximity:  0.6,
		LowerSlack: 1.5,
		UpperSlack: 10,
		FloorY:     -50,
		Seated:     SeatedProfile(),
		Unseated:   UnseatedProfile(),
	}
}

// Interval is the time between seating checks.
func (t Tuning) Interval() time.Duration {
	return time.Duration(t.IntervalMS) * time.Millisecond
}

// Validate rejects values that would make the predicate meaningless.
func (t Tuning) Validate() error {
	switch {
	case t.IntervalMS <= 0:
		return fmt.Errorf("%w: interval_ms must be positive", ErrInvalidTuning)
	case t.Proximity <= 0:
		return fmt.Errorf("%w: proximity must be positive", ErrInvalidTuning)
	case t.LowerSlack < 0 || t.UpperSlack < 0:
		return fmt.Errorf("%w: slack must not be negative", ErrInvalidTuning)
	}
	for name, p := range map[string]Profile{"seated": t.Seated, "unseated": t.Unseated} {
		if p.Friction < 0 || p.Restitution < 0 {
			return fmt.Errorf("%w: %s profile has negative material values", ErrInvalidTuning, name)
		}
		if p.LinearDamping < 0 || p.LinearDamping > 1 || p.AngularDamping < 0 || p.AngularDamping > 1 {
			return fmt.Errorf("%w: %s profile damping must be within [0,1]", ErrInvalidTuning, name)
		}
		if p.Resistance < 0 {
			return fmt.Errorf("%w: %s profile resistance must not be negative", ErrInvalidTuning, name)
		}
	}
	return nil
}

// window returns the accepted ring heights for a peg.
func (t Tuning) window(p *Peg) (lo, hi float64) {
	top := p.Top()
	return top - t.LowerSlack, top + t.UpperSlack
}
