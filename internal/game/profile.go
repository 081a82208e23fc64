package game

import "github.com/ringtoss/backend/internal/physics"

// Profile is a set of physical overrides applied to a ring body on a seating transition.
type Profile struct {
	Friction       float64      `json:"friction" yaml:"friction"`
	Restitution    float64      `json:"restitution" yaml:"restitution"`
	LinearDamping  float64      `json:"linear_damping" yaml:"linear_damping"`
	AngularDamping float64      `json:"angular_damping" yaml:"angular_damping"`
	SettleForce    physics.Vec3 `json:"settle_force" yaml:"settle_force"`
	Resistance     float64      `json:"resistance" yaml:"resistance"`
	Emissive       uint32       `json:"emissive" yaml:"emissive"`
}

// SeatedProfile grips the peg: full friction, no bounce, heavy damping and a
// small push down onto the pin.
func SeatedProfile() Profile {
	return Profile{
		Friction:       1.0,
		Restitution:    0,
		LinearDamping:  0.8,
		AngularDamping: 0.9,
		SettleForce:    physics.Vec3{Y: -2},
		Resistance:     0.3,
		Emissive:       SeatedEmissive,
	}
}

// UnseatedProfile restores the free-floating ring defaults.
func UnseatedProfile() Profile {
	return Profile{
		Friction:       0.5,
		Restitution:    0.2,
		LinearDamping:  0.3,
		AngularDamping: 0.3,
		Resistance:     1.0,
		Emissive:       UnseatedEmissive,
	}
}

// Apply writes the profile to the ring and its body.
func (p Profile) Apply(r *Ring) {
	r.Body.SetFriction(p.Friction)
	r.Body.SetRestitution(p.Restitution)
	r.Body.SetDamping(p.LinearDamping, p.AngularDamping)
	if !p.SettleForce.IsZero() {
		r.Body.ApplyCentralForce(p.SettleForce)
	}
	r.Resistance = p.Resistance
	r.Emissive = p.Emissive
}
