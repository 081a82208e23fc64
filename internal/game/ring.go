package game

import "github.com/ringtoss/backend/internal/physics"

// RingBody is the subset of a physics body the seating monitor and the
// controls need. *physics.Body satisfies it.
type RingBody interface {
	Position() physics.Vec3
	SetFriction(f float64)
	SetRestitution(r float64)
	SetDamping(linear, angular float64)
	ApplyCentralForce(f physics.Vec3)
	ApplyCentralImpulse(i physics.Vec3)
}

// Ring is one torus in the tank. Seated and SeatedOn are written only by the Monitor.
type Ring struct {
	ID       int
	Body     RingBody
	Seated   bool
	SeatedOn int // peg id, 0 when unseated

	// Resistance scales effect forces; seated rings resist bubbles.
	Resistance float64

	Color         uint32
	OriginalColor uint32
	Emissive      uint32

	start physics.Vec3
}

// NewRing creates an unseated ring with the default resistance.
func NewRing(id int, body RingBody, color uint32) *Ring {
	return &Ring{
		ID:            id,
		Body:          body,
		Resistance:    1.0,
		Color:         color,
		OriginalColor: color,
		Emissive:      UnseatedEmissive,
	}
}

// Position reads the ring's current world position from its body.
func (r *Ring) Position() physics.Vec3 {
	return r.Body.Position()
}

// ApplyEffectForce applies a force scaled by the ring's resistance.
func (r *Ring) ApplyEffectForce(f physics.Vec3) {
	r.Body.ApplyCentralForce(f.Times(r.Resistance))
}

// ApplyEffectImpulse applies an impulse scaled by the ring's resistance.
func (r *Ring) ApplyEffectImpulse(i physics.Vec3) {
	r.Body.ApplyCentralImpulse(i.Times(r.Resistance))
}
