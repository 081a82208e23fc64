package game

import "github.com/ringtoss/backend/internal/physics"

// Peg is a static pin. Position is the peg's origin on the tank floor.
type Peg struct {
	ID        int
	Position  physics.Vec3
	PinHeight float64
	Color     uint32

	body *physics.Body
}

// Top is the nominal pin top used by the seating predicate.
func (p *Peg) Top() float64 {
	return p.Position.Y + p.PinHeight/2
}

// shape returns the collision geometry for the pin and its base disc.
func (p *Peg) shape() physics.PegShape {
	return physics.PegShape{
		PinTop:         PegPinTipExtension + p.PinHeight/2,
		PinRadius:      PegPinRadius,
		BaseCenter:     PegBaseCenter,
		BaseRadius:     PegBaseRadius,
		BaseHalfHeight: PegBaseHalfHeight,
	}
}
