package game

import (
	"fmt"
	"math/rand"

	"github.com/ringtoss/backend/internal/physics"
)

// Direction names a directional impulse. Forward points into the tank (-z).
type Direction string

const (
	DirUp       Direction = "up"
	DirDown     Direction = "down"
	DirLeft     Direction = "left"
	DirRight    Direction = "right"
	DirForward  Direction = "forward"
	DirBackward Direction = "backward"
)

const MaxImpulseStrength = 50.0

var directionVectors = map[Direction]physics.Vec3{
	DirUp:       {Y: 1},
	DirDown:     {Y: -1},
	DirLeft:     {X: -1},
	DirRight:    {X: 1},
	DirForward:  {Z: -1},
	DirBackward: {Z: 1},
}

// ParseDirection validates a direction name.
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if _, ok := directionVectors[d]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDirection, s)
	}
	return d, nil
}

// Impulse returns the impulse of the given strength along d.
func (d Direction) Impulse(strength float64) physics.Vec3 {
	return directionVectors[d].Times(strength)
}

// RandomImpulse draws each component uniformly from [-strength, strength].
func RandomImpulse(rng *rand.Rand, strength float64) physics.Vec3 {
	return physics.NewVec3(
		(rng.Float64()-0.5)*strength*2,
		(rng.Float64()-0.5)*strength*2,
		(rng.Float64()-0.5)*strength*2,
	)
}

func validStrength(s float64) error {
	if s < 0 || s > MaxImpulseStrength {
		return fmt.Errorf("%w: strength must be within [0,%g]", ErrInvalidControl, MaxImpulseStrength)
	}
	return nil
}
