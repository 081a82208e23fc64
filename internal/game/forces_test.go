package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringtoss/backend/internal/physics"
)

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("forward")
	require.NoError(t, err)
	assert.Equal(t, physics.NewVec3(0, 0, -7), d.Impulse(7))

	d, err = ParseDirection("left")
	require.NoError(t, err)
	assert.Equal(t, physics.NewVec3(-3, 0, 0), d.Impulse(3))

	_, err = ParseDirection("sideways")
	assert.ErrorIs(t, err, ErrUnknownDirection)
}

func TestRandomImpulseStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		v := RandomImpulse(rng, 5)
		for _, c := range []float64{v.X, v.Y, v.Z} {
			assert.GreaterOrEqual(t, c, -5.0)
			assert.LessOrEqual(t, c, 5.0)
		}
	}
}
