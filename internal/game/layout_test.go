package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLayoutsContainPresets(t *testing.T) {
	set := DefaultLayouts()
	assert.Equal(t, []string{"classic", "row", "scatter"}, set.Names())

	classic, err := set.Get("classic")
	require.NoError(t, err)
	pegs := classic.Build(rand.New(rand.NewSource(1)))
	require.Len(t, pegs, 2)

	assert.Equal(t, 1, pegs[0].ID)
	assert.Equal(t, -5.0, pegs[0].Position.X)
	assert.Equal(t, TankCenterY-4, pegs[0].Position.Y)
	assert.Equal(t, 2.0, pegs[0].PinHeight)
	assert.Equal(t, uint32(0xff3333), pegs[0].Color)

	assert.Equal(t, 3.0, pegs[1].Position.X)
	assert.Equal(t, TankCenterY+2, pegs[1].Position.Y)
	assert.Equal(t, 3.5, pegs[1].PinHeight)
	assert.Equal(t, TankCenterY+2+1.75, pegs[1].Top())
}

func TestUnknownLayout(t *testing.T) {
	_, err := DefaultLayouts().Get("spiral")
	assert.ErrorIs(t, err, ErrUnknownLayout)
}

func TestScatterIsReproducibleFromSeed(t *testing.T) {
	scatter, err := DefaultLayouts().Get("scatter")
	require.NoError(t, err)

	a := scatter.Build(rand.New(rand.NewSource(42)))
	b := scatter.Build(rand.New(rand.NewSource(42)))
	require.Len(t, a, 3)
	for i := range a {
		assert.Equal(t, a[i].Position, b[i].Position)
		assert.GreaterOrEqual(t, a[i].Position.X, -6.5)
		assert.LessOrEqual(t, a[i].Position.X, 6.5)
	}
}

func TestLoadLayoutsRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"empty":      "layouts: []",
		"no pegs":    "layouts:\n  - name: bare\n",
		"bad height": "layouts:\n  - name: x\n    pegs:\n      - { x: 0, pin_height: 0 }\n",
		"bad colour": "layouts:\n  - name: x\n    pegs:\n      - { x: 0, pin_height: 1, color: \"#zz\" }\n",
		"duplicate":  "layouts:\n  - name: x\n    pegs: [{ pin_height: 1 }]\n  - name: x\n    pegs: [{ pin_height: 1 }]\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadLayouts([]byte(doc))
			assert.Error(t, err)
		})
	}
}
