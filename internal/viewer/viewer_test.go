package viewer

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringtoss/backend/internal/game"
	"github.com/ringtoss/backend/internal/physics"
)

func TestProjectCorners(t *testing.T) {
	v := Viewport{Cols: 41, Rows: 22}

	c, r, ok := v.Project(physics.NewVec3(-game.TankWidth/2, game.FloorY, 0))
	require.True(t, ok)
	assert.Equal(t, 0, c)
	assert.Equal(t, 20, r)

	c, r, ok = v.Project(physics.NewVec3(game.TankWidth/2, game.FloorY+game.TankHeight, 0))
	require.True(t, ok)
	assert.Equal(t, 40, c)
	assert.Equal(t, 1, r)

	c, _, ok = v.Project(physics.NewVec3(0, game.TankCenterY, 0))
	require.True(t, ok)
	assert.Equal(t, 20, c)

	_, _, ok = v.Project(physics.NewVec3(0, game.FloorY-1, 0))
	assert.False(t, ok)
	_, _, ok = Viewport{Cols: 2, Rows: 2}.Project(physics.Vec3{})
	assert.False(t, ok)
}

func key(k tcell.Key, r rune) *tcell.EventKey {
	return tcell.NewEventKey(k, r, tcell.ModNone)
}

func TestKeys(t *testing.T) {
	k := NewKeys()

	a, c := k.Handle(key(tcell.KeyUp, 0))
	assert.Equal(t, ActionControl, a)
	assert.Equal(t, game.ControlForce, c.Type)
	assert.Equal(t, "up", c.Direction)

	_, c = k.Handle(key(tcell.KeyRune, 'w'))
	assert.Equal(t, "forward", c.Direction)

	_, c = k.Handle(key(tcell.KeyRune, ' '))
	assert.Equal(t, game.ControlPumpStart, c.Type)
	_, c = k.Handle(key(tcell.KeyRune, 'p'))
	assert.Equal(t, game.ControlPumpStop, c.Type)

	_, c = k.Handle(key(tcell.KeyRune, '+'))
	require.NotNil(t, c.Power)
	assert.Equal(t, game.DefaultBubblePower+2, *c.Power)
	for i := 0; i < 20; i++ {
		_, c = k.Handle(key(tcell.KeyRune, '+'))
	}
	assert.Equal(t, game.MaxBubblePower, *c.Power)

	a, _ = k.Handle(key(tcell.KeyRune, 'q'))
	assert.Equal(t, ActionQuit, a)
	a, _ = k.Handle(key(tcell.KeyEscape, 0))
	assert.Equal(t, ActionQuit, a)
	a, _ = k.Handle(key(tcell.KeyRune, 'z'))
	assert.Equal(t, ActionNone, a)
}

func TestKeyControlsAreAccepted(t *testing.T) {
	s, err := game.NewSession(game.SessionConfig{ID: "v", Rings: 3, Layout: "classic", Seed: 1})
	require.NoError(t, err)
	defer s.Close()

	k := NewKeys()
	for _, ev := range []*tcell.EventKey{
		key(tcell.KeyLeft, 0), key(tcell.KeyRune, 's'), key(tcell.KeyRune, 'x'),
		key(tcell.KeyRune, 'd'), key(tcell.KeyRune, 'n'), key(tcell.KeyRune, ' '), key(tcell.KeyRune, 'p'),
		key(tcell.KeyRune, '-'),
	} {
		a, c := k.Handle(ev)
		require.Equal(t, ActionControl, a)
		assert.NoError(t, s.Apply(c), c.Type)
	}
}

func TestCues(t *testing.T) {
	assert.Len(t, Cue(game.EventRoundWon), 4)
	assert.NotEmpty(t, Cue(game.EventRingSeated))
	assert.Nil(t, Cue(game.EventRoundReset))

	var s *Sound
	assert.True(t, s.Muted())
	s.Play([]game.Event{{Type: game.EventRoundWon}})
}

func TestDrawSnapshot(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	screen.SetSize(60, 30)

	s, err := game.NewSession(game.SessionConfig{ID: "v", Rings: 2, Layout: "classic", Seed: 1})
	require.NoError(t, err)
	defer s.Close()

	snap := s.Snapshot()
	Draw(screen, snap, true)
	screen.Show()

	var status []rune
	for i := 0; i < 60; i++ {
		r, _, _, _ := screen.GetContent(i, 0)
		status = append(status, r)
	}
	assert.Contains(t, string(status), "score 0/2")
	assert.Contains(t, string(status), "[muted]")
}
