package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringtoss/backend/internal/physics"
)

// fakeBody records every parameter write so tests can count them.
type fakeBody struct {
	pos         physics.Vec3
	friction    float64
	restitution float64
	linDamping  float64
	angDamping  float64
	forces      []physics.Vec3
	impulses    []physics.Vec3
	writes      int
}

func (b *fakeBody) Position() physics.Vec3 { return b.pos }

func (b *fakeBody) SetFriction(f float64) {
	b.friction = f
	b.writes++
}

func (b *fakeBody) SetRestitution(r float64) {
	b.restitution = r
	b.writes++
}

func (b *fakeBody) SetDamping(l, a float64) {
	b.linDamping, b.angDamping = l, a
	b.writes++
}

func (b *fakeBody) ApplyCentralForce(f physics.Vec3) {
	b.forces = append(b.forces, f)
}

func (b *fakeBody) ApplyCentralImpulse(i physics.Vec3) {
	b.impulses = append(b.impulses, i)
	b.pos = b.pos.Plus(i)
}

var t0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func testPegs() []*Peg {
	return []*Peg{
		{ID: 1, Position: physics.NewVec3(-5, -39, 0), PinHeight: 2.0},
		{ID: 2, Position: physics.NewVec3(3, -33, 0), PinHeight: 3.5},
	}
}

func newTestRing(id int, pos physics.Vec3) (*Ring, *fakeBody) {
	b := &fakeBody{pos: pos}
	return NewRing(id, b, 0xff3333), b
}

func newTestMonitor() (*Monitor, *ManualClock) {
	clock := NewManualClock(t0)
	return NewMonitor(DefaultTuning(), clock, nil), clock
}

func TestRingAtPegTopSeatsWithinOneTick(t *testing.T) {
	m, _ := newTestMonitor()
	pegs := testPegs()
	ring, body := newTestRing(1, physics.NewVec3(-5, pegs[0].Top(), 0))

	report := m.Check([]*Ring{ring}, pegs)

	assert.True(t, ring.Seated)
	assert.Equal(t, 1, ring.SeatedOn)
	assert.Equal(t, 1, report.Seated)
	require.Len(t, report.Transitions, 1)
	assert.Equal(t, Transition{RingID: 1, PegID: 1, Seated: true, Reason: ReasonOnPeg}, report.Transitions[0])

	seated := SeatedProfile()
	assert.Equal(t, seated.Friction, body.friction)
	assert.Equal(t, seated.Restitution, body.restitution)
	assert.Equal(t, seated.LinearDamping, body.linDamping)
	assert.Equal(t, seated.AngularDamping, body.angDamping)
	assert.Equal(t, []physics.Vec3{{Y: -2}}, body.forces)
	assert.Equal(t, 0.3, ring.Resistance)
	assert.Equal(t, SeatedEmissive, ring.Emissive)
}

func TestRepeatedChecksDoNotReapplyProfile(t *testing.T) {
	m, clock := newTestMonitor()
	pegs := testPegs()
	ring, body := newTestRing(1, physics.NewVec3(-5, pegs[0].Top()+0.5, 0))

	m.Check([]*Ring{ring}, pegs)
	writes, forces := body.writes, len(body.forces)

	for i := 0; i < 5; i++ {
		clock.Advance(time.Second)
		report := m.Check([]*Ring{ring}, pegs)
		assert.Empty(t, report.Transitions)
		assert.Equal(t, 1, report.Seated)
	}
	assert.Equal(t, writes, body.writes)
	assert.Equal(t, forces, len(body.forces))
}

func TestLeavingWindowRestoresUnseatedProfile(t *testing.T) {
	m, _ := newTestMonitor()
	pegs := testPegs()
	ring, body := newTestRing(1, physics.NewVec3(3, pegs[1].Top()+1, 0))

	m.Check([]*Ring{ring}, pegs)
	require.True(t, ring.Seated)

	// Still aligned, but well above the stacking allowance.
	body.pos.Y = pegs[1].Top() + 20
	report := m.Check([]*Ring{ring}, pegs)

	assert.False(t, ring.Seated)
	assert.Zero(t, ring.SeatedOn)
	require.Len(t, report.Transitions, 1)
	assert.Equal(t, ReasonOutsideWindow, report.Transitions[0].Reason)
	assert.Equal(t, 2, report.Transitions[0].PegID)

	unseated := UnseatedProfile()
	assert.Equal(t, unseated.Friction, body.friction)
	assert.Equal(t, unseated.Restitution, body.restitution)
	assert.Equal(t, unseated.LinearDamping, body.linDamping)
	assert.Equal(t, unseated.AngularDamping, body.angDamping)
	assert.Equal(t, 1.0, ring.Resistance)
	assert.Equal(t, UnseatedEmissive, ring.Emissive)
	assert.Len(t, body.forces, 1, "unseating must not push the ring")
}

func TestBelowFloorIsNeverSeated(t *testing.T) {
	m, _ := newTestMonitor()
	tuning := DefaultTuning()
	tuning.FloorY = -38
	require.NoError(t, m.SetTuning(tuning))

	// Aligned with peg 1 and inside its window, but under the floor guard.
	pegs := testPegs()
	ring, body := newTestRing(1, physics.NewVec3(-5, -38.5, 0))

	report := m.Check([]*Ring{ring}, pegs)

	assert.False(t, ring.Seated)
	assert.Empty(t, report.Transitions)
	assert.Zero(t, body.writes)

	_, reason := tuning.Evaluate(ring.Position(), pegs)
	assert.Equal(t, ReasonBelowFloor, reason)
}

func TestFallingBelowFloorUnseats(t *testing.T) {
	m, _ := newTestMonitor()
	pegs := testPegs()
	ring, body := newTestRing(1, physics.NewVec3(-5, pegs[0].Top(), 0))
	m.Check([]*Ring{ring}, pegs)
	require.True(t, ring.Seated)

	body.pos = physics.NewVec3(-5, -55, 0)
	report := m.Check([]*Ring{ring}, pegs)

	assert.False(t, ring.Seated)
	require.Len(t, report.Transitions, 1)
	assert.Equal(t, ReasonBelowFloor, report.Transitions[0].Reason)
}

func TestLateralImpulseUnseatsOnNextTick(t *testing.T) {
	m, clock := newTestMonitor()
	pegs := testPegs()
	ring, body := newTestRing(1, physics.NewVec3(-5, pegs[0].Top(), 0))
	m.Check([]*Ring{ring}, pegs)
	require.True(t, ring.Seated)

	ring.ApplyEffectImpulse(physics.NewVec3(10, 0, 0))
	require.Greater(t, body.pos.HorizontalDistance(pegs[0].Position), DefaultTuning().Proximity)

	clock.Advance(500 * time.Millisecond)
	report, ran := m.Poll([]*Ring{ring}, pegs)
	require.True(t, ran)
	assert.False(t, ring.Seated)
	require.Len(t, report.Transitions, 1)
	assert.Equal(t, ReasonNotAligned, report.Transitions[0].Reason)
}

func TestDistantPegDoesNotChangeFlag(t *testing.T) {
	m, _ := newTestMonitor()
	pegs := testPegs()
	// Seated on peg 1; peg 2 is far away and must not interfere.
	ring, _ := newTestRing(1, physics.NewVec3(-5, pegs[0].Top(), 0))
	m.Check([]*Ring{ring}, pegs)
	require.True(t, ring.Seated)

	report := m.Check([]*Ring{ring}, pegs)
	assert.True(t, ring.Seated)
	assert.Equal(t, 1, ring.SeatedOn)
	assert.Empty(t, report.Transitions)

	// An unaligned ring stays unseated whatever its height.
	free, body := newTestRing(2, physics.NewVec3(0, pegs[1].Top(), 0))
	report = m.Check([]*Ring{free}, pegs)
	assert.False(t, free.Seated)
	assert.Empty(t, report.Transitions)
	assert.Zero(t, body.writes)
}

func TestFirstPegInOrderWinsTie(t *testing.T) {
	m, _ := newTestMonitor()
	pegs := []*Peg{
		{ID: 7, Position: physics.NewVec3(0, -40, 0), PinHeight: 2},
		{ID: 8, Position: physics.NewVec3(0.2, -40, 0), PinHeight: 2},
	}
	ring, _ := newTestRing(1, physics.NewVec3(0.1, -39, 0))

	m.Check([]*Ring{ring}, pegs)
	assert.Equal(t, 7, ring.SeatedOn)
}

func TestInWindowPegBeatsEarlierOutOfWindowPeg(t *testing.T) {
	m, _ := newTestMonitor()
	pegs := []*Peg{
		{ID: 1, Position: physics.NewVec3(0, -20, 0), PinHeight: 2},
		{ID: 2, Position: physics.NewVec3(0.3, -40, 0), PinHeight: 2},
	}
	ring, _ := newTestRing(1, physics.NewVec3(0.1, -39, 0))

	m.Check([]*Ring{ring}, pegs)
	assert.True(t, ring.Seated)
	assert.Equal(t, 2, ring.SeatedOn)
}

func TestDegenerateInputIsNoop(t *testing.T) {
	m, _ := newTestMonitor()
	ring, body := newTestRing(1, physics.NewVec3(0, 0, 0))

	report := m.Check([]*Ring{ring}, nil)
	assert.Empty(t, report.Transitions)
	assert.Equal(t, 1, report.Total)
	assert.Zero(t, body.writes)

	report = m.Check(nil, testPegs())
	assert.Empty(t, report.Transitions)
	assert.Zero(t, report.Total)
}

func TestPollHonoursInterval(t *testing.T) {
	m, clock := newTestMonitor()
	pegs := testPegs()
	ring, body := newTestRing(1, physics.NewVec3(-5, pegs[0].Top(), 0))

	_, ran := m.Poll([]*Ring{ring}, pegs)
	require.True(t, ran, "first poll runs immediately")

	body.pos.X = 20
	clock.Advance(499 * time.Millisecond)
	_, ran = m.Poll([]*Ring{ring}, pegs)
	assert.False(t, ran)
	assert.True(t, ring.Seated, "flag is only re-derived on a check")

	clock.Advance(time.Millisecond)
	_, ran = m.Poll([]*Ring{ring}, pegs)
	assert.True(t, ran)
	assert.False(t, ring.Seated)

	m.Restart()
	assert.True(t, m.Due())
}

func TestSetTuningRejectsInvalidValues(t *testing.T) {
	m, _ := newTestMonitor()
	bad := DefaultTuning()
	bad.Proximity = 0
	assert.ErrorIs(t, m.SetTuning(bad), ErrInvalidTuning)

	bad = DefaultTuning()
	bad.Seated.LinearDamping = 1.5
	assert.ErrorIs(t, m.SetTuning(bad), ErrInvalidTuning)

	assert.Equal(t, DefaultTuning(), m.Tuning())
}
