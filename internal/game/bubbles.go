package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/ringtoss/backend/internal/physics"
)

const (
	BubblePoolSize     = 16
	BubbleSpawnEvery   = 30 * time.Millisecond
	BubbleMaxHold      = 5 * time.Second
	BubbleLifetime     = 2500 * time.Millisecond
	BubbleMass         = 0.1
	BubbleFriction     = 0.1
	BubbleRestitution  = 0.7
	BubbleDamping      = 0.2
	BubbleGravityScale = -0.5
	BubbleLaunchSpeed  = 8.0
	BubbleSpawnJitter  = 0.03

	DefaultBubblePower = 10.0
	MaxBubblePower     = 20.0

	bubbleLiftMin     = 90.0
	bubbleLiftSpread  = 30.0
	bubbleSideForce   = 80.0
	bubbleSideSpread  = 0.3
	bubbleSizeFactor  = 3.0
	bubbleTorqueScale = 3.0
)

var bubbleSizes = []float64{0.25, 0.3, 0.35, 0.4}

// DefaultBubbleSpawn sits in the lower right corner of the tank.
var DefaultBubbleSpawn = physics.NewVec3(8, TankCenterY-17, -1)

// bubbleTarget is the point the jet aims at.
var bubbleTarget = physics.NewVec3(0, TankCenterY+TankHeight/3, 0)

// BubbleState is the public view of a live bubble.
type BubbleState struct {
	Position physics.Vec3 `json:"position"`
	Size     float64      `json:"size"`
}

// BubblePop describes a bubble that burst against a ring.
type BubblePop struct {
	RingID   int          `json:"ring_id"`
	Position physics.Vec3 `json:"position"`
	Size     float64      `json:"size"`
}

type bubble struct {
	body   *physics.Body
	size   float64
	active bool
	born   time.Time
}

// BubbleJet is a pooled stream of buoyant bubbles that push rings upward on contact.
type BubbleJet struct {
	world *physics.World
	rng   *rand.Rand

	pool   []*bubble
	byBody map[*physics.Body]*bubble
	next   int

	power     float64
	spawn     physics.Vec3
	pumping   bool
	pumpStart time.Time
	lastSpawn time.Time
}

// NewBubbleJet creates the bubble pool in world. All bubbles start inactive.
func NewBubbleJet(world *physics.World, rng *rand.Rand) *BubbleJet {
	j := &BubbleJet{
		world:  world,
		rng:    rng,
		byBody: make(map[*physics.Body]*bubble, BubblePoolSize),
		power:  DefaultBubblePower,
		spawn:  DefaultBubbleSpawn,
	}
	for i := 0; i < BubblePoolSize; i++ {
		size := bubbleSizes[i%len(bubbleSizes)]
		body := world.AddBubble(size, BubbleMass, BubbleFriction, BubbleRestitution)
		body.SetDamping(BubbleDamping, BubbleDamping)
		body.SetGravityScale(BubbleGravityScale)
		b := &bubble{body: body, size: size}
		j.pool = append(j.pool, b)
		j.byBody[body] = b
	}
	return j
}

func (j *BubbleJet) Power() float64      { return j.power }
func (j *BubbleJet) Spawn() physics.Vec3 { return j.spawn }
func (j *BubbleJet) Pumping() bool       { return j.pumping }

// SetPower sets the jet strength; 10 is nominal.
func (j *BubbleJet) SetPower(p float64) error {
	if p <= 0 || p > MaxBubblePower {
		return fmt.Errorf("%w: power must be within (0,%g]", ErrInvalidBubbleArgs, MaxBubblePower)
	}
	j.power = p
	return nil
}

// SetSpawn moves the nozzle. It must be inside the tank.
func (j *BubbleJet) SetSpawn(p physics.Vec3) error {
	if !insideTank(p) {
		return fmt.Errorf("%w: spawn point outside the tank", ErrInvalidBubbleArgs)
	}
	j.spawn = p
	return nil
}

// Start opens the pump. Holding it longer than BubbleMaxHold closes it again.
func (j *BubbleJet) Start(now time.Time) {
	if j.pumping {
		return
	}
	j.pumping = true
	j.pumpStart = now
	j.lastSpawn = time.Time{}
}

func (j *BubbleJet) Stop() {
	j.pumping = false
}

// Update emits new bubbles while pumping and retires expired ones.
func (j *BubbleJet) Update(now time.Time) {
	if j.pumping && now.Sub(j.pumpStart) > BubbleMaxHold {
		j.pumping = false
	}
	if j.pumping && (j.lastSpawn.IsZero() || now.Sub(j.lastSpawn) >= BubbleSpawnEvery) {
		j.emit(now)
		j.lastSpawn = now
	}
	for _, b := range j.pool {
		if b.active && now.Sub(b.born) >= BubbleLifetime {
			j.retire(b)
		}
	}
}

func (j *BubbleJet) emit(now time.Time) {
	b := j.pool[j.next]
	j.next = (j.next + 1) % len(j.pool)
	if b.active {
		j.retire(b)
	}

	jitter := physics.NewVec3(
		(j.rng.Float64()-0.5)*2*BubbleSpawnJitter,
		(j.rng.Float64()-0.5)*2*BubbleSpawnJitter,
		(j.rng.Float64()-0.5)*2*BubbleSpawnJitter,
	)
	pos := j.spawn.Plus(jitter)

	j.world.Enable(b.body)
	b.body.Teleport(pos, 0)
	b.active = true
	b.born = now

	dir := bubbleTarget.Minus(pos)
	if m := dir.Magnitude(); m > 0 {
		dir = dir.Times(1 / m)
	}
	launch := physics.NewVec3(dir.X, dir.Y*2.2, dir.Z).Times(BubbleLaunchSpeed * j.power / 10 * BubbleMass)
	b.body.ApplyCentralImpulse(launch)
}

func (j *BubbleJet) retire(b *bubble) {
	b.active = false
	j.world.Disable(b.body)
}

// Hit pushes ring upward from a bubble contact and pops the bubble. The push
// is scaled by the ring's resistance. It reports false if the body is not a
// live bubble from this jet.
func (j *BubbleJet) Hit(body *physics.Body, ring *Ring) (BubblePop, bool) {
	b, ok := j.byBody[body]
	if !ok || !b.active {
		return BubblePop{}, false
	}
	pop := BubblePop{RingID: ring.ID, Position: b.body.Position(), Size: b.size}

	scale := b.size * bubbleSizeFactor * j.power / 10
	force := physics.NewVec3(
		(j.rng.Float64()*2*bubbleSideSpread-bubbleSideSpread)*bubbleSideForce,
		bubbleLiftMin+j.rng.Float64()*bubbleLiftSpread,
		(j.rng.Float64()*2*bubbleSideSpread-bubbleSideSpread)*bubbleSideForce,
	).Times(scale)
	ring.ApplyEffectForce(force)

	if spinner, ok := ring.Body.(interface{ ApplyTorqueImpulse(physics.Vec3) }); ok {
		torque := physics.NewVec3(
			j.rng.Float64()-0.5,
			j.rng.Float64()-0.5,
			j.rng.Float64()-0.5,
		).Times(bubbleTorqueScale * j.power / 10 * ring.Resistance)
		spinner.ApplyTorqueImpulse(torque)
	}

	j.retire(b)
	return pop, true
}

// Active lists live bubbles.
func (j *BubbleJet) Active() []BubbleState {
	var out []BubbleState
	for _, b := range j.pool {
		if b.active {
			out = append(out, BubbleState{Position: b.body.Position().Round(), Size: b.size})
		}
	}
	return out
}

// Clear stops the pump and retires every bubble.
func (j *BubbleJet) Clear() {
	j.pumping = false
	for _, b := range j.pool {
		if b.active {
			j.retire(b)
		}
	}
}
