package physics

import (
	"github.com/jakecoffman/cp/v2"
)

const (
	collisionStatic cp.CollisionType = iota + 1
	collisionRing
	collisionBubble
)

// WorldConfig holds engine-level parameters.
type WorldConfig struct {
	Gravity     float64 // downward acceleration
	FixedStep   float64 // seconds per engine step
	MaxSubsteps int     // engine steps allowed per Step call
	Iterations  int     // solver iterations
	DepthMin    float64 // back panel z
	DepthMax    float64 // front panel z
}

// DefaultWorldConfig matches the tank demo: low gravity for a water-like feel,
// 60 Hz fixed steps with at most two substeps per frame.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		Gravity:     3.0,
		FixedStep:   1.0 / 60.0,
		MaxSubsteps: 2,
		Iterations:  10,
		DepthMin:    -1.4,
		DepthMax:    1.4,
	}
}

// RingShape describes the planar cross-section of a torus lying flat: two tube
// circles either side of the hole.
type RingShape struct {
	Radius     float64 // major radius
	TubeRadius float64
	Mass       float64
}

// PegShape describes a pin standing on a base disc, in peg-local coordinates.
type PegShape struct {
	PinTop         float64 // height of the pin tip above the peg origin
	PinRadius      float64
	BaseCenter     float64
	BaseRadius     float64
	BaseHalfHeight float64
}

// ContactFunc receives a bubble and the ring it touched.
type ContactFunc func(bubble, ring *Body)

type contactPair struct {
	bubble, ring *cp.Body
}

// World wraps a planar rigid-body space and the depth-axis integration for its bodies.
type World struct {
	cfg   WorldConfig
	space *cp.Space

	nextID      int
	bodies      map[*cp.Body]*Body
	dynamic     []*Body
	accumulator float64

	contacts []contactPair
	onBubble ContactFunc
}

// NewWorld creates an empty world.
func NewWorld(cfg WorldConfig) *World {
	if cfg.FixedStep <= 0 {
		cfg.FixedStep = 1.0 / 60.0
	}
	if cfg.MaxSubsteps <= 0 {
		cfg.MaxSubsteps = 1
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = 10
	}

	space := cp.NewSpace()
	space.Iterations = uint(cfg.Iterations)
	space.SetGravity(cp.Vector{X: 0, Y: -cfg.Gravity})
	space.SleepTimeThreshold = 0.5

	w := &World{
		cfg:    cfg,
		space:  space,
		bodies: make(map[*cp.Body]*Body),
	}

	handler := space.NewCollisionHandler(collisionBubble, collisionRing)
	handler.BeginFunc = func(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
		a, b := arb.Bodies()
		w.contacts = append(w.contacts, contactPair{bubble: a, ring: b})
		return true
	}

	return w
}

// Config returns the world's configuration.
func (w *World) Config() WorldConfig {
	return w.cfg
}

// OnBubbleRing registers the callback invoked after each Step for every
// bubble/ring contact that began during it.
func (w *World) OnBubbleRing(fn ContactFunc) {
	w.onBubble = fn
}

// AddStaticBox adds an axis-aligned static box centred at c.
func (w *World) AddStaticBox(c Vec3, width, height, friction, restitution float64) *Body {
	static := w.space.StaticBody
	bb := cp.BB{L: c.X - width/2, B: c.Y - height/2, R: c.X + width/2, T: c.Y + height/2}
	shape := w.space.AddShape(cp.NewBox2(static, bb, 0))
	shape.SetFriction(friction)
	shape.SetElasticity(restitution)
	shape.SetCollisionType(collisionStatic)
	return w.track(static, KindStatic, 0, friction, restitution, c)
}

// AddStaticSegment adds a static capsule from a to b, used for slopes.
func (w *World) AddStaticSegment(a, b Vec3, radius, friction, restitution float64) *Body {
	static := w.space.StaticBody
	shape := w.space.AddShape(cp.NewSegment(static, cp.Vector{X: a.X, Y: a.Y}, cp.Vector{X: b.X, Y: b.Y}, radius))
	shape.SetFriction(friction)
	shape.SetElasticity(restitution)
	shape.SetCollisionType(collisionStatic)
	return w.track(static, KindStatic, 0, friction, restitution, a)
}

// AddPeg adds a static pin and base disc rooted at origin.
func (w *World) AddPeg(origin Vec3, shape PegShape, friction, restitution float64) *Body {
	static := w.space.StaticBody
	baseTop := shape.BaseCenter + shape.BaseHalfHeight

	pin := w.space.AddShape(cp.NewSegment(static,
		cp.Vector{X: origin.X, Y: origin.Y + baseTop},
		cp.Vector{X: origin.X, Y: origin.Y + shape.PinTop},
		shape.PinRadius))
	base := w.space.AddShape(cp.NewBox2(static, cp.BB{
		L: origin.X - shape.BaseRadius,
		B: origin.Y + shape.BaseCenter - shape.BaseHalfHeight,
		R: origin.X + shape.BaseRadius,
		T: origin.Y + baseTop,
	}, 0))
	for _, s := range []*cp.Shape{pin, base} {
		s.SetFriction(friction)
		s.SetElasticity(restitution)
		s.SetCollisionType(collisionStatic)
	}
	return w.track(static, KindStatic, 0, friction, restitution, origin)
}

// AddRing adds a dynamic ring lying flat at p.
func (w *World) AddRing(p Vec3, shape RingShape, friction, restitution float64) *Body {
	half := shape.Mass / 2
	left := cp.Vector{X: -shape.Radius}
	right := cp.Vector{X: shape.Radius}
	moment := cp.MomentForCircle(half, 0, shape.TubeRadius, left) +
		cp.MomentForCircle(half, 0, shape.TubeRadius, right)

	body := cp.NewBody(shape.Mass, moment)
	body.SetPosition(cp.Vector{X: p.X, Y: p.Y})
	b := w.track(body, KindRing, shape.Mass, friction, restitution, p)
	for _, offset := range []cp.Vector{left, right} {
		s := cp.NewCircle(body, shape.TubeRadius, offset)
		s.SetFriction(friction)
		s.SetElasticity(restitution)
		s.SetCollisionType(collisionRing)
		b.shapes = append(b.shapes, s)
	}

	body.SetVelocityUpdateFunc(b.updateVelocity)
	w.Enable(b)
	return b
}

// AddBubble adds a small dynamic sphere. Bubbles start disabled; Enable places
// them into the simulation.
func (w *World) AddBubble(radius, mass, friction, restitution float64) *Body {
	body := cp.NewBody(mass, cp.MomentForCircle(mass, 0, radius, cp.Vector{}))
	s := cp.NewCircle(body, radius, cp.Vector{})
	s.SetFriction(friction)
	s.SetElasticity(restitution)
	s.SetCollisionType(collisionBubble)

	b := w.track(body, KindBubble, mass, friction, restitution, Vec3{})
	b.shapes = []*cp.Shape{s}
	body.SetVelocityUpdateFunc(b.updateVelocity)
	return b
}

// Bodies returns the world's dynamic bodies in creation order.
func (w *World) Bodies() []*Body {
	out := make([]*Body, len(w.dynamic))
	copy(out, w.dynamic)
	return out
}

// Enable adds a dynamic body back into the simulation.
func (w *World) Enable(b *Body) {
	if b.inSpace || b.kind == KindStatic {
		return
	}
	w.space.AddBody(b.cp)
	for _, s := range b.shapes {
		w.space.AddShape(s)
	}
	b.inSpace = true
}

// Disable removes a dynamic body from the simulation without destroying it.
func (w *World) Disable(b *Body) {
	if !b.inSpace || b.kind == KindStatic {
		return
	}
	for _, s := range b.shapes {
		w.space.RemoveShape(s)
	}
	w.space.RemoveBody(b.cp)
	b.inSpace = false
	b.Stop()
}

// Step advances the simulation by dt seconds of wall time using fixed engine
// steps. Time beyond MaxSubsteps is dropped rather than carried over.
func (w *World) Step(dt float64) int {
	w.accumulator += dt
	steps := 0
	for w.accumulator >= w.cfg.FixedStep && steps < w.cfg.MaxSubsteps {
		w.space.Step(w.cfg.FixedStep)
		for _, b := range w.dynamic {
			if b.inSpace {
				b.integrateDepth(w.cfg.FixedStep, w.cfg.DepthMin, w.cfg.DepthMax)
			}
		}
		w.accumulator -= w.cfg.FixedStep
		steps++
	}
	if steps == w.cfg.MaxSubsteps && w.accumulator >= w.cfg.FixedStep {
		w.accumulator = 0
	}
	w.dispatchContacts()
	return steps
}

func (w *World) dispatchContacts() {
	if len(w.contacts) == 0 {
		return
	}
	pairs := w.contacts
	w.contacts = w.contacts[:0]
	if w.onBubble == nil {
		return
	}
	for _, p := range pairs {
		bubble, ok1 := w.bodies[p.bubble]
		ring, ok2 := w.bodies[p.ring]
		if !ok1 || !ok2 || !bubble.inSpace {
			continue
		}
		w.onBubble(bubble, ring)
	}
}

func (w *World) track(body *cp.Body, kind Kind, mass, friction, restitution float64, origin Vec3) *Body {
	w.nextID++
	b := &Body{
		id:           w.nextID,
		kind:         kind,
		world:        w,
		cp:           body,
		origin:       origin,
		mass:         mass,
		friction:     friction,
		restitution:  restitution,
		z:            w.clampDepth(origin.Z),
		gravityScale: 1,
		inSpace:      kind == KindStatic,
	}
	if kind != KindStatic {
		w.bodies[body] = b
		w.dynamic = append(w.dynamic, b)
	}
	return b
}

func (w *World) clampDepth(z float64) float64 {
	if z < w.cfg.DepthMin {
		return w.cfg.DepthMin
	}
	if z > w.cfg.DepthMax {
		return w.cfg.DepthMax
	}
	return z
}
