package physics

import (
	"math"

	"github.com/jakecoffman/cp/v2"
)

// Kind classifies a body for contact routing and snapshots.
type Kind int

const (
	KindStatic Kind = iota
	KindRing
	KindBubble
)

func (k Kind) String() string {
	switch k {
	case KindRing:
		return "ring"
	case KindBubble:
		return "bubble"
	default:
		return "static"
	}
}

// Body is a handle to one rigid body in a World. The planar engine owns x, y and
// rotation; the depth axis z is integrated by the World.
type Body struct {
	id    int
	kind  Kind
	world *World
	cp    *cp.Body

	// shapes are owned here so they survive the body leaving the space;
	// cp's own shape list is only populated while the body is enabled.
	shapes []*cp.Shape

	// origin is the fixed anchor of a static body.
	origin Vec3

	mass        float64
	friction    float64
	restitution float64
	linDamping  float64
	angDamping  float64

	// gravityScale multiplies world gravity; negative values make a body buoyant.
	gravityScale float64

	z, vz   float64
	forceZ  float64
	inSpace bool
}

func (b *Body) ID() int    { return b.id }
func (b *Body) Kind() Kind { return b.kind }

// Position returns the body's world position.
func (b *Body) Position() Vec3 {
	if b.kind == KindStatic {
		return b.origin
	}
	p := b.cp.Position()
	return Vec3{X: p.X, Y: p.Y, Z: b.z}
}

// Velocity returns the body's linear velocity.
func (b *Body) Velocity() Vec3 {
	if b.kind == KindStatic {
		return Vec3{}
	}
	v := b.cp.Velocity()
	return Vec3{X: v.X, Y: v.Y, Z: b.vz}
}

// Angle returns the rotation about the depth axis in radians.
func (b *Body) Angle() float64 {
	return b.cp.Angle()
}

func (b *Body) Friction() float64    { return b.friction }
func (b *Body) Restitution() float64 { return b.restitution }

// Damping returns the linear and angular damping coefficients.
func (b *Body) Damping() (linear, angular float64) {
	return b.linDamping, b.angDamping
}

// SetFriction updates every shape on a dynamic body. Static handles share the
// space's static body and are left untouched.
func (b *Body) SetFriction(f float64) {
	b.friction = f
	if b.kind == KindStatic {
		return
	}
	for _, s := range b.shapes {
		s.SetFriction(f)
	}
}

func (b *Body) SetRestitution(r float64) {
	b.restitution = r
	if b.kind == KindStatic {
		return
	}
	for _, s := range b.shapes {
		s.SetElasticity(r)
	}
}

// SetDamping sets per-second damping fractions in [0,1], applied as v *= (1-d)^dt.
func (b *Body) SetDamping(linear, angular float64) {
	b.linDamping = clamp01(linear)
	b.angDamping = clamp01(angular)
}

// SetGravityScale changes how strongly world gravity acts on the body.
func (b *Body) SetGravityScale(scale float64) {
	b.gravityScale = scale
}

// ApplyCentralForce accumulates a force through the centre of mass for the next step.
func (b *Body) ApplyCentralForce(f Vec3) {
	if b.kind == KindStatic {
		return
	}
	b.cp.Activate()
	b.cp.ApplyForceAtWorldPoint(cp.Vector{X: f.X, Y: f.Y}, b.cp.Position())
	b.forceZ += f.Z
}

// ApplyCentralImpulse changes momentum immediately.
func (b *Body) ApplyCentralImpulse(i Vec3) {
	if b.kind == KindStatic {
		return
	}
	b.cp.Activate()
	b.cp.ApplyImpulseAtWorldPoint(cp.Vector{X: i.X, Y: i.Y}, b.cp.Position())
	b.vz += i.Z / b.mass
}

// ApplyTorqueImpulse spins the body. Only the depth-axis component is simulated.
func (b *Body) ApplyTorqueImpulse(t Vec3) {
	if b.kind == KindStatic || t.Z == 0 {
		return
	}
	moment := b.cp.Moment()
	if moment <= 0 || math.IsInf(moment, 0) {
		return
	}
	b.cp.SetAngularVelocity(b.cp.AngularVelocity() + t.Z/moment)
}

// Teleport moves the body and clears its motion.
func (b *Body) Teleport(p Vec3, angle float64) {
	if b.kind == KindStatic {
		return
	}
	b.cp.SetPosition(cp.Vector{X: p.X, Y: p.Y})
	b.cp.SetAngle(angle)
	b.z = b.world.clampDepth(p.Z)
	b.Stop()
}

// Stop zeroes linear and angular velocity.
func (b *Body) Stop() {
	if b.kind == KindStatic {
		return
	}
	b.cp.SetVelocity(0, 0)
	b.cp.SetAngularVelocity(0)
	b.vz = 0
	b.forceZ = 0
}

// Enabled reports whether the body currently takes part in the simulation.
func (b *Body) Enabled() bool {
	return b.inSpace
}

// updateVelocity replaces the engine's global damping with this body's damping.
func (b *Body) updateVelocity(body *cp.Body, gravity cp.Vector, _ float64, dt float64) {
	lin := math.Pow(1-b.linDamping, dt)
	cp.BodyUpdateVelocity(body, gravity.Mult(b.gravityScale), lin, dt)
	if b.angDamping != b.linDamping && lin > 0 {
		ang := math.Pow(1-b.angDamping, dt)
		body.SetAngularVelocity(body.AngularVelocity() * ang / lin)
	}
}

// integrateDepth advances z by one step; the panels at DepthMin/DepthMax bounce the body.
func (b *Body) integrateDepth(dt, minZ, maxZ float64) {
	b.vz += b.forceZ / b.mass * dt
	b.forceZ = 0
	b.vz *= math.Pow(1-b.linDamping, dt)
	b.z += b.vz * dt
	if b.z < minZ {
		b.z = minZ
		b.vz = -b.vz * b.restitution
	} else if b.z > maxZ {
		b.z = maxZ
		b.vz = -b.vz * b.restitution
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
