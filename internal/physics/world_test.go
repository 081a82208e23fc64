package physics

import (
	"math"
	"testing"
	"time"

	"github.com/jakecoffman/cp/v2"
)

func testRing() RingShape {
	return RingShape{Radius: 1.0, TubeRadius: 0.3, Mass: 1.0}
}

func TestRingFallsUnderGravity(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	ring := w.AddRing(NewVec3(0, 10, 0), testRing(), 0.5, 0.2)

	for i := 0; i < 60; i++ {
		w.Step(1.0 / 60.0)
	}

	if ring.Position().Y >= 10 {
		t.Errorf("ring did not fall: y=%.3f", ring.Position().Y)
	}
	if ring.Velocity().Y >= 0 {
		t.Errorf("expected downward velocity, got %.3f", ring.Velocity().Y)
	}
}

func TestStepCapsSubsteps(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	w.AddRing(NewVec3(0, 0, 0), testRing(), 0.5, 0.2)

	if n := w.Step(1.0 / 60.0); n != 1 {
		t.Errorf("one frame should run one step, ran %d", n)
	}
	if n := w.Step(1.0); n != 2 {
		t.Errorf("long frame should be capped at 2 steps, ran %d", n)
	}
	if n := w.Step(0); n != 0 {
		t.Errorf("dropped backlog should not be replayed, ran %d", n)
	}
}

func TestDepthImpulseIsClampedByPanels(t *testing.T) {
	cfg := DefaultWorldConfig()
	cfg.Gravity = 0
	w := NewWorld(cfg)
	ring := w.AddRing(NewVec3(0, 0, 0), testRing(), 0.5, 0.0)

	ring.ApplyCentralImpulse(NewVec3(0, 0, 50))
	for i := 0; i < 120; i++ {
		w.Step(1.0 / 60.0)
	}

	z := ring.Position().Z
	if z > cfg.DepthMax+1e-9 || z < cfg.DepthMin-1e-9 {
		t.Fatalf("z escaped the tank: %.3f", z)
	}
	if math.Abs(z-cfg.DepthMax) > 1e-9 {
		t.Errorf("ring should rest against the front panel, z=%.3f", z)
	}
}

func TestTeleportClearsMotion(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	ring := w.AddRing(NewVec3(0, 0, 0), testRing(), 0.5, 0.2)
	ring.ApplyCentralImpulse(NewVec3(3, 3, 3))

	ring.Teleport(NewVec3(4, 5, 0.5), 0)

	p := ring.Position()
	if p.X != 4 || p.Y != 5 || p.Z != 0.5 {
		t.Errorf("unexpected position after teleport: %+v", p)
	}
	if !ring.Velocity().IsZero() {
		t.Errorf("velocity should be zero after teleport: %+v", ring.Velocity())
	}
}

func TestMaterialSettersRoundTrip(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	ring := w.AddRing(NewVec3(0, 0, 0), testRing(), 0.5, 0.2)

	ring.SetFriction(1.0)
	ring.SetRestitution(0)
	ring.SetDamping(0.8, 1.7)

	if ring.Friction() != 1.0 || ring.Restitution() != 0 {
		t.Errorf("material not stored: friction=%v restitution=%v", ring.Friction(), ring.Restitution())
	}
	lin, ang := ring.Damping()
	if lin != 0.8 || ang != 1.0 {
		t.Errorf("damping should be clamped to [0,1]: got %v, %v", lin, ang)
	}
}

func TestStaticBodyReportsOrigin(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	peg := w.AddPeg(NewVec3(-5, -39, 0), PegShape{PinTop: 3.05, PinRadius: 0.15, BaseCenter: 0.3, BaseRadius: 0.8, BaseHalfHeight: 0.1}, 0.5, 0.2)

	if peg.Kind() != KindStatic {
		t.Fatalf("peg should be static, got %s", peg.Kind())
	}
	if p := peg.Position(); p.X != -5 || p.Y != -39 {
		t.Errorf("static body should report its origin, got %+v", p)
	}
}

func TestBubbleContactDispatch(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	ring := w.AddRing(NewVec3(0, 0, 0), testRing(), 0.5, 0.2)
	bubble := w.AddBubble(0.3, 0.1, 0.1, 0.7)

	if bubble.Enabled() {
		t.Fatal("bubbles should start disabled")
	}

	var hits int
	w.OnBubbleRing(func(b, r *Body) {
		if b != bubble || r != ring {
			t.Errorf("unexpected contact pair: bubble=%d ring=%d", b.ID(), r.ID())
		}
		hits++
		w.Disable(b)
	})

	w.Enable(bubble)
	bubble.Teleport(NewVec3(1.0, 1.5, 0), 0)
	bubble.ApplyCentralImpulse(NewVec3(0, -0.5, 0))

	for i := 0; i < 60 && hits == 0; i++ {
		w.Step(1.0 / 60.0)
	}

	if hits != 1 {
		t.Fatalf("expected one bubble/ring contact, got %d", hits)
	}
	if bubble.Enabled() {
		t.Error("bubble should be disabled after popping")
	}
}

func TestHorizontalDistanceIgnoresHeight(t *testing.T) {
	a := NewVec3(0, 100, 0)
	b := NewVec3(3, -40, 4)
	if d := a.HorizontalDistance(b); d != 5 {
		t.Errorf("expected 5, got %v", d)
	}
}

func TestBubbleEnableDisableCycles(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	bubble := w.AddBubble(0.3, 0.1, 0.1, 0.7)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			w.Enable(bubble)
			w.Enable(bubble)
			w.Step(1.0 / 60.0)
			w.Disable(bubble)
			w.Disable(bubble)
		}
		bubble.SetFriction(0.9)
		w.Enable(bubble)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("enable/disable cycle did not finish")
	}

	if !bubble.Enabled() {
		t.Fatal("bubble should be enabled")
	}
	if len(bubble.shapes) != 1 {
		t.Fatalf("expected one owned shape, got %d", len(bubble.shapes))
	}
	var attached int
	bubble.cp.EachShape(func(s *cp.Shape) {
		attached++
		if s != bubble.shapes[0] {
			t.Error("engine body holds a shape the bubble does not own")
		}
	})
	if attached != 1 {
		t.Fatalf("expected one shape attached to the engine body, got %d", attached)
	}
	if bubble.Friction() != 0.9 {
		t.Errorf("friction set while disabled was lost: %v", bubble.Friction())
	}
}
