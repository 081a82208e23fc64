package game

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ringtoss/backend/internal/physics"
)

const (
	defaultCommandBuffer = 64
	maxTickDelta         = 0.1
)

// SessionConfig describes a new tank.
type SessionConfig struct {
	ID            string
	Rings         int
	Layout        string
	Seed          int64
	Tuning        Tuning
	World         physics.WorldConfig
	Layouts       *LayoutSet
	Clock         Clock
	Logger        *zap.Logger
	CommandBuffer int
}

// TickFunc observes every tick's snapshot and the events it produced.
type TickFunc func(snap *Snapshot, events []Event)

// Session is one tank: its physics world, pegs, rings, bubble jet and seating
// monitor. All simulation state belongs to the goroutine calling Tick; other
// goroutines reach it through Do or Apply.
type Session struct {
	ID        string
	Layout    string
	Seed      int64
	CreatedAt time.Time

	clock  Clock
	logger *zap.Logger
	rng    *rand.Rand

	world   *physics.World
	pegs    []*Peg
	rings   []*Ring
	bodies  map[int]*physics.Body
	byBody  map[*physics.Body]*Ring
	monitor *Monitor
	jet     *BubbleJet
	board   Scoreboard

	round      int
	roundStart time.Time
	tick       uint64
	pending    []Event

	commands  chan func(*Session)
	done      chan struct{}
	closeOnce sync.Once

	snapshot   atomic.Pointer[Snapshot]
	lastActive atomic.Int64
	onTick     TickFunc
}

// NewSession builds the tank, pegs, rings and bubble pool.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Rings < 1 || cfg.Rings > MaxRings {
		return nil, fmt.Errorf("%w: %d (must be 1-%d)", ErrInvalidRingCount, cfg.Rings, MaxRings)
	}
	if cfg.Layouts == nil {
		cfg.Layouts = DefaultLayouts()
	}
	if cfg.Layout == "" {
		cfg.Layout = "classic"
	}
	preset, err := cfg.Layouts.Get(cfg.Layout)
	if err != nil {
		return nil, err
	}
	if cfg.Tuning == (Tuning{}) {
		cfg.Tuning = DefaultTuning()
	}
	if err := cfg.Tuning.Validate(); err != nil {
		return nil, err
	}
	if cfg.World == (physics.WorldConfig{}) {
		cfg.World = physics.DefaultWorldConfig()
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.CommandBuffer <= 0 {
		cfg.CommandBuffer = defaultCommandBuffer
	}

	now := cfg.Clock.Now()
	s := &Session{
		ID:         cfg.ID,
		Layout:     cfg.Layout,
		Seed:       cfg.Seed,
		CreatedAt:  now,
		clock:      cfg.Clock,
		logger:     cfg.Logger.With(zap.String("session", cfg.ID)),
		rng:        rand.New(rand.NewSource(cfg.Seed)),
		world:      physics.NewWorld(cfg.World),
		bodies:     make(map[int]*physics.Body, cfg.Rings),
		byBody:     make(map[*physics.Body]*Ring, cfg.Rings),
		round:      1,
		roundStart: now,
		commands:   make(chan func(*Session), cfg.CommandBuffer),
		done:       make(chan struct{}),
	}
	s.monitor = NewMonitor(cfg.Tuning, cfg.Clock, s.logger.Named("monitor"))
	s.lastActive.Store(now.UnixNano())

	buildTank(s.world)
	s.pegs = preset.Build(s.rng)
	for _, p := range s.pegs {
		p.body = s.world.AddPeg(p.Position, p.shape(), PegFriction, PegRestitution)
	}

	unseated := cfg.Tuning.Unseated
	for i := 0; i < cfg.Rings; i++ {
		start := ringStart(i, cfg.Rings)
		body := s.world.AddRing(start, ringShape(), unseated.Friction, unseated.Restitution)
		body.SetDamping(unseated.LinearDamping, unseated.AngularDamping)

		r := NewRing(i+1, body, ringPalette[i%len(ringPalette)])
		r.Resistance = unseated.Resistance
		r.start = start
		s.rings = append(s.rings, r)
		s.bodies[r.ID] = body
		s.byBody[body] = r
	}

	s.jet = NewBubbleJet(s.world, s.rng)
	s.world.OnBubbleRing(s.bubbleHit)
	s.board.Reset(len(s.rings))
	s.snapshot.Store(s.buildSnapshot())

	s.logger.Info("session created",
		zap.String("layout", s.Layout),
		zap.Int("rings", len(s.rings)),
		zap.Int("pegs", len(s.pegs)),
		zap.Int64("seed", s.Seed))
	return s, nil
}

// OnTick installs the observer called at the end of every tick run by Run.
// It must be set before Run starts.
func (s *Session) OnTick(fn TickFunc) {
	s.onTick = fn
}

// Rings returns the session's rings. Only safe on the session goroutine.
func (s *Session) Rings() []*Ring { return s.rings }

// Pegs returns the session's pegs.
func (s *Session) Pegs() []*Peg { return s.pegs }

// Tuning returns the active seating parameters. Only safe on the session goroutine.
func (s *Session) Tuning() Tuning { return s.monitor.Tuning() }

// Snapshot returns the state published by the latest tick. Safe for concurrent use.
func (s *Session) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// LastActive is the time of the most recent external command.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

func (s *Session) touch() {
	s.lastActive.Store(s.clock.Now().UnixNano())
}

// Do queues fn to run on the session goroutine at the start of the next tick.
func (s *Session) Do(fn func(*Session)) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	select {
	case s.commands <- fn:
		s.touch()
		return nil
	default:
		return ErrCommandQueueFull
	}
}

// Close stops Run and rejects further commands.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Run ticks the session at rate Hz until ctx is cancelled or the session is closed.
func (s *Session) Run(ctx context.Context, rate int) {
	if rate <= 0 {
		rate = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	last := s.clock.Now()
	for {
		select {
		case <-ctx.Done():
			s.Close()
			return
		case <-s.done:
			return
		case <-ticker.C:
			now := s.clock.Now()
			dt := math.Min(now.Sub(last).Seconds(), maxTickDelta)
			last = now
			snap, events := s.Tick(dt)
			if s.onTick != nil {
				s.onTick(snap, events)
			}
		}
	}
}

// Tick runs one frame: queued commands, physics, bubbles, then the seating
// check so it always sees post-step positions.
func (s *Session) Tick(dt float64) (*Snapshot, []Event) {
	s.drain()
	s.tick++

	s.world.Step(dt)
	now := s.clock.Now()
	s.jet.Update(now)

	if report, ran := s.monitor.Poll(s.rings, s.pegs); ran {
		won := s.board.Update(report.Seated, report.Total)
		for _, tr := range report.Transitions {
			typ := EventRingUnseated
			if tr.Seated {
				typ = EventRingSeated
			}
			s.emit(Event{Type: typ, RingID: tr.RingID, PegID: tr.PegID, Reason: tr.Reason})
		}
		if won {
			s.emit(Event{Type: EventRoundWon, DurationMS: now.Sub(s.roundStart).Milliseconds()})
			s.logger.Info("round won", zap.Int("round", s.round), zap.Int("rings", report.Total))
		}
	}

	snap := s.buildSnapshot()
	s.snapshot.Store(snap)

	events := s.pending
	s.pending = nil
	return snap, events
}

func (s *Session) drain() {
	for {
		select {
		case fn := <-s.commands:
			fn(s)
		default:
			return
		}
	}
}

func (s *Session) emit(ev Event) {
	ev.SessionID = s.ID
	ev.Round = s.round
	ev.Tick = s.tick
	ev.At = s.clock.Now()
	ev.Score = s.board.Score
	ev.Total = s.board.Total
	s.pending = append(s.pending, ev)
}

func (s *Session) bubbleHit(bubble, ringBody *physics.Body) {
	ring, ok := s.byBody[ringBody]
	if !ok {
		return
	}
	if pop, ok := s.jet.Hit(bubble, ring); ok {
		pos := pop.Position
		s.emit(Event{Type: EventBubblePopped, RingID: pop.RingID, Position: &pos, Size: pop.Size})
	}
}

func (s *Session) buildSnapshot() *Snapshot {
	snap := &Snapshot{
		SessionID:   s.ID,
		Tick:        s.tick,
		Round:       s.round,
		Layout:      s.Layout,
		Score:       s.board.Score,
		Total:       s.board.Total,
		Best:        s.board.Best,
		Won:         s.board.Won,
		Pumping:     s.jet.Pumping(),
		BubblePower: s.jet.Power(),
		BubbleSpawn: s.jet.Spawn(),
		Rings:       make([]RingState, 0, len(s.rings)),
		Pegs:        make([]PegState, 0, len(s.pegs)),
		Bubbles:     s.jet.Active(),
	}
	for _, r := range s.rings {
		body := s.bodies[r.ID]
		snap.Rings = append(snap.Rings, RingState{
			ID:         r.ID,
			Position:   body.Position().Round(),
			Angle:      math.Round(body.Angle()*1e4) / 1e4,
			Seated:     r.Seated,
			PegID:      r.SeatedOn,
			Resistance: r.Resistance,
			Color:      r.Color,
			Emissive:   r.Emissive,
		})
	}
	for _, p := range s.pegs {
		snap.Pegs = append(snap.Pegs, PegState{
			ID:        p.ID,
			Position:  p.Position,
			PinHeight: p.PinHeight,
			Top:       p.Top(),
			Color:     p.Color,
		})
	}
	return snap
}

// Reset puts every ring back at its start position and begins a new round.
func (s *Session) Reset() {
	unseated := s.monitor.Tuning().Unseated
	for _, r := range s.rings {
		s.bodies[r.ID].Teleport(r.start, 0)
		r.Seated = false
		r.SeatedOn = 0
		unseated.Apply(r)
	}
	s.jet.Clear()
	s.board.Reset(len(s.rings))
	s.monitor.Restart()
	s.round++
	s.roundStart = s.clock.Now()
	s.emit(Event{Type: EventRoundReset})
	s.logger.Info("round reset", zap.Int("round", s.round))
}

// ApplyDirectional gives every ring the same impulse. Player impulses ignore
// ring resistance.
func (s *Session) ApplyDirectional(d Direction, strength float64) error {
	if _, ok := directionVectors[d]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDirection, d)
	}
	if err := validStrength(strength); err != nil {
		return err
	}
	impulse := d.Impulse(strength)
	for _, r := range s.rings {
		r.Body.ApplyCentralImpulse(impulse)
	}
	return nil
}

// ApplyRandom gives each ring its own random impulse.
func (s *Session) ApplyRandom(strength float64) error {
	if err := validStrength(strength); err != nil {
		return err
	}
	for _, r := range s.rings {
		r.Body.ApplyCentralImpulse(RandomImpulse(s.rng, strength))
	}
	return nil
}

// DropOnSlope stacks every ring above the high end of the ramp, motionless.
func (s *Session) DropOnSlope() {
	x := -TankWidth/2 + RingRadius + 0.5
	base := slopeHeightAt(x) + 2.5
	for i, r := range s.rings {
		z := (s.rng.Float64() - 0.5) * 3
		s.bodies[r.ID].Teleport(physics.NewVec3(x, base+float64(i)*(2*RingTubeRadius+0.2), z), 0)
	}
}

func (s *Session) StartPump() { s.jet.Start(s.clock.Now()) }
func (s *Session) StopPump()  { s.jet.Stop() }

func (s *Session) SetBubblePower(p float64) error      { return s.jet.SetPower(p) }
func (s *Session) SetBubbleSpawn(p physics.Vec3) error { return s.jet.SetSpawn(p) }

// SetTuning swaps the seating parameters. Profiles already applied stay until
// the ring's next transition.
func (s *Session) SetTuning(t Tuning) error {
	return s.monitor.SetTuning(t)
}
