package game

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ringtoss/backend/internal/models"
	"github.com/ringtoss/backend/internal/physics"
)

// ManagerConfig bounds the number and lifetime of sessions.
type ManagerConfig struct {
	MaxSessions   int
	TickRate      int
	SessionTTL    time.Duration
	DefaultRings  int
	DefaultLayout string
	SnapshotEvery time.Duration
	World         physics.WorldConfig
}

// Broadcaster delivers encoded messages to a session's live subscribers.
type Broadcaster interface {
	BroadcastToSession(sessionID string, payload []byte)
}

// EventSink persists snapshots and publishes events outside the process.
type EventSink interface {
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
	DeleteSnapshot(ctx context.Context, sessionID string) error
	PublishEvent(ctx context.Context, ev Event) error
}

// ResultRecorder stores session lifecycles and won rounds.
type ResultRecorder interface {
	RecordSession(ctx context.Context, rec models.SessionRecord) error
	CloseSession(ctx context.Context, id, status string, bestScore, rounds int) error
	RecordResult(ctx context.Context, r models.RoundResult) error
}

// Message is the envelope sent to WebSocket subscribers.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// CreateRequest describes a session to create. Zero values take the defaults.
type CreateRequest struct {
	Rings  int    `json:"rings"`
	Layout string `json:"layout"`
	Seed   *int64 `json:"seed,omitempty"`
}

// SessionSummary is a listing entry.
type SessionSummary struct {
	ID         string    `json:"id"`
	Layout     string    `json:"layout"`
	Rings      int       `json:"rings"`
	Score      int       `json:"score"`
	Round      int       `json:"round"`
	Won        bool      `json:"won"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}

type managed struct {
	session  *Session
	cancel   context.CancelFunc
	lastHash uint64
	lastSave time.Time

	// recorded is closed once the session row write has finished, so later
	// writes for the same session never overtake it.
	recorded chan struct{}
}

// Manager owns all live sessions and runs each one on its own goroutine.
type Manager struct {
	cfg     ManagerConfig
	layouts *LayoutSet
	clock   Clock
	logger  *zap.Logger

	broadcaster Broadcaster
	sink        EventSink
	results     ResultRecorder

	mu       sync.RWMutex
	sessions map[string]*managed
	tuning   Tuning

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures optional Manager collaborators.
type Option func(*Manager)

func WithBroadcaster(b Broadcaster) Option { return func(m *Manager) { m.broadcaster = b } }
func WithEventSink(s EventSink) Option     { return func(m *Manager) { m.sink = s } }
func WithResults(r ResultRecorder) Option  { return func(m *Manager) { m.results = r } }
func WithClock(c Clock) Option             { return func(m *Manager) { m.clock = c } }

// NewManager creates a manager. tuning is the default for new sessions.
func NewManager(cfg ManagerConfig, layouts *LayoutSet, tuning Tuning, logger *zap.Logger, opts ...Option) (*Manager, error) {
	if err := tuning.Validate(); err != nil {
		return nil, err
	}
	if layouts == nil {
		layouts = DefaultLayouts()
	}
	if cfg.DefaultLayout == "" {
		cfg.DefaultLayout = "classic"
	}
	if _, err := layouts.Get(cfg.DefaultLayout); err != nil {
		return nil, err
	}
	if cfg.DefaultRings <= 0 {
		cfg.DefaultRings = 5
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}
	if cfg.SnapshotEvery <= 0 {
		cfg.SnapshotEvery = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		cfg:      cfg,
		layouts:  layouts,
		clock:    SystemClock{},
		logger:   logger.Named("manager"),
		sessions: make(map[string]*managed),
		tuning:   tuning,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Layouts returns the presets sessions can be created with.
func (m *Manager) Layouts() *LayoutSet { return m.layouts }

// DefaultTuning returns the tuning applied to new sessions.
func (m *Manager) DefaultTuning() Tuning {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tuning
}

// SetDefaultTuning changes the tuning for sessions created from now on.
func (m *Manager) SetDefaultTuning(t Tuning) error {
	if err := t.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.tuning = t
	m.mu.Unlock()
	m.logger.Info("default tuning updated",
		zap.Float64("proximity", t.Proximity),
		zap.Float64("lower_slack", t.LowerSlack),
		zap.Float64("upper_slack", t.UpperSlack),
		zap.Int("interval_ms", t.IntervalMS))
	return nil
}

// Create builds a session and starts its tick loop.
func (m *Manager) Create(req CreateRequest) (*Session, error) {
	if req.Rings == 0 {
		req.Rings = m.cfg.DefaultRings
	}
	if req.Layout == "" {
		req.Layout = m.cfg.DefaultLayout
	}
	seed := m.clock.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}

	m.mu.Lock()
	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		m.mu.Unlock()
		return nil, ErrTooManySessions
	}
	tuning := m.tuning
	m.mu.Unlock()

	s, err := NewSession(SessionConfig{
		ID:      uuid.NewString(),
		Rings:   req.Rings,
		Layout:  req.Layout,
		Seed:    seed,
		Tuning:  tuning,
		World:   m.cfg.World,
		Layouts: m.layouts,
		Clock:   m.clock,
		Logger:  m.logger.Named("session"),
	})
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		m.mu.Unlock()
		return nil, ErrTooManySessions
	}
	ctx, cancel := context.WithCancel(m.ctx)
	entry := &managed{session: s, cancel: cancel, recorded: make(chan struct{})}
	m.sessions[s.ID] = entry
	m.mu.Unlock()

	s.OnTick(func(snap *Snapshot, events []Event) { m.publish(entry, snap, events) })
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		s.Run(ctx, m.cfg.TickRate)
	}()

	if m.results != nil {
		rec := models.SessionRecord{
			ID:        s.ID,
			Layout:    s.Layout,
			Rings:     req.Rings,
			Seed:      s.Seed,
			Status:    models.SessionActive,
			Rounds:    1,
			CreatedAt: s.CreatedAt,
		}
		m.async(func(ctx context.Context) {
			defer close(entry.recorded)
			if err := m.results.RecordSession(ctx, rec); err != nil {
				m.logger.Warn("record session failed", zap.String("session", rec.ID), zap.Error(err))
			}
		})
	} else {
		close(entry.recorded)
	}

	m.logger.Info("session started", zap.String("session", s.ID), zap.Int("active", m.Count()))
	return s, nil
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e.session, nil
}

// Remove stops a session and forgets it.
func (m *Manager) Remove(id string) error {
	return m.remove(id, models.SessionClosed)
}

func (m *Manager) remove(id, status string) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	e.cancel()
	e.session.Close()

	snap := e.session.Snapshot()
	if m.results != nil {
		m.async(func(ctx context.Context) {
			if !m.waitRecorded(ctx, e) {
				return
			}
			if err := m.results.CloseSession(ctx, id, status, snap.Best, snap.Round); err != nil {
				m.logger.Warn("close session failed", zap.String("session", id), zap.Error(err))
			}
		})
	}
	if m.sink != nil {
		m.async(func(ctx context.Context) {
			if err := m.sink.DeleteSnapshot(ctx, id); err != nil {
				m.logger.Warn("delete snapshot failed", zap.String("session", id), zap.Error(err))
			}
		})
	}
	m.logger.Info("session removed", zap.String("session", id), zap.String("status", status))
	return nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// List summarises live sessions, oldest first.
func (m *Manager) List() []SessionSummary {
	m.mu.RLock()
	out := make([]SessionSummary, 0, len(m.sessions))
	for _, e := range m.sessions {
		snap := e.session.Snapshot()
		out = append(out, SessionSummary{
			ID:         e.session.ID,
			Layout:     e.session.Layout,
			Rings:      snap.Total,
			Score:      snap.Score,
			Round:      snap.Round,
			Won:        snap.Won,
			CreatedAt:  e.session.CreatedAt,
			LastActive: e.session.LastActive(),
		})
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// StartExpiryChecker removes idle sessions every interval until ctx is done.
func (m *Manager) StartExpiryChecker(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.ExpireIdle()
		}
	}
}

// ExpireIdle removes sessions with no commands for longer than the TTL and
// returns how many it removed.
func (m *Manager) ExpireIdle() int {
	if m.cfg.SessionTTL <= 0 {
		return 0
	}
	now := m.clock.Now()
	m.mu.RLock()
	var expired []string
	for id, e := range m.sessions {
		if now.Sub(e.session.LastActive()) > m.cfg.SessionTTL {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range expired {
		if err := m.remove(id, models.SessionExpired); err == nil {
			m.logger.Info("session expired", zap.String("session", id))
		}
	}
	return len(expired)
}

// Shutdown stops every session and waits for background work.
func (m *Manager) Shutdown() {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	for _, id := range ids {
		_ = m.remove(id, models.SessionClosed)
	}
	m.cancel()
	m.wg.Wait()
}

// publish runs on the session goroutine after every tick.
func (m *Manager) publish(e *managed, snap *Snapshot, events []Event) {
	if m.broadcaster != nil {
		if hash, ok := snapshotHash(snap); ok && hash != e.lastHash {
			e.lastHash = hash
			if data, err := json.Marshal(Message{Type: "state", Data: snap}); err == nil {
				m.broadcaster.BroadcastToSession(snap.SessionID, data)
			}
		}
	}

	for _, ev := range events {
		m.dispatchEvent(e, ev)
	}

	if m.sink != nil {
		now := m.clock.Now()
		if now.Sub(e.lastSave) >= m.cfg.SnapshotEvery || len(events) > 0 {
			e.lastSave = now
			m.async(func(ctx context.Context) {
				if err := m.sink.SaveSnapshot(ctx, snap); err != nil {
					m.logger.Debug("save snapshot failed", zap.String("session", snap.SessionID), zap.Error(err))
				}
			})
		}
	}
}

// dispatchEvent routes an event through Redis when configured, so every
// instance's subscribers see it once; otherwise straight to local subscribers.
func (m *Manager) dispatchEvent(e *managed, ev Event) {
	if m.sink != nil {
		m.async(func(ctx context.Context) {
			if err := m.sink.PublishEvent(ctx, ev); err != nil {
				m.logger.Warn("publish event failed", zap.String("type", string(ev.Type)), zap.Error(err))
			}
		})
	} else if m.broadcaster != nil {
		if data, err := json.Marshal(Message{Type: "event", Data: ev}); err == nil {
			m.broadcaster.BroadcastToSession(ev.SessionID, data)
		}
	}

	if ev.Type == EventRoundWon && m.results != nil {
		res := models.RoundResult{
			SessionID:   ev.SessionID,
			Round:       ev.Round,
			Rings:       ev.Total,
			DurationMS:  ev.DurationMS,
			CompletedAt: ev.At,
		}
		res.Layout = e.session.Layout
		res.Seed = e.session.Seed
		m.async(func(ctx context.Context) {
			if !m.waitRecorded(ctx, e) {
				return
			}
			if err := m.results.RecordResult(ctx, res); err != nil {
				m.logger.Warn("record result failed", zap.String("session", res.SessionID), zap.Error(err))
			}
		})
	}
}

// async runs fn off the tick goroutine with a bounded deadline.
func (m *Manager) async(fn func(ctx context.Context)) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		fn(ctx)
	}()
}

// waitRecorded blocks until the session row exists or ctx ends.
func (m *Manager) waitRecorded(ctx context.Context, e *managed) bool {
	select {
	case <-e.recorded:
		return true
	case <-ctx.Done():
		m.logger.Warn("session record still pending, dropping write", zap.String("session", e.session.ID))
		return false
	}
}

// snapshotHash fingerprints a snapshot ignoring its tick counter, so idle
// tanks do not flood subscribers.
func snapshotHash(snap *Snapshot) (uint64, bool) {
	c := *snap
	c.Tick = 0
	data, err := json.Marshal(&c)
	if err != nil {
		return 0, false
	}
	return xxhash.Sum64(data), true
}
