package game

import (
	"time"

	"github.com/ringtoss/backend/internal/physics"
)

// EventType names a session event.
type EventType string

const (
	EventRingSeated   EventType = "ring_seated"
	EventRingUnseated EventType = "ring_unseated"
	EventRoundWon     EventType = "round_won"
	EventRoundReset   EventType = "round_reset"
	EventBubblePopped EventType = "bubble_popped"
)

// Event is published to subscribers and the event channel.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	Round     int       `json:"round"`
	Tick      uint64    `json:"tick"`
	At        time.Time `json:"at"`

	RingID int    `json:"ring_id,omitempty"`
	PegID  int    `json:"peg_id,omitempty"`
	Reason Reason `json:"reason,omitempty"`

	Score      int   `json:"score"`
	Total      int   `json:"total"`
	DurationMS int64 `json:"duration_ms,omitempty"`

	Position *physics.Vec3 `json:"position,omitempty"`
	Size     float64       `json:"size,omitempty"`
}

// RingState is one ring in a snapshot.
type RingState struct {
	ID         int          `json:"id"`
	Position   physics.Vec3 `json:"position"`
	Angle      float64      `json:"angle"`
	Seated     bool         `json:"seated"`
	PegID      int          `json:"peg_id,omitempty"`
	Resistance float64      `json:"resistance"`
	Color      uint32       `json:"color"`
	Emissive   uint32       `json:"emissive"`
}

// PegState is one peg in a snapshot.
type PegState struct {
	ID        int          `json:"id"`
	Position  physics.Vec3 `json:"position"`
	PinHeight float64      `json:"pin_height"`
	Top       float64      `json:"top"`
	Color     uint32       `json:"color"`
}

// Snapshot is the renderable state of a session after a tick.
type Snapshot struct {
	SessionID   string        `json:"session_id"`
	Tick        uint64        `json:"tick"`
	Round       int           `json:"round"`
	Layout      string        `json:"layout"`
	Score       int           `json:"score"`
	Total       int           `json:"total"`
	Best        int           `json:"best"`
	Won         bool          `json:"won"`
	Pumping     bool          `json:"pumping"`
	BubblePower float64       `json:"bubble_power"`
	BubbleSpawn physics.Vec3  `json:"bubble_spawn"`
	Rings       []RingState   `json:"rings"`
	Pegs        []PegState    `json:"pegs"`
	Bubbles     []BubbleState `json:"bubbles"`
}
