package models

import (
	"database/sql"
	"time"
)

// SessionRecord is a tank session as stored in the database.
type SessionRecord struct {
	ID        string       `db:"id" json:"id"`
	Layout    string       `db:"layout" json:"layout"`
	Rings     int          `db:"rings" json:"rings"`
	Seed      int64        `db:"seed" json:"seed"`
	Status    string       `db:"status" json:"status"`
	BestScore int          `db:"best_score" json:"best_score"`
	Rounds    int          `db:"rounds" json:"rounds"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	EndedAt   sql.NullTime `db:"ended_at" json:"ended_at,omitempty"`
}

// Session statuses.
const (
	SessionActive  = "ACTIVE"
	SessionExpired = "EXPIRED"
	SessionClosed  = "CLOSED"
)

// RoundResult is a won round.
type RoundResult struct {
	ID          int       `db:"id" json:"id"`
	SessionID   string    `db:"session_id" json:"session_id"`
	Round       int       `db:"round" json:"round"`
	Layout      string    `db:"layout" json:"layout"`
	Rings       int       `db:"rings" json:"rings"`
	Seed        int64     `db:"seed" json:"seed"`
	DurationMS  int64     `db:"duration_ms" json:"duration_ms"`
	CompletedAt time.Time `db:"completed_at" json:"completed_at"`
}

// LeaderboardEntry ranks the fastest wins for a layout and ring count.
type LeaderboardEntry struct {
	Rank        int       `db:"rank" json:"rank"`
	SessionID   string    `db:"session_id" json:"session_id"`
	Layout      string    `db:"layout" json:"layout"`
	Rings       int       `db:"rings" json:"rings"`
	DurationMS  int64     `db:"duration_ms" json:"duration_ms"`
	CompletedAt time.Time `db:"completed_at" json:"completed_at"`
}
