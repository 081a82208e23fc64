package game

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/ringtoss/backend/internal/models"
)

// ResultStore persists sessions and won rounds in Postgres.
type ResultStore struct {
	db *sqlx.DB
}

func NewResultStore(db *sqlx.DB) *ResultStore {
	return &ResultStore{db: db}
}

// RecordSession inserts a newly created session.
func (s *ResultStore) RecordSession(ctx context.Context, rec models.SessionRecord) error {
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO sessions (id, layout, rings, seed, status, best_score, rounds, created_at)
		 VALUES (:id, :layout, :rings, :seed, :status, :best_score, :rounds, :created_at)`, rec)
	return err
}

// CloseSession marks a session finished.
func (s *ResultStore) CloseSession(ctx context.Context, id, status string, bestScore, rounds int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET status = $2, best_score = GREATEST(best_score, $3), rounds = $4, ended_at = NOW()
		 WHERE id = $1`, id, status, bestScore, rounds)
	return err
}

// RecordResult stores a won round.
func (s *ResultStore) RecordResult(ctx context.Context, r models.RoundResult) error {
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO round_results (session_id, round, layout, rings, seed, duration_ms, completed_at)
		 VALUES (:session_id, :round, :layout, :rings, :seed, :duration_ms, :completed_at)`, r)
	return err
}

// Leaderboard returns the fastest wins for a layout and ring count.
func (s *ResultStore) Leaderboard(ctx context.Context, layout string, rings, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	var out []models.LeaderboardEntry
	err := s.db.SelectContext(ctx, &out,
		`SELECT ROW_NUMBER() OVER (ORDER BY duration_ms ASC, completed_at ASC) AS rank,
		        session_id, layout, rings, duration_ms, completed_at
		   FROM round_results
		  WHERE layout = $1 AND rings = $2
		  ORDER BY duration_ms ASC, completed_at ASC
		  LIMIT $3`, layout, rings, limit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return out, err
}

// GetSession loads a stored session record.
func (s *ResultStore) GetSession(ctx context.Context, id string) (*models.SessionRecord, error) {
	var rec models.SessionRecord
	err := s.db.GetContext(ctx, &rec, `SELECT * FROM sessions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
