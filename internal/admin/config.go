package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ringtoss/backend/internal/game"
)

// Store persists the admin-managed default tuning and the admin audit log.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewStore(db *sqlx.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger.Named("admin")}
}

// LoadTuning returns the stored default tuning, or nil if none was saved.
func (s *Store) LoadTuning(ctx context.Context) (*game.Tuning, error) {
	var raw []byte
	err := s.db.GetContext(ctx, &raw, `SELECT value FROM runtime_tuning WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var t game.Tuning
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode stored tuning: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// SaveTuning upserts the default tuning.
func (s *Store) SaveTuning(ctx context.Context, t game.Tuning, updatedBy string) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runtime_tuning (id, value, updated_by, updated_at)
		VALUES (1, $1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET
			value = EXCLUDED.value,
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
	`, raw, updatedBy)
	return err
}

// LogAction records an admin action in the audit log. Failures are logged, not returned.
func (s *Store) LogAction(ctx context.Context, ip, route, action string, details map[string]interface{}, success bool) {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("{}")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO admin_audit (ip, route, action, details, success, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, ip, route, action, detailsJSON, success)
	if err != nil {
		s.logger.Warn("audit insert failed", zap.String("action", action), zap.Error(err))
	}
}
