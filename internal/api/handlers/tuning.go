package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ringtoss/backend/internal/game"
)

// TuningStore persists the default tuning and audits admin changes.
type TuningStore interface {
	SaveTuning(ctx context.Context, t game.Tuning, updatedBy string) error
	LogAction(ctx context.Context, ip, route, action string, details map[string]interface{}, success bool)
}

// GetDefaultTuning returns the tuning applied to new sessions.
func GetDefaultTuning(mgr *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tuning": mgr.DefaultTuning()})
	}
}

// UpdateDefaultTuning replaces the default tuning and persists it when a
// store is configured. Live sessions keep their own tuning.
func UpdateDefaultTuning(mgr *game.Manager, store TuningStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := mgr.DefaultTuning()
		if err := c.ShouldBindJSON(&t); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tuning"})
			return
		}

		route := c.FullPath()
		if err := mgr.SetDefaultTuning(t); err != nil {
			audit(c, store, route, "update_default_tuning", map[string]interface{}{"error": err.Error()}, false)
			respondError(c, err)
			return
		}

		if store != nil {
			if err := store.SaveTuning(c.Request.Context(), t, c.ClientIP()); err != nil {
				logger.Warn("persist default tuning failed", zap.Error(err))
			}
		}
		audit(c, store, route, "update_default_tuning", map[string]interface{}{"tuning": t}, true)
		c.JSON(http.StatusOK, gin.H{"tuning": t})
	}
}

// UpdateSessionTuning changes the tuning of one live session.
func UpdateSessionTuning(mgr *game.Manager, store TuningStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		s, err := mgr.Get(id)
		if err != nil {
			respondError(c, err)
			return
		}

		t := s.Tuning()
		if err := c.ShouldBindJSON(&t); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tuning"})
			return
		}
		if err := s.UpdateTuning(t); err != nil {
			audit(c, store, c.FullPath(), "update_session_tuning", map[string]interface{}{"session": id, "error": err.Error()}, false)
			respondError(c, err)
			return
		}
		audit(c, store, c.FullPath(), "update_session_tuning", map[string]interface{}{"session": id, "tuning": t}, true)
		c.JSON(http.StatusAccepted, gin.H{"session_id": id, "tuning": t})
	}
}

func audit(c *gin.Context, store TuningStore, route, action string, details map[string]interface{}, success bool) {
	if store == nil {
		return
	}
	store.LogAction(c.Request.Context(), c.ClientIP(), route, action, details, success)
}
