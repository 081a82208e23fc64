package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ringtoss/backend/internal/auth"
	"github.com/ringtoss/backend/internal/game"
)

// SnapshotLoader reads the last persisted snapshot of a session that may live
// on another instance or may have expired.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context, sessionID string) (*game.Snapshot, error)
}

// CreateSession starts a tank and returns a token that authorises its controls.
func CreateSession(mgr *game.Manager, issuer *auth.Issuer, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req game.CreateRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
				return
			}
		}

		s, err := mgr.Create(req)
		if err != nil {
			respondError(c, err)
			return
		}

		token, expires, err := issuer.Issue(s.ID)
		if err != nil {
			logger.Error("issue session token", zap.String("session", s.ID), zap.Error(err))
			_ = mgr.Remove(s.ID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Header("X-Session-ID", s.ID)
		c.JSON(http.StatusCreated, gin.H{
			"session_id": s.ID,
			"token":      token,
			"expires_at": expires,
			"seed":       s.Seed,
			"state":      s.Snapshot(),
		})
	}
}

// GetSession returns the latest snapshot, falling back to the persisted copy
// when the session is not live in this process.
func GetSession(mgr *game.Manager, snapshots SnapshotLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		s, err := mgr.Get(id)
		if err == nil {
			c.JSON(http.StatusOK, gin.H{"live": true, "state": s.Snapshot()})
			return
		}
		if !errors.Is(err, game.ErrSessionNotFound) || snapshots == nil {
			respondError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		snap, err := snapshots.LoadSnapshot(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"live": false, "state": snap})
	}
}

// DeleteSession stops a tank.
func DeleteSession(mgr *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := mgr.Remove(c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// ListSessions summarises live sessions.
func ListSessions(mgr *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sessions": mgr.List()})
	}
}

// ListLayouts returns the peg layout presets.
func ListLayouts(mgr *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"layouts": mgr.Layouts().Names()})
	}
}
