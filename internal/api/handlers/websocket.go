package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ringtoss/backend/internal/game"
	"github.com/ringtoss/backend/internal/ws"
)

// HandleSessionWebSocket streams a session's snapshots and events and accepts
// controls over the same connection.
func HandleSessionWebSocket(mgr *game.Manager, hub *ws.Hub, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		s, err := mgr.Get(id)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := hub.Serve(c.Writer, c.Request, id, s); err != nil {
			logger.Warn("websocket upgrade failed", zap.String("session", id), zap.Error(err))
		}
	}
}
