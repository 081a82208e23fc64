package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ringtoss/backend/internal/game"
)

// ApplyControl queues a control of the given type. The body supplies the
// remaining fields (direction, strength, power, spawn) where the type needs them.
func ApplyControl(mgr *game.Manager, controlType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := mgr.Get(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		var ctl game.Control
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&ctl); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
				return
			}
		}
		ctl.Type = controlType

		if err := s.Apply(ctl); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"ok": true, "control": ctl.Type})
	}
}
