package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ringtoss/backend/internal/auth"
	"github.com/ringtoss/backend/internal/game"
)

// errorStatus maps package sentinels to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, game.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrSessionClosed):
		return http.StatusGone
	case errors.Is(err, game.ErrTooManySessions),
		errors.Is(err, game.ErrCommandQueueFull):
		return http.StatusServiceUnavailable
	case errors.Is(err, game.ErrInvalidRingCount),
		errors.Is(err, game.ErrUnknownLayout),
		errors.Is(err, game.ErrUnknownDirection),
		errors.Is(err, game.ErrUnknownCommand),
		errors.Is(err, game.ErrInvalidTuning),
		errors.Is(err, game.ErrInvalidBubbleArgs),
		errors.Is(err, game.ErrInvalidControl):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// respondError writes err with its mapped status. Internal errors are not
// echoed to the client.
func respondError(c *gin.Context, err error) {
	status := errorStatus(err)
	_ = c.Error(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
