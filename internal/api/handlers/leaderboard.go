package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ringtoss/backend/internal/models"
)

// LeaderboardSource ranks won rounds.
type LeaderboardSource interface {
	Leaderboard(ctx context.Context, layout string, rings, limit int) ([]models.LeaderboardEntry, error)
}

// GetLeaderboard returns the fastest wins for ?layout=&rings=&limit=.
func GetLeaderboard(results LeaderboardSource, defaultLayout string, defaultRings int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if results == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "leaderboard requires a database"})
			return
		}

		layout := c.DefaultQuery("layout", defaultLayout)
		rings, err := strconv.Atoi(c.DefaultQuery("rings", strconv.Itoa(defaultRings)))
		if err != nil || rings <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rings must be a positive integer"})
			return
		}
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}

		entries, err := results.Leaderboard(c.Request.Context(), layout, rings, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		if entries == nil {
			entries = []models.LeaderboardEntry{}
		}
		c.JSON(http.StatusOK, gin.H{"layout": layout, "rings": rings, "entries": entries})
	}
}
