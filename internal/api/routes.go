package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ringtoss/backend/internal/api/handlers"
	"github.com/ringtoss/backend/internal/auth"
	"github.com/ringtoss/backend/internal/config"
	"github.com/ringtoss/backend/internal/game"
	"github.com/ringtoss/backend/internal/middleware"
	"github.com/ringtoss/backend/internal/ws"
)

// Deps are the collaborators the routes need. Snapshots, Results and
// TuningStore are nil when Redis or the database is not configured.
type Deps struct {
	Config      *config.Config
	Manager     *game.Manager
	Hub         *ws.Hub
	Issuer      *auth.Issuer
	Snapshots   handlers.SnapshotLoader
	Results     handlers.LeaderboardSource
	TuningStore handlers.TuningStore
	Logger      *zap.Logger
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, d Deps) {
	cfg := d.Config

	router.Use(middleware.Recovery(d.Logger))
	router.Use(middleware.RequestLogger(d.Logger))
	router.Use(middleware.CORSMiddleware(cfg, d.Logger))

	if !cfg.IsProduction() {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Next()
		})
	}

	sessionAuth := middleware.SessionAuth(d.Issuer)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(d.Manager))
		v1.GET("/layouts", handlers.ListLayouts(d.Manager))
		v1.GET("/leaderboard", handlers.GetLeaderboard(d.Results, cfg.DefaultLayout, cfg.DefaultRingCount))

		v1.POST("/sessions", handlers.CreateSession(d.Manager, d.Issuer, d.Logger))
		v1.GET("/sessions/:id", handlers.GetSession(d.Manager, d.Snapshots))

		session := v1.Group("/sessions/:id", sessionAuth)
		{
			session.DELETE("", handlers.DeleteSession(d.Manager))
			session.POST("/reset", handlers.ApplyControl(d.Manager, game.ControlReset))
			session.POST("/force", handlers.ApplyControl(d.Manager, game.ControlForce))
			session.POST("/random", handlers.ApplyControl(d.Manager, game.ControlRandom))
			session.POST("/drop", handlers.ApplyControl(d.Manager, game.ControlDrop))
			session.POST("/pump/start", handlers.ApplyControl(d.Manager, game.ControlPumpStart))
			session.POST("/pump/stop", handlers.ApplyControl(d.Manager, game.ControlPumpStop))
			session.POST("/bubbles", handlers.ApplyControl(d.Manager, game.ControlBubbles))
			session.GET("/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleSessionWebSocket(d.Manager, d.Hub, d.Logger))
		}

		admin := v1.Group("/admin", middleware.AdminAuth(cfg.AdminTokenHash))
		{
			admin.GET("/sessions", handlers.ListSessions(d.Manager))
			admin.GET("/tuning", handlers.GetDefaultTuning(d.Manager))
			admin.PUT("/tuning", handlers.UpdateDefaultTuning(d.Manager, d.TuningStore, d.Logger))
			admin.PUT("/sessions/:id/tuning", handlers.UpdateSessionTuning(d.Manager, d.TuningStore))
		}
	}
}
