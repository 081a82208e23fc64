package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ringtoss/backend/internal/admin"
	"github.com/ringtoss/backend/internal/api"
	"github.com/ringtoss/backend/internal/auth"
	"github.com/ringtoss/backend/internal/config"
	"github.com/ringtoss/backend/internal/database"
	"github.com/ringtoss/backend/internal/game"
	"github.com/ringtoss/backend/internal/logging"
	"github.com/ringtoss/backend/internal/migrations"
	"github.com/ringtoss/backend/internal/redis"
	"github.com/ringtoss/backend/internal/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "ringtoss:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	layouts := game.DefaultLayouts()
	if cfg.LayoutsFile != "" {
		if layouts, err = game.LoadLayoutsFile(cfg.LayoutsFile); err != nil {
			return fmt.Errorf("layouts: %w", err)
		}
	}

	tuning := cfg.Tuning()
	deps := api.Deps{Config: cfg, Logger: logger}
	var opts []game.Option

	// Database is optional: without it there are no results or persisted tuning.
	var db *sqlx.DB
	if cfg.DatabaseURL != "" {
		if cfg.MigrateOnStart {
			logger.Info("running database migrations", zap.String("dir", cfg.MigrationsDir))
			if err := migrations.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir, logger); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
		}
		if db, err = database.Connect(ctx, cfg.DatabaseURL); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()

		results := game.NewResultStore(db)
		opts = append(opts, game.WithResults(results))
		deps.Results = results

		store := admin.NewStore(db, logger)
		deps.TuningStore = store
		stored, err := store.LoadTuning(ctx)
		if err != nil {
			logger.Warn("stored tuning ignored", zap.Error(err))
		} else if stored != nil {
			tuning = *stored
			logger.Info("using stored default tuning")
		}
	} else {
		logger.Warn("DATABASE_URL not set; results and admin tuning will not persist")
	}

	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		if rdb, err = redis.Connect(ctx, cfg.RedisURL); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rdb.Close()

		store := game.NewRedisStore(rdb, time.Duration(cfg.SnapshotTTLMinutes)*time.Minute)
		opts = append(opts, game.WithEventSink(store))
		deps.Snapshots = store
	} else {
		logger.Warn("REDIS_URL not set; events are delivered to local subscribers only")
	}

	hub := ws.NewHub(logger)
	opts = append(opts, game.WithBroadcaster(hub))

	mgr, err := game.NewManager(cfg.Manager(), layouts, tuning, logger, opts...)
	if err != nil {
		return fmt.Errorf("manager: %w", err)
	}
	defer mgr.Shutdown()

	deps.Manager = mgr
	deps.Hub = hub
	deps.Issuer = auth.NewIssuer(cfg.JWTSecret, time.Duration(cfg.SessionTokenTTLMinutes)*time.Minute)
	if cfg.IsProduction() && cfg.JWTSecret == "change-me-in-production" {
		return errors.New("JWT_SECRET must be set in production")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	api.SetupRoutes(router, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return mgr.StartExpiryChecker(gctx, time.Minute) })
	if rdb != nil {
		sub := ws.NewSubscriber(rdb, hub, logger)
		g.Go(func() error { return sub.Run(gctx) })
	}
	g.Go(func() error {
		logger.Info("starting ringtoss server", zap.String("port", cfg.Port), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
