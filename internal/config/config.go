package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/ringtoss/backend/internal/game"
	"github.com/ringtoss/backend/internal/physics"
)

type Config struct {
	// Environment
	Environment string
	LogLevel    string

	// Database
	DatabaseURL    string
	MigrateOnStart bool
	MigrationsDir  string

	// Redis
	RedisURL            string
	SnapshotTTLMinutes  int
	SnapshotSaveEveryMs int

	// Server
	Port        string
	FrontendURL string

	// Sessions
	TickRateHz        int
	SessionTTLMinutes int
	MaxSessions       int
	DefaultRingCount  int
	DefaultLayout     string
	LayoutsFile       string

	// Seating monitor
	SeatCheckIntervalMs int
	SeatProximity       float64
	SeatLowerSlack      float64
	SeatUpperSlack      float64
	SeatFloorY          float64
	SeatedResistance    float64

	// Physics
	Gravity     float64
	MaxSubsteps int

	// Security
	JWTSecret              string
	SessionTokenTTLMinutes int
	AdminTokenHash         string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", true),
		MigrationsDir:  getEnv("MIGRATIONS_DIR", "migrations"),

		// Redis
		RedisURL:            getEnv("REDIS_URL", ""),
		SnapshotTTLMinutes:  getEnvInt("SNAPSHOT_TTL_MINUTES", 60),
		SnapshotSaveEveryMs: getEnvInt("SNAPSHOT_SAVE_EVERY_MS", 1000),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Sessions
		TickRateHz:        getEnvInt("TICK_RATE_HZ", 60),
		SessionTTLMinutes: getEnvInt("SESSION_TTL_MINUTES", 30),
		MaxSessions:       getEnvInt("MAX_SESSIONS", 200),
		DefaultRingCount:  getEnvInt("DEFAULT_RING_COUNT", 5),
		DefaultLayout:     getEnv("DEFAULT_LAYOUT", "classic"),
		LayoutsFile:       getEnv("LAYOUTS_FILE", ""),

		// Seating monitor
		SeatCheckIntervalMs: getEnvInt("SEAT_CHECK_INTERVAL_MS", 500),
		SeatProximity:       getEnvFloat("SEAT_PROXIMITY", 0.6),
		SeatLowerSlack:      getEnvFloat("SEAT_LOWER_SLACK", 1.5),
		SeatUpperSlack:      getEnvFloat("SEAT_UPPER_SLACK", 10),
		SeatFloorY:          getEnvFloat("SEAT_FLOOR_Y", -50),
		SeatedResistance:    getEnvFloat("SEATED_RESISTANCE", 0.3),

		// Physics
		Gravity:     getEnvFloat("GRAVITY", 3.0),
		MaxSubsteps: getEnvInt("MAX_SUBSTEPS", 2),

		// Security
		JWTSecret:              getEnv("JWT_SECRET", "change-me-in-production"),
		SessionTokenTTLMinutes: getEnvInt("SESSION_TOKEN_TTL_MINUTES", 240),
		AdminTokenHash:         getEnv("ADMIN_TOKEN_HASH", ""),
	}
}

// Tuning builds the default seating tuning from the SEAT_* settings.
func (c *Config) Tuning() game.Tuning {
	t := game.DefaultTuning()
	t.IntervalMS = c.SeatCheckIntervalMs
	t.Proximity = c.SeatProximity
	t.LowerSlack = c.SeatLowerSlack
	t.UpperSlack = c.SeatUpperSlack
	t.FloorY = c.SeatFloorY
	t.Seated.Resistance = c.SeatedResistance
	return t
}

// World builds the physics world settings.
func (c *Config) World() physics.WorldConfig {
	w := physics.DefaultWorldConfig()
	w.Gravity = c.Gravity
	w.MaxSubsteps = c.MaxSubsteps
	return w
}

// Manager builds the session manager settings.
func (c *Config) Manager() game.ManagerConfig {
	return game.ManagerConfig{
		MaxSessions:   c.MaxSessions,
		TickRate:      c.TickRateHz,
		SessionTTL:    time.Duration(c.SessionTTLMinutes) * time.Minute,
		DefaultRings:  c.DefaultRingCount,
		DefaultLayout: c.DefaultLayout,
		SnapshotEvery: time.Duration(c.SnapshotSaveEveryMs) * time.Millisecond,
		World:         c.World(),
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
