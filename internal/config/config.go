package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Cache backend constants
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

type Config struct {
	// Server settings
	ServerAddr string
	BaseURL    string

	// Session settings
	SessionSecret string
	SessionMaxAge int // seconds

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string // Database connection string (DSN or path)

	// Site cache (hot path: site lookup by domain on every request)
	CacheBackend string // "memory" or "redis"
	CacheRedisURL string
	SiteCacheTTL time.Duration

	// Metrics
	MetricsEnabled bool

	// Admin bootstrap
	DefaultAdminPassword string // empty = random password on first run
	SeedDemoData         bool

	// Feed settings
	FeedItemLimit int

	IsProduction bool
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	// Determine database driver and DSN
	driver := getEnv("DATABASE_DRIVER", "sqlite")
	var dsn string
	if driver == "sqlite" {
		dsn = getEnv("DATABASE_DSN", getEnv("DATABASE_PATH", "feedkeys.db"))
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	return &Config{
		ServerAddr:           getEnv("SERVER_ADDR", ":8080"),
		BaseURL:              getEnv("BASE_URL", "http://localhost:8080"),
		SessionSecret:        getEnv("SESSION_SECRET", "session-secret-change-in-production"),
		SessionMaxAge:        getEnvInt("SESSION_MAX_AGE", 86400*7),
		DatabaseDriver:       driver,
		DatabaseDSN:          dsn,
		CacheBackend:         getEnv("CACHE_BACKEND", CacheBackendMemory),
		CacheRedisURL:        getEnv("CACHE_REDIS_URL", "redis://localhost:6379/0"),
		SiteCacheTTL:         getEnvDuration("SITE_CACHE_TTL", 5*time.Minute),
		MetricsEnabled:       getEnvBool("METRICS_ENABLED", false),
		DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", ""),
		SeedDemoData:         getEnvBool("SEED_DEMO_DATA", true),
		FeedItemLimit:        getEnvInt("FEED_ITEM_LIMIT", 20),
		IsProduction:         getEnv("GIN_MODE", "") == "release",
	}
}

// Validate checks that the configuration is usable before startup.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required for driver %s", c.DatabaseDriver)
	}
	switch c.CacheBackend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return fmt.Errorf("unsupported cache backend: %s", c.CacheBackend)
	}
	if c.IsProduction && c.SessionSecret == "session-secret-change-in-production" {
		return fmt.Errorf("SESSION_SECRET must be changed in production")
	}
	if c.FeedItemLimit <= 0 {
		return fmt.Errorf("FEED_ITEM_LIMIT must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
