// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Storage backends.
const (
	StoreJSON     = "json"
	StorePostgres = "postgres"
)

// Owner lock backends.
const (
	LockLocal = "local"
	LockRedis = "redis"
)

// Config holds the server configuration
type Config struct {
	// Server
	Port        string `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`
	MetricsPath string `envconfig:"METRICS_PATH" default:"/metrics"`

	// Storage
	StoreType     string        `envconfig:"STORE_TYPE" default:"json"`
	JSONStorePath string        `envconfig:"JSON_STORE_PATH" default:"taskrealm.json"`
	DatabaseURL   string        `envconfig:"DATABASE_URL"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBIdleConns   int           `envconfig:"DB_MAX_IDLE_CONNECTIONS" default:"5"`
	DBConnMaxLife time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"30m"`

	// Per-owner locking
	LockBackend   string        `envconfig:"LOCK_BACKEND" default:"local"`
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	LockTTL       time.Duration `envconfig:"LOCK_TTL" default:"10s"`

	// Events; an empty URL disables publishing
	RabbitMQURL   string `envconfig:"RABBITMQ_URL"`
	EventExchange string `envconfig:"EVENT_EXCHANGE" default:"taskrealm.progress"`

	// 0 seeds from crypto/rand
	Seed int64 `envconfig:"GENERATION_SEED" default:"0"`
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks backend selections and their required settings.
func (c *Config) Validate() error {
	c.StoreType = strings.ToLower(c.StoreType)
	c.LockBackend = strings.ToLower(c.LockBackend)

	switch c.StoreType {
	case StoreJSON:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for store type %q", c.StoreType)
		}
	default:
		return fmt.Errorf("unknown store type %q", c.StoreType)
	}

	switch c.LockBackend {
	case LockLocal:
	case LockRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for lock backend %q", c.LockBackend)
		}
	default:
		return fmt.Errorf("unknown lock backend %q", c.LockBackend)
	}

	if c.LockTTL <= 0 {
		return fmt.Errorf("LOCK_TTL must be positive, got %s", c.LockTTL)
	}
	return nil
}
