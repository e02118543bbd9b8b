// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Exec      ExecConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"5001"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// StoreConfig holds session store configuration.
type StoreConfig struct {
	Path         string        `envconfig:"SESSION_DB_PATH" default:"sessions.db"`
	Retention    time.Duration `envconfig:"SESSION_RETENTION" default:"720h"`
	ReapInterval time.Duration `envconfig:"SESSION_REAP_INTERVAL" default:"1h"`
}

// ExecConfig holds sandbox execution configuration.
type ExecConfig struct {
	ImageTag       string        `envconfig:"EXEC_IMAGE_TAG" default:"latest"`
	Timeout        time.Duration `envconfig:"EXEC_TIMEOUT" default:"10s"`
	MaxConcurrent  int           `envconfig:"EXEC_MAX_CONCURRENT" default:"8"`
	MaxOutputBytes int           `envconfig:"EXEC_MAX_OUTPUT_BYTES" default:"1048576"`
	WorkspaceRoot  string        `envconfig:"EXEC_WORKSPACE_ROOT" default:""`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "5001",
			Host: "0.0.0.0",
		},
		Store: StoreConfig{
			Path:         "sessions.db",
			Retention:    720 * time.Hour,
			ReapInterval: time.Hour,
		},
		Exec: ExecConfig{
			ImageTag:       "latest",
			Timeout:        10 * time.Second,
			MaxConcurrent:  8,
			MaxOutputBytes: 1 << 20,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
