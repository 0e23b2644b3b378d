// Package config loads service settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every environment variable, e.g. SATSVAL_ADDR
const Prefix = "SATSVAL"

// Config holds the service settings
type Config struct {
	Addr            string        `envconfig:"ADDR" default:":3000"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"INFO"`
	FeedURL         string        `envconfig:"FEED_URL" default:"https://api.coinbase.com"`
	FeedTimeout     time.Duration `envconfig:"FEED_TIMEOUT" default:"10s"`
	RateTTL         time.Duration `envconfig:"RATE_TTL" default:"3s"`
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"5s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load reads envFiles (or ./.env when none are given) into the process
// environment, then fills Config from it. Missing .env files are not an error.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot run with
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("listen address must not be empty")
	}
	if c.RateTTL <= 0 {
		return fmt.Errorf("rate TTL must be positive, got %s", c.RateTTL)
	}
	if c.FeedTimeout <= 0 {
		return fmt.Errorf("feed timeout must be positive, got %s", c.FeedTimeout)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("refresh interval must not be negative, got %s", c.RefreshInterval)
	}
	return nil
}
