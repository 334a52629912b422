// Package config loads service configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable the service reads at startup.
type Config struct {
	Addr         string `env:"ADDR" envDefault:":8080"`
	DatabaseURL  string `env:"DATABASE_URL,required,notEmpty"`
	DailyLimit   int64  `env:"DAILY_LIMIT" envDefault:"5"`
	DailyResetAt string `env:"DAILY_RESET_AT" envDefault:"00:00"`
	AdminToken   string `env:"ADMIN_TOKEN"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
}

// Parse loads and validates the configuration.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DailyLimit < 0 {
		return Config{}, fmt.Errorf("DAILY_LIMIT must be non-negative, got %d", cfg.DailyLimit)
	}
	return cfg, nil
}
