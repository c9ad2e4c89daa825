// Package config loads application configuration from the environment,
// with an optional .env file for local development.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration
type Config struct {
	DataBaseURL    string `envconfig:"DATA_BASE_URL" default:"https://query1.finance.yahoo.com/v8/finance/chart"`
	Benchmark      string `envconfig:"BENCHMARK" default:"SPY"`
	LookbackDays   int    `envconfig:"LOOKBACK_DAYS" default:"250"`
	RequestTimeout int    `envconfig:"REQUEST_TIMEOUT" default:"30"` // seconds
	RequestsPerSec int    `envconfig:"REQUESTS_PER_SEC" default:"5"`

	CommissionBps   float64 `envconfig:"COMMISSION_BPS" default:"1.0"`
	PortfolioDir    string  `envconfig:"PORTFOLIO_DIR" default:""`
	CalibrationFile string  `envconfig:"CALIBRATION_FILE" default:""`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configured ranges.
func (c *Config) Validate() error {
	if c.LookbackDays < 2 {
		return fmt.Errorf("LOOKBACK_DAYS must be at least 2, got %d", c.LookbackDays)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %d", c.RequestTimeout)
	}
	if c.RequestsPerSec <= 0 {
		return fmt.Errorf("REQUESTS_PER_SEC must be positive, got %d", c.RequestsPerSec)
	}
	if c.CommissionBps < 0 {
		return fmt.Errorf("COMMISSION_BPS must not be negative, got %f", c.CommissionBps)
	}
	return nil
}
