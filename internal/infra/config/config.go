package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	DatabaseURL string
	LogLevel    string
	Environment string

	// CronSpecScheduledRuns triggers the scheduled notification runs,
	// by default twice a month.
	CronSpecScheduledRuns string

	// Defaults applied when an organization's e-mail settings leave the
	// pacing fields unset.
	DefaultDelaySeconds float64
	DefaultMaxRetries   int
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.CronSpecScheduledRuns = os.Getenv("CRON_SPEC_SCHEDULED_RUNS")
	if cfg.CronSpecScheduledRuns == "" {
		cfg.CronSpecScheduledRuns = "0 9 1,15 * *" // Default: 09:00 on the 1st and 15th
	}

	delayStr := os.Getenv("DEFAULT_SEND_DELAY_SECONDS")
	if delayStr == "" {
		cfg.DefaultDelaySeconds = 1.0
	} else {
		delay, err := strconv.ParseFloat(delayStr, 64)
		if err != nil || delay < 0 {
			return nil, fmt.Errorf("invalid DEFAULT_SEND_DELAY_SECONDS: %q", delayStr)
		}
		cfg.DefaultDelaySeconds = delay
	}

	retriesStr := os.Getenv("DEFAULT_MAX_RETRIES")
	if retriesStr == "" {
		cfg.DefaultMaxRetries = 3
	} else {
		retries, err := strconv.Atoi(retriesStr)
		if err != nil || retries < 0 {
			return nil, fmt.Errorf("invalid DEFAULT_MAX_RETRIES: %q", retriesStr)
		}
		cfg.DefaultMaxRetries = retries
	}

	return cfg, nil
}
