// Package config handles application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // zone database for minimal containers

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds all application configuration.
// Fields are populated from environment variables.
type Config struct {
	// Server settings
	Port int    // HTTP port to listen on
	Env  string // development, staging, production

	// Calendar
	Timezone string // IANA zone that defines "today"

	// Reference tables
	ReferenceSource string // embedded, dir, sqlite
	DataDir         string // directory of JSON tables when ReferenceSource=dir
	DatabasePath    string // Path to SQLite file when ReferenceSource=sqlite

	// Authentication
	APIKey string // API key for admin endpoints

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text

	// Cache
	WarmCron     string // standard 5-field cron spec for cache warm-up; empty disables
	MaxRangeDays int    // longest span served by the range endpoint

	location *time.Location
}

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Reference table sources
const (
	SourceEmbedded = "embedded"
	SourceDir      = "dir"
	SourceSQLite   = "sqlite"
)

// Load reads configuration from environment variables.
// In development, it first loads from .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	// This is a no-op in production where env vars are set directly
	_ = godotenv.Load()

	cfg := &Config{}

	// Server settings
	cfg.Port = getEnvInt("PORT", 8080)
	cfg.Env = getEnv("ENV", EnvDevelopment)

	// Calendar
	cfg.Timezone = getEnv("TIMEZONE", "America/New_York")

	// Reference tables
	cfg.ReferenceSource = getEnv("REFERENCE_SOURCE", SourceEmbedded)
	cfg.DataDir = getEnv("DATA_DIR", "./data/reference")
	cfg.DatabasePath = getEnv("DATABASE_PATH", "./data/daily-office.db")

	// Authentication
	cfg.APIKey = getEnv("API_KEY", "")

	// Logging
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "text")

	// Cache
	cfg.WarmCron = getEnv("WARM_CRON", "5 0 * * *")
	cfg.MaxRangeDays = getEnvInt("MAX_RANGE_DAYS", 90)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var errs []error

	// Validate port range
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}

	// Validate environment
	switch c.Env {
	case EnvDevelopment, EnvStaging, EnvProduction:
		// Valid
	default:
		errs = append(errs, fmt.Errorf("ENV must be one of: development, staging, production; got %q", c.Env))
	}

	if err := c.UseTimezone(c.Timezone); err != nil {
		errs = append(errs, err)
	}

	switch c.ReferenceSource {
	case SourceEmbedded:
	case SourceDir:
		if c.DataDir == "" {
			errs = append(errs, errors.New("DATA_DIR is required when REFERENCE_SOURCE=dir"))
		}
	case SourceSQLite:
		if c.DatabasePath == "" {
			errs = append(errs, errors.New("DATABASE_PATH is required when REFERENCE_SOURCE=sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("REFERENCE_SOURCE must be one of: embedded, dir, sqlite; got %q", c.ReferenceSource))
	}

	// API key is required in production
	if c.IsProduction() && c.APIKey == "" {
		errs = append(errs, errors.New("API_KEY is required in production"))
	}

	// Validate log level
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
		// Valid
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error; got %q", c.LogLevel))
	}

	// Validate log format
	switch c.LogFormat {
	case "json", "text":
		// Valid
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be one of: json, text; got %q", c.LogFormat))
	}

	if c.WarmCron != "" {
		if _, err := cron.ParseStandard(c.WarmCron); err != nil {
			errs = append(errs, fmt.Errorf("WARM_CRON %q: %w", c.WarmCron, err))
		}
	}

	if c.MaxRangeDays < 1 || c.MaxRangeDays > 400 {
		errs = append(errs, fmt.Errorf("MAX_RANGE_DAYS must be between 1 and 400, got %d", c.MaxRangeDays))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// UseTimezone sets the zone that defines "today".
func (c *Config) UseTimezone(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", name, err)
	}
	c.Timezone = name
	c.location = loc
	return nil
}

// Location returns the configured time zone, or UTC before Validate has
// succeeded.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// Today returns the civil date in the configured time zone.
func (c *Config) Today() time.Time {
	now := time.Now().In(c.Location())
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// getEnv reads an environment variable with a default fallback.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
