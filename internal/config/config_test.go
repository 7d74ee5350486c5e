package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "ENV", "TIMEZONE", "REFERENCE_SOURCE", "DATA_DIR", "DATABASE_PATH",
	"API_KEY", "LOG_LEVEL", "LOG_FORMAT", "WARM_CRON", "MAX_RANGE_DAYS",
}

// clearEnv blanks every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "America/New_York", cfg.Timezone)
	assert.Equal(t, SourceEmbedded, cfg.ReferenceSource)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "5 0 * * *", cfg.WarmCron)
	assert.Equal(t, 90, cfg.MaxRangeDays)
	assert.Equal(t, "America/New_York", cfg.Location().String())
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "3000")
	t.Setenv("ENV", "production")
	t.Setenv("TIMEZONE", "Europe/London")
	t.Setenv("REFERENCE_SOURCE", "sqlite")
	t.Setenv("DATABASE_PATH", "/data/test.db")
	t.Setenv("API_KEY", "secret-key-123")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("WARM_CRON", "@hourly")
	t.Setenv("MAX_RANGE_DAYS", "31")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, SourceSQLite, cfg.ReferenceSource)
	assert.Equal(t, "/data/test.db", cfg.DatabasePath)
	assert.Equal(t, "secret-key-123", cfg.APIKey)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "@hourly", cfg.WarmCron)
	assert.Equal(t, 31, cfg.MaxRangeDays)
	assert.Equal(t, "Europe/London", cfg.Location().String())
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "0")
	t.Setenv("TIMEZONE", "Mars/Olympus_Mons")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT must be between")
	assert.Contains(t, err.Error(), "TIMEZONE")
}

func validConfig() Config {
	return Config{
		Port:            8080,
		Env:             EnvDevelopment,
		Timezone:        "UTC",
		ReferenceSource: SourceEmbedded,
		LogLevel:        "info",
		LogFormat:       "text",
		WarmCron:        "5 0 * * *",
		MaxRangeDays:    90,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid development config", func(c *Config) {}, ""},
		{"valid production config", func(c *Config) { c.Env = EnvProduction; c.APIKey = "k" }, ""},
		{"warm-up disabled", func(c *Config) { c.WarmCron = "" }, ""},
		{"production requires API key", func(c *Config) { c.Env = EnvProduction }, "API_KEY"},
		{"invalid port - too low", func(c *Config) { c.Port = 0 }, "PORT"},
		{"invalid port - too high", func(c *Config) { c.Port = 70000 }, "PORT"},
		{"invalid environment", func(c *Config) { c.Env = "invalid" }, "ENV must be"},
		{"invalid timezone", func(c *Config) { c.Timezone = "Nowhere/Else" }, "TIMEZONE"},
		{"invalid source", func(c *Config) { c.ReferenceSource = "s3" }, "REFERENCE_SOURCE"},
		{"dir source needs dir", func(c *Config) { c.ReferenceSource = SourceDir }, "DATA_DIR"},
		{"sqlite source needs path", func(c *Config) { c.ReferenceSource = SourceSQLite }, "DATABASE_PATH"},
		{"invalid log level", func(c *Config) { c.LogLevel = "verbose" }, "LOG_LEVEL"},
		{"invalid log format", func(c *Config) { c.LogFormat = "xml" }, "LOG_FORMAT"},
		{"invalid cron", func(c *Config) { c.WarmCron = "every day" }, "WARM_CRON"},
		{"range too long", func(c *Config) { c.MaxRangeDays = 1000 }, "MAX_RANGE_DAYS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Validate_JoinsErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = -1
	cfg.LogFormat = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
	assert.Contains(t, err.Error(), "LOG_FORMAT")
}

func TestConfig_Today(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, time.UTC, cfg.Location(), "UTC before Validate")

	cfg.Timezone = "Pacific/Kiritimati"
	require.NoError(t, cfg.Validate())

	today := cfg.Today()
	now := time.Now().In(cfg.Location())
	assert.Equal(t, now.Day(), today.Day())
	assert.Equal(t, time.UTC, today.Location())
	assert.Zero(t, today.Hour())
}

func TestConfig_IsDevelopment(t *testing.T) {
	cfg := &Config{Env: EnvDevelopment}
	assert.True(t, cfg.IsDevelopment())

	cfg.Env = EnvProduction
	assert.False(t, cfg.IsDevelopment())
	assert.True(t, cfg.IsProduction())
}

func TestConfig_UseTimezone(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.UseTimezone("Asia/Tokyo"))
	assert.Equal(t, "Asia/Tokyo", cfg.Timezone)
	assert.Equal(t, "Asia/Tokyo", cfg.Location().String())

	err := cfg.UseTimezone("Mars/Olympus_Mons")
	assert.ErrorContains(t, err, "TIMEZONE")
	assert.Equal(t, "Asia/Tokyo", cfg.Timezone, "failed change keeps the previous zone")
}
