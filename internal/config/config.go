// Package config loads notekeeper configuration from environment variables and
// CLI flag values, validates it, and fills in defaults.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kuitang/notekeeper/internal/auth"
	"github.com/kuitang/notekeeper/internal/obs"
	"github.com/kuitang/notekeeper/internal/ratelimit"
)

// Config holds all application configuration.
type Config struct {
	// Accounts
	MinPasswordLength int
	PasswordHasher    string // sha256 or argon2

	// Login throttling
	LoginRateLimit ratelimit.Config

	// Logging
	LogLevel  string
	LogFormat string // json or text

	// Optional YAML seed applied at startup
	SeedFile string
}

// ValidationError represents a configuration validation error with multiple issues.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Default returns the configuration used when no environment variables are set.
func Default() Config {
	return Config{
		MinPasswordLength: auth.DefaultMinPasswordLength,
		PasswordHasher:    "sha256",
		LoginRateLimit:    ratelimit.DefaultConfig,
		LogLevel:          "info",
		LogFormat:         "json",
	}
}

// LoadConfig loads configuration from environment variables.
// A non-empty seedFlag overrides the SEED_FILE env var.
func LoadConfig(seedFlag string) (*Config, error) {
	def := Default()
	cfg := &Config{}

	cfg.MinPasswordLength = parseIntOrDefault("MIN_PASSWORD_LENGTH", def.MinPasswordLength)
	cfg.PasswordHasher = strings.ToLower(getEnvOrDefault("PASSWORD_HASHER", def.PasswordHasher))

	cfg.LoginRateLimit = ratelimit.Config{
		RPS:             parseFloat64OrDefault("LOGIN_RATE_LIMIT_RPS", def.LoginRateLimit.RPS),
		Burst:           parseIntOrDefault("LOGIN_RATE_LIMIT_BURST", def.LoginRateLimit.Burst),
		CleanupInterval: parseDurationOrDefault("LOGIN_RATE_LIMIT_CLEANUP_INTERVAL", def.LoginRateLimit.CleanupInterval),
	}

	cfg.LogLevel = strings.ToLower(getEnvOrDefault("LOG_LEVEL", def.LogLevel))
	cfg.LogFormat = strings.ToLower(getEnvOrDefault("LOG_FORMAT", def.LogFormat))

	cfg.SeedFile = getEnvOrDefault("SEED_FILE", "")
	if seedFlag != "" {
		cfg.SeedFile = seedFlag
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every setting is usable and reports all problems at once.
func (c *Config) Validate() error {
	var errs []string

	if c.MinPasswordLength < 1 {
		errs = append(errs, "MIN_PASSWORD_LENGTH must be at least 1")
	}
	if _, err := auth.HasherByName(c.PasswordHasher); err != nil {
		errs = append(errs, fmt.Sprintf("PASSWORD_HASHER must be sha256 or argon2, got %q", c.PasswordHasher))
	}

	if c.LoginRateLimit.RPS <= 0 {
		errs = append(errs, "LOGIN_RATE_LIMIT_RPS must be positive")
	}
	if c.LoginRateLimit.Burst <= 0 {
		errs = append(errs, "LOGIN_RATE_LIMIT_BURST must be positive")
	}
	if c.LoginRateLimit.CleanupInterval <= 0 {
		errs = append(errs, "LOGIN_RATE_LIMIT_CLEANUP_INTERVAL must be positive")
	}

	if _, err := obs.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel))
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be json or text, got %q", c.LogFormat))
	}

	if c.SeedFile != "" {
		if _, err := os.Stat(c.SeedFile); err != nil {
			errs = append(errs, fmt.Sprintf("SEED_FILE %q is not readable: %v", c.SeedFile, err))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// ObsOptions converts the logging settings for obs.Init. Call after Validate.
func (c *Config) ObsOptions() obs.Options {
	level, err := obs.ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return obs.Options{Level: level, Format: c.LogFormat}
}

// PrintStartupSummary prints a human-readable summary of the configuration.
func (c *Config) PrintStartupSummary(w io.Writer) {
	fmt.Fprintln(w, "notekeeper starting...")
	fmt.Fprintf(w, "  Hasher:   %s (min password length %d)\n", c.PasswordHasher, c.MinPasswordLength)
	fmt.Fprintf(w, "  Login:    %.4g/s, burst %d\n", c.LoginRateLimit.RPS, c.LoginRateLimit.Burst)
	fmt.Fprintf(w, "  Logging:  %s, %s\n", c.LogLevel, c.LogFormat)
	if c.SeedFile != "" {
		fmt.Fprintf(w, "  Seed:     %s\n", c.SeedFile)
	}
}

// Helper functions for parsing environment variables

func getEnvOrDefault(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func parseIntOrDefault(key string, defaultValue int) int {
	value := getEnvOrDefault(key, "")
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseFloat64OrDefault(key string, defaultValue float64) float64 {
	value := getEnvOrDefault(key, "")
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := getEnvOrDefault(key, "")
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
