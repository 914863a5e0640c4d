// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// FailureSleepMS is the fixed delay in milliseconds added to
	// authentication failure paths to mask timing differences.
	FailureSleepMS int `mapstructure:"FAILURE_SLEEP_MS"`
	// SessionTTL is the session lifetime (e.g. "336h" for 14 days).
	SessionTTL string `mapstructure:"SESSION_TTL"`
	// TOTPIssuer is the issuer shown in authenticator apps.
	TOTPIssuer string `mapstructure:"TOTP_ISSUER"`
	// RecoveryCodeCount is how many one-time recovery codes a setup or
	// reset produces.
	RecoveryCodeCount int `mapstructure:"RECOVERY_CODE_COUNT"`
	// OTLPEndpoint is the OTLP gRPC collector endpoint; empty disables
	// telemetry export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment via Viper. Missing .env is ignored (e.g. in CI). Env vars
// override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("FAILURE_SLEEP_MS", 100)
	v.SetDefault("SESSION_TTL", "336h") // 14d
	v.SetDefault("TOTP_ISSUER", "authplane")
	v.SetDefault("RECOVERY_CODE_COUNT", 8)
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	if cfg.FailureSleepMS < 0 {
		return nil, errors.New("config: FAILURE_SLEEP_MS must not be negative")
	}

	if cfg.RecoveryCodeCount < 1 || cfg.RecoveryCodeCount > 24 {
		return nil, errors.New("config: RECOVERY_CODE_COUNT must be between 1 and 24")
	}

	return &cfg, nil
}

// SessionLifetime parses SessionTTL as a time.Duration. Returns 336h if
// unset or invalid.
func (c *Config) SessionLifetime() time.Duration {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil || d <= 0 {
		return 336 * time.Hour
	}
	return d
}

// FailureSleep returns the fixed failure delay as a time.Duration.
func (c *Config) FailureSleep() time.Duration {
	return time.Duration(c.FailureSleepMS) * time.Millisecond
}
