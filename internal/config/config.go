// Copyright (c) 2025 MC Youniverse
//
// This file is part of the attendance service.
//
// attendance is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@mcyouniverse.com for commercial licensing options.

// Package config loads the attendance service configuration from an optional
// YAML file with ATTENDANCE_-prefixed environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mcyouniverse/attendance/pkg/webauthn"
)

// Config represents the complete service configuration.
type Config struct {
	Server   ServerConfig    `yaml:"server" mapstructure:"server"`
	Database DatabaseConfig  `yaml:"database" mapstructure:"database"`
	Session  SessionConfig   `yaml:"session" mapstructure:"session"`
	CORS     CORSConfig      `yaml:"cors" mapstructure:"cors"`
	Logging  LoggingConfig   `yaml:"logging" mapstructure:"logging"`
	Metrics  MetricsConfig   `yaml:"metrics" mapstructure:"metrics"`
	WebAuthn webauthn.Config `yaml:"webauthn" mapstructure:"webauthn"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Listen          string        `yaml:"listen" mapstructure:"listen"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`

	// RateLimitPerMinute caps requests per client IP. Zero disables limiting.
	RateLimitPerMinute float64 `yaml:"rate_limit_per_minute" mapstructure:"rate_limit_per_minute"`
	RateLimitBurst     int     `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
}

// DatabaseConfig contains postgres settings. An empty URL selects the
// in-memory stores, for development only.
type DatabaseConfig struct {
	URL     string `yaml:"url" mapstructure:"url"`
	Migrate bool   `yaml:"migrate" mapstructure:"migrate"`
}

// SessionConfig controls the signed session cookie issued after a successful
// ceremony.
type SessionConfig struct {
	Secret string        `yaml:"secret" mapstructure:"secret"`
	TTL    time.Duration `yaml:"ttl" mapstructure:"ttl"`
	Secure bool          `yaml:"secure" mapstructure:"secure"`
}

// CORSConfig controls cross-origin access for the browser client.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// MetricsConfig controls the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// Load reads configuration from an optional YAML file and the environment.
// Environment variables use the ATTENDANCE_ prefix with underscores for
// nesting, e.g. ATTENDANCE_DATABASE_URL, ATTENDANCE_WEBAUTHN_ID.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ATTENDANCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg.WebAuthn.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.rate_limit_per_minute", float64(100)/15)
	v.SetDefault("server.rate_limit_burst", 20)
	v.SetDefault("database.url", "")
	v.SetDefault("database.migrate", true)
	// The secret has no usable default; registering the key makes the
	// ATTENDANCE_SESSION_SECRET override visible to Unmarshal.
	v.SetDefault("session.secret", "")
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.secure", true)
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("webauthn.id", "localhost")
	v.SetDefault("webauthn.display_name", "Attendance")
	v.SetDefault("webauthn.origins", []string{"http://localhost:3000"})
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.Server.Listen == "" {
		return fmt.Errorf("server listen address is required")
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("session secret is required")
	}
	if len(c.Session.Secret) < 32 {
		return fmt.Errorf("session secret must be at least 32 bytes")
	}
	return c.WebAuthn.Validate()
}
