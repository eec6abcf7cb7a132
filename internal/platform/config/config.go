// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Bookhub API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// ServerBaseURL is the public origin used to build file download links.
	ServerBaseURL string `env:"SERVER_BASE_URL,required,notEmpty"`

	// Relational Database (PostgreSQL)
	DatabaseURL      string `env:"DATABASE_URL,required,notEmpty"`
	DatabaseMaxConns int32  `env:"DATABASE_MAX_CONNS" envDefault:"20"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis), used for the cleanup lock
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// BlockAdminSignup makes POST /api/auth/register refuse the ADMIN role
	BlockAdminSignup bool `env:"BLOCK_ADMIN_SIGNUP" envDefault:"false"`

	// LockSelfRole makes self-service profile updates refuse a role change
	LockSelfRole bool `env:"LOCK_SELF_ROLE" envDefault:"false"`

	// JWTSecretKey signs and verifies identity tokens (HS384, at least 48 bytes)
	JWTSecretKey string `env:"JWT_SECRET_KEY,required,notEmpty"`

	// JWTAccessTTL is the lifetime of an issued token
	JWTAccessTTL time.Duration `env:"JWT_ACCESS_TTL" envDefault:"1h"`

	// Local file storage
	UploadDir         string        `env:"UPLOAD_DIR"           envDefault:"./uploads"`
	MaxUploadBytes    int64         `env:"MAX_UPLOAD_BYTES"     envDefault:"10485760"`
	FileCleanupMinAge time.Duration `env:"FILE_CLEANUP_MIN_AGE" envDefault:"1h"`

	// Cross-Origin Resource Sharing
	ExtraOrigins []string `env:"EXTRA_ORIGINS" envSeparator:","`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks cross-field rules the env tags cannot express.
func (c *Config) validate() error {
	baseURL, err := url.Parse(c.ServerBaseURL)
	if err != nil || baseURL.Scheme == "" || baseURL.Host == "" {
		return fmt.Errorf("config: SERVER_BASE_URL must be an absolute URL, got %q", c.ServerBaseURL)
	}
	c.ServerBaseURL = strings.TrimRight(c.ServerBaseURL, "/")

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("config: MAX_UPLOAD_BYTES must be positive")
	}

	if c.JWTAccessTTL <= 0 {
		return fmt.Errorf("config: JWT_ACCESS_TTL must be positive")
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the configured CORS origins.
func (c *Config) AllowedOrigins() []string {
	return c.ExtraOrigins
}
