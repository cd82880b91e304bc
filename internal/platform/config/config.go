// Copyright (c) 2026 CampusGate. All rights reserved.
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
	"strings"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the CampusGate API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Cryptographic keys for session and identity signing
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH,required"`
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH,required"`

	// Feature flags, resolved once at startup and immutable afterwards.
	// Components receive the snapshot by injection; nothing reads the
	// environment ad hoc after Load returns.
	MagicLinkEnabled              bool   `env:"MAGIC_LINK_ENABLED"               envDefault:"false"`
	StaffEmailDomain              string `env:"STAFF_EMAIL_DOMAIN"`
	StaffDomainEnforcementEnabled bool   `env:"STAFF_DOMAIN_ENFORCEMENT_ENABLED" envDefault:"false"`
	SudoEnabled                   bool   `env:"SUDO_ENABLED"                     envDefault:"false"`
	SudoOverrideEmail             string `env:"SUDO_OVERRIDE_EMAIL"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
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

	// Cross-field rules the env tags cannot express.
	if cfg.SudoEnabled && strings.TrimSpace(cfg.SudoOverrideEmail) == "" {
		return nil, fmt.Errorf("config: SUDO_OVERRIDE_EMAIL is required when SUDO_ENABLED=true")
	}
	if cfg.StaffDomainEnforcementEnabled && strings.TrimSpace(cfg.StaffEmailDomain) == "" {
		return nil, fmt.Errorf("config: STAFF_EMAIL_DOMAIN is required when STAFF_DOMAIN_ENFORCEMENT_ENABLED=true")
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
