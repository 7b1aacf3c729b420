// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

// Package config loads Larder's configuration via Koanf v2 with layered
// sources, highest priority last:
//
//  1. Built-in defaults
//  2. Optional YAML config file (config.yaml, or CONFIG_PATH)
//  3. Environment variables
//
// Config is immutable after Load and safe for concurrent reads.
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Profiles  ProfilesConfig  `koanf:"profiles"`
	Predictor PredictorConfig `koanf:"predictor"`
	AED       AEDConfig       `koanf:"aed"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
	Sweep     SweepConfig     `koanf:"sweep"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development or production
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds DuckDB settings for the food inventory store.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()
}

// ProfilesConfig holds Badger settings for the personalization profile
// and user credential store.
type ProfilesConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"` // for tests and ephemeral deployments
}

// PredictorConfig holds baseline predictor settings.
type PredictorConfig struct {
	// TablePath optionally points at a base-expiry CSV overriding the
	// built-in vocabulary.
	TablePath string `koanf:"table_path"`

	// RemoteURL enables the external model service when non-empty.
	RemoteURL         string        `koanf:"remote_url"`
	RemoteTimeout     time.Duration `koanf:"remote_timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
}

// AEDConfig holds the personalization engine tuning knobs.
type AEDConfig struct {
	// ItemLearningRate is the nominal learning rate for item-level keys.
	ItemLearningRate float64 `koanf:"item_learning_rate"`

	// CategoryLearningRate is the nominal learning rate for
	// category-level keys.
	CategoryLearningRate float64 `koanf:"category_learning_rate"`

	// MinFeedbackForPersonalization gates personalized predictions until
	// an item has this many feedback events.
	MinFeedbackForPersonalization int `koanf:"min_feedback_for_personalization"`

	// HistoryLimit bounds the per-food prediction history.
	HistoryLimit int `koanf:"history_limit"`
}

// SecurityConfig holds authentication and rate limiting settings.
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SweepConfig holds the expiry sweeper settings.
type SweepConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval"`
}

// Validate checks cross-field constraints that koanf cannot express.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if !c.Profiles.InMemory && c.Profiles.Path == "" {
		return fmt.Errorf("profiles.path is required unless profiles.in_memory is set")
	}
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("security.jwt_secret is required (set JWT_SECRET)")
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("security.jwt_secret must be at least 32 characters")
	}
	if c.AED.ItemLearningRate <= 0 || c.AED.ItemLearningRate > 1 {
		return fmt.Errorf("aed.item_learning_rate %f out of (0, 1]", c.AED.ItemLearningRate)
	}
	if c.AED.CategoryLearningRate <= 0 || c.AED.CategoryLearningRate > 1 {
		return fmt.Errorf("aed.category_learning_rate %f out of (0, 1]", c.AED.CategoryLearningRate)
	}
	if c.AED.MinFeedbackForPersonalization < 0 {
		return fmt.Errorf("aed.min_feedback_for_personalization must be non-negative")
	}
	if c.Sweep.Enabled && c.Sweep.Interval <= 0 {
		return fmt.Errorf("sweep.interval must be positive when sweep is enabled")
	}
	return nil
}
