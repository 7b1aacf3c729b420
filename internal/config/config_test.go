// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package config

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Security.JWTSecret = testSecret
	return cfg
}

func TestLoadDefaultsWithEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("PORT", "9000")
	t.Setenv("DUCKDB_PATH", "/tmp/larder-test.duckdb")
	t.Setenv("AED_ITEM_LEARNING_RATE", "0.5")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SWEEP_INTERVAL", "30m")
	t.Setenv("SOME_UNRELATED_VAR", "ignored")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Database.Path != "/tmp/larder-test.duckdb" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.AED.ItemLearningRate != 0.5 {
		t.Errorf("AED.ItemLearningRate = %f, want 0.5", cfg.AED.ItemLearningRate)
	}
	if cfg.AED.CategoryLearningRate != 0.3 {
		t.Errorf("AED.CategoryLearningRate = %f, want default 0.3", cfg.AED.CategoryLearningRate)
	}
	if cfg.Sweep.Interval != 30*time.Minute {
		t.Errorf("Sweep.Interval = %v, want 30m", cfg.Sweep.Interval)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[0] != want[0] || cfg.Security.CORSOrigins[1] != want[1] {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "jwt_secret") {
		t.Errorf("Load() without JWT_SECRET: error = %v, want jwt_secret failure", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults with secret pass",
			mutate: func(c *Config) {},
		},
		{
			name:    "short secret",
			mutate:  func(c *Config) { c.Security.JWTSecret = "short" },
			wantErr: "32 characters",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "port",
		},
		{
			name:    "learning rate above one",
			mutate:  func(c *Config) { c.AED.ItemLearningRate = 1.5 },
			wantErr: "item_learning_rate",
		},
		{
			name:    "sweep enabled without interval",
			mutate:  func(c *Config) { c.Sweep.Interval = 0 },
			wantErr: "sweep.interval",
		},
		{
			name: "in-memory profiles need no path",
			mutate: func(c *Config) {
				c.Profiles.Path = ""
				c.Profiles.InMemory = true
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
