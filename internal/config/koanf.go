// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, first match
// wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/larder/config.yaml",
	"/etc/larder/config.yml",
}

// ConfigPathEnvVar overrides the config file search.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8650,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Path:      "/data/larder.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Profiles: ProfilesConfig{
			Path: "/data/profiles",
		},
		Predictor: PredictorConfig{
			TablePath:         "",
			RemoteURL:         "",
			RemoteTimeout:     5 * time.Second,
			RequestsPerSecond: 20,
			Burst:             10,
		},
		AED: AEDConfig{
			ItemLearningRate:              0.7,
			CategoryLearningRate:          0.3,
			MinFeedbackForPersonalization: 5,
			HistoryLimit:                  20,
		},
		Security: SecurityConfig{
			JWTSecret:         "",
			SessionTimeout:    24 * time.Hour,
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Sweep: SweepConfig{
			Enabled:  true,
			Interval: time.Hour,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	// cors_origins arrives as a comma-separated string from env.
	if raw := k.String("security.cors_origins"); raw != "" && !strings.HasPrefix(raw, "[") {
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if err := k.Set("security.cors_origins", parts); err != nil {
			return nil, fmt.Errorf("parse cors origins: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings translates flat environment variable names into koanf
// paths. Variables not listed here are ignored, which keeps unrelated
// environment noise out of the configuration.
var envMappings = map[string]string{
	"host":             "server.host",
	"port":             "server.port",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	"profiles_path":      "profiles.path",
	"profiles_in_memory": "profiles.in_memory",

	"base_expiry_table":     "predictor.table_path",
	"model_service_url":     "predictor.remote_url",
	"model_service_timeout": "predictor.remote_timeout",
	"model_service_rps":     "predictor.requests_per_second",
	"model_service_burst":   "predictor.burst",

	"aed_item_learning_rate":     "aed.item_learning_rate",
	"aed_category_learning_rate": "aed.category_learning_rate",
	"aed_min_feedback":           "aed.min_feedback_for_personalization",
	"aed_history_limit":          "aed.history_limit",

	"jwt_secret":          "security.jwt_secret",
	"session_timeout":     "security.session_timeout",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",
	"rate_limit_disabled": "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"sweep_enabled":  "sweep.enabled",
	"sweep_interval": "sweep.interval",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
