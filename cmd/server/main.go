// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

// Package main is the entry point for the Larder server.
//
// Larder is a self-hosted smart kitchen backend: it tracks a household's
// food inventory, predicts when each item expires, and learns per-user
// corrections from feedback so the predictions fit how that household
// actually stores and uses food.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered sources (defaults, config.yaml,
//     environment variables)
//  2. Logging: zerolog, with an slog bridge for the supervisor
//  3. Storage: DuckDB food inventory, Badger profile and user store
//  4. Predictor: base expiry table (built-in or CSV), local estimator,
//     optional remote model service behind a circuit breaker
//  5. Events: in-process watermill bus with prediction and feedback
//     consumers
//  6. HTTP API: chi router with JWT auth, CORS, and rate limiting
//  7. Supervision: suture tree running the HTTP server, event router,
//     and expiry sweeper
//
// # Configuration
//
// Required settings:
//   - JWT_SECRET: 32+ character secret for token signing
//
// Common settings:
//   - PORT (default 8650)
//   - DUCKDB_PATH: DuckDB file for the inventory (default /data/larder.duckdb)
//   - PROFILES_PATH: Badger directory for profiles and users (default /data/profiles)
//   - BASE_EXPIRY_TABLE: optional base-expiry CSV
//   - MODEL_SERVICE_URL: optional external model service
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: the HTTP
// server drains in-flight requests, the sweeper and event router stop,
// and both stores close cleanly.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/larder-app/larder/internal/api"
	"github.com/larder-app/larder/internal/auth"
	"github.com/larder-app/larder/internal/config"
	"github.com/larder-app/larder/internal/events"
	"github.com/larder-app/larder/internal/logging"
	"github.com/larder-app/larder/internal/predictor"
	"github.com/larder-app/larder/internal/storage"
	"github.com/larder-app/larder/internal/supervisor"
	"github.com/larder-app/larder/internal/supervisor/services"
	"github.com/larder-app/larder/internal/sweep"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("profiles_path", cfg.Profiles.Path).
		Bool("remote_model", cfg.Predictor.RemoteURL != "").
		Msg("Starting Larder")

	inventory, err := storage.NewInventory(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open inventory database")
	}
	defer func() {
		if err := inventory.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing inventory database")
		}
	}()

	profilesDB, err := storage.OpenBadger(&cfg.Profiles)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open profile store")
	}
	defer func() {
		if err := profilesDB.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing profile store")
		}
	}()

	profiles := storage.NewProfiles(profilesDB)
	users := storage.NewUsers(profilesDB)
	logging.Info().Msg("Storage initialized")

	table, err := loadTable(cfg)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Predictor.TablePath).Msg("Failed to load base expiry table")
	}

	var remote *predictor.RemoteClient
	if cfg.Predictor.RemoteURL != "" {
		remote = predictor.NewRemoteClient(predictor.RemoteConfig{
			URL:               cfg.Predictor.RemoteURL,
			Timeout:           cfg.Predictor.RemoteTimeout,
			RequestsPerSecond: cfg.Predictor.RequestsPerSecond,
			Burst:             cfg.Predictor.Burst,
		})
		logging.Info().Str("url", cfg.Predictor.RemoteURL).Msg("Remote model service enabled")
	}
	predictorSvc := predictor.NewService(predictor.NewEstimator(table), remote)

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}

	bus := events.NewBus()
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	eventRouter, err := events.NewRouter(bus)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build event router")
	}

	handler := api.NewHandler(cfg, inventory, profiles, profilesDB, predictorSvc, bus)
	authHandlers := auth.NewHandlers(users, jwtManager)
	router := api.NewRouter(handler, authHandlers, jwtManager,
		api.NewChiMiddleware(api.NewChiMiddlewareConfig(&cfg.Security)))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	tree.AddBackgroundService(services.NewEventRouterService(eventRouter))
	if cfg.Sweep.Enabled {
		sweeper := sweep.New(inventory, &cfg.Sweep)
		tree.AddBackgroundService(services.NewSweeperService(sweeper))
		logging.Info().Dur("interval", cfg.Sweep.Interval).Msg("Expiry sweeper enabled")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Larder stopped gracefully")
}

// loadTable returns the CSV-configured expiry table, or the built-in
// vocabulary when no path is set.
func loadTable(cfg *config.Config) (*predictor.Table, error) {
	if cfg.Predictor.TablePath == "" {
		return predictor.NewTable(), nil
	}
	return predictor.LoadTable(cfg.Predictor.TablePath)
}
