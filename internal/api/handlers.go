// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package api

import (
	"net/http"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/larder-app/larder/internal/config"
	"github.com/larder-app/larder/internal/events"
	"github.com/larder-app/larder/internal/predictor"
	"github.com/larder-app/larder/internal/storage"
)

// Handler carries the dependencies shared by all food endpoints.
type Handler struct {
	cfg       *config.Config
	inventory *storage.Inventory
	profiles  *storage.Profiles
	predictor *predictor.Service
	bus       *events.Bus

	// profilesDB is checked directly for readiness; Badger has no ping.
	profilesDB *badger.DB

	startTime time.Time
}

// NewHandler creates the food endpoint handler set.
func NewHandler(cfg *config.Config, inventory *storage.Inventory, profiles *storage.Profiles, profilesDB *badger.DB, svc *predictor.Service, bus *events.Bus) *Handler {
	return &Handler{
		cfg:        cfg,
		inventory:  inventory,
		profiles:   profiles,
		predictor:  svc,
		bus:        bus,
		profilesDB: profilesDB,
		startTime:  time.Now(),
	}
}

// HealthCheck reports liveness. It never touches the stores, so a
// wedged database does not take the probe down with it.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, time.Now(), map[string]interface{}{
		"status":         "healthy",
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	})
}

// ReadyCheck reports readiness: the inventory database answers a ping
// and the profile store is open.
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"inventory": "ok",
		"profiles":  "ok",
	}
	healthy := true

	if err := h.inventory.Ping(r.Context()); err != nil {
		checks["inventory"] = err.Error()
		healthy = false
	}
	if h.profilesDB == nil || h.profilesDB.IsClosed() {
		checks["profiles"] = "closed"
		healthy = false
	}

	status := http.StatusOK
	state := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "not_ready"
	}

	respondData(w, status, time.Now(), map[string]interface{}{
		"status": state,
		"checks": checks,
	})
}

// Options returns the item and category vocabulary clients build their
// pickers from.
func (h *Handler) Options(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	respondData(w, http.StatusOK, started, map[string]interface{}{
		"allowed_items": h.predictor.Table().AllowedItems(),
		"categories":    predictor.Categories,
		"storage_types": []string{predictor.StorageFridge, predictor.StorageFreezer, predictor.StoragePantry},
	})
}
