// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

// Package sweep implements the periodic expiry sweeper. Days-left and
// priority are functions of the calendar, so stored values drift stale
// overnight; the sweeper recomputes them for every record on an
// interval, keeping list responses and dashboards honest without a
// prediction round trip.
package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/larder-app/larder/internal/aed"
	"github.com/larder-app/larder/internal/config"
	"github.com/larder-app/larder/internal/logging"
	"github.com/larder-app/larder/internal/metrics"
	"github.com/larder-app/larder/internal/models"
	"github.com/larder-app/larder/internal/storage"
)

// Sweeper periodically refreshes the live urgency fields of all stored
// food records.
type Sweeper struct {
	inventory *storage.Inventory
	interval  time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// New creates a sweeper over the inventory store.
func New(inventory *storage.Inventory, cfg *config.SweepConfig) *Sweeper {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		inventory: inventory,
		interval:  interval,
		now:       time.Now,
	}
}

// Run executes sweeps on the configured interval until ctx is canceled.
// One sweep runs immediately on startup so a restarted service does not
// serve stale urgency for up to a full interval.
func (s *Sweeper) Run(ctx context.Context) error {
	if _, err := s.RunOnce(ctx); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Initial expiry sweep failed")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				logging.Ctx(ctx).Error().Err(err).Msg("Expiry sweep failed")
			}
		}
	}
}

// RunOnce recomputes days-left and priority for every record, returning
// the number of records refreshed. Records whose stored values already
// match are skipped.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	started := s.now()

	foods, err := s.inventory.ListAll(ctx)
	if err != nil {
		metrics.RecordSweep(s.now().Sub(started), 0, err)
		return 0, fmt.Errorf("sweep list: %w", err)
	}

	refreshed := 0
	for _, f := range foods {
		if ctx.Err() != nil {
			metrics.RecordSweep(s.now().Sub(started), refreshed, ctx.Err())
			return refreshed, ctx.Err()
		}

		expiry := f.FinalExpiryDate
		if expiry == "" {
			expiry = f.PrintedExpiryDate
		}

		daysLeft := models.DaysLeft(expiry, f.PurchaseDate, s.now())
		priority := aed.Score(float64(daysLeft))
		if daysLeft == f.DaysLeftAtSave && priority == f.PriorityScore {
			continue
		}

		if err := s.inventory.RefreshLiveScore(ctx, f.ID.String(), daysLeft, priority); err != nil {
			metrics.RecordSweep(s.now().Sub(started), refreshed, err)
			return refreshed, fmt.Errorf("sweep refresh %s: %w", f.ID, err)
		}
		refreshed++
	}

	metrics.RecordSweep(s.now().Sub(started), refreshed, nil)
	logging.Ctx(ctx).Debug().
		Int("records", len(foods)).
		Int("refreshed", refreshed).
		Dur("duration", s.now().Sub(started)).
		Msg("Expiry sweep complete")
	return refreshed, nil
}
