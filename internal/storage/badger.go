// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package storage

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/larder-app/larder/internal/config"
)

// OpenBadger opens the profile/user database. The same Badger instance
// backs both stores; keys are prefix-partitioned.
func OpenBadger(cfg *config.ProfilesConfig) (*badger.DB, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create profiles directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	// Badger's own logger is too chatty for startup; errors surface
	// through the returned values anyway.
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open profile database: %w", err)
	}
	return db, nil
}
