// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/larder-app/larder/internal/metrics"
	"github.com/larder-app/larder/internal/models"
)

const profileKeyPrefix = "profile:"

// Profiles is the BadgerDB-backed personalization profile store.
type Profiles struct {
	db *badger.DB
}

// NewProfiles creates a profile store on an open Badger instance.
func NewProfiles(db *badger.DB) *Profiles {
	return &Profiles{db: db}
}

// Get loads a user's profile. A user with no stored profile gets a
// fresh empty one; callers never see a nil profile.
func (s *Profiles) Get(ctx context.Context, userID string) (*models.Profile, error) {
	profile := models.NewProfile(userID)

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(profileKeyPrefix + userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get profile: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, profile)
		})
	})
	metrics.ProfileStoreOps.WithLabelValues("get", outcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// Put stores a profile, overwriting any previous version.
func (s *Profiles) Put(ctx context.Context, profile *models.Profile) error {
	profile.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(profileKeyPrefix+profile.UserID), data)
	})
	metrics.ProfileStoreOps.WithLabelValues("put", outcome(err)).Inc()
	if err != nil {
		return fmt.Errorf("put profile: %w", err)
	}
	return nil
}

// ApplyFeedback runs fn against the user's current profile and persists
// the result inside one Update transaction. The read and the write share
// the transaction, so two concurrent feedback submissions for the same
// user cannot interleave and lose an update: Badger aborts the loser
// with ErrConflict and the call retries.
func (s *Profiles) ApplyFeedback(ctx context.Context, userID string, fn func(*models.Profile) error) (*models.Profile, error) {
	const maxRetries = 16

	var result *models.Profile
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		result, err = s.applyOnce(userID, fn)
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	metrics.ProfileStoreOps.WithLabelValues("apply_feedback", outcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Profiles) applyOnce(userID string, fn func(*models.Profile) error) (*models.Profile, error) {
	profile := models.NewProfile(userID)

	err := s.db.Update(func(txn *badger.Txn) error {
		key := []byte(profileKeyPrefix + userID)

		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			// first feedback for this user, start from empty
		case err != nil:
			return fmt.Errorf("get profile: %w", err)
		default:
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, profile)
			}); err != nil {
				return fmt.Errorf("unmarshal profile: %w", err)
			}
		}

		if err := fn(profile); err != nil {
			return err
		}
		profile.UpdatedAt = time.Now().UTC()

		data, err := json.Marshal(profile)
		if err != nil {
			return fmt.Errorf("marshal profile: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
