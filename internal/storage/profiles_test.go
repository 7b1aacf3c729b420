// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/dgraph-io/badger/v4"

	"github.com/larder-app/larder/internal/aed"
	"github.com/larder-app/larder/internal/config"
	"github.com/larder-app/larder/internal/models"
)

func openTestBadger(t *testing.T) *badger.DB {
	t.Helper()
	db, err := OpenBadger(&config.ProfilesConfig{InMemory: true})
	if err != nil {
		t.Fatalf("OpenBadger() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestProfiles_GetMissingReturnsEmpty(t *testing.T) {
	s := NewProfiles(openTestBadger(t))

	p, err := s.Get(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if p.UserID != "alice" {
		t.Errorf("UserID = %q, want alice", p.UserID)
	}
	if len(p.Adjustments) != 0 || p.TotalFeedback != 0 {
		t.Errorf("empty profile has data: %+v", p)
	}
}

func TestProfiles_PutGetRoundTrip(t *testing.T) {
	s := NewProfiles(openTestBadger(t))
	ctx := context.Background()

	p := models.NewProfile("alice")
	p.SetDelta(aed.ItemKey("milk"), -1.2, aed.StatsRecord{Samples: 6, Early: 6, Confidence: 0.3})
	p.BumpItemFeedback("milk")

	if err := s.Put(ctx, p); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := s.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Delta(aed.ItemKey("milk")) != -1.2 {
		t.Errorf("Delta(item:milk) = %f, want -1.2", got.Delta(aed.ItemKey("milk")))
	}
	if got.StatsFor(aed.ItemKey("milk")).Samples != 6 {
		t.Errorf("Samples = %d, want 6", got.StatsFor(aed.ItemKey("milk")).Samples)
	}
	if got.ItemFeedbackCount("milk") != 1 {
		t.Errorf("ItemFeedbackCount = %d, want 1", got.ItemFeedbackCount("milk"))
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set by Put")
	}
}

func TestProfiles_ApplyFeedbackAccumulates(t *testing.T) {
	s := NewProfiles(openTestBadger(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.ApplyFeedback(ctx, "bob", func(p *models.Profile) error {
			p.BumpItemFeedback("chicken")
			return nil
		})
		if err != nil {
			t.Fatalf("ApplyFeedback() error = %v", err)
		}
	}

	got, err := s.Get(ctx, "bob")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ItemFeedbackCount("chicken") != 3 {
		t.Errorf("ItemFeedbackCount = %d, want 3", got.ItemFeedbackCount("chicken"))
	}
	if got.TotalFeedback != 3 {
		t.Errorf("TotalFeedback = %d, want 3", got.TotalFeedback)
	}
}

// Concurrent feedback for the same user must not lose updates. The
// conflict-retry in ApplyFeedback serializes the read-modify-write.
func TestProfiles_ApplyFeedbackConcurrent(t *testing.T) {
	s := NewProfiles(openTestBadger(t))
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.ApplyFeedback(ctx, "carol", func(p *models.Profile) error {
				p.BumpItemFeedback("yogurt")
				return nil
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("ApplyFeedback() error = %v", err)
		}
	}

	got, err := s.Get(ctx, "carol")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.TotalFeedback != workers {
		t.Errorf("TotalFeedback = %d, want %d (lost update)", got.TotalFeedback, workers)
	}
}

func TestProfiles_ApplyFeedbackPropagatesError(t *testing.T) {
	s := NewProfiles(openTestBadger(t))

	wantErr := context.Canceled
	_, err := s.ApplyFeedback(context.Background(), "dave", func(p *models.Profile) error {
		return wantErr
	})
	if err != wantErr {
		t.Errorf("ApplyFeedback() error = %v, want %v", err, wantErr)
	}

	got, getErr := s.Get(context.Background(), "dave")
	if getErr != nil {
		t.Fatalf("Get() error = %v", getErr)
	}
	if got.TotalFeedback != 0 {
		t.Error("failed ApplyFeedback leaked a write")
	}
}
