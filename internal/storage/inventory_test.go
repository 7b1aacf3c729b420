// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/larder-app/larder/internal/config"
	"github.com/larder-app/larder/internal/models"
)

func openTestInventory(t *testing.T) *Inventory {
	t.Helper()
	inv, err := NewInventory(&config.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("NewInventory() error = %v", err)
	}
	t.Cleanup(func() { _ = inv.Close() })
	return inv
}

func testFood(userID string) *models.Food {
	return &models.Food{
		ID:           uuid.New(),
		UserID:       userID,
		DisplayName:  "Anchor milk 1L",
		ItemName:     "milk",
		Category:     "dairy",
		StorageType:  "fridge",
		Quantity:     1,
		PurchaseDate: "2026-08-28",
	}
}

func TestInventory_InsertGetRoundTrip(t *testing.T) {
	inv := openTestInventory(t)
	ctx := context.Background()

	f := testFood("alice")
	f.PrintedExpiryDate = "2026-09-10"
	if err := inv.Insert(ctx, f); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	got, err := inv.GetByID(ctx, "alice", f.ID.String())
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.ItemName != "milk" || got.Category != "dairy" || got.StorageType != "fridge" {
		t.Errorf("record = %s/%s/%s, want milk/dairy/fridge", got.ItemName, got.Category, got.StorageType)
	}
	if got.PrintedExpiryDate != "2026-09-10" {
		t.Errorf("PrintedExpiryDate = %q, want 2026-09-10", got.PrintedExpiryDate)
	}
	if got.Feedback != nil {
		t.Error("fresh record has feedback")
	}
	if len(got.PredictionHistory) != 0 {
		t.Errorf("fresh record has %d history entries", len(got.PredictionHistory))
	}
}

func TestInventory_UserScoping(t *testing.T) {
	inv := openTestInventory(t)
	ctx := context.Background()

	f := testFood("alice")
	if err := inv.Insert(ctx, f); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if _, err := inv.GetByID(ctx, "mallory", f.ID.String()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(other user) error = %v, want ErrNotFound", err)
	}
	if err := inv.Delete(ctx, "mallory", f.ID.String()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(other user) error = %v, want ErrNotFound", err)
	}

	foods, err := inv.ListByUser(ctx, "mallory")
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(foods) != 0 {
		t.Errorf("ListByUser(other user) = %d records, want 0", len(foods))
	}
}

func TestInventory_SavePredictionTrimsHistory(t *testing.T) {
	inv := openTestInventory(t)
	ctx := context.Background()

	f := testFood("alice")
	if err := inv.Insert(ctx, f); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	const limit = 20
	for i := 0; i < limit+5; i++ {
		f.BaselineDays = float64(7 + i)
		f.FinalExpiryDate = "2026-09-05"
		snap := models.PredictionSnapshot{
			Timestamp:       time.Now().UTC(),
			BaselineDays:    f.BaselineDays,
			FinalExpiryDate: f.FinalExpiryDate,
			DaysLeft:        5,
			PriorityScore:   0.7,
		}
		if err := inv.SavePrediction(ctx, "alice", f.ID.String(), f, snap, limit); err != nil {
			t.Fatalf("SavePrediction() error = %v", err)
		}
	}

	got, err := inv.GetByID(ctx, "alice", f.ID.String())
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(got.PredictionHistory) != limit {
		t.Fatalf("len(PredictionHistory) = %d, want %d", len(got.PredictionHistory), limit)
	}
	// Oldest entries drop first.
	if got.PredictionHistory[0].BaselineDays != 12 {
		t.Errorf("oldest kept BaselineDays = %f, want 12", got.PredictionHistory[0].BaselineDays)
	}
	if got.PredictionHistory[limit-1].BaselineDays != 31 {
		t.Errorf("newest BaselineDays = %f, want 31", got.PredictionHistory[limit-1].BaselineDays)
	}
	if got.BaselineDays != 31 {
		t.Errorf("latest BaselineDays = %f, want 31", got.BaselineDays)
	}
	if got.LastPredictedAt == nil {
		t.Error("LastPredictedAt not set")
	}
}

func TestInventory_SetFeedback(t *testing.T) {
	inv := openTestInventory(t)
	ctx := context.Background()

	f := testFood("alice")
	if err := inv.Insert(ctx, f); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if err := inv.SetFeedback(ctx, "alice", f.ID.String(), "early", 4); err != nil {
		t.Fatalf("SetFeedback() error = %v", err)
	}

	got, err := inv.GetByID(ctx, "alice", f.ID.String())
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Feedback == nil {
		t.Fatal("Feedback = nil after SetFeedback")
	}
	if got.Feedback.Status != "early" || got.Feedback.ActualDays != 4 {
		t.Errorf("Feedback = %+v, want early/4", got.Feedback)
	}
}

func TestInventory_UpdateDetailsAndDelete(t *testing.T) {
	inv := openTestInventory(t)
	ctx := context.Background()

	f := testFood("alice")
	if err := inv.Insert(ctx, f); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	f.StorageType = "freezer"
	f.Quantity = 3
	if err := inv.UpdateDetails(ctx, f); err != nil {
		t.Fatalf("UpdateDetails() error = %v", err)
	}

	got, err := inv.GetByID(ctx, "alice", f.ID.String())
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.StorageType != "freezer" || got.Quantity != 3 {
		t.Errorf("record = %s/%f, want freezer/3", got.StorageType, got.Quantity)
	}

	if err := inv.Delete(ctx, "alice", f.ID.String()); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := inv.GetByID(ctx, "alice", f.ID.String()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(deleted) error = %v, want ErrNotFound", err)
	}
}
