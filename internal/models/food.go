// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

// Package models defines data structures used throughout the Larder application.
// These models represent food inventory records, prediction snapshots,
// personalization profiles, and API responses.

package models

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format for calendar dates (purchase, printed
// expiry, predicted expiry). Dates travel as plain strings because the
// decision layer fails open on anything unparseable.
const DateLayout = "2006-01-02"

// notActiveDays mirrors aed.NotActiveDays for calendar helpers that
// return whole days.
const notActiveDays = 9999

// Food represents a single food record in a user's inventory.
//
// Key fields:
//   - ID: Unique UUID for each record
//   - UserID: Owning user (all queries are scoped per user)
//   - DisplayName: Free-form label from the client ("Anchor milk 1L")
//   - ItemName: Canonical item name used by the predictor and AED keys
//   - Category: One of the fixed category list (dairy, meat, ...)
//   - StorageType: Canonical storage location (fridge, freezer, pantry)
//
// Prediction fields are empty until the first prediction runs; they are
// overwritten on every subsequent prediction and the per-run snapshot is
// appended to the history (last 20 kept).
type Food struct {
	ID     uuid.UUID `json:"id"`
	UserID string    `json:"user_id"`

	DisplayName string  `json:"display_name,omitempty"`
	ItemName    string  `json:"item_name"`
	Category    string  `json:"item_category"`
	StorageType string  `json:"storage_type"`
	Quantity    float64 `json:"quantity,omitempty"`

	PurchaseDate      string `json:"purchase_date"`
	PrintedExpiryDate string `json:"printed_expiry_date,omitempty"`
	UsedBeforeExpiry  bool   `json:"used_before_expiry,omitempty"`

	// Latest prediction outcome (empty until predicted).
	BaselineExpiryDate     string     `json:"baseline_expiry_date,omitempty"`
	PersonalizedExpiryDate string     `json:"personalized_expiry_date,omitempty"`
	FinalExpiryDate        string     `json:"final_expiry_date,omitempty"`
	BaselineDays           float64    `json:"baseline_days,omitempty"`
	PersonalizedDays       float64    `json:"personalized_days,omitempty"`
	BaseExpiryDays         float64    `json:"base_expiry_days,omitempty"`
	PriorityScore          float64    `json:"priority_score,omitempty"`
	DaysLeftAtSave         int        `json:"days_left_at_save,omitempty"`
	PersonalizationEnabled bool       `json:"personalization_enabled,omitempty"`
	PrintedCapApplied      bool       `json:"printed_cap_applied,omitempty"`
	LastPredictedAt        *time.Time `json:"last_predicted_at,omitempty"`

	// Last feedback recorded against this record, if any.
	Feedback *FoodFeedback `json:"feedback,omitempty"`

	// Live values recomputed on every list/get and by the sweeper.
	DaysLeft     int     `json:"days_left"`
	LivePriority float64 `json:"priority_score_live"`

	PredictionHistory []PredictionSnapshot `json:"prediction_history,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FoodFeedback records the most recent feedback outcome for a food record.
type FoodFeedback struct {
	Status     string  `json:"status"`
	ActualDays float64 `json:"actual_days"`
}

// PredictionSnapshot is one entry of a food record's prediction history.
// The store retains the last 20 snapshots per record.
type PredictionSnapshot struct {
	Timestamp              time.Time `json:"ts"`
	BaselineDays           float64   `json:"baseline_days"`
	BaselineExpiryDate     string    `json:"baseline_expiry_date"`
	PersonalizationEnabled bool      `json:"personalization_enabled"`
	PersonalizedDays       float64   `json:"personalized_days,omitempty"`
	PersonalizedExpiryDate string    `json:"personalized_expiry_date,omitempty"`
	FinalExpiryDate        string    `json:"final_expiry_date"`
	DaysLeft               int       `json:"days_left"`
	PriorityScore          float64   `json:"priority_score"`
	PrintedExpiryDate      string    `json:"printed_expiry_date,omitempty"`
	PrintedCapApplied      bool      `json:"printed_cap_applied"`
}

// MaxPredictionHistory is the number of prediction snapshots retained
// per food record.
const MaxPredictionHistory = 20

// ComputeExpiryDate adds the whole-day part of days to the purchase date.
// Fractional days truncate toward zero. Returns "" when the purchase date
// does not parse.
func ComputeExpiryDate(purchaseDate string, days float64) string {
	p, err := time.Parse(DateLayout, purchaseDate)
	if err != nil {
		return ""
	}
	return p.AddDate(0, 0, int(days)).Format(DateLayout)
}

// DaysLeft computes whole days between today and the expiry date.
// A purchase date in the future means the record is not active yet and
// scores lowest priority. Unparseable expiry dates fail open the same way.
func DaysLeft(expiryDate, purchaseDate string, now time.Time) int {
	today := now.UTC().Truncate(24 * time.Hour)

	if purchaseDate != "" {
		if p, err := time.Parse(DateLayout, purchaseDate); err == nil && p.After(today) {
			return notActiveDays
		}
	}

	exp, err := time.Parse(DateLayout, expiryDate)
	if err != nil {
		return notActiveDays
	}

	return int(exp.Sub(today).Hours() / 24)
}
