// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package events

import (
	"time"
)

// SchemaVersion is the current event schema version. Increment on
// breaking changes to the event payloads.
const SchemaVersion = 1

// Topics.
const (
	TopicPredictionComputed = "prediction.computed"
	TopicFeedbackReceived   = "feedback.received"
)

// Metadata keys set on every published message.
const (
	MetadataEventType = "event_type"
	MetadataUserID    = "user_id"
)

// PredictionComputed is emitted after the prediction pipeline persists
// a snapshot.
type PredictionComputed struct {
	SchemaVersion int       `json:"schema_version"`
	EventID       string    `json:"event_id"`
	Timestamp     time.Time `json:"timestamp"`

	UserID   string `json:"user_id"`
	FoodID   string `json:"food_id,omitempty"`
	ItemName string `json:"item_name"`
	Category string `json:"item_category"`
	Storage  string `json:"storage_type"`

	BaselineDays           float64 `json:"baseline_days"`
	PersonalizedDays       float64 `json:"personalized_days,omitempty"`
	FinalExpiryDate        string  `json:"final_expiry_date"`
	DaysLeft               int     `json:"days_left"`
	PriorityScore          float64 `json:"priority_score"`
	PersonalizationEnabled bool    `json:"personalization_enabled"`
	PrintedCapApplied      bool    `json:"printed_cap_applied"`
	Source                 string  `json:"source"` // "local" or "remote"
}

// FeedbackReceived is emitted after a feedback submission updates the
// user's personalization profile.
type FeedbackReceived struct {
	SchemaVersion int       `json:"schema_version"`
	EventID       string    `json:"event_id"`
	Timestamp     time.Time `json:"timestamp"`

	UserID   string `json:"user_id"`
	FoodID   string `json:"food_id"`
	ItemName string `json:"item_name"`
	Category string `json:"item_category"`

	Feedback      string  `json:"feedback"`
	ActualDays    float64 `json:"actual_days"`
	PredictedDays float64 `json:"predicted_days"`

	ItemDelta     float64 `json:"item_delta"`
	CategoryDelta float64 `json:"category_delta"`

	ItemFeedbackCount int  `json:"item_feedback_count"`
	ActivatedNow      bool `json:"personalization_activated_now"`
}
