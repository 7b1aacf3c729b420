// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package events

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/goccy/go-json"

	"github.com/larder-app/larder/internal/logging"
	"github.com/larder-app/larder/internal/metrics"
)

// NewRouter builds the event-consuming router: panic recovery, retry
// with backoff, and the audit/metrics consumers for both topics.
// Run it with router.Run(ctx); Run blocks until ctx is cancelled.
func NewRouter(bus *Bus) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: 30 * time.Second,
	}, bus.logger)
	if err != nil {
		return nil, fmt.Errorf("create event router: %w", err)
	}

	router.AddMiddleware(middleware.Recoverer)

	retry := middleware.Retry{
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      2.0,
		Logger:          bus.logger,
	}
	router.AddMiddleware(retry.Middleware)

	router.AddConsumerHandler(
		"audit-predictions",
		TopicPredictionComputed,
		bus.Subscriber(),
		handlePredictionComputed,
	)
	router.AddConsumerHandler(
		"audit-feedback",
		TopicFeedbackReceived,
		bus.Subscriber(),
		handleFeedbackReceived,
	)

	return router, nil
}

func handlePredictionComputed(msg *message.Message) error {
	var ev PredictionComputed
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return fmt.Errorf("decode prediction event: %w", err)
	}

	logging.Info().
		Str("event_id", ev.EventID).
		Str("user_id", ev.UserID).
		Str("item_name", ev.ItemName).
		Str("source", ev.Source).
		Float64("baseline_days", ev.BaselineDays).
		Int("days_left", ev.DaysLeft).
		Float64("priority_score", ev.PriorityScore).
		Bool("personalization_enabled", ev.PersonalizationEnabled).
		Bool("printed_cap_applied", ev.PrintedCapApplied).
		Msg("prediction computed")

	return nil
}

func handleFeedbackReceived(msg *message.Message) error {
	var ev FeedbackReceived
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return fmt.Errorf("decode feedback event: %w", err)
	}

	metrics.RecordFeedback(ev.Feedback, ev.ItemDelta, ev.CategoryDelta)
	if ev.ActivatedNow {
		metrics.PersonalizationActivations.Inc()
	}

	logging.Info().
		Str("event_id", ev.EventID).
		Str("user_id", ev.UserID).
		Str("item_name", ev.ItemName).
		Str("feedback", ev.Feedback).
		Float64("item_delta", ev.ItemDelta).
		Float64("category_delta", ev.CategoryDelta).
		Int("item_feedback_count", ev.ItemFeedbackCount).
		Bool("activated_now", ev.ActivatedNow).
		Msg("feedback received")

	return nil
}
