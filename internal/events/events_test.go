// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package events

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/larder-app/larder/internal/metrics"
)

func TestBus_PublishPredictionComputed(t *testing.T) {
	bus := NewBus()
	defer func() { _ = bus.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msgs, err := bus.Subscriber().Subscribe(ctx, TopicPredictionComputed)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	ev := PredictionComputed{
		UserID:        "alice",
		ItemName:      "milk",
		Category:      "dairy",
		Storage:       "fridge",
		BaselineDays:  7,
		DaysLeft:      6,
		PriorityScore: 0.4,
		Source:        "local",
	}
	if err := bus.PublishPredictionComputed(ctx, ev); err != nil {
		t.Fatalf("PublishPredictionComputed() error = %v", err)
	}

	select {
	case msg := <-msgs:
		msg.Ack()

		if got := msg.Metadata.Get(MetadataEventType); got != TopicPredictionComputed {
			t.Errorf("event_type metadata = %q, want %q", got, TopicPredictionComputed)
		}
		if got := msg.Metadata.Get(MetadataUserID); got != "alice" {
			t.Errorf("user_id metadata = %q, want alice", got)
		}

		var decoded PredictionComputed
		if err := json.Unmarshal(msg.Payload, &decoded); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		if decoded.SchemaVersion != SchemaVersion {
			t.Errorf("SchemaVersion = %d, want %d", decoded.SchemaVersion, SchemaVersion)
		}
		if decoded.EventID == "" {
			t.Error("EventID not filled in")
		}
		if decoded.Timestamp.IsZero() {
			t.Error("Timestamp not filled in")
		}
		if decoded.ItemName != "milk" || decoded.DaysLeft != 6 {
			t.Errorf("payload = %+v, want milk/6", decoded)
		}
	case <-ctx.Done():
		t.Fatal("no message received before timeout")
	}
}

func TestRouter_ConsumesFeedbackEvents(t *testing.T) {
	bus := NewBus()
	defer func() { _ = bus.Close() }()

	router, err := NewRouter(bus)
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- router.Run(ctx) }()

	select {
	case <-router.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}

	activationsBefore := testutil.ToFloat64(metrics.PersonalizationActivations)

	ev := FeedbackReceived{
		UserID:            "bob",
		FoodID:            "f-1",
		ItemName:          "milk",
		Category:          "dairy",
		Feedback:          "early",
		ActualDays:        4,
		PredictedDays:     8,
		ItemDelta:         -2.66,
		CategoryDelta:     -1.14,
		ItemFeedbackCount: 5,
		ActivatedNow:      true,
	}
	if err := bus.PublishFeedbackReceived(ctx, ev); err != nil {
		t.Fatalf("PublishFeedbackReceived() error = %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if testutil.ToFloat64(metrics.PersonalizationActivations)-activationsBefore >= 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got := testutil.ToFloat64(metrics.PersonalizationActivations) - activationsBefore; got != 1 {
		t.Errorf("personalization_activations_total delta = %f, want 1", got)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("router.Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Error("router did not stop after cancel")
	}
}
