// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/larder-app/larder/internal/logging"
	"github.com/larder-app/larder/internal/metrics"
)

// Bus is the in-process event bus. A single GoChannel pub/sub backs all
// topics; subscribers attach through the router in handlers.go.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter
}

// NewBus creates the event bus.
func NewBus() *Bus {
	logger := watermill.NewSlogLogger(logging.NewSlogLogger())

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, logger)

	return &Bus{pubsub: pubsub, logger: logger}
}

// Subscriber exposes the bus for router handler registration.
func (b *Bus) Subscriber() message.Subscriber {
	return b.pubsub
}

// Close shuts down the pub/sub, releasing all subscribers.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// PublishPredictionComputed publishes a prediction.computed event.
// EventID and Timestamp are filled in when empty.
func (b *Bus) PublishPredictionComputed(ctx context.Context, ev PredictionComputed) error {
	ev.SchemaVersion = SchemaVersion
	if ev.EventID == "" {
		ev.EventID = uuid.New().String()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	return b.publish(ctx, TopicPredictionComputed, ev.UserID, ev)
}

// PublishFeedbackReceived publishes a feedback.received event.
func (b *Bus) PublishFeedbackReceived(ctx context.Context, ev FeedbackReceived) error {
	ev.SchemaVersion = SchemaVersion
	if ev.EventID == "" {
		ev.EventID = uuid.New().String()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	return b.publish(ctx, TopicFeedbackReceived, ev.UserID, ev)
}

func (b *Bus) publish(ctx context.Context, topic, userID string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(MetadataEventType, topic)
	msg.Metadata.Set(MetadataUserID, userID)
	msg.SetContext(ctx)

	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	metrics.EventsPublished.WithLabelValues(topic).Inc()
	return nil
}
