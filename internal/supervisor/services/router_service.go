// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package services

import (
	"context"
	"fmt"
)

// EventRouter matches the watermill message.Router lifecycle. Run blocks
// until the context is canceled and handles its own handler teardown.
type EventRouter interface {
	Run(ctx context.Context) error
}

// EventRouterService wraps the watermill router as a supervised service
// so a handler panic or subscriber failure restarts the consumer side of
// the event bus without touching the HTTP layer.
type EventRouterService struct {
	router EventRouter
	name   string
}

// NewEventRouterService creates the event router wrapper.
func NewEventRouterService(router EventRouter) *EventRouterService {
	return &EventRouterService{
		router: router,
		name:   "event-router",
	}
}

// Serve implements suture.Service.
func (s *EventRouterService) Serve(ctx context.Context) error {
	if err := s.router.Run(ctx); err != nil {
		return fmt.Errorf("event router failed: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for suture's event log.
func (s *EventRouterService) String() string {
	return s.name
}
