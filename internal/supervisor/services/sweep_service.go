// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package services

import (
	"context"
	"errors"
	"fmt"
)

// Runner is the loop contract the expiry sweeper satisfies: block until
// the context is canceled, returning the context error on a clean stop.
type Runner interface {
	Run(ctx context.Context) error
}

// SweeperService wraps the periodic expiry sweeper as a supervised
// service.
type SweeperService struct {
	runner Runner
	name   string
}

// NewSweeperService creates the sweeper wrapper.
func NewSweeperService(runner Runner) *SweeperService {
	return &SweeperService{
		runner: runner,
		name:   "expiry-sweeper",
	}
}

// Serve implements suture.Service.
func (s *SweeperService) Serve(ctx context.Context) error {
	if err := s.runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("expiry sweeper failed: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for suture's event log.
func (s *SweeperService) String() string {
	return s.name
}
