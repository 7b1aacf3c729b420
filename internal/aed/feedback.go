// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package aed

import (
	"errors"
	"fmt"
)

// Feedback is a user's verdict on a prediction: the item spoiled early,
// lasted about as long as predicted, or lasted longer.
type Feedback string

const (
	// FeedbackEarly means the item spoiled before the predicted date.
	FeedbackEarly Feedback = "early"

	// FeedbackOnTime means the prediction was about right.
	FeedbackOnTime Feedback = "on_time"

	// FeedbackLate means the item outlasted the predicted date.
	FeedbackLate Feedback = "late"
)

// ErrInvalidFeedback is returned by ParseFeedback for labels outside the
// three known values.
var ErrInvalidFeedback = errors.New("aed: invalid feedback label")

// ParseFeedback validates a raw feedback label. System boundaries (HTTP
// handlers) should use this and reject unknown labels explicitly rather
// than relying on the legacy silent default.
func ParseFeedback(s string) (Feedback, error) {
	switch Feedback(s) {
	case FeedbackEarly, FeedbackOnTime, FeedbackLate:
		return Feedback(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFeedback, s)
	}
}

// FeedbackOrDefault maps any unknown label to FeedbackOnTime. This
// preserves the reference behavior for callers replaying data recorded by
// the original system, where unrecognized labels were silently bucketed
// as on-time.
func FeedbackOrDefault(s string) Feedback {
	fb, err := ParseFeedback(s)
	if err != nil {
		return FeedbackOnTime
	}
	return fb
}
