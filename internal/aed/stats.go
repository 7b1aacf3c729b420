// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package aed

const (
	// confidenceRamp is the sample count over which confidence would reach
	// 1.0 if uncapped. With the 0.85 cap, confidence saturates after 17
	// observations (20 * 0.85).
	confidenceRamp = 20.0

	// MaxConfidence caps the derived confidence score. Keeping it below
	// 1.0 guarantees the effective learning rate in UpdateDelta never
	// collapses to zero, so the learner stays responsive forever.
	MaxConfidence = 0.85
)

// StatsRecord tallies the feedback history for one key. The zero value is
// the valid empty record for a key that has never received feedback.
//
// Invariant: Early + OnTime + Late == Samples, and
// 0 <= Confidence <= MaxConfidence. Confidence is derived from Samples on
// every update and is never independently settable.
type StatsRecord struct {
	Samples    int     `json:"sample_count"`
	Early      int     `json:"early_count"`
	OnTime     int     `json:"on_time_count"`
	Late       int     `json:"late_count"`
	Confidence float64 `json:"confidence"`
}

// UpdateStats folds one feedback event into stats and returns the new
// record. A nil stats pointer is the first observation for the key and is
// treated as the zero record. The input is never mutated.
//
// Unknown feedback values count as on-time, matching the reference
// behavior; validated boundaries should have rejected them already.
func UpdateStats(stats *StatsRecord, fb Feedback) StatsRecord {
	var next StatsRecord
	if stats != nil {
		next = *stats
	}

	next.Samples++
	switch fb {
	case FeedbackEarly:
		next.Early++
	case FeedbackLate:
		next.Late++
	default:
		next.OnTime++
	}

	next.Confidence = clamp(float64(next.Samples)/confidenceRamp, 0, MaxConfidence)
	return next
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
