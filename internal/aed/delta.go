// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package aed

const (
	// decayFactor leaks 5% of the accumulated delta on every update, so a
	// stale correction fades geometrically once the feedback pattern
	// changes.
	decayFactor = 0.95

	// maxRawDelta caps the contribution of a single feedback event,
	// however extreme the reported discrepancy.
	maxRawDelta = 3.0

	// MaxDelta is the absolute bound on a learned delta, in days,
	// independent of any item's base shelf life.
	MaxDelta = 7.0

	// ItemLearningRate is the suggested nominal learning rate for
	// item-level keys: fast adaptation, few samples per item.
	ItemLearningRate = 0.7

	// CategoryLearningRate is the suggested nominal learning rate for
	// category-level keys: slower but pooled across many items.
	CategoryLearningRate = 0.3
)

// UpdateDelta runs one online-learning step for a single key and returns
// the new delta together with the updated stats record.
//
// The step is a bounded, confidence-weighted leaky integrator:
//
//	error       = actualDays - predictedDays
//	effectiveLR = learningRate * (1 - confidence)   // confidence after this event
//	raw         = clamp(error * effectiveLR, -3, 3)
//	newDelta    = clamp(prevDelta * 0.95 + raw, -7, 7)
//
// Because confidence is capped at MaxConfidence, at least 15% of the
// nominal learning rate always remains. stats may be nil for the first
// observation of a key. Callers run this twice per feedback event: once
// with the item key (ItemLearningRate) and once with the category key
// (CategoryLearningRate).
func UpdateDelta(prevDelta float64, fb Feedback, actualDays, predictedDays float64, stats *StatsRecord, learningRate float64) (float64, StatsRecord) {
	next := UpdateStats(stats, fb)

	residual := actualDays - predictedDays
	effectiveLR := learningRate * (1 - next.Confidence)

	raw := clamp(residual*effectiveLR, -maxRawDelta, maxRawDelta)
	delta := clamp(prevDelta*decayFactor+raw, -MaxDelta, MaxDelta)

	return delta, next
}
