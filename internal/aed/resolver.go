// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package aed

import "errors"

const (
	// envelopeFloor and envelopeCeiling bound the adjusted duration
	// relative to the nominal base shelf life. Personalization can never
	// push the estimate below half or above one-and-a-half times what the
	// storage condition allows.
	envelopeFloor   = 0.5
	envelopeCeiling = 1.5
)

// ErrInvalidBaseDuration is returned by Apply when baseDays is not a
// positive number. A non-positive base would collapse or invert the
// plausibility envelope, so it is rejected rather than silently producing
// a zero-width clamp.
var ErrInvalidBaseDuration = errors.New("aed: base duration must be positive")

// Apply resolves which learned delta covers the given item and category,
// applies it to the predicted duration, and clamps the result to the
// biological plausibility envelope [0.5*baseDays, 1.5*baseDays].
//
// Resolution is a strict two-level hierarchy: an item-level delta wins over
// a category-level one, and an item with no learned state gets zero
// correction. Lookups are case-insensitive and whitespace-trimmed. A nil
// or empty adjustments map is valid zero-state.
func Apply(adjustments DeltaMap, itemName, category string, predictedDays, baseDays float64) (float64, error) {
	if baseDays <= 0 {
		return 0, ErrInvalidBaseDuration
	}

	var delta float64
	if d, ok := adjustments[ItemKey(itemName)]; ok {
		delta = d
	} else if d, ok := adjustments[CategoryKey(category)]; ok {
		delta = d
	}

	adjusted := predictedDays + delta
	return clamp(adjusted, envelopeFloor*baseDays, envelopeCeiling*baseDays), nil
}
