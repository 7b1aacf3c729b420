// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package aed

import "strconv"

// Priority tiers returned by Score. Consumers use these purely for sort
// order and visual urgency.
const (
	PriorityUrgent    = 1.0 // expires within 2 days
	PrioritySoon      = 0.7 // expires within 5 days
	PriorityNotUrgent = 0.4 // everything else
)

// NotActiveDays is the days-left sentinel for records that cannot be
// scored (unparseable dates, purchases in the future). It lands in the
// lowest urgency tier - the scorer fails open rather than alarming.
const NotActiveDays = 9999.0

// Score maps days remaining until expiry to a coarse urgency tier. The
// input must be days from today, not total shelf life. Boundaries at 2 and
// 5 days are inclusive: Score(2) == PriorityUrgent, Score(5) ==
// PrioritySoon.
func Score(daysLeft float64) float64 {
	switch {
	case daysLeft <= 2:
		return PriorityUrgent
	case daysLeft <= 5:
		return PrioritySoon
	default:
		return PriorityNotUrgent
	}
}

// ParseDaysLeft parses a days-left string, failing open to NotActiveDays
// on any parse error so malformed input sorts as least urgent.
func ParseDaysLeft(s string) float64 {
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return NotActiveDays
	}
	return d
}
