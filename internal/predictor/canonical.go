// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package predictor

import (
	"regexp"
	"strings"
)

var spaceRun = regexp.MustCompile(`\s+`)

// CanonicalItem normalizes a user-supplied item name into the table
// vocabulary: case and repeated whitespace are ignored, spaces become
// underscores, and singular/plural variants resolve to whichever form the
// vocabulary contains. Names with no vocabulary match are returned in
// normalized form so callers can report them as unknown.
func CanonicalItem(name string, t *Table) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return ""
	}

	n = spaceRun.ReplaceAllString(n, " ")
	n = strings.ReplaceAll(n, " ", "_")

	if t == nil || t.Validate(n) {
		return n
	}
	if t.Validate(n + "s") {
		return n + "s"
	}
	if strings.HasSuffix(n, "s") && t.Validate(strings.TrimSuffix(n, "s")) {
		return strings.TrimSuffix(n, "s")
	}
	return n
}

// CanonicalCategory lowercases and trims a category name.
func CanonicalCategory(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CanonicalStorage normalizes a storage type, falling back to pantry for
// anything unrecognized. Pantry is the safe fallback: its durations are
// the shortest, so a bad storage value never inflates an estimate.
func CanonicalStorage(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	switch s {
	case StorageFridge, StorageFreezer, StoragePantry:
		return s
	default:
		return StoragePantry
	}
}
