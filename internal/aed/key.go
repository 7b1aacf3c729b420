// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package aed

import (
	"fmt"
	"strings"
)

// Scope identifies which level of the personalization hierarchy a key
// belongs to. Item-level keys take precedence over category-level keys
// during resolution.
type Scope uint8

const (
	// ScopeItem keys track a single food item (e.g. "milk").
	ScopeItem Scope = iota

	// ScopeCategory keys pool feedback across a whole category (e.g. "dairy").
	ScopeCategory
)

// String returns the wire prefix for the scope.
func (s Scope) String() string {
	switch s {
	case ScopeItem:
		return "item"
	case ScopeCategory:
		return "category"
	default:
		return "unknown"
	}
}

// Key addresses one learned delta in a user's personalization state.
// Using a struct rather than a prefix-concatenated string eliminates
// prefix-collision bugs and makes the precedence rule explicit.
//
// Keys are comparable and used directly as map keys. Construct them with
// ItemKey or CategoryKey so the name is normalized; a zero Key is the
// item key for the empty name.
type Key struct {
	Scope Scope
	Name  string
}

// ItemKey returns the item-level key for name. The name is lowercased and
// whitespace-trimmed so lookups are case- and padding-insensitive.
func ItemKey(name string) Key {
	return Key{Scope: ScopeItem, Name: NormalizeName(name)}
}

// CategoryKey returns the category-level key for name, normalized like
// ItemKey.
func CategoryKey(name string) Key {
	return Key{Scope: ScopeCategory, Name: NormalizeName(name)}
}

// NormalizeName lowercases and trims a key name. All map access in this
// package goes through normalized names.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// String renders the key in its persisted wire form, "item:<name>" or
// "category:<name>". This matches the format stored by earlier versions of
// the system, so existing profile data round-trips unchanged.
func (k Key) String() string {
	return k.Scope.String() + ":" + k.Name
}

// ParseKey parses the wire form produced by Key.String. The name portion is
// normalized, so parsing is tolerant of stored keys with stray case or
// whitespace.
func ParseKey(s string) (Key, error) {
	scope, name, ok := strings.Cut(s, ":")
	if !ok {
		return Key{}, fmt.Errorf("aed: malformed key %q: missing scope separator", s)
	}
	switch scope {
	case "item":
		return ItemKey(name), nil
	case "category":
		return CategoryKey(name), nil
	default:
		return Key{}, fmt.Errorf("aed: malformed key %q: unknown scope %q", s, scope)
	}
}

// DeltaMap holds a user's learned corrections, in days, keyed by item or
// category. A missing key means a delta of zero.
type DeltaMap map[Key]float64

// StatsMap holds the per-key feedback tallies that accompany a DeltaMap.
type StatsMap map[Key]StatsRecord
