// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package predictor

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Storage conditions understood by the table. Anything else canonicalizes
// to pantry.
const (
	StorageFridge  = "fridge"
	StorageFreezer = "freezer"
	StoragePantry  = "pantry"
)

// Categories is the fixed category vocabulary exposed to clients.
var Categories = []string{
	"dairy", "meat", "fish", "fruit", "vegetable",
	"grain", "snack", "beverage", "other",
}

// BaseDays holds the nominal shelf life of one item per storage condition.
type BaseDays struct {
	Fridge  float64
	Freezer float64
	Pantry  float64
}

// days returns the duration for a canonical storage type.
func (b BaseDays) days(storage string) float64 {
	switch storage {
	case StorageFridge:
		return b.Fridge
	case StorageFreezer:
		return b.Freezer
	default:
		return b.Pantry
	}
}

// defaultBaseDays is the fallback when an item is missing from the table,
// mirroring the per-column defaults of the source dataset.
var defaultBaseDays = BaseDays{Fridge: 7, Freezer: 30, Pantry: 7}

// builtinTable covers the common item vocabulary so the service works
// with no CSV configured. Values are conservative nominal durations.
var builtinTable = map[string]BaseDays{
	"milk":         {Fridge: 7, Freezer: 90, Pantry: 1},
	"yogurt":       {Fridge: 14, Freezer: 60, Pantry: 1},
	"cheese":       {Fridge: 21, Freezer: 180, Pantry: 2},
	"butter":       {Fridge: 60, Freezer: 270, Pantry: 7},
	"eggs":         {Fridge: 35, Freezer: 365, Pantry: 14},
	"chicken":      {Fridge: 2, Freezer: 270, Pantry: 1},
	"beef":         {Fridge: 4, Freezer: 365, Pantry: 1},
	"pork":         {Fridge: 4, Freezer: 180, Pantry: 1},
	"fish":         {Fridge: 2, Freezer: 180, Pantry: 1},
	"shrimp":       {Fridge: 2, Freezer: 180, Pantry: 1},
	"apples":       {Fridge: 30, Freezer: 240, Pantry: 7},
	"bananas":      {Fridge: 7, Freezer: 90, Pantry: 5},
	"oranges":      {Fridge: 21, Freezer: 120, Pantry: 10},
	"grapes":       {Fridge: 10, Freezer: 90, Pantry: 3},
	"strawberries": {Fridge: 5, Freezer: 240, Pantry: 1},
	"tomatoes":     {Fridge: 7, Freezer: 60, Pantry: 5},
	"potatoes":     {Fridge: 90, Freezer: 300, Pantry: 30},
	"onions":       {Fridge: 60, Freezer: 240, Pantry: 30},
	"carrots":      {Fridge: 28, Freezer: 270, Pantry: 7},
	"lettuce":      {Fridge: 10, Freezer: 14, Pantry: 1},
	"spinach":      {Fridge: 7, Freezer: 240, Pantry: 1},
	"bread":        {Fridge: 10, Freezer: 90, Pantry: 5},
	"rice":         {Fridge: 5, Freezer: 180, Pantry: 365},
	"pasta":        {Fridge: 5, Freezer: 60, Pantry: 365},
	"orange_juice": {Fridge: 7, Freezer: 240, Pantry: 3},
}

// Table maps canonical item names to their base shelf lives. It is
// immutable after construction and safe for concurrent reads.
type Table struct {
	items map[string]BaseDays
	names []string
}

// NewTable returns a table seeded with the built-in vocabulary.
func NewTable() *Table {
	return newTable(builtinTable)
}

func newTable(items map[string]BaseDays) *Table {
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)
	return &Table{items: items, names: names}
}

// LoadTable reads a base-expiry CSV with header columns item_name,
// base_fridge_days, base_freezer_days, base_pantry_days. Rows override or
// extend the built-in vocabulary. Missing or malformed numeric cells fall
// back to the column defaults, matching the tolerance of the source
// dataset loader.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open base expiry table: %w", err)
	}
	defer f.Close()

	table, err := parseTable(f)
	if err != nil {
		return nil, fmt.Errorf("parse base expiry table %s: %w", path, err)
	}
	return table, nil
}

func parseTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.ToLower(h))] = i
	}
	nameIdx, ok := col["item_name"]
	if !ok {
		return nil, fmt.Errorf("missing item_name column")
	}

	items := make(map[string]BaseDays, len(builtinTable))
	for name, days := range builtinTable {
		items[name] = days
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		name := strings.ToLower(strings.TrimSpace(rec[nameIdx]))
		if name == "" {
			continue
		}
		items[name] = BaseDays{
			Fridge:  cell(rec, col, "base_fridge_days", defaultBaseDays.Fridge),
			Freezer: cell(rec, col, "base_freezer_days", defaultBaseDays.Freezer),
			Pantry:  cell(rec, col, "base_pantry_days", defaultBaseDays.Pantry),
		}
	}

	return newTable(items), nil
}

func cell(rec []string, col map[string]int, name string, fallback float64) float64 {
	idx, ok := col[name]
	if !ok || idx >= len(rec) {
		return fallback
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(rec[idx]), 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// BaseExpiryDays returns the nominal shelf life for an item under a
// storage condition. Unknown items get the dataset defaults rather than
// an error; item validation is a separate concern (Validate).
func (t *Table) BaseExpiryDays(item, storage string) float64 {
	days, ok := t.items[CanonicalItem(item, t)]
	if !ok {
		days = defaultBaseDays
	}
	return days.days(CanonicalStorage(storage))
}

// Validate reports whether an already-canonical item name is in the
// vocabulary.
func (t *Table) Validate(item string) bool {
	_, ok := t.items[item]
	return ok
}

// AllowedItems returns the sorted item vocabulary for client dropdowns.
func (t *Table) AllowedItems() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}
