// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package models

import (
	"testing"
	"time"

	"github.com/larder-app/larder/internal/aed"
)

func TestComputeExpiryDate(t *testing.T) {
	tests := []struct {
		name     string
		purchase string
		days     float64
		want     string
	}{
		{"whole days", "2026-08-01", 7, "2026-08-08"},
		{"fraction truncates", "2026-08-01", 6.9, "2026-08-07"},
		{"zero days", "2026-08-01", 0, "2026-08-01"},
		{"month rollover", "2026-08-28", 5, "2026-09-02"},
		{"bad purchase date", "not-a-date", 7, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeExpiryDate(tt.purchase, tt.days); got != tt.want {
				t.Errorf("ComputeExpiryDate(%q, %f) = %q, want %q", tt.purchase, tt.days, got, tt.want)
			}
		})
	}
}

func TestDaysLeft(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		expiry   string
		purchase string
		want     int
	}{
		{"five days out", "2026-09-05", "2026-08-28", 5},
		{"expires today", "2026-08-31", "2026-08-28", 0},
		{"already expired", "2026-08-29", "2026-08-25", -2},
		{"future purchase not active", "2026-09-20", "2026-09-10", 9999},
		{"unparseable expiry fails open", "soon", "2026-08-28", 9999},
		{"empty expiry fails open", "", "2026-08-28", 9999},
		{"bad purchase date ignored", "2026-09-03", "???", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysLeft(tt.expiry, tt.purchase, now); got != tt.want {
				t.Errorf("DaysLeft(%q, %q) = %d, want %d", tt.expiry, tt.purchase, got, tt.want)
			}
		})
	}
}

func TestProfile_DeltaRoundTrip(t *testing.T) {
	p := NewProfile("alice")

	itemKey := aed.ItemKey("milk")
	catKey := aed.CategoryKey("dairy")

	p.SetDelta(itemKey, -1.5, aed.StatsRecord{Samples: 3, Early: 3, Confidence: 0.15})
	p.SetDelta(catKey, -0.4, aed.StatsRecord{Samples: 3, Early: 3, Confidence: 0.15})

	if got := p.Delta(itemKey); got != -1.5 {
		t.Errorf("Delta(item) = %f, want -1.5", got)
	}
	if got := p.StatsFor(itemKey).Samples; got != 3 {
		t.Errorf("StatsFor(item).Samples = %d, want 3", got)
	}

	dm := p.DeltaMap()
	if len(dm) != 2 {
		t.Fatalf("len(DeltaMap()) = %d, want 2", len(dm))
	}
	if dm[catKey] != -0.4 {
		t.Errorf("DeltaMap()[category] = %f, want -0.4", dm[catKey])
	}
}

func TestProfile_DeltaMapSkipsBadKeys(t *testing.T) {
	p := NewProfile("alice")
	p.Adjustments["milk"] = -1.0 // no scope prefix
	p.Adjustments["item:milk"] = -2.0

	dm := p.DeltaMap()
	if len(dm) != 1 {
		t.Fatalf("len(DeltaMap()) = %d, want 1 (malformed key skipped)", len(dm))
	}
	if dm[aed.ItemKey("milk")] != -2.0 {
		t.Errorf("DeltaMap()[item:milk] = %f, want -2.0", dm[aed.ItemKey("milk")])
	}
}

func TestProfile_FeedbackCounting(t *testing.T) {
	p := NewProfile("bob")

	for i := 0; i < 4; i++ {
		p.BumpItemFeedback("Milk")
	}
	if p.PersonalizationEnabled("milk", MinFeedbackForPersonalization) {
		t.Error("personalization enabled at 4 feedbacks, want disabled below 5")
	}

	if got := p.BumpItemFeedback("milk"); got != 5 {
		t.Errorf("BumpItemFeedback() = %d, want 5 (case-insensitive counting)", got)
	}
	if !p.PersonalizationEnabled("MILK", MinFeedbackForPersonalization) {
		t.Error("personalization disabled at 5 feedbacks, want enabled")
	}
	if p.TotalFeedback != 5 {
		t.Errorf("TotalFeedback = %d, want 5", p.TotalFeedback)
	}
}
