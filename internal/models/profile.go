// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package models

import (
	"time"

	"github.com/larder-app/larder/internal/aed"
)

// MinFeedbackForPersonalization is the default number of feedback events
// an item needs before its learned adjustments apply to predictions.
const MinFeedbackForPersonalization = 5

// Profile holds one user's personalization state: the learned expiry
// adjustments, per-key feedback statistics and per-item feedback counts.
//
// Adjustment and stats maps are keyed by the wire form of aed.Key
// ("item:<name>" / "category:<name>") so stored profiles stay readable
// across versions. FeedbackCountByItem is keyed by plain canonical item
// name since it only ever tracks items.
type Profile struct {
	UserID string `json:"user_id"`

	Adjustments         map[string]float64         `json:"expiry_adjustment"`
	Stats               map[string]aed.StatsRecord `json:"feedback_stats"`
	FeedbackCountByItem map[string]int             `json:"feedback_count_by_item"`
	TotalFeedback       int                        `json:"total_feedback_count"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewProfile returns an empty profile for the given user.
func NewProfile(userID string) *Profile {
	return &Profile{
		UserID:              userID,
		Adjustments:         map[string]float64{},
		Stats:               map[string]aed.StatsRecord{},
		FeedbackCountByItem: map[string]int{},
	}
}

// DeltaMap converts the stored adjustments into the tagged-key form the
// resolver consumes. Entries whose key does not parse are skipped.
func (p *Profile) DeltaMap() aed.DeltaMap {
	m := make(aed.DeltaMap, len(p.Adjustments))
	for raw, delta := range p.Adjustments {
		key, err := aed.ParseKey(raw)
		if err != nil {
			continue
		}
		m[key] = delta
	}
	return m
}

// Delta returns the stored adjustment for a key, zero when absent.
func (p *Profile) Delta(key aed.Key) float64 {
	return p.Adjustments[key.String()]
}

// StatsFor returns a copy of the stored stats for a key, zero-valued
// when absent.
func (p *Profile) StatsFor(key aed.Key) aed.StatsRecord {
	return p.Stats[key.String()]
}

// SetDelta stores an adjustment and its stats under the key's wire form.
func (p *Profile) SetDelta(key aed.Key, delta float64, stats aed.StatsRecord) {
	if p.Adjustments == nil {
		p.Adjustments = map[string]float64{}
	}
	if p.Stats == nil {
		p.Stats = map[string]aed.StatsRecord{}
	}
	p.Adjustments[key.String()] = delta
	p.Stats[key.String()] = stats
}

// ItemFeedbackCount returns the number of feedback events recorded for a
// canonical item name.
func (p *Profile) ItemFeedbackCount(itemName string) int {
	return p.FeedbackCountByItem[aed.NormalizeName(itemName)]
}

// BumpItemFeedback increments the per-item counter and the profile total,
// returning the new per-item count.
func (p *Profile) BumpItemFeedback(itemName string) int {
	if p.FeedbackCountByItem == nil {
		p.FeedbackCountByItem = map[string]int{}
	}
	name := aed.NormalizeName(itemName)
	p.FeedbackCountByItem[name]++
	p.TotalFeedback++
	return p.FeedbackCountByItem[name]
}

// PersonalizationEnabled reports whether an item has accumulated enough
// feedback for its adjustments to apply.
func (p *Profile) PersonalizationEnabled(itemName string, minFeedback int) bool {
	return p.ItemFeedbackCount(itemName) >= minFeedback
}
