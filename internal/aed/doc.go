// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

// Package aed implements the Adaptive Expiry Delta personalization engine.
//
// AED is a per-user, hierarchical online learner that nudges machine-predicted
// shelf-life estimates toward what a user actually observes. The learned state
// is a single signed delta (in days) per key, where a key is either an item
// ("milk") or a category ("dairy"). Item-level deltas always override
// category-level deltas, and unlearned keys contribute zero correction.
//
// # Components
//
//   - StatsRecord / UpdateStats: per-key feedback tally with a derived
//     confidence score in [0, 0.85] that grows linearly with sample count.
//   - UpdateDelta: the learning step - an error-driven, confidence-damped,
//     exponentially-decayed update with hard clamps at every stage.
//   - Apply: resolves which delta applies to a prediction and enforces the
//     biological plausibility envelope [0.5*base, 1.5*base].
//   - Score: maps days-remaining to a coarse consumption-priority tier.
//
// # Purity and Concurrency
//
// Every function in this package is pure: no I/O, no package-level state,
// inputs passed by value and never aliased in outputs. Callers may invoke
// them from any number of goroutines. The caller owns persistence of the
// DeltaMap/StatsMap and must serialize read-modify-write cycles for a given
// user (see internal/storage, which wraps the whole cycle in a Badger
// transaction).
package aed
