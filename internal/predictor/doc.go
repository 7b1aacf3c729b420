// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

// Package predictor supplies the baseline shelf-life estimates that the
// AED engine personalizes.
//
// Two sources are supported:
//
//   - A local heuristic estimator driven by a per-item base shelf-life
//     table (built-in defaults, optionally overridden from CSV) and the
//     storage environment (temperature/humidity).
//   - An optional remote model service speaking a small JSON protocol,
//     wrapped in a circuit breaker and a client-side rate limiter. When
//     the remote is unreachable or the circuit is open, the service falls
//     back to the local estimator so predictions keep flowing.
//
// Whatever the source, the final estimate is floored at 60% of the base
// shelf life for the storage condition - the model is never allowed to
// claim an item spoils implausibly fast.
package predictor
