// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

// Package api implements the HTTP surface of the Larder backend.
//
// The router is built on go-chi/chi with route groups for health,
// authentication, and the authenticated food inventory endpoints. All
// responses use the models.APIResponse envelope encoded with
// goccy/go-json. The package owns the two domain pipelines:
//
//   - POST /api/v1/foods/predict runs the baseline predictor, applies the
//     learned personalization delta when the item has enough feedback,
//     caps the result at the printed expiry date, and persists a
//     prediction snapshot.
//
//   - POST /api/v1/foods/feedback validates the feedback label, runs one
//     online-learning step for the item key and one for the category key,
//     and upserts the user's profile atomically.
package api
