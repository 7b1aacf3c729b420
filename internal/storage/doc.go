// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

// Package storage provides the persistence layer.
//
// Two stores back the application:
//
//   - Inventory: food records and their prediction history, held in DuckDB
//     through database/sql. Every query is scoped by user_id.
//   - Profiles / Users: personalization profiles and user credentials, held
//     in BadgerDB as JSON values. Profile updates run inside a single Badger
//     Update transaction so the read-modify-write feedback cycle is atomic
//     per user.
package storage
