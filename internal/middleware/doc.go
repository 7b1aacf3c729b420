// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

/*
Package middleware provides HTTP middleware components for the application.

All middleware uses the standard chi signature func(http.Handler) http.Handler
and composes through the router:

	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression)

Key components:

  - RequestID: UUID-based request tracking wired into the logging context
  - PrometheusMetrics: request count/latency instrumentation, labelled by
    chi route pattern to keep cardinality bounded
  - Compression: gzip for clients that accept it, with pooled writers
*/
package middleware
