// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

/*
Package events provides the in-process domain event bus.

Predictions and feedback submissions publish events through a Watermill
GoChannel pub/sub; a message router consumes them for audit logging and
metrics. The bus is fire-and-forget from the HTTP handlers' point of
view: a publish failure is logged but never fails the request.

Topics:

  - prediction.computed: emitted after every successful prediction
  - feedback.received: emitted after every stored feedback event
*/
package events
