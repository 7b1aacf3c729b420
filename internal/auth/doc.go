// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

/*
Package auth provides authentication: user registration and login with
bcrypt password hashing, stateless JWT bearer tokens (HMAC-SHA256), and
the middleware that guards the data endpoints.

Tokens carry the username as the subject; all storage is keyed by it.
There are no roles: every authenticated user owns exactly their own
inventory and personalization profile.
*/
package auth
