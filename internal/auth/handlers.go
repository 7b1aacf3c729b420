// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/larder-app/larder/internal/logging"
	"github.com/larder-app/larder/internal/models"
	"github.com/larder-app/larder/internal/storage"
	"github.com/larder-app/larder/internal/validation"
)

// Handlers serves /auth/register and /auth/login.
type Handlers struct {
	users *storage.Users
	jwt   *JWTManager
}

// NewHandlers creates the auth handlers.
func NewHandlers(users *storage.Users, jwt *JWTManager) *Handlers {
	return &Handlers{users: users, jwt: jwt}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Register creates a new account.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body")
		return
	}
	req.Username = strings.TrimSpace(strings.ToLower(req.Username))

	if verr := validation.ValidateStruct(&req); verr != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", verr.ToAPIError().Message)
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Password could not be hashed")
		return
	}

	user := &storage.User{
		ID:           uuid.New(),
		Username:     req.Username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			respondError(w, http.StatusConflict, "VALIDATION_ERROR", "Username already taken")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("user create failed")
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Could not create user")
		return
	}

	logging.Ctx(r.Context()).Info().Str("username", req.Username).Msg("user registered")
	respondJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

// Login verifies credentials and issues a bearer token.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body")
		return
	}
	req.Username = strings.TrimSpace(strings.ToLower(req.Username))

	if verr := validation.ValidateStruct(&req); verr != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", verr.ToAPIError().Message)
		return
	}

	user, err := h.users.GetByUsername(r.Context(), req.Username)
	if err != nil || !CheckPassword(user.PasswordHash, req.Password) {
		// Same response for unknown user and wrong password, so the
		// endpoint cannot be used to enumerate usernames.
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "Invalid credentials")
		return
	}

	token, err := h.jwt.GenerateToken(user.Username)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("token generation failed")
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not issue token")
		return
	}

	respondJSON(w, http.StatusOK, loginResponse{Token: token, Username: user.Username})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(models.APIResponse{
		Status:   "error",
		Error:    &models.APIError{Code: code, Message: message},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}
