// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/larder-app/larder/internal/aed"
	"github.com/larder-app/larder/internal/auth"
	"github.com/larder-app/larder/internal/models"
	"github.com/larder-app/larder/internal/predictor"
	"github.com/larder-app/larder/internal/storage"
)

// foodRequest is the payload for creating or updating a food record.
type foodRequest struct {
	DisplayName       string  `json:"display_name" validate:"omitempty,max=120"`
	ItemName          string  `json:"item_name" validate:"required,max=80"`
	Category          string  `json:"item_category" validate:"omitempty,max=40"`
	StorageType       string  `json:"storage_type" validate:"required,storage_type"`
	Quantity          float64 `json:"quantity" validate:"omitempty,gt=0"`
	PurchaseDate      string  `json:"purchase_date" validate:"required,datetime=2006-01-02"`
	PrintedExpiryDate string  `json:"printed_expiry_date" validate:"omitempty,datetime=2006-01-02"`
}

// CreateFood adds a food record to the authenticated user's inventory.
// The record starts without a prediction; clients call /foods/predict
// to populate one.
func (h *Handler) CreateFood(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	userID := auth.UserFromContext(r.Context())

	var req foodRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	food := h.foodFromRequest(&req)
	food.ID = uuid.New()
	food.UserID = userID

	if err := h.inventory.Insert(r.Context(), food); err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to store food record", err)
		return
	}

	h.refreshLive(food)
	respondData(w, http.StatusCreated, started, food)
}

// ListFoods returns the authenticated user's inventory, newest first,
// with days-left and priority recomputed against today.
func (h *Handler) ListFoods(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	userID := auth.UserFromContext(r.Context())

	foods, err := h.inventory.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list food records", err)
		return
	}

	for _, f := range foods {
		h.refreshLive(f)
	}

	respondData(w, http.StatusOK, started, map[string]interface{}{
		"foods": foods,
		"count": len(foods),
	})
}

// GetFood returns a single record owned by the authenticated user.
func (h *Handler) GetFood(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	userID := auth.UserFromContext(r.Context())

	food, ok := h.loadFood(w, r, userID)
	if !ok {
		return
	}

	h.refreshLive(food)
	respondData(w, http.StatusOK, started, food)
}

// UpdateFood replaces the descriptive fields of a record. Prediction
// state is untouched; a changed item or storage needs a fresh predict
// call to matter.
func (h *Handler) UpdateFood(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	userID := auth.UserFromContext(r.Context())

	food, ok := h.loadFood(w, r, userID)
	if !ok {
		return
	}

	var req foodRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	updated := h.foodFromRequest(&req)
	updated.ID = food.ID
	updated.UserID = userID

	if err := h.inventory.UpdateDetails(r.Context(), updated); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Food record not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update food record", err)
		return
	}

	food, err := h.inventory.GetByID(r.Context(), userID, food.ID.String())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to reload food record", err)
		return
	}

	h.refreshLive(food)
	respondData(w, http.StatusOK, started, food)
}

// DeleteFood removes a record owned by the authenticated user.
func (h *Handler) DeleteFood(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	userID := auth.UserFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Food id must be a UUID", nil)
		return
	}

	if err := h.inventory.Delete(r.Context(), userID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Food record not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete food record", err)
		return
	}

	respondData(w, http.StatusOK, started, map[string]interface{}{"deleted": id})
}

// loadFood fetches the {id} route param record scoped to userID, writing
// the error response itself on failure.
func (h *Handler) loadFood(w http.ResponseWriter, r *http.Request, userID string) (*models.Food, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Food id must be a UUID", nil)
		return nil, false
	}

	food, err := h.inventory.GetByID(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Food record not found", nil)
			return nil, false
		}
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load food record", err)
		return nil, false
	}
	return food, true
}

// foodFromRequest canonicalizes the vocabulary fields of a request into
// a record.
func (h *Handler) foodFromRequest(req *foodRequest) *models.Food {
	item := predictor.CanonicalItem(req.ItemName, h.predictor.Table())
	return &models.Food{
		DisplayName:       req.DisplayName,
		ItemName:          item,
		Category:          predictor.CanonicalCategory(req.Category),
		StorageType:       predictor.CanonicalStorage(req.StorageType),
		Quantity:          req.Quantity,
		PurchaseDate:      req.PurchaseDate,
		PrintedExpiryDate: req.PrintedExpiryDate,
	}
}

// refreshLive recomputes the per-response urgency fields against the
// current date. Unpredicted records carry the not-active sentinel.
func (h *Handler) refreshLive(f *models.Food) {
	expiry := f.FinalExpiryDate
	if expiry == "" {
		expiry = f.PrintedExpiryDate
	}
	f.DaysLeft = models.DaysLeft(expiry, f.PurchaseDate, time.Now())
	f.LivePriority = aed.Score(float64(f.DaysLeft))
}
