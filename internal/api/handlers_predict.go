// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package api

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/larder-app/larder/internal/aed"
	"github.com/larder-app/larder/internal/auth"
	"github.com/larder-app/larder/internal/events"
	"github.com/larder-app/larder/internal/logging"
	"github.com/larder-app/larder/internal/metrics"
	"github.com/larder-app/larder/internal/models"
	"github.com/larder-app/larder/internal/predictor"
	"github.com/larder-app/larder/internal/storage"
)

// predictRequest asks for a fresh prediction on a stored food record.
// Environment overrides are optional; the storage-type defaults apply
// when absent.
type predictRequest struct {
	FoodID       string   `json:"food_id" validate:"required,uuid4"`
	TemperatureC *float64 `json:"storage_temperature_c" validate:"omitempty,gte=-40,lte=60"`
	HumidityPct  *float64 `json:"storage_humidity_pct" validate:"omitempty,gte=0,lte=100"`
}

// predictResponse is the prediction payload returned to the client. The
// same values are persisted on the food record and in its history.
type predictResponse struct {
	FoodID      string `json:"food_id"`
	ItemName    string `json:"item_name"`
	Category    string `json:"item_category"`
	StorageType string `json:"storage_type"`

	BaselineDays       float64 `json:"baseline_days"`
	BaselineExpiryDate string  `json:"baseline_expiry_date"`

	PersonalizationEnabled bool    `json:"personalization_enabled"`
	PersonalizedDays       float64 `json:"personalized_days,omitempty"`
	PersonalizedExpiryDate string  `json:"personalized_expiry_date,omitempty"`

	FinalExpiryDate   string  `json:"final_expiry_date"`
	DaysLeft          int     `json:"days_left"`
	PriorityScore     float64 `json:"priority_score"`
	PrintedCapApplied bool    `json:"printed_cap_applied"`
	Source            string  `json:"source"`
}

// PredictFood runs the full prediction pipeline for one stored record:
// baseline estimate, learned personalization delta once the item has
// enough feedback, printed-expiry cap, calendar math, priority score.
// The outcome is persisted as the record's latest prediction and
// appended to its history.
func (h *Handler) PredictFood(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	userID := auth.UserFromContext(r.Context())

	var req predictRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	food, ok := h.loadFoodByID(w, r, userID, req.FoodID)
	if !ok {
		return
	}

	table := h.predictor.Table()
	item := predictor.CanonicalItem(food.ItemName, table)
	if !table.Validate(item) {
		respondAPIError(w, http.StatusBadRequest, &models.APIError{
			Code:    "UNKNOWN_ITEM",
			Message: "Item is not in the expiry table",
			Details: map[string]interface{}{
				"item_name":     food.ItemName,
				"allowed_items": table.AllowedItems(),
			},
		})
		return
	}

	pred := h.predictor.Predict(r.Context(), predictor.Request{
		Item:         item,
		Category:     food.Category,
		Storage:      food.StorageType,
		Quantity:     food.Quantity,
		TemperatureC: req.TemperatureC,
		HumidityPct:  req.HumidityPct,
	})
	metrics.PredictionDuration.Observe(time.Since(started).Seconds())

	profile, err := h.profiles.Get(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load personalization profile", err)
		return
	}

	out := resolvePrediction(pred, profile, item, food.Category, food.PurchaseDate, food.PrintedExpiryDate, h.cfg.AED.MinFeedbackForPersonalization)

	now := time.Now()
	snap := models.PredictionSnapshot{
		Timestamp:              now,
		BaselineDays:           out.BaselineDays,
		BaselineExpiryDate:     out.BaselineExpiryDate,
		PersonalizationEnabled: out.PersonalizationEnabled,
		PersonalizedDays:       out.PersonalizedDays,
		PersonalizedExpiryDate: out.PersonalizedExpiryDate,
		FinalExpiryDate:        out.FinalExpiryDate,
		DaysLeft:               out.DaysLeft,
		PriorityScore:          out.PriorityScore,
		PrintedExpiryDate:      food.PrintedExpiryDate,
		PrintedCapApplied:      out.PrintedCapApplied,
	}

	food.ItemName = item
	food.BaselineDays = out.BaselineDays
	food.BaselineExpiryDate = out.BaselineExpiryDate
	food.PersonalizationEnabled = out.PersonalizationEnabled
	food.PersonalizedDays = out.PersonalizedDays
	food.PersonalizedExpiryDate = out.PersonalizedExpiryDate
	food.FinalExpiryDate = out.FinalExpiryDate
	food.BaseExpiryDays = pred.BaseDays
	food.PriorityScore = out.PriorityScore
	food.DaysLeftAtSave = out.DaysLeft
	food.PrintedCapApplied = out.PrintedCapApplied

	if err := h.inventory.SavePrediction(r.Context(), userID, req.FoodID, food, snap, h.cfg.AED.HistoryLimit); err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to persist prediction", err)
		return
	}

	if err := h.bus.PublishPredictionComputed(r.Context(), events.PredictionComputed{
		UserID:                 userID,
		FoodID:                 req.FoodID,
		ItemName:               item,
		Category:               food.Category,
		Storage:                food.StorageType,
		BaselineDays:           out.BaselineDays,
		PersonalizedDays:       out.PersonalizedDays,
		FinalExpiryDate:        out.FinalExpiryDate,
		DaysLeft:               out.DaysLeft,
		PriorityScore:          out.PriorityScore,
		PersonalizationEnabled: out.PersonalizationEnabled,
		PrintedCapApplied:      out.PrintedCapApplied,
		Source:                 pred.Source,
	}); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to publish prediction event")
	}

	out.FoodID = req.FoodID
	out.ItemName = item
	out.Category = food.Category
	out.StorageType = food.StorageType
	out.Source = pred.Source

	respondData(w, http.StatusOK, started, out)
}

// resolvePrediction turns a baseline prediction into the persisted
// outcome: personalization gate, learned delta, printed-expiry cap, and
// calendar math.
func resolvePrediction(pred predictor.Prediction, profile *models.Profile, item, category, purchaseDate, printedExpiry string, minFeedback int) predictResponse {
	out := predictResponse{
		BaselineDays:       pred.FinalDays,
		BaselineExpiryDate: models.ComputeExpiryDate(purchaseDate, pred.FinalDays),
	}

	finalDays := pred.FinalDays
	if profile.PersonalizationEnabled(item, minFeedback) {
		adjusted, err := aed.Apply(profile.DeltaMap(), item, category, pred.FinalDays, pred.BaseDays)
		if err == nil {
			out.PersonalizationEnabled = true
			out.PersonalizedDays = adjusted
			out.PersonalizedExpiryDate = models.ComputeExpiryDate(purchaseDate, adjusted)
			finalDays = adjusted
		} else {
			logging.Warn().Err(err).Str("item", sanitizeLogValue(item)).Msg("Personalization skipped")
		}
	}

	finalDate := models.ComputeExpiryDate(purchaseDate, finalDays)
	out.PrintedCapApplied = false
	if printedExpiry != "" && finalDate != "" && printedExpiry < finalDate {
		finalDate = printedExpiry
		out.PrintedCapApplied = true
	}
	out.FinalExpiryDate = finalDate

	out.DaysLeft = models.DaysLeft(finalDate, purchaseDate, time.Now())
	out.PriorityScore = aed.Score(float64(out.DaysLeft))

	metrics.PredictionDaysAdjustment.Observe(math.Abs(finalDays - pred.FinalDays))
	return out
}

// loadFoodByID is loadFood for an id carried in the body rather than
// the route.
func (h *Handler) loadFoodByID(w http.ResponseWriter, r *http.Request, userID, id string) (*models.Food, bool) {
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
