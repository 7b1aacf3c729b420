// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package api

import (
	"net/http"
	"time"

	"github.com/larder-app/larder/internal/aed"
	"github.com/larder-app/larder/internal/auth"
	"github.com/larder-app/larder/internal/events"
	"github.com/larder-app/larder/internal/logging"
	"github.com/larder-app/larder/internal/models"
)

// feedbackRequest reports how a predicted item actually fared.
type feedbackRequest struct {
	FoodID     string  `json:"food_id" validate:"required,uuid4"`
	Feedback   string  `json:"feedback" validate:"required,feedback_label"`
	ActualDays float64 `json:"actual_days" validate:"required,gt=0,lte=366"`
}

// feedbackResponse reports the learning outcome of one feedback event.
type feedbackResponse struct {
	FoodID   string `json:"food_id"`
	ItemName string `json:"item_name"`
	Category string `json:"item_category"`
	Feedback string `json:"feedback"`

	ItemDelta     float64 `json:"item_delta"`
	CategoryDelta float64 `json:"category_delta"`

	ItemFeedbackCount      int  `json:"item_feedback_count"`
	PersonalizationEnabled bool `json:"personalization_enabled"`
	ActivatedNow           bool `json:"personalization_activated_now"`
}

// SubmitFeedback runs the online-learning side of the loop. The label is
// validated strictly, the delta update runs once for the item key and
// once for the category key, and the whole profile change lands in a
// single atomic store update. Concurrent submissions for the same user
// serialize through the store's conflict retry.
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	userID := auth.UserFromContext(r.Context())

	var req feedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	fb, err := aed.ParseFeedback(req.Feedback)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Feedback must be one of: early, on_time, late", nil)
		return
	}

	food, ok := h.loadFoodByID(w, r, userID, req.FoodID)
	if !ok {
		return
	}

	// The learning step compares against what was predicted for this
	// record. A record that was never predicted falls back to the
	// reported duration, making the first residual zero.
	predictedDays := food.BaselineDays
	if food.PersonalizationEnabled && food.PersonalizedDays > 0 {
		predictedDays = food.PersonalizedDays
	}
	if predictedDays <= 0 {
		predictedDays = req.ActualDays
	}

	itemKey := aed.ItemKey(food.ItemName)
	categoryKey := aed.CategoryKey(food.Category)

	out := feedbackResponse{
		FoodID:   req.FoodID,
		ItemName: food.ItemName,
		Category: food.Category,
		Feedback: string(fb),
	}

	minFeedback := h.cfg.AED.MinFeedbackForPersonalization
	_, err = h.profiles.ApplyFeedback(r.Context(), userID, func(p *models.Profile) error {
		itemStats := p.StatsFor(itemKey)
		itemDelta, itemNext := aed.UpdateDelta(p.Delta(itemKey), fb, req.ActualDays, predictedDays, &itemStats, h.cfg.AED.ItemLearningRate)
		p.SetDelta(itemKey, itemDelta, itemNext)

		catStats := p.StatsFor(categoryKey)
		catDelta, catNext := aed.UpdateDelta(p.Delta(categoryKey), fb, req.ActualDays, predictedDays, &catStats, h.cfg.AED.CategoryLearningRate)
		p.SetDelta(categoryKey, catDelta, catNext)

		count := p.BumpItemFeedback(food.ItemName)

		out.ItemDelta = itemDelta
		out.CategoryDelta = catDelta
		out.ItemFeedbackCount = count
		out.PersonalizationEnabled = count >= minFeedback
		out.ActivatedNow = count == minFeedback
		return nil
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update personalization profile", err)
		return
	}

	if err := h.inventory.SetFeedback(r.Context(), userID, req.FoodID, string(fb), req.ActualDays); err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to record feedback on food record", err)
		return
	}

	// Feedback metrics are recorded by the event consumer, not here,
	// so one submission counts once regardless of transport retries.
	if err := h.bus.PublishFeedbackReceived(r.Context(), events.FeedbackReceived{
		UserID:            userID,
		FoodID:            req.FoodID,
		ItemName:          food.ItemName,
		Category:          food.Category,
		Feedback:          string(fb),
		ActualDays:        req.ActualDays,
		PredictedDays:     predictedDays,
		ItemDelta:         out.ItemDelta,
		CategoryDelta:     out.CategoryDelta,
		ItemFeedbackCount: out.ItemFeedbackCount,
		ActivatedNow:      out.ActivatedNow,
	}); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to publish feedback event")
	}

	respondData(w, http.StatusOK, started, out)
}
