// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/saveeat/internal/logging"
	"github.com/tomtom215/saveeat/internal/models"
	"github.com/tomtom215/saveeat/internal/recommend"
)

// recommendTimeout bounds one recommendation request.
const recommendTimeout = 10 * time.Second

// Recommend handles recommendation requests.
//
// @Summary Recommend recipes
// @Description Returns up to top_k recipes for a user, optionally constrained by available ingredients, maximum time, dietary preferences and the stored profile. Users without a trained embedding are served by the popularity and ingredient-match fallback.
// @Tags Recommendations
// @Accept json
// @Produce json
// @Param request body models.RecommendRequest true "Recommendation request"
// @Success 200 {object} models.APIResponse{data=recommend.Response} "Recommendations"
// @Failure 400 {object} models.APIResponse "Invalid request"
// @Failure 500 {object} models.APIResponse "Recommendation failed"
// @Router /recommend [post]
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.RecommendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, r, apiErr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), recommendTimeout)
	defer cancel()

	resp, err := h.recommender.Recommend(ctx, req.ToRequest())
	switch {
	case errors.Is(err, recommend.ErrInvalidRequest):
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to generate recommendations", err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Int64("user_id", req.UserID).
		Int("results", resp.Len()).
		Str("source", string(resp.Metadata.Source)).
		Bool("cache_hit", resp.Metadata.CacheHit).
		Msg("Recommendations served")

	out := models.NewSuccess(resp)
	out.Metadata.Cached = resp.Metadata.CacheHit
	respondJSON(w, r, http.StatusOK, start, out)
}
