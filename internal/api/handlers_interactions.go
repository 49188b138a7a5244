// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/saveeat/internal/logging"
	"github.com/tomtom215/saveeat/internal/models"
)

const (
	defaultInteractionLimit = 100
	maxInteractionLimit     = 1000
)

// interactionAccepted is the status of an accepted interaction.
const interactionAccepted = "accepted"

// LogInteraction accepts a user-recipe interaction.
//
// The event is written to the WAL and published to the event bus; the
// events consumer stores it. A response therefore means the interaction is
// durable, not that it is already visible in the history endpoint.
//
// @Summary Log interaction
// @Description Records a view, click, like or rate event. Redelivered events with the same ID are stored once.
// @Tags Interactions
// @Accept json
// @Produce json
// @Param request body models.LogInteractionRequest true "Interaction"
// @Success 202 {object} models.APIResponse{data=models.LogInteractionResponse} "Interaction accepted"
// @Failure 400 {object} models.APIResponse "Invalid interaction"
// @Failure 503 {object} models.APIResponse "Event pipeline unavailable"
// @Router /log_interaction [post]
func (h *Handler) LogInteraction(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.LogInteractionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, r, apiErr)
		return
	}

	ev := req.ToInteraction()
	eventID, err := h.interactions.Log(r.Context(), ev)
	if err != nil {
		respondError(w, r, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "Failed to record interaction", err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Str("event_id", eventID).
		Int64("user_id", ev.UserID).
		Int64("recipe_id", ev.RecipeID).
		Str("type", string(ev.Type)).
		Msg("Interaction accepted")

	respondJSON(w, r, http.StatusAccepted, start, models.NewSuccess(models.LogInteractionResponse{
		EventID: eventID,
		Status:  interactionAccepted,
	}))
}

// UserInteractions returns a user's recent logged interactions.
//
// @Summary Get user interactions
// @Description Returns the user's logged interactions, most recent first.
// @Tags Interactions
// @Produce json
// @Param id path int true "User ID"
// @Param limit query int false "Maximum interactions (default 100, max 1000)"
// @Success 200 {object} models.APIResponse{data=models.UserInteractionsResponse} "Interactions"
// @Failure 400 {object} models.APIResponse "Invalid user ID"
// @Failure 500 {object} models.APIResponse "Database error"
// @Router /user/{id}/interactions [get]
func (h *Handler) UserInteractions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}
	limit := getIntParam(r, "limit", defaultInteractionLimit, maxInteractionLimit)

	items, err := h.store.UserInteractions(r.Context(), userID, limit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to load interactions", err)
		return
	}
	respondSuccess(w, r, start, models.UserInteractionsResponse{UserID: userID, Interactions: items})
}
