// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/saveeat/internal/models"
	"github.com/tomtom215/saveeat/internal/recommend"
)

// GetProfile returns a user's dietary profile.
//
// @Summary Get user profile
// @Tags Profiles
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.APIResponse{data=recommend.Profile} "Profile"
// @Failure 400 {object} models.APIResponse "Invalid user ID"
// @Failure 404 {object} models.APIResponse "Profile not found"
// @Failure 500 {object} models.APIResponse "Database error"
// @Router /user/{id}/profile [get]
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}

	p, err := h.store.GetProfile(r.Context(), userID)
	switch {
	case errors.Is(err, recommend.ErrProfileNotFound):
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, "Profile not found", nil)
		return
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to load profile", err)
		return
	}
	respondSuccess(w, r, start, p)
}

// PutProfile creates or replaces a user's dietary profile.
//
// @Summary Replace user profile
// @Description Stores allergies, dietary restrictions, ingredient preferences and nutrition limits used when a recommendation request sets use_profile. Allergies are hard exclusions.
// @Tags Profiles
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body models.ProfileRequest true "Profile"
// @Success 200 {object} models.APIResponse{data=recommend.Profile} "Stored profile"
// @Failure 400 {object} models.APIResponse "Invalid profile"
// @Failure 500 {object} models.APIResponse "Database error"
// @Router /user/{id}/profile [put]
func (h *Handler) PutProfile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}

	var req models.ProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, r, apiErr)
		return
	}

	p := req.ToProfile(userID, time.Now())
	if err := h.store.UpsertProfile(r.Context(), p); err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to store profile", err)
		return
	}
	respondSuccess(w, r, start, p)
}
