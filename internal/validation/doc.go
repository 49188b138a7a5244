// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

// Package validation provides struct validation using go-playground/validator v10.
// It provides a thread-safe singleton validator instance with custom validators
// for recipe-domain rules.
//
// Features:
//   - Singleton validator instance (thread-safe, caches struct info)
//   - Field names reported by their JSON tag
//   - Custom tags: interaction_type (view|click|like|rate) and ingredient
//   - Error translation to the VALIDATION_ERROR API format
//
// Example usage:
//
//	type RecommendRequest struct {
//	    TopK        int      `json:"top_k" validate:"omitempty,min=1,max=100"`
//	    Ingredients []string `json:"available_ingredients" validate:"max=200,dive,ingredient"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    apiErr := err.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
package validation
