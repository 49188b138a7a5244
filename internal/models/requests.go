// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package models

import (
	"strings"
	"time"

	"github.com/tomtom215/saveeat/internal/recommend"
)

// RecommendRequest is the body of POST /api/v1/recommend.
type RecommendRequest struct {
	UserID               int64    `json:"user_id" validate:"gte=0"`
	AvailableIngredients []string `json:"available_ingredients,omitempty" validate:"max=200,dive,ingredient"`
	MaxTime              *int     `json:"max_time,omitempty" validate:"omitempty,gte=0,lte=10080"`
	DietaryPreferences   []string `json:"dietary_preferences,omitempty" validate:"max=20,dive,min=1,max=50"`
	TopK                 int      `json:"top_k" validate:"omitempty,min=1,max=100"`
	UseProfile           bool     `json:"use_profile"`
}

// ToRequest converts the DTO to an engine request. A zero TopK is left for
// the engine to default.
func (r *RecommendRequest) ToRequest() *recommend.Request {
	return &recommend.Request{
		UserID:               r.UserID,
		AvailableIngredients: r.AvailableIngredients,
		MaxTime:              r.MaxTime,
		DietaryPreferences:   r.DietaryPreferences,
		TopK:                 r.TopK,
		UseProfile:           r.UseProfile,
	}
}

// LogInteractionRequest is the body of POST /api/v1/log_interaction.
type LogInteractionRequest struct {
	UserID               int64    `json:"user_id" validate:"gte=0"`
	RecipeID             int64    `json:"recipe_id" validate:"gt=0"`
	InteractionType      string   `json:"interaction_type" validate:"omitempty,interaction_type"`
	Rating               *float64 `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Review               string   `json:"review,omitempty" validate:"max=10000"`
	AvailableIngredients []string `json:"available_ingredients,omitempty" validate:"max=200,dive,ingredient"`
	SessionID            string   `json:"session_id,omitempty" validate:"max=128"`
}

// ToInteraction converts the DTO to a logged interaction. The interaction
// type defaults to view.
func (r *LogInteractionRequest) ToInteraction() *recommend.LoggedInteraction {
	t := recommend.InteractionType(strings.ToLower(r.InteractionType))
	if t == "" {
		t = recommend.InteractionView
	}
	return &recommend.LoggedInteraction{
		UserID:               r.UserID,
		RecipeID:             r.RecipeID,
		Type:                 t,
		Rating:               r.Rating,
		Review:               r.Review,
		AvailableIngredients: r.AvailableIngredients,
		SessionID:            r.SessionID,
	}
}

// LogInteractionResponse is returned after an interaction was accepted.
type LogInteractionResponse struct {
	EventID string `json:"event_id"`
	Status  string `json:"status"`
}

// ProfileRequest is the body of PUT /api/v1/user/{id}/profile.
type ProfileRequest struct {
	Allergies           []string           `json:"allergies,omitempty" validate:"max=50,dive,ingredient"`
	DietaryRestrictions []string           `json:"dietary_restrictions,omitempty" validate:"max=20,dive,min=1,max=50"`
	FavoriteIngredients []string           `json:"favorite_ingredients,omitempty" validate:"max=100,dive,ingredient"`
	DislikedIngredients []string           `json:"disliked_ingredients,omitempty" validate:"max=100,dive,ingredient"`
	MaxCalories         *float64           `json:"max_calories,omitempty" validate:"omitempty,gt=0"`
	MinProtein          *float64           `json:"min_protein,omitempty" validate:"omitempty,gte=0"`
	MaxCarbs            *float64           `json:"max_carbs,omitempty" validate:"omitempty,gte=0"`
	MaxFat              *float64           `json:"max_fat,omitempty" validate:"omitempty,gte=0"`
	MaxPrepTime         *int               `json:"max_prep_time,omitempty" validate:"omitempty,gt=0"`
	TastePreferences    map[string]float64 `json:"taste_preferences,omitempty" validate:"max=50"`
}

// ToProfile converts the DTO to a profile for userID, stamped with now.
func (r *ProfileRequest) ToProfile(userID int64, now time.Time) *recommend.Profile {
	return &recommend.Profile{
		UserID:              userID,
		Allergies:           r.Allergies,
		DietaryRestrictions: r.DietaryRestrictions,
		FavoriteIngredients: r.FavoriteIngredients,
		DislikedIngredients: r.DislikedIngredients,
		MaxCalories:         r.MaxCalories,
		MinProtein:          r.MinProtein,
		MaxCarbs:            r.MaxCarbs,
		MaxFat:              r.MaxFat,
		MaxPrepTime:         r.MaxPrepTime,
		TastePreferences:    r.TastePreferences,
		UpdatedAt:           now.UTC(),
	}
}

// UserInteractionsResponse lists a user's recent logged interactions.
type UserInteractionsResponse struct {
	UserID       int64                         `json:"user_id"`
	Interactions []recommend.LoggedInteraction `json:"interactions"`
}

// RecipeReviewsResponse lists the most recent reviews of a recipe.
type RecipeReviewsResponse struct {
	RecipeID int64              `json:"recipe_id"`
	Reviews  []recommend.Review `json:"reviews"`
}

// IngredientsResponse lists known ingredient names.
type IngredientsResponse struct {
	Ingredients []string `json:"ingredients"`
	Source      string   `json:"source"`
}
