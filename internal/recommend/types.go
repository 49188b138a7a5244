// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package recommend

import (
	"slices"
	"time"
)

// Nutrition holds per-serving nutrition values. A nil field means unknown.
type Nutrition struct {
	Calories      *float64 `json:"calories,omitempty"`
	Protein       *float64 `json:"protein,omitempty"`
	Carbohydrates *float64 `json:"carbohydrates,omitempty"`
	Fat           *float64 `json:"fat,omitempty"`
}

// Recipe is the typed recipe record produced by the store.
type Recipe struct {
	// ID is the external recipe identifier.
	ID int64 `json:"recipe_id"`

	// Name is the display name.
	Name string `json:"name"`

	// Description is free text used for text embeddings.
	Description string `json:"description,omitempty"`

	// Ingredients are the raw ingredient strings as stored.
	Ingredients []string `json:"ingredients"`

	// Steps are the preparation instructions.
	Steps []string `json:"steps,omitempty"`

	// PrepTimeMinutes is the total preparation time, nil when unknown.
	PrepTimeMinutes *int `json:"prep_time,omitempty"`

	// Nutrition holds optional nutrition values.
	Nutrition Nutrition `json:"nutrition"`

	// ImageURL is the primary image, if any.
	ImageURL string `json:"image_url,omitempty"`
}

// Text returns the concatenated free text of the recipe.
func (r *Recipe) Text() string {
	text := r.Name
	if r.Description != "" {
		text += " " + r.Description
	}
	for _, s := range r.Steps {
		text += " " + s
	}
	return text
}

// DefaultRating is the neutral rating used when an interaction has none.
const DefaultRating = 3.0

// Interaction is a historical user-recipe rating record.
type Interaction struct {
	UserID   int64 `json:"user_id"`
	RecipeID int64 `json:"recipe_id"`

	// Rating is nil when the interaction carries no explicit rating.
	Rating *float64 `json:"rating,omitempty"`

	// SubmittedAt orders interactions chronologically for splitting.
	SubmittedAt time.Time `json:"submitted_at"`
}

// RatingOr returns the rating or def when absent.
func (i *Interaction) RatingOr(def float64) float64 {
	if i.Rating == nil {
		return def
	}
	return *i.Rating
}

// Review is a user review attached to a recipe.
type Review struct {
	Rating      *float64  `json:"rating"`
	Review      string    `json:"review"`
	Author      string    `json:"author"`
	SubmittedAt time.Time `json:"date"`
}

// Profile is the optional constraint set of a user. Absent fields impose no
// constraint.
type Profile struct {
	UserID              int64              `json:"user_id"`
	Allergies           []string           `json:"allergies,omitempty"`
	DietaryRestrictions []string           `json:"dietary_restrictions,omitempty"`
	FavoriteIngredients []string           `json:"favorite_ingredients,omitempty"`
	DislikedIngredients []string           `json:"disliked_ingredients,omitempty"`
	MaxCalories         *float64           `json:"max_calories,omitempty"`
	MinProtein          *float64           `json:"min_protein,omitempty"`
	MaxCarbs            *float64           `json:"max_carbs,omitempty"`
	MaxFat              *float64           `json:"max_fat,omitempty"`
	MaxPrepTime         *int               `json:"max_prep_time,omitempty"`
	TastePreferences    map[string]float64 `json:"taste_preferences,omitempty"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// InteractionType classifies a logged interaction.
type InteractionType string

const (
	InteractionView  InteractionType = "view"
	InteractionClick InteractionType = "click"
	InteractionLike  InteractionType = "like"
	InteractionRate  InteractionType = "rate"
)

// Valid reports whether t is a known interaction type.
func (t InteractionType) Valid() bool {
	switch t {
	case InteractionView, InteractionClick, InteractionLike, InteractionRate:
		return true
	default:
		return false
	}
}

// LoggedInteraction is an interaction captured live by the API, with the
// context the user saw at the time.
type LoggedInteraction struct {
	EventID              string          `json:"event_id"`
	UserID               int64           `json:"user_id"`
	RecipeID             int64           `json:"recipe_id"`
	Type                 InteractionType `json:"interaction_type"`
	Rating               *float64        `json:"rating,omitempty"`
	Review               string          `json:"review,omitempty"`
	AvailableIngredients []string        `json:"available_ingredients,omitempty"`
	SessionID            string          `json:"session_id,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

// Request is the input of Recommend.
type Request struct {
	UserID int64 `json:"user_id"`

	// AvailableIngredients are the ingredients on hand. Empty means unknown.
	AvailableIngredients []string `json:"available_ingredients,omitempty"`

	// MaxTime is the per-request time budget in minutes, nil when absent.
	MaxTime *int `json:"max_time,omitempty"`

	// DietaryPreferences are restriction tags such as "vegetarian".
	DietaryPreferences []string `json:"dietary_preferences,omitempty"`

	// TopK is the maximum number of results. Must be positive.
	TopK int `json:"top_k"`

	// UseProfile applies the stored user profile constraints.
	UseProfile bool `json:"use_profile"`
}

// HasContext reports whether the request carries situational context for
// the re-ranker.
func (r *Request) HasContext() bool {
	return len(r.AvailableIngredients) > 0 || r.MaxTime != nil || len(r.DietaryPreferences) > 0
}

// Source identifies which path produced a response.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Response is the output of Recommend. The three slices always have equal
// length, at most the requested TopK, and contain no duplicate recipe IDs.
type Response struct {
	RecipeIDs    []int64   `json:"recipe_ids"`
	Scores       []float64 `json:"scores"`
	Explanations []string  `json:"explanations"`

	// Metadata describes how the response was produced.
	Metadata ResponseMetadata `json:"metadata"`
}

// Len returns the number of recommendations.
func (r *Response) Len() int {
	return len(r.RecipeIDs)
}

// Clone returns a deep copy of r. Responses held in a cache are cloned on
// the way in and on the way out so callers never share slices.
func (r *Response) Clone() *Response {
	out := *r
	out.RecipeIDs = slices.Clone(r.RecipeIDs)
	out.Scores = slices.Clone(r.Scores)
	out.Explanations = slices.Clone(r.Explanations)
	out.Metadata.Relaxed = slices.Clone(r.Metadata.Relaxed)
	return &out
}

// ResponseMetadata carries diagnostics that never affect ordering.
type ResponseMetadata struct {
	Source        Source   `json:"source"`
	BundleVersion int      `json:"bundle_version"`
	Reranked      bool     `json:"reranked"`
	Relaxed       []string `json:"relaxed_constraints,omitempty"`
	CacheHit      bool     `json:"cache_hit"`
	LatencyMS     int64    `json:"latency_ms"`
}

// Candidate is a recipe under consideration with its working score.
type Candidate struct {
	Recipe *Recipe
	Score  float64

	// Match holds ingredient-match statistics when ingredients were supplied.
	Match *IngredientMatch
}

// IngredientMatch describes how a recipe's ingredients overlap the
// requester's available set.
type IngredientMatch struct {
	// Used is the number of recipe ingredients present in the available set.
	Used int
	// RecipeTotal is the number of distinct normalized recipe ingredients.
	RecipeTotal int
	// AvailableTotal is the number of distinct available ingredients.
	AvailableTotal int
	// Missing lists recipe ingredients not available, in recipe order.
	Missing []string
}

// Ratio returns Used / RecipeTotal, 0 when the recipe has no ingredients.
func (m *IngredientMatch) Ratio() float64 {
	if m.RecipeTotal == 0 {
		return 0
	}
	return float64(m.Used) / float64(m.RecipeTotal)
}

// Complete reports whether every recipe ingredient is available.
func (m *IngredientMatch) Complete() bool {
	return m.RecipeTotal > 0 && m.Used == m.RecipeTotal
}
