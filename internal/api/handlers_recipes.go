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

	"github.com/tomtom215/saveeat/internal/logging"
	"github.com/tomtom215/saveeat/internal/models"
	"github.com/tomtom215/saveeat/internal/recommend"
)

const (
	defaultReviewLimit     = 5
	maxReviewLimit         = 100
	defaultIngredientLimit = 500
	maxIngredientLimit     = 5000
)

// Ingredient list sources reported by the ingredients endpoint.
const (
	ingredientSourceStore   = "store"
	ingredientSourceDefault = "default"
)

// defaultIngredients is served when the store has no recipes.
var defaultIngredients = []string{
	"tomato", "onion", "garlic", "olive oil", "salt", "pepper", "chicken",
	"beef", "pork", "fish", "rice", "pasta", "potato", "carrot", "celery",
	"bell pepper", "mushroom", "cheese", "milk", "butter", "flour", "egg",
	"lemon", "lime", "herbs", "spices", "bread", "lettuce", "cucumber",
}

// Recipe returns one recipe.
//
// @Summary Get recipe
// @Description Returns a recipe with ingredients, steps, preparation time and nutrition.
// @Tags Recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} models.APIResponse{data=recommend.Recipe} "Recipe"
// @Failure 400 {object} models.APIResponse "Invalid recipe ID"
// @Failure 404 {object} models.APIResponse "Recipe not found"
// @Failure 500 {object} models.APIResponse "Database error"
// @Router /recipe/{id} [get]
func (h *Handler) Recipe(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}

	recipe, err := h.store.GetRecipe(r.Context(), id)
	switch {
	case errors.Is(err, recommend.ErrRecipeNotFound):
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, "Recipe not found", nil)
		return
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to load recipe", err)
		return
	}
	respondSuccess(w, r, start, recipe)
}

// RecipeReviews returns the most recent reviews of a recipe.
//
// @Summary Get recipe reviews
// @Description Returns the most recent non-empty reviews of a recipe. Reviews without an author are attributed to "Anonymous".
// @Tags Recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Param limit query int false "Maximum reviews (default 5, max 100)"
// @Success 200 {object} models.APIResponse{data=models.RecipeReviewsResponse} "Reviews"
// @Failure 400 {object} models.APIResponse "Invalid recipe ID"
// @Failure 500 {object} models.APIResponse "Database error"
// @Router /recipe/{id}/reviews [get]
func (h *Handler) RecipeReviews(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}
	limit := getIntParam(r, "limit", defaultReviewLimit, maxReviewLimit)

	reviews, err := h.store.RecipeReviews(r.Context(), id, limit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeDatabase, "Failed to load reviews", err)
		return
	}
	respondSuccess(w, r, start, models.RecipeReviewsResponse{RecipeID: id, Reviews: reviews})
}

// Ingredients lists known ingredient names, most used first.
//
// @Summary List ingredients
// @Description Returns ingredient names ordered by the number of recipes using them. A built-in list of common ingredients is returned when the store has none or cannot be read.
// @Tags Recipes
// @Produce json
// @Param limit query int false "Maximum ingredients (default 500)"
// @Success 200 {object} models.APIResponse{data=models.IngredientsResponse} "Ingredients"
// @Router /ingredients [get]
func (h *Handler) Ingredients(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit := getIntParam(r, "limit", defaultIngredientLimit, maxIngredientLimit)

	names, err := h.store.TopIngredients(r.Context(), limit)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to list ingredients, serving defaults")
	}
	if err != nil || len(names) == 0 {
		respondSuccess(w, r, start, models.IngredientsResponse{
			Ingredients: defaultIngredients[:min(limit, len(defaultIngredients))],
			Source:      ingredientSourceDefault,
		})
		return
	}
	respondSuccess(w, r, start, models.IngredientsResponse{Ingredients: names, Source: ingredientSourceStore})
}
