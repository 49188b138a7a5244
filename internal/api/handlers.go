// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package api

import (
	"context"
	"time"

	"github.com/tomtom215/saveeat/internal/cache"
	"github.com/tomtom215/saveeat/internal/events"
	"github.com/tomtom215/saveeat/internal/recommend"
	"github.com/tomtom215/saveeat/internal/recommend/engine"
)

// Store is the subset of the DuckDB store the handlers read and write.
// *database.DB implements it.
type Store interface {
	Ping(ctx context.Context) error
	GetRecipe(ctx context.Context, id int64) (*recommend.Recipe, error)
	RecipeReviews(ctx context.Context, recipeID int64, limit int) ([]recommend.Review, error)
	TopIngredients(ctx context.Context, limit int) ([]string, error)
	UserInteractions(ctx context.Context, userID int64, limit int) ([]recommend.LoggedInteraction, error)
	GetProfile(ctx context.Context, userID int64) (*recommend.Profile, error)
	UpsertProfile(ctx context.Context, p *recommend.Profile) error
}

// Recommender serves recommendations. *engine.Engine implements it.
type Recommender interface {
	Recommend(ctx context.Context, req *recommend.Request) (*recommend.Response, error)
	Bundle() *engine.Bundle
	BreakerState() string
	CacheStats() cache.Stats
}

// Reloader forces a serving bundle rebuild. *engine.Loader implements it.
type Reloader interface {
	ForceReload(ctx context.Context) (*engine.ReloadResult, error)
}

// InteractionLogger accepts interaction events. *events.Ingestor
// implements it.
type InteractionLogger interface {
	Log(ctx context.Context, ev *recommend.LoggedInteraction) (string, error)
}

// BusStatusProvider reports event bus state. *events.Bus implements it.
type BusStatusProvider interface {
	Status() events.Status
}

// Dependencies are the collaborators of the API handlers. Store,
// Recommender and Interactions are required; the rest are optional.
type Dependencies struct {
	Store        Store
	Recommender  Recommender
	Interactions InteractionLogger
	Reloader     Reloader
	Bus          BusStatusProvider
	Version      string
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_recommend.go: recommendations
//   - handlers_recipes.go: recipes, reviews, ingredients
//   - handlers_interactions.go: interaction logging and history
//   - handlers_profile.go: user profiles
//   - handlers_admin.go: bundle inspection and reload
//   - handlers_health.go: health and probes
type Handler struct {
	store        Store
	recommender  Recommender
	interactions InteractionLogger
	reloader     Reloader
	bus          BusStatusProvider
	version      string
	startTime    time.Time
}

// NewHandler creates a new API handler.
func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		store:        deps.Store,
		recommender:  deps.Recommender,
		interactions: deps.Interactions,
		reloader:     deps.Reloader,
		bus:          deps.Bus,
		version:      deps.Version,
		startTime:    time.Now(),
	}
}
