// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

// Package database provides the DuckDB-backed store of SaveEat.
//
// # Overview
//
// The store holds the recipe catalogue, historical ratings, user profiles and
// the log of interactions captured by the API. It serves the read contracts
// the recommender consumes (recipes, interactions, profiles) and the write
// paths of the HTTP API and the events consumer.
//
// # Organization
//
//   - database.go: connection lifecycle, pool configuration, checkpointing
//   - schema.go: table and index creation, CheckSchema
//   - recipes.go: recipe reads and writes, ingredient catalogue
//   - interactions.go: historical interactions, reviews, interaction log
//   - profiles.go: user profile reads and writes
//   - version.go: DataVersion fingerprint used by the bundle loader
//   - import.go, foodcom.go: Food.com CSV import
//
// # Tables
//
//	recipes          recipe_id PK, list columns (ingredients, steps) as JSON text
//	interactions     user_id, recipe_id, rating NULL, review, author_name, submitted_at
//	user_profiles    user_id PK, constraint lists as JSON text, optional limits
//	interaction_log  event_id PK, one row per logged API interaction
//
// # Errors
//
// Missing rows wrap ErrNotFound together with the matching recommend
// sentinel (ErrRecipeNotFound, ErrProfileNotFound), so both the API and the
// engine can test for them with errors.Is. A schema lacking a required column
// fails with ErrMissingColumn.
//
// # Usage
//
//	db, err := database.New(&cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	recipes, err := db.ListRecipes(ctx)
package database
