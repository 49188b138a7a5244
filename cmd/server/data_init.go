// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/saveeat/internal/config"
	"github.com/tomtom215/saveeat/internal/database"
	"github.com/tomtom215/saveeat/internal/logging"
)

// recipeImporter is the subset of *database.DB used for the startup import.
type recipeImporter interface {
	RecipeCount(ctx context.Context) (int64, error)
	ImportFoodCom(ctx context.Context, recipesCSV, reviewsCSV string) (*database.ImportResult, error)
}

// importIfEmpty loads the configured Food.com export into an empty store.
// It is a no-op when either CSV path is unset or recipes already exist.
func importIfEmpty(ctx context.Context, db recipeImporter, cfg *config.DatabaseConfig) error {
	if cfg.ImportRecipesCSV == "" || cfg.ImportReviewsCSV == "" {
		return nil
	}

	count, err := db.RecipeCount(ctx)
	if err != nil {
		return fmt.Errorf("count recipes: %w", err)
	}
	if count > 0 {
		logging.Info().Int64("recipes", count).Msg("Store already populated, skipping Food.com import")
		return nil
	}

	logging.Info().
		Str("recipes_csv", cfg.ImportRecipesCSV).
		Str("reviews_csv", cfg.ImportReviewsCSV).
		Msg("Importing Food.com export into empty store")
	if _, err := db.ImportFoodCom(ctx, cfg.ImportRecipesCSV, cfg.ImportReviewsCSV); err != nil {
		return fmt.Errorf("import food.com export: %w", err)
	}
	return nil
}
