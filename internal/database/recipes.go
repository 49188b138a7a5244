// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/saveeat/internal/metrics"
	"github.com/tomtom215/saveeat/internal/recommend"
)

const recipeColumns = `recipe_id, name, description, ingredients, steps, prep_time_minutes,
	calories, protein, carbohydrates, fat, image_url`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (recommend.Recipe, error) {
	var (
		r                        recommend.Recipe
		ingredients, steps       string
		prep                     sql.NullInt64
		calories, protein, carbs sql.NullFloat64
		fat                      sql.NullFloat64
	)
	if err := row.Scan(&r.ID, &r.Name, &r.Description, &ingredients, &steps, &prep,
		&calories, &protein, &carbs, &fat, &r.ImageURL); err != nil {
		return r, err
	}
	r.Ingredients = decodeList(ingredients, "ingredients")
	r.Steps = decodeList(steps, "steps")
	r.PrepTimeMinutes = intPtr(prep)
	r.Nutrition = recommend.Nutrition{
		Calories:      floatPtr(calories),
		Protein:       floatPtr(protein),
		Carbohydrates: floatPtr(carbs),
		Fat:           floatPtr(fat),
	}
	return r, nil
}

// ListRecipes returns every recipe ordered by ID.
func (db *DB) ListRecipes(ctx context.Context) (recipes []recommend.Recipe, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("list", "recipes", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, "SELECT "+recipeColumns+" FROM recipes ORDER BY recipe_id")
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer closeWithLog(rows, "recipe rows")

	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipes: %w", err)
	}
	return recipes, nil
}

// GetRecipe returns one recipe. A missing recipe wraps both ErrNotFound and
// recommend.ErrRecipeNotFound.
func (db *DB) GetRecipe(ctx context.Context, id int64) (r *recommend.Recipe, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("get", "recipes", time.Since(start), queryError(err)) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, "SELECT "+recipeColumns+" FROM recipes WHERE recipe_id = ?", id)
	recipe, err := scanRecipe(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recipe %d: %w: %w", id, ErrNotFound, recommend.ErrRecipeNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe %d: %w", id, err)
	}
	return &recipe, nil
}

// UpsertRecipes inserts or replaces recipes in one transaction.
func (db *DB) UpsertRecipes(ctx context.Context, recipes []recommend.Recipe) (err error) {
	if len(recipes) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", "recipes", time.Since(start), err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { rollbackOnError(tx, err) }()

	stmt, err := tx.PrepareContext(ctx, "INSERT OR REPLACE INTO recipes ("+recipeColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer closeWithLog(stmt, "recipe statement")

	for i := range recipes {
		r := &recipes[i]
		ingredients, err := encodeList(r.Ingredients)
		if err != nil {
			return err
		}
		steps, err := encodeList(r.Steps)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, r.ID, r.Name, r.Description, ingredients, steps,
			nullable(r.PrepTimeMinutes), nullable(r.Nutrition.Calories), nullable(r.Nutrition.Protein),
			nullable(r.Nutrition.Carbohydrates), nullable(r.Nutrition.Fat), r.ImageURL); err != nil {
			return fmt.Errorf("insert recipe %d: %w", r.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RecipeCount returns the number of stored recipes.
func (db *DB) RecipeCount(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int64
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM recipes").Scan(&n); err != nil {
		return 0, fmt.Errorf("count recipes: %w", err)
	}
	return n, nil
}

// TopIngredients returns up to limit normalized ingredient names ordered by
// the number of recipes using them, then alphabetically. Single-character
// tokens are excluded.
func (db *DB) TopIngredients(ctx context.Context, limit int) (names []string, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("top_ingredients", "recipes", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, "SELECT ingredients FROM recipes")
	if err != nil {
		return nil, fmt.Errorf("query ingredients: %w", err)
	}
	defer closeWithLog(rows, "ingredient rows")

	counts := make(map[string]int)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan ingredients: %w", err)
		}
		// Count each ingredient once per recipe.
		for ing := range recommend.IngredientSet(decodeList(raw, "ingredients")) {
			if len([]rune(ing)) > 1 {
				counts[ing]++
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ingredients: %w", err)
	}

	return rankByCount(counts, limit), nil
}

// rankByCount orders keys by count descending, then alphabetically, and
// truncates to limit when limit is positive.
func rankByCount(counts map[string]int, limit int) []string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names
}
