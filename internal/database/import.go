// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/saveeat/internal/logging"
	"github.com/tomtom215/saveeat/internal/metrics"
	"github.com/tomtom215/saveeat/internal/recommend"
)

const importBatchSize = 1000

// ImportResult summarizes a Food.com import.
type ImportResult struct {
	Recipes        int           `json:"recipes"`
	Interactions   int           `json:"interactions"`
	SkippedRecipes int           `json:"skipped_recipes"`
	SkippedReviews int           `json:"skipped_reviews"`
	ParseFailures  int           `json:"parse_failures"`
	Duration       time.Duration `json:"duration"`
}

// reviewTimeLayouts are the DateSubmitted formats seen in the export.
var reviewTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ImportFoodCom loads the Food.com recipes and reviews CSV exports. Cells
// are read as text by DuckDB's CSV reader and parsed here: malformed list
// cells become empty lists and unparsable durations or nutrition values
// become NULL, each counted as a parse failure. Recipes without an ID and
// reviews without an author, recipe or date are skipped.
func (db *DB) ImportFoodCom(ctx context.Context, recipesCSV, reviewsCSV string) (*ImportResult, error) {
	start := time.Now()
	res := &ImportResult{}

	if err := db.importRecipes(ctx, recipesCSV, res); err != nil {
		return res, err
	}
	if err := db.importReviews(ctx, reviewsCSV, res); err != nil {
		return res, err
	}

	res.Duration = time.Since(start)
	logging.Info().
		Int("recipes", res.Recipes).
		Int("interactions", res.Interactions).
		Int("skipped_recipes", res.SkippedRecipes).
		Int("skipped_reviews", res.SkippedReviews).
		Int("parse_failures", res.ParseFailures).
		Dur("duration", res.Duration).
		Msg("Food.com import complete")
	return res, nil
}

// csvSource returns a read_csv_auto call reading every column as text.
func csvSource(path string) string {
	return fmt.Sprintf("read_csv_auto('%s', header = true, all_varchar = true)", strings.ReplaceAll(path, "'", "''"))
}

func (db *DB) importRecipes(ctx context.Context, path string, res *ImportResult) error {
	rows, err := db.conn.QueryContext(ctx, `SELECT
		"RecipeId", "Name", "Description", "RecipeIngredientParts", "RecipeInstructions",
		"Images", "TotalTime", "PrepTime", "Calories", "ProteinContent", "CarbohydrateContent", "FatContent"
		FROM `+csvSource(path))
	if err != nil {
		return fmt.Errorf("read recipes csv %s: %w", path, err)
	}
	defer closeWithLog(rows, "recipe csv rows")

	batch := make([]recommend.Recipe, 0, importBatchSize)
	flush := func() error {
		if err := db.UpsertRecipes(ctx, batch); err != nil {
			return err
		}
		res.Recipes += len(batch)
		batch = batch[:0]
		return nil
	}

	for rows.Next() {
		var c [12]sql.NullString
		if err := rows.Scan(&c[0], &c[1], &c[2], &c[3], &c[4], &c[5], &c[6], &c[7], &c[8], &c[9], &c[10], &c[11]); err != nil {
			return fmt.Errorf("scan recipe csv: %w", err)
		}
		r, ok := res.recipeFromCSV(c)
		if !ok {
			res.SkippedRecipes++
			continue
		}
		batch = append(batch, r)
		if len(batch) == importBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate recipe csv: %w", err)
	}
	return flush()
}

// recipeFromCSV converts one export row. ok is false when the row has no
// usable recipe ID.
func (res *ImportResult) recipeFromCSV(c [12]sql.NullString) (recommend.Recipe, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c[0].String), 10, 64)
	if err != nil {
		res.parseFailure("recipe_id", c[0].String)
		return recommend.Recipe{}, false
	}

	r := recommend.Recipe{
		ID:          id,
		Name:        strings.TrimSpace(c[1].String),
		Description: strings.TrimSpace(c[2].String),
		Ingredients: res.list("ingredients", c[3].String),
		Steps:       res.list("steps", c[4].String),
	}
	if images := res.list("images", c[5].String); len(images) > 0 {
		r.ImageURL = images[0]
	}

	// TotalTime is preferred; PrepTime alone understates most recipes.
	for _, cell := range []sql.NullString{c[6], c[7]} {
		if strings.TrimSpace(cell.String) == "" {
			continue
		}
		if m, ok := parseISODuration(cell.String); ok {
			r.PrepTimeMinutes = &m
			break
		}
		res.parseFailure("prep_time", cell.String)
	}

	r.Nutrition.Calories = res.float("calories", c[8].String)
	r.Nutrition.Protein = res.float("protein", c[9].String)
	r.Nutrition.Carbohydrates = res.float("carbohydrates", c[10].String)
	r.Nutrition.Fat = res.float("fat", c[11].String)
	return r, true
}

func (db *DB) importReviews(ctx context.Context, path string, res *ImportResult) error {
	rows, err := db.conn.QueryContext(ctx, `SELECT
		"AuthorId", "RecipeId", "Rating", "Review", "AuthorName", "DateSubmitted"
		FROM `+csvSource(path))
	if err != nil {
		return fmt.Errorf("read reviews csv %s: %w", path, err)
	}
	defer closeWithLog(rows, "review csv rows")

	batch := make([]HistoricalInteraction, 0, importBatchSize)
	flush := func() error {
		if err := db.InsertInteractions(ctx, batch); err != nil {
			return err
		}
		res.Interactions += len(batch)
		batch = batch[:0]
		return nil
	}

	for rows.Next() {
		var c [6]sql.NullString
		if err := rows.Scan(&c[0], &c[1], &c[2], &c[3], &c[4], &c[5]); err != nil {
			return fmt.Errorf("scan review csv: %w", err)
		}
		in, ok := res.reviewFromCSV(c)
		if !ok {
			res.SkippedReviews++
			continue
		}
		batch = append(batch, in)
		if len(batch) == importBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate review csv: %w", err)
	}
	return flush()
}

func (res *ImportResult) reviewFromCSV(c [6]sql.NullString) (HistoricalInteraction, bool) {
	var in HistoricalInteraction
	var err error
	if in.UserID, err = strconv.ParseInt(strings.TrimSpace(c[0].String), 10, 64); err != nil {
		res.parseFailure("user_id", c[0].String)
		return in, false
	}
	if in.RecipeID, err = strconv.ParseInt(strings.TrimSpace(c[1].String), 10, 64); err != nil {
		res.parseFailure("recipe_id", c[1].String)
		return in, false
	}
	submitted, ok := parseReviewTime(c[5].String)
	if !ok {
		res.parseFailure("submitted_at", c[5].String)
		return in, false
	}
	in.SubmittedAt = submitted
	in.Rating = res.float("rating", c[2].String)
	in.Review = strings.TrimSpace(c[3].String)
	in.AuthorName = strings.TrimSpace(c[4].String)
	return in, true
}

func parseReviewTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range reviewTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func (res *ImportResult) list(field, cell string) []string {
	items, err := parseRList(cell)
	if err != nil {
		res.parseFailure(field, cell)
		return nil
	}
	return items
}

func (res *ImportResult) float(field, cell string) *float64 {
	v, ok := parseOptionalFloat(cell)
	if !ok {
		res.parseFailure(field, cell)
	}
	return v
}

func (res *ImportResult) parseFailure(field, value string) {
	res.ParseFailures++
	metrics.RecordParseFailure(field)
	if len(value) > 80 {
		value = value[:80]
	}
	logging.Warn().Str("field", field).Str("value", value).Msg("Unparsable import cell, using empty value")
}
