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
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/saveeat/internal/metrics"
	"github.com/tomtom215/saveeat/internal/recommend"
)

const profileColumns = `user_id, allergies, dietary_restrictions, favorite_ingredients, disliked_ingredients,
	max_calories, min_protein, max_carbs, max_fat, max_prep_time, taste_preferences, updated_at`

// GetProfile returns a user's profile. A missing profile wraps both
// ErrNotFound and recommend.ErrProfileNotFound.
func (db *DB) GetProfile(ctx context.Context, userID int64) (p *recommend.Profile, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("get", "user_profiles", time.Since(start), queryError(err)) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		profile                             recommend.Profile
		allergies, diets, favorite, dislike string
		maxCal, minProt, maxCarbs, maxFat   sql.NullFloat64
		maxPrep                             sql.NullInt64
		taste                               string
	)
	err = db.conn.QueryRowContext(ctx, "SELECT "+profileColumns+" FROM user_profiles WHERE user_id = ?", userID).
		Scan(&profile.UserID, &allergies, &diets, &favorite, &dislike,
			&maxCal, &minProt, &maxCarbs, &maxFat, &maxPrep, &taste, &profile.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile of user %d: %w: %w", userID, ErrNotFound, recommend.ErrProfileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %d: %w", userID, err)
	}

	profile.Allergies = decodeList(allergies, "allergies")
	profile.DietaryRestrictions = decodeList(diets, "dietary_restrictions")
	profile.FavoriteIngredients = decodeList(favorite, "favorite_ingredients")
	profile.DislikedIngredients = decodeList(dislike, "disliked_ingredients")
	profile.MaxCalories = floatPtr(maxCal)
	profile.MinProtein = floatPtr(minProt)
	profile.MaxCarbs = floatPtr(maxCarbs)
	profile.MaxFat = floatPtr(maxFat)
	profile.MaxPrepTime = intPtr(maxPrep)
	profile.TastePreferences = decodeMap(taste, "taste_preferences")
	return &profile, nil
}

// UpsertProfile creates or replaces a user's profile.
func (db *DB) UpsertProfile(ctx context.Context, p *recommend.Profile) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", "user_profiles", time.Since(start), err) }()

	lists := make([]string, 4)
	for i, l := range [][]string{p.Allergies, p.DietaryRestrictions, p.FavoriteIngredients, p.DislikedIngredients} {
		if lists[i], err = encodeList(l); err != nil {
			return err
		}
	}
	taste := "{}"
	if len(p.TastePreferences) > 0 {
		data, err := json.Marshal(p.TastePreferences)
		if err != nil {
			return fmt.Errorf("encode taste preferences: %w", err)
		}
		taste = string(data)
	}
	updated := p.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err = db.conn.ExecContext(ctx, `INSERT OR REPLACE INTO user_profiles (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, lists[0], lists[1], lists[2], lists[3],
		nullable(p.MaxCalories), nullable(p.MinProtein), nullable(p.MaxCarbs), nullable(p.MaxFat),
		nullable(p.MaxPrepTime), taste, updated.UTC())
	if err != nil {
		return fmt.Errorf("upsert profile %d: %w", p.UserID, err)
	}
	return nil
}
