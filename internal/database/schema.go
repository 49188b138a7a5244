// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package database

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// List-valued columns hold JSON arrays in VARCHAR columns.
var tableSchemas = []string{
	`CREATE TABLE IF NOT EXISTS recipes (
		recipe_id BIGINT PRIMARY KEY,
		name VARCHAR NOT NULL DEFAULT '',
		description VARCHAR NOT NULL DEFAULT '',
		ingredients VARCHAR NOT NULL DEFAULT '[]',
		steps VARCHAR NOT NULL DEFAULT '[]',
		prep_time_minutes INTEGER,
		calories DOUBLE,
		protein DOUBLE,
		carbohydrates DOUBLE,
		fat DOUBLE,
		image_url VARCHAR NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS interactions (
		user_id BIGINT NOT NULL,
		recipe_id BIGINT NOT NULL,
		rating DOUBLE,
		review VARCHAR NOT NULL DEFAULT '',
		author_name VARCHAR NOT NULL DEFAULT '',
		submitted_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_profiles (
		user_id BIGINT PRIMARY KEY,
		allergies VARCHAR NOT NULL DEFAULT '[]',
		dietary_restrictions VARCHAR NOT NULL DEFAULT '[]',
		favorite_ingredients VARCHAR NOT NULL DEFAULT '[]',
		disliked_ingredients VARCHAR NOT NULL DEFAULT '[]',
		max_calories DOUBLE,
		min_protein DOUBLE,
		max_carbs DOUBLE,
		max_fat DOUBLE,
		max_prep_time INTEGER,
		taste_preferences VARCHAR NOT NULL DEFAULT '{}',
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS interaction_log (
		event_id VARCHAR PRIMARY KEY,
		user_id BIGINT NOT NULL,
		recipe_id BIGINT NOT NULL,
		interaction_type VARCHAR NOT NULL,
		rating DOUBLE,
		review VARCHAR NOT NULL DEFAULT '',
		available_ingredients VARCHAR NOT NULL DEFAULT '[]',
		session_id VARCHAR NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,
}

var indexSchemas = []string{
	`CREATE INDEX IF NOT EXISTS idx_interactions_user ON interactions(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_interactions_recipe ON interactions(recipe_id)`,
	`CREATE INDEX IF NOT EXISTS idx_interaction_log_user ON interaction_log(user_id)`,
}

// requiredColumns lists, per table, the columns the recommender reads.
var requiredColumns = map[string][]string{
	"recipes": {
		"recipe_id", "name", "description", "ingredients", "steps",
		"prep_time_minutes", "calories", "protein", "carbohydrates", "fat", "image_url",
	},
	"interactions": {"user_id", "recipe_id", "rating", "review", "author_name", "submitted_at"},
	"user_profiles": {
		"user_id", "allergies", "dietary_restrictions", "favorite_ingredients", "disliked_ingredients",
		"max_calories", "min_protein", "max_carbs", "max_fat", "max_prep_time", "taste_preferences", "updated_at",
	},
	"interaction_log": {
		"event_id", "user_id", "recipe_id", "interaction_type", "rating", "review",
		"available_ingredients", "session_id", "created_at",
	},
}

func (db *DB) createTables(ctx context.Context) error {
	for _, stmt := range tableSchemas {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

func (db *DB) createIndexes(ctx context.Context) error {
	for _, stmt := range indexSchemas {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// CheckSchema verifies that every table has the columns the recommender
// reads. A missing column is a structural failure wrapping ErrMissingColumn.
func (db *DB) CheckSchema(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT table_name, column_name
		FROM information_schema.columns
		WHERE table_schema = 'main'`)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	defer closeWithLog(rows, "schema rows")

	present := make(map[string]map[string]bool)
	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return fmt.Errorf("scan schema: %w", err)
		}
		if present[table] == nil {
			present[table] = make(map[string]bool)
		}
		present[table][strings.ToLower(column)] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate schema: %w", err)
	}

	tables := make([]string, 0, len(requiredColumns))
	for table := range requiredColumns {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	for _, table := range tables {
		cols := present[table]
		var missing []string
		for _, col := range requiredColumns[table] {
			if !cols[col] {
				missing = append(missing, col)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: %s.%s", ErrMissingColumn, table, strings.Join(missing, ", "+table+"."))
		}
	}
	return nil
}
