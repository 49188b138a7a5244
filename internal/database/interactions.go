// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/saveeat/internal/database/query"
	"github.com/tomtom215/saveeat/internal/logging"
	"github.com/tomtom215/saveeat/internal/metrics"
	"github.com/tomtom215/saveeat/internal/recommend"
)

// ListInteractions returns the historical interactions plus logged ratings,
// ordered by submission time. Logged rate events with a rating count as
// interactions; other logged types do not.
func (db *DB) ListInteractions(ctx context.Context) (out []recommend.Interaction, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("list", "interactions", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT user_id, recipe_id, rating, submitted_at FROM interactions
		UNION ALL
		SELECT user_id, recipe_id, rating, created_at FROM interaction_log
		WHERE interaction_type = 'rate' AND rating IS NOT NULL
		ORDER BY 4, 1, 2`)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer closeWithLog(rows, "interaction rows")

	for rows.Next() {
		var (
			in     recommend.Interaction
			rating sql.NullFloat64
		)
		if err := rows.Scan(&in.UserID, &in.RecipeID, &rating, &in.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		in.Rating = floatPtr(rating)
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}
	return out, nil
}

// HistoricalInteraction is one row of the interactions table.
type HistoricalInteraction struct {
	recommend.Interaction
	Review     string
	AuthorName string
}

// InsertInteractions appends historical interactions in one transaction.
func (db *DB) InsertInteractions(ctx context.Context, rows []HistoricalInteraction) (err error) {
	if len(rows) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "interactions", time.Since(start), err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { rollbackOnError(tx, err) }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO interactions
		(user_id, recipe_id, rating, review, author_name, submitted_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer closeWithLog(stmt, "interaction statement")

	for i := range rows {
		r := &rows[i]
		if _, err := stmt.ExecContext(ctx, r.UserID, r.RecipeID, nullable(r.Rating), r.Review, r.AuthorName, r.SubmittedAt.UTC()); err != nil {
			return fmt.Errorf("insert interaction: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RecipeReviews returns up to limit reviews of a recipe, most recent first.
// Rows without review text are skipped; an empty author becomes "Anonymous".
func (db *DB) RecipeReviews(ctx context.Context, recipeID int64, limit int) (reviews []recommend.Review, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("reviews", "interactions", time.Since(start), err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT rating, review, author_name, submitted_at
		FROM interactions
		WHERE recipe_id = ? AND review <> ''
		ORDER BY submitted_at DESC, user_id
		LIMIT ?`, recipeID, limit)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer closeWithLog(rows, "review rows")

	reviews = []recommend.Review{}
	for rows.Next() {
		var (
			rv     recommend.Review
			rating sql.NullFloat64
		)
		if err := rows.Scan(&rating, &rv.Review, &rv.Author, &rv.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		rv.Rating = floatPtr(rating)
		if rv.Author == "" {
			rv.Author = "Anonymous"
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return reviews, nil
}

const loggedColumns = `event_id, user_id, recipe_id, interaction_type, rating, review,
	available_ingredients, session_id, created_at`

// LogInteraction stores a logged interaction. It is idempotent on EventID:
// a redelivered event is ignored.
func (db *DB) LogInteraction(ctx context.Context, ev *recommend.LoggedInteraction) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "interaction_log", time.Since(start), err) }()

	if ev.EventID == "" {
		return fmt.Errorf("log interaction: empty event id")
	}
	available, err := encodeList(ev.AvailableIngredients)
	if err != nil {
		return err
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `INSERT INTO interaction_log (`+loggedColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT DO NOTHING`,
		ev.EventID, ev.UserID, ev.RecipeID, string(ev.Type), nullable(ev.Rating), ev.Review,
		available, ev.SessionID, ev.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert logged interaction %s: %w", ev.EventID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		logging.Debug().Str("event_id", ev.EventID).Msg("Duplicate interaction event ignored")
	}
	return nil
}

// LoggedFilter selects logged interactions.
type LoggedFilter struct {
	UserID *int64
	Types  []recommend.InteractionType
	Since  *time.Time

	// WithIngredients keeps only events that recorded available ingredients.
	WithIngredients bool

	// Limit caps the result; zero means no limit.
	Limit int
}

// LoggedInteractions returns logged interactions matching f, most recent
// first.
func (db *DB) LoggedInteractions(ctx context.Context, f LoggedFilter) (out []recommend.LoggedInteraction, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("list", "interaction_log", time.Since(start), err) }()

	b := query.Select("interaction_log", loggedColumns)
	if f.UserID != nil {
		b.Eq("user_id", *f.UserID)
	}
	types := make([]string, len(f.Types))
	for i, t := range f.Types {
		types[i] = string(t)
	}
	query.In(b, "interaction_type", types)
	b.Between("created_at", f.Since, nil)
	if f.WithIngredients {
		b.Where("available_ingredients <> '[]'")
	}
	q, args := b.OrderBy("created_at DESC, event_id").Limit(f.Limit).Build()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query logged interactions: %w", err)
	}
	defer closeWithLog(rows, "logged interaction rows")

	out = []recommend.LoggedInteraction{}
	for rows.Next() {
		var (
			ev        recommend.LoggedInteraction
			typ       string
			rating    sql.NullFloat64
			available string
		)
		if err := rows.Scan(&ev.EventID, &ev.UserID, &ev.RecipeID, &typ, &rating, &ev.Review,
			&available, &ev.SessionID, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan logged interaction: %w", err)
		}
		ev.Type = recommend.InteractionType(typ)
		ev.Rating = floatPtr(rating)
		ev.AvailableIngredients = decodeList(available, "available_ingredients")
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate logged interactions: %w", err)
	}
	return out, nil
}

// UserInteractions returns up to limit logged interactions of a user, most
// recent first.
func (db *DB) UserInteractions(ctx context.Context, userID int64, limit int) ([]recommend.LoggedInteraction, error) {
	return db.LoggedInteractions(ctx, LoggedFilter{UserID: &userID, Limit: limit})
}
