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

	"github.com/cespare/xxhash/v2"
)

// DataVersion fingerprints the rows a serving bundle is built from: recipe
// and interaction counts, the latest interaction timestamps and a checksum
// of recipe IDs. It changes whenever ListRecipes or ListInteractions would
// return different data, barring in-place edits that keep counts and
// timestamps.
func (db *DB) DataVersion(ctx context.Context) (string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		recipes, interactions, rated int64
		recipeSum                    sql.NullInt64
		lastInteraction, lastRated   sql.NullTime
	)
	err := db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM recipes),
			(SELECT SUM(hash(recipe_id) % 1000000007) FROM recipes)::BIGINT,
			(SELECT COUNT(*) FROM interactions),
			(SELECT MAX(submitted_at) FROM interactions),
			(SELECT COUNT(*) FROM interaction_log WHERE interaction_type = 'rate' AND rating IS NOT NULL),
			(SELECT MAX(created_at) FROM interaction_log WHERE interaction_type = 'rate' AND rating IS NOT NULL)`).
		Scan(&recipes, &recipeSum, &interactions, &lastInteraction, &rated, &lastRated)
	if err != nil {
		return "", fmt.Errorf("data version: %w", err)
	}

	h := xxhash.New()
	for _, v := range []int64{recipes, recipeSum.Int64, interactions, rated} {
		_, _ = h.WriteString(strconv.FormatInt(v, 10))
		_, _ = h.WriteString("|")
	}
	for _, t := range []sql.NullTime{lastInteraction, lastRated} {
		if t.Valid {
			_, _ = h.WriteString(strconv.FormatInt(t.Time.UnixNano(), 10))
		}
		_, _ = h.WriteString("|")
	}
	return strconv.FormatUint(h.Sum64(), 16), nil
}
