// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package database

import (
	"database/sql"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/saveeat/internal/logging"
	"github.com/tomtom215/saveeat/internal/metrics"
)

// encodeList serializes a string list for a JSON column. Nil encodes as [].
func encodeList(items []string) (string, error) {
	if items == nil {
		return "[]", nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(data), nil
}

// decodeList parses a JSON list column. A malformed value yields an empty
// list, a warning and a parse-failure count for field.
func decodeList(raw, field string) []string {
	if raw == "" || raw == "[]" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		logging.Warn().Err(err).Str("field", field).Msg("Malformed list column, using empty list")
		metrics.RecordParseFailure(field)
		return nil
	}
	return out
}

// decodeMap parses a JSON object column with the same failure policy as
// decodeList.
func decodeMap(raw, field string) map[string]float64 {
	if raw == "" || raw == "{}" {
		return nil
	}
	var out map[string]float64
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		logging.Warn().Err(err).Str("field", field).Msg("Malformed map column, using empty map")
		metrics.RecordParseFailure(field)
		return nil
	}
	return out
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

// nullable converts an optional value to a driver argument, nil for NULL.
func nullable[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
