// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package database

import (
	"database/sql"
	"errors"
	"io"

	"github.com/tomtom215/saveeat/internal/logging"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMissingColumn is returned by CheckSchema when a table lacks a
	// column the recommender reads.
	ErrMissingColumn = errors.New("required column missing")
)

// closeWithLog closes a resource, logging any error.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error.
// Use this for cleanup in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// queryError hides ErrNotFound from query metrics; a miss is not a failure.
func queryError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// rollbackOnError rolls tx back when err is set, logging rollback failures.
func rollbackOnError(tx *sql.Tx, err error) {
	if err == nil {
		return
	}
	if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
		logging.Error().
			Err(rbErr).
			AnErr("original_error", err).
			Msg("Transaction rollback failed")
	}
}
