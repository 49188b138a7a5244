// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package recommend

import "errors"

var (
	// ErrInvalidRequest is returned for malformed Recommend input.
	ErrInvalidRequest = errors.New("invalid recommendation request")

	// ErrProfileNotFound is returned by ProfileSource when a user has no profile.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrRecipeNotFound is returned when a recipe lookup misses.
	ErrRecipeNotFound = errors.New("recipe not found")
)
