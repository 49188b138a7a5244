// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

// Package query assembles filtered SELECT statements for the database
// package. Table and column names come from code; values are always bound
// as placeholders.
package query
