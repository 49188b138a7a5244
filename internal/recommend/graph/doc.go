// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

// Package graph builds the typed user/recipe/ingredient multigraph consumed
// by the embedding propagation model.
//
// Each entity type owns a dense, zero-based index space. External store
// identifiers map bijectively onto these indices through an immutable
// Mapping built once per graph. Edges are stored as parallel int32 index
// arrays per relation:
//
//	(user, interacts_with, recipe)  weighted by rating
//	(recipe, contains, ingredient)  unweighted
//
// For consumers that want a single flat index space, GlobalEdges offsets
// recipes by NumUsers and ingredients by NumUsers+NumRecipes so no two
// entity types share an index.
//
// Construction never fails on individual bad rows. Edges whose endpoints
// are not mapped are dropped and counted in BuildStats. Only a missing
// input table is a construction error.
package graph
