// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

/*
Package models defines the HTTP data structures of SaveEat.

Domain types (recipes, interactions, profiles, recommendation requests and
responses) live in package recommend. This package holds what only the API
needs:

  - APIResponse, Metadata, APIError: the response envelope used by every endpoint
  - RecommendRequest, LogInteractionRequest, ProfileRequest: request bodies with
    validator tags, converted to domain types by their To* methods
  - HealthStatus and list wrappers for the read endpoints
*/
package models
