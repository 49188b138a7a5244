// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

// Package main provides the SaveEat HTTP server
//
// SaveEat API recommends recipes from available ingredients, personalised
// by a graph model trained on historical ratings.
//
// @title SaveEat API
// @version 1.0
// @description Ingredient-driven recipe recommendations with dietary and allergy constraints
// @description
// @description ## Features
// @description
// @description - **Personalised ranking**: graph embeddings over users, recipes and ingredients
// @description - **Cold start**: heuristic ingredient-match fallback for unknown users
// @description - **Constraints**: dietary restrictions, allergies, cooking time and cuisine
// @description - **Interaction logging**: durable event pipeline feeding the next training run
// @description
// @description ## Rate Limiting
// @description
// @description Default rate limit: 100 requests per minute per IP address.
// @description Rate limit headers are included in responses: `X-RateLimit-Limit`, `X-RateLimit-Remaining`, `X-RateLimit-Reset`.
// @description
// @description ## Error Responses
// @description
// @description All error responses follow this format:
// @description ```json
// @description {
// @description   "status": "error",
// @description   "data": null,
// @description   "error": {
// @description     "code": "ERROR_CODE",
// @description     "message": "Human-readable error message",
// @description     "details": {}
// @description   },
// @description   "metadata": {
// @description     "timestamp": "2026-01-18T12:34:56Z"
// @description   }
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/saveeat/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
//
// @tag.name Recommendations
// @tag.description Ranked recipe recommendations
//
// @tag.name Recipes
// @tag.description Recipe details, reviews and the ingredient vocabulary
//
// @tag.name Interactions
// @tag.description Interaction logging and user history
//
// @tag.name Profiles
// @tag.description Dietary profiles used as request defaults
//
// @tag.name Admin
// @tag.description Serving bundle inspection and reload
//
// @tag.name Core
// @tag.description Health checks and probes
package main
