// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

// Package docs registers the SaveEat OpenAPI document with swag so the
// /swagger/* UI can serve it. Regenerate with `swag init -g cmd/server/docs.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "AGPL-3.0-or-later",
            "url": "https://www.gnu.org/licenses/agpl-3.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/recommend": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Recommendations"],
                "summary": "Recommend recipes",
                "parameters": [
                    {"description": "Recommendation request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.RecommendRequest"}}
                ],
                "responses": {
                    "200": {"description": "Recommendations", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "500": {"description": "Recommendation failed", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/recipe/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Recipes"],
                "summary": "Get recipe",
                "parameters": [
                    {"type": "integer", "description": "Recipe ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Recipe", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "404": {"description": "Recipe not found", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/recipe/{id}/reviews": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Recipes"],
                "summary": "Get recipe reviews",
                "parameters": [
                    {"type": "integer", "description": "Recipe ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Maximum reviews (default 5, max 100)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Reviews", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/ingredients": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Recipes"],
                "summary": "List ingredients",
                "parameters": [
                    {"type": "integer", "description": "Maximum ingredients (default 500)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Ingredients", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/log_interaction": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Interactions"],
                "summary": "Log interaction",
                "parameters": [
                    {"description": "Interaction", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.LogInteractionRequest"}}
                ],
                "responses": {
                    "202": {"description": "Interaction accepted", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "400": {"description": "Invalid interaction", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "503": {"description": "Event pipeline unavailable", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/user/{id}/interactions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Interactions"],
                "summary": "Get user interactions",
                "parameters": [
                    {"type": "integer", "description": "User ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Maximum interactions (default 100, max 1000)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Interactions", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/user/{id}/profile": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Profiles"],
                "summary": "Get user profile",
                "parameters": [
                    {"type": "integer", "description": "User ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Profile", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "404": {"description": "Profile not found", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Profiles"],
                "summary": "Replace user profile",
                "parameters": [
                    {"type": "integer", "description": "User ID", "name": "id", "in": "path", "required": true},
                    {"description": "Profile", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.ProfileRequest"}}
                ],
                "responses": {
                    "200": {"description": "Stored profile", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "400": {"description": "Invalid profile", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/admin/bundle": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Get serving bundle status",
                "responses": {
                    "200": {"description": "Bundle status", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/admin/reload": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Reload serving bundle",
                "responses": {
                    "200": {"description": "Reload result", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "429": {"description": "Reload throttled", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "object", "additionalProperties": true}
            }
        },
        "models.Metadata": {
            "type": "object",
            "properties": {
                "timestamp": {"type": "string", "format": "date-time"},
                "query_time_ms": {"type": "integer"},
                "cached": {"type": "boolean"},
                "request_id": {"type": "string"}
            }
        },
        "models.APIResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["success", "error"]},
                "data": {},
                "metadata": {"$ref": "#/definitions/models.Metadata"},
                "error": {"$ref": "#/definitions/models.APIError"}
            }
        },
        "models.RecommendRequest": {
            "type": "object",
            "properties": {
                "user_id": {"type": "integer", "minimum": 0},
                "available_ingredients": {"type": "array", "maxItems": 200, "items": {"type": "string"}},
                "max_time": {"type": "integer", "minimum": 0, "maximum": 10080},
                "dietary_preferences": {"type": "array", "maxItems": 20, "items": {"type": "string"}},
                "top_k": {"type": "integer", "minimum": 1, "maximum": 100},
                "use_profile": {"type": "boolean"}
            }
        },
        "models.LogInteractionRequest": {
            "type": "object",
            "required": ["recipe_id"],
            "properties": {
                "user_id": {"type": "integer", "minimum": 0},
                "recipe_id": {"type": "integer", "minimum": 1},
                "interaction_type": {"type": "string", "enum": ["view", "click", "like", "rate"]},
                "rating": {"type": "number", "minimum": 1, "maximum": 5},
                "review": {"type": "string"},
                "available_ingredients": {"type": "array", "items": {"type": "string"}},
                "session_id": {"type": "string"}
            }
        },
        "models.ProfileRequest": {
            "type": "object",
            "properties": {
                "allergies": {"type": "array", "items": {"type": "string"}},
                "dietary_restrictions": {"type": "array", "items": {"type": "string"}},
                "favorite_ingredients": {"type": "array", "items": {"type": "string"}},
                "disliked_ingredients": {"type": "array", "items": {"type": "string"}},
                "max_calories": {"type": "number"},
                "min_protein": {"type": "number"},
                "max_carbs": {"type": "number"},
                "max_fat": {"type": "number"},
                "max_prep_time": {"type": "integer"},
                "taste_preferences": {"type": "object", "additionalProperties": {"type": "number"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "SaveEat API",
	Description:      "Recipe recommendations from a heterogeneous graph model with an ingredient-match fallback.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
