// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

// Package constraints filters candidate recipes against a user's profile
// and produces human-readable explanations.
//
// # Pipeline
//
// Stages run in a fixed order, each narrowing the candidate set:
//
//  1. allergies             substring match on ingredient text
//  2. dietary_restrictions  forbidden-ingredient sets per diet tag
//  3. nutrition             calorie, protein, carb and fat bounds
//  4. disliked_ingredients  substring match on ingredient text
//  5. max_prep_time         profile-level prep time ceiling
//
// Unknown values (missing nutrition or prep time) always pass.
//
// When a stage would remove every remaining candidate it is skipped and
// reported as relaxed. The allergy stage is never relaxed: if it removes
// every candidate the result is empty.
package constraints
