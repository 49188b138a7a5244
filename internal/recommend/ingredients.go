// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package recommend

import "strings"

// NormalizeIngredient lower-cases and trims an ingredient token.
func NormalizeIngredient(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IngredientSet normalizes and deduplicates ingredients. Empty tokens are dropped.
func IngredientSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		if n := NormalizeIngredient(it); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// MatchIngredients compares a recipe's ingredients with an available set
// that was built by IngredientSet.
func MatchIngredients(recipe []string, available map[string]struct{}) IngredientMatch {
	m := IngredientMatch{AvailableTotal: len(available)}
	seen := make(map[string]struct{}, len(recipe))
	for _, raw := range recipe {
		n := NormalizeIngredient(raw)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		m.RecipeTotal++
		if _, ok := available[n]; ok {
			m.Used++
		} else {
			m.Missing = append(m.Missing, strings.TrimSpace(raw))
		}
	}
	return m
}

// ContainsAny reports whether any ingredient string contains any of the
// needles as a case-insensitive substring. It returns the first hit.
func ContainsAny(ingredients, needles []string) (string, bool) {
	for _, needle := range needles {
		n := NormalizeIngredient(needle)
		if n == "" {
			continue
		}
		for _, ing := range ingredients {
			if strings.Contains(NormalizeIngredient(ing), n) {
				return n, true
			}
		}
	}
	return "", false
}
