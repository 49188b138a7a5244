// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package training

import (
	"cmp"
	"errors"
	"slices"

	"github.com/tomtom215/saveeat/internal/recommend"
)

// ErrNoTrainingData is returned when no interactions survive preparation.
var ErrNoTrainingData = errors.New("training: no training interactions")

// Split holds the chronological partitions of the interaction table.
type Split struct {
	Train []recommend.Interaction
	Val   []recommend.Interaction
	Test  []recommend.Interaction
}

// FilterActivity keeps interactions of users with at least minUser
// interactions, then of recipes with at least minRecipe remaining
// interactions. Recipes are restricted to the surviving recipe ids.
func FilterActivity(interactions []recommend.Interaction, recipes []recommend.Recipe, minUser, minRecipe int) ([]recommend.Interaction, []recommend.Recipe) {
	userCount := make(map[int64]int)
	for i := range interactions {
		userCount[interactions[i].UserID]++
	}
	byUser := make([]recommend.Interaction, 0, len(interactions))
	for i := range interactions {
		if userCount[interactions[i].UserID] >= minUser {
			byUser = append(byUser, interactions[i])
		}
	}

	recipeCount := make(map[int64]int)
	for i := range byUser {
		recipeCount[byUser[i].RecipeID]++
	}
	kept := make([]recommend.Interaction, 0, len(byUser))
	for i := range byUser {
		if recipeCount[byUser[i].RecipeID] >= minRecipe {
			kept = append(kept, byUser[i])
		}
	}

	keptRecipes := make([]recommend.Recipe, 0, len(recipeCount))
	for i := range recipes {
		if recipeCount[recipes[i].ID] >= minRecipe {
			keptRecipes = append(keptRecipes, recipes[i])
		}
	}
	return kept, keptRecipes
}

// ChronologicalSplit orders interactions by submission time (stable for
// equal times) and cuts them at the train and validation ratios. The test
// partition receives the remainder.
func ChronologicalSplit(interactions []recommend.Interaction, trainRatio, valRatio float64) Split {
	sorted := slices.Clone(interactions)
	slices.SortStableFunc(sorted, func(a, b recommend.Interaction) int {
		return a.SubmittedAt.Compare(b.SubmittedAt)
	})

	n := len(sorted)
	nTrain := int(float64(n) * trainRatio)
	nVal := int(float64(n) * valRatio)
	nTrain = min(nTrain, n)
	nVal = min(nVal, n-nTrain)

	return Split{
		Train: sorted[:nTrain:nTrain],
		Val:   sorted[nTrain : nTrain+nVal : nTrain+nVal],
		Test:  sorted[nTrain+nVal:],
	}
}

// Prepare filters and splits interactions using cfg.
func Prepare(interactions []recommend.Interaction, recipes []recommend.Recipe, cfg recommend.TrainingConfig) (Split, []recommend.Recipe, error) {
	kept, keptRecipes := FilterActivity(interactions, recipes, cfg.MinUserInteractions, cfg.MinRecipeRatings)
	split := ChronologicalSplit(kept, cfg.TrainRatio, cfg.ValRatio)
	if len(split.Train) == 0 {
		return split, keptRecipes, ErrNoTrainingData
	}
	return split, keptRecipes, nil
}

// GroupByUser collects recipe ids per user in first-appearance user order.
func GroupByUser(interactions []recommend.Interaction) (users []int64, items map[int64][]int64) {
	items = make(map[int64][]int64)
	for i := range interactions {
		it := &interactions[i]
		if _, ok := items[it.UserID]; !ok {
			users = append(users, it.UserID)
		}
		items[it.UserID] = append(items[it.UserID], it.RecipeID)
	}
	return users, items
}

// sortedUnique returns the sorted distinct values of ids.
func sortedUnique[T cmp.Ordered](ids []T) []T {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
