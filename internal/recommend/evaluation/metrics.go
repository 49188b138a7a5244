// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

// Package evaluation computes ranking quality metrics.
//
// All metrics take parallel arrays of predicted scores and ground-truth
// relevance over the same items. Items are ranked by descending score; equal
// scores are ordered by ascending item index so results never depend on sort
// stability.
package evaluation

import (
	"cmp"
	"math"
	"slices"
)

// Rank returns item indices ordered by descending score, ties by index.
func Rank(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		if c := cmp.Compare(scores[b], scores[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return order
}

// DCG returns the discounted cumulative gain of relevances listed in ranked
// order: the sum of (2^rel - 1) / log2(rank + 2).
func DCG(relevance []float64) float64 {
	var dcg float64
	for i, rel := range relevance {
		dcg += (math.Pow(2, rel) - 1) / math.Log2(float64(i)+2)
	}
	return dcg
}

// NDCGAtK returns DCG of the top-k predicted items divided by the DCG of the
// ideal top-k ordering. It is 0 when no item is relevant.
func NDCGAtK(scores, relevance []float64, k int) float64 {
	order := Rank(scores)
	top := make([]float64, 0, k)
	for _, idx := range order[:min(k, len(order))] {
		top = append(top, relevance[idx])
	}

	ideal := slices.Clone(relevance)
	slices.SortFunc(ideal, func(a, b float64) int { return cmp.Compare(b, a) })
	idcg := DCG(ideal[:min(k, len(ideal))])
	if idcg == 0 {
		return 0
	}
	return DCG(top) / idcg
}

// RecallAtK returns the fraction of relevant items found in the top k. It
// is 0 when no item is relevant.
func RecallAtK(scores, relevance []float64, k int) float64 {
	var total int
	for _, rel := range relevance {
		if rel > 0 {
			total++
		}
	}
	if total == 0 {
		return 0
	}
	order := Rank(scores)
	var hits int
	for _, idx := range order[:min(k, len(order))] {
		if relevance[idx] > 0 {
			hits++
		}
	}
	return float64(hits) / float64(total)
}

// ReciprocalRank returns 1/rank of the first relevant item in the full
// ordering, or 0 when none is relevant.
func ReciprocalRank(scores, relevance []float64) float64 {
	for rank, idx := range Rank(scores) {
		if relevance[idx] > 0 {
			return 1 / float64(rank+1)
		}
	}
	return 0
}
