// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package recommend

import (
	"cmp"
	"math"
	"slices"
)

// SortCandidates orders candidates by descending score, then ascending
// recipe ID.
func SortCandidates(c []Candidate) {
	slices.SortFunc(c, func(a, b Candidate) int {
		if d := cmp.Compare(b.Score, a.Score); d != 0 {
			return d
		}
		return cmp.Compare(a.Recipe.ID, b.Recipe.ID)
	})
}

// TopK returns the first k candidates, or all of them when fewer.
func TopK(c []Candidate, k int) []Candidate {
	return c[:min(max(k, 0), len(c))]
}

// SafeScore maps NaN and infinities to 0.
func SafeScore(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Clamp01 limits v to [0, 1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
