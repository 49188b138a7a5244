// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package fallback

import (
	"math"
	"slices"
	"testing"

	"github.com/tomtom215/saveeat/internal/recommend"
)

func ptr[T any](v T) *T { return &v }

func ids(c []recommend.Candidate) []int64 {
	out := make([]int64, len(c))
	for i := range c {
		out[i] = c[i].Recipe.ID
	}
	return out
}

func TestMeanRatings(t *testing.T) {
	t.Parallel()

	got := MeanRatings([]recommend.Interaction{
		{RecipeID: 1, Rating: ptr(5.0)},
		{RecipeID: 1, Rating: ptr(3.0)},
		{RecipeID: 2},
		{RecipeID: 3, Rating: ptr(2.0)},
	})
	if got[1] != 4 || got[3] != 2 {
		t.Errorf("means = %v", got)
	}
	if _, ok := got[2]; ok {
		t.Error("unrated recipe has a mean")
	}
}

func TestScoreCompleteBeatsPartial(t *testing.T) {
	t.Parallel()

	r := &recommend.Recipe{ID: 1, Name: "R", Ingredients: []string{"egg", "flour"}}
	s := &recommend.Recipe{ID: 2, Name: "S", Ingredients: []string{"egg", "flour", "sugar", "butter"}}
	pop := map[int64]float64{1: 4, 2: 4}

	got := New(recommend.DefaultConfig().Fallback).Score([]*recommend.Recipe{s, r}, pop, []string{"Egg ", "flour"}, nil)
	if !slices.Equal(ids(got), []int64{1, 2}) {
		t.Fatalf("order = %v, want [1 2]", ids(got))
	}
	// 0.65*1 + 0.25*1 + 0.10*1 + 0.20 clamps to 1.
	if got[0].Score != 1 {
		t.Errorf("complete score = %f, want 1", got[0].Score)
	}
	// 0.65*1 + 0.25*0.5 + 0.10*1
	if math.Abs(got[1].Score-0.875) > 1e-9 {
		t.Errorf("partial score = %f, want 0.875", got[1].Score)
	}
	if !got[0].Match.Complete() || got[1].Match.Ratio() != 0.5 {
		t.Errorf("match stats %+v / %+v", got[0].Match, got[1].Match)
	}
}

func TestScoreCandidateFilter(t *testing.T) {
	t.Parallel()

	recipes := []*recommend.Recipe{
		{ID: 1, Ingredients: []string{"egg", "a", "b", "c", "d"}},      // 1/5 = 0.2 qualifies
		{ID: 2, Ingredients: []string{"egg", "a", "b", "c", "d", "e"}}, // 1/6 below threshold
		{ID: 3, Ingredients: []string{"rice"}},                         // no overlap
		{ID: 4, Ingredients: nil},
	}
	got := New(recommend.DefaultConfig().Fallback).Score(recipes, nil, []string{"egg"}, nil)
	if !slices.Equal(ids(got), []int64{1}) {
		t.Errorf("candidates = %v, want [1]", ids(got))
	}
}

func TestScorePopularityOnly(t *testing.T) {
	t.Parallel()

	recipes := []*recommend.Recipe{{ID: 1}, {ID: 2}, {ID: 3}}
	pop := map[int64]float64{1: 2.5, 2: 5, 3: 2.5}
	got := New(recommend.DefaultConfig().Fallback).Score(recipes, pop, nil, nil)

	if !slices.Equal(ids(got), []int64{2, 1, 3}) {
		t.Errorf("order = %v, want [2 1 3]", ids(got))
	}
	if got[0].Score != 1 || got[1].Score != 0.5 {
		t.Errorf("scores = %f, %f", got[0].Score, got[1].Score)
	}
	for _, c := range got {
		if c.Match != nil {
			t.Error("match stats without ingredients")
		}
	}
}

func TestScoreDefaultPopularityDenominator(t *testing.T) {
	t.Parallel()

	got := New(recommend.DefaultConfig().Fallback).Score([]*recommend.Recipe{{ID: 1}, {ID: 2}}, nil, nil, nil)
	if len(got) != 2 || got[0].Score != 0 || got[1].Score != 0 {
		t.Errorf("unrated scores = %+v", got)
	}
	if got[0].Recipe.ID != 1 {
		t.Error("ties not broken by ascending id")
	}
}

func TestScoreMaxTime(t *testing.T) {
	t.Parallel()

	recipes := []*recommend.Recipe{
		{ID: 1, PrepTimeMinutes: ptr(20)},
		{ID: 2, PrepTimeMinutes: ptr(90)},
		{ID: 3},
	}
	scorer := New(recommend.DefaultConfig().Fallback)
	if got := ids(scorer.Score(recipes, nil, nil, ptr(30))); !slices.Equal(got, []int64{1, 3}) {
		t.Errorf("max_time=30 kept %v", got)
	}
	if got := scorer.Score(recipes, nil, nil, ptr(0)); len(got) != 3 {
		t.Errorf("max_time=0 kept %d, want all", len(got))
	}
}

func TestScoresBounded(t *testing.T) {
	t.Parallel()

	recipes := []*recommend.Recipe{
		{ID: 1, Ingredients: []string{"a"}},
		{ID: 2, Ingredients: []string{"a", "b"}},
	}
	pop := map[int64]float64{1: 5, 2: 1}
	for _, c := range New(recommend.DefaultConfig().Fallback).Score(recipes, pop, []string{"a", "b", "c"}, nil) {
		if c.Score < 0 || c.Score > 1 || math.IsNaN(c.Score) {
			t.Errorf("score %f out of [0, 1]", c.Score)
		}
	}
}
