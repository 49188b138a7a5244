// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package constraints

import (
	"slices"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/saveeat/internal/recommend"
)

func ptr[T any](v T) *T { return &v }

func cands(recipes ...*recommend.Recipe) []recommend.Candidate {
	out := make([]recommend.Candidate, len(recipes))
	for i, r := range recipes {
		out[i] = recommend.Candidate{Recipe: r, Score: float64(len(recipes) - i)}
	}
	return out
}

func ids(c []recommend.Candidate) []int64 {
	out := make([]int64, len(c))
	for i := range c {
		out[i] = c[i].Recipe.ID
	}
	return out
}

func TestNormalizeTag(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Gluten Free": "gluten-free",
		"gluten_free": "gluten-free",
		" VEGAN ":     "vegan",
		"dairy--free": "dairy-free",
		"":            "",
		"nut free ":   "nut-free",
	}
	for in, want := range tests {
		if got := NormalizeTag(in); got != want {
			t.Errorf("NormalizeTag(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDietViolates(t *testing.T) {
	t.Parallel()

	diets := DefaultDiets()
	tests := []struct {
		diet       string
		ingredient string
		want       bool
	}{
		{"vegetarian", "2 chicken breasts", true},
		{"vegetarian", "chickpeas", false},
		{"vegetarian", "anchovies", true},
		{"pescatarian", "salmon fillet", false},
		{"pescatarian", "ground beef", true},
		{"vegan", "eggs", true},
		{"vegan", "eggplant", false},
		{"vegan", "coconut milk", false},
		{"vegan", "whole milk", true},
		{"dairy-free", "peanut butter", false},
		{"dairy-free", "unsalted butter", true},
		{"gluten-free", "all-purpose flour", true},
		{"gluten-free", "rice flour", false},
		{"gluten-free", "rice noodles", false},
		{"gluten-free", "egg noodles", true},
		{"gluten-free", "vital gluten", true},
		{"gluten-free", "gluten-free oats", false},
		{"gluten-free", "gluten-free flour", false},
		{"nut-free", "nutmeg", false},
		{"nut-free", "chopped walnuts", true},
		{"nut-free", "butternut squash", false},
	}
	for _, tt := range tests {
		d := diets[tt.diet]
		_, got := d.Violates(tt.ingredient)
		if got != tt.want {
			t.Errorf("%s.Violates(%q) = %v, want %v", tt.diet, tt.ingredient, got, tt.want)
		}
	}
}

func TestFromProfileMergesDiets(t *testing.T) {
	t.Parallel()

	p := &recommend.Profile{DietaryRestrictions: []string{"Vegan", "gluten_free"}}
	c := FromProfile(p, []string{"vegan", "Nut Free", " "})
	want := []string{"vegan", "gluten-free", "nut-free"}
	if !slices.Equal(c.Diets, want) {
		t.Errorf("diets = %v, want %v", c.Diets, want)
	}
	if !slices.Equal(p.DietaryRestrictions, []string{"Vegan", "gluten_free"}) {
		t.Error("profile was mutated")
	}

	empty := FromProfile(nil, nil)
	if !empty.Empty() {
		t.Errorf("nil profile constraints = %+v, want empty", empty)
	}
}

func TestApplyNutritionUnknownPasses(t *testing.T) {
	t.Parallel()

	heavy := &recommend.Recipe{ID: 1, Nutrition: recommend.Nutrition{Calories: ptr(500.0)}}
	unknown := &recommend.Recipe{ID: 2}
	light := &recommend.Recipe{ID: 3, Nutrition: recommend.Nutrition{Calories: ptr(250.0)}}

	res := NewPipeline(zerolog.Nop()).Apply(cands(heavy, unknown, light), Constraints{MaxCalories: ptr(300.0)})
	if !slices.Equal(ids(res.Candidates), []int64{2, 3}) {
		t.Errorf("kept = %v, want [2 3]", ids(res.Candidates))
	}
	if res.Removed[StageNutrition] != 1 {
		t.Errorf("removed = %v", res.Removed)
	}
	if len(res.Relaxed) != 0 {
		t.Errorf("relaxed = %v, want none", res.Relaxed)
	}
}

func TestApplyAllergiesSubset(t *testing.T) {
	t.Parallel()

	recipes := []*recommend.Recipe{
		{ID: 1, Ingredients: []string{"Peanut butter", "bread"}},
		{ID: 2, Ingredients: []string{"rice", "soy sauce"}},
		{ID: 3, Ingredients: []string{"crushed peanuts", "noodles"}},
		{ID: 4, Ingredients: []string{"apple"}},
	}
	in := cands(recipes...)
	res := NewPipeline(zerolog.Nop()).Apply(in, Constraints{
		Allergies: []string{"peanut"},
		Dislikes:  []string{"soy"},
	})
	if !slices.Equal(ids(res.Candidates), []int64{4}) {
		t.Fatalf("kept = %v, want [4]", ids(res.Candidates))
	}
	for _, c := range res.Candidates {
		for _, ing := range c.Recipe.Ingredients {
			if strings.Contains(strings.ToLower(ing), "peanut") {
				t.Errorf("recipe %d kept with allergen %q", c.Recipe.ID, ing)
			}
		}
	}
}

func TestApplyAllergyNeverRelaxed(t *testing.T) {
	t.Parallel()

	recipes := []*recommend.Recipe{
		{ID: 1, Ingredients: []string{"shrimp"}},
		{ID: 2, Ingredients: []string{"Shrimp paste"}},
	}
	var relaxed []string
	p := NewPipeline(zerolog.Nop())
	p.OnRelax = func(stage string) { relaxed = append(relaxed, stage) }

	res := p.Apply(cands(recipes...), Constraints{Allergies: []string{"shrimp"}, MaxPrepTime: ptr(10)})
	if len(res.Candidates) != 0 {
		t.Errorf("kept = %v, want none", ids(res.Candidates))
	}
	if !res.AllergyExhausted {
		t.Error("AllergyExhausted not set")
	}
	if len(res.Relaxed) != 0 || len(relaxed) != 0 {
		t.Errorf("relaxed = %v / %v, want none", res.Relaxed, relaxed)
	}
}

func TestApplyRelaxesEmptyingStage(t *testing.T) {
	t.Parallel()

	recipes := []*recommend.Recipe{
		{ID: 1, Ingredients: []string{"beef"}, PrepTimeMinutes: ptr(90)},
		{ID: 2, Ingredients: []string{"chicken"}, PrepTimeMinutes: ptr(20)},
	}
	var relaxed []string
	p := NewPipeline(zerolog.Nop())
	p.OnRelax = func(stage string) { relaxed = append(relaxed, stage) }

	res := p.Apply(cands(recipes...), Constraints{
		Diets:       []string{"vegetarian"},
		MaxPrepTime: ptr(30),
	})
	if !slices.Equal(ids(res.Candidates), []int64{2}) {
		t.Errorf("kept = %v, want [2]", ids(res.Candidates))
	}
	if !slices.Equal(res.Relaxed, []string{StageDiet}) || !slices.Equal(relaxed, []string{StageDiet}) {
		t.Errorf("relaxed = %v / %v, want [%s]", res.Relaxed, relaxed, StageDiet)
	}
}

func TestApplyPreservesOrderAndIgnoresUnknownDiet(t *testing.T) {
	t.Parallel()

	recipes := []*recommend.Recipe{
		{ID: 5, Ingredients: []string{"tofu"}},
		{ID: 3, Ingredients: []string{"bacon"}},
		{ID: 9, Ingredients: []string{"lentils"}},
	}
	res := NewPipeline(zerolog.Nop()).Apply(cands(recipes...), Constraints{Diets: []string{"keto", "vegan"}})
	if !slices.Equal(ids(res.Candidates), []int64{5, 9}) {
		t.Errorf("kept = %v, want [5 9]", ids(res.Candidates))
	}
}

func TestApplyNoConstraints(t *testing.T) {
	t.Parallel()

	in := cands(&recommend.Recipe{ID: 1}, &recommend.Recipe{ID: 2})
	res := NewPipeline(zerolog.Nop()).Apply(in, Constraints{})
	if !slices.Equal(ids(res.Candidates), []int64{1, 2}) {
		t.Errorf("kept = %v", ids(res.Candidates))
	}
}

func TestExplain(t *testing.T) {
	t.Parallel()

	avail := recommend.IngredientSet([]string{"egg", "flour"})
	match := func(ings ...string) *recommend.IngredientMatch {
		m := recommend.MatchIngredients(ings, avail)
		return &m
	}

	tests := []struct {
		name   string
		c      recommend.Candidate
		source recommend.Source
		want   string
	}{
		{
			name: "complete",
			c:    recommend.Candidate{Recipe: &recommend.Recipe{ID: 1, Name: "R"}, Match: match("egg", "flour")},
			want: "You have all the ingredients (2/2): R",
		},
		{
			name: "half",
			c:    recommend.Candidate{Recipe: &recommend.Recipe{ID: 2, Name: "S"}, Match: match("egg", "flour", "sugar", "butter")},
			want: "Uses 2/4 ingredients (50% of recipe): S",
		},
		{
			name: "missing many",
			c: recommend.Candidate{
				Recipe: &recommend.Recipe{ID: 3, Name: "Cake"},
				Match:  match("egg", "sugar", "butter", "milk", "cocoa", "salt"),
			},
			want: "Missing 5 ingredient(s) (1/6 available): Cake. Missing: sugar, butter, milk (+2 more)",
		},
		{
			name: "missing few",
			c:    recommend.Candidate{Recipe: &recommend.Recipe{ID: 4, Name: "Toast"}, Match: match("egg", "bread", "jam")},
			want: "Missing 2 ingredient(s) (1/3 available): Toast. Missing: bread, jam",
		},
		{
			name:   "no context fallback",
			c:      recommend.Candidate{Recipe: &recommend.Recipe{ID: 5, Name: "Soup"}},
			source: recommend.SourceFallback,
			want:   "Popular recipe: Soup",
		},
		{
			name:   "no context model",
			c:      recommend.Candidate{Recipe: &recommend.Recipe{ID: 6}},
			source: recommend.SourceModel,
			want:   "Recommended based on your history: Recipe 6",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Explain(&tt.c, tt.source); got != tt.want {
				t.Errorf("Explain() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExplainAllLength(t *testing.T) {
	t.Parallel()

	in := cands(&recommend.Recipe{ID: 1, Name: "a"}, &recommend.Recipe{ID: 2, Name: "b"})
	got := ExplainAll(in, recommend.SourceFallback)
	if len(got) != len(in) {
		t.Fatalf("len = %d, want %d", len(got), len(in))
	}
	if got[1] != "Popular recipe: b" {
		t.Errorf("got[1] = %q", got[1])
	}
}
