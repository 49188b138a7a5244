// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package engine

import (
	"context"
	"errors"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/saveeat/internal/recommend"
	"github.com/tomtom215/saveeat/internal/recommend/graph"
	"github.com/tomtom215/saveeat/internal/recommend/model"
	"github.com/tomtom215/saveeat/internal/recommend/reranking"
	"github.com/tomtom215/saveeat/internal/recommend/storage"
)

func ptr[T any](v T) *T { return &v }

type fakeProfiles struct {
	profiles map[int64]*recommend.Profile
	err      error
}

func (f *fakeProfiles) GetProfile(_ context.Context, userID int64) (*recommend.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, recommend.ErrProfileNotFound
	}
	return p, nil
}

func testRecipes() []recommend.Recipe {
	return []recommend.Recipe{
		{ID: 1, Name: "Crepes", Ingredients: []string{"egg", "flour"}, Nutrition: recommend.Nutrition{Calories: ptr(500.0)}},
		{ID: 2, Name: "Cake", Ingredients: []string{"egg", "flour", "sugar", "butter"}},
		{ID: 3, Name: "Rice Bowl", Ingredients: []string{"rice", "peanut sauce"}, Nutrition: recommend.Nutrition{Calories: ptr(250.0)}},
		{ID: 4, Name: "Steak", Ingredients: []string{"beef", "salt"}, PrepTimeMinutes: ptr(90)},
		{ID: 5, Name: "", Ingredients: []string{"tomato", "basil"}},
	}
}

func testInteractions() []recommend.Interaction {
	return []recommend.Interaction{
		{UserID: 100, RecipeID: 1, Rating: ptr(5.0)},
		{UserID: 100, RecipeID: 2, Rating: ptr(3.0)},
		{UserID: 100, RecipeID: 3, Rating: ptr(4.0)},
		{UserID: 200, RecipeID: 3, Rating: ptr(4.0)},
		{UserID: 200, RecipeID: 4, Rating: ptr(2.0)},
		{UserID: 300, RecipeID: 5},
	}
}

func testConfig() *recommend.Config {
	cfg := recommend.DefaultConfig()
	cfg.Model.EmbeddingDim = 4
	cfg.Model.HiddenDim = 4
	cfg.Model.Dropout = 0
	cfg.Reranker.ContextDim = 8
	cfg.Reranker.HiddenDims = []int{4}
	return cfg
}

func testCheckpoint(t *testing.T, cfg *recommend.Config, withReranker bool, poison bool) *storage.Checkpoint {
	t.Helper()
	g, err := graph.Build(testInteractions(), testRecipes(), graph.Options{Logger: zerolog.Nop()})
	if err != nil {
		t.Fatal(err)
	}
	m, err := model.New(cfg.Model, g.NumUsers(), g.NumRecipes(), g.NumIngredients())
	if err != nil {
		t.Fatal(err)
	}
	if poison {
		m.Embeddings[1].Value.Data[0] = math.NaN()
	}
	var rr *reranking.Reranker
	if withReranker {
		rr = reranking.New(cfg.Reranker, 7)
	}
	return storage.NewCheckpoint(m, g, rr, storage.Metadata{Version: 1, RunID: "test"})
}

func newTestEngine(t *testing.T, cp *storage.Checkpoint, profiles ProfileSource) *Engine {
	t.Helper()
	cfg := testConfig()
	e := New(cfg, profiles, zerolog.Nop())
	b, err := NewBundle(&BundleInput{
		Checkpoint:   cp,
		Recipes:      testRecipes(),
		Interactions: testInteractions(),
		DataVersion:  "v1",
	})
	if err != nil {
		t.Fatalf("NewBundle() error = %v", err)
	}
	e.Swap(b)
	return e
}

func checkShape(t *testing.T, resp *recommend.Response, topK int) {
	t.Helper()
	if len(resp.RecipeIDs) != len(resp.Scores) || len(resp.Scores) != len(resp.Explanations) {
		t.Fatalf("unequal lengths: %d ids, %d scores, %d explanations", len(resp.RecipeIDs), len(resp.Scores), len(resp.Explanations))
	}
	if resp.Len() > topK {
		t.Errorf("len = %d exceeds top_k %d", resp.Len(), topK)
	}
	seen := map[int64]bool{}
	for i, id := range resp.RecipeIDs {
		if seen[id] {
			t.Errorf("duplicate recipe id %d", id)
		}
		seen[id] = true
		if s := resp.Scores[i]; math.IsNaN(s) || math.IsInf(s, 0) || s < 0 || s > 1 {
			t.Errorf("score %f out of range", s)
		}
	}
}

func TestColdStartUsesPopularityFallback(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, testCheckpoint(t, testConfig(), false, false), nil)
	resp, err := e.Recommend(context.Background(), &recommend.Request{UserID: 999999, TopK: 10})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	checkShape(t, resp, 10)
	if resp.Metadata.Source != recommend.SourceFallback {
		t.Errorf("source = %s, want fallback", resp.Metadata.Source)
	}
	// Means: 1 -> 5, 3 -> 4, 2 -> 3, 4 -> 2, 5 unrated.
	if want := []int64{1, 3, 2, 4, 5}; !slices.Equal(resp.RecipeIDs, want) {
		t.Errorf("order = %v, want %v", resp.RecipeIDs, want)
	}
	if resp.Scores[0] != 1 || resp.Scores[4] != 0 {
		t.Errorf("scores = %v", resp.Scores)
	}
	if resp.Explanations[0] != "Popular recipe: Crepes" || resp.Explanations[4] != "Popular recipe: Recipe 5" {
		t.Errorf("explanations = %q", resp.Explanations)
	}
}

func TestModelPathForKnownUser(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, testCheckpoint(t, testConfig(), false, false), nil)
	req := &recommend.Request{UserID: 100, TopK: 3}
	first, err := e.Recommend(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	checkShape(t, first, 3)
	if first.Metadata.Source != recommend.SourceModel || first.Metadata.BundleVersion != 1 {
		t.Errorf("metadata = %+v", first.Metadata)
	}
	if first.Len() != 3 {
		t.Errorf("len = %d, want 3", first.Len())
	}
	for i, s := range first.Scores {
		if s <= 0 || s >= 1 {
			t.Errorf("score[%d] = %f, want in (0, 1)", i, s)
		}
		if !strings.HasPrefix(first.Explanations[i], "Recommended based on your history: ") {
			t.Errorf("explanation[%d] = %q", i, first.Explanations[i])
		}
	}

	second, err := e.Recommend(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(first.RecipeIDs, second.RecipeIDs) || !slices.Equal(first.Scores, second.Scores) {
		t.Errorf("repeat call differs: %v / %v", first.RecipeIDs, second.RecipeIDs)
	}
	if !second.Metadata.CacheHit {
		t.Error("second call was not served from cache")
	}
}

func TestPruneCacheKeepsLiveEntries(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, testCheckpoint(t, testConfig(), false, false), nil)
	if _, err := e.Recommend(context.Background(), &recommend.Request{UserID: 100, TopK: 3}); err != nil {
		t.Fatal(err)
	}
	if n := e.PruneCache(); n != 0 {
		t.Errorf("PruneCache() = %d, want 0 for unexpired entries", n)
	}
	if e.CacheStats().Size != 1 {
		t.Errorf("cache size = %d, want 1", e.CacheStats().Size)
	}

	cfg := testConfig()
	cfg.Serving.CacheTTL = 0
	if n := New(cfg, nil, zerolog.Nop()).PruneCache(); n != 0 {
		t.Errorf("PruneCache() without cache = %d, want 0", n)
	}
}

func TestIdempotentWithoutCache(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Serving.CacheTTL = 0
	e := New(cfg, nil, zerolog.Nop())
	b, err := NewBundle(&BundleInput{Checkpoint: testCheckpoint(t, cfg, true, false), Recipes: testRecipes(), Interactions: testInteractions()})
	if err != nil {
		t.Fatal(err)
	}
	e.Swap(b)

	req := &recommend.Request{UserID: 200, TopK: 4, AvailableIngredients: []string{"egg", " Flour"}, MaxTime: ptr(30)}
	first, err := e.Recommend(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Recommend(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	checkShape(t, first, 4)
	if !first.Metadata.Reranked {
		t.Error("context request was not re-ranked")
	}
	if second.Metadata.CacheHit {
		t.Error("cache hit with caching disabled")
	}
	if !slices.Equal(first.RecipeIDs, second.RecipeIDs) || !slices.Equal(first.Scores, second.Scores) ||
		!slices.Equal(first.Explanations, second.Explanations) {
		t.Error("identical requests produced different output")
	}
}

func TestFallbackIngredientScenario(t *testing.T) {
	t.Parallel()

	// No checkpoint: every user is served by the fallback path.
	e := newTestEngine(t, nil, nil)
	resp, err := e.Recommend(context.Background(), &recommend.Request{
		UserID:               100,
		AvailableIngredients: []string{"egg", "flour"},
		TopK:                 10,
	})
	if err != nil {
		t.Fatal(err)
	}
	checkShape(t, resp, 10)
	if want := []int64{1, 2}; !slices.Equal(resp.RecipeIDs, want) {
		t.Fatalf("ids = %v, want %v", resp.RecipeIDs, want)
	}
	if resp.Scores[0] <= resp.Scores[1] {
		t.Errorf("complete recipe score %f not above partial %f", resp.Scores[0], resp.Scores[1])
	}
	if resp.Explanations[0] != "You have all the ingredients (2/2): Crepes" {
		t.Errorf("explanation[0] = %q", resp.Explanations[0])
	}
	if resp.Explanations[1] != "Uses 2/4 ingredients (50% of recipe): Cake" {
		t.Errorf("explanation[1] = %q", resp.Explanations[1])
	}
}

func TestProfileConstraints(t *testing.T) {
	t.Parallel()

	profiles := &fakeProfiles{profiles: map[int64]*recommend.Profile{
		100: {UserID: 100, MaxCalories: ptr(300.0)},
		200: {UserID: 200, Allergies: []string{"peanut"}, DietaryRestrictions: []string{"Vegetarian"}},
	}}
	e := newTestEngine(t, testCheckpoint(t, testConfig(), false, false), profiles)

	resp, err := e.Recommend(context.Background(), &recommend.Request{UserID: 100, TopK: 10, UseProfile: true})
	if err != nil {
		t.Fatal(err)
	}
	if slices.Contains(resp.RecipeIDs, 1) {
		t.Errorf("500-calorie recipe returned under max_calories=300: %v", resp.RecipeIDs)
	}
	if !slices.Contains(resp.RecipeIDs, 2) || !slices.Contains(resp.RecipeIDs, 3) {
		t.Errorf("unknown or low calorie recipes missing: %v", resp.RecipeIDs)
	}

	resp, err = e.Recommend(context.Background(), &recommend.Request{UserID: 200, TopK: 10, UseProfile: true})
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range resp.RecipeIDs {
		if id == 3 || id == 4 {
			t.Errorf("recipe %d violates allergy or diet", id)
		}
	}

	// Without UseProfile the same user sees everything.
	resp, err = e.Recommend(context.Background(), &recommend.Request{UserID: 200, TopK: 10})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Len() != 5 {
		t.Errorf("len without profile = %d, want 5", resp.Len())
	}
}

func TestAllergyExhaustionReturnsEmpty(t *testing.T) {
	t.Parallel()

	profiles := &fakeProfiles{profiles: map[int64]*recommend.Profile{
		300: {UserID: 300, Allergies: []string{"egg", "rice", "beef", "tomato"}},
	}}
	for _, cp := range []*storage.Checkpoint{nil, testCheckpoint(t, testConfig(), false, false)} {
		e := newTestEngine(t, cp, profiles)
		resp, err := e.Recommend(context.Background(), &recommend.Request{UserID: 300, TopK: 5, UseProfile: true})
		if err != nil {
			t.Fatal(err)
		}
		if resp.Len() != 0 {
			t.Errorf("allergy-exhausted result = %v, want empty", resp.RecipeIDs)
		}
		if slices.Contains(resp.Metadata.Relaxed, "allergies") {
			t.Error("allergy constraint was relaxed")
		}
	}
}

func TestRequestErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("store down")
	e := newTestEngine(t, nil, &fakeProfiles{err: boom})

	if _, err := e.Recommend(context.Background(), &recommend.Request{UserID: 1, TopK: -1}); !errors.Is(err, recommend.ErrInvalidRequest) {
		t.Errorf("negative top_k error = %v, want ErrInvalidRequest", err)
	}
	if _, err := e.Recommend(context.Background(), &recommend.Request{UserID: 1, TopK: 5, MaxTime: ptr(-5)}); !errors.Is(err, recommend.ErrInvalidRequest) {
		t.Errorf("negative max_time error = %v, want ErrInvalidRequest", err)
	}
	if _, err := e.Recommend(context.Background(), &recommend.Request{UserID: 1, TopK: 5, UseProfile: true}); !errors.Is(err, boom) {
		t.Errorf("profile error = %v, want %v", err, boom)
	}

	resp, err := e.Recommend(context.Background(), &recommend.Request{UserID: 1})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Len() != 5 {
		t.Errorf("default top_k len = %d, want 5", resp.Len())
	}
	resp, err = e.Recommend(context.Background(), &recommend.Request{UserID: 1, TopK: 1000})
	if err != nil || resp.Len() > testConfig().Serving.MaxTopK {
		t.Errorf("capped top_k: %v, len %d", err, resp.Len())
	}
}

func TestNonFiniteModelIsNotServed(t *testing.T) {
	t.Parallel()

	// A single layer has no activation to absorb the NaN.
	cfg := testConfig()
	cfg.Model.NumLayers = 1
	e := newTestEngine(t, testCheckpoint(t, cfg, false, true), nil)
	info := e.Bundle().Info()
	if info.HasModel || info.ModelIssue == "" {
		t.Errorf("poisoned model info = %+v", info)
	}
	resp, err := e.Recommend(context.Background(), &recommend.Request{UserID: 100, TopK: 3})
	if err != nil {
		t.Fatal(err)
	}
	checkShape(t, resp, 3)
	if resp.Metadata.Source != recommend.SourceFallback {
		t.Errorf("source = %s, want fallback", resp.Metadata.Source)
	}
}

func TestSwapClearsCache(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, nil)
	req := &recommend.Request{UserID: 1, TopK: 2}
	if _, err := e.Recommend(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	b, err := NewBundle(&BundleInput{Recipes: testRecipes()[:1], DataVersion: "v2"})
	if err != nil {
		t.Fatal(err)
	}
	old := e.Swap(b)
	if old.DataVersion() != "v1" {
		t.Errorf("old data version = %q", old.DataVersion())
	}
	resp, err := e.Recommend(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Metadata.CacheHit || !slices.Equal(resp.RecipeIDs, []int64{1}) {
		t.Errorf("after swap: %+v", resp)
	}
}

func TestCachedResponseIsolatedFromCaller(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, nil)
	req := &recommend.Request{UserID: 999999, TopK: 3}
	first, err := e.Recommend(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if first.Len() == 0 {
		t.Fatal("empty response")
	}
	wantIDs := slices.Clone(first.RecipeIDs)
	wantExpl := slices.Clone(first.Explanations)

	first.RecipeIDs[0] = -42
	first.Scores[0] = 7
	first.Explanations[0] = "changed"

	second, err := e.Recommend(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !second.Metadata.CacheHit {
		t.Fatal("second call missed the cache")
	}
	if !slices.Equal(second.RecipeIDs, wantIDs) || !slices.Equal(second.Explanations, wantExpl) {
		t.Errorf("cached response changed: ids=%v explanations=%q", second.RecipeIDs, second.Explanations)
	}

	second.RecipeIDs[0] = -7
	third, err := e.Recommend(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if third.RecipeIDs[0] != wantIDs[0] {
		t.Errorf("cache hit shares slices with an earlier caller: ids=%v", third.RecipeIDs)
	}
}

func TestBundleIsUsable(t *testing.T) {
	t.Parallel()

	b, err := NewBundle(&BundleInput{Checkpoint: testCheckpoint(t, testConfig(), false, false), Recipes: testRecipes()})
	if err != nil {
		t.Fatal(err)
	}
	if !b.IsUsable(100) || b.IsUsable(999999) {
		t.Error("IsUsable does not reflect graph membership")
	}
	empty := emptyBundle()
	if empty.IsUsable(100) || empty.HasModel() {
		t.Error("empty bundle reports a usable model")
	}
}
