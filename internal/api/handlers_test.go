// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/saveeat/internal/events"
	"github.com/tomtom215/saveeat/internal/models"
	"github.com/tomtom215/saveeat/internal/recommend"
	"github.com/tomtom215/saveeat/internal/recommend/engine"
)

func ptr[T any](v T) *T { return &v }

// fakeStore is an in-memory Store.
type fakeStore struct {
	mu           sync.Mutex
	pingErr      error
	recipes      map[int64]*recommend.Recipe
	reviews      map[int64][]recommend.Review
	ingredients  []string
	ingErr       error
	interactions []recommend.LoggedInteraction
	profiles     map[int64]*recommend.Profile
	lastLimit    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		recipes: map[int64]*recommend.Recipe{
			1: {ID: 1, Name: "Crepes", Ingredients: []string{"egg", "flour", "milk"}},
		},
		reviews: map[int64][]recommend.Review{
			1: {{Rating: ptr(5.0), Review: "lovely", Author: "ann"}},
		},
		profiles: map[int64]*recommend.Profile{},
	}
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) GetRecipe(_ context.Context, id int64) (*recommend.Recipe, error) {
	if r, ok := f.recipes[id]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("recipe %d: %w", id, recommend.ErrRecipeNotFound)
}

func (f *fakeStore) RecipeReviews(_ context.Context, id int64, limit int) ([]recommend.Review, error) {
	f.mu.Lock()
	f.lastLimit = limit
	f.mu.Unlock()
	out := f.reviews[id]
	if out == nil {
		out = []recommend.Review{}
	}
	return out, nil
}

func (f *fakeStore) TopIngredients(_ context.Context, limit int) ([]string, error) {
	f.mu.Lock()
	f.lastLimit = limit
	f.mu.Unlock()
	return f.ingredients, f.ingErr
}

func (f *fakeStore) UserInteractions(_ context.Context, userID int64, limit int) ([]recommend.LoggedInteraction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit = limit
	out := []recommend.LoggedInteraction{}
	for _, ev := range f.interactions {
		if ev.UserID == userID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeStore) GetProfile(_ context.Context, userID int64) (*recommend.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.profiles[userID]; ok {
		return p, nil
	}
	return nil, recommend.ErrProfileNotFound
}

func (f *fakeStore) UpsertProfile(_ context.Context, p *recommend.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.UserID] = p
	return nil
}

// fakeIngest records logged interactions.
type fakeIngest struct {
	mu     sync.Mutex
	events []*recommend.LoggedInteraction
	err    error
}

func (f *fakeIngest) Log(_ context.Context, ev *recommend.LoggedInteraction) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ev.EventID = fmt.Sprintf("evt-%d", len(f.events)+1)
	f.events = append(f.events, ev)
	return ev.EventID, nil
}

type fakeReloader struct {
	res *engine.ReloadResult
	err error
}

func (f *fakeReloader) ForceReload(context.Context) (*engine.ReloadResult, error) {
	return f.res, f.err
}

type fakeBus struct{ status events.Status }

func (f *fakeBus) Status() events.Status { return f.status }

// testEngine returns an engine serving a fallback-only bundle.
func testEngine(t *testing.T) *engine.Engine {
	t.Helper()
	cfg := recommend.DefaultConfig()
	e := engine.New(cfg, nil, zerolog.Nop())
	b, err := engine.NewBundle(&engine.BundleInput{
		Recipes: []recommend.Recipe{
			{ID: 1, Name: "Crepes", Ingredients: []string{"egg", "flour", "milk"}},
			{ID: 2, Name: "Omelette", Ingredients: []string{"egg", "butter"}},
			{ID: 3, Name: "Salad", Ingredients: []string{"lettuce", "tomato"}},
		},
		Interactions: []recommend.Interaction{
			{UserID: 10, RecipeID: 1, Rating: ptr(5.0)},
			{UserID: 11, RecipeID: 2, Rating: ptr(4.0)},
		},
		DataVersion: "test",
	})
	if err != nil {
		t.Fatalf("NewBundle: %v", err)
	}
	e.Swap(b)
	return e
}

type testServer struct {
	handler http.Handler
	store   *fakeStore
	ingest  *fakeIngest
	reload  *fakeReloader
	bus     *fakeBus
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		store:  newFakeStore(),
		ingest: &fakeIngest{},
		reload: &fakeReloader{res: &engine.ReloadResult{Swapped: true, Version: 3, DataVersion: "abc"}},
		bus:    &fakeBus{status: events.Status{Mode: "memory", Connected: true}},
	}
	h := NewHandler(Dependencies{
		Store:        ts.store,
		Recommender:  testEngine(t),
		Interactions: ts.ingest,
		Reloader:     ts.reload,
		Bus:          ts.bus,
		Version:      "test",
	})
	cfg := DefaultMiddlewareConfig()
	cfg.DisableRateLimit = true
	ts.handler = NewRouter(h, NewMiddleware(cfg)).SetupChi()
	return ts
}

type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func (ts *testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
		}
	}
	return rec, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("decode data: %v (data %s)", err, env.Data)
	}
	return out
}

func TestRecommend(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodPost, "/api/v1/recommend",
		`{"user_id": 999, "available_ingredients": ["Egg", "flour"], "top_k": 2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if env.Status != models.StatusSuccess {
		t.Errorf("envelope status = %q", env.Status)
	}
	if env.Metadata.RequestID == "" || rec.Header().Get("X-Request-ID") != env.Metadata.RequestID {
		t.Errorf("request ID not propagated: header %q, metadata %q", rec.Header().Get("X-Request-ID"), env.Metadata.RequestID)
	}

	resp := decodeData[recommend.Response](t, env)
	if resp.Metadata.Source != recommend.SourceFallback {
		t.Errorf("source = %q, want fallback", resp.Metadata.Source)
	}
	if len(resp.RecipeIDs) == 0 || len(resp.RecipeIDs) > 2 {
		t.Fatalf("recipe_ids = %v, want 1..2 results", resp.RecipeIDs)
	}
	if len(resp.Scores) != len(resp.RecipeIDs) || len(resp.Explanations) != len(resp.RecipeIDs) {
		t.Errorf("parallel slices differ: %d ids, %d scores, %d explanations",
			len(resp.RecipeIDs), len(resp.Scores), len(resp.Explanations))
	}
	if resp.RecipeIDs[0] != 1 {
		t.Errorf("best match = %d, want recipe 1", resp.RecipeIDs[0])
	}
}

func TestRecommendCachedResponse(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	body := `{"user_id": 5, "available_ingredients": ["egg"]}`
	ts.do(t, http.MethodPost, "/api/v1/recommend", body)
	_, env := ts.do(t, http.MethodPost, "/api/v1/recommend", body)
	if !env.Metadata.Cached {
		t.Error("second identical request should be served from cache")
	}
}

func TestRecommendValidation(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"top_k too large", `{"user_id": 1, "top_k": 500}`},
		{"negative max_time", `{"user_id": 1, "max_time": -5}`},
		{"blank ingredient", `{"user_id": 1, "available_ingredients": ["  "]}`},
		{"malformed json", `{"user_id": `},
		{"unknown field", `{"user_id": 1, "k": 3}`},
		{"empty body", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := ts.do(t, http.MethodPost, "/api/v1/recommend", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
			if env.Error == nil || env.Error.Code != models.ErrCodeValidation {
				t.Errorf("error = %+v, want VALIDATION_ERROR", env.Error)
			}
		})
	}
}

func TestRecipe(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/recipe/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	r := decodeData[recommend.Recipe](t, env)
	if r.Name != "Crepes" || len(r.Ingredients) != 3 {
		t.Errorf("recipe = %+v", r)
	}

	rec, env = ts.do(t, http.MethodGet, "/api/v1/recipe/42", "")
	if rec.Code != http.StatusNotFound || env.Error == nil || env.Error.Code != models.ErrCodeNotFound {
		t.Errorf("missing recipe: status %d, error %+v", rec.Code, env.Error)
	}

	rec, _ = ts.do(t, http.MethodGet, "/api/v1/recipe/abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid id: status %d, want 400", rec.Code)
	}
}

func TestRecipeReviews(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/recipe/1/reviews", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decodeData[models.RecipeReviewsResponse](t, env)
	if got.RecipeID != 1 || len(got.Reviews) != 1 || got.Reviews[0].Author != "ann" {
		t.Errorf("reviews = %+v", got)
	}
	if ts.store.lastLimit != defaultReviewLimit {
		t.Errorf("limit = %d, want default %d", ts.store.lastLimit, defaultReviewLimit)
	}

	ts.do(t, http.MethodGet, "/api/v1/recipe/1/reviews?limit=100000", "")
	if ts.store.lastLimit != maxReviewLimit {
		t.Errorf("limit = %d, want clamp to %d", ts.store.lastLimit, maxReviewLimit)
	}

	_, env = ts.do(t, http.MethodGet, "/api/v1/recipe/7/reviews", "")
	empty := decodeData[models.RecipeReviewsResponse](t, env)
	if empty.Reviews == nil || len(empty.Reviews) != 0 {
		t.Errorf("reviews for unreviewed recipe = %v, want empty list", empty.Reviews)
	}
}

func TestIngredients(t *testing.T) {
	t.Parallel()

	t.Run("from store", func(t *testing.T) {
		ts := newTestServer(t)
		ts.store.ingredients = []string{"salt", "egg"}
		_, env := ts.do(t, http.MethodGet, "/api/v1/ingredients?limit=2", "")
		got := decodeData[models.IngredientsResponse](t, env)
		if got.Source != ingredientSourceStore || len(got.Ingredients) != 2 {
			t.Errorf("ingredients = %+v", got)
		}
		if ts.store.lastLimit != 2 {
			t.Errorf("limit = %d, want 2", ts.store.lastLimit)
		}
	})

	t.Run("empty store uses defaults", func(t *testing.T) {
		ts := newTestServer(t)
		_, env := ts.do(t, http.MethodGet, "/api/v1/ingredients", "")
		got := decodeData[models.IngredientsResponse](t, env)
		if got.Source != ingredientSourceDefault || len(got.Ingredients) != len(defaultIngredients) {
			t.Errorf("ingredients = %+v", got)
		}
	})

	t.Run("store error uses defaults truncated to limit", func(t *testing.T) {
		ts := newTestServer(t)
		ts.store.ingErr = errors.New("boom")
		rec, env := ts.do(t, http.MethodGet, "/api/v1/ingredients?limit=3", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		got := decodeData[models.IngredientsResponse](t, env)
		if got.Source != ingredientSourceDefault || len(got.Ingredients) != 3 {
			t.Errorf("ingredients = %+v", got)
		}
	})
}

func TestLogInteraction(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodPost, "/api/v1/log_interaction",
		`{"user_id": 7, "recipe_id": 1, "available_ingredients": ["egg"]}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	got := decodeData[models.LogInteractionResponse](t, env)
	if got.EventID != "evt-1" || got.Status != interactionAccepted {
		t.Errorf("response = %+v", got)
	}
	if len(ts.ingest.events) != 1 || ts.ingest.events[0].Type != recommend.InteractionView {
		t.Errorf("logged = %+v, want one view event", ts.ingest.events)
	}

	rec, _ = ts.do(t, http.MethodPost, "/api/v1/log_interaction",
		`{"user_id": 7, "recipe_id": 1, "interaction_type": "RATE", "rating": 4}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("rate status = %d", rec.Code)
	}
	if ev := ts.ingest.events[1]; ev.Type != recommend.InteractionRate || ev.Rating == nil || *ev.Rating != 4 {
		t.Errorf("rate event = %+v", ev)
	}

	for _, body := range []string{
		`{"user_id": 7, "recipe_id": 1, "interaction_type": "bookmark"}`,
		`{"user_id": 7, "recipe_id": 1, "rating": 9}`,
		`{"user_id": 7, "recipe_id": 0}`,
	} {
		rec, env := ts.do(t, http.MethodPost, "/api/v1/log_interaction", body)
		if rec.Code != http.StatusBadRequest || env.Error == nil {
			t.Errorf("%s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestLogInteractionUnavailable(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	ts.ingest.err = errors.New("bus down")

	rec, env := ts.do(t, http.MethodPost, "/api/v1/log_interaction", `{"user_id": 1, "recipe_id": 2}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if strings.Contains(env.Error.Message, "bus down") {
		t.Error("internal error text leaked to client")
	}
}

func TestUserInteractions(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	ts.store.interactions = []recommend.LoggedInteraction{
		{EventID: "a", UserID: 3, RecipeID: 1, Type: recommend.InteractionLike, CreatedAt: time.Now()},
		{EventID: "b", UserID: 4, RecipeID: 1, Type: recommend.InteractionView, CreatedAt: time.Now()},
	}

	_, env := ts.do(t, http.MethodGet, "/api/v1/user/3/interactions?limit=10", "")
	got := decodeData[models.UserInteractionsResponse](t, env)
	if got.UserID != 3 || len(got.Interactions) != 1 || got.Interactions[0].EventID != "a" {
		t.Errorf("interactions = %+v", got)
	}
	if ts.store.lastLimit != 10 {
		t.Errorf("limit = %d, want 10", ts.store.lastLimit)
	}
}

func TestProfileEndpoints(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	rec, _ := ts.do(t, http.MethodGet, "/api/v1/user/9/profile", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing profile status = %d, want 404", rec.Code)
	}

	rec, env := ts.do(t, http.MethodPut, "/api/v1/user/9/profile",
		`{"allergies": ["peanut"], "max_calories": 600, "max_prep_time": 30}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d, body %s", rec.Code, rec.Body.String())
	}
	stored := decodeData[recommend.Profile](t, env)
	if stored.UserID != 9 || stored.UpdatedAt.IsZero() {
		t.Errorf("stored profile = %+v", stored)
	}

	_, env = ts.do(t, http.MethodGet, "/api/v1/user/9/profile", "")
	got := decodeData[recommend.Profile](t, env)
	if len(got.Allergies) != 1 || got.Allergies[0] != "peanut" || *got.MaxPrepTime != 30 {
		t.Errorf("profile = %+v", got)
	}

	rec, _ = ts.do(t, http.MethodPut, "/api/v1/user/9/profile", `{"max_calories": -1}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid profile status = %d, want 400", rec.Code)
	}
}

func TestAdminEndpoints(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	_, env := ts.do(t, http.MethodGet, "/api/v1/admin/bundle", "")
	status := decodeData[BundleStatus](t, env)
	if status.Bundle.HasModel || status.Bundle.Catalogue != 3 || status.Bundle.DataVersion != "test" {
		t.Errorf("bundle = %+v", status.Bundle)
	}
	if status.BreakerState != "closed" {
		t.Errorf("breaker = %q, want closed", status.BreakerState)
	}

	rec, env := ts.do(t, http.MethodPost, "/api/v1/admin/reload", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("reload status = %d", rec.Code)
	}
	res := decodeData[engine.ReloadResult](t, env)
	if !res.Swapped || res.Version != 3 {
		t.Errorf("reload = %+v", res)
	}

	ts.reload.err = engine.ErrReloadThrottled
	rec, env = ts.do(t, http.MethodPost, "/api/v1/admin/reload", "")
	if rec.Code != http.StatusTooManyRequests || env.Error.Code != models.ErrCodeRateLimited {
		t.Errorf("throttled reload: status %d, error %+v", rec.Code, env.Error)
	}

	ts.reload.err = errors.New("checkpoint corrupt")
	rec, _ = ts.do(t, http.MethodPost, "/api/v1/admin/reload", "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("failed reload status = %d, want 500", rec.Code)
	}
}

func TestAdminReloadNotConfigured(t *testing.T) {
	t.Parallel()
	h := NewHandler(Dependencies{Store: newFakeStore(), Recommender: testEngine(t), Interactions: &fakeIngest{}})

	rec := httptest.NewRecorder()
	h.AdminReload(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/reload", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		pingErr    error
		connected  bool
		wantStatus string
	}{
		{"healthy", nil, true, healthHealthy},
		{"database down", errors.New("closed"), true, healthDegraded},
		{"bus disconnected", nil, false, healthDegraded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.store.pingErr = tt.pingErr
			ts.bus.status.Connected = tt.connected

			rec, env := ts.do(t, http.MethodGet, "/health", "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			hs := decodeData[models.HealthStatus](t, env)
			if hs.Status != tt.wantStatus {
				t.Errorf("health = %q, want %q", hs.Status, tt.wantStatus)
			}
			if hs.ModelLoaded {
				t.Error("fallback-only bundle reported as model loaded")
			}
		})
	}
}

func TestHealthProbes(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	if rec, _ := ts.do(t, http.MethodGet, "/health/live", ""); rec.Code != http.StatusOK {
		t.Errorf("live status = %d", rec.Code)
	}
	if rec, _ := ts.do(t, http.MethodGet, "/health/ready", ""); rec.Code != http.StatusOK {
		t.Errorf("ready status = %d", rec.Code)
	}

	ts.store.pingErr = errors.New("closed")
	if rec, _ := ts.do(t, http.MethodGet, "/health/ready", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready status with database down = %d, want 503", rec.Code)
	}
}
