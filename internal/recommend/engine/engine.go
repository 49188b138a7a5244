// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/saveeat/internal/cache"
	"github.com/tomtom215/saveeat/internal/metrics"
	"github.com/tomtom215/saveeat/internal/recommend"
	"github.com/tomtom215/saveeat/internal/recommend/constraints"
	"github.com/tomtom215/saveeat/internal/recommend/fallback"
	"github.com/tomtom215/saveeat/internal/recommend/nn"
	"github.com/tomtom215/saveeat/internal/recommend/reranking"
)

// Fallback reasons, used as metric labels.
const (
	ReasonNoModel      = "no_model"
	ReasonColdStart    = "cold_start"
	ReasonBreakerOpen  = "breaker_open"
	ReasonModelError   = "model_error"
	ReasonNoCandidates = "no_candidates"
)

const breakerName = "model-path"

// ProfileSource fetches user profiles. It returns recommend.ErrProfileNotFound
// when the user has none.
type ProfileSource interface {
	GetProfile(ctx context.Context, userID int64) (*recommend.Profile, error)
}

// Engine answers recommendation requests against the current bundle.
type Engine struct {
	cfg      *recommend.Config
	bundle   atomic.Pointer[Bundle]
	breaker  *gobreaker.CircuitBreaker[[]recommend.Candidate]
	fallback *fallback.Scorer
	pipeline *constraints.Pipeline
	profiles ProfileSource
	cache    *cache.LRU[*recommend.Response]
	logger   zerolog.Logger
}

// New creates an engine serving an empty bundle until Swap is called.
// profiles may be nil, in which case UseProfile is ignored.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(cfg *recommend.Config, profiles ProfileSource, logger zerolog.Logger) *Engine {
	logger = logger.With().Str("component", "recommend_engine").Logger()
	e := &Engine{
		cfg:      cfg,
		fallback: fallback.New(cfg.Fallback),
		pipeline: constraints.NewPipeline(logger),
		profiles: profiles,
		logger:   logger,
	}
	e.pipeline.OnRelax = metrics.RecordConstraintRelaxation
	if cfg.Serving.CacheTTL > 0 {
		e.cache = cache.NewLRU[*recommend.Response](cfg.Serving.CacheSize, cfg.Serving.CacheTTL)
	}

	maxFailures := cfg.Serving.BreakerMaxFailures
	e.breaker = gobreaker.NewCircuitBreaker[[]recommend.Candidate](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cfg.Serving.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			e.logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Model path circuit breaker state change")
			metrics.RecordBreakerTransition(name, from.String(), to.String())
		},
	})
	e.bundle.Store(emptyBundle())
	return e
}

// Bundle returns the bundle currently serving requests.
func (e *Engine) Bundle() *Bundle {
	return e.bundle.Load()
}

// Swap publishes b and returns the previous bundle. Cached responses of the
// previous bundle become unreachable.
func (e *Engine) Swap(b *Bundle) *Bundle {
	old := e.bundle.Swap(b)
	if e.cache != nil {
		e.cache.Clear()
	}
	return old
}

// PruneCache drops expired cached responses and returns how many it dropped.
func (e *Engine) PruneCache() int {
	if e.cache == nil {
		return 0
	}
	return e.cache.CleanupExpired()
}

// BreakerState returns the model path circuit breaker state.
func (e *Engine) BreakerState() string {
	return e.breaker.State().String()
}

// CacheStats returns response cache counters, zero when caching is off.
func (e *Engine) CacheStats() cache.Stats {
	if e.cache == nil {
		return cache.Stats{}
	}
	return e.cache.Stats()
}

// normalize validates req and fills defaults.
func (e *Engine) normalize(req *recommend.Request) (recommend.Request, error) {
	out := *req
	if out.TopK == 0 {
		out.TopK = e.cfg.Serving.DefaultTopK
	}
	if out.TopK < 1 {
		return out, fmt.Errorf("%w: top_k must be positive, got %d", recommend.ErrInvalidRequest, req.TopK)
	}
	out.TopK = min(out.TopK, e.cfg.Serving.MaxTopK)
	if out.MaxTime != nil && *out.MaxTime < 0 {
		return out, fmt.Errorf("%w: max_time must not be negative, got %d", recommend.ErrInvalidRequest, *out.MaxTime)
	}

	set := recommend.IngredientSet(out.AvailableIngredients)
	out.AvailableIngredients = make([]string, 0, len(set))
	for ing := range set {
		out.AvailableIngredients = append(out.AvailableIngredients, ing)
	}
	slices.Sort(out.AvailableIngredients)
	if len(out.AvailableIngredients) == 0 {
		out.AvailableIngredients = nil
	}
	return out, nil
}

// cacheKey identifies a response for one bundle, request and profile.
type cacheKey struct {
	Version     int
	DataVersion string
	Request     recommend.Request
	Profile     *recommend.Profile
}

// Recommend returns up to req.TopK recommendations for req.UserID.
//
// Cold-start users and a missing model are served by the fallback path;
// they are not errors. Errors are returned only for invalid requests and
// profile lookups that fail for reasons other than absence.
func (e *Engine) Recommend(ctx context.Context, req *recommend.Request) (*recommend.Response, error) {
	start := time.Now()
	nreq, err := e.normalize(req)
	if err != nil {
		return nil, err
	}
	b := e.bundle.Load()

	var profile *recommend.Profile
	if nreq.UseProfile && e.profiles != nil {
		p, err := e.profiles.GetProfile(ctx, nreq.UserID)
		switch {
		case errors.Is(err, recommend.ErrProfileNotFound):
		case err != nil:
			return nil, fmt.Errorf("load profile for user %d: %w", nreq.UserID, err)
		default:
			profile = p
		}
	}

	var key string
	if e.cache != nil {
		// UpdatedAt does not affect results.
		var fp *recommend.Profile
		if profile != nil {
			cp := *profile
			cp.UpdatedAt = time.Time{}
			fp = &cp
		}
		key = cache.GenerateKey("recommend", cacheKey{
			Version:     b.version,
			DataVersion: b.dataVersion,
			Request:     nreq,
			Profile:     fp,
		})
		if cached, ok := e.cache.Get(key); ok {
			metrics.RecordRecommendCache(true)
			resp := cached.Clone()
			resp.Metadata.CacheHit = true
			resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
			return resp, nil
		}
		metrics.RecordRecommendCache(false)
	}

	cons := constraints.FromProfile(profile, nreq.DietaryPreferences)
	resp := e.dispatch(b, &nreq, cons)
	resp.Metadata.BundleVersion = b.version
	resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
	metrics.RecordRecommendation(string(resp.Metadata.Source), time.Since(start))

	if e.cache != nil {
		e.cache.Add(key, resp.Clone())
	}
	return resp, nil
}

// dispatch runs the model path when the bundle can serve the user and the
// fallback path otherwise.
func (e *Engine) dispatch(b *Bundle, req *recommend.Request, cons constraints.Constraints) *recommend.Response {
	var reason string
	switch {
	case !b.HasModel():
		reason = ReasonNoModel
	case !b.IsUsable(req.UserID):
		reason = ReasonColdStart
	default:
		resp, err := e.modelPath(b, req, cons)
		if err == nil {
			return resp
		}
		reason = ReasonModelError
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			reason = ReasonBreakerOpen
		} else if errors.Is(err, errNoCandidates) {
			reason = ReasonNoCandidates
		}
		if reason == ReasonModelError {
			e.logger.Warn().Err(err).Int64("user_id", req.UserID).Msg("Model path failed, using fallback")
		}
	}
	e.logger.Debug().Int64("user_id", req.UserID).Str("reason", reason).Msg("Serving fallback recommendations")
	metrics.RecordFallback(reason)
	return e.fallbackPath(b, req, cons)
}

var errNoCandidates = errors.New("model path produced no candidates")

// modelPath ranks by affinity, filters, optionally re-ranks, and maps the
// final scores into (0, 1).
func (e *Engine) modelPath(b *Bundle, req *recommend.Request, cons constraints.Constraints) (*recommend.Response, error) {
	u, _ := b.graph.Users.Index(req.UserID)
	ranked, err := e.breaker.Execute(func() (out []recommend.Candidate, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("model scoring panicked: %v", r)
			}
		}()
		cands, coerced := b.modelCandidates(u)
		metrics.RecordNonFiniteScores(coerced)
		return cands, nil
	})
	if err != nil {
		return nil, err
	}
	if len(ranked) == 0 {
		return nil, errNoCandidates
	}

	filtered := e.applyConstraints(ranked, cons)
	resp := &recommend.Response{Metadata: recommend.ResponseMetadata{Source: recommend.SourceModel}}
	resp.Metadata.Relaxed = filtered.Relaxed

	final := filtered.Candidates
	if req.HasContext() && b.reranker != nil && len(final) > 0 {
		pool := recommend.TopK(final, reranking.PoolSize(req.TopK, e.cfg.Reranker.CandidateMultiplier))
		reranked, err := reranking.Apply(b.reranker, b.encoder, reranking.NewRequestContext(req), pool, req.TopK)
		if err != nil {
			e.logger.Warn().Err(err).Int64("user_id", req.UserID).Msg("Re-ranking failed, keeping base order")
		} else {
			final = reranked
			resp.Metadata.Reranked = true
		}
	}
	final = slices.Clone(recommend.TopK(final, req.TopK))

	for i := range final {
		final[i].Score = recommend.SafeScore(nn.Sigmoid(final[i].Score))
	}
	e.attachMatches(final, req.AvailableIngredients)
	fill(resp, final, recommend.SourceModel)
	return resp, nil
}

// fallbackPath scores by ingredient match and popularity.
func (e *Engine) fallbackPath(b *Bundle, req *recommend.Request, cons constraints.Constraints) *recommend.Response {
	scored := e.fallback.Score(b.recipes, b.popularity, req.AvailableIngredients, req.MaxTime)
	filtered := e.applyConstraints(scored, cons)
	final := recommend.TopK(filtered.Candidates, req.TopK)
	for i := range final {
		final[i].Score = recommend.Clamp01(final[i].Score)
	}

	resp := &recommend.Response{Metadata: recommend.ResponseMetadata{
		Source:  recommend.SourceFallback,
		Relaxed: filtered.Relaxed,
	}}
	fill(resp, final, recommend.SourceFallback)
	return resp
}

func (e *Engine) applyConstraints(c []recommend.Candidate, cons constraints.Constraints) constraints.Result {
	res := e.pipeline.Apply(c, cons)
	if res.AllergyExhausted {
		metrics.RecordAllergyExhaustion()
	}
	return res
}

// attachMatches computes ingredient matches for explanations.
func (e *Engine) attachMatches(c []recommend.Candidate, available []string) {
	if len(available) == 0 {
		return
	}
	set := recommend.IngredientSet(available)
	for i := range c {
		m := recommend.MatchIngredients(c[i].Recipe.Ingredients, set)
		c[i].Match = &m
	}
}

// fill writes the parallel output slices, skipping duplicate recipe IDs.
func fill(resp *recommend.Response, c []recommend.Candidate, source recommend.Source) {
	seen := make(map[int64]struct{}, len(c))
	uniq := make([]recommend.Candidate, 0, len(c))
	for i := range c {
		if _, dup := seen[c[i].Recipe.ID]; dup {
			continue
		}
		seen[c[i].Recipe.ID] = struct{}{}
		uniq = append(uniq, c[i])
	}
	resp.RecipeIDs = make([]int64, len(uniq))
	resp.Scores = make([]float64, len(uniq))
	for i := range uniq {
		resp.RecipeIDs[i] = uniq[i].Recipe.ID
		resp.Scores[i] = recommend.SafeScore(uniq[i].Score)
	}
	resp.Explanations = constraints.ExplainAll(uniq, source)
}
