// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package evaluation

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/saveeat/internal/recommend"
	"github.com/tomtom215/saveeat/internal/recommend/graph"
)

// Scorer returns the predicted score of every recipe for a user index.
type Scorer interface {
	ScoreAll(user int) []float64
}

// Report holds metrics averaged over evaluated users.
type Report struct {
	// Metrics maps names such as "ndcg@10", "recall@20" and "mrr" to means.
	Metrics map[string]float64 `json:"metrics"`

	// Users is the number of users evaluated.
	Users int `json:"users"`

	// SkippedUsers counts test users absent from the graph.
	SkippedUsers int `json:"skipped_users"`
}

// Evaluator computes ranking metrics at a set of cutoffs.
type Evaluator struct {
	TopK []int
}

// New creates an evaluator for the given cutoffs.
func New(topK []int) *Evaluator {
	return &Evaluator{TopK: topK}
}

// EvaluateUser computes all metrics for one user.
func (e *Evaluator) EvaluateUser(scores, relevance []float64) map[string]float64 {
	out := make(map[string]float64, 2*len(e.TopK)+1)
	for _, k := range e.TopK {
		out[fmt.Sprintf("ndcg@%d", k)] = NDCGAtK(scores, relevance, k)
	}
	for _, k := range e.TopK {
		out[fmt.Sprintf("recall@%d", k)] = RecallAtK(scores, relevance, k)
	}
	out["mrr"] = ReciprocalRank(scores, relevance)
	return out
}

// Evaluate scores every recipe for each test user present in g and averages
// the per-user metrics. Relevance is the interaction rating, or 1 when the
// interaction is unrated.
func (e *Evaluator) Evaluate(ctx context.Context, scorer Scorer, g *graph.Graph, test []recommend.Interaction) (*Report, error) {
	ids, _ := groupUsers(test)
	report := &Report{Metrics: e.EvaluateUser(nil, nil)}
	for name := range report.Metrics {
		report.Metrics[name] = 0
	}

	type userTruth struct {
		user      int
		relevance []float64
	}
	var users []userTruth
	truth := make(map[int64]*userTruth)
	for _, id := range ids {
		u, ok := g.Users.Index(id)
		if !ok {
			report.SkippedUsers++
			continue
		}
		users = append(users, userTruth{user: u, relevance: make([]float64, g.NumRecipes())})
	}
	for i := range users {
		truth[g.Users.ID(users[i].user)] = &users[i]
	}
	for i := range test {
		ut, ok := truth[test[i].UserID]
		if !ok {
			continue
		}
		if r, ok := g.Recipes.Index(test[i].RecipeID); ok {
			ut.relevance[r] = test[i].RatingOr(1)
		}
	}

	results := make([]map[string]float64, len(users))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i := range users {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = e.EvaluateUser(scorer.ScoreAll(users[i].user), users[i].relevance)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	for _, res := range results {
		for name, v := range res {
			report.Metrics[name] += v
		}
	}
	report.Users = len(results)
	if report.Users > 0 {
		for name := range report.Metrics {
			report.Metrics[name] /= float64(report.Users)
		}
	}
	return report, nil
}

func groupUsers(interactions []recommend.Interaction) ([]int64, map[int64]struct{}) {
	seen := make(map[int64]struct{})
	var ids []int64
	for i := range interactions {
		if _, ok := seen[interactions[i].UserID]; ok {
			continue
		}
		seen[interactions[i].UserID] = struct{}{}
		ids = append(ids, interactions[i].UserID)
	}
	return ids, seen
}
