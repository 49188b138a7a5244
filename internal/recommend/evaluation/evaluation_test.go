// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package evaluation

import (
	"context"
	"math"
	"slices"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/saveeat/internal/recommend"
	"github.com/tomtom215/saveeat/internal/recommend/graph"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRankTieBreak(t *testing.T) {
	t.Parallel()

	got := Rank([]float64{0.5, 0.9, 0.5, 0.9, 0.1})
	if want := []int{1, 3, 0, 2, 4}; !slices.Equal(got, want) {
		t.Errorf("Rank = %v, want %v", got, want)
	}
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		scores    []float64
		relevance []float64
		k         int
		ndcg      float64
		recall    float64
		mrr       float64
	}{
		{
			name:      "single relevant ranked first",
			scores:    []float64{0.9, 0.2, 0.1},
			relevance: []float64{5, 0, 0},
			k:         2, ndcg: 1, recall: 1, mrr: 1,
		},
		{
			name:      "no relevant items",
			scores:    []float64{0.9, 0.2, 0.1},
			relevance: []float64{0, 0, 0},
			k:         2, ndcg: 0, recall: 0, mrr: 0,
		},
		{
			name:      "relevant ranked second",
			scores:    []float64{0.9, 0.8, 0.1},
			relevance: []float64{0, 1, 0},
			k:         2, ndcg: 1 / math.Log2(3), recall: 1, mrr: 0.5,
		},
		{
			name:      "relevant outside cutoff",
			scores:    []float64{0.9, 0.8, 0.1},
			relevance: []float64{0, 0, 1},
			k:         2, ndcg: 0, recall: 0, mrr: 1.0 / 3,
		},
		{
			name:      "half recalled",
			scores:    []float64{0.9, 0.8, 0.7, 0.1},
			relevance: []float64{1, 0, 0, 1},
			k:         2, ndcg: 1 / (1 + 1/math.Log2(3)), recall: 0.5, mrr: 1,
		},
		{
			name:      "k larger than item count",
			scores:    []float64{0.1, 0.9},
			relevance: []float64{1, 0},
			k:         10, ndcg: (1 / math.Log2(3)), recall: 1, mrr: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NDCGAtK(tt.scores, tt.relevance, tt.k); !near(got, tt.ndcg) {
				t.Errorf("NDCG = %f, want %f", got, tt.ndcg)
			}
			if got := RecallAtK(tt.scores, tt.relevance, tt.k); !near(got, tt.recall) {
				t.Errorf("Recall = %f, want %f", got, tt.recall)
			}
			if got := ReciprocalRank(tt.scores, tt.relevance); !near(got, tt.mrr) {
				t.Errorf("MRR = %f, want %f", got, tt.mrr)
			}
		})
	}
}

func TestDCGGradedRelevance(t *testing.T) {
	t.Parallel()

	// (2^3-1)/log2(2) + (2^1-1)/log2(3)
	want := 7 + 1/math.Log2(3)
	if got := DCG([]float64{3, 1}); !near(got, want) {
		t.Errorf("DCG = %f, want %f", got, want)
	}
	if DCG(nil) != 0 {
		t.Error("DCG of empty list should be 0")
	}
}

type fixedScorer map[int][]float64

func (f fixedScorer) ScoreAll(u int) []float64 { return f[u] }

func TestEvaluate(t *testing.T) {
	t.Parallel()

	recipes := []recommend.Recipe{{ID: 1}, {ID: 2}, {ID: 3}}
	train := []recommend.Interaction{{UserID: 10, RecipeID: 1}, {UserID: 20, RecipeID: 2}}
	g, err := graph.Build(train, recipes, graph.Options{Logger: zerolog.Nop()})
	if err != nil {
		t.Fatal(err)
	}

	rating := 4.0
	test := []recommend.Interaction{
		{UserID: 10, RecipeID: 3, Rating: &rating},
		{UserID: 20, RecipeID: 1},
		{UserID: 99, RecipeID: 1},
	}
	scorer := fixedScorer{
		0: {0.1, 0.2, 0.9}, // user 10 ranks recipe 3 first
		1: {0.1, 0.9, 0.5}, // user 20 ranks recipe 1 last
	}

	report, err := New([]int{1, 3}).Evaluate(context.Background(), scorer, g, test)
	if err != nil {
		t.Fatal(err)
	}
	if report.Users != 2 || report.SkippedUsers != 1 {
		t.Errorf("users = %d skipped = %d, want 2 and 1", report.Users, report.SkippedUsers)
	}
	if got := report.Metrics["recall@1"]; !near(got, 0.5) {
		t.Errorf("recall@1 = %f, want 0.5", got)
	}
	if got := report.Metrics["recall@3"]; !near(got, 1) {
		t.Errorf("recall@3 = %f, want 1", got)
	}
	if got := report.Metrics["mrr"]; !near(got, (1+1.0/3)/2) {
		t.Errorf("mrr = %f", got)
	}
}

func TestEvaluateEmpty(t *testing.T) {
	t.Parallel()

	g, _ := graph.Build([]recommend.Interaction{}, []recommend.Recipe{}, graph.Options{})
	report, err := New([]int{10}).Evaluate(context.Background(), fixedScorer{}, g, nil)
	if err != nil {
		t.Fatal(err)
	}
	if report.Users != 0 || report.Metrics["ndcg@10"] != 0 || len(report.Metrics) != 3 {
		t.Errorf("empty report = %+v", report)
	}
}
