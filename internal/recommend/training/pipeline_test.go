// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package training

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/saveeat/internal/recommend"
	"github.com/tomtom215/saveeat/internal/recommend/storage"
)

type fakeSource struct {
	recipes      []recommend.Recipe
	interactions []recommend.Interaction
	err          error
}

func (f *fakeSource) ListRecipes(context.Context) ([]recommend.Recipe, error) {
	return f.recipes, f.err
}

func (f *fakeSource) ListInteractions(context.Context) ([]recommend.Interaction, error) {
	return f.interactions, f.err
}

func pipelineConfig() *recommend.Config {
	cfg := recommend.DefaultConfig()
	cfg.Model, cfg.Training = smallConfigs()
	cfg.Training.Epochs = 5
	cfg.Training.MinUserInteractions = 1
	cfg.Training.MinRecipeRatings = 1
	cfg.Reranker.HiddenDims = []int{8}
	cfg.Reranker.Epochs = 2
	cfg.Reranker.MinSamples = 4
	return cfg
}

// contextLogs records users 1..4 liking recipe 1 and only viewing recipe 5.
func contextLogs() []recommend.LoggedInteraction {
	var logs []recommend.LoggedInteraction
	for u := int64(1); u <= 4; u++ {
		logs = append(logs,
			recommend.LoggedInteraction{UserID: u, RecipeID: 1, Type: recommend.InteractionLike, AvailableIngredients: []string{"egg", "flour"}},
			recommend.LoggedInteraction{UserID: u, RecipeID: 5, Type: recommend.InteractionView, AvailableIngredients: []string{"egg", "flour"}},
		)
	}
	return logs
}

func TestPipelineRun(t *testing.T) {
	t.Parallel()

	interactions, recipes := synthetic()
	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	p := &Pipeline{
		Config: pipelineConfig(),
		Source: &fakeSource{recipes: recipes, interactions: interactions},
		Saver:  store,
		Logs: func(context.Context) ([]recommend.LoggedInteraction, error) {
			return contextLogs(), nil
		},
		Logger: zerolog.Nop(),
	}

	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Checkpoint.Version != 1 || res.Checkpoint.RunID == "" {
		t.Errorf("checkpoint metadata = %+v", res.Checkpoint)
	}
	if !res.Checkpoint.HasReranker || len(res.RerankerLoss) != 2 {
		t.Errorf("re-ranker not fitted: has=%v loss=%v", res.Checkpoint.HasReranker, res.RerankerLoss)
	}
	if _, ok := res.Evaluation.Metrics["ndcg@10"]; !ok {
		t.Errorf("evaluation metrics = %v", res.Evaluation.Metrics)
	}
	if res.Training.Epochs == 0 {
		t.Error("no epochs recorded")
	}

	cp, err := store.Load(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	restored, err := cp.Restore()
	if err != nil {
		t.Fatal(err)
	}
	if restored.Reranker == nil {
		t.Error("restored checkpoint lacks re-ranker")
	}
	if cp.Metadata.Metrics["mrr"] != res.Evaluation.Metrics["mrr"] {
		t.Errorf("stored mrr %f != evaluated %f", cp.Metadata.Metrics["mrr"], res.Evaluation.Metrics["mrr"])
	}
}

func TestPipelinePrunesCheckpoints(t *testing.T) {
	t.Parallel()

	interactions, recipes := synthetic()
	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cfg := pipelineConfig()
	cfg.Training.Epochs = 1
	cfg.Serving.KeepCheckpoints = 2
	p := &Pipeline{
		Config: cfg,
		Source: &fakeSource{recipes: recipes, interactions: interactions},
		Saver:  store,
		Logger: zerolog.Nop(),
	}

	wantPruned := []int{0, 0, 1}
	for i, want := range wantPruned {
		res, err := p.Run(context.Background())
		if err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
		if res.Pruned != want {
			t.Errorf("run %d pruned %d checkpoints, want %d", i+1, res.Pruned, want)
		}
	}
	vs, err := store.Versions()
	if err != nil || !slices.Equal(vs, []int{2, 3}) {
		t.Errorf("versions = %v, %v; want [2 3]", vs, err)
	}
}

func TestPipelineSkipsReranker(t *testing.T) {
	t.Parallel()

	interactions, recipes := synthetic()
	tests := []struct {
		name       string
		logs       LogSource
		minSamples int
	}{
		{"no log source", nil, 4},
		{"too few samples", func(context.Context) ([]recommend.LoggedInteraction, error) { return contextLogs(), nil }, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store, err := storage.NewStore(t.TempDir())
			if err != nil {
				t.Fatal(err)
			}
			cfg := pipelineConfig()
			cfg.Reranker.MinSamples = tt.minSamples
			p := &Pipeline{
				Config: cfg,
				Source: &fakeSource{recipes: recipes, interactions: interactions},
				Saver:  store,
				Logs:   tt.logs,
				Logger: zerolog.Nop(),
			}
			res, err := p.Run(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if res.Checkpoint.HasReranker {
				t.Error("unexpected re-ranker")
			}
		})
	}
}

func TestPipelineErrors(t *testing.T) {
	t.Parallel()

	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	empty := &Pipeline{Config: pipelineConfig(), Source: &fakeSource{recipes: []recommend.Recipe{}, interactions: []recommend.Interaction{}}, Saver: store, Logger: zerolog.Nop()}
	if _, err := empty.Run(context.Background()); !errors.Is(err, ErrNoTrainingData) {
		t.Errorf("empty store err = %v, want ErrNoTrainingData", err)
	}

	boom := errors.New("store offline")
	broken := &Pipeline{Config: pipelineConfig(), Source: &fakeSource{err: boom}, Saver: store, Logger: zerolog.Nop()}
	if _, err := broken.Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("source err = %v, want wrapped %v", err, boom)
	}

	if vs, _ := store.Versions(); len(vs) != 0 {
		t.Errorf("failed runs wrote checkpoints: %v", vs)
	}
}
