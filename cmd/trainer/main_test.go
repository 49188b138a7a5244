// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/saveeat/internal/recommend"
	"github.com/tomtom215/saveeat/internal/recommend/evaluation"
	"github.com/tomtom215/saveeat/internal/recommend/storage"
	"github.com/tomtom215/saveeat/internal/recommend/training"
)

func TestOptionsApply(t *testing.T) {
	t.Parallel()

	opts, err := parseFlags([]string{"-out", "/tmp/cp", "-epochs", "7", "-seed", "9", "-text-embeddings"})
	if err != nil {
		t.Fatal(err)
	}
	cfg := recommend.DefaultConfig()
	if err := opts.apply(cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Serving.CheckpointDir != "/tmp/cp" || cfg.Training.Epochs != 7 {
		t.Errorf("overrides not applied: dir=%q epochs=%d", cfg.Serving.CheckpointDir, cfg.Training.Epochs)
	}
	if cfg.Model.Seed != 9 || cfg.Training.Seed != 9 || !cfg.Model.UseTextEmbeddings {
		t.Errorf("seed/text overrides not applied: %+v %+v", cfg.Model, cfg.Training)
	}

	defaults := recommend.DefaultConfig()
	untouched := recommend.DefaultConfig()
	none, err := parseFlags(nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := none.apply(untouched); err != nil {
		t.Fatal(err)
	}
	if untouched.Training.Epochs != defaults.Training.Epochs || untouched.Serving.CheckpointDir != defaults.Serving.CheckpointDir {
		t.Error("unset flags changed the configuration")
	}
}

func TestParseFlagsRejectsUnknown(t *testing.T) {
	t.Parallel()
	if _, err := parseFlags([]string{"-bogus"}); err == nil {
		t.Error("expected error for unknown flag")
	}
}

func runResult(valLoss float64) *training.RunResult {
	return &training.RunResult{
		Checkpoint: &storage.Metadata{Version: 3, RunID: "run-1", HasReranker: true, TrainingDurationMS: 1200},
		Training:   &training.Result{Epochs: 4, BestEpoch: 2, BestValLoss: valLoss},
		Evaluation: &evaluation.Report{Metrics: map[string]float64{"mrr": 0.25}, Users: 10},
	}
}

func TestWriteReport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		valLoss float64
		wantVal bool
	}{
		{"finite validation loss", 0.42, true},
		{"no validation split", math.Inf(1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "report.json")
			if err := writeReport(path, runResult(tt.valLoss)); err != nil {
				t.Fatal(err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			var got report
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatal(err)
			}
			if got.Version != 3 || got.Metrics["mrr"] != 0.25 || !got.HasReranker {
				t.Errorf("report = %+v", got)
			}
			if (got.ValidationLoss != nil) != tt.wantVal {
				t.Errorf("validation loss present = %v, want %v", got.ValidationLoss != nil, tt.wantVal)
			}
		})
	}
}
