// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package storage

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/tomtom215/saveeat/internal/recommend"
	"github.com/tomtom215/saveeat/internal/recommend/graph"
	"github.com/tomtom215/saveeat/internal/recommend/model"
	"github.com/tomtom215/saveeat/internal/recommend/nn"
	"github.com/tomtom215/saveeat/internal/recommend/reranking"
)

// FormatVersion is the on-disk format written by this package.
const FormatVersion = 1

var (
	// ErrChecksumMismatch is returned when a payload fails verification.
	ErrChecksumMismatch = errors.New("checkpoint checksum mismatch")

	// ErrUnsupportedVersion is returned for an unknown format version.
	ErrUnsupportedVersion = errors.New("unsupported checkpoint format version")

	// ErrNoCheckpoint is returned when the store holds no checkpoint.
	ErrNoCheckpoint = errors.New("no checkpoint found")

	// ErrIncomplete is returned when a checkpoint lacks model or graph state.
	ErrIncomplete = errors.New("checkpoint is incomplete")
)

// Metadata describes a stored checkpoint.
type Metadata struct {
	// RunID identifies the training run that produced the checkpoint.
	RunID string `json:"run_id"`

	// Version is the checkpoint version (monotonically increasing).
	Version int `json:"version"`

	// FormatVersion is the on-disk format version.
	FormatVersion int `json:"format_version"`

	// Epoch is the number of epochs trained.
	Epoch int `json:"epoch"`

	// BestEpoch is the epoch whose parameters were kept.
	BestEpoch int `json:"best_epoch"`

	// ValidationLoss is the best validation loss, +Inf when none was computed.
	ValidationLoss float64 `json:"validation_loss"`

	// Metrics holds evaluation results keyed like "ndcg@10".
	Metrics map[string]float64 `json:"metrics,omitempty"`

	// TrainedAt is when training finished.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the checkpoint was written.
	SavedAt time.Time `json:"saved_at"`

	// Users, Recipes and Ingredients are the graph node counts.
	Users       int `json:"users"`
	Recipes     int `json:"recipes"`
	Ingredients int `json:"ingredients"`

	// Interactions is the number of training edges.
	Interactions int `json:"interactions"`

	// HasReranker reports whether re-ranker parameters are included.
	HasReranker bool `json:"has_reranker"`

	// Checksum is the SHA-256 checksum of the uncompressed payload.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed payload size in bytes.
	SizeBytes int64 `json:"size_bytes"`

	// TrainingDurationMS is how long training took.
	TrainingDurationMS int64 `json:"training_duration_ms"`
}

// RerankerState is the serializable state of a contextual re-ranker.
type RerankerState struct {
	Config recommend.RerankerConfig
	Params map[string]nn.Tensor
}

// Checkpoint is a complete, self-describing model bundle.
type Checkpoint struct {
	Metadata Metadata
	Model    recommend.ModelConfig
	Params   map[string]nn.Tensor
	Reranker *RerankerState
	Graph    *graph.Snapshot
}

// NewCheckpoint captures the current state of m, g and the optional
// re-ranker. Node counts are filled into meta.
//
//nolint:gocritic // meta passed by value, it is copied into the checkpoint
func NewCheckpoint(m *model.Model, g *graph.Graph, rr *reranking.Reranker, meta Metadata) *Checkpoint {
	meta.Users = g.NumUsers()
	meta.Recipes = g.NumRecipes()
	meta.Ingredients = g.NumIngredients()
	meta.Interactions = len(g.Interacts.Src)
	meta.Metrics = maps.Clone(meta.Metrics)

	cp := &Checkpoint{
		Metadata: meta,
		Model:    m.Config(),
		Params:   m.StateDict(),
		Graph:    g.Snapshot(),
	}
	if rr != nil {
		cp.Reranker = &RerankerState{Config: rr.Config(), Params: rr.StateDict()}
		cp.Metadata.HasReranker = true
	}
	return cp
}

// Restored holds the live objects rebuilt from a checkpoint.
type Restored struct {
	Model    *model.Model
	Graph    *graph.Graph
	Reranker *reranking.Reranker
}

// Restore rebuilds the graph, model and optional re-ranker. Tensor shapes
// must match the graph's node counts.
func (c *Checkpoint) Restore() (*Restored, error) {
	if c.Graph == nil || len(c.Params) == 0 {
		return nil, ErrIncomplete
	}
	g, err := graph.FromSnapshot(c.Graph)
	if err != nil {
		return nil, fmt.Errorf("restore graph: %w", err)
	}
	m, err := model.New(c.Model, g.NumUsers(), g.NumRecipes(), g.NumIngredients())
	if err != nil {
		return nil, fmt.Errorf("restore model: %w", err)
	}
	if err := m.LoadStateDict(c.Params); err != nil {
		return nil, fmt.Errorf("load model parameters: %w", err)
	}

	out := &Restored{Model: m, Graph: g}
	if c.Reranker != nil {
		rr := reranking.New(c.Reranker.Config, 0)
		if err := rr.LoadStateDict(c.Reranker.Params); err != nil {
			return nil, fmt.Errorf("load re-ranker parameters: %w", err)
		}
		out.Reranker = rr
	}
	return out, nil
}
