// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package recommend

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Model contains embedding propagation hyperparameters.
	Model ModelConfig `koanf:"model" json:"model"`

	// Training contains training loop and data preparation parameters.
	Training TrainingConfig `koanf:"training" json:"training"`

	// Reranker contains contextual re-ranker parameters.
	Reranker RerankerConfig `koanf:"reranker" json:"reranker"`

	// Fallback contains heuristic scorer weights.
	Fallback FallbackConfig `koanf:"fallback" json:"fallback"`

	// Serving contains bundle reload, cache and circuit breaker settings.
	Serving ServingConfig `koanf:"serving" json:"serving"`
}

// ModelConfig contains embedding propagation hyperparameters.
type ModelConfig struct {
	// EmbeddingDim is the dimension d of every entity embedding.
	// Default: 128
	EmbeddingDim int `koanf:"embedding_dim" json:"embedding_dim"`

	// HiddenDim is the width of intermediate propagation layers.
	// Default: 256
	HiddenDim int `koanf:"hidden_dim" json:"hidden_dim"`

	// NumLayers is the number of message-passing rounds.
	// Default: 2
	NumLayers int `koanf:"num_layers" json:"num_layers"`

	// Dropout is applied after every non-final layer during training.
	// Default: 0.3
	Dropout float64 `koanf:"dropout" json:"dropout"`

	// Activation is "relu" or "gelu".
	// Default: relu
	Activation string `koanf:"activation" json:"activation"`

	// InitStd is the standard deviation of embedding initialization.
	// Default: 0.1
	InitStd float64 `koanf:"init_std" json:"init_std"`

	// DefaultRating is the edge weight of interactions without a rating.
	// Default: 3.0
	DefaultRating float64 `koanf:"default_rating" json:"default_rating"`

	// UseTextEmbeddings adds hashed recipe text embeddings to recipe inputs.
	// Default: false
	UseTextEmbeddings bool `koanf:"use_text_embeddings" json:"use_text_embeddings"`

	// Seed drives parameter initialization.
	// Default: 42
	Seed int64 `koanf:"seed" json:"seed"`
}

// TrainingConfig contains training loop and data preparation parameters.
type TrainingConfig struct {
	// Epochs is the maximum number of epochs.
	// Default: 50
	Epochs int `koanf:"epochs" json:"epochs"`

	// BatchSize is the number of (user, recipe, label) triples per step.
	// Default: 512
	BatchSize int `koanf:"batch_size" json:"batch_size"`

	// NegativeSamples is the number of negatives drawn per positive.
	// Default: 5
	NegativeSamples int `koanf:"negative_samples" json:"negative_samples"`

	// LearningRate is the AdamW step size.
	// Default: 0.001
	LearningRate float64 `koanf:"learning_rate" json:"learning_rate"`

	// WeightDecay is the decoupled AdamW weight decay.
	// Default: 0.0001
	WeightDecay float64 `koanf:"weight_decay" json:"weight_decay"`

	// Patience is the number of epochs without validation improvement
	// tolerated before stopping.
	// Default: 5
	Patience int `koanf:"patience" json:"patience"`

	// MaxValidationUsers bounds the validation user subset per epoch.
	// Default: 100
	MaxValidationUsers int `koanf:"max_validation_users" json:"max_validation_users"`

	// TrainRatio, ValRatio and TestRatio define the chronological split.
	// Default: 0.7 / 0.15 / 0.15
	TrainRatio float64 `koanf:"train_ratio" json:"train_ratio"`
	ValRatio   float64 `koanf:"val_ratio" json:"val_ratio"`
	TestRatio  float64 `koanf:"test_ratio" json:"test_ratio"`

	// MinUserInteractions drops users with fewer interactions.
	// Default: 5
	MinUserInteractions int `koanf:"min_user_interactions" json:"min_user_interactions"`

	// MinRecipeRatings drops recipes with fewer interactions.
	// Default: 3
	MinRecipeRatings int `koanf:"min_recipe_ratings" json:"min_recipe_ratings"`

	// LRScheduler halves the learning rate when validation loss plateaus.
	// Default: false
	LRScheduler bool `koanf:"lr_scheduler" json:"lr_scheduler"`

	// SchedulerFactor multiplies the learning rate on a plateau.
	// Default: 0.5
	SchedulerFactor float64 `koanf:"scheduler_factor" json:"scheduler_factor"`

	// SchedulerPatience is the number of non-improving epochs before a
	// learning rate reduction.
	// Default: 3
	SchedulerPatience int `koanf:"scheduler_patience" json:"scheduler_patience"`

	// EvalTopK lists the cutoffs reported by evaluation.
	// Default: [10, 20, 50]
	EvalTopK []int `koanf:"eval_top_k" json:"eval_top_k"`

	// Seed drives negative sampling and shuffling.
	// Default: 42
	Seed int64 `koanf:"seed" json:"seed"`

	// Enabled runs the in-process training service.
	// Default: false
	Enabled bool `koanf:"enabled" json:"enabled"`

	// Interval between in-process training runs.
	// Default: 24h
	Interval time.Duration `koanf:"interval" json:"interval"`

	// Timeout bounds a single in-process training run.
	// Default: 30m
	Timeout time.Duration `koanf:"timeout" json:"timeout"`
}

// RerankerConfig contains contextual re-ranker parameters.
type RerankerConfig struct {
	// ContextDim is the fixed context vector dimension c.
	// Default: 50
	ContextDim int `koanf:"context_dim" json:"context_dim"`

	// HiddenDims lists the hidden layer widths.
	// Default: [256, 128, 64]
	HiddenDims []int `koanf:"hidden_dims" json:"hidden_dims"`

	// Dropout is applied after every hidden layer during training.
	// Default: 0.2
	Dropout float64 `koanf:"dropout" json:"dropout"`

	// CandidateMultiplier sets the candidate pool size as a multiple of top_k.
	// Default: 2
	CandidateMultiplier int `koanf:"candidate_multiplier" json:"candidate_multiplier"`

	// Epochs is the number of re-ranker fitting epochs.
	// Default: 10
	Epochs int `koanf:"epochs" json:"epochs"`

	// LearningRate is the re-ranker AdamW step size.
	// Default: 0.001
	LearningRate float64 `koanf:"learning_rate" json:"learning_rate"`

	// MinSamples is the minimum number of logged samples needed to fit.
	// Default: 50
	MinSamples int `koanf:"min_samples" json:"min_samples"`
}

// FallbackConfig contains the heuristic scorer constants.
type FallbackConfig struct {
	// CoverageWeight multiplies used / available ingredients.
	// Default: 0.65
	CoverageWeight float64 `koanf:"coverage_weight" json:"coverage_weight"`

	// MatchWeight multiplies used / recipe ingredients.
	// Default: 0.25
	MatchWeight float64 `koanf:"match_weight" json:"match_weight"`

	// PopularityWeight multiplies normalized mean rating.
	// Default: 0.10
	PopularityWeight float64 `koanf:"popularity_weight" json:"popularity_weight"`

	// CompletenessBonus is added when every recipe ingredient is available.
	// Default: 0.20
	CompletenessBonus float64 `koanf:"completeness_bonus" json:"completeness_bonus"`

	// MinMatchRatio is the candidate threshold on used / recipe ingredients.
	// Default: 0.2
	MinMatchRatio float64 `koanf:"min_match_ratio" json:"min_match_ratio"`

	// DefaultPopularityMax normalizes popularity when no recipe is rated.
	// Default: 5.0
	DefaultPopularityMax float64 `koanf:"default_popularity_max" json:"default_popularity_max"`
}

// ServingConfig contains serving-path settings.
type ServingConfig struct {
	// CheckpointDir holds versioned model bundles.
	// Default: ./checkpoints
	CheckpointDir string `koanf:"checkpoint_dir" json:"checkpoint_dir"`

	// KeepCheckpoints is how many of the newest checkpoints survive a
	// successful training run.
	// Default: 5
	KeepCheckpoints int `koanf:"keep_checkpoints" json:"keep_checkpoints"`

	// ReloadInterval is how often the bundle watcher polls for changes.
	// Default: 1m
	ReloadInterval time.Duration `koanf:"reload_interval" json:"reload_interval"`

	// ReloadBurst and ReloadPerMinute throttle forced reloads.
	// Default: 2 / 6
	ReloadBurst     int     `koanf:"reload_burst" json:"reload_burst"`
	ReloadPerMinute float64 `koanf:"reload_per_minute" json:"reload_per_minute"`

	// CacheTTL is the response cache lifetime. Zero disables caching.
	// Default: 5m
	CacheTTL time.Duration `koanf:"cache_ttl" json:"cache_ttl"`

	// CacheSize is the maximum number of cached responses.
	// Default: 1000
	CacheSize int `koanf:"cache_size" json:"cache_size"`

	// BreakerMaxFailures trips the model-path circuit breaker.
	// Default: 5
	BreakerMaxFailures uint32 `koanf:"breaker_max_failures" json:"breaker_max_failures"`

	// BreakerTimeout is how long the breaker stays open.
	// Default: 30s
	BreakerTimeout time.Duration `koanf:"breaker_timeout" json:"breaker_timeout"`

	// DefaultTopK is used when a request omits top_k.
	// Default: 10
	DefaultTopK int `koanf:"default_top_k" json:"default_top_k"`

	// MaxTopK caps top_k.
	// Default: 100
	MaxTopK int `koanf:"max_top_k" json:"max_top_k"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			EmbeddingDim:  128,
			HiddenDim:     256,
			NumLayers:     2,
			Dropout:       0.3,
			Activation:    "relu",
			InitStd:       0.1,
			DefaultRating: DefaultRating,
			Seed:          42,
		},
		Training: TrainingConfig{
			Epochs:              50,
			BatchSize:           512,
			NegativeSamples:     5,
			LearningRate:        0.001,
			WeightDecay:         1e-4,
			Patience:            5,
			MaxValidationUsers:  100,
			TrainRatio:          0.7,
			ValRatio:            0.15,
			TestRatio:           0.15,
			MinUserInteractions: 5,
			MinRecipeRatings:    3,
			SchedulerFactor:     0.5,
			SchedulerPatience:   3,
			EvalTopK:            []int{10, 20, 50},
			Seed:                42,
			Interval:            24 * time.Hour,
			Timeout:             30 * time.Minute,
		},
		Reranker: RerankerConfig{
			ContextDim:          50,
			HiddenDims:          []int{256, 128, 64},
			Dropout:             0.2,
			CandidateMultiplier: 2,
			Epochs:              10,
			LearningRate:        0.001,
			MinSamples:          50,
		},
		Fallback: FallbackConfig{
			CoverageWeight:       0.65,
			MatchWeight:          0.25,
			PopularityWeight:     0.10,
			CompletenessBonus:    0.20,
			MinMatchRatio:        0.2,
			DefaultPopularityMax: 5.0,
		},
		Serving: ServingConfig{
			CheckpointDir:      "./checkpoints",
			KeepCheckpoints:    5,
			ReloadInterval:     time.Minute,
			ReloadBurst:        2,
			ReloadPerMinute:    6,
			CacheTTL:           5 * time.Minute,
			CacheSize:          1000,
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
			DefaultTopK:        10,
			MaxTopK:            100,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	m := c.Model
	if m.EmbeddingDim < 1 {
		return fmt.Errorf("model.embedding_dim must be positive, got %d", m.EmbeddingDim)
	}
	if m.HiddenDim < 1 {
		return fmt.Errorf("model.hidden_dim must be positive, got %d", m.HiddenDim)
	}
	if m.NumLayers < 1 || m.NumLayers > 8 {
		return fmt.Errorf("model.num_layers must be in [1, 8], got %d", m.NumLayers)
	}
	if m.Dropout < 0 || m.Dropout >= 1 {
		return fmt.Errorf("model.dropout must be in [0, 1), got %f", m.Dropout)
	}
	if m.Activation != "" && m.Activation != "relu" && m.Activation != "gelu" {
		return fmt.Errorf("model.activation must be relu or gelu, got %q", m.Activation)
	}
	if m.InitStd <= 0 {
		return fmt.Errorf("model.init_std must be positive, got %f", m.InitStd)
	}

	t := c.Training
	if t.Epochs < 1 {
		return fmt.Errorf("training.epochs must be positive, got %d", t.Epochs)
	}
	if t.BatchSize < 1 {
		return fmt.Errorf("training.batch_size must be positive, got %d", t.BatchSize)
	}
	if t.NegativeSamples < 0 {
		return fmt.Errorf("training.negative_samples must be non-negative, got %d", t.NegativeSamples)
	}
	if t.LearningRate <= 0 {
		return fmt.Errorf("training.learning_rate must be positive, got %f", t.LearningRate)
	}
	if t.WeightDecay < 0 {
		return fmt.Errorf("training.weight_decay must be non-negative, got %f", t.WeightDecay)
	}
	if t.Patience < 1 {
		return fmt.Errorf("training.patience must be positive, got %d", t.Patience)
	}
	if t.TrainRatio <= 0 || t.ValRatio < 0 || t.TestRatio < 0 {
		return fmt.Errorf("training split ratios must be non-negative with a positive train ratio")
	}
	if sum := t.TrainRatio + t.ValRatio + t.TestRatio; math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("training split ratios must sum to 1, got %f", sum)
	}
	if t.LRScheduler && (t.SchedulerFactor <= 0 || t.SchedulerFactor >= 1 || t.SchedulerPatience < 1) {
		return fmt.Errorf("training scheduler needs factor in (0, 1) and positive patience")
	}
	if slices.ContainsFunc(t.EvalTopK, func(k int) bool { return k < 1 }) {
		return fmt.Errorf("training.eval_top_k entries must be positive, got %v", t.EvalTopK)
	}
	if t.Enabled && t.Interval <= 0 {
		return fmt.Errorf("training.interval must be positive when training is enabled, got %v", t.Interval)
	}

	r := c.Reranker
	if r.ContextDim < 3 {
		return fmt.Errorf("reranker.context_dim must be at least 3, got %d", r.ContextDim)
	}
	if slices.ContainsFunc(r.HiddenDims, func(h int) bool { return h < 1 }) {
		return fmt.Errorf("reranker.hidden_dims entries must be positive, got %v", r.HiddenDims)
	}
	if r.Dropout < 0 || r.Dropout >= 1 {
		return fmt.Errorf("reranker.dropout must be in [0, 1), got %f", r.Dropout)
	}
	if r.CandidateMultiplier < 1 {
		return fmt.Errorf("reranker.candidate_multiplier must be positive, got %d", r.CandidateMultiplier)
	}

	f := c.Fallback
	if f.CoverageWeight < 0 || f.MatchWeight < 0 || f.PopularityWeight < 0 || f.CompletenessBonus < 0 {
		return fmt.Errorf("fallback weights must be non-negative")
	}
	if f.MinMatchRatio < 0 || f.MinMatchRatio > 1 {
		return fmt.Errorf("fallback.min_match_ratio must be in [0, 1], got %f", f.MinMatchRatio)
	}
	if f.DefaultPopularityMax <= 0 {
		return fmt.Errorf("fallback.default_popularity_max must be positive, got %f", f.DefaultPopularityMax)
	}

	s := c.Serving
	if s.DefaultTopK < 1 {
		return fmt.Errorf("serving.default_top_k must be positive, got %d", s.DefaultTopK)
	}
	if s.MaxTopK < s.DefaultTopK {
		return fmt.Errorf("serving.max_top_k must be >= serving.default_top_k, got %d < %d", s.MaxTopK, s.DefaultTopK)
	}
	if s.KeepCheckpoints < 1 {
		return fmt.Errorf("serving.keep_checkpoints must be positive, got %d", s.KeepCheckpoints)
	}
	if s.CacheTTL < 0 {
		return fmt.Errorf("serving.cache_ttl must be non-negative, got %v", s.CacheTTL)
	}
	if s.CacheTTL > 0 && s.CacheSize < 1 {
		return fmt.Errorf("serving.cache_size must be positive when caching is enabled, got %d", s.CacheSize)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Training.EvalTopK = slices.Clone(c.Training.EvalTopK)
	clone.Reranker.HiddenDims = slices.Clone(c.Reranker.HiddenDims)
	return &clone
}
