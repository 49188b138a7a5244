// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

/*
Package main is the offline training job.

It reads recipes and interactions from the DuckDB store, trains the graph
model, evaluates it on the held-out split, fits the contextual re-ranker
when enough logged interactions carry available ingredients, and writes a
new checkpoint version. A running server picks the checkpoint up on its
next bundle reload.

	go run ./cmd/trainer -epochs 30 -out ./checkpoints -report run.json

Configuration is loaded exactly as the server loads it; flags override
the loaded values.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"

	"github.com/tomtom215/saveeat/internal/config"
	"github.com/tomtom215/saveeat/internal/database"
	"github.com/tomtom215/saveeat/internal/logging"
	"github.com/tomtom215/saveeat/internal/recommend"
	"github.com/tomtom215/saveeat/internal/recommend/storage"
	"github.com/tomtom215/saveeat/internal/recommend/training"
)

type options struct {
	configPath     string
	outDir         string
	reportPath     string
	epochs         int
	seed           int64
	textEmbeddings bool
	noReranker     bool
}

func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet("trainer", flag.ContinueOnError)
	o := &options{}
	fs.StringVar(&o.configPath, "config", "", "path to a YAML config file")
	fs.StringVar(&o.outDir, "out", "", "checkpoint directory (default: recommend.serving.checkpoint_dir)")
	fs.StringVar(&o.reportPath, "report", "", "write the run summary as JSON to this file")
	fs.IntVar(&o.epochs, "epochs", 0, "maximum epochs (default: recommend.training.epochs)")
	fs.Int64Var(&o.seed, "seed", 0, "seed for initialization and sampling (default: from config)")
	fs.BoolVar(&o.textEmbeddings, "text-embeddings", false, "add hashed recipe text embeddings")
	fs.BoolVar(&o.noReranker, "no-reranker", false, "skip fitting the contextual re-ranker")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return o, nil
}

// apply overrides cfg with the flags that were set.
func (o *options) apply(cfg *recommend.Config) error {
	if o.outDir != "" {
		cfg.Serving.CheckpointDir = o.outDir
	}
	if o.epochs > 0 {
		cfg.Training.Epochs = o.epochs
	}
	if o.seed != 0 {
		cfg.Model.Seed = o.seed
		cfg.Training.Seed = o.seed
	}
	if o.textEmbeddings {
		cfg.Model.UseTextEmbeddings = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid training configuration: %w", err)
	}
	return nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		logging.Error().Err(err).Msg("Training failed")
		os.Exit(1)
	}
}

func run(opts *options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logging.Init(cfg.Logging.ToLogging())

	rc := cfg.Recommend.Clone()
	if err := opts.apply(rc); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	store, err := storage.NewStore(rc.Serving.CheckpointDir)
	if err != nil {
		return err
	}

	p := &training.Pipeline{
		Config: rc,
		Source: db,
		Saver:  store,
		Logger: logging.Logger(),
	}
	if !opts.noReranker {
		p.Logs = func(ctx context.Context) ([]recommend.LoggedInteraction, error) {
			return db.LoggedInteractions(ctx, database.LoggedFilter{WithIngredients: true})
		}
	}

	logging.Info().
		Str("checkpoint_dir", store.Dir()).
		Int("epochs", rc.Training.Epochs).
		Int64("seed", rc.Training.Seed).
		Bool("text_embeddings", rc.Model.UseTextEmbeddings).
		Bool("reranker", p.Logs != nil).
		Msg("Starting offline training")

	res, err := p.Run(ctx)
	if err != nil {
		return err
	}

	logging.Info().
		Int("version", res.Checkpoint.Version).
		Int("epochs", res.Training.Epochs).
		Int("best_epoch", res.Training.BestEpoch).
		Bool("stopped_early", res.Training.StoppedEarly).
		Bool("reranker", res.Checkpoint.HasReranker).
		Interface("metrics", res.Evaluation.Metrics).
		Msg("Training complete")

	if opts.reportPath != "" {
		return writeReport(opts.reportPath, res)
	}
	return nil
}

// report is the JSON run summary. Validation loss is omitted when no
// validation split was available.
type report struct {
	Version        int                `json:"version"`
	RunID          string             `json:"run_id"`
	Epochs         int                `json:"epochs"`
	BestEpoch      int                `json:"best_epoch"`
	StoppedEarly   bool               `json:"stopped_early"`
	ValidationLoss *float64           `json:"validation_loss,omitempty"`
	Metrics        map[string]float64 `json:"metrics"`
	EvaluatedUsers int                `json:"evaluated_users"`
	HasReranker    bool               `json:"has_reranker"`
	RerankerLoss   []float64          `json:"reranker_loss,omitempty"`
	DurationMS     int64              `json:"duration_ms"`
}

func newReport(res *training.RunResult) report {
	r := report{
		Version:        res.Checkpoint.Version,
		RunID:          res.Checkpoint.RunID,
		Epochs:         res.Training.Epochs,
		BestEpoch:      res.Training.BestEpoch,
		StoppedEarly:   res.Training.StoppedEarly,
		Metrics:        res.Evaluation.Metrics,
		EvaluatedUsers: res.Evaluation.Users,
		HasReranker:    res.Checkpoint.HasReranker,
		RerankerLoss:   res.RerankerLoss,
		DurationMS:     res.Checkpoint.TrainingDurationMS,
	}
	if loss := res.Training.BestValLoss; !math.IsInf(loss, 0) && !math.IsNaN(loss) {
		r.ValidationLoss = &loss
	}
	return r
}

func writeReport(path string, res *training.RunResult) error {
	data, err := json.MarshalIndent(newReport(res), "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
