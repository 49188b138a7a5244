// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tomtom215/saveeat/docs"
	"github.com/tomtom215/saveeat/internal/api"
	"github.com/tomtom215/saveeat/internal/config"
	"github.com/tomtom215/saveeat/internal/database"
	"github.com/tomtom215/saveeat/internal/logging"
	"github.com/tomtom215/saveeat/internal/supervisor"
	"github.com/tomtom215/saveeat/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default: search CONFIG_PATH and standard locations)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.Logging.ToLogging())
	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Bool("wal_enabled", cfg.WAL.Enabled).
		Bool("nats_enabled", cfg.Messaging.Enabled).
		Bool("training_enabled", cfg.Recommend.Training.Enabled).
		Msg("Starting SaveEat with supervisor tree")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	if err := importIfEmpty(ctx, db, &cfg.Database); err != nil {
		logging.Error().Err(err).Msg("Food.com import failed, continuing with existing data")
	}

	msg, err := initMessaging(ctx, cfg)
	if err != nil {
		// Fatal skips deferred calls; close the database first.
		if closeErr := db.Close(); closeErr != nil {
			logging.Error().Err(closeErr).Msg("Error closing database")
		}
		logging.Fatal().Err(err).Msg("Failed to initialize messaging")
	}
	defer msg.Close()

	rec, err := initRecommend(cfg, db)
	if err != nil {
		msg.Close()
		if closeErr := db.Close(); closeErr != nil {
			logging.Error().Err(closeErr).Msg("Error closing database")
		}
		logging.Fatal().Err(err).Msg("Failed to initialize recommendation engine")
	}

	handler := api.NewHandler(api.Dependencies{
		Store:        db,
		Recommender:  rec.engine,
		Interactions: msg.ingestor,
		Reloader:     rec.loader,
		Bus:          msg.bus,
		Version:      version,
	})
	mwConfig := api.DefaultMiddlewareConfig()
	mwConfig.CORSOrigins = cfg.Security.CORSOrigins
	mwConfig.API = api.RateLimit{Requests: cfg.Security.RateLimitReqs, Window: cfg.Security.RateLimitWindow}
	mwConfig.DisableRateLimit = cfg.Security.RateLimitDisabled
	mw := api.NewMiddleware(mwConfig)
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	router := api.NewRouter(handler, mw)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	msg.addToTree(tree, db)
	rec.addToTree(tree)
	tree.Add(supervisor.LayerAPI, services.NewHTTPServerService(server, 10*time.Second, logging.Logger()))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Received shutdown signal, waiting for supervisor to finish...")
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
