// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

/*
Package supervisor provides process supervision for SaveEat using suture v4.

Every long-running component runs under a hierarchical supervisor tree with
automatic restart, per-layer failure isolation and graceful shutdown:

	RootSupervisor ("saveeat")
	├── "data-layer"
	│   ├── wal.RetryLoop        republishes pending interaction entries
	│   └── wal.Compactor        removes confirmed and expired entries
	├── "messaging-layer"
	│   └── events.Consumer      writes InteractionLogged events to DuckDB
	├── "model-layer"
	│   ├── BundleReloadService  swaps in new checkpoints and store changes
	│   └── TrainingService      optional in-process retraining
	└── "api-layer"
	    └── HTTPServerService

A crash loop in the messaging layer backs off only that layer; the API
keeps answering from the last swapped serving bundle.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.Add(supervisor.LayerData, wal.NewRetryLoop(w, bus))
	tree.Add(supervisor.LayerMessaging, events.NewConsumer(bus, db, logger))
	tree.Add(supervisor.LayerModel, services.NewBundleReloadService(loader, interval, logger))
	tree.Add(supervisor.LayerAPI, services.NewHTTPServerService(server, 10*time.Second, logger))

	errCh := tree.ServeBackground(ctx)

Supervisor events are logged through sutureslog, bridged to zerolog by
logging.NewSlogLogger.

# Configuration

TreeConfig controls restart behavior. Zero values take suture's defaults:
5 failures before backoff, a 30s decay, a 15s backoff and a 10s shutdown
timeout per service.

# Not Supervised

DuckDB and BadgerDB are embedded libraries, opened and closed by main. The
event bus (and the embedded NATS server when enabled) is owned by
events.Bus, which reconnects on its own.

# Debugging Shutdown

UnstoppedServiceReport lists services that missed the shutdown timeout.
*/
package supervisor
