// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

/*
Package main is the entry point for the SaveEat server.

SaveEat recommends recipes from the ingredients a user has on hand. A
graph model learned from historical ratings ranks recipes for known users;
cold-start users and degraded requests are answered by a heuristic
ingredient-match scorer. Dietary and allergy constraints are enforced on
both paths.

# Application Architecture

The server runs under Suture v4 process supervision:

	RootSupervisor ("saveeat")
	├── DataSupervisor ("data-layer")
	│   ├── WAL retry loop (WAL_ENABLED=true)
	│   └── WAL compactor (WAL_ENABLED=true)
	├── MessagingSupervisor ("messaging-layer")
	│   └── Event consumer (bus -> DuckDB interaction log)
	├── ModelSupervisor ("model-layer")
	│   ├── Bundle reloader (checkpoint and store change watcher)
	│   └── Training service (TRAINING_ENABLED=true)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Database: DuckDB, with an optional Food.com import into an empty store
 4. Messaging: BadgerDB WAL and the event bus (in-process or NATS JetStream)
 5. Recommendation: engine, checkpoint store and bundle loader
 6. Supervisor Tree: Suture v4 process supervision
 7. HTTP Server: Chi router with middleware stack

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority wins):

	Priority: Environment variables > Config file > Defaults

Every variable may carry a SAVEEAT_ prefix. Core environment variables:

	# Server
	HTTP_PORT=8000
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	# Store
	DUCKDB_PATH=data/saveeat.duckdb
	IMPORT_RECIPES_CSV=/data/RAW_recipes.csv
	IMPORT_REVIEWS_CSV=/data/RAW_interactions.csv

	# Interaction pipeline
	WAL_ENABLED=true
	NATS_ENABLED=false           # false: in-process bus
	NATS_EMBEDDED=true           # start nats-server inside the process

	# Model
	CHECKPOINT_DIR=./checkpoints
	RELOAD_INTERVAL=1m
	TRAINING_ENABLED=false

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:

 1. Stops accepting new HTTP connections and drains in-flight requests
 2. Stops the bundle reloader and any running training job
 3. Stops the event consumer and WAL services
 4. Closes the event bus, the WAL and the database
 5. Reports any services that failed to stop

# Usage Examples

Development:

	export LOG_FORMAT=console
	export IMPORT_RECIPES_CSV=./data/RAW_recipes.csv IMPORT_REVIEWS_CSV=./data/RAW_interactions.csv
	go run ./cmd/server

With in-process training and an embedded NATS server:

	export TRAINING_ENABLED=true NATS_ENABLED=true NATS_EMBEDDED=true
	./saveeat

Offline training is also available as a separate binary, see cmd/trainer.

# API Documentation

Swagger documentation is available at /swagger/index.html when the server
is running.

# See Also

  - internal/config: Configuration management
  - internal/supervisor: Process supervision
  - internal/api: HTTP handlers and routing
  - internal/recommend: Recommendation engine
*/
package main
