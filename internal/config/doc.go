// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

/*
Package config loads the SaveEat configuration.

# Configuration Sources

Configuration is layered with koanf, later layers overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. A YAML file: the path given to Load, else CONFIG_PATH, else
    ./config.yaml, ./config.yml, /etc/saveeat/config.yaml
 3. Environment variables, through an explicit mapping. Every variable may
    carry an optional SAVEEAT_ prefix.

The merged result is validated before it is returned, including the WAL,
messaging and recommendation sections, which own their Validate methods.

# Environment Variables

HTTP Server:
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_PORT: Listen port (default: 8000)
  - HTTP_TIMEOUT: Request timeout (default: 30s)
  - ENVIRONMENT: development, staging, production or test

Database:
  - DUCKDB_PATH: Database file path (default: data/saveeat.duckdb)
  - DUCKDB_MAX_MEMORY: Memory limit (default: 2GB)
  - DUCKDB_THREADS: Thread count (default: CPU count)
  - IMPORT_RECIPES_CSV, IMPORT_REVIEWS_CSV: Food.com export imported into an empty store

Write-Ahead Log:
  - WAL_ENABLED, WAL_PATH, WAL_SYNC_WRITES, WAL_RETRY_INTERVAL, WAL_MAX_RETRIES,
    WAL_RETRY_BACKOFF, WAL_COMPACT_INTERVAL, WAL_ENTRY_TTL, WAL_COMPRESSION

Messaging:
  - NATS_ENABLED: Use NATS JetStream instead of the in-process bus (default: false)
  - NATS_URL, NATS_EMBEDDED, NATS_STORE_DIR, NATS_MAX_MEMORY, NATS_MAX_STORE,
    NATS_STREAM, NATS_RETENTION_DAYS, NATS_SUBSCRIBERS, NATS_DURABLE_NAME, NATS_QUEUE_GROUP

Security:
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - CORS_ORIGINS: Comma-separated allowed origins (default: *)

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

Recommendation:
  - CHECKPOINT_DIR, RELOAD_INTERVAL, CACHE_TTL, CACHE_SIZE, DEFAULT_TOP_K
  - USE_TEXT_EMBEDDINGS, EMBEDDING_DIM, NUM_LAYERS
  - TRAINING_ENABLED, TRAINING_INTERVAL, TRAINING_EPOCHS, TRAINING_SEED
  - RERANKER_HIDDEN_DIMS, EVAL_TOP_K: Comma-separated integers
  - MIN_USER_INTERACTIONS, MIN_RECIPE_RATINGS

Hyperparameters without an environment mapping are set in the YAML file
under the recommend section.
*/
package config
