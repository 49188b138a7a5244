// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

/*
Package events carries logged user interactions from the API to the store.

Interactions flow through a watermill pub/sub:

	POST /log_interaction -> WAL write -> Bus.Publish -> WAL confirm
	                                         |
	                                         v
	                          Consumer -> interaction_log (DuckDB)

When messaging is disabled the bus is an in-process gochannel. When it is
enabled the bus connects to NATS JetStream, optionally starting an embedded
nats-server, and ensures the interaction stream exists before publishing.

The Consumer runs a watermill router with panic recovery, retry with
exponential backoff and a poison topic for messages that keep failing.
Inserts are idempotent on the event ID, so redelivery is harmless.
*/
package events
