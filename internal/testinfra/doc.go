// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

// Package testinfra starts a JetStream-enabled NATS broker in Docker with
// testcontainers-go so the event bus can be tested against a real broker.
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./internal/events/...
//
// StartNATS skips the calling test when no container provider is healthy
// and terminates the container when the test ends.
package testinfra
