// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// NATSImage is the broker image. JetStream state lives in the container.
const NATSImage = "nats:2.10-alpine"

const natsClientPort = "4222/tcp"

// NATSBroker is a running broker and the client URL that reaches it.
type NATSBroker struct {
	testcontainers.Container
	URL string
}

// StartNATS runs a JetStream broker for the duration of t. The test is
// skipped when Docker is not reachable.
//
//	broker := testinfra.StartNATS(t, 2*time.Minute)
//	cfg.URL = broker.URL
func StartNATS(t *testing.T, startTimeout time.Duration) *NATSBroker {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        NATSImage,
			ExposedPorts: []string{natsClientPort},
			Cmd:          []string{"-js", "-sd", "/data"},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort(natsClientPort),
				wait.ForLog("Server is ready"),
			).WithStartupTimeout(startTimeout),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start nats container: %v", err)
	}

	url, err := clientURL(ctx, ctr)
	if err != nil {
		t.Fatalf("resolve nats endpoint: %v", err)
	}
	return &NATSBroker{Container: ctr, URL: url}
}

func clientURL(ctx context.Context, ctr testcontainers.Container) (string, error) {
	host, err := ctr.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("container host: %w", err)
	}
	port, err := ctr.MappedPort(ctx, natsClientPort)
	if err != nil {
		return "", fmt.Errorf("mapped port: %w", err)
	}
	return fmt.Sprintf("nats://%s:%s", host, port.Port()), nil
}
