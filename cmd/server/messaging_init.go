// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/saveeat/internal/config"
	"github.com/tomtom215/saveeat/internal/events"
	"github.com/tomtom215/saveeat/internal/logging"
	"github.com/tomtom215/saveeat/internal/supervisor"
	"github.com/tomtom215/saveeat/internal/wal"
)

// messagingComponents holds the interaction pipeline: the optional WAL,
// the event bus and the ingestor the API logs through.
type messagingComponents struct {
	wal      *wal.BadgerWAL
	bus      *events.Bus
	ingestor *events.Ingestor
}

// initMessaging opens the WAL when enabled and connects the event bus.
// With messaging disabled the bus is the in-process channel.
func initMessaging(ctx context.Context, cfg *config.Config) (*messagingComponents, error) {
	m := &messagingComponents{}

	if cfg.WAL.Enabled {
		w, err := wal.Open(&cfg.WAL)
		if err != nil {
			return nil, fmt.Errorf("open wal: %w", err)
		}
		m.wal = w
		logging.Info().Str("path", cfg.WAL.Path).Bool("sync_writes", cfg.WAL.SyncWrites).Msg("WAL opened")
	} else {
		logging.Warn().Msg("WAL disabled (WAL_ENABLED=false), interactions are published without durability")
	}

	bus, err := events.NewBus(ctx, &cfg.Messaging, logging.Logger())
	if err != nil {
		m.Close()
		return nil, fmt.Errorf("create event bus: %w", err)
	}
	m.bus = bus

	status := bus.Status()
	logging.Info().
		Str("mode", status.Mode).
		Bool("connected", status.Connected).
		Bool("embedded", status.Embedded).
		Msg("Event bus ready")

	m.ingestor = events.NewIngestor(m.wal, bus, logging.Logger())
	return m, nil
}

// addToTree registers the WAL services in the data layer and the event
// consumer in the messaging layer.
func (m *messagingComponents) addToTree(tree *supervisor.SupervisorTree, sink events.InteractionSink) {
	if m.wal != nil {
		tree.Add(supervisor.LayerData, wal.NewRetryLoop(m.wal, m.bus))
		tree.Add(supervisor.LayerData, wal.NewCompactor(m.wal))
		logging.Info().Msg("WAL retry loop and compactor added to supervisor tree")
	}
	tree.Add(supervisor.LayerMessaging, events.NewConsumer(m.bus, sink, logging.Logger()))
	logging.Info().Msg("Event consumer added to supervisor tree")
}

// Close shuts down the bus before the WAL so no publish races a closed
// store.
func (m *messagingComponents) Close() {
	if m.bus != nil {
		if err := m.bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
		m.bus = nil
	}
	if m.wal != nil {
		if err := m.wal.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing WAL")
		}
		m.wal = nil
	}
}
