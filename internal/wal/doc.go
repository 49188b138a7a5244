// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

// Package wal provides a durable Write-Ahead Log (WAL) using BadgerDB.
//
// Logged interactions are persisted before they are published on the event
// bus, so a broker outage or a crash between the API accepting an
// interaction and the consumer storing it does not lose the interaction.
//
// # Architecture
//
//	POST /log_interaction -> WAL Write (fsync) -> Publish -> WAL Confirm
//	                                                   | (on failure)
//	                                             entry kept for retry
//
// # Components
//
//   - BadgerWAL: entry storage with pending and confirmed key prefixes
//   - RetryLoop: republishes pending entries older than one retry interval
//   - Compactor: deletes confirmed and expired entries and runs value log GC
//
// RetryLoop and Compactor implement suture.Service and run under the
// supervisor tree.
//
// # Usage
//
//	w, err := wal.Open(&cfg)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	id, err := w.Write(ctx, interaction)
//	if err != nil {
//	    return err
//	}
//	if err := publish(ctx, interaction); err != nil {
//	    return nil // kept for the retry loop
//	}
//	return w.Confirm(ctx, id)
package wal
