// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/saveeat/internal/recommend"
	"github.com/tomtom215/saveeat/internal/wal"
)

// Publisher publishes interaction events.
type Publisher interface {
	Publish(ctx context.Context, ev *recommend.LoggedInteraction) error
}

// Ingestor accepts interactions from the API. With a WAL the event is made
// durable before publishing and a failed publish is left for the retry
// loop; without one, publish errors are returned to the caller.
type Ingestor struct {
	wal       *wal.BadgerWAL
	publisher Publisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewIngestor creates an ingestor. w may be nil.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewIngestor(w *wal.BadgerWAL, publisher Publisher, logger zerolog.Logger) *Ingestor {
	return &Ingestor{
		wal:       w,
		publisher: publisher,
		logger:    logger.With().Str("component", "ingest").Logger(),
		now:       time.Now,
	}
}

// Log assigns an event ID and timestamp when missing and hands ev to the
// bus. It returns the event ID.
func (i *Ingestor) Log(ctx context.Context, ev *recommend.LoggedInteraction) (string, error) {
	if ev.EventID == "" {
		ev.EventID = uuid.New().String()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = i.now().UTC()
	}

	if i.wal == nil {
		return ev.EventID, i.publisher.Publish(ctx, ev)
	}

	entryID, err := i.wal.Write(ctx, ev)
	if err != nil {
		i.logger.Error().Err(err).Str("event_id", ev.EventID).Msg("WAL write failed, publishing directly")
		return ev.EventID, i.publisher.Publish(ctx, ev)
	}

	// Hold the entry so the retry loop does not publish it concurrently.
	if i.wal.TryClaimEntry(entryID) {
		defer i.wal.ReleaseEntry(entryID)
	}

	if err := i.publisher.Publish(ctx, ev); err != nil {
		i.logger.Warn().
			Err(err).
			Str("event_id", ev.EventID).
			Str("wal_entry_id", entryID).
			Msg("Publish failed, entry will be retried")
		wal.RecordWALPublishFailure()
		if updateErr := i.wal.UpdateAttempt(ctx, entryID, err.Error()); updateErr != nil {
			i.logger.Warn().Err(updateErr).Str("wal_entry_id", entryID).Msg("WAL attempt update failed")
		}
		return ev.EventID, nil
	}

	if err := i.wal.Confirm(ctx, entryID); err != nil {
		i.logger.Warn().Err(err).Str("wal_entry_id", entryID).Msg("WAL confirm failed")
	}
	return ev.EventID, nil
}
