// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package wal

import (
	"context"
	"math"
	"time"

	"github.com/tomtom215/saveeat/internal/logging"
)

// Publisher republishes a WAL entry.
type Publisher interface {
	PublishEntry(ctx context.Context, entry *Entry) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, entry *Entry) error

// PublishEntry implements Publisher.
func (f PublisherFunc) PublishEntry(ctx context.Context, entry *Entry) error {
	return f(ctx, entry)
}

// RetryLoop periodically republishes pending entries.
type RetryLoop struct {
	wal       *BadgerWAL
	publisher Publisher
	config    Config

	// now is replaced in tests.
	now func() time.Time
}

// NewRetryLoop creates a retry loop for w.
func NewRetryLoop(w *BadgerWAL, publisher Publisher) *RetryLoop {
	return &RetryLoop{
		wal:       w,
		publisher: publisher,
		config:    w.Config(),
		now:       time.Now,
	}
}

// String implements fmt.Stringer for suture logging.
func (r *RetryLoop) String() string {
	return "wal-retry"
}

// Serve runs retry passes every RetryInterval until ctx is canceled. The
// first pass runs immediately to recover entries left by a previous run.
func (r *RetryLoop) Serve(ctx context.Context) error {
	logging.Info().
		Dur("interval", r.config.RetryInterval).
		Int("max_retries", r.config.MaxRetries).
		Msg("WAL retry loop started")

	r.RetryPending(ctx, true)

	ticker := time.NewTicker(r.config.RetryInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("WAL retry loop stopped")
			return ctx.Err()
		case <-ticker.C:
			r.RetryPending(ctx, false)
		}
	}
}

// RetryResult summarizes one retry pass.
type RetryResult struct {
	Succeeded  int
	Failed     int
	Expired    int
	MaxRetried int
	Skipped    int
}

// RetryPending attempts to publish every eligible pending entry. recovery
// ignores the minimum entry age, for use at startup.
func (r *RetryLoop) RetryPending(ctx context.Context, recovery bool) RetryResult {
	var res RetryResult
	entries, err := r.wal.GetPending(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("WAL retry: failed to get pending entries")
		return res
	}
	if len(entries) == 0 {
		return res
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return res
		}
		r.processEntry(ctx, entry, recovery, &res)
	}

	if recovery && res.Succeeded > 0 {
		RecordWALRecoveredEntries(int64(res.Succeeded))
	}
	if res.Succeeded > 0 || res.Failed > 0 || res.Expired > 0 || res.MaxRetried > 0 {
		logging.Info().
			Bool("recovery", recovery).
			Int("succeeded", res.Succeeded).
			Int("failed", res.Failed).
			Int("expired", res.Expired).
			Int("max_retried", res.MaxRetried).
			Msg("WAL retry complete")
	}
	return res
}

func (r *RetryLoop) processEntry(ctx context.Context, entry *Entry, recovery bool, res *RetryResult) {
	now := r.now()
	if !recovery && now.Sub(entry.CreatedAt) < r.config.RetryInterval {
		res.Skipped++
		return
	}
	if !r.wal.TryClaimEntry(entry.ID) {
		res.Skipped++
		return
	}
	defer r.wal.ReleaseEntry(entry.ID)

	switch {
	case r.config.EntryTTL > 0 && now.Sub(entry.CreatedAt) > r.config.EntryTTL:
		logging.Warn().Str("entry_id", entry.ID).Msg("WAL retry: entry expired, removing")
		r.delete(ctx, entry)
		RecordWALExpiredEntry()
		res.Expired++
	case entry.Attempts >= r.config.MaxRetries:
		logging.Error().
			Str("entry_id", entry.ID).
			Int("attempts", entry.Attempts).
			Str("last_error", entry.LastError).
			Msg("WAL retry: entry exceeded max retries, removing")
		r.delete(ctx, entry)
		RecordWALMaxRetriesExceeded()
		res.MaxRetried++
	case !r.readyForRetry(entry, now):
		res.Skipped++
	default:
		if r.attemptPublish(ctx, entry) {
			res.Succeeded++
		} else {
			res.Failed++
		}
	}
}

func (r *RetryLoop) delete(ctx context.Context, entry *Entry) {
	if err := r.wal.DeleteEntry(ctx, entry.ID); err != nil {
		logging.Error().Err(err).Str("entry_id", entry.ID).Msg("WAL retry: failed to delete entry")
	}
}

func (r *RetryLoop) readyForRetry(entry *Entry, now time.Time) bool {
	if entry.LastAttemptAt.IsZero() {
		return true
	}
	return now.Sub(entry.LastAttemptAt) >= r.backoff(entry.Attempts)
}

func (r *RetryLoop) attemptPublish(ctx context.Context, entry *Entry) bool {
	pubCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err := r.publisher.PublishEntry(pubCtx, entry)
	cancel()

	if err != nil {
		logging.Warn().
			Err(err).
			Str("entry_id", entry.ID).
			Int("attempt", entry.Attempts+1).
			Msg("WAL retry: failed to publish entry")
		if updateErr := r.wal.UpdateAttempt(ctx, entry.ID, err.Error()); updateErr != nil {
			logging.Error().Err(updateErr).Str("entry_id", entry.ID).Msg("WAL retry: failed to update attempt")
		}
		RecordWALPublishFailure()
		return false
	}

	if err := r.wal.Confirm(ctx, entry.ID); err != nil {
		logging.Error().Err(err).Str("entry_id", entry.ID).Msg("WAL retry: failed to confirm entry")
		return false
	}
	return true
}

// backoff returns base * 2^attempts, capped at 5 minutes.
func (r *RetryLoop) backoff(attempts int) time.Duration {
	const maxBackoff = 5 * time.Minute
	if attempts > 50 {
		return maxBackoff
	}
	d := time.Duration(float64(r.config.RetryBackoff) * math.Pow(2, float64(attempts)))
	if d < 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}
