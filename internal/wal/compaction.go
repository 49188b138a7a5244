// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package wal

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/saveeat/internal/logging"
)

// Compactor periodically deletes confirmed and expired entries and runs
// BadgerDB garbage collection.
type Compactor struct {
	wal    *BadgerWAL
	config Config
}

// NewCompactor creates a compactor for w.
func NewCompactor(w *BadgerWAL) *Compactor {
	return &Compactor{
		wal:    w,
		config: w.Config(),
	}
}

// String implements fmt.Stringer for suture logging.
func (c *Compactor) String() string {
	return "wal-compactor"
}

// Serve compacts every CompactInterval until ctx is canceled.
func (c *Compactor) Serve(ctx context.Context) error {
	logging.Info().Dur("interval", c.config.CompactInterval).Msg("WAL compactor started")

	ticker := time.NewTicker(c.config.CompactInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("WAL compactor stopped")
			return ctx.Err()
		case <-ticker.C:
			c.Compact()
		}
	}
}

// CompactResult summarizes one compaction.
type CompactResult struct {
	Confirmed int64
	Expired   int64
	Duration  time.Duration
}

// Compact runs one compaction pass.
func (c *Compactor) Compact() CompactResult {
	start := time.Now()
	var res CompactResult

	confirmed, err := c.deleteConfirmed()
	if err != nil {
		logging.Error().Err(err).Msg("WAL compaction failed to delete confirmed entries")
	}
	res.Confirmed = confirmed

	expired, err := c.deleteExpired(start)
	if err != nil {
		logging.Error().Err(err).Msg("WAL compaction failed to delete expired entries")
	}
	res.Expired = expired

	if err := c.wal.RunGC(); err != nil {
		logging.Error().Err(err).Msg("WAL compaction GC error")
	}

	c.wal.mu.Lock()
	c.wal.lastCompaction = time.Now()
	c.wal.mu.Unlock()

	res.Duration = time.Since(start)
	RecordWALCompaction(res.Duration.Seconds(), res.Confirmed+res.Expired)

	if total := res.Confirmed + res.Expired; total > 0 {
		logging.Info().
			Int64("total_deleted", total).
			Int64("confirmed", res.Confirmed).
			Int64("expired", res.Expired).
			Dur("duration", res.Duration).
			Msg("WAL compaction removed entries")
	}
	return res
}

// deleteConfirmed removes every entry under the confirmed prefix.
func (c *Compactor) deleteConfirmed() (int64, error) {
	return c.deleteWhere(prefixConfirmed, false, func(*Entry) bool { return true })
}

// deleteExpired removes pending entries older than EntryTTL.
func (c *Compactor) deleteExpired(now time.Time) (int64, error) {
	if c.config.EntryTTL <= 0 {
		return 0, nil
	}
	cutoff := now.Add(-c.config.EntryTTL)
	n, err := c.deleteWhere(prefixPending, true, func(e *Entry) bool {
		return e.CreatedAt.Before(cutoff)
	})
	for i := int64(0); i < n; i++ {
		RecordWALExpiredEntry()
	}
	return n, err
}

func (c *Compactor) deleteWhere(prefix string, decode bool, match func(*Entry) bool) (int64, error) {
	var keys [][]byte
	err := c.wal.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = decode
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			if decode {
				var entry Entry
				if err := item.Value(func(val []byte) error {
					return json.Unmarshal(val, &entry)
				}); err != nil || !match(&entry) {
					continue
				}
			}
			keys = append(keys, item.KeyCopy(nil))
		}
		return nil
	})
	if err != nil || len(keys) == 0 {
		return 0, err
	}

	wb := c.wal.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return 0, err
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, err
	}
	return int64(len(keys)), nil
}
