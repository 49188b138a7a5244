// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package wal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	walWritesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "saveeat_wal_writes_total",
		Help: "Total number of interaction WAL write operations",
	})

	walConfirmsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "saveeat_wal_confirms_total",
		Help: "Total number of WAL entries confirmed after publish",
	})

	walRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "saveeat_wal_retries_total",
		Help: "Total number of WAL publish retry attempts",
	})

	walPendingEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "saveeat_wal_pending_entries",
		Help: "Current number of WAL entries awaiting publish",
	})

	walConfirmedEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "saveeat_wal_confirmed_entries",
		Help: "Current number of confirmed WAL entries awaiting compaction",
	})

	walDBSizeBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "saveeat_wal_db_size_bytes",
		Help: "On-disk size of the WAL database in bytes",
	})

	// walWriteLatency measures write latency including fsync.
	walWriteLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "saveeat_wal_write_latency_seconds",
		Help:    "WAL write latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15), // 0.1ms to ~1.6s
	})

	walWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "saveeat_wal_write_failures_total",
		Help: "Total number of failed WAL write operations",
	})

	walPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "saveeat_wal_publish_failures_total",
		Help: "Total number of failed publishes of WAL entries",
	})

	walRecoveredEntries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "saveeat_wal_recovered_entries_total",
		Help: "Total number of entries republished on startup",
	})

	walMaxRetriesExceeded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "saveeat_wal_max_retries_exceeded_total",
		Help: "Total number of entries dropped after exceeding max retries",
	})

	walExpiredEntries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "saveeat_wal_expired_entries_total",
		Help: "Total number of entries that expired before confirmation",
	})

	walCompactionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "saveeat_wal_compactions_total",
		Help: "Total number of WAL compaction runs",
	})

	walEntriesCompacted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "saveeat_wal_entries_compacted_total",
		Help: "Total number of entries removed during compaction",
	})

	walCompactionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "saveeat_wal_compaction_latency_seconds",
		Help:    "WAL compaction latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	walGCLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "saveeat_wal_gc_latency_seconds",
		Help:    "BadgerDB value log GC latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	walGCRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "saveeat_wal_gc_runs_total",
		Help: "Total number of BadgerDB value log GC runs",
	})
)

// RecordWALWrite increments the write counter.
func RecordWALWrite() { walWritesTotal.Inc() }

// RecordWALConfirm increments the confirm counter.
func RecordWALConfirm() { walConfirmsTotal.Inc() }

// RecordWALRetry increments the retry counter.
func RecordWALRetry() { walRetriesTotal.Inc() }

// UpdateWALPendingEntries sets the pending gauge.
func UpdateWALPendingEntries(count int64) { walPendingEntries.Set(float64(count)) }

// UpdateWALConfirmedEntries sets the confirmed gauge.
func UpdateWALConfirmedEntries(count int64) { walConfirmedEntries.Set(float64(count)) }

// UpdateWALDBSize sets the database size gauge.
func UpdateWALDBSize(bytes int64) { walDBSizeBytes.Set(float64(bytes)) }

// RecordWALWriteLatency observes a write latency in seconds.
func RecordWALWriteLatency(seconds float64) { walWriteLatency.Observe(seconds) }

// RecordWALWriteFailure increments the write failure counter.
func RecordWALWriteFailure() { walWriteFailures.Inc() }

// RecordWALPublishFailure increments the publish failure counter.
func RecordWALPublishFailure() { walPublishFailures.Inc() }

// RecordWALRecoveredEntries adds to the recovered counter.
func RecordWALRecoveredEntries(count int64) { walRecoveredEntries.Add(float64(count)) }

// RecordWALMaxRetriesExceeded increments the max retries counter.
func RecordWALMaxRetriesExceeded() { walMaxRetriesExceeded.Inc() }

// RecordWALExpiredEntry increments the expired counter.
func RecordWALExpiredEntry() { walExpiredEntries.Inc() }

// RecordWALCompaction records one compaction run.
func RecordWALCompaction(seconds float64, removed int64) {
	walCompactionsTotal.Inc()
	walEntriesCompacted.Add(float64(removed))
	walCompactionLatency.Observe(seconds)
}

// RecordWALGCLatency records one value log GC run.
func RecordWALGCLatency(seconds float64) {
	walGCRuns.Inc()
	walGCLatency.Observe(seconds)
}
