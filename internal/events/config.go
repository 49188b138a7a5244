// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package events

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds messaging configuration. With Enabled false the bus runs
// in-process and every NATS setting is ignored.
type Config struct {
	// Enabled switches the bus from the in-process channel to NATS JetStream.
	Enabled bool `koanf:"enabled"`

	// URL is the NATS server connection URL. Ignored when EmbeddedServer is set.
	URL string `koanf:"url"`

	// EmbeddedServer starts a nats-server inside the process.
	EmbeddedServer bool `koanf:"embedded_server"`

	// StoreDir is the JetStream storage directory of the embedded server.
	StoreDir string `koanf:"store_dir"`

	// MaxMemory and MaxStore limit the embedded JetStream in bytes.
	MaxMemory int64 `koanf:"max_memory"`
	MaxStore  int64 `koanf:"max_store"`

	// StreamName is the JetStream stream holding interaction events.
	StreamName string `koanf:"stream_name"`

	// RetentionDays is how long events stay in the stream.
	RetentionDays int `koanf:"retention_days"`

	// SubscribersCount is the number of concurrent consumer goroutines.
	// Inserts are idempotent, so ordering across goroutines does not matter.
	SubscribersCount int `koanf:"subscribers"`

	// DurableName is the JetStream durable consumer name.
	DurableName string `koanf:"durable_name"`

	// QueueGroup load-balances consumers across instances.
	QueueGroup string `koanf:"queue_group"`

	// AckWait is how long JetStream waits for an ack before redelivery.
	AckWait time.Duration `koanf:"ack_wait"`

	// MaxDeliver caps JetStream redelivery attempts.
	MaxDeliver int `koanf:"max_deliver"`

	// RetryMaxRetries is the number of in-process handler retries before a
	// message is sent to the poison topic.
	RetryMaxRetries int `koanf:"retry_max_retries"`

	// RetryInitialInterval is the first retry delay; it doubles each retry.
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`

	// BreakerFailureThreshold is the number of consecutive publish failures
	// that opens the publish circuit breaker.
	BreakerFailureThreshold uint32 `koanf:"breaker_failure_threshold"`

	// BreakerTimeout is how long the breaker stays open.
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`

	// CloseTimeout bounds router and subscriber shutdown.
	CloseTimeout time.Duration `koanf:"close_timeout"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:                 false,
		URL:                     "nats://127.0.0.1:4222",
		EmbeddedServer:          true,
		StoreDir:                "data/nats",
		MaxMemory:               256 << 20, // 256MB
		MaxStore:                1 << 30,   // 1GB
		StreamName:              "INTERACTIONS",
		RetentionDays:           7,
		SubscribersCount:        2,
		DurableName:             "interaction-logger",
		QueueGroup:              "saveeat",
		AckWait:                 30 * time.Second,
		MaxDeliver:              5,
		RetryMaxRetries:         3,
		RetryInitialInterval:    500 * time.Millisecond,
		BreakerFailureThreshold: 5,
		BreakerTimeout:          10 * time.Second,
		CloseTimeout:            30 * time.Second,
	}
}

// Validate checks the configuration. NATS settings are only checked when
// messaging is enabled.
func (c *Config) Validate() error {
	if c.SubscribersCount < 1 {
		return fmt.Errorf("messaging subscribers must be at least 1, got %d", c.SubscribersCount)
	}
	if c.RetryMaxRetries < 0 {
		return fmt.Errorf("messaging retry_max_retries must be non-negative, got %d", c.RetryMaxRetries)
	}
	if c.BreakerFailureThreshold == 0 {
		return fmt.Errorf("messaging breaker_failure_threshold must be at least 1")
	}
	if !c.Enabled {
		return nil
	}
	if c.EmbeddedServer {
		if c.StoreDir == "" {
			return fmt.Errorf("messaging store_dir is required for the embedded server")
		}
	} else if err := validateNATSURL(c.URL); err != nil {
		return err
	}
	if c.StreamName == "" {
		return fmt.Errorf("messaging stream_name is required")
	}
	if c.DurableName == "" {
		return fmt.Errorf("messaging durable_name is required")
	}
	if c.RetentionDays < 1 {
		return fmt.Errorf("messaging retention_days must be at least 1, got %d", c.RetentionDays)
	}
	if c.MaxDeliver < 1 {
		return fmt.Errorf("messaging max_deliver must be at least 1, got %d", c.MaxDeliver)
	}
	return nil
}

func validateNATSURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("messaging url is required when the embedded server is disabled")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid NATS URL %q: %w", raw, err)
	}
	switch u.Scheme {
	case "nats", "tls", "ws", "wss":
	default:
		return fmt.Errorf("invalid NATS URL %q: scheme must be nats, tls, ws or wss", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid NATS URL %q: missing host", raw)
	}
	return nil
}
