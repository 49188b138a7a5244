// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// streamManager is the subset of jetstream.JetStream used to manage the
// interaction stream.
type streamManager interface {
	Stream(ctx context.Context, name string) (jetstream.Stream, error)
	CreateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
	UpdateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
}

// streamConfig returns the JetStream configuration of the interaction stream.
func streamConfig(cfg *Config) jetstream.StreamConfig {
	return jetstream.StreamConfig{
		Name:       cfg.StreamName,
		Subjects:   []string{streamSubjects},
		Retention:  jetstream.LimitsPolicy,
		MaxAge:     time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		MaxMsgs:    -1,
		Duplicates: 2 * time.Minute,
		Replicas:   1,
		Storage:    jetstream.FileStorage,
		Discard:    jetstream.DiscardOld,
	}
}

// ensureStream creates the stream or updates it in place. It is idempotent.
func ensureStream(ctx context.Context, js streamManager, cfg *Config) (jetstream.Stream, error) {
	sc := streamConfig(cfg)

	_, err := js.Stream(ctx, sc.Name)
	if err == nil {
		stream, err := js.UpdateStream(ctx, sc)
		if err != nil {
			return nil, fmt.Errorf("update stream %s: %w", sc.Name, err)
		}
		return stream, nil
	}

	if errors.Is(err, jetstream.ErrStreamNotFound) {
		stream, err := js.CreateStream(ctx, sc)
		if err != nil {
			return nil, fmt.Errorf("create stream %s: %w", sc.Name, err)
		}
		return stream, nil
	}

	return nil, fmt.Errorf("check stream %s: %w", sc.Name, err)
}
