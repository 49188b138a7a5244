// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package events

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"

	"github.com/tomtom215/saveeat/internal/metrics"
	"github.com/tomtom215/saveeat/internal/recommend"
)

// InteractionSink persists logged interactions. Implementations must be
// idempotent on EventID.
type InteractionSink interface {
	LogInteraction(ctx context.Context, ev *recommend.LoggedInteraction) error
}

// Consumer writes interaction events to a sink through a watermill router.
type Consumer struct {
	bus    *Bus
	sink   InteractionSink
	logger zerolog.Logger

	processed atomic.Int64
	failed    atomic.Int64

	running     chan struct{}
	runningOnce sync.Once
}

// NewConsumer creates a consumer reading from bus.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewConsumer(bus *Bus, sink InteractionSink, logger zerolog.Logger) *Consumer {
	return &Consumer{
		bus:     bus,
		sink:    sink,
		logger:  logger.With().Str("component", "events-consumer").Logger(),
		running: make(chan struct{}),
	}
}

// String implements fmt.Stringer for suture logging.
func (c *Consumer) String() string {
	return "events-consumer"
}

// Serve runs the router until ctx is canceled. A fresh router is built on
// every call so the supervisor can restart the consumer.
func (c *Consumer) Serve(ctx context.Context) error {
	router, err := c.newRouter()
	if err != nil {
		return err
	}

	go func() {
		select {
		case <-router.Running():
			c.runningOnce.Do(func() { close(c.running) })
		case <-ctx.Done():
		}
	}()

	c.logger.Info().Str("topic", TopicInteractionLogged).Msg("Event consumer started")
	err = router.Run(ctx)
	if ctx.Err() != nil {
		c.logger.Info().Msg("Event consumer stopped")
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("event router: %w", err)
	}
	return nil
}

func (c *Consumer) newRouter() (*message.Router, error) {
	cfg := c.bus.Config()
	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: cfg.CloseTimeout,
	}, c.bus.Logger())
	if err != nil {
		return nil, fmt.Errorf("create router: %w", err)
	}

	// Order is outer to inner: panics become errors, retries run first and
	// only a message that exhausts them reaches the poison topic.
	router.AddMiddleware(middleware.Recoverer)

	poison, err := middleware.PoisonQueue(c.bus.Publisher(), TopicPoison)
	if err != nil {
		return nil, fmt.Errorf("create poison queue: %w", err)
	}
	router.AddMiddleware(poison)

	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     time.Minute,
		Multiplier:      2.0,
		Logger:          c.bus.Logger(),
	}
	router.AddMiddleware(retry.Middleware)

	router.AddConsumerHandler(
		"interaction-logger",
		TopicInteractionLogged,
		nopCloseSubscriber{c.bus.Subscriber()},
		c.handle,
	)
	return router, nil
}

func (c *Consumer) handle(msg *message.Message) error {
	start := time.Now()

	ev, err := DecodeInteraction(msg)
	if err != nil {
		// Malformed payloads never succeed, so they are acked and dropped.
		c.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping malformed interaction event")
		c.failed.Add(1)
		metrics.RecordEventConsumed(TopicInteractionLogged, time.Since(start), err)
		return nil
	}

	err = c.sink.LogInteraction(msg.Context(), ev)
	metrics.RecordEventConsumed(TopicInteractionLogged, time.Since(start), err)
	if err != nil {
		c.failed.Add(1)
		return fmt.Errorf("log interaction %s: %w", ev.EventID, err)
	}

	c.processed.Add(1)
	c.logger.Debug().
		Str("event_id", ev.EventID).
		Int64("user_id", ev.UserID).
		Int64("recipe_id", ev.RecipeID).
		Str("type", string(ev.Type)).
		Msg("Interaction logged")
	return nil
}

// Running is closed once the first router has subscribed.
func (c *Consumer) Running() <-chan struct{} {
	return c.running
}

// Processed returns the number of events written to the sink.
func (c *Consumer) Processed() int64 {
	return c.processed.Load()
}

// Failed returns the number of failed handler invocations.
func (c *Consumer) Failed() int64 {
	return c.failed.Load()
}

// nopCloseSubscriber keeps the router from closing the shared subscriber,
// which the bus owns.
type nopCloseSubscriber struct {
	message.Subscriber
}

func (nopCloseSubscriber) Close() error { return nil }
