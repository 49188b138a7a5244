// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/saveeat/internal/metrics"
	"github.com/tomtom215/saveeat/internal/recommend"
	"github.com/tomtom215/saveeat/internal/wal"
)

// ErrBusClosed is returned when publishing on a closed bus.
var ErrBusClosed = errors.New("event bus is closed")

// Bus modes reported in Status.
const (
	ModeMemory = "memory"
	ModeNATS   = "nats"
)

// Bus publishes interaction events and hands out the matching subscriber.
type Bus struct {
	config   Config
	logger   zerolog.Logger
	wmLogger watermill.LoggerAdapter

	publisher  message.Publisher
	subscriber message.Subscriber
	breaker    *gobreaker.CircuitBreaker[struct{}]

	server *EmbeddedServer
	nc     *natsgo.Conn

	mu     sync.RWMutex
	closed bool
}

// NewBus creates the bus described by cfg. With messaging disabled this is
// an in-process gochannel; otherwise it connects to NATS JetStream, starting
// an embedded server first when configured.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewBus(ctx context.Context, cfg *Config, logger zerolog.Logger) (*Bus, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid messaging config: %w", err)
	}

	logger = logger.With().Str("component", "events").Logger()
	b := &Bus{
		config:   *cfg,
		logger:   logger,
		wmLogger: NewLoggerAdapter(logger),
	}
	b.breaker = newBreaker(cfg)

	if !cfg.Enabled {
		gc := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
		}, b.wmLogger)
		b.publisher = gc
		b.subscriber = gc
		logger.Info().Str("mode", ModeMemory).Msg("Event bus started")
		return b, nil
	}

	if err := b.connectNATS(ctx); err != nil {
		if b.publisher != nil {
			_ = b.publisher.Close()
		}
		b.shutdownNATS()
		return nil, err
	}
	logger.Info().
		Str("mode", ModeNATS).
		Bool("embedded", b.server != nil).
		Str("stream", cfg.StreamName).
		Msg("Event bus started")
	return b, nil
}

func (b *Bus) connectNATS(ctx context.Context) error {
	url := b.config.URL
	if b.config.EmbeddedServer {
		scfg := serverConfigFrom(&b.config)
		srv, err := NewEmbeddedServer(&scfg)
		if err != nil {
			return fmt.Errorf("start embedded NATS: %w", err)
		}
		b.server = srv
		url = srv.ClientURL()
	}

	natsOpts := b.natsOptions()

	nc, err := natsgo.Connect(url, natsOpts...)
	if err != nil {
		return fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	b.nc = nc

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}
	if _, err := ensureStream(ctx, js, &b.config); err != nil {
		return err
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, b.wmLogger)
	if err != nil {
		return fmt.Errorf("create NATS publisher: %w", err)
	}
	b.publisher = pub

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: b.config.QueueGroup,
		SubscribersCount: b.config.SubscribersCount,
		AckWaitTimeout:   b.config.AckWait,
		CloseTimeout:     b.config.CloseTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			AckAsync:      false,
			DurablePrefix: b.config.DurableName,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.BindStream(b.config.StreamName),
				natsgo.MaxDeliver(b.config.MaxDeliver),
				natsgo.AckWait(b.config.AckWait),
				natsgo.DeliverAll(),
			},
		},
	}, b.wmLogger)
	if err != nil {
		return fmt.Errorf("create NATS subscriber: %w", err)
	}
	b.subscriber = sub
	return nil
}

func (b *Bus) natsOptions() []natsgo.Option {
	return []natsgo.Option{
		natsgo.Name("saveeat"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				b.logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			b.logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}
}

func newBreaker(cfg *Config) *gobreaker.CircuitBreaker[struct{}] {
	threshold := cfg.BreakerFailureThreshold
	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "event-publisher",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordBreakerTransition(name, from.String(), to.String())
		},
	})
}

// Publish sends ev on the interaction topic through the circuit breaker.
func (b *Bus) Publish(ctx context.Context, ev *recommend.LoggedInteraction) error {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return ErrBusClosed
	}

	msg, err := NewInteractionMessage(ev)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)

	_, err = b.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, b.publisher.Publish(TopicInteractionLogged, msg)
	})
	metrics.RecordEventPublished(TopicInteractionLogged, err)
	if err != nil {
		return fmt.Errorf("publish interaction %s: %w", ev.EventID, err)
	}
	return nil
}

// PublishEntry republishes a WAL entry holding a LoggedInteraction.
// It implements wal.Publisher.
func (b *Bus) PublishEntry(ctx context.Context, entry *wal.Entry) error {
	var ev recommend.LoggedInteraction
	if err := entry.UnmarshalPayload(&ev); err != nil {
		return fmt.Errorf("decode WAL entry %s: %w", entry.ID, err)
	}
	return b.Publish(ctx, &ev)
}

// Publisher returns the underlying watermill publisher.
func (b *Bus) Publisher() message.Publisher {
	return b.publisher
}

// Subscriber returns the underlying watermill subscriber.
func (b *Bus) Subscriber() message.Subscriber {
	return b.subscriber
}

// Logger returns the watermill logger adapter of the bus.
func (b *Bus) Logger() watermill.LoggerAdapter {
	return b.wmLogger
}

// Config returns the bus configuration.
func (b *Bus) Config() Config {
	return b.config
}

// Status describes the bus for health endpoints.
type Status struct {
	Mode         string `json:"mode"`
	Connected    bool   `json:"connected"`
	Embedded     bool   `json:"embedded"`
	BreakerState string `json:"breaker_state"`
}

// Status reports the current bus state.
func (b *Bus) Status() Status {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()

	s := Status{
		Mode:         ModeMemory,
		Connected:    !closed,
		Embedded:     b.server != nil,
		BreakerState: b.breaker.State().String(),
	}
	if b.config.Enabled {
		s.Mode = ModeNATS
		s.Connected = !closed && b.nc != nil && b.nc.IsConnected()
	}
	return s
}

// Close shuts down the publisher, subscriber, connection and embedded
// server, in that order.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	var errs []error
	if b.publisher != nil {
		if err := b.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	// The gochannel publisher is also the subscriber.
	if b.subscriber != nil && b.config.Enabled {
		if err := b.subscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscriber: %w", err))
		}
	}
	b.shutdownNATS()
	b.logger.Info().Msg("Event bus closed")
	return errors.Join(errs...)
}

func (b *Bus) shutdownNATS() {
	if b.nc != nil {
		b.nc.Close()
	}
	if b.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), b.config.CloseTimeout)
		defer cancel()
		if err := b.server.Shutdown(ctx); err != nil {
			b.logger.Warn().Err(err).Msg("Embedded NATS shutdown incomplete")
		}
	}
}
