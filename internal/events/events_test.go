// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package events

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"

	"github.com/tomtom215/saveeat/internal/recommend"
	"github.com/tomtom215/saveeat/internal/wal"
)

type memorySink struct {
	mu     sync.Mutex
	events map[string]*recommend.LoggedInteraction
	err    error
	calls  int
}

func newMemorySink() *memorySink {
	return &memorySink{events: make(map[string]*recommend.LoggedInteraction)}
}

func (s *memorySink) LogInteraction(_ context.Context, ev *recommend.LoggedInteraction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.events[ev.EventID] = ev
	return nil
}

func (s *memorySink) get(id string) (*recommend.LoggedInteraction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	return ev, ok
}

func memoryConfig() Config {
	cfg := DefaultConfig()
	cfg.RetryMaxRetries = 1
	cfg.RetryInitialInterval = time.Millisecond
	cfg.CloseTimeout = 5 * time.Second
	return cfg
}

func newMemoryBus(t *testing.T, cfg Config) *Bus {
	t.Helper()
	bus, err := NewBus(context.Background(), &cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBus failed: %v", err)
	}
	t.Cleanup(func() { _ = bus.Close() })
	return bus
}

func startConsumer(t *testing.T, bus *Bus, sink InteractionSink) (*Consumer, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	c := NewConsumer(bus, sink, zerolog.Nop())
	done := make(chan error, 1)
	go func() { done <- c.Serve(ctx) }()

	select {
	case <-c.Running():
	case err := <-done:
		t.Fatalf("Consumer exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("Consumer did not start")
	}

	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			t.Error("Consumer did not stop")
		}
	})
	return c, cancel
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func rating(v float64) *float64 { return &v }

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "zero subscribers", mutate: func(c *Config) { c.SubscribersCount = 0 }, wantErr: "subscribers"},
		{name: "zero breaker threshold", mutate: func(c *Config) { c.BreakerFailureThreshold = 0 }, wantErr: "breaker"},
		{name: "nats ignored when disabled", mutate: func(c *Config) { c.URL = "bogus" }},
		{name: "embedded needs store dir", mutate: func(c *Config) {
			c.Enabled = true
			c.StoreDir = ""
		}, wantErr: "store_dir"},
		{name: "external needs url", mutate: func(c *Config) {
			c.Enabled = true
			c.EmbeddedServer = false
			c.URL = ""
		}, wantErr: "url is required"},
		{name: "external bad scheme", mutate: func(c *Config) {
			c.Enabled = true
			c.EmbeddedServer = false
			c.URL = "http://localhost:4222"
		}, wantErr: "scheme"},
		{name: "external valid", mutate: func(c *Config) {
			c.Enabled = true
			c.EmbeddedServer = false
			c.URL = "nats://nats.internal:4222"
		}},
		{name: "missing stream", mutate: func(c *Config) {
			c.Enabled = true
			c.StreamName = ""
		}, wantErr: "stream_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestInteractionMessageRoundTrip(t *testing.T) {
	t.Parallel()

	ev := &recommend.LoggedInteraction{
		EventID:  "evt-1",
		UserID:   42,
		RecipeID: 7,
		Type:     recommend.InteractionRate,
		Rating:   rating(5),
	}
	msg, err := NewInteractionMessage(ev)
	if err != nil {
		t.Fatalf("NewInteractionMessage failed: %v", err)
	}
	if msg.UUID != "evt-1" || msg.Metadata.Get(natsgo.MsgIdHdr) != "evt-1" {
		t.Errorf("event ID not propagated: uuid=%s header=%s", msg.UUID, msg.Metadata.Get(natsgo.MsgIdHdr))
	}
	if msg.Metadata.Get(MetadataUserID) != "42" || msg.Metadata.Get(MetadataInteractionType) != "rate" {
		t.Errorf("unexpected metadata: %v", msg.Metadata)
	}

	got, err := DecodeInteraction(msg)
	if err != nil {
		t.Fatalf("DecodeInteraction failed: %v", err)
	}
	if got.UserID != 42 || got.RecipeID != 7 || got.Rating == nil || *got.Rating != 5 {
		t.Errorf("decoded event mismatch: %+v", got)
	}

	if _, err := NewInteractionMessage(&recommend.LoggedInteraction{}); !errors.Is(err, ErrMissingEventID) {
		t.Errorf("expected ErrMissingEventID, got %v", err)
	}
	if _, err := DecodeInteraction(message.NewMessage("", []byte("{"))); err == nil {
		t.Error("expected decode error for malformed payload")
	}
}

func TestLoggerAdapter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	adapter := NewLoggerAdapter(zerolog.New(&buf))
	adapter.With(watermill.LogFields{"topic": "interactions.logged"}).
		Error("handler failed", errors.New("boom"), watermill.LogFields{"attempt": 2})

	out := buf.String()
	for _, want := range []string{`"topic":"interactions.logged"`, `"attempt":2`, `"error":"boom"`, `"message":"handler failed"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %s missing %s", out, want)
		}
	}
}

func TestMemoryBusDeliversToSink(t *testing.T) {
	bus := newMemoryBus(t, memoryConfig())
	sink := newMemorySink()
	c, _ := startConsumer(t, bus, sink)

	ev := &recommend.LoggedInteraction{
		EventID:              "evt-42",
		UserID:               1,
		RecipeID:             2,
		Type:                 recommend.InteractionLike,
		AvailableIngredients: []string{"egg", "flour"},
	}
	if err := bus.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	waitFor(t, func() bool {
		_, ok := sink.get("evt-42")
		return ok
	})
	got, _ := sink.get("evt-42")
	if len(got.AvailableIngredients) != 2 || got.Type != recommend.InteractionLike {
		t.Errorf("unexpected event stored: %+v", got)
	}
	if c.Processed() != 1 {
		t.Errorf("Processed = %d, want 1", c.Processed())
	}

	status := bus.Status()
	if status.Mode != ModeMemory || !status.Connected || status.BreakerState != "closed" {
		t.Errorf("unexpected status: %+v", status)
	}
}

func TestFailingSinkRoutesToPoisonTopic(t *testing.T) {
	bus := newMemoryBus(t, memoryConfig())
	sink := newMemorySink()
	sink.err = errors.New("database locked")

	poisoned, err := bus.Subscriber().Subscribe(context.Background(), TopicPoison)
	if err != nil {
		t.Fatalf("Subscribe poison failed: %v", err)
	}
	c, _ := startConsumer(t, bus, sink)

	if err := bus.Publish(context.Background(), &recommend.LoggedInteraction{EventID: "evt-bad", Type: recommend.InteractionView}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case msg := <-poisoned:
		msg.Ack()
		if msg.UUID != "evt-bad" {
			t.Errorf("poisoned message UUID = %s", msg.UUID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("message was not routed to the poison topic")
	}

	// One initial attempt plus one retry.
	sink.mu.Lock()
	calls := sink.calls
	sink.mu.Unlock()
	if calls != 2 {
		t.Errorf("sink calls = %d, want 2", calls)
	}
	if c.Failed() != 2 {
		t.Errorf("Failed = %d, want 2", c.Failed())
	}
}

func TestPublishAfterClose(t *testing.T) {
	cfg := memoryConfig()
	bus, err := NewBus(context.Background(), &cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBus failed: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
	err = bus.Publish(context.Background(), &recommend.LoggedInteraction{EventID: "x"})
	if !errors.Is(err, ErrBusClosed) {
		t.Errorf("expected ErrBusClosed, got %v", err)
	}
}

type failingPublisher struct {
	mu        sync.Mutex
	err       error
	published []*recommend.LoggedInteraction
}

func (p *failingPublisher) Publish(_ context.Context, ev *recommend.LoggedInteraction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, ev)
	return nil
}

func openTestWAL(t *testing.T) *wal.BadgerWAL {
	t.Helper()
	cfg := wal.Config{
		Enabled:         true,
		Path:            t.TempDir(),
		RetryInterval:   time.Second,
		MaxRetries:      3,
		RetryBackoff:    time.Millisecond,
		CompactInterval: time.Minute,
	}
	w, err := wal.OpenForTesting(&cfg)
	if err != nil {
		t.Fatalf("OpenForTesting failed: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestIngestorWithWAL(t *testing.T) {
	w := openTestWAL(t)
	pub := &failingPublisher{}
	ing := NewIngestor(w, pub, zerolog.Nop())
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ing.now = func() time.Time { return fixed }

	ev := &recommend.LoggedInteraction{UserID: 1, RecipeID: 2, Type: recommend.InteractionView}
	id, err := ing.Log(context.Background(), ev)
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if id == "" || ev.EventID != id {
		t.Errorf("event ID not assigned: %q", id)
	}
	if !ev.CreatedAt.Equal(fixed) {
		t.Errorf("CreatedAt = %v, want %v", ev.CreatedAt, fixed)
	}
	if stats := w.Stats(); stats.ConfirmedCount != 1 || stats.PendingCount != 0 {
		t.Errorf("expected confirmed entry, got %+v", stats)
	}

	// A failed publish is accepted and left pending for the retry loop.
	pub.err = errors.New("nats unavailable")
	if _, err := ing.Log(context.Background(), &recommend.LoggedInteraction{UserID: 3, Type: recommend.InteractionClick}); err != nil {
		t.Fatalf("Log should accept the event when WAL is enabled, got %v", err)
	}
	pending, err := w.GetPending(context.Background())
	if err != nil {
		t.Fatalf("GetPending failed: %v", err)
	}
	if len(pending) != 1 || pending[0].Attempts != 1 {
		t.Fatalf("expected one pending entry with one attempt, got %+v", pending)
	}

	// The retry loop republishes it through the same publisher.
	pub.err = nil
	loop := wal.NewRetryLoop(w, wal.PublisherFunc(func(ctx context.Context, e *wal.Entry) error {
		var ev recommend.LoggedInteraction
		if err := e.UnmarshalPayload(&ev); err != nil {
			return err
		}
		return pub.Publish(ctx, &ev)
	}))
	if res := loop.RetryPending(context.Background(), true); res.Succeeded != 1 {
		t.Errorf("retry result = %+v, want one success", res)
	}
	if len(pub.published) != 2 || pub.published[1].UserID != 3 {
		t.Errorf("unexpected publishes: %d", len(pub.published))
	}
}

func TestIngestorWithoutWALReturnsPublishError(t *testing.T) {
	t.Parallel()

	pub := &failingPublisher{err: errors.New("down")}
	ing := NewIngestor(nil, pub, zerolog.Nop())
	ev := &recommend.LoggedInteraction{EventID: "keep-me", Type: recommend.InteractionView}
	id, err := ing.Log(context.Background(), ev)
	if err == nil {
		t.Fatal("expected publish error")
	}
	if id != "keep-me" {
		t.Errorf("existing event ID replaced: %s", id)
	}
}

func TestBusPublishEntry(t *testing.T) {
	bus := newMemoryBus(t, memoryConfig())
	sink := newMemorySink()
	startConsumer(t, bus, sink)

	w := openTestWAL(t)
	if _, err := w.Write(context.Background(), &recommend.LoggedInteraction{EventID: "from-wal", Type: recommend.InteractionView}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	loop := wal.NewRetryLoop(w, bus)
	if res := loop.RetryPending(context.Background(), true); res.Succeeded != 1 {
		t.Fatalf("retry result = %+v", res)
	}
	waitFor(t, func() bool {
		_, ok := sink.get("from-wal")
		return ok
	})
}

type fakeStreams struct {
	exists  bool
	findErr error
	created *jetstream.StreamConfig
	updated *jetstream.StreamConfig
}

func (f *fakeStreams) Stream(context.Context, string) (jetstream.Stream, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if !f.exists {
		return nil, jetstream.ErrStreamNotFound
	}
	return nil, nil
}

func (f *fakeStreams) CreateStream(_ context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error) {
	f.created = &cfg
	return nil, nil
}

func (f *fakeStreams) UpdateStream(_ context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error) {
	f.updated = &cfg
	return nil, nil
}

func TestEnsureStream(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()

	create := &fakeStreams{}
	if _, err := ensureStream(context.Background(), create, &cfg); err != nil {
		t.Fatalf("ensureStream create failed: %v", err)
	}
	if create.created == nil || create.created.Name != "INTERACTIONS" || create.created.Subjects[0] != "interactions.>" {
		t.Errorf("unexpected created stream: %+v", create.created)
	}
	if create.created.MaxAge != 7*24*time.Hour {
		t.Errorf("MaxAge = %v", create.created.MaxAge)
	}

	update := &fakeStreams{exists: true}
	if _, err := ensureStream(context.Background(), update, &cfg); err != nil {
		t.Fatalf("ensureStream update failed: %v", err)
	}
	if update.updated == nil || update.created != nil {
		t.Error("existing stream should be updated, not created")
	}

	broken := &fakeStreams{findErr: errors.New("timeout")}
	if _, err := ensureStream(context.Background(), broken, &cfg); err == nil {
		t.Error("expected error for failed stream lookup")
	}
}

func TestServerConfigFromURL(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.URL = "nats://127.0.0.1:14222"
	if got := serverConfigFrom(&cfg).Port; got != 14222 {
		t.Errorf("Port = %d, want 14222", got)
	}
	cfg.URL = "::bad"
	if got := serverConfigFrom(&cfg).Port; got != 4222 {
		t.Errorf("Port = %d, want default 4222", got)
	}
}
