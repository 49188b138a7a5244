// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/saveeat/internal/logging"
	"github.com/tomtom215/saveeat/internal/recommend/engine"
	"github.com/tomtom215/saveeat/internal/supervisor/services"
)

func testLogger() *slog.Logger {
	return slog.New(logging.NewSlogHandler(zerolog.Nop()))
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestNewSupervisorTreeDefaults(t *testing.T) {
	t.Parallel()

	tree, err := NewSupervisorTree(testLogger(), TreeConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if tree.config != DefaultTreeConfig() {
		t.Errorf("config = %+v, want %+v", tree.config, DefaultTreeConfig())
	}
	for l := Layer(0); l < numLayers; l++ {
		if tree.layers[l] == nil {
			t.Errorf("%s not created", l)
		}
	}
	if LayerModel.String() != "model-layer" || Layer(9).String() != "layer(9)" {
		t.Errorf("unexpected layer names %q %q", LayerModel, Layer(9))
	}

	custom, err := NewSupervisorTree(testLogger(), TreeConfig{FailureThreshold: 2, FailureBackoff: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	if custom.config.FailureThreshold != 2 || custom.config.FailureBackoff != time.Second {
		t.Errorf("explicit values overridden: %+v", custom.config)
	}
	if custom.config.FailureDecay != 30 || custom.config.ShutdownTimeout != 10*time.Second {
		t.Errorf("zero values not defaulted: %+v", custom.config)
	}
}

func TestSupervisorTreeStartsEveryLayer(t *testing.T) {
	t.Parallel()

	tree, err := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	layers := map[string]*mockService{
		"wal-retry-loop":  newMockService("wal-retry-loop"),
		"events-consumer": newMockService("events-consumer"),
		"bundle-reloader": newMockService("bundle-reloader"),
		"http-server":     newMockService("http-server"),
	}
	tree.Add(LayerData, layers["wal-retry-loop"])
	tree.Add(LayerMessaging, layers["events-consumer"])
	tree.Add(LayerModel, layers["bundle-reloader"])
	tree.Add(LayerAPI, layers["http-server"])

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	for name, svc := range layers {
		if !waitFor(t, time.Second, func() bool { return svc.StartCount() >= 1 }) {
			t.Errorf("%s was not started", name)
		}
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not shut down")
	}
	if report, _ := tree.UnstoppedServiceReport(); len(report) != 0 {
		t.Errorf("unstopped services: %v", report)
	}
}

func TestSupervisorTreeIsolatesFailures(t *testing.T) {
	t.Parallel()

	tree, err := NewSupervisorTree(testLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  500 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}

	flaky := newMockService("events-consumer")
	flaky.failures = 3
	api := newMockService("http-server")
	tree.Add(LayerMessaging, flaky)
	tree.Add(LayerAPI, api)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	if !waitFor(t, 500*time.Millisecond, func() bool { return flaky.StartCount() >= 4 }) {
		t.Errorf("flaky service restarts = %d, want >= 4", flaky.StartCount())
	}
	if got := api.StartCount(); got != 1 {
		t.Errorf("api service restarted by a messaging failure: starts = %d", got)
	}

	cancel()
	<-errCh
}

func TestSupervisorTreeDoNotRestart(t *testing.T) {
	t.Parallel()

	tree, err := NewSupervisorTree(testLogger(), TreeConfig{FailureBackoff: 10 * time.Millisecond, ShutdownTimeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	once := newMockService("one-shot")
	once.err = suture.ErrDoNotRestart
	tree.Add(LayerModel, once)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	<-tree.ServeBackground(ctx)

	if got := once.StartCount(); got != 1 {
		t.Errorf("starts = %d, want 1", got)
	}
}

type countingReloader struct {
	calls atomic.Int32
}

func (c *countingReloader) Reload(context.Context) (*engine.ReloadResult, error) {
	c.calls.Add(1)
	return &engine.ReloadResult{Reason: "unchanged"}, nil
}

func TestSupervisorTreeModelLayer(t *testing.T) {
	t.Parallel()

	tree, err := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	reloader := &countingReloader{}
	token := tree.Add(LayerModel, services.NewBundleReloadService(reloader, time.Hour, zerolog.Nop()))
	other := newMockService("training-service")
	tree.Add(LayerModel, other)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	if !waitFor(t, time.Second, func() bool { return reloader.calls.Load() >= 1 }) {
		t.Fatal("bundle reloader did not run its startup reload")
	}
	if err := tree.Remove(LayerModel, token); err != nil {
		t.Errorf("Remove() = %v", err)
	}
	if !waitFor(t, time.Second, func() bool { return other.StartCount() >= 1 }) {
		t.Error("sibling model service not running")
	}

	cancel()
	<-errCh
}
