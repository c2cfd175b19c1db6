// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package monitor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jeranaias/friendsfixer-tui/internal/fixer"
	"github.com/jeranaias/friendsfixer-tui/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// Idle keep-alive connections from httptest-backed clients.
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

// =============================================================================
// TEST HELPERS
// =============================================================================

// fakeChecker returns the configured result. When block is set every call
// waits on it (or on ctx) before returning.
type fakeChecker struct {
	mu     sync.Mutex
	health *fixer.HealthResponse
	err    error
	block  chan struct{}
	calls  atomic.Int32
}

func (f *fakeChecker) set(health *fixer.HealthResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.health, f.err = health, err
}

func (f *fakeChecker) Health(ctx context.Context) (*fixer.HealthResponse, error) {
	f.calls.Add(1)

	f.mu.Lock()
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.health, f.err
}

func ready() *fixer.HealthResponse   { return &fixer.HealthResponse{Status: "healthy", Ready: true} }
func loading() *fixer.HealthResponse { return &fixer.HealthResponse{Status: "healthy", Ready: false} }

func fastConfig() Config {
	return Config{PollInterval: 10 * time.Millisecond}
}

// =============================================================================
// STATE TESTS
// =============================================================================

func TestNew_StartsChecking(t *testing.T) {
	m := New(&fakeChecker{}, Config{})

	assert.Equal(t, model.StatusChecking, m.Status())
	assert.Equal(t, DefaultPollInterval, m.Interval())
	assert.True(t, m.Snapshot().CheckedAt.IsZero())
	assert.False(t, m.Running())
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		health *fixer.HealthResponse
		err    error
		want   model.ConnectionStatus
	}{
		{"ready", ready(), nil, model.StatusReady},
		{"loading", loading(), nil, model.StatusLoading},
		{"nil payload", nil, nil, model.StatusLoading},
		{"error", nil, errors.New("connection refused"), model.StatusError},
		{"error wins over payload", ready(), errors.New("boom"), model.StatusError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Evaluate(tc.health, tc.err))
		})
	}
}

// =============================================================================
// RETRY TESTS
// =============================================================================

func TestRetryNow_FollowsHealth(t *testing.T) {
	checker := &fakeChecker{}
	m := New(checker, fastConfig())
	ctx := context.Background()

	checker.set(loading(), nil)
	assert.Equal(t, model.StatusLoading, m.RetryNow(ctx))

	checker.set(ready(), nil)
	assert.Equal(t, model.StatusReady, m.RetryNow(ctx))

	checker.set(nil, errors.New("refused"))
	assert.Equal(t, model.StatusError, m.RetryNow(ctx))
	assert.EqualError(t, m.Snapshot().Err, "refused")

	checker.set(ready(), nil)
	assert.Equal(t, model.StatusReady, m.RetryNow(ctx))
	assert.NoError(t, m.Snapshot().Err)
	assert.Equal(t, 4, m.Snapshot().Checks)
}

func TestRetryNow_Idempotent(t *testing.T) {
	for _, tc := range []struct {
		health *fixer.HealthResponse
		err    error
	}{
		{ready(), nil},
		{loading(), nil},
		{nil, errors.New("refused")},
	} {
		checker := &fakeChecker{}
		checker.set(tc.health, tc.err)
		m := New(checker, fastConfig())

		first := m.RetryNow(context.Background())
		second := m.RetryNow(context.Background())
		assert.Equal(t, first, second)
	}
}

func TestRetryNow_KeepsLastHealthPayload(t *testing.T) {
	checker := &fakeChecker{}
	m := New(checker, fastConfig())

	checker.set(&fixer.HealthResponse{Status: "healthy", Ready: true, Files: map[string]any{"model_exists": true}}, nil)
	m.RetryNow(context.Background())

	checker.set(nil, errors.New("refused"))
	m.RetryNow(context.Background())

	snap := m.Snapshot()
	require.NotNil(t, snap.Health)
	assert.Equal(t, true, snap.Health.Files["model_exists"])
	assert.Equal(t, model.StatusError, snap.Status)
}

// =============================================================================
// POLLING TESTS
// =============================================================================

func TestStart_ChecksImmediately(t *testing.T) {
	checker := &fakeChecker{}
	checker.set(ready(), nil)

	// Long interval so only the immediate check can run
	m := New(checker, Config{PollInterval: time.Hour})
	m.Start(context.Background())
	defer m.Stop()

	require.Eventually(t, func() bool {
		return m.Status() == model.StatusReady
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), checker.calls.Load())
}

func TestStart_PollsOnInterval(t *testing.T) {
	checker := &fakeChecker{}
	checker.set(loading(), nil)

	m := New(checker, fastConfig())
	m.Start(context.Background())
	defer m.Stop()

	require.Eventually(t, func() bool {
		return m.Status() == model.StatusLoading
	}, time.Second, 5*time.Millisecond)

	// Model finishes loading between polls
	checker.set(ready(), nil)
	require.Eventually(t, func() bool {
		return m.Status() == model.StatusReady
	}, time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, checker.calls.Load(), int32(2))
}

func TestStart_Twice(t *testing.T) {
	checker := &fakeChecker{}
	checker.set(ready(), nil)

	m := New(checker, Config{PollInterval: time.Hour})
	m.Start(context.Background())
	m.Start(context.Background())
	defer m.Stop()

	require.Eventually(t, func() bool { return m.Snapshot().Checks == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), checker.calls.Load())
}

func TestPoll_SkipsWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	checker := &fakeChecker{block: release}
	checker.set(ready(), nil)

	m := New(checker, fastConfig())
	m.Start(context.Background())

	require.Eventually(t, func() bool {
		return m.Snapshot().Skipped >= 3
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), checker.calls.Load(), "no overlapping polls")
	assert.Equal(t, model.StatusChecking, m.Status())

	close(release)
	require.Eventually(t, func() bool {
		return m.Status() == model.StatusReady
	}, time.Second, 5*time.Millisecond)

	m.Stop()
}

// =============================================================================
// LIFECYCLE TESTS
// =============================================================================

func TestStop_Idempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	checker := &fakeChecker{}
	checker.set(ready(), nil)

	m := New(checker, fastConfig())
	m.Stop() // before Start

	m.Start(context.Background())
	require.Eventually(t, m.Running, time.Second, 5*time.Millisecond)
	m.Stop()
	m.Stop()
	assert.False(t, m.Running())
}

func TestStop_CancelsInFlightCheck(t *testing.T) {
	defer goleak.VerifyNone(t)

	checker := &fakeChecker{block: make(chan struct{})}
	checker.set(ready(), nil)

	m := New(checker, fastConfig())
	m.Start(context.Background())
	require.Eventually(t, func() bool { return checker.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		m.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return while a check was in flight")
	}

	// The cancelled check must not be reported as a service error
	assert.Equal(t, model.StatusChecking, m.Status())
	assert.Equal(t, 0, m.Snapshot().Checks)
}

func TestStop_NoPollsAfterStop(t *testing.T) {
	checker := &fakeChecker{}
	checker.set(ready(), nil)

	m := New(checker, fastConfig())
	m.Start(context.Background())
	require.Eventually(t, func() bool { return checker.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	m.Stop()

	calls := checker.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, checker.calls.Load())
}

func TestStart_AfterStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	checker := &fakeChecker{}
	checker.set(loading(), nil)

	m := New(checker, Config{PollInterval: time.Hour})
	m.Start(context.Background())
	require.Eventually(t, func() bool { return m.Status() == model.StatusLoading }, time.Second, 5*time.Millisecond)
	m.Stop()

	checker.set(ready(), nil)
	m.Start(context.Background())
	require.Eventually(t, func() bool { return m.Status() == model.StatusReady }, time.Second, 5*time.Millisecond)
	m.Stop()
}

func TestStart_ParentContextCancel(t *testing.T) {
	checker := &fakeChecker{}
	checker.set(ready(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	m := New(checker, fastConfig())
	m.Start(ctx)
	require.Eventually(t, func() bool { return m.Status() == model.StatusReady }, time.Second, 5*time.Millisecond)

	cancel()
	m.Stop()
	assert.False(t, m.Running())
}

func TestSubscribe_SignalledAfterCheck(t *testing.T) {
	checker := &fakeChecker{}
	checker.set(ready(), nil)

	m := New(checker, fastConfig())
	updates, cancel := m.Subscribe()
	defer cancel()

	m.RetryNow(context.Background())

	select {
	case <-updates:
	case <-time.After(time.Second):
		t.Fatal("expected an update signal")
	}
	assert.Equal(t, model.StatusReady, m.Status())
}

// =============================================================================
// INTEGRATION WITH THE HTTP CLIENT
// =============================================================================

func TestMonitor_WithClient(t *testing.T) {
	var aiReady atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if aiReady.Load() {
			w.Write([]byte(`{"status":"healthy","ai_ready":true}`))
			return
		}
		w.Write([]byte(`{"status":"healthy","ai_ready":false}`))
	}))
	defer server.Close()

	m := New(fixer.NewClient(server.URL), fastConfig())
	m.Start(context.Background())
	defer m.Stop()

	require.Eventually(t, func() bool { return m.Status() == model.StatusLoading }, time.Second, 5*time.Millisecond)
	aiReady.Store(true)
	require.Eventually(t, func() bool { return m.Status() == model.StatusReady }, time.Second, 5*time.Millisecond)
}

func TestMonitor_HealthTimeoutBecomesError(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := fixer.NewClientWithConfig(&fixer.ClientConfig{
		BaseURL:       server.URL,
		HealthTimeout: 50 * time.Millisecond,
	})
	m := New(client, Config{PollInterval: time.Hour})

	assert.Equal(t, model.StatusError, m.RetryNow(context.Background()))
	assert.True(t, fixer.IsTimeout(m.Snapshot().Err))
}
