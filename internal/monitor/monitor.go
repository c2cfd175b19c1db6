// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/friendsfixer-tui/internal/fixer"
	"github.com/jeranaias/friendsfixer-tui/internal/model"
	"github.com/jeranaias/friendsfixer-tui/internal/util"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// DefaultPollInterval is how often the health endpoint is polled.
const DefaultPollInterval = 5 * time.Second

// HealthChecker is the part of the service client the monitor needs.
type HealthChecker interface {
	Health(ctx context.Context) (*fixer.HealthResponse, error)
}

// Config holds configuration for the monitor.
type Config struct {
	// PollInterval is the delay between scheduled health checks (default: 5 seconds)
	PollInterval time.Duration

	// Logger receives status transitions and skipped polls. Nil disables logging.
	Logger *zap.Logger
}

// DefaultConfig returns the default monitor configuration.
func DefaultConfig() Config {
	return Config{PollInterval: DefaultPollInterval}
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is a point-in-time copy of the monitor state.
type Snapshot struct {
	Status    model.ConnectionStatus
	CheckedAt time.Time             // zero until the first check completes
	Err       error                 // error from the last check, if any
	Health    *fixer.HealthResponse // payload from the last successful check
	Checks    int                   // completed checks
	Skipped   int                   // scheduled polls skipped because one was in flight
}

// =============================================================================
// MONITOR
// =============================================================================

// Monitor polls service health and owns the current ConnectionStatus.
type Monitor struct {
	checker  HealthChecker
	interval time.Duration
	logger   *zap.Logger
	notifier *util.Notifier

	mu      sync.RWMutex
	snap    Snapshot
	applied uint64 // sequence of the newest result written to snap

	seq      atomic.Uint64
	inFlight atomic.Int32

	// Lifecycle
	lifeMu  sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// New creates a monitor in StatusChecking. Polling begins with Start.
func New(checker HealthChecker, cfg Config) *Monitor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		checker:  checker,
		interval: cfg.PollInterval,
		logger:   logger.Named("monitor"),
		notifier: util.NewNotifier(),
		snap:     Snapshot{Status: model.StatusChecking},
	}
}

// Status returns the current connection status.
func (m *Monitor) Status() model.ConnectionStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap.Status
}

// Snapshot returns a copy of the current monitor state.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

// Subscribe returns a channel signalled after every completed check.
// Call cancel to unsubscribe.
func (m *Monitor) Subscribe() (<-chan struct{}, func()) {
	return m.notifier.Subscribe()
}

// Interval returns the poll interval.
func (m *Monitor) Interval() time.Duration {
	return m.interval
}

// Running reports whether the poll loop is active.
func (m *Monitor) Running() bool {
	m.lifeMu.Lock()
	defer m.lifeMu.Unlock()
	return m.running
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Start runs one check immediately and then one per poll interval until Stop
// is called or ctx is cancelled. Calling Start on a running monitor does
// nothing.
func (m *Monitor) Start(ctx context.Context) {
	m.lifeMu.Lock()
	defer m.lifeMu.Unlock()

	if m.running {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	m.running = true

	go m.loop(loopCtx, m.done)
}

// Stop cancels polling and waits for the loop and any in-flight check to
// return. It is safe to call more than once. A stopped monitor can be
// started again.
func (m *Monitor) Stop() {
	m.lifeMu.Lock()
	defer m.lifeMu.Unlock()

	if !m.running {
		return
	}
	m.cancel()
	<-m.done
	m.running = false
	m.cancel = nil
	m.done = nil
}

func (m *Monitor) loop(ctx context.Context, done chan struct{}) {
	var polls sync.WaitGroup
	defer func() {
		polls.Wait()
		close(done)
	}()

	poll := func() {
		if m.inFlight.Load() > 0 {
			m.mu.Lock()
			m.snap.Skipped++
			m.mu.Unlock()
			m.logger.Debug("health check still in flight, skipping poll")
			return
		}
		m.inFlight.Add(1)
		polls.Add(1)
		go func() {
			defer polls.Done()
			defer m.inFlight.Add(-1)
			m.runCheck(ctx)
		}()
	}

	poll()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			poll()
		}
	}
}

// =============================================================================
// CHECKS
// =============================================================================

// RetryNow performs one health check immediately, outside the poll schedule,
// and returns the resulting status.
func (m *Monitor) RetryNow(ctx context.Context) model.ConnectionStatus {
	m.check(ctx)
	return m.Status()
}

func (m *Monitor) check(ctx context.Context) {
	m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	m.runCheck(ctx)
}

func (m *Monitor) runCheck(ctx context.Context) {
	seq := m.seq.Add(1)
	health, err := m.checker.Health(ctx)

	// Results of a cancelled check say nothing about the service.
	if ctx.Err() != nil {
		return
	}

	next := Evaluate(health, err)

	m.mu.Lock()
	if seq < m.applied {
		// A later check already landed.
		m.mu.Unlock()
		return
	}
	m.applied = seq
	prev := m.snap.Status
	m.snap.Status = next
	m.snap.CheckedAt = time.Now()
	m.snap.Err = err
	if err == nil {
		m.snap.Health = health
	}
	m.snap.Checks++
	m.mu.Unlock()

	if prev != next {
		fields := []zap.Field{zap.Stringer("from", prev), zap.Stringer("to", next)}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		m.logger.Info("connection status changed", fields...)
	}

	m.notifier.Notify()
}

// Evaluate maps a health check result to a connection status.
func Evaluate(health *fixer.HealthResponse, err error) model.ConnectionStatus {
	switch {
	case err != nil:
		return model.StatusError
	case health != nil && health.Ready:
		return model.StatusReady
	default:
		return model.StatusLoading
	}
}
