package assistant

import (
	"context"
	"sync"
	"time"

	"github.com/NgigiN/fintrack/internal/store"
	"go.uber.org/zap"
)

const DefaultQuietPeriod = 2 * time.Second

// Monitor watches the transaction count and runs check once the list has been
// quiet for the quiet period, but only when the count grew by exactly one
// since the last settled value. Bulk imports, deletions and rollbacks are
// ignored.
type Monitor struct {
	quiet time.Duration
	check func(context.Context)
	busy  func() bool
	log   *zap.Logger

	mu      sync.Mutex
	settled int
	current int
	gen     int
	timer   *time.Timer
	stopped bool
}

type MonitorOption func(*Monitor)

func WithQuietPeriod(d time.Duration) MonitorOption {
	return func(m *Monitor) { m.quiet = d }
}

// WithBusy skips the check while busy reports true.
func WithBusy(busy func() bool) MonitorOption {
	return func(m *Monitor) { m.busy = busy }
}

func NewMonitor(initial int, check func(context.Context), log *zap.Logger, opts ...MonitorOption) *Monitor {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Monitor{
		quiet:   DefaultQuietPeriod,
		check:   check,
		busy:    func() bool { return false },
		log:     log,
		settled: initial,
		current: initial,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Observe feeds a store event to the monitor. It is meant to be passed to
// store.Subscribe.
func (m *Monitor) Observe(e store.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}

	m.gen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.current = e.Count

	if e.Resets() {
		m.settled = e.Count
		return
	}

	gen := m.gen
	m.timer = time.AfterFunc(m.quiet, func() { m.fire(gen) })
}

func (m *Monitor) fire(gen int) {
	m.mu.Lock()
	if m.stopped || gen != m.gen {
		m.mu.Unlock()
		return
	}
	grew := m.current == m.settled+1
	m.settled = m.current
	m.timer = nil
	m.mu.Unlock()

	if !grew {
		return
	}
	if m.busy() {
		m.log.Debug("skipping risk check, reply in progress")
		return
	}
	m.check(context.Background())
}

func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}
