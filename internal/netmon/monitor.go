// Package netmon tracks reachability of the backend API. The repositories
// consult it to pick network or cache per read; the sync manager subscribes
// to connectivity-restored transitions to trigger a flush.
package netmon

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Probe reports whether the backend answered a liveness check.
type Probe func(ctx context.Context) bool

// HTTPProbe probes the backend's /ping endpoint. Any HTTP response counts as
// reachable; only transport-level failures do not.
func HTTPProbe(baseURL string, client *http.Client) Probe {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return func(ctx context.Context) bool {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/ping", nil)
		if err != nil {
			return false
		}
		resp, err := client.Do(req)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	}
}

// Monitor polls a probe on an interval and fans transition events out to
// subscribers. It is constructed once at the composition root and passed to
// every component that needs it.
type Monitor struct {
	probe    Probe
	interval time.Duration
	logger   *zap.Logger

	reachable atomic.Bool

	mu   sync.Mutex
	subs []chan bool

	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor creates a monitor. It starts out unreachable until the first
// probe; call CheckNow for a synchronous initial answer.
func NewMonitor(probe Probe, interval time.Duration, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Monitor{probe: probe, interval: interval, logger: logger}
}

// Reachable returns the last observed reachability.
func (m *Monitor) Reachable() bool { return m.reachable.Load() }

// CheckNow runs one probe immediately and publishes any transition.
func (m *Monitor) CheckNow(ctx context.Context) bool {
	up := m.probe(ctx)
	m.publish(up)
	return up
}

// Subscribe returns a channel that receives the new reachability value on
// every transition. Slow subscribers drop events rather than block the poll
// loop.
func (m *Monitor) Subscribe() <-chan bool {
	ch := make(chan bool, 1)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch
}

// Start launches the poll loop. Stop (or cancelling ctx) ends it.
func (m *Monitor) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.CheckNow(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.CheckNow(ctx)
			}
		}
	}()
}

// Stop ends the poll loop and waits for it to exit.
func (m *Monitor) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
}

func (m *Monitor) publish(up bool) {
	if m.reachable.Swap(up) == up {
		return // no transition
	}
	m.logger.Info("network reachability changed", zap.Bool("reachable", up))

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- up:
		default:
		}
	}
}
