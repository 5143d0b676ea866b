// Package connectivity tracks whether the backend can be used.
package connectivity

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/statusboard/internal/client/client"
	"github.com/dmitrijs2005/statusboard/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
	// ModeDisabled means the backend is not used at all: there is no access
	// token, or the backend rejected it.
	ModeDisabled Mode = "disabled"
)

const pingTimeout = 3 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type Monitor struct {
	mu       sync.RWMutex
	mode     Mode
	pinger   Pinger
	interval time.Duration
	log      logging.Logger
	watchers []func(Mode)
}

// NewMonitor returns a monitor in offline mode, or permanently disabled when
// pinger is nil.
func NewMonitor(pinger Pinger, interval time.Duration, log logging.Logger) *Monitor {
	m := &Monitor{mode: ModeOffline, pinger: pinger, interval: interval, log: log.With("module", "connectivity")}
	if pinger == nil {
		m.mode = ModeDisabled
	}
	return m
}

func (m *Monitor) Mode() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode
}

func (m *Monitor) Online() bool {
	return m.Mode() == ModeOnline
}

// OnChange registers fn to run after every mode switch.
func (m *Monitor) OnChange(fn func(Mode)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watchers = append(m.watchers, fn)
}

func (m *Monitor) setMode(ctx context.Context, mode Mode) {
	m.mu.Lock()
	if m.mode == mode {
		m.mu.Unlock()
		return
	}
	m.mode = mode
	watchers := append([]func(Mode){}, m.watchers...)
	m.mu.Unlock()

	m.log.Info(ctx, "switched mode", "mode", mode)
	for _, fn := range watchers {
		fn(mode)
	}
}

// Check pings the backend once and updates the mode.
func (m *Monitor) Check(ctx context.Context) Mode {
	if m.pinger == nil || m.Mode() == ModeDisabled {
		return ModeDisabled
	}

	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := m.pinger.Ping(pctx)
	cancel()

	switch {
	case err == nil:
		m.setMode(ctx, ModeOnline)
	case errors.Is(err, client.ErrUnauthorized):
		m.log.Warn(ctx, "access token rejected, working locally", "error", err)
		m.setMode(ctx, ModeDisabled)
	default:
		m.log.Debug(ctx, "ping failed", "error", err)
		m.setMode(ctx, ModeOffline)
	}
	return m.Mode()
}

// Run checks immediately and then every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	if m.Check(ctx) == ModeDisabled || m.interval <= 0 {
		return
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if m.Check(ctx) == ModeDisabled {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
