// Package uistate persists the dashboard view settings between runs.
package uistate

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/statusboard/internal/client/query"
	"github.com/dmitrijs2005/statusboard/internal/client/securestore"
	"github.com/dmitrijs2005/statusboard/internal/common"
	"github.com/dmitrijs2005/statusboard/internal/logging"
)

// DefaultDelay is how long Save waits for further changes before writing.
const DefaultDelay = 300 * time.Millisecond

type View string

const (
	ViewTable     View = "table"
	ViewDashboard View = "dashboard"
)

type State struct {
	View   View         `json:"view"`
	Filter query.Filter `json:"filter"`
	Sort   query.Sort   `json:"sort"`
	Scroll int          `json:"scroll"`
}

func Default() State {
	return State{View: ViewTable, Sort: query.Sort{Field: query.SortByID}}
}

// Saver coalesces bursts of state changes into one encrypted write.
type Saver struct {
	store *securestore.Store
	delay time.Duration
	log   logging.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending *State
}

func NewSaver(store *securestore.Store, delay time.Duration, log logging.Logger) *Saver {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Saver{store: store, delay: delay, log: log.With("module", "uistate")}
}

// Load returns the stored state, or Default when none is readable.
func (s *Saver) Load(ctx context.Context) State {
	st := Default()
	if !s.store.GetSecureItem(ctx, common.UIStateStorageKey, &st) {
		return Default()
	}
	if st.View == "" {
		st.View = ViewTable
	}
	return st
}

// Save schedules st to be written after the delay. A call before the timer
// fires replaces the pending state and restarts the delay.
func (s *Saver) Save(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = &st
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		if err := s.Flush(context.Background()); err != nil {
			s.log.Warn(context.Background(), "ui state not saved", "error", err)
		}
	})
}

// Flush writes the pending state now, if any.
func (s *Saver) Flush(ctx context.Context) error {
	s.mu.Lock()
	st := s.pending
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	if st == nil {
		return nil
	}
	return s.store.SetSecureItem(ctx, common.UIStateStorageKey, *st)
}
