// Package notify fans PostgreSQL change notifications out to subscribers.
package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/statusboard/internal/logging"
	pb "github.com/dmitrijs2005/statusboard/internal/proto"
)

// Channel is the LISTEN channel the table triggers notify.
const Channel = "statusboard_changes"

const subscriberBuffer = 64

type subscriber struct {
	table  string
	filter map[string]any
	ch     chan pb.ChangeEvent
}

// Broker delivers published events to the subscribers of the event table
// whose filter matches the changed row. A subscriber that falls behind loses
// events rather than blocking the others.
type Broker struct {
	mu     sync.Mutex
	subs   map[int]*subscriber
	nextID int
	log    logging.Logger
}

func NewBroker(log logging.Logger) *Broker {
	return &Broker{subs: make(map[int]*subscriber), log: log.With("module", "notify")}
}

// Subscribe returns the event channel and a cancel func that must be called
// once the caller stops reading. The channel is closed by cancel.
func (b *Broker) Subscribe(table string, filter map[string]any) (<-chan pb.ChangeEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	s := &subscriber{table: table, filter: filter, ch: make(chan pb.ChangeEvent, subscriberBuffer)}
	b.subs[id] = s

	var once sync.Once
	return s.ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(s.ch)
		})
	}
}

// Subscribers returns the number of active subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broker) Publish(ev pb.ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := ev
	out.Row = nil
	for _, s := range b.subs {
		if s.table != ev.Table || !matches(ev.Row, s.filter) {
			continue
		}
		select {
		case s.ch <- out:
		default:
			b.log.Warn(context.Background(), "subscriber is behind, event dropped", "table", ev.Table, "id", ev.ID)
		}
	}
}

// matches compares by printed value since row numbers arrive as float64
// from JSON and filters may carry either form.
func matches(row, filter map[string]any) bool {
	for k, v := range filter {
		if fmt.Sprint(row[k]) != fmt.Sprint(v) {
			return false
		}
	}
	return true
}
