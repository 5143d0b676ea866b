package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/statusboard/internal/logging"
	pb "github.com/dmitrijs2005/statusboard/internal/proto"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, ch <-chan pb.ChangeEvent) pb.ChangeEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event")
	}
	return pb.ChangeEvent{}
}

func TestBroker_RoutesByTableAndFilter(t *testing.T) {
	b := NewBroker(logging.Discard())

	all, cancelAll := b.Subscribe("tasks", nil)
	defer cancelAll()
	one, cancelOne := b.Subscribe("tasks", map[string]any{"action_id": float64(1)})
	defer cancelOne()
	actions, cancelActions := b.Subscribe("actions", nil)
	defer cancelActions()

	b.Publish(pb.ChangeEvent{Table: "tasks", Op: pb.OpInsert, ID: "t2", Row: map[string]any{"action_id": float64(2)}})
	b.Publish(pb.ChangeEvent{Table: "tasks", Op: pb.OpUpdate, ID: "t1", Row: map[string]any{"action_id": float64(1)}})

	assert.Equal(t, "t2", recv(t, all).ID)
	ev := recv(t, all)
	assert.Equal(t, "t1", ev.ID)
	assert.Nil(t, ev.Row, "rows are not forwarded")

	assert.Equal(t, "t1", recv(t, one).ID)
	assert.Empty(t, one)
	assert.Empty(t, actions)
}

func TestBroker_CancelClosesAndUnregisters(t *testing.T) {
	b := NewBroker(logging.Discard())

	ch, cancel := b.Subscribe("actions", nil)
	assert.Equal(t, 1, b.Subscribers())

	cancel()
	cancel()
	assert.Equal(t, 0, b.Subscribers())

	_, open := <-ch
	assert.False(t, open)

	b.Publish(pb.ChangeEvent{Table: "actions", Op: pb.OpDelete, ID: "1"})
}

func TestBroker_SlowSubscriberDropsEvents(t *testing.T) {
	b := NewBroker(logging.Discard())
	ch, cancel := b.Subscribe("actions", nil)
	defer cancel()

	for i := 0; i < subscriberBuffer+10; i++ {
		b.Publish(pb.ChangeEvent{Table: "actions", Op: pb.OpUpdate, ID: "1"})
	}
	assert.Len(t, ch, subscriberBuffer)
}

type fakeConn struct {
	notes  chan *pgconn.Notification
	mu     sync.Mutex
	execs  []string
	closed bool
}

func (c *fakeConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.execs = append(c.execs, sql)
	return pgconn.CommandTag{}, nil
}

func (c *fakeConn) WaitForNotification(ctx context.Context) (*pgconn.Notification, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case n, ok := <-c.notes:
		if !ok {
			return nil, errors.New("connection lost")
		}
		return n, nil
	}
}

func (c *fakeConn) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func TestListener_PublishesAndReconnects(t *testing.T) {
	b := NewBroker(logging.Discard())
	events, cancelSub := b.Subscribe("actions", nil)
	defer cancelSub()

	first := &fakeConn{notes: make(chan *pgconn.Notification, 4)}
	second := &fakeConn{notes: make(chan *pgconn.Notification, 4)}
	conns := []*fakeConn{first, second}

	var dials atomic.Int32
	l := NewListener("unused", b, logging.Discard())
	l.Retry = time.Millisecond
	l.connect = func(ctx context.Context) (Conn, error) {
		n := dials.Add(1)
		switch n {
		case 1:
			return nil, errors.New("refused")
		case 2, 3:
			return conns[n-2], nil
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	first.notes <- &pgconn.Notification{Channel: Channel, Payload: `not json`}
	first.notes <- &pgconn.Notification{Channel: Channel, Payload: `{"table":"actions","op":"INSERT","id":"1","row":{"id":1}}`}
	assert.Equal(t, pb.ChangeEvent{Table: "actions", Op: "INSERT", ID: "1"}, recv(t, events))

	close(first.notes)
	second.notes <- &pgconn.Notification{Channel: Channel, Payload: `{"table":"actions","op":"DELETE","id":"1"}`}
	assert.Equal(t, "DELETE", recv(t, events).Op)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop")
	}

	first.mu.Lock()
	assert.Equal(t, []string{`LISTEN "statusboard_changes"`}, first.execs)
	assert.True(t, first.closed)
	first.mu.Unlock()
}

func TestDecode(t *testing.T) {
	ev, err := decode(`{"table":"tasks","op":"UPDATE","id":"t1","row":{"action_id":3}}`)
	require.NoError(t, err)
	assert.Equal(t, "tasks", ev.Table)
	assert.Equal(t, float64(3), ev.Row["action_id"])

	_, err = decode(`{"id":"x"}`)
	assert.Error(t, err)
}
