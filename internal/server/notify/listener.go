package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dmitrijs2005/statusboard/internal/logging"
	pb "github.com/dmitrijs2005/statusboard/internal/proto"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Conn is the part of *pgx.Conn the listener uses.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

// Listener keeps a dedicated connection in LISTEN mode and publishes every
// notification to the broker. A lost connection is reopened after Retry.
type Listener struct {
	connect func(ctx context.Context) (Conn, error)
	broker  *Broker
	log     logging.Logger
	Retry   time.Duration
}

func NewListener(dsn string, broker *Broker, log logging.Logger) *Listener {
	return &Listener{
		connect: func(ctx context.Context) (Conn, error) {
			return pgx.Connect(ctx, dsn)
		},
		broker: broker,
		log:    log.With("module", "listener"),
		Retry:  2 * time.Second,
	}
}

// Run blocks until ctx is done.
func (l *Listener) Run(ctx context.Context) error {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		l.log.Warn(ctx, "change listener stopped, reconnecting", "error", err, "retry", l.Retry)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.Retry):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{Channel}.Sanitize()); err != nil {
		return err
	}
	l.log.Info(ctx, "listening for changes", "channel", Channel)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		ev, err := decode(n.Payload)
		if err != nil {
			l.log.Warn(ctx, "malformed change notification", "error", err)
			continue
		}
		l.broker.Publish(ev)
	}
}

func decode(payload string) (pb.ChangeEvent, error) {
	var ev pb.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return ev, err
	}
	if ev.Table == "" || ev.Op == "" {
		return ev, errors.New("missing table or op")
	}
	return ev, nil
}
