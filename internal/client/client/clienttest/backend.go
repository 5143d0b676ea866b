// Package clienttest provides an in-memory client.Client for tests.
package clienttest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dmitrijs2005/statusboard/internal/client/client"
	"github.com/dmitrijs2005/statusboard/internal/common"
	pb "github.com/dmitrijs2005/statusboard/internal/proto"
)

// Backend stores rows per table and assigns numeric ids to rows inserted
// without one. Set Err to make every call fail, or PingErr for Ping only.
type Backend struct {
	mu      sync.Mutex
	tables  map[string][]client.Row
	nextID  float64
	subs    []chan pb.ChangeEvent
	Err     error
	PingErr error
	Calls   []string
	// Uploads records presigned names.
	Uploads []string
	// PresignURL is returned by PresignExport.
	PresignURL string
}

func New() *Backend {
	return &Backend{tables: make(map[string][]client.Row), nextID: 1}
}

func (b *Backend) record(call string) error {
	b.Calls = append(b.Calls, call)
	return b.Err
}

func (b *Backend) Close() error { return nil }

func (b *Backend) Ping(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("Ping"); err != nil {
		return err
	}
	return b.PingErr
}

// Rows returns a copy of the rows of table.
func (b *Backend) Rows(table string) []client.Row {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]client.Row(nil), b.tables[table]...)
}

func matches(r client.Row, filter client.Row) bool {
	for k, v := range filter {
		if fmt.Sprint(r[k]) != fmt.Sprint(v) {
			return false
		}
	}
	return true
}

func (b *Backend) FetchAll(ctx context.Context, req pb.FetchRequest) ([]client.Row, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("FetchAll " + req.Table); err != nil {
		return nil, err
	}

	var out []client.Row
	for _, r := range b.tables[req.Table] {
		if matches(r, req.Filter) {
			out = append(out, copyRow(r))
		}
	}
	if req.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i][req.OrderBy], out[j][req.OrderBy]
			if req.Desc {
				a, b = b, a
			}
			return less(a, b)
		})
	}
	return out, nil
}

func less(a, b any) bool {
	x, okx := a.(float64)
	y, oky := b.(float64)
	if okx && oky {
		return x < y
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func (b *Backend) Insert(ctx context.Context, table string, record client.Row) (client.Row, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("Insert " + table); err != nil {
		return nil, err
	}

	row := normalize(record)
	if row["id"] == nil {
		row["id"] = b.nextID
		b.nextID++
	}
	b.tables[table] = append(b.tables[table], row)
	b.notify(table, pb.OpInsert, row)
	return copyRow(row), nil
}

func (b *Backend) Upsert(ctx context.Context, table string, record client.Row) (client.Row, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("Upsert " + table); err != nil {
		return nil, err
	}

	row := normalize(record)
	for i, r := range b.tables[table] {
		if fmt.Sprint(r["id"]) == fmt.Sprint(row["id"]) {
			b.tables[table][i] = row
			b.notify(table, pb.OpUpdate, row)
			return copyRow(row), nil
		}
	}
	b.tables[table] = append(b.tables[table], row)
	b.notify(table, pb.OpInsert, row)
	return copyRow(row), nil
}

func (b *Backend) Delete(ctx context.Context, table, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("Delete " + table); err != nil {
		return err
	}

	rows := b.tables[table]
	for i, r := range rows {
		if fmt.Sprint(r["id"]) == id {
			b.tables[table] = append(rows[:i:i], rows[i+1:]...)
			b.notify(table, pb.OpDelete, r)
			return nil
		}
	}
	return fmt.Errorf("%s %s: %w", table, id, common.ErrorNotFound)
}

func (b *Backend) Subscribe(ctx context.Context, table string, filter client.Row, fn func(pb.ChangeEvent)) error {
	b.mu.Lock()
	if err := b.record("Subscribe " + table); err != nil {
		b.mu.Unlock()
		return err
	}
	ch := make(chan pb.ChangeEvent, 16)
	b.subs = append(b.subs, ch)
	b.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-ch:
			if ev.Table == table && matches(ev.Row, filter) {
				ev.Row = nil
				fn(ev)
			}
		}
	}
}

// Subscribers returns the number of Subscribe calls that are listening.
func (b *Backend) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Backend) notify(table, op string, row client.Row) {
	ev := pb.ChangeEvent{Table: table, Op: op, ID: fmt.Sprint(row["id"]), Row: copyRow(row)}
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (b *Backend) PresignExport(ctx context.Context, name string) (string, string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("PresignExport"); err != nil {
		return "", "", err
	}
	b.Uploads = append(b.Uploads, name)
	return b.PresignURL, "exports/" + name, nil
}

// normalize mimics the wire: numbers become float64.
func normalize(r client.Row) client.Row {
	out := make(client.Row, len(r))
	for k, v := range r {
		switch x := v.(type) {
		case int:
			out[k] = float64(x)
		case int64:
			out[k] = float64(x)
		default:
			out[k] = v
		}
	}
	return out
}

func copyRow(r client.Row) client.Row {
	out := make(client.Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

var _ client.Client = (*Backend)(nil)
