package grpc

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/statusboard/internal/common"
	pb "github.com/dmitrijs2005/statusboard/internal/proto"
	"github.com/dmitrijs2005/statusboard/internal/server/rows"
)

// memRows is an in-memory rows.Repository that honors the table allowlist.
type memRows struct {
	mu     sync.Mutex
	tables map[string][]rows.Row
	nextID int64
	err    error
}

func newMemRows() *memRows {
	return &memRows{tables: map[string][]rows.Row{}, nextID: 1}
}

func (m *memRows) FetchAll(ctx context.Context, req pb.FetchRequest) ([]rows.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if _, err := rows.Lookup(req.Table); err != nil {
		return nil, err
	}
	out := []rows.Row{}
	for _, r := range m.tables[req.Table] {
		ok := true
		for k, v := range req.Filter {
			if fmt.Sprint(r[k]) != fmt.Sprint(v) {
				ok = false
			}
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRows) Insert(ctx context.Context, table string, record rows.Row) (rows.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if _, err := rows.Lookup(table); err != nil {
		return nil, err
	}
	row := rows.Row{}
	for k, v := range record {
		row[k] = v
	}
	if row["id"] == nil {
		row["id"] = m.nextID
		m.nextID++
	}
	m.tables[table] = append(m.tables[table], row)
	return row, nil
}

func (m *memRows) Upsert(ctx context.Context, table string, record rows.Row) (rows.Row, error) {
	return m.Insert(ctx, table, record)
}

func (m *memRows) Delete(ctx context.Context, table, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	list := m.tables[table]
	for i, r := range list {
		if fmt.Sprint(r["id"]) == id {
			m.tables[table] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%s %s: %w", table, id, common.ErrorNotFound)
}

type fakePresigner struct {
	names []string
	err   error
}

func (f *fakePresigner) PresignExport(ctx context.Context, name string) (string, string, error) {
	f.names = append(f.names, name)
	if f.err != nil {
		return "", "", f.err
	}
	return "http://s3.local/bucket/exports/" + name + "?sig=1", "exports/" + name, nil
}
