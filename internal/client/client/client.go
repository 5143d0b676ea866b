package client

import (
	"context"

	pb "github.com/dmitrijs2005/statusboard/internal/proto"
)

// Row is one table row as exchanged with the backend.
type Row = map[string]any

type Client interface {
	Close() error
	Ping(ctx context.Context) error
	FetchAll(ctx context.Context, req pb.FetchRequest) ([]Row, error)
	Insert(ctx context.Context, table string, record Row) (Row, error)
	Upsert(ctx context.Context, table string, record Row) (Row, error)
	Delete(ctx context.Context, table, id string) error
	// Subscribe delivers change events of table to fn until ctx is done or
	// the stream breaks.
	Subscribe(ctx context.Context, table string, filter Row, fn func(pb.ChangeEvent)) error
	PresignExport(ctx context.Context, name string) (url, key string, err error)
}
