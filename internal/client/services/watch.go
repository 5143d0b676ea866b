package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/statusboard/internal/client/client"
	"github.com/dmitrijs2005/statusboard/internal/common"
	"github.com/dmitrijs2005/statusboard/internal/logging"
	pb "github.com/dmitrijs2005/statusboard/internal/proto"
	"golang.org/x/sync/errgroup"
)

// Watch follows the backend change feed of actions and tasks and calls
// reload for every change until ctx is done or a stream fails. reload may be
// called from several goroutines.
func Watch(ctx context.Context, c client.Client, reload func(pb.ChangeEvent), log logging.Logger) error {
	log = log.With("module", "watch")
	g, gctx := errgroup.WithContext(ctx)

	for _, table := range []string{common.TableActions, common.TableTasks} {
		g.Go(func() error {
			err := c.Subscribe(gctx, table, nil, func(ev pb.ChangeEvent) {
				log.Debug(gctx, "change", "table", ev.Table, "op", ev.Op, "id", ev.ID)
				reload(ev)
			})
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				return nil
			}
			return err
		})
	}

	return g.Wait()
}
