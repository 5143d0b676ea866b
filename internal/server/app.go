// Package server wires the StatusBoard backend: the row store over
// PostgreSQL, the change feed fed by LISTEN/NOTIFY, the export presigner
// and the gRPC endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/statusboard/internal/logging"
	"github.com/dmitrijs2005/statusboard/internal/server/config"
	"github.com/dmitrijs2005/statusboard/internal/server/exports"
	"github.com/dmitrijs2005/statusboard/internal/server/notify"
	"github.com/dmitrijs2005/statusboard/internal/server/rows"
	"github.com/dmitrijs2005/statusboard/internal/timex"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/statusboard/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	listener *notify.Listener
	server   *gs.GRPCServer
}

// NewApp opens the database, applies migrations and builds the services.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := rows.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	broker := notify.NewBroker(logger)
	listener := notify.NewListener(c.DatabaseDSN, broker, logger)
	presigner := exports.NewPresigner(c, timex.SystemClock)
	server := gs.NewGRPCServer(c.EndpointAddrGRPC, logger, rows.NewPostgresRepository(db), broker, presigner, c.SecretKey)

	return &App{config: c, logger: logger, db: db, listener: listener, server: server}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until a termination signal arrives, ctx is done or one of the
// workers fails. The database is closed on return.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.listener.Run(gctx)
	})
	g.Go(func() error {
		return app.server.Run(gctx)
	})

	err := g.Wait()
	if cerr := app.db.Close(); cerr != nil && err == nil {
		err = cerr
	}
	app.logger.Info(ctx, "App stopped")
	return err
}
