package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/statusboard/internal/client/chat"
	"github.com/dmitrijs2005/statusboard/internal/client/client"
	"github.com/dmitrijs2005/statusboard/internal/client/config"
	"github.com/dmitrijs2005/statusboard/internal/client/connectivity"
	"github.com/dmitrijs2005/statusboard/internal/client/query"
	"github.com/dmitrijs2005/statusboard/internal/client/repositories/kv"
	"github.com/dmitrijs2005/statusboard/internal/client/securestore"
	"github.com/dmitrijs2005/statusboard/internal/client/services"
	"github.com/dmitrijs2005/statusboard/internal/client/uistate"
	"github.com/dmitrijs2005/statusboard/internal/cryptox"
	"github.com/dmitrijs2005/statusboard/internal/logging"
	pb "github.com/dmitrijs2005/statusboard/internal/proto"
	"github.com/dmitrijs2005/statusboard/internal/timex"
)

type App struct {
	actions       services.ActionService
	tasks         services.TaskService
	comments      services.CommentService
	notifications *services.NotificationService
	exporter      *services.ExportService
	assistant     *chat.Assistant
	ui            *uistate.Saver
	router        *services.Router
	mon           *connectivity.Monitor
	backend       client.Client
	log           logging.Logger

	state  uistate.State
	author string
	width  func() int
	reader *bufio.Reader

	outMu sync.Mutex
	out   io.Writer

	watching atomic.Bool
	closers  []func() error
}

// NewApp opens the local database, sweeps it, and wires the services. The
// backend is only used when cfg carries an access token.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	db, err := kv.OpenSQLite(ctx, cfg.LocalDBPath)
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}

	keys := cryptox.KeyDeriver{Secret: cfg.Secret, UserAgent: cfg.UserAgent}
	store := securestore.New(kv.NewSQLiteRepository(db), cryptox.NewCipher(keys), log)

	report := securestore.NewSweeper(store, securestore.DefaultMatcher).Sweep(ctx)
	log.Info(ctx, "local storage swept", "migrated", report.Migrated, "failed", report.Failed, "expired", report.Expired)

	var (
		backend client.Client
		pinger  connectivity.Pinger
	)
	if cfg.AccessToken != "" {
		c, err := client.NewStatusBoardClient(cfg.ServerEndpointAddr, cfg.AccessToken)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("backend client: %w", err)
		}
		backend, pinger = c, c
	}

	mon := connectivity.NewMonitor(pinger, cfg.OnlineCheckInterval, log)
	a := assemble(store, backend, mon, cfg, log, bufio.NewReader(os.Stdin), os.Stdout)
	a.width = terminalWidth
	a.closers = append(a.closers, db.Close)
	if backend != nil {
		a.closers = append(a.closers, backend.Close)
	}
	return a, nil
}

// assemble builds an App over an opened secure store. backend may be nil.
func assemble(store *securestore.Store, backend client.Client, mon *connectivity.Monitor, cfg *config.Config, log logging.Logger, in *bufio.Reader, out io.Writer) *App {
	now := timex.Clock(timex.SystemClock)

	local := services.LocalRepositories(store, now, log)
	var remote *services.Repositories
	if backend != nil {
		remote = services.RemoteRepositories(backend, now)
	}
	router := services.NewRouter(local, remote, mon, log)

	actions := services.NewActionService(router, now, log)
	tasks := services.NewTaskService(router, now, log)

	a := &App{
		actions:       actions,
		tasks:         tasks,
		comments:      services.NewCommentService(router, now),
		notifications: services.NewNotificationService(actions, tasks, now, cfg.NotificationInterval, log),
		exporter:      services.NewExportService(actions, tasks, backend, router, cfg.ExportDir, now, log),
		ui:            uistate.NewSaver(store, uistate.DefaultDelay, log),
		router:        router,
		mon:           mon,
		backend:       backend,
		log:           log.With("module", "cli"),
		state:         uistate.Default(),
		author:        os.Getenv("USER"),
		width:         func() int { return defaultWidth },
		reader:        in,
		out:           out,
	}
	a.assistant = chat.New(a.summary)
	return a
}

func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}

func (a *App) summary(ctx context.Context) (query.Summary, error) {
	actions, err := a.actions.List(ctx)
	if err != nil {
		return query.Summary{}, err
	}
	tasks, err := a.tasks.ListAll(ctx)
	if err != nil {
		return query.Summary{}, err
	}
	return query.Summarize(query.Apply(actions, tasks, a.state.Filter), tasks), nil
}

// Run starts the background workers and blocks in the REPL until the user
// exits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.state = a.ui.Load(ctx)

	a.mon.OnChange(func(m connectivity.Mode) {
		a.printf("\n[modo %s]\n", m)
		if m == connectivity.ModeOnline {
			a.startWatch(ctx)
		}
	})
	go a.mon.Run(ctx)
	go a.notifications.Run(ctx, a.announce)

	a.println("StatusBoard (digite 'help' para ver os comandos)")
	if a.state.View == uistate.ViewDashboard {
		_ = a.Summary(ctx, nil)
	}

	runREPL(ctx, a, a.status, a.reader, a.out)

	return a.ui.Flush(ctx)
}

func (a *App) status() string {
	return string(a.router.Mode())
}

func (a *App) announce(ns []services.Notification) {
	for _, n := range ns {
		a.printf("\n[aviso] %s\n", describeNotification(n))
	}
}

// startWatch follows the backend change feed while online. A broken stream
// is restarted on the next switch to online.
func (a *App) startWatch(ctx context.Context) {
	if a.backend == nil || !a.watching.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer a.watching.Store(false)
		err := services.Watch(ctx, a.backend, func(ev pb.ChangeEvent) {
			a.printf("\n[%s %s alterado no servidor, use 'list' para atualizar]\n", ev.Table, ev.ID)
		}, a.log)
		if err != nil {
			a.log.Warn(ctx, "change feed stopped", "error", err)
		}
	}()
}

func (a *App) saveState() {
	a.ui.Save(a.state)
}

// Close releases the database and the backend connection.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}
