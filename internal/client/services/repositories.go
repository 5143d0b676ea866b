// Package services implements the dashboard use cases on top of the local
// secure store and the remote backend.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/statusboard/internal/client/client"
	"github.com/dmitrijs2005/statusboard/internal/client/connectivity"
	"github.com/dmitrijs2005/statusboard/internal/client/models"
	"github.com/dmitrijs2005/statusboard/internal/client/repositories/local"
	"github.com/dmitrijs2005/statusboard/internal/client/repositories/remote"
	"github.com/dmitrijs2005/statusboard/internal/client/securestore"
	"github.com/dmitrijs2005/statusboard/internal/common"
	"github.com/dmitrijs2005/statusboard/internal/logging"
	"github.com/dmitrijs2005/statusboard/internal/timex"
)

type ActionRepository interface {
	GetAll(ctx context.Context) ([]models.Action, error)
	GetByID(ctx context.Context, id int64) (models.Action, error)
	// Create stores a and returns it with its assigned id.
	Create(ctx context.Context, a models.Action) (models.Action, error)
	Save(ctx context.Context, a models.Action) error
	Delete(ctx context.Context, id int64) error
}

type TaskRepository interface {
	GetAll(ctx context.Context) ([]models.Task, error)
	GetByID(ctx context.Context, id string) (models.Task, error)
	GetByAction(ctx context.Context, actionID int64) ([]models.Task, error)
	Save(ctx context.Context, t models.Task) error
	// Append stores t as the last task of its action and returns it with
	// the assigned order.
	Append(ctx context.Context, t models.Task) (models.Task, error)
	SaveAll(ctx context.Context, tasks []models.Task) error
	Delete(ctx context.Context, id string) error
	DeleteByAction(ctx context.Context, actionID int64) error
}

type CommentRepository interface {
	List(ctx context.Context, actionID int64) ([]models.Comment, error)
	Add(ctx context.Context, c models.Comment) error
	Delete(ctx context.Context, actionID int64, id string) error
	DeleteAll(ctx context.Context, actionID int64) error
}

// Repositories is one complete data source.
type Repositories struct {
	Actions  ActionRepository
	Tasks    TaskRepository
	Comments CommentRepository
}

func LocalRepositories(store *securestore.Store, now timex.Clock, log logging.Logger) *Repositories {
	return &Repositories{
		Actions:  local.NewActionStore(store, now, log),
		Tasks:    local.NewTaskStore(store, now, log),
		Comments: local.NewCommentStore(store),
	}
}

func RemoteRepositories(c client.Client, now timex.Clock) *Repositories {
	return &Repositories{
		Actions:  remote.NewActionStore(c, now),
		Tasks:    remote.NewTaskStore(c, now),
		Comments: remote.NewCommentStore(c),
	}
}

// Router sends every call to the backend while the monitor reports online,
// and to the local secure store otherwise. A read that finds the backend gone
// is retried locally; a write is not.
type Router struct {
	local  *Repositories
	remote *Repositories
	mon    *connectivity.Monitor
	log    logging.Logger
}

// NewRouter builds a router. remote and mon may be nil for local-only use.
func NewRouter(local, remote *Repositories, mon *connectivity.Monitor, log logging.Logger) *Router {
	return &Router{local: local, remote: remote, mon: mon, log: log.With("module", "router")}
}

// Mode reports where calls currently go.
func (r *Router) Mode() connectivity.Mode {
	if r.mon == nil {
		return connectivity.ModeDisabled
	}
	return r.mon.Mode()
}

func (r *Router) pick() *Repositories {
	if r.remote != nil && r.mon != nil && r.mon.Online() {
		return r.remote
	}
	return r.local
}

func (r *Router) lost(ctx context.Context, err error) bool {
	if r.mon == nil || !errors.Is(err, client.ErrUnavailable) {
		return false
	}
	r.mon.Check(ctx)
	return true
}

func read[T any](ctx context.Context, r *Router, fn func(*Repositories) (T, error)) (T, error) {
	repos := r.pick()
	v, err := fn(repos)
	if err != nil && repos != r.local && r.lost(ctx, err) {
		r.log.Warn(ctx, "backend unavailable, reading local data", "error", err)
		return fn(r.local)
	}
	return v, err
}

func write(ctx context.Context, r *Router, fn func(*Repositories) error) error {
	err := fn(r.pick())
	if err == nil {
		return nil
	}
	r.lost(ctx, err)
	if errors.Is(err, common.ErrSaveFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrSaveFailed, err)
}

// LocalUpdatedAt reports when the local action collection was last written.
func (r *Router) LocalUpdatedAt(ctx context.Context) (time.Time, bool) {
	s, ok := r.local.Actions.(interface {
		LastUpdated(ctx context.Context) (time.Time, bool)
	})
	if !ok {
		return time.Time{}, false
	}
	return s.LastUpdated(ctx)
}
