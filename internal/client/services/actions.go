package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/statusboard/internal/client/models"
	"github.com/dmitrijs2005/statusboard/internal/common"
	"github.com/dmitrijs2005/statusboard/internal/logging"
	"github.com/dmitrijs2005/statusboard/internal/timex"
)

type ActionService interface {
	List(ctx context.Context) ([]models.Action, error)
	Get(ctx context.Context, id int64) (models.Action, error)
	Create(ctx context.Context, a models.Action) (models.Action, error)
	Update(ctx context.Context, a models.Action) (models.Action, error)
	// Delete removes the action together with its tasks and comments.
	Delete(ctx context.Context, id int64) error
}

type actionService struct {
	repos *Router
	now   timex.Clock
	log   logging.Logger
}

func NewActionService(repos *Router, now timex.Clock, log logging.Logger) ActionService {
	return &actionService{repos: repos, now: now.Or(), log: log.With("module", "actions")}
}

func (s *actionService) List(ctx context.Context) ([]models.Action, error) {
	return read(ctx, s.repos, func(r *Repositories) ([]models.Action, error) {
		return r.Actions.GetAll(ctx)
	})
}

func (s *actionService) Get(ctx context.Context, id int64) (models.Action, error) {
	a, err := read(ctx, s.repos, func(r *Repositories) (models.Action, error) {
		return r.Actions.GetByID(ctx, id)
	})
	if errors.Is(err, common.ErrorNotFound) {
		return models.Action{}, common.ErrActionNotFound
	}
	return a, err
}

func (s *actionService) Create(ctx context.Context, a models.Action) (models.Action, error) {
	if a.Status == "" {
		a.Status = models.StatusNotStarted
	}
	if err := a.Validate(); err != nil {
		return models.Action{}, err
	}

	now := s.now()
	a.CreatedAt, a.UpdatedAt = now, now
	a.Refresh(now)

	var created models.Action
	err := write(ctx, s.repos, func(r *Repositories) error {
		var err error
		created, err = r.Actions.Create(ctx, a)
		return err
	})
	if err != nil {
		return models.Action{}, err
	}

	s.log.Info(ctx, "action created", "id", created.ID)
	return created, nil
}

func (s *actionService) Update(ctx context.Context, a models.Action) (models.Action, error) {
	cur, err := s.Get(ctx, a.ID)
	if err != nil {
		return models.Action{}, err
	}
	if err := a.Validate(); err != nil {
		return models.Action{}, err
	}

	now := s.now()
	a.CreatedAt = cur.CreatedAt
	a.UpdatedAt = now
	a.Refresh(now)

	if err := write(ctx, s.repos, func(r *Repositories) error { return r.Actions.Save(ctx, a) }); err != nil {
		return models.Action{}, err
	}
	return a, nil
}

func (s *actionService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	err := write(ctx, s.repos, func(r *Repositories) error {
		if err := r.Actions.Delete(ctx, id); err != nil {
			return err
		}
		if err := r.Tasks.DeleteByAction(ctx, id); err != nil {
			return err
		}
		return r.Comments.DeleteAll(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "action deleted", "id", id)
	return nil
}
