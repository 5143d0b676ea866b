package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/statusboard/internal/client/models"
	"github.com/dmitrijs2005/statusboard/internal/common"
	"github.com/dmitrijs2005/statusboard/internal/logging"
	"github.com/dmitrijs2005/statusboard/internal/timex"
	"github.com/google/uuid"
)

type TaskService interface {
	ListByAction(ctx context.Context, actionID int64) ([]models.Task, error)
	ListAll(ctx context.Context) ([]models.Task, error)
	Get(ctx context.Context, id string) (models.Task, error)
	Create(ctx context.Context, t models.Task) (models.Task, error)
	Update(ctx context.Context, t models.Task) (models.Task, error)
	Delete(ctx context.Context, id string) error
	// Reorder gives the listed tasks of actionID the orders 1..n in the given
	// sequence. Unlisted tasks follow in their previous order.
	Reorder(ctx context.Context, actionID int64, ids []string) error
	SetStatus(ctx context.Context, id string, status models.WorkflowStatus) (models.Task, error)
	AddComment(ctx context.Context, taskID string, c models.Comment) (models.Task, error)
}

type taskService struct {
	repos *Router
	now   timex.Clock
	log   logging.Logger
}

func NewTaskService(repos *Router, now timex.Clock, log logging.Logger) TaskService {
	return &taskService{repos: repos, now: now.Or(), log: log.With("module", "tasks")}
}

func (s *taskService) ListByAction(ctx context.Context, actionID int64) ([]models.Task, error) {
	return read(ctx, s.repos, func(r *Repositories) ([]models.Task, error) {
		return r.Tasks.GetByAction(ctx, actionID)
	})
}

func (s *taskService) ListAll(ctx context.Context) ([]models.Task, error) {
	return read(ctx, s.repos, func(r *Repositories) ([]models.Task, error) {
		return r.Tasks.GetAll(ctx)
	})
}

func (s *taskService) Get(ctx context.Context, id string) (models.Task, error) {
	t, err := read(ctx, s.repos, func(r *Repositories) (models.Task, error) {
		return r.Tasks.GetByID(ctx, id)
	})
	if errors.Is(err, common.ErrorNotFound) {
		return models.Task{}, common.ErrTaskNotFound
	}
	return t, err
}

func (s *taskService) parentExists(ctx context.Context, actionID int64) error {
	_, err := read(ctx, s.repos, func(r *Repositories) (models.Action, error) {
		return r.Actions.GetByID(ctx, actionID)
	})
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrActionNotFound
	}
	return err
}

func (s *taskService) Create(ctx context.Context, t models.Task) (models.Task, error) {
	if t.Status == "" {
		t.Status = models.StatusNotStarted
	}
	if err := t.Validate(); err != nil {
		return models.Task{}, err
	}
	if err := s.parentExists(ctx, t.ActionID); err != nil {
		return models.Task{}, err
	}

	now := s.now()
	t.ID = uuid.NewString()
	t.CreatedAt, t.UpdatedAt = now, now
	t.Refresh(now)

	err := write(ctx, s.repos, func(r *Repositories) error {
		var err error
		t, err = r.Tasks.Append(ctx, t)
		return err
	})
	if err != nil {
		return models.Task{}, err
	}

	s.log.Info(ctx, "task created", "id", t.ID, "action", t.ActionID)
	return t, nil
}

func (s *taskService) Update(ctx context.Context, t models.Task) (models.Task, error) {
	cur, err := s.Get(ctx, t.ID)
	if err != nil {
		return models.Task{}, err
	}
	if err := t.Validate(); err != nil {
		return models.Task{}, err
	}
	moved := t.ActionID != cur.ActionID
	if moved {
		if err := s.parentExists(ctx, t.ActionID); err != nil {
			return models.Task{}, err
		}
	}

	now := s.now()
	t.CreatedAt = cur.CreatedAt
	t.UpdatedAt = now
	if t.Order == 0 {
		t.Order = cur.Order
	}
	if t.Comments == nil {
		t.Comments = cur.Comments
	}
	t.Refresh(now)

	// A moved task goes last in its new action; its old order means nothing there.
	err = write(ctx, s.repos, func(r *Repositories) error {
		if moved {
			var err error
			t, err = r.Tasks.Append(ctx, t)
			return err
		}
		return r.Tasks.Save(ctx, t)
	})
	if err != nil {
		return models.Task{}, err
	}
	if moved {
		s.log.Info(ctx, "task moved", "id", t.ID, "from", cur.ActionID, "to", t.ActionID, "order", t.Order)
	}
	return t, nil
}

func (s *taskService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return write(ctx, s.repos, func(r *Repositories) error { return r.Tasks.Delete(ctx, id) })
}

func (s *taskService) Reorder(ctx context.Context, actionID int64, ids []string) error {
	tasks, err := s.ListByAction(ctx, actionID)
	if err != nil {
		return err
	}

	byID := make(map[string]models.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	ordered := make([]models.Task, 0, len(tasks))
	placed := make(map[string]bool, len(ids))
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			return fmt.Errorf("task %s of action %d: %w", id, actionID, common.ErrTaskNotFound)
		}
		if placed[id] {
			continue
		}
		placed[id] = true
		ordered = append(ordered, t)
	}
	for _, t := range tasks {
		if !placed[t.ID] {
			ordered = append(ordered, t)
		}
	}

	now := s.now()
	changed := make([]models.Task, 0, len(ordered))
	for i := range ordered {
		if ordered[i].Order == i+1 {
			continue
		}
		ordered[i].Order = i + 1
		ordered[i].UpdatedAt = now
		changed = append(changed, ordered[i])
	}
	if len(changed) == 0 {
		return nil
	}

	return write(ctx, s.repos, func(r *Repositories) error { return r.Tasks.SaveAll(ctx, changed) })
}

func (s *taskService) SetStatus(ctx context.Context, id string, status models.WorkflowStatus) (models.Task, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	t.Status = status
	return s.Update(ctx, t)
}

func (s *taskService) AddComment(ctx context.Context, taskID string, c models.Comment) (models.Task, error) {
	t, err := s.Get(ctx, taskID)
	if err != nil {
		return models.Task{}, err
	}
	if err := c.Validate(); err != nil {
		return models.Task{}, err
	}

	c.ID = uuid.NewString()
	c.ActionID = t.ActionID
	c.CreatedAt = s.now()
	t.Comments = append(t.Comments, c)

	return s.Update(ctx, t)
}
