package local

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/statusboard/internal/client/models"
	"github.com/dmitrijs2005/statusboard/internal/client/repositories/collection"
	"github.com/dmitrijs2005/statusboard/internal/client/securestore"
	"github.com/dmitrijs2005/statusboard/internal/common"
	"github.com/dmitrijs2005/statusboard/internal/logging"
	"github.com/dmitrijs2005/statusboard/internal/timex"
)

type TaskStore struct {
	c *collection.Collection[models.Task]
}

func NewTaskStore(store *securestore.Store, now timex.Clock, log logging.Logger) *TaskStore {
	cfg := collection.Config[models.Task]{
		StorageKey: common.TasksStorageKey,
		Field:      "tasks",
		Migrations: []collection.Migration[models.Task]{
			{From: common.LegacySchemaVersion, To: common.CurrentSchemaVersion, Apply: assignOrder},
		},
		Normalize: func(t *models.Task, at time.Time) { t.Refresh(at) },
	}
	return &TaskStore{c: collection.New(store, cfg, now, log)}
}

// assignOrder numbers the tasks of every action 1..n in stored order.
func assignOrder(tasks []models.Task) ([]models.Task, error) {
	next := make(map[int64]int)
	for i := range tasks {
		next[tasks[i].ActionID]++
		tasks[i].Order = next[tasks[i].ActionID]
	}
	return tasks, nil
}

func (s *TaskStore) GetAll(ctx context.Context) ([]models.Task, error) {
	return s.c.All(ctx), nil
}

func (s *TaskStore) GetByID(ctx context.Context, id string) (models.Task, error) {
	t, ok := s.c.Find(ctx, id)
	if !ok {
		return models.Task{}, fmt.Errorf("task %s: %w", id, common.ErrorNotFound)
	}
	return t, nil
}

// GetByAction returns the tasks of an action sorted by display order.
func (s *TaskStore) GetByAction(ctx context.Context, actionID int64) ([]models.Task, error) {
	var out []models.Task
	for _, t := range s.c.All(ctx) {
		if t.ActionID == actionID {
			out = append(out, t)
		}
	}
	models.SortTasksByOrder(out)
	return out, nil
}

func (s *TaskStore) Save(ctx context.Context, t models.Task) error {
	return s.c.Save(ctx, t)
}

func (s *TaskStore) SaveAll(ctx context.Context, tasks []models.Task) error {
	return s.c.SaveAll(ctx, tasks)
}

// Append stores t as the last task of its action, assigning Order in the
// same write so concurrent appends never share an order. A stored task with
// the same id is replaced.
func (s *TaskStore) Append(ctx context.Context, t models.Task) (models.Task, error) {
	err := s.c.Update(ctx, func(items []models.Task) ([]models.Task, error) {
		var siblings []models.Task
		for _, it := range items {
			if it.ActionID == t.ActionID && it.ID != t.ID {
				siblings = append(siblings, it)
			}
		}
		t.Order = NextOrder(siblings)
		return upsertTask(items, t), nil
	})
	if err != nil {
		return models.Task{}, err
	}
	return t, nil
}

func upsertTask(items []models.Task, t models.Task) []models.Task {
	for i := range items {
		if items[i].ID == t.ID {
			items[i] = t
			return items
		}
	}
	return append(items, t)
}

// Delete removes the task with id. An unknown id is a no-op.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	return s.c.Delete(ctx, id)
}

// DeleteByAction removes every task of an action.
func (s *TaskStore) DeleteByAction(ctx context.Context, actionID int64) error {
	_, err := s.c.DeleteWhere(ctx, func(t models.Task) bool { return t.ActionID == actionID })
	return err
}

// NextOrder returns the display order for a new task of actionID.
func (s *TaskStore) NextOrder(ctx context.Context, actionID int64) (int, error) {
	tasks, err := s.GetByAction(ctx, actionID)
	if err != nil {
		return 0, err
	}
	return NextOrder(tasks), nil
}

// NextOrder returns one past the highest order in tasks.
func NextOrder(tasks []models.Task) int {
	n := 0
	for _, t := range tasks {
		n = max(n, t.Order)
	}
	return n + 1
}
