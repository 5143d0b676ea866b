package remote

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/statusboard/internal/client/client"
	"github.com/dmitrijs2005/statusboard/internal/client/models"
	"github.com/dmitrijs2005/statusboard/internal/common"
	pb "github.com/dmitrijs2005/statusboard/internal/proto"
	"github.com/dmitrijs2005/statusboard/internal/timex"
)

type ActionStore struct {
	c   client.Client
	now timex.Clock
}

func NewActionStore(c client.Client, now timex.Clock) *ActionStore {
	return &ActionStore{c: c, now: now.Or()}
}

func (s *ActionStore) GetAll(ctx context.Context) ([]models.Action, error) {
	rows, err := s.c.FetchAll(ctx, pb.FetchRequest{Table: common.TableActions, OrderBy: "id"})
	if err != nil {
		return nil, fmt.Errorf("fetch actions: %w", err)
	}
	now := s.now()
	out := make([]models.Action, 0, len(rows))
	for _, r := range rows {
		out = append(out, actionFromRow(r, now))
	}
	return out, nil
}

func (s *ActionStore) GetByID(ctx context.Context, id int64) (models.Action, error) {
	rows, err := s.c.FetchAll(ctx, pb.FetchRequest{Table: common.TableActions, Filter: client.Row{"id": id}})
	if err != nil {
		return models.Action{}, fmt.Errorf("fetch action %d: %w", id, err)
	}
	if len(rows) == 0 {
		return models.Action{}, fmt.Errorf("action %d: %w", id, common.ErrorNotFound)
	}
	return actionFromRow(rows[0], s.now()), nil
}

// Create inserts a and returns it with the id assigned by the backend.
func (s *ActionStore) Create(ctx context.Context, a models.Action) (models.Action, error) {
	a.ID = 0
	row, err := s.c.Insert(ctx, common.TableActions, actionToRow(a))
	if err != nil {
		return models.Action{}, fmt.Errorf("insert action: %w", err)
	}
	return actionFromRow(row, s.now()), nil
}

func (s *ActionStore) Save(ctx context.Context, a models.Action) error {
	if _, err := s.c.Upsert(ctx, common.TableActions, actionToRow(a)); err != nil {
		return fmt.Errorf("upsert action %d: %w", a.ID, err)
	}
	return nil
}

func (s *ActionStore) SaveAll(ctx context.Context, actions []models.Action) error {
	for _, a := range actions {
		if err := s.Save(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (s *ActionStore) Delete(ctx context.Context, id int64) error {
	if err := s.c.Delete(ctx, common.TableActions, strconv.FormatInt(id, 10)); err != nil {
		return fmt.Errorf("delete action %d: %w", id, err)
	}
	return nil
}

type TaskStore struct {
	c   client.Client
	now timex.Clock
}

func NewTaskStore(c client.Client, now timex.Clock) *TaskStore {
	return &TaskStore{c: c, now: now.Or()}
}

func (s *TaskStore) fetch(ctx context.Context, filter client.Row) ([]models.Task, error) {
	rows, err := s.c.FetchAll(ctx, pb.FetchRequest{Table: common.TableTasks, OrderBy: "sort_order", Filter: filter})
	if err != nil {
		return nil, fmt.Errorf("fetch tasks: %w", err)
	}
	now := s.now()
	out := make([]models.Task, 0, len(rows))
	for _, r := range rows {
		out = append(out, taskFromRow(r, now))
	}
	return out, nil
}

func (s *TaskStore) GetAll(ctx context.Context) ([]models.Task, error) {
	return s.fetch(ctx, nil)
}

func (s *TaskStore) GetByID(ctx context.Context, id string) (models.Task, error) {
	tasks, err := s.fetch(ctx, client.Row{"id": id})
	if err != nil {
		return models.Task{}, err
	}
	if len(tasks) == 0 {
		return models.Task{}, fmt.Errorf("task %s: %w", id, common.ErrorNotFound)
	}
	return tasks[0], nil
}

func (s *TaskStore) GetByAction(ctx context.Context, actionID int64) ([]models.Task, error) {
	tasks, err := s.fetch(ctx, client.Row{"action_id": actionID})
	if err != nil {
		return nil, err
	}
	models.SortTasksByOrder(tasks)
	return tasks, nil
}

func (s *TaskStore) Save(ctx context.Context, t models.Task) error {
	if _, err := s.c.Upsert(ctx, common.TableTasks, taskToRow(t)); err != nil {
		return fmt.Errorf("upsert task %s: %w", t.ID, err)
	}
	return nil
}

// Append upserts t after the other tasks of its action. The order is read
// and written in two calls; the backend has no atomic counter for it.
func (s *TaskStore) Append(ctx context.Context, t models.Task) (models.Task, error) {
	siblings, err := s.GetByAction(ctx, t.ActionID)
	if err != nil {
		return models.Task{}, err
	}
	t.Order = 1
	for _, sib := range siblings {
		if sib.ID != t.ID {
			t.Order = max(t.Order, sib.Order+1)
		}
	}
	if err := s.Save(ctx, t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

func (s *TaskStore) SaveAll(ctx context.Context, tasks []models.Task) error {
	for _, t := range tasks {
		if err := s.Save(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a task. The backend reports an unknown id as not found;
// that is not an error here.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	err := s.c.Delete(ctx, common.TableTasks, id)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

func (s *TaskStore) DeleteByAction(ctx context.Context, actionID int64) error {
	tasks, err := s.GetByAction(ctx, actionID)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if err := s.Delete(ctx, t.ID); err != nil {
			return err
		}
	}
	return nil
}

type CommentStore struct {
	c client.Client
}

func NewCommentStore(c client.Client) *CommentStore {
	return &CommentStore{c: c}
}

func (s *CommentStore) List(ctx context.Context, actionID int64) ([]models.Comment, error) {
	rows, err := s.c.FetchAll(ctx, pb.FetchRequest{
		Table:   common.TableComments,
		OrderBy: "created_at",
		Filter:  client.Row{"action_id": actionID},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch comments: %w", err)
	}
	out := make([]models.Comment, 0, len(rows))
	for _, r := range rows {
		out = append(out, commentFromRow(r))
	}
	return out, nil
}

func (s *CommentStore) Add(ctx context.Context, c models.Comment) error {
	if _, err := s.c.Insert(ctx, common.TableComments, commentToRow(c)); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (s *CommentStore) Delete(ctx context.Context, actionID int64, id string) error {
	err := s.c.Delete(ctx, common.TableComments, id)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("delete comment %s: %w", id, err)
	}
	return nil
}

func (s *CommentStore) DeleteAll(ctx context.Context, actionID int64) error {
	list, err := s.List(ctx, actionID)
	if err != nil {
		return err
	}
	for _, c := range list {
		if err := s.Delete(ctx, actionID, c.ID); err != nil {
			return err
		}
	}
	return nil
}
