package remote

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/statusboard/internal/client/client/clienttest"
	"github.com/dmitrijs2005/statusboard/internal/client/models"
	"github.com/dmitrijs2005/statusboard/internal/common"
	"github.com/dmitrijs2005/statusboard/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func TestActionStore_CreateAndLoad(t *testing.T) {
	ctx := context.Background()
	b := clienttest.New()
	s := NewActionStore(b, timex.Fixed(now))

	created, err := s.Create(ctx, models.Action{
		ID: 99, Description: "Renovar licença", Responsible: "Ana", Sector: "TI",
		DueDate: "01/01/2020", Status: models.StatusPlanned, CreatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID, "backend assigns the id")
	assert.Equal(t, models.DelayOverdue, created.DelayStatus)

	rows := b.Rows(common.TableActions)
	require.Len(t, rows, 1)
	assert.Equal(t, "2020-01-01", rows[0]["due_date"], "dates travel as ISO")
	assert.NotContains(t, rows[0], "delay_status")

	got, err := s.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "01/01/2020", got.DueDate)
	assert.Equal(t, now, got.CreatedAt)

	_, err = s.GetByID(ctx, 2)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestActionStore_SaveDelete(t *testing.T) {
	ctx := context.Background()
	b := clienttest.New()
	s := NewActionStore(b, timex.Fixed(now))

	require.NoError(t, s.SaveAll(ctx, []models.Action{
		{ID: 2, Description: "b", DueDate: "31/12/2099", Status: models.StatusInProgress},
		{ID: 1, Description: "a", DueDate: "garbage", Status: models.StatusPlanned},
	}))
	require.NoError(t, s.Save(ctx, models.Action{ID: 1, Description: "a2", Status: models.StatusCompleted}))

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(1), all[0].ID, "ordered by id")
	assert.Equal(t, "a2", all[0].Description)
	assert.Equal(t, models.DelayCompleted, all[0].DelayStatus)
	assert.Equal(t, models.DelayOnTime, all[1].DelayStatus)

	require.NoError(t, s.Delete(ctx, 2))
	assert.ErrorIs(t, s.Delete(ctx, 2), common.ErrorNotFound)
}

func TestTaskStore(t *testing.T) {
	ctx := context.Background()
	b := clienttest.New()
	s := NewTaskStore(b, timex.Fixed(now))

	require.NoError(t, s.SaveAll(ctx, []models.Task{
		{ID: "t2", ActionID: 1, Title: "second", Order: 2, DueDate: "01/01/2030", Status: models.StatusPlanned},
		{ID: "t1", ActionID: 1, Title: "first", Order: 1, DueDate: "01/01/2000", Status: models.StatusPlanned,
			Comments: []models.Comment{{ID: "c1", ActionID: 1, Text: "nota", CreatedAt: now}}},
		{ID: "x", ActionID: 2, Title: "other", Order: 1},
	}))

	tasks, err := s.GetByAction(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "t1", tasks[0].ID)
	assert.Equal(t, models.DelayOverdue, tasks[0].DelayStatus)
	require.Len(t, tasks[0].Comments, 1)
	assert.Equal(t, "nota", tasks[0].Comments[0].Text)

	got, err := s.GetByID(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Order)

	require.NoError(t, s.Delete(ctx, "missing"), "unknown ids are a no-op")

	require.NoError(t, s.DeleteByAction(ctx, 1))
	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "x", all[0].ID)

	_, err = s.GetByID(ctx, "t1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCommentStore(t *testing.T) {
	ctx := context.Background()
	b := clienttest.New()
	s := NewCommentStore(b)

	require.NoError(t, s.Add(ctx, models.Comment{ID: "c1", ActionID: 3, Author: "ana", Text: "um", CreatedAt: now}))
	require.NoError(t, s.Add(ctx, models.Comment{ID: "c2", ActionID: 3, Text: "dois", CreatedAt: now.Add(time.Minute)}))
	require.NoError(t, s.Add(ctx, models.Comment{ID: "c3", ActionID: 4, Text: "três", CreatedAt: now}))

	list, err := s.List(ctx, 3)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "ana", list[0].Author)

	require.NoError(t, s.Delete(ctx, 3, "nope"))
	require.NoError(t, s.DeleteAll(ctx, 3))
	list, _ = s.List(ctx, 3)
	assert.Empty(t, list)
	list, _ = s.List(ctx, 4)
	assert.Len(t, list, 1)
}

func TestStores_PropagateBackendErrors(t *testing.T) {
	ctx := context.Background()
	b := clienttest.New()
	b.Err = assert.AnError

	_, err := NewActionStore(b, timex.Fixed(now)).GetAll(ctx)
	assert.ErrorIs(t, err, assert.AnError)
	assert.ErrorIs(t, NewTaskStore(b, timex.Fixed(now)).Delete(ctx, "x"), assert.AnError)
	assert.ErrorIs(t, NewCommentStore(b).Add(ctx, models.Comment{}), assert.AnError)
}

func TestRowHelpers(t *testing.T) {
	r := map[string]any{"n": 5.0, "s": "7", "bad": true, "ts": "2024-06-15T10:00:00Z"}
	assert.Equal(t, int64(5), num(r, "n"))
	assert.Equal(t, int64(7), num(r, "s"))
	assert.Equal(t, int64(0), num(r, "bad"))
	assert.Equal(t, "5", str(r, "n"))
	assert.Equal(t, "", str(r, "missing"))
	assert.Equal(t, now, ts(r, "ts"))
	assert.True(t, ts(r, "s").IsZero())
	assert.Nil(t, dueDateToRow("31/02/2024"))
	assert.Nil(t, timeToRow(time.Time{}))
}
