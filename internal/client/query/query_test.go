package query

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/statusboard/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtures() ([]models.Action, []models.Task) {
	actions := []models.Action{
		{ID: 3, Description: "Auditoria anual", Responsible: "Ana Souza", Sector: "Financeiro", DueDate: "10/07/2024", Status: models.StatusPlanned, DelayStatus: models.DelayOnTime},
		{ID: 1, Description: "Renovar alvará", Responsible: "João", Sector: "Jurídico", DueDate: "01/01/2024", Status: models.StatusInProgress, DelayStatus: models.DelayOverdue},
		{ID: 2, Description: "Treinamento LGPD", Responsible: "ana souza", Sector: "RH", DueDate: "bad", Status: models.StatusCompleted, DelayStatus: models.DelayCompleted},
		{ID: 4, Description: "Inventário", Responsible: "Carla", Sector: "financeiro", DueDate: "05/06/2024", Status: models.StatusNotStarted, DelayStatus: models.DelayOverdue},
	}
	tasks := []models.Task{
		{ID: "t1", ActionID: 4, Title: "Contar estoque do depósito", Responsible: "Bruno", Sector: "Logística", DueDate: "01/08/2024", Status: models.StatusPlanned, DelayStatus: models.DelayOnTime},
		{ID: "t2", ActionID: 1, Title: "Enviar documentos", Responsible: "João", DueDate: "01/01/2024", Status: models.StatusCompleted, DelayStatus: models.DelayCompleted},
	}
	return actions, tasks
}

func ids(actions []models.Action) []int64 {
	out := make([]int64, 0, len(actions))
	for _, a := range actions {
		out = append(out, a.ID)
	}
	return out
}

func TestApply(t *testing.T) {
	actions, tasks := fixtures()
	utc := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{name: "zero filter keeps all", filter: Filter{}, want: []int64{3, 1, 2, 4}},
		{name: "status", filter: Filter{Statuses: []models.WorkflowStatus{models.StatusPlanned, models.StatusCompleted}}, want: []int64{3, 2}},
		{name: "delay", filter: Filter{DelayStatuses: []models.DelayStatus{models.DelayOverdue}}, want: []int64{1, 4}},
		{name: "sector ignores case", filter: Filter{Sectors: []string{"FINANCEIRO"}}, want: []int64{3, 4}},
		{name: "sector ignores accents", filter: Filter{Sectors: []string{"juridico"}}, want: []int64{1}},
		{name: "responsible substring", filter: Filter{Responsible: "souza"}, want: []int64{3, 2}},
		{name: "search description", filter: Filter{Search: "alvara"}, want: []int64{1}},
		{name: "search misses tasks by default", filter: Filter{Search: "estoque"}, want: []int64{}},
		{name: "search includes tasks", filter: Filter{Search: "estoque", IncludeTasks: true}, want: []int64{4}},
		{name: "due range drops unparseable", filter: Filter{DueFrom: utc(2024, 6, 1), DueTo: utc(2024, 7, 31)}, want: []int64{3, 4}},
		{name: "due from only", filter: Filter{DueFrom: utc(2024, 7, 1)}, want: []int64{3}},
		{name: "combined", filter: Filter{Sectors: []string{"financeiro"}, DelayStatuses: []models.DelayStatus{models.DelayOnTime}}, want: []int64{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(actions, tasks, tt.filter)))
		})
	}
}

func TestApply_DoesNotAliasInput(t *testing.T) {
	actions, tasks := fixtures()
	out := Apply(actions, tasks, Filter{})
	out[0].Description = "changed"
	assert.Equal(t, "Auditoria anual", actions[0].Description)
}

func TestMatchTask(t *testing.T) {
	_, tasks := fixtures()
	f := Filter{Responsible: "bruno"}
	assert.True(t, f.MatchTask(tasks[0]))
	assert.False(t, f.MatchTask(tasks[1]))
}

func TestSortActions(t *testing.T) {
	tests := []struct {
		sort Sort
		want []int64
	}{
		{sort: Sort{}, want: []int64{1, 2, 3, 4}},
		{sort: Sort{Field: SortByID, Desc: true}, want: []int64{4, 3, 2, 1}},
		{sort: Sort{Field: SortByDueDate}, want: []int64{1, 4, 3, 2}},
		{sort: Sort{Field: SortByDueDate, Desc: true}, want: []int64{3, 4, 1, 2}},
		{sort: Sort{Field: SortByStatus}, want: []int64{4, 3, 1, 2}},
		{sort: Sort{Field: SortByDelayStatus}, want: []int64{1, 4, 3, 2}},
		{sort: Sort{Field: SortBySector}, want: []int64{3, 4, 1, 2}},
		{sort: Sort{Field: SortByResponsible}, want: []int64{3, 2, 4, 1}},
		{sort: Sort{Field: SortByDescription}, want: []int64{3, 4, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(string(tt.sort.Field), func(t *testing.T) {
			actions, _ := fixtures()
			SortActions(actions, tt.sort)
			assert.Equal(t, tt.want, ids(actions))
		})
	}
}

func TestParseSortField(t *testing.T) {
	f, err := ParseSortField("DUEDATE")
	require.NoError(t, err)
	assert.Equal(t, SortByDueDate, f)

	_, err = ParseSortField("color")
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	actions, tasks := fixtures()
	s := Summarize(actions, tasks)

	assert.Equal(t, 4, s.Actions)
	assert.Equal(t, 2, s.Tasks)
	assert.Equal(t, 2, s.ByDelay[models.DelayOverdue])
	assert.Equal(t, 1, s.ByStatus[models.StatusCompleted])
	assert.Equal(t, 1, s.TasksByDelay[models.DelayCompleted])
	assert.InDelta(t, 0.25, s.CompletionRate(), 1e-9)
	assert.Equal(t, []string{"Financeiro", "Jurídico", "RH", "financeiro"}, s.Sectors())

	assert.Zero(t, Summarize(nil, nil).CompletionRate())
}
