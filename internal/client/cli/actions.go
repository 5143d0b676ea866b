package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/statusboard/internal/client/models"
	"github.com/dmitrijs2005/statusboard/internal/client/query"
)

// pageSize is the number of actions shown by one list page.
const pageSize = 20

func parseActionID(args []string, usage string) (int64, error) {
	if len(args) == 0 {
		return 0, usageError(usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, usageError(usage)
	}
	return id, nil
}

// visibleActions applies the current filter and sort.
func (a *App) visibleActions(ctx context.Context) ([]models.Action, error) {
	actions, err := a.actions.List(ctx)
	if err != nil {
		return nil, err
	}
	var tasks []models.Task
	if a.state.Filter.IncludeTasks {
		if tasks, err = a.tasks.ListAll(ctx); err != nil {
			return nil, err
		}
	}
	out := query.Apply(actions, tasks, a.state.Filter)
	query.SortActions(out, a.state.Sort)
	return out, nil
}

func (a *App) List(ctx context.Context, args []string) error {
	actions, err := a.visibleActions(ctx)
	if err != nil {
		return err
	}

	page := a.state.Scroll/pageSize + 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return usageError("list [página]")
		}
		page = n
	}
	pages := max(1, (len(actions)+pageSize-1)/pageSize)
	page = min(page, pages)

	start := (page - 1) * pageSize
	end := min(start+pageSize, len(actions))

	if len(actions) == 0 {
		a.println("Nenhuma ação encontrada.")
	} else {
		renderActions(a.out, actions[start:end], a.width())
		a.printf("Página %d de %d, %d ação(ões). Filtro: %s\n", page, pages, len(actions), describeFilter(a.state.Filter))
	}

	if a.state.Scroll != start {
		a.state.Scroll = start
		a.saveState()
	}
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := parseActionID(args, "show <id>")
	if err != nil {
		return err
	}
	act, err := a.actions.Get(ctx, id)
	if err != nil {
		return err
	}
	renderAction(a.out, act)

	tasks, err := a.tasks.ListByAction(ctx, id)
	if err != nil {
		return err
	}
	if len(tasks) > 0 {
		a.println()
		renderTasks(a.out, tasks, a.width())
	}
	return nil
}

// promptAction fills the editable fields of act. Empty answers keep the
// current values.
func (a *App) promptAction(act *models.Action) error {
	fields := []struct {
		label string
		dst   *string
	}{
		{"Descrição", &act.Description},
		{"Acompanhamento", &act.FollowUp},
		{"Responsável", &act.Responsible},
		{"Setor", &act.Sector},
		{"Prazo (DD/MM/AAAA)", &act.DueDate},
	}
	for _, f := range fields {
		v, err := GetDefault(a.reader, f.label, *f.dst, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	status, err := GetStatus(a.reader, act.Status, a.out)
	if err != nil {
		return err
	}
	act.Status = status
	return nil
}

func (a *App) Add(ctx context.Context, args []string) error {
	act := models.Action{Status: models.StatusNotStarted}
	if err := a.promptAction(&act); err != nil {
		return err
	}
	created, err := a.actions.Create(ctx, act)
	if err != nil {
		return err
	}
	a.printf("Ação %d criada (%s).\n", created.ID, created.DelayStatus)
	return nil
}

func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := parseActionID(args, "edit <id>")
	if err != nil {
		return err
	}
	act, err := a.actions.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := a.promptAction(&act); err != nil {
		return err
	}
	updated, err := a.actions.Update(ctx, act)
	if err != nil {
		return err
	}
	a.printf("Ação %d atualizada (%s).\n", updated.ID, updated.DelayStatus)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := parseActionID(args, "delete <id>")
	if err != nil {
		return err
	}
	act, err := a.actions.Get(ctx, id)
	if err != nil {
		return err
	}

	ok, err := Confirm(a.reader, fmt.Sprintf("Excluir a ação %d (%s) com suas tarefas e comentários?", act.ID, truncate(act.Description, 40)), a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.actions.Delete(ctx, id); err != nil {
		return err
	}
	a.printf("Ação %d excluída.\n", id)
	return nil
}
