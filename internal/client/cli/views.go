package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/statusboard/internal/client/models"
	"github.com/dmitrijs2005/statusboard/internal/client/query"
	"github.com/dmitrijs2005/statusboard/internal/client/uistate"
)

// pick maps "1,3" to the matching options. Unknown numbers are an error.
func pick[T ~string](answer string, options []T) ([]T, error) {
	var out []T
	for _, p := range splitList(answer) {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || n > len(options) {
			return nil, fmt.Errorf("opção inválida: %s", p)
		}
		out = append(out, options[n-1])
	}
	return out, nil
}

func numbered[T ~string](label string, options []T) string {
	var b strings.Builder
	b.WriteString(label)
	for i, o := range options {
		fmt.Fprintf(&b, " %d) %s", i+1, o)
	}
	return b.String()
}

func (a *App) askDate(label string) (time.Time, error) {
	v, err := GetSimpleText(a.reader, label+" (DD/MM/AAAA, vazio para ignorar)", a.out)
	if err != nil || v == "" {
		return time.Time{}, err
	}
	return models.ParseDueDate(v, time.Local)
}

func (a *App) Filter(ctx context.Context, args []string) error {
	if len(args) > 0 && args[0] == "clear" {
		a.state.Filter = query.Filter{}
		a.state.Scroll = 0
		a.saveState()
		a.println("Filtro removido.")
		return nil
	}

	var f query.Filter

	v, err := GetSimpleText(a.reader, numbered("Status (ex.: 1,3):", models.WorkflowStatuses), a.out)
	if err != nil {
		return err
	}
	if f.Statuses, err = pick(v, models.WorkflowStatuses); err != nil {
		return err
	}

	v, err = GetSimpleText(a.reader, numbered("Situação:", models.DelayStatuses), a.out)
	if err != nil {
		return err
	}
	if f.DelayStatuses, err = pick(v, models.DelayStatuses); err != nil {
		return err
	}

	if v, err = GetSimpleText(a.reader, "Setores (separados por vírgula)", a.out); err != nil {
		return err
	}
	f.Sectors = splitList(v)

	if f.Responsible, err = GetSimpleText(a.reader, "Responsável", a.out); err != nil {
		return err
	}
	if f.Search, err = GetSimpleText(a.reader, "Busca", a.out); err != nil {
		return err
	}
	if f.DueFrom, err = a.askDate("Prazo a partir de"); err != nil {
		return err
	}
	if f.DueTo, err = a.askDate("Prazo até"); err != nil {
		return err
	}
	if f.IncludeTasks, err = Confirm(a.reader, "Considerar também as tarefas?", a.out); err != nil {
		return err
	}

	a.state.Filter = f
	a.state.Scroll = 0
	a.saveState()
	a.printf("Filtro: %s\n", describeFilter(f))
	return nil
}

func (a *App) Sort(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.printf("Ordenação atual: %s", a.state.Sort.Field)
		if a.state.Sort.Desc {
			a.printf(" desc")
		}
		a.println()
		return nil
	}
	field, err := query.ParseSortField(args[0])
	if err != nil {
		return err
	}
	a.state.Sort = query.Sort{Field: field, Desc: len(args) > 1 && strings.EqualFold(args[1], "desc")}
	a.state.Scroll = 0
	a.saveState()
	return a.List(ctx, nil)
}

func (a *App) View(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.printf("Visão: %s\n", a.state.View)
		return nil
	}
	switch v := uistate.View(args[0]); v {
	case uistate.ViewTable, uistate.ViewDashboard:
		a.state.View = v
		a.saveState()
		return nil
	}
	return usageError("view table|dashboard")
}

func (a *App) Summary(ctx context.Context, args []string) error {
	s, err := a.summary(ctx)
	if err != nil {
		return err
	}
	renderSummary(a.out, s)
	return nil
}
