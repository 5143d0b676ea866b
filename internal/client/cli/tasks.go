package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/statusboard/internal/client/models"
	"github.com/dmitrijs2005/statusboard/internal/common"
)

// resolveTask finds a task by id or by an unambiguous id prefix, as printed
// in task tables.
func (a *App) resolveTask(ctx context.Context, args []string, usage string) (models.Task, error) {
	if len(args) == 0 || args[0] == "" {
		return models.Task{}, usageError(usage)
	}
	ref := args[0]

	all, err := a.tasks.ListAll(ctx)
	if err != nil {
		return models.Task{}, err
	}

	var found []models.Task
	for _, t := range all {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			found = append(found, t)
		}
	}
	switch len(found) {
	case 0:
		return models.Task{}, common.ErrTaskNotFound
	case 1:
		return found[0], nil
	}
	return models.Task{}, fmt.Errorf("%q identifica %d tarefas, use mais caracteres", ref, len(found))
}

func (a *App) Tasks(ctx context.Context, args []string) error {
	id, err := parseActionID(args, "tasks <id>")
	if err != nil {
		return err
	}
	if _, err := a.actions.Get(ctx, id); err != nil {
		return err
	}
	tasks, err := a.tasks.ListByAction(ctx, id)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		a.println("Nenhuma tarefa.")
		return nil
	}
	renderTasks(a.out, tasks, a.width())
	return nil
}

func (a *App) promptTask(t *models.Task) error {
	fields := []struct {
		label string
		dst   *string
	}{
		{"Título", &t.Title},
		{"Descrição", &t.Description},
		{"Responsável", &t.Responsible},
		{"Setor", &t.Sector},
		{"Prazo (DD/MM/AAAA)", &t.DueDate},
	}
	for _, f := range fields {
		v, err := GetDefault(a.reader, f.label, *f.dst, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	status, err := GetStatus(a.reader, t.Status, a.out)
	if err != nil {
		return err
	}
	t.Status = status
	return nil
}

func (a *App) AddTask(ctx context.Context, args []string) error {
	id, err := parseActionID(args, "addtask <id>")
	if err != nil {
		return err
	}
	parent, err := a.actions.Get(ctx, id)
	if err != nil {
		return err
	}

	t := models.Task{
		ActionID:    id,
		Responsible: parent.Responsible,
		Sector:      parent.Sector,
		DueDate:     parent.DueDate,
		Status:      models.StatusNotStarted,
	}
	if err := a.promptTask(&t); err != nil {
		return err
	}
	created, err := a.tasks.Create(ctx, t)
	if err != nil {
		return err
	}
	a.printf("Tarefa %s criada na ação %d (ordem %d).\n", shortID(created.ID), id, created.Order)
	return nil
}

func (a *App) EditTask(ctx context.Context, args []string) error {
	t, err := a.resolveTask(ctx, args, "edittask <tarefa>")
	if err != nil {
		return err
	}
	if err := a.promptTask(&t); err != nil {
		return err
	}
	updated, err := a.tasks.Update(ctx, t)
	if err != nil {
		return err
	}
	a.printf("Tarefa %s atualizada (%s).\n", shortID(updated.ID), updated.DelayStatus)
	return nil
}

func (a *App) DeleteTask(ctx context.Context, args []string) error {
	t, err := a.resolveTask(ctx, args, "deltask <tarefa>")
	if err != nil {
		return err
	}
	ok, err := Confirm(a.reader, fmt.Sprintf("Excluir a tarefa %q?", truncate(t.Title, 40)), a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.tasks.Delete(ctx, t.ID); err != nil {
		return err
	}
	a.printf("Tarefa %s excluída.\n", shortID(t.ID))
	return nil
}

func (a *App) Done(ctx context.Context, args []string) error {
	t, err := a.resolveTask(ctx, args, "done <tarefa>")
	if err != nil {
		return err
	}
	if _, err := a.tasks.SetStatus(ctx, t.ID, models.StatusCompleted); err != nil {
		return err
	}
	a.printf("Tarefa %s concluída.\n", shortID(t.ID))
	return nil
}

func (a *App) Reorder(ctx context.Context, args []string) error {
	const usage = "reorder <id> <tarefa> [tarefa...]"
	id, err := parseActionID(args, usage)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return usageError(usage)
	}

	tasks, err := a.tasks.ListByAction(ctx, id)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(args)-1)
	for _, ref := range args[1:] {
		var match string
		for _, t := range tasks {
			if t.ID == ref || strings.HasPrefix(t.ID, ref) {
				match = t.ID
				break
			}
		}
		if match == "" {
			return fmt.Errorf("%s: %w", ref, common.ErrTaskNotFound)
		}
		ids = append(ids, match)
	}

	if err := a.tasks.Reorder(ctx, id, ids); err != nil {
		return err
	}
	return a.Tasks(ctx, args[:1])
}

func (a *App) Comment(ctx context.Context, args []string) error {
	id, err := parseActionID(args, "comment <id>")
	if err != nil {
		return err
	}
	if _, err := a.actions.Get(ctx, id); err != nil {
		return err
	}
	list, err := a.comments.List(ctx, id)
	if err != nil {
		return err
	}

	if len(args) >= 3 && args[1] == "delete" {
		for _, c := range list {
			if strings.HasPrefix(c.ID, args[2]) {
				if err := a.comments.Delete(ctx, id, c.ID); err != nil {
					return err
				}
				a.println("Comentário excluído.")
				return nil
			}
		}
		return common.ErrCommentNotFound
	}

	renderComments(a.out, list)

	text, err := GetMultiline(a.reader, "Novo comentário", a.out)
	if err != nil || text == "" {
		return err
	}
	author, err := GetDefault(a.reader, "Autor", a.author, a.out)
	if err != nil {
		return err
	}
	a.author = author

	if _, err := a.comments.Add(ctx, models.Comment{ActionID: id, Author: author, Text: text}); err != nil {
		return err
	}
	a.println("Comentário adicionado.")
	return nil
}

func (a *App) TaskComment(ctx context.Context, args []string) error {
	t, err := a.resolveTask(ctx, args, "taskcomment <tarefa>")
	if err != nil {
		return err
	}
	renderComments(a.out, t.Comments)

	text, err := GetMultiline(a.reader, "Novo comentário", a.out)
	if err != nil || text == "" {
		return err
	}
	author, err := GetDefault(a.reader, "Autor", a.author, a.out)
	if err != nil {
		return err
	}
	a.author = author

	if _, err := a.tasks.AddComment(ctx, t.ID, models.Comment{Author: author, Text: text}); err != nil {
		return err
	}
	a.println("Comentário adicionado.")
	return nil
}
