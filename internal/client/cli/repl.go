package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dmitrijs2005/statusboard/internal/client/models"
	"github.com/dmitrijs2005/statusboard/internal/common"
)

// execIface is the command surface of the REPL. App satisfies it; tests use
// a recording stub.
type execIface interface {
	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Add(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Tasks(ctx context.Context, args []string) error
	AddTask(ctx context.Context, args []string) error
	EditTask(ctx context.Context, args []string) error
	DeleteTask(ctx context.Context, args []string) error
	Done(ctx context.Context, args []string) error
	Reorder(ctx context.Context, args []string) error
	Comment(ctx context.Context, args []string) error
	TaskComment(ctx context.Context, args []string) error
	Filter(ctx context.Context, args []string) error
	Sort(ctx context.Context, args []string) error
	View(ctx context.Context, args []string) error
	Summary(ctx context.Context, args []string) error
	Notifications(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error
	Chat(ctx context.Context, args []string) error
	Mode(ctx context.Context, args []string) error
}

const helpText = `Comandos:
  list [página]              lista as ações (com filtro e ordenação atuais)
  show <id>                  detalhes de uma ação
  add | edit <id> | delete <id>
  tasks <id>                 tarefas de uma ação
  addtask <id> | edittask <tarefa> | deltask <tarefa> | done <tarefa>
  reorder <id> <tarefa>...   nova ordem das tarefas
  comment <id> [delete <c>]  comentários da ação
  taskcomment <tarefa>       comenta uma tarefa
  filter [clear]             define o filtro
  sort <campo> [desc]        campos: id, dueDate, status, delayStatus, responsible, sector, description
  view table|dashboard       visão inicial
  summary                    totais do painel
  notifications              avisos de prazo
  export [upload]            gera CSV (e envia ao servidor)
  chat                       assistente
  mode                       modo de conexão
  exit`

// runREPL reads commands from reader until EOF, "exit" or "quit", or until
// ctx is done. Command errors are reported and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	commands := map[string]func(context.Context, []string) error{
		"list":          a.List,
		"l":             a.List,
		"show":          a.Show,
		"add":           a.Add,
		"edit":          a.Edit,
		"delete":        a.Delete,
		"tasks":         a.Tasks,
		"addtask":       a.AddTask,
		"edittask":      a.EditTask,
		"deltask":       a.DeleteTask,
		"done":          a.Done,
		"reorder":       a.Reorder,
		"comment":       a.Comment,
		"taskcomment":   a.TaskComment,
		"filter":        a.Filter,
		"sort":          a.Sort,
		"view":          a.View,
		"summary":       a.Summary,
		"notifications": a.Notifications,
		"export":        a.Export,
		"chat":          a.Chat,
		"mode":          a.Mode,
	}

	for ctx.Err() == nil {
		fmt.Fprintf(w, "sb (%s)> ", statusFn())
		line, err := reader.ReadString('\n')
		if line == "" && err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help", "?":
			fmt.Fprintln(w, helpText)
			continue
		case "exit", "quit":
			fmt.Fprintln(w, "Até logo!")
			return
		}

		run, ok := commands[cmd]
		if !ok {
			fmt.Fprintln(w, "Comando desconhecido:", cmd)
			continue
		}
		if err := run(ctx, args); err != nil {
			report(w, err)
		}
	}
}

// usageError carries the expected syntax of a command.
type usageError string

func (u usageError) Error() string { return "uso: " + string(u) }

func report(w io.Writer, err error) {
	var verr models.ValidationErrors
	if errors.As(err, &verr) {
		fields := make([]string, 0, len(verr))
		for f := range verr {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			fmt.Fprintf(w, "  %s: %s\n", f, verr[f])
		}
		return
	}
	if errors.Is(err, common.ErrSaveFailed) {
		fmt.Fprintln(w, common.ErrSaveFailed)
		return
	}
	fmt.Fprintln(w, "Erro:", err)
}
