package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/dmitrijs2005/statusboard/internal/client/models"
	"github.com/dmitrijs2005/statusboard/internal/client/query"
	"github.com/dmitrijs2005/statusboard/internal/client/services"
)

// truncate shortens s to at most n runes, marking the cut with "…".
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

// flexible returns the room left for the free-text column of a table whose
// other columns take fixed runes.
func flexible(width, fixed int) int {
	return max(12, width-fixed)
}

func renderActions(w io.Writer, actions []models.Action, width int) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	desc := flexible(width, 78)
	fmt.Fprintln(tw, "ID\tDESCRIÇÃO\tRESPONSÁVEL\tSETOR\tPRAZO\tSTATUS\tSITUAÇÃO")
	for _, a := range actions {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, truncate(a.Description, desc), truncate(a.Responsible, 14), truncate(a.Sector, 10),
			a.DueDate, a.Status, a.DelayStatus)
	}
	tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func renderTasks(w io.Writer, tasks []models.Task, width int) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	title := flexible(width, 80)
	fmt.Fprintln(tw, "#\tID\tTÍTULO\tRESPONSÁVEL\tPRAZO\tSTATUS\tSITUAÇÃO\tCOMENT.")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			t.Order, shortID(t.ID), truncate(t.Title, title), truncate(t.Responsible, 14),
			t.DueDate, t.Status, t.DelayStatus, len(t.Comments))
	}
	tw.Flush()
}

func renderAction(w io.Writer, a models.Action) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", a.ID)
	fmt.Fprintf(tw, "Descrição:\t%s\n", a.Description)
	fmt.Fprintf(tw, "Acompanhamento:\t%s\n", a.FollowUp)
	fmt.Fprintf(tw, "Responsável:\t%s\n", a.Responsible)
	fmt.Fprintf(tw, "Setor:\t%s\n", a.Sector)
	fmt.Fprintf(tw, "Prazo:\t%s\n", a.DueDate)
	fmt.Fprintf(tw, "Status:\t%s\n", a.Status)
	fmt.Fprintf(tw, "Situação:\t%s\n", a.DelayStatus)
	if !a.UpdatedAt.IsZero() {
		fmt.Fprintf(tw, "Atualizado:\t%s\n", a.UpdatedAt.Local().Format("02/01/2006 15:04"))
	}
	tw.Flush()
}

func renderComments(w io.Writer, comments []models.Comment) {
	if len(comments) == 0 {
		fmt.Fprintln(w, "Sem comentários.")
		return
	}
	for _, c := range comments {
		fmt.Fprintf(w, "[%s] %s (%s): %s\n", shortID(c.ID), c.CreatedAt.Local().Format("02/01/2006 15:04"), c.Author, c.Text)
	}
}

func renderSummary(w io.Writer, s query.Summary) {
	fmt.Fprintf(w, "Ações: %d   Tarefas: %d   Concluídas: %.0f%%\n", s.Actions, s.Tasks, s.CompletionRate()*100)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SITUAÇÃO\tAÇÕES\tTAREFAS")
	for _, d := range models.DelayStatuses {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", d, s.ByDelay[d], s.TasksByDelay[d])
	}
	fmt.Fprintln(tw, "\t\t")
	fmt.Fprintln(tw, "STATUS\tAÇÕES\t")
	for _, st := range models.WorkflowStatuses {
		fmt.Fprintf(tw, "%s\t%d\t\n", st, s.ByStatus[st])
	}
	fmt.Fprintln(tw, "\t\t")
	fmt.Fprintln(tw, "SETOR\tAÇÕES\t")
	for _, sec := range s.Sectors() {
		fmt.Fprintf(tw, "%s\t%d\t\n", sec, s.BySector[sec])
	}
	tw.Flush()
}

func describeNotification(n services.Notification) string {
	subject := "Ação " + strconv.FormatInt(n.ActionID, 10)
	if n.TaskID != "" {
		subject = fmt.Sprintf("Tarefa %s (ação %d)", shortID(n.TaskID), n.ActionID)
	}
	switch n.Kind {
	case services.NotifyOverdue:
		return fmt.Sprintf("%s em atraso desde %s: %s", subject, n.DueDate, n.Title)
	case services.NotifyDueSoon:
		if n.DaysLeft == 0 {
			return fmt.Sprintf("%s vence hoje: %s", subject, n.Title)
		}
		return fmt.Sprintf("%s vence em %d dia(s), %s: %s", subject, n.DaysLeft, n.DueDate, n.Title)
	}
	return subject
}

func describeFilter(f query.Filter) string {
	if f.IsZero() {
		return "nenhum"
	}
	var parts []string
	add := func(label string, vals []string) {
		if len(vals) > 0 {
			parts = append(parts, label+"="+strings.Join(vals, "|"))
		}
	}
	statuses := make([]string, 0, len(f.Statuses))
	for _, s := range f.Statuses {
		statuses = append(statuses, string(s))
	}
	delays := make([]string, 0, len(f.DelayStatuses))
	for _, d := range f.DelayStatuses {
		delays = append(delays, string(d))
	}
	add("status", statuses)
	add("situação", delays)
	add("setor", f.Sectors)
	if f.Responsible != "" {
		parts = append(parts, "responsável="+f.Responsible)
	}
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("busca=%q", f.Search))
	}
	if !f.DueFrom.IsZero() {
		parts = append(parts, "de="+models.FormatDueDate(f.DueFrom))
	}
	if !f.DueTo.IsZero() {
		parts = append(parts, "até="+models.FormatDueDate(f.DueTo))
	}
	if f.IncludeTasks {
		parts = append(parts, "incluindo tarefas")
	}
	return strings.Join(parts, ", ")
}
