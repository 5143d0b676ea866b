package remote

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/dmitrijs2005/statusboard/internal/client/client"
	"github.com/dmitrijs2005/statusboard/internal/client/models"
)

const isoDate = "2006-01-02"

func str(r client.Row, col string) string {
	switch v := r[col].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func num(r client.Row, col string) int64 {
	switch v := r[col].(type) {
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

func ts(r client.Row, col string) time.Time {
	s, _ := r[col].(string)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// dueDateToRow converts a display date to ISO, or nil when it does not parse.
func dueDateToRow(s string) any {
	t, err := models.ParseDueDate(s, time.UTC)
	if err != nil {
		return nil
	}
	return t.Format(isoDate)
}

func dueDateFromRow(r client.Row) string {
	s := str(r, "due_date")
	t, err := models.ParseDueDate(s, time.UTC)
	if err != nil {
		return s
	}
	return models.FormatDueDate(t)
}

func timeToRow(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func actionFromRow(r client.Row, now time.Time) models.Action {
	a := models.Action{
		ID:          num(r, "id"),
		Description: str(r, "description"),
		FollowUp:    str(r, "follow_up"),
		Responsible: str(r, "responsible"),
		Sector:      str(r, "sector"),
		DueDate:     dueDateFromRow(r),
		Status:      models.WorkflowStatus(str(r, "status")),
		CreatedAt:   ts(r, "created_at"),
		UpdatedAt:   ts(r, "updated_at"),
	}
	a.Refresh(now)
	return a
}

// actionToRow leaves the id out when it is unset so the backend assigns one.
func actionToRow(a models.Action) client.Row {
	r := client.Row{
		"description": a.Description,
		"follow_up":   a.FollowUp,
		"responsible": a.Responsible,
		"sector":      a.Sector,
		"due_date":    dueDateToRow(a.DueDate),
		"status":      string(a.Status),
		"created_at":  timeToRow(a.CreatedAt),
		"updated_at":  timeToRow(a.UpdatedAt),
	}
	if a.ID > 0 {
		r["id"] = a.ID
	}
	return r
}

func taskFromRow(r client.Row, now time.Time) models.Task {
	t := models.Task{
		ID:          str(r, "id"),
		ActionID:    num(r, "action_id"),
		Title:       str(r, "title"),
		Description: str(r, "description"),
		Responsible: str(r, "responsible"),
		Sector:      str(r, "sector"),
		DueDate:     dueDateFromRow(r),
		Status:      models.WorkflowStatus(str(r, "status")),
		CreatedAt:   ts(r, "created_at"),
		UpdatedAt:   ts(r, "updated_at"),
		Order:       int(num(r, "sort_order")),
		Comments:    commentsFromValue(r["comments"]),
	}
	t.Refresh(now)
	return t
}

func taskToRow(t models.Task) client.Row {
	return client.Row{
		"id":          t.ID,
		"action_id":   t.ActionID,
		"title":       t.Title,
		"description": t.Description,
		"responsible": t.Responsible,
		"sector":      t.Sector,
		"due_date":    dueDateToRow(t.DueDate),
		"status":      string(t.Status),
		"sort_order":  t.Order,
		"created_at":  timeToRow(t.CreatedAt),
		"updated_at":  timeToRow(t.UpdatedAt),
		"comments":    commentsToValue(t.Comments),
	}
}

// commentsFromValue decodes the task comments column, which arrives as an
// already decoded JSON array.
func commentsFromValue(v any) []models.Comment {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out []models.Comment
	if err := json.Unmarshal(b, &out); err != nil {
		return nil
	}
	return out
}

func commentsToValue(list []models.Comment) any {
	out := make([]any, 0, len(list))
	for _, c := range list {
		out = append(out, map[string]any{
			"id":        c.ID,
			"actionId":  c.ActionID,
			"author":    c.Author,
			"text":      c.Text,
			"createdAt": c.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return out
}

func commentFromRow(r client.Row) models.Comment {
	return models.Comment{
		ID:        str(r, "id"),
		ActionID:  num(r, "action_id"),
		Author:    str(r, "author"),
		Text:      str(r, "text"),
		CreatedAt: ts(r, "created_at"),
	}
}

func commentToRow(c models.Comment) client.Row {
	return client.Row{
		"id":         c.ID,
		"action_id":  c.ActionID,
		"author":     c.Author,
		"text":       c.Text,
		"created_at": timeToRow(c.CreatedAt),
	}
}
