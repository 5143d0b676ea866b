// Package query filters, sorts and summarizes dashboard items.
package query

import (
	"slices"
	"time"

	"github.com/dmitrijs2005/statusboard/internal/client/models"
	"github.com/dmitrijs2005/statusboard/internal/textx"
)

// Filter selects actions. Empty fields do not constrain. With IncludeTasks
// an action also matches when any of its tasks matches.
type Filter struct {
	Statuses      []models.WorkflowStatus `json:"statuses,omitempty"`
	DelayStatuses []models.DelayStatus    `json:"delayStatuses,omitempty"`
	Sectors       []string                `json:"sectors,omitempty"`
	Responsible   string                  `json:"responsible,omitempty"`
	Search        string                  `json:"search,omitempty"`
	DueFrom       time.Time               `json:"dueFrom,omitzero"`
	DueTo         time.Time               `json:"dueTo,omitzero"`
	IncludeTasks  bool                    `json:"includeTasks,omitempty"`
}

// IsZero reports whether the filter matches everything.
func (f Filter) IsZero() bool {
	return len(f.Statuses) == 0 && len(f.DelayStatuses) == 0 && len(f.Sectors) == 0 &&
		f.Responsible == "" && f.Search == "" && f.DueFrom.IsZero() && f.DueTo.IsZero()
}

type fields struct {
	status      models.WorkflowStatus
	delay       models.DelayStatus
	sector      string
	responsible string
	dueDate     string
	text        []string
}

func (f Filter) match(x fields) bool {
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, x.status) {
		return false
	}
	if len(f.DelayStatuses) > 0 && !slices.Contains(f.DelayStatuses, x.delay) {
		return false
	}
	if len(f.Sectors) > 0 && !slices.ContainsFunc(f.Sectors, func(s string) bool {
		return textx.Fold(s) == textx.Fold(x.sector)
	}) {
		return false
	}
	if f.Responsible != "" && !textx.Contains(x.responsible, f.Responsible) {
		return false
	}
	if !f.DueFrom.IsZero() || !f.DueTo.IsZero() {
		due, err := models.ParseDueDate(x.dueDate, f.location())
		if err != nil {
			return false
		}
		if !f.DueFrom.IsZero() && due.Before(f.DueFrom) {
			return false
		}
		if !f.DueTo.IsZero() && due.After(f.DueTo) {
			return false
		}
	}
	if f.Search != "" && !slices.ContainsFunc(x.text, func(s string) bool {
		return textx.Contains(s, f.Search)
	}) {
		return false
	}
	return true
}

func (f Filter) location() *time.Location {
	if !f.DueFrom.IsZero() {
		return f.DueFrom.Location()
	}
	return f.DueTo.Location()
}

func actionFields(a models.Action) fields {
	return fields{
		status:      a.Status,
		delay:       a.DelayStatus,
		sector:      a.Sector,
		responsible: a.Responsible,
		dueDate:     a.DueDate,
		text:        []string{a.Description, a.FollowUp, a.Responsible, a.Sector},
	}
}

func taskFields(t models.Task) fields {
	return fields{
		status:      t.Status,
		delay:       t.DelayStatus,
		sector:      t.Sector,
		responsible: t.Responsible,
		dueDate:     t.DueDate,
		text:        []string{t.Title, t.Description, t.Responsible, t.Sector},
	}
}

// MatchAction reports whether a, or with IncludeTasks one of tasks, matches.
func (f Filter) MatchAction(a models.Action, tasks []models.Task) bool {
	if f.match(actionFields(a)) {
		return true
	}
	if !f.IncludeTasks {
		return false
	}
	for _, t := range tasks {
		if t.ActionID == a.ID && f.match(taskFields(t)) {
			return true
		}
	}
	return false
}

// MatchTask reports whether t matches on its own fields.
func (f Filter) MatchTask(t models.Task) bool {
	return f.match(taskFields(t))
}

// Apply returns the actions matching f in their original order.
func Apply(actions []models.Action, tasks []models.Task, f Filter) []models.Action {
	if f.IsZero() {
		return slices.Clone(actions)
	}
	out := make([]models.Action, 0, len(actions))
	for _, a := range actions {
		if f.MatchAction(a, tasks) {
			out = append(out, a)
		}
	}
	return out
}
