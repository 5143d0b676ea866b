package models

import (
	"sort"
	"time"
)

// Task is a sub-item of an action, independently assignable and schedulable.
type Task struct {
	ID          string         `json:"id"`
	ActionID    int64          `json:"actionId"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Responsible string         `json:"responsible"`
	Sector      string         `json:"sector"`
	DueDate     string         `json:"dueDate"`
	Status      WorkflowStatus `json:"status"`
	DelayStatus DelayStatus    `json:"delayStatus"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	Order       int            `json:"order"`
	Comments    []Comment      `json:"comments,omitempty"`
}

// Key returns the collection key of the task.
func (t Task) Key() string {
	return t.ID
}

// Refresh recomputes the derived delay status at now.
func (t *Task) Refresh(now time.Time) {
	t.DelayStatus = CalculateDelayStatus(t.DueDate, t.Status, now)
}

// Validate checks the form constraints of a task.
func (t Task) Validate() error {
	errs := ValidationErrors{}
	errs.required("title", t.Title)
	if t.ActionID <= 0 {
		errs["actionId"] = MsgRequired
	}
	errs.dueDate("dueDate", t.DueDate)
	errs.status("status", t.Status)
	return errs.orNil()
}

// SortTasksByOrder sorts tasks by display order, then by creation time.
func SortTasksByOrder(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Order != tasks[j].Order {
			return tasks[i].Order < tasks[j].Order
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
}
