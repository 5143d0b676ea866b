package models

import (
	"strconv"
	"time"
)

// FirstActionID is the id handed out when no action exists yet.
const FirstActionID int64 = 1

// Action is a top-level tracked work item, e.g. a compliance requirement.
type Action struct {
	ID          int64          `json:"id"`
	Description string         `json:"description"`
	FollowUp    string         `json:"followUp"`
	Responsible string         `json:"responsible"`
	Sector      string         `json:"sector"`
	DueDate     string         `json:"dueDate"`
	Status      WorkflowStatus `json:"status"`
	DelayStatus DelayStatus    `json:"delayStatus"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// Key returns the collection key of the action.
func (a Action) Key() string {
	return strconv.FormatInt(a.ID, 10)
}

// Refresh recomputes the derived delay status at now.
func (a *Action) Refresh(now time.Time) {
	a.DelayStatus = CalculateDelayStatus(a.DueDate, a.Status, now)
}

// Validate checks the form constraints of an action.
func (a Action) Validate() error {
	errs := ValidationErrors{}
	errs.required("description", a.Description)
	errs.required("responsible", a.Responsible)
	errs.required("sector", a.Sector)
	errs.dueDate("dueDate", a.DueDate)
	errs.status("status", a.Status)
	return errs.orNil()
}
