package models

import (
	"time"

	"github.com/dmitrijs2005/statusboard/internal/timex"
)

// CalculateDelayStatus derives the delay status of an item due on dueDate
// with the given workflow status, as seen at now.
//
// A completed item is always DelayCompleted. An unparseable due date counts
// as overdue so broken records stay visible. Otherwise an item due strictly
// before today is overdue and anything due today or later is on time.
func CalculateDelayStatus(dueDate string, status WorkflowStatus, now time.Time) DelayStatus {
	if status == StatusCompleted {
		return DelayCompleted
	}

	due, err := ParseDueDate(dueDate, now.Location())
	if err != nil {
		return DelayOverdue
	}

	if due.Before(timex.StartOfDay(now)) {
		return DelayOverdue
	}
	return DelayOnTime
}
