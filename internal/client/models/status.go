// Package models defines the domain entities of the status dashboard:
// actions, their tasks and comments, and the derived delay status.
package models

// WorkflowStatus is the user-controlled progress of an action or task.
type WorkflowStatus string

const (
	StatusNotStarted WorkflowStatus = "Não Iniciado"
	StatusPlanned    WorkflowStatus = "Planejado"
	StatusInProgress WorkflowStatus = "Em Andamento"
	StatusCompleted  WorkflowStatus = "Concluído"
)

// WorkflowStatuses lists the known workflow statuses in display order.
var WorkflowStatuses = []WorkflowStatus{
	StatusNotStarted,
	StatusPlanned,
	StatusInProgress,
	StatusCompleted,
}

// Valid reports whether s is a known workflow status.
func (s WorkflowStatus) Valid() bool {
	for _, known := range WorkflowStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// DelayStatus classifies an item against its due date. It is always derived.
type DelayStatus string

const (
	DelayCompleted DelayStatus = "Concluído"
	DelayOverdue   DelayStatus = "Em Atraso"
	DelayOnTime    DelayStatus = "No Prazo"
)

// DelayStatuses lists the derived statuses in display order.
var DelayStatuses = []DelayStatus{DelayOverdue, DelayOnTime, DelayCompleted}
