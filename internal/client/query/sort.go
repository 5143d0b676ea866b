package query

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/statusboard/internal/client/models"
	"github.com/dmitrijs2005/statusboard/internal/textx"
)

type SortField string

const (
	SortByID          SortField = "id"
	SortByDueDate     SortField = "dueDate"
	SortByStatus      SortField = "status"
	SortByDelayStatus SortField = "delayStatus"
	SortByResponsible SortField = "responsible"
	SortBySector      SortField = "sector"
	SortByDescription SortField = "description"
)

var SortFields = []SortField{
	SortByID, SortByDueDate, SortByStatus, SortByDelayStatus,
	SortByResponsible, SortBySector, SortByDescription,
}

type Sort struct {
	Field SortField `json:"field"`
	Desc  bool      `json:"desc"`
}

// ParseSortField accepts a field name in any letter case.
func ParseSortField(s string) (SortField, error) {
	for _, f := range SortFields {
		if strings.EqualFold(string(f), strings.TrimSpace(s)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown sort field %q", s)
}

// SortActions sorts in place. Ties keep their order. Actions whose due date
// does not parse go last in both directions when sorting by due date.
func SortActions(actions []models.Action, s Sort) {
	field := s.Field
	if field == "" {
		field = SortByID
	}

	slices.SortStableFunc(actions, func(a, b models.Action) int {
		if field == SortByDueDate {
			da, errA := models.ParseDueDate(a.DueDate, time.UTC)
			db, errB := models.ParseDueDate(b.DueDate, time.UTC)
			switch {
			case errA != nil && errB != nil:
				return 0
			case errA != nil:
				return 1
			case errB != nil:
				return -1
			}
			return direction(da.Compare(db), s.Desc)
		}
		return direction(compareBy(field, a, b), s.Desc)
	})
}

func direction(c int, desc bool) int {
	if desc {
		return -c
	}
	return c
}

func compareBy(field SortField, a, b models.Action) int {
	switch field {
	case SortByStatus:
		return cmp.Compare(slices.Index(models.WorkflowStatuses, a.Status), slices.Index(models.WorkflowStatuses, b.Status))
	case SortByDelayStatus:
		return cmp.Compare(slices.Index(models.DelayStatuses, a.DelayStatus), slices.Index(models.DelayStatuses, b.DelayStatus))
	case SortByResponsible:
		return strings.Compare(textx.Fold(a.Responsible), textx.Fold(b.Responsible))
	case SortBySector:
		return strings.Compare(textx.Fold(a.Sector), textx.Fold(b.Sector))
	case SortByDescription:
		return strings.Compare(textx.Fold(a.Description), textx.Fold(b.Description))
	default:
		return cmp.Compare(a.ID, b.ID)
	}
}
