package query

import (
	"sort"

	"github.com/dmitrijs2005/statusboard/internal/client/models"
)

// Summary holds the dashboard counters.
type Summary struct {
	Actions      int
	Tasks        int
	ByDelay      map[models.DelayStatus]int
	ByStatus     map[models.WorkflowStatus]int
	BySector     map[string]int
	TasksByDelay map[models.DelayStatus]int
}

func Summarize(actions []models.Action, tasks []models.Task) Summary {
	s := Summary{
		Actions:      len(actions),
		Tasks:        len(tasks),
		ByDelay:      make(map[models.DelayStatus]int),
		ByStatus:     make(map[models.WorkflowStatus]int),
		BySector:     make(map[string]int),
		TasksByDelay: make(map[models.DelayStatus]int),
	}
	for _, a := range actions {
		s.ByDelay[a.DelayStatus]++
		s.ByStatus[a.Status]++
		s.BySector[a.Sector]++
	}
	for _, t := range tasks {
		s.TasksByDelay[t.DelayStatus]++
	}
	return s
}

// CompletionRate is the share of completed actions, between 0 and 1.
func (s Summary) CompletionRate() float64 {
	if s.Actions == 0 {
		return 0
	}
	return float64(s.ByStatus[models.StatusCompleted]) / float64(s.Actions)
}

// Sectors returns the sector names sorted by count, then name.
func (s Summary) Sectors() []string {
	names := make([]string, 0, len(s.BySector))
	for name := range s.BySector {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if s.BySector[names[i]] != s.BySector[names[j]] {
			return s.BySector[names[i]] > s.BySector[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}
