package services

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/statusboard/internal/client/models"
	"github.com/dmitrijs2005/statusboard/internal/logging"
	"github.com/dmitrijs2005/statusboard/internal/timex"
)

// DueSoonDays is how far ahead a due date raises a notification.
const DueSoonDays = 3

type NotificationKind string

const (
	NotifyOverdue NotificationKind = "overdue"
	NotifyDueSoon NotificationKind = "due_soon"
)

// Notification is a reminder about one action or task. TaskID is empty for
// actions.
type Notification struct {
	Kind     NotificationKind
	ActionID int64
	TaskID   string
	Title    string
	DueDate  string
	DaysLeft int
	At       time.Time
}

// key identifies a notification. A new due date yields a new key.
func (n Notification) key() string {
	subject := "action:" + strconv.FormatInt(n.ActionID, 10)
	if n.TaskID != "" {
		subject = "task:" + n.TaskID
	}
	return string(n.Kind) + "|" + subject + "|" + n.DueDate
}

// NotificationService raises each overdue or due-soon reminder once per
// process.
type NotificationService struct {
	actions  ActionService
	tasks    TaskService
	now      timex.Clock
	interval time.Duration
	log      logging.Logger

	sweepMu sync.Mutex
	mu      sync.Mutex
	seen    map[string]struct{}
	inbox   []Notification
}

func NewNotificationService(actions ActionService, tasks TaskService, now timex.Clock, interval time.Duration, log logging.Logger) *NotificationService {
	return &NotificationService{
		actions:  actions,
		tasks:    tasks,
		now:      now.Or(),
		interval: interval,
		log:      log.With("module", "notifications"),
		seen:     make(map[string]struct{}),
	}
}

func classify(dueDate string, status models.WorkflowStatus, now time.Time) (NotificationKind, int, bool) {
	if status == models.StatusCompleted {
		return "", 0, false
	}
	due, err := models.ParseDueDate(dueDate, now.Location())
	if err != nil {
		return "", 0, false
	}
	days := int(math.Round(timex.StartOfDay(due).Sub(timex.StartOfDay(now)).Hours() / 24))
	switch {
	case days < 0:
		return NotifyOverdue, days, true
	case days <= DueSoonDays:
		return NotifyDueSoon, days, true
	}
	return "", 0, false
}

// Sweep scans actions and tasks and returns the notifications not raised
// before. Concurrent sweeps are serialized.
func (s *NotificationService) Sweep(ctx context.Context) ([]Notification, error) {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	actions, err := s.actions.List(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var found []Notification
	for _, a := range actions {
		if kind, days, ok := classify(a.DueDate, a.Status, now); ok {
			found = append(found, Notification{Kind: kind, ActionID: a.ID, Title: a.Description, DueDate: a.DueDate, DaysLeft: days, At: now})
		}
	}
	for _, t := range tasks {
		if kind, days, ok := classify(t.DueDate, t.Status, now); ok {
			found = append(found, Notification{Kind: kind, ActionID: t.ActionID, TaskID: t.ID, Title: t.Title, DueDate: t.DueDate, DaysLeft: days, At: now})
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var fresh []Notification
	for _, n := range found {
		k := n.key()
		if _, ok := s.seen[k]; ok {
			continue
		}
		s.seen[k] = struct{}{}
		fresh = append(fresh, n)
	}
	s.inbox = append(s.inbox, fresh...)

	if len(fresh) > 0 {
		s.log.Info(ctx, "new notifications", "count", len(fresh))
	}
	return fresh, nil
}

// Inbox returns every notification raised so far, oldest first.
func (s *NotificationService) Inbox() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification(nil), s.inbox...)
}

// Run sweeps immediately and then every interval until ctx is done. notify
// receives the new notifications of each sweep; it may be nil.
func (s *NotificationService) Run(ctx context.Context, notify func([]Notification)) {
	sweep := func() {
		fresh, err := s.Sweep(ctx)
		if err != nil {
			s.log.Warn(ctx, "notification sweep failed", "error", err)
			return
		}
		if notify != nil && len(fresh) > 0 {
			notify(fresh)
		}
	}

	sweep()
	if s.interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sweep()
		case <-ctx.Done():
			return
		}
	}
}
