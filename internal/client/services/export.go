package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dmitrijs2005/statusboard/internal/client/client"
	"github.com/dmitrijs2005/statusboard/internal/client/connectivity"
	"github.com/dmitrijs2005/statusboard/internal/client/models"
	"github.com/dmitrijs2005/statusboard/internal/filex"
	"github.com/dmitrijs2005/statusboard/internal/logging"
	"github.com/dmitrijs2005/statusboard/internal/netx"
	"github.com/dmitrijs2005/statusboard/internal/timex"
)

var ErrUploadUnavailable = errors.New("export upload needs a backend connection")

var exportHeader = []string{
	"action_id", "description", "follow_up", "responsible", "sector", "due_date", "status", "delay_status",
	"task_order", "task_title", "task_responsible", "task_due_date", "task_status", "task_delay_status",
}

// WriteCSV writes one row per task, preceded by its action's columns.
// Actions without tasks get a single row with empty task columns.
func WriteCSV(w io.Writer, actions []models.Action, tasks []models.Task) error {
	byAction := make(map[int64][]models.Task)
	for _, t := range tasks {
		byAction[t.ActionID] = append(byAction[t.ActionID], t)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}

	for _, a := range actions {
		head := []string{
			strconv.FormatInt(a.ID, 10), a.Description, a.FollowUp, a.Responsible, a.Sector,
			a.DueDate, string(a.Status), string(a.DelayStatus),
		}
		children := byAction[a.ID]
		if len(children) == 0 {
			if err := cw.Write(append(head, "", "", "", "", "", "")); err != nil {
				return err
			}
			continue
		}
		models.SortTasksByOrder(children)
		for _, t := range children {
			row := append(append([]string(nil), head...),
				strconv.Itoa(t.Order), t.Title, t.Responsible, t.DueDate, string(t.Status), string(t.DelayStatus))
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

type ExportService struct {
	actions ActionService
	tasks   TaskService
	backend client.Client
	repos   *Router
	dir     string
	http    *http.Client
	now     timex.Clock
	log     logging.Logger
}

// NewExportService builds the exporter. backend may be nil, in which case
// Upload always fails with ErrUploadUnavailable.
func NewExportService(actions ActionService, tasks TaskService, backend client.Client, repos *Router, dir string, now timex.Clock, log logging.Logger) *ExportService {
	return &ExportService{
		actions: actions,
		tasks:   tasks,
		backend: backend,
		repos:   repos,
		dir:     dir,
		http:    http.DefaultClient,
		now:     now.Or(),
		log:     log.With("module", "export"),
	}
}

// Export writes the dashboard as CSV into the export directory and returns
// the file path.
func (s *ExportService) Export(ctx context.Context) (string, error) {
	actions, err := s.actions.List(ctx)
	if err != nil {
		return "", err
	}
	tasks, err := s.tasks.ListAll(ctx)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, actions, tasks); err != nil {
		return "", fmt.Errorf("render csv: %w", err)
	}

	dir, err := filex.EnsureDir(s.dir)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "statusboard-"+s.now().Format("20060102-150405")+".csv")
	if err := filex.WriteFile(path, buf.Bytes()); err != nil {
		return "", err
	}

	s.log.Info(ctx, "export written", "path", path, "actions", len(actions), "tasks", len(tasks))
	return path, nil
}

// Upload sends an exported file to object storage through a presigned URL
// obtained from the backend and returns the object key.
func (s *ExportService) Upload(ctx context.Context, path string) (string, error) {
	if s.backend == nil || s.repos.Mode() != connectivity.ModeOnline {
		return "", ErrUploadUnavailable
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read export: %w", err)
	}

	url, key, err := s.backend.PresignExport(ctx, filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("presign export: %w", err)
	}
	if err := netx.UploadPresigned(ctx, s.http, url, "text/csv", data); err != nil {
		return "", err
	}

	s.log.Info(ctx, "export uploaded", "key", key)
	return key, nil
}
