package local

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/statusboard/internal/client/models"
	"github.com/dmitrijs2005/statusboard/internal/client/repositories/collection"
	"github.com/dmitrijs2005/statusboard/internal/client/securestore"
	"github.com/dmitrijs2005/statusboard/internal/common"
	"github.com/dmitrijs2005/statusboard/internal/logging"
	"github.com/dmitrijs2005/statusboard/internal/timex"
)

type ActionStore struct {
	c   *collection.Collection[models.Action]
	now timex.Clock
}

func NewActionStore(store *securestore.Store, now timex.Clock, log logging.Logger) *ActionStore {
	cfg := collection.Config[models.Action]{
		StorageKey: common.ActionsStorageKey,
		Field:      "actions",
		Migrations: []collection.Migration[models.Action]{
			{From: common.LegacySchemaVersion, To: common.CurrentSchemaVersion, Apply: keepActions},
		},
		Normalize: func(a *models.Action, at time.Time) { a.Refresh(at) },
	}
	return &ActionStore{c: collection.New(store, cfg, now, log), now: now.Or()}
}

// keepActions upgrades unversioned action lists, whose shape never changed.
func keepActions(actions []models.Action) ([]models.Action, error) {
	return actions, nil
}

func (s *ActionStore) GetAll(ctx context.Context) ([]models.Action, error) {
	return s.c.All(ctx), nil
}

func (s *ActionStore) GetByID(ctx context.Context, id int64) (models.Action, error) {
	a, ok := s.c.Find(ctx, strconv.FormatInt(id, 10))
	if !ok {
		return models.Action{}, fmt.Errorf("action %d: %w", id, common.ErrorNotFound)
	}
	return a, nil
}

// Save upserts a by id.
func (s *ActionStore) Save(ctx context.Context, a models.Action) error {
	return s.c.Save(ctx, a)
}

func (s *ActionStore) SaveAll(ctx context.Context, actions []models.Action) error {
	return s.c.SaveAll(ctx, actions)
}

// Delete removes the action with id. An unknown id is a no-op.
func (s *ActionStore) Delete(ctx context.Context, id int64) error {
	return s.c.Delete(ctx, strconv.FormatInt(id, 10))
}

// NextID returns models.FirstActionID for an empty collection and the
// highest id plus one otherwise.
func (s *ActionStore) NextID(ctx context.Context) (int64, error) {
	return nextID(s.c.All(ctx)), nil
}

func nextID(actions []models.Action) int64 {
	if len(actions) == 0 {
		return models.FirstActionID
	}
	maxID := actions[0].ID
	for _, a := range actions[1:] {
		maxID = max(maxID, a.ID)
	}
	return maxID + 1
}

// Create assigns the next id to a and appends it in the same write, so two
// creations never share an id.
func (s *ActionStore) Create(ctx context.Context, a models.Action) (models.Action, error) {
	err := s.c.Update(ctx, func(items []models.Action) ([]models.Action, error) {
		a.ID = nextID(items)
		return append(items, a), nil
	})
	if err != nil {
		return models.Action{}, err
	}
	a.Refresh(s.now())
	return a, nil
}

// LastUpdated reports when the collection was last written.
func (s *ActionStore) LastUpdated(ctx context.Context) (time.Time, bool) {
	meta, ok := s.c.Meta(ctx)
	return meta.LastUpdated, ok
}
