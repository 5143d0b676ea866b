// Package collection stores a list of entities as one encrypted, versioned
// document:
//
//	{"<field>": [...], "lastUpdated": <epoch-ms>, "version": "<schema>"}
//
// Every mutation reads the whole document, changes it in memory and writes
// it back in one swap. A mutex serializes writers in this process; writers
// in other processes are detected through the secure store revision token.
package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/statusboard/internal/client/securestore"
	"github.com/dmitrijs2005/statusboard/internal/common"
	"github.com/dmitrijs2005/statusboard/internal/logging"
	"github.com/dmitrijs2005/statusboard/internal/timex"
)

// Keyed is implemented by every entity stored in a collection.
type Keyed interface {
	Key() string
}

// Migration upgrades items stored at schema version From to version To.
type Migration[T any] struct {
	From  string
	To    string
	Apply func(items []T) ([]T, error)
}

type Config[T Keyed] struct {
	// StorageKey is the secure store key of the document.
	StorageKey string
	// Field names the item array inside the document.
	Field string
	// Version is stamped on every write. Defaults to common.CurrentSchemaVersion.
	Version    string
	Migrations []Migration[T]
	// Normalize runs on every item after load and before write.
	Normalize func(item *T, now time.Time)
}

// Meta describes the stored document.
type Meta struct {
	LastUpdated time.Time
	Version     string
}

// ErrUnchanged may be returned by an Update callback to skip the write.
var ErrUnchanged = errors.New("collection unchanged")

type Collection[T Keyed] struct {
	mu    sync.Mutex
	store *securestore.Store
	cfg   Config[T]
	now   timex.Clock
	log   logging.Logger
}

func New[T Keyed](store *securestore.Store, cfg Config[T], now timex.Clock, log logging.Logger) *Collection[T] {
	if cfg.Version == "" {
		cfg.Version = common.CurrentSchemaVersion
	}
	return &Collection[T]{
		store: store,
		cfg:   cfg,
		now:   now.Or(),
		log:   log.With("module", "collection", "key", cfg.StorageKey),
	}
}

type document[T any] struct {
	items       []T
	lastUpdated int64
	version     string
}

func (c *Collection[T]) decode(ctx context.Context, raw map[string]json.RawMessage) document[T] {
	var doc document[T]
	if v, ok := raw[c.cfg.Field]; ok {
		if err := json.Unmarshal(v, &doc.items); err != nil {
			c.log.Warn(ctx, "unreadable items, treating collection as empty", "error", err)
			doc.items = nil
		}
	}
	if ts, ok := raw["lastUpdated"]; ok {
		if err := json.Unmarshal(ts, &doc.lastUpdated); err != nil {
			c.log.Warn(ctx, "unreadable lastUpdated stamp, using 0", "error", err)
			doc.lastUpdated = 0
		}
	}
	if v, ok := raw["version"]; ok {
		if err := json.Unmarshal(v, &doc.version); err != nil {
			c.log.Warn(ctx, "unreadable version stamp", "error", err)
			doc.version = ""
		}
	}

	doc.items = c.migrate(ctx, doc.version, doc.items)
	now := c.now()
	for i := range doc.items {
		c.normalize(&doc.items[i], now)
	}
	return doc
}

func (c *Collection[T]) normalize(item *T, now time.Time) {
	if c.cfg.Normalize != nil {
		c.cfg.Normalize(item, now)
	}
}

// migrate chains registered migrations from the stored version to the
// current one. Without a complete path the items are used as stored.
func (c *Collection[T]) migrate(ctx context.Context, from string, items []T) []T {
	if from == c.cfg.Version {
		return items
	}

	cur, out := from, items
	for cur != c.cfg.Version {
		step, ok := c.findMigration(cur)
		if !ok {
			c.log.Warn(ctx, "schema version mismatch", "stored", from, "expected", c.cfg.Version)
			return items
		}
		next, err := step.Apply(out)
		if err != nil {
			c.log.Warn(ctx, "schema migration failed", "from", step.From, "to", step.To, "error", err)
			return items
		}
		c.log.Info(ctx, "schema migrated", "from", step.From, "to", step.To)
		cur, out = step.To, next
	}
	return out
}

func (c *Collection[T]) findMigration(from string) (Migration[T], bool) {
	for _, m := range c.cfg.Migrations {
		if m.From == from {
			return m, true
		}
	}
	return Migration[T]{}, false
}

func (c *Collection[T]) read(ctx context.Context) (document[T], bool) {
	var raw map[string]json.RawMessage
	if !c.store.GetSecureItem(ctx, c.cfg.StorageKey, &raw) {
		return document[T]{}, false
	}
	return c.decode(ctx, raw), true
}

// All returns every stored item. A missing or unreadable document is empty.
func (c *Collection[T]) All(ctx context.Context) []T {
	doc, _ := c.read(ctx)
	return doc.items
}

// Find returns the item with the given key.
func (c *Collection[T]) Find(ctx context.Context, key string) (T, bool) {
	for _, item := range c.All(ctx) {
		if item.Key() == key {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Meta returns the metadata of the stored document.
func (c *Collection[T]) Meta(ctx context.Context) (Meta, bool) {
	doc, ok := c.read(ctx)
	if !ok {
		return Meta{}, false
	}
	return Meta{LastUpdated: timex.FromEpochMillis(doc.lastUpdated), Version: doc.version}, true
}

// Update runs fn over the current items and writes the result back.
// Errors returned by fn abort the write and are returned as is; write
// failures are wrapped in common.ErrSaveFailed.
func (c *Collection[T]) Update(ctx context.Context, fn func(items []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var raw map[string]json.RawMessage
	tok, found, err := c.store.GetSecureItemToken(ctx, c.cfg.StorageKey, &raw)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrSaveFailed, err)
	}

	var doc document[T]
	if found {
		doc = c.decode(ctx, raw)
	}

	items, err := fn(doc.items)
	if errors.Is(err, ErrUnchanged) {
		return nil
	}
	if err != nil {
		return err
	}

	now := c.now()
	for i := range items {
		c.normalize(&items[i], now)
	}
	if items == nil {
		items = []T{}
	}

	stamp := max(timex.EpochMillis(now), doc.lastUpdated)
	out := map[string]any{
		c.cfg.Field:   items,
		"lastUpdated": stamp,
		"version":     c.cfg.Version,
	}
	if err := c.store.SwapSecureItem(ctx, c.cfg.StorageKey, tok, out); err != nil {
		c.log.Error(ctx, "collection write failed", "error", err)
		return fmt.Errorf("%w: %w", common.ErrSaveFailed, err)
	}
	c.log.Debug(ctx, "collection saved", "items", len(items))
	return nil
}

// Save replaces the item with the same key in place, or appends it.
func (c *Collection[T]) Save(ctx context.Context, item T) error {
	return c.SaveAll(ctx, []T{item})
}

// SaveAll upserts every item in a single write.
func (c *Collection[T]) SaveAll(ctx context.Context, batch []T) error {
	return c.Update(ctx, func(items []T) ([]T, error) {
		for _, item := range batch {
			items = upsert(items, item)
		}
		return items, nil
	})
}

func upsert[T Keyed](items []T, item T) []T {
	for i := range items {
		if items[i].Key() == item.Key() {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}

// Delete removes the item with the given key. An unknown key is a no-op.
func (c *Collection[T]) Delete(ctx context.Context, key string) error {
	_, err := c.DeleteWhere(ctx, func(item T) bool { return item.Key() == key })
	return err
}

// DeleteWhere removes every item matching pred and returns how many went.
func (c *Collection[T]) DeleteWhere(ctx context.Context, pred func(T) bool) (int, error) {
	removed := 0
	err := c.Update(ctx, func(items []T) ([]T, error) {
		kept := items[:0]
		for _, item := range items {
			if pred(item) {
				removed++
				continue
			}
			kept = append(kept, item)
		}
		if removed == 0 {
			return nil, ErrUnchanged
		}
		return kept, nil
	})
	return removed, err
}
