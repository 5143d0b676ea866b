package securestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/statusboard/internal/common"
	"github.com/dmitrijs2005/statusboard/internal/cryptox"
)

// Shape is the top-level JSON kind the owner of a key decodes.
type Shape int

const (
	ShapeAny Shape = iota
	ShapeObject
	ShapeArray
)

// Rule describes one key, or a family of keys when Prefix is set.
//
// Field marks a collection document whose items live under that name. A
// legacy bare array under such a key is wrapped into a document stamped with
// LegacyVersion; an object without the field is rejected.
type Rule struct {
	Key           string
	Prefix        bool
	Shape         Shape
	Field         string
	LegacyVersion string
}

func (r Rule) match(key string) bool {
	if r.Prefix {
		return strings.HasPrefix(key, r.Key)
	}
	return key == r.Key
}

// Matcher selects the keys owned by the application.
type Matcher struct {
	Rules []Rule
}

// DefaultMatcher covers every key the dashboard writes.
var DefaultMatcher = Matcher{Rules: []Rule{
	{Key: common.ActionsStorageKey, Shape: ShapeObject, Field: "actions", LegacyVersion: common.LegacySchemaVersion},
	{Key: common.TasksStorageKey, Shape: ShapeObject, Field: "tasks", LegacyVersion: common.LegacySchemaVersion},
	{Key: common.UIStateStorageKey, Shape: ShapeObject},
	{Key: common.CommentsKeyPrefix, Prefix: true, Shape: ShapeArray},
}}

func (m Matcher) rule(key string) (Rule, bool) {
	for _, r := range m.Rules {
		if r.match(key) {
			return r, true
		}
	}
	return Rule{}, false
}

func (m Matcher) Match(key string) bool {
	_, ok := m.rule(key)
	return ok
}

// upgrade turns legacy plaintext into the value the owner of the key reads.
func (r Rule) upgrade(raw string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(raw)
	isArray := trimmed[0] == '['

	if r.Field != "" {
		if isArray {
			return json.Marshal(map[string]any{
				r.Field:   json.RawMessage(trimmed),
				"version": r.LegacyVersion,
			})
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
			return nil, err
		}
		items, ok := fields[r.Field]
		if !ok {
			return nil, fmt.Errorf("document has no %q field", r.Field)
		}
		if t := strings.TrimSpace(string(items)); t == "" || t[0] != '[' {
			return nil, fmt.Errorf("field %q is not an array", r.Field)
		}
		return json.RawMessage(trimmed), nil
	}

	switch {
	case r.Shape == ShapeObject && isArray:
		return nil, errors.New("array where an object is expected")
	case r.Shape == ShapeArray && !isArray:
		return nil, errors.New("object where an array is expected")
	}
	return json.RawMessage(trimmed), nil
}

type SweepReport struct {
	Migrated int
	Failed   int
	Expired  int
}

// Sweeper upgrades plaintext entries left by older versions and then drops
// expired envelopes. It runs once at startup.
type Sweeper struct {
	store   *Store
	matcher Matcher
}

func NewSweeper(store *Store, matcher Matcher) *Sweeper {
	return &Sweeper{store: store, matcher: matcher}
}

func (w *Sweeper) Sweep(ctx context.Context) SweepReport {
	var report SweepReport

	keys, err := w.store.kv.Keys(ctx)
	if err != nil {
		w.store.log.Error(ctx, "sweep: list keys failed", "error", err)
		return report
	}

	for _, key := range keys {
		rule, managed := w.matcher.rule(key)
		if !managed {
			continue
		}
		raw, ok, err := w.store.kv.Get(ctx, key)
		if err != nil || !ok || !isLegacyPlaintext(raw) {
			continue
		}

		value, err := rule.upgrade(raw)
		if err != nil {
			w.store.log.Warn(ctx, "sweep: legacy entry has an unreadable shape, left as is", "key", key, "error", err)
			report.Failed++
			continue
		}
		if err := w.store.SetSecureItem(ctx, key, value); err != nil {
			w.store.log.Error(ctx, "sweep: re-encrypt failed", "key", key, "error", err)
			report.Failed++
			continue
		}
		w.store.log.Info(ctx, "sweep: legacy entry encrypted", "key", key)
		report.Migrated++
	}

	report.Expired = w.store.CleanExpiredData(ctx)
	return report
}

// isLegacyPlaintext reports whether raw is a JSON object or array that is
// not envelope shaped. Broken envelopes are left for the read path to heal.
func isLegacyPlaintext(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') || !json.Valid([]byte(trimmed)) {
		return false
	}
	if _, ok := cryptox.ParseEnvelope(trimmed); ok {
		return false
	}
	if trimmed[0] == '{' {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &fields); err == nil {
			_, hasData := fields["data"]
			_, hasIV := fields["iv"]
			if hasData && hasIV {
				return false
			}
		}
	}
	return true
}
