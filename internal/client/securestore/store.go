// Package securestore keeps encrypted JSON values in the local key-value
// storage. Reads never fail loudly: a missing, expired or corrupt entry is a
// miss, and a corrupt entry is removed so it cannot fail again. Writes
// propagate their errors to the caller.
package securestore

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/statusboard/internal/client/repositories/kv"
	"github.com/dmitrijs2005/statusboard/internal/common"
	"github.com/dmitrijs2005/statusboard/internal/cryptox"
	"github.com/dmitrijs2005/statusboard/internal/logging"
)

type Store struct {
	kv     kv.Repository
	cipher *cryptox.Cipher
	log    logging.Logger
}

func New(repo kv.Repository, cipher *cryptox.Cipher, log logging.Logger) *Store {
	return &Store{kv: repo, cipher: cipher, log: log.With("module", "securestore")}
}

// Token is the revision of a stored value as seen by a read. It is the raw
// envelope text, which changes on every write because of the fresh IV.
type Token struct {
	raw     string
	present bool
}

// Present reports whether a value existed when the token was taken.
func (t Token) Present() bool { return t.present }

// SetSecureItem encrypts v and stores it under key.
func (s *Store) SetSecureItem(ctx context.Context, key string, v any) error {
	enc, err := s.cipher.Encrypt(v)
	if err != nil {
		return fmt.Errorf("encrypt %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, enc); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

// GetSecureItem decrypts the value under key into v. It reports false for a
// missing, empty, expired or undecryptable entry; the last two are removed.
func (s *Store) GetSecureItem(ctx context.Context, key string, v any) bool {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.log.Error(ctx, "read failed", "key", key, "error", err)
		return false
	}
	return s.open(ctx, key, raw, ok, v)
}

func (s *Store) open(ctx context.Context, key, raw string, ok bool, v any) bool {
	if !ok || raw == "" {
		return false
	}
	if s.cipher.Decrypt(raw, v) {
		return true
	}

	s.log.Warn(ctx, "dropping unreadable entry", "key", key)
	s.RemoveSecureItem(ctx, key)
	return false
}

// GetSecureItemToken reads like GetSecureItem and also returns the revision
// token to pass to SwapSecureItem. Unlike GetSecureItem it reports storage
// errors, since the caller is about to write.
func (s *Store) GetSecureItemToken(ctx context.Context, key string, v any) (Token, bool, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return Token{}, false, fmt.Errorf("read %s: %w", key, err)
	}
	if s.open(ctx, key, raw, ok, v) {
		return Token{raw: raw, present: true}, true, nil
	}

	// the entry may have been healed away; take a fresh token
	raw, ok, err = s.kv.Get(ctx, key)
	if err != nil {
		return Token{}, false, fmt.Errorf("read %s: %w", key, err)
	}
	return Token{raw: raw, present: ok}, false, nil
}

// SwapSecureItem stores v under key only if the entry is still at the
// revision described by tok. Otherwise it returns common.ErrVersionConflict.
func (s *Store) SwapSecureItem(ctx context.Context, key string, tok Token, v any) error {
	enc, err := s.cipher.Encrypt(v)
	if err != nil {
		return fmt.Errorf("encrypt %s: %w", key, err)
	}

	swapped, err := s.kv.CompareAndSwap(ctx, key, tok.raw, tok.present, enc)
	if err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	if !swapped {
		return fmt.Errorf("store %s: %w", key, common.ErrVersionConflict)
	}
	return nil
}

// RemoveSecureItem deletes key. Failures are logged, never returned.
func (s *Store) RemoveSecureItem(ctx context.Context, key string) {
	if err := s.kv.Delete(ctx, key); err != nil {
		s.log.Error(ctx, "remove failed", "key", key, "error", err)
	}
}

// CleanExpiredData removes every entry that parses as an envelope with a
// numeric timestamp older than the retention window, and returns how many
// were removed. Any other value is left alone.
func (s *Store) CleanExpiredData(ctx context.Context) int {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		s.log.Error(ctx, "list keys failed", "error", err)
		return 0
	}

	now := s.cipher.Now.Or()()
	retention := s.cipher.Retention
	if retention <= 0 {
		retention = cryptox.DefaultRetention
	}

	removed := 0
	for _, key := range keys {
		raw, ok, err := s.kv.Get(ctx, key)
		if err != nil || !ok {
			continue
		}
		env, ok := cryptox.ParseEnvelope(raw)
		if !ok || !env.Expired(now, retention) {
			continue
		}
		if err := s.kv.Delete(ctx, key); err != nil {
			s.log.Error(ctx, "remove expired failed", "key", key, "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		s.log.Info(ctx, "expired entries removed", "count", removed)
	}
	return removed
}
