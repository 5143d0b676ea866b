package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/statusboard/internal/dbx"
	"github.com/dmitrijs2005/statusboard/internal/timex"
)

type SQLiteRepository struct {
	db  dbx.DBTX
	now timex.Clock
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: timex.SystemClock}
}

func (r *SQLiteRepository) stamp() int64 {
	return timex.EpochMillis(r.now.Or()())
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM storage WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get storage[%s]: %w", key, err)
	}
	return value, true, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO storage (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, r.stamp())
	if err != nil {
		return fmt.Errorf("failed to set storage[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM storage WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete storage[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM storage`)
	if err != nil {
		return fmt.Errorf("failed to clear storage: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Keys(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key FROM storage ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list storage keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan storage key: %w", err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate storage keys: %w", err)
	}
	return keys, nil
}

func (r *SQLiteRepository) CompareAndSwap(ctx context.Context, key, old string, hadOld bool, value string) (bool, error) {
	var (
		res sql.Result
		err error
	)
	if hadOld {
		res, err = r.db.ExecContext(ctx,
			`UPDATE storage SET value = ?, updated_at = ? WHERE key = ? AND value = ?`,
			value, r.stamp(), key, old)
	} else {
		res, err = r.db.ExecContext(ctx,
			`INSERT INTO storage (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO NOTHING`,
			key, value, r.stamp())
	}
	if err != nil {
		return false, fmt.Errorf("failed to swap storage[%s]: %w", key, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to swap storage[%s]: %w", key, err)
	}
	return n == 1, nil
}
