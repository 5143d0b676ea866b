package dbx_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/statusboard/internal/client/repositories/kv"
	"github.com/dmitrijs2005/statusboard/internal/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStorage(t *testing.T) *sql.DB {
	t.Helper()
	db, err := kv.OpenSQLite(context.Background(), kv.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func storedKeys(t *testing.T, db *sql.DB) []string {
	t.Helper()
	keys, err := kv.NewSQLiteRepository(db).Keys(context.Background())
	require.NoError(t, err)
	return keys
}

func TestWithTx_CommitsStorageWrites(t *testing.T) {
	ctx := context.Background()
	db := openStorage(t)

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := kv.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, "action-items-data", `{"data":"a"}`); err != nil {
			return err
		}
		ok, err := repo.CompareAndSwap(ctx, "action-items-data", `{"data":"a"}`, true, `{"data":"b"}`)
		if err != nil {
			return err
		}
		require.True(t, ok)
		return nil
	})
	require.NoError(t, err)

	v, ok, err := kv.NewSQLiteRepository(db).Get(ctx, "action-items-data")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"data":"b"}`, v)
}

func TestWithTx_RollsBackStorageOnError(t *testing.T) {
	ctx := context.Background()
	db := openStorage(t)
	require.NoError(t, kv.NewSQLiteRepository(db).Set(ctx, "ui-state", "kept"))

	boom := errors.New("swap lost")
	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := kv.NewSQLiteRepository(tx)
		require.NoError(t, repo.Set(ctx, "comments_1", "x"))
		require.NoError(t, repo.Delete(ctx, "ui-state"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, []string{"ui-state"}, storedKeys(t, db))
}

func TestWithTx_RollsBackStorageOnPanic(t *testing.T) {
	ctx := context.Background()
	db := openStorage(t)

	defer func() {
		require.NotNil(t, recover(), "panic must propagate")
		assert.Empty(t, storedKeys(t, db))
	}()

	_ = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		require.NoError(t, kv.NewSQLiteRepository(tx).Set(ctx, "action-tasks-data", "x"))
		panic("kaput")
	})
}

func TestWithTx_BeginError(t *testing.T) {
	db := openStorage(t)
	require.NoError(t, db.Close())

	err := dbx.WithTx(context.Background(), db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		t.Fatal("fn must not run")
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin tx")
}

func exact(q string) string { return regexp.QuoteMeta(q) }

func TestWithTx_CascadeRollbackJoinsRollbackFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	childErr := errors.New("tasks locked")
	mock.ExpectBegin()
	mock.ExpectExec(exact("DELETE FROM tasks WHERE action_id = $1")).WithArgs(int64(3)).WillReturnError(childErr)
	mock.ExpectRollback().WillReturnError(errors.New("connection reset"))

	err = dbx.WithTx(context.Background(), db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE action_id = $1", int64(3)); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM actions WHERE id = $1", int64(3))
		return err
	})
	require.ErrorIs(t, err, childErr)
	assert.Contains(t, err.Error(), "rollback: connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_CommitFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(exact("DELETE FROM comments WHERE action_id = $1")).WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	err = dbx.WithTx(context.Background(), db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM comments WHERE action_id = $1", int64(3))
		return err
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit tx: serialization failure")
	require.NoError(t, mock.ExpectationsWereMet())
}
