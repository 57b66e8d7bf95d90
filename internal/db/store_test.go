package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestStore opens a migrated store on a temp-dir database.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

// TestOpenAppliesMigrations verifies that Open bootstraps the schema.
func TestOpenAppliesMigrations(t *testing.T) {
	store := newTestStore(t)

	for _, table := range []string{
		"saved_crops", "pending_operations", "sync_meta",
	} {
		var name string
		err := store.DB().QueryRow(
			`SELECT name FROM sqlite_master
			 WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		require.NoError(t, err, "missing table %s", table)
	}
}

// TestOpenIsIdempotent verifies that reopening an existing database
// does not re-run migrations destructively.
func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(path, nil)
	require.NoError(t, err)

	_, err = store.DB().Exec(
		`INSERT INTO sync_meta (k, v) VALUES ('probe', '1')`,
	)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(path, nil)
	require.NoError(t, err)
	defer store.Close()

	var v string
	err = store.DB().QueryRow(
		`SELECT v FROM sync_meta WHERE k = 'probe'`,
	).Scan(&v)
	require.NoError(t, err)
	require.Equal(t, "1", v)
}

// TestWithTxCommit verifies that a successful callback commits.
func TestWithTxCommit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO sync_meta (k, v) VALUES ('a', '1')`)
		return err
	})
	require.NoError(t, err)

	var v string
	err = store.DB().QueryRow(
		`SELECT v FROM sync_meta WHERE k = 'a'`).Scan(&v)
	require.NoError(t, err)
	require.Equal(t, "1", v)
}

// TestWithTxRollback verifies that a failing callback rolls every
// statement back.
func TestWithTxRollback(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, execErr := tx.ExecContext(ctx,
			`INSERT INTO sync_meta (k, v) VALUES ('a', '1')`)
		require.NoError(t, execErr)
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int
	err = store.DB().QueryRow(
		`SELECT COUNT(*) FROM sync_meta`).Scan(&count)
	require.NoError(t, err)
	require.Zero(t, count)
}

// TestUniqueConstraintMapping verifies that duplicate keys map to the
// typed unique-constraint error.
func TestUniqueConstraintMapping(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	insert := func() error {
		return store.WithTx(ctx, func(
			ctx context.Context, tx *sql.Tx,
		) error {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO saved_crops
				 (identity_key, crop_json, saved_at)
				 VALUES ('maize', '{}', 0)`)
			return err
		})
	}

	require.NoError(t, insert())

	err := insert()
	require.Error(t, err)
	require.True(t, IsUniqueConstraintError(err),
		"want unique constraint error, got %v", err)
}
