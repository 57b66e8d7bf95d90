package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Store wraps a SQLite connection with transaction support. All
// multi-statement read-modify-write sequences in the engine go through
// WithTx so that a mutation and its journal entry can never diverge.
type Store struct {
	db *sql.DB
}

// NewStore creates a new Store wrapping the given database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying database connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// TxFunc is the function signature for transaction callbacks.
type TxFunc func(ctx context.Context, tx *sql.Tx) error

// WithTx executes the given function within a database transaction. If
// the function returns an error the transaction is rolled back,
// otherwise it is committed.
func (s *Store) WithTx(ctx context.Context, fn TxFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w",
			MapSQLError(err))
	}

	if err := fn(ctx, tx); err != nil {
		// Attempt rollback, but prioritize returning the
		// original error.
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %w, rollback error: %v",
				MapSQLError(err), rbErr)
		}

		return MapSQLError(err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w",
			MapSQLError(err))
	}

	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
