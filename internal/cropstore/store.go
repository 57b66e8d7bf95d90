// Package cropstore persists the user's saved crop set and the pending
// operation journal in one SQLite database. Every mutation and its
// journal entry commit in a single transaction, so the two can never
// diverge: if the save fails the journal row is rolled back with it,
// and vice versa.
package cropstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/lightningnetwork/lnd/fn/v2"

	"github.com/agrisense/agrisense/internal/crop"
	"github.com/agrisense/agrisense/internal/db"
)

// lastSyncKey is the sync_meta key holding the last successful sync
// time as a unix timestamp.
const lastSyncKey = "last_sync_at"

// Store provides durable access to the saved crop set and the pending
// operation journal.
type Store struct {
	db  *db.Store
	log *slog.Logger
}

// New creates a Store over an already-migrated database.
func New(dbStore *db.Store, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}

	return &Store{
		db:  dbStore,
		log: log.With("component", "cropstore"),
	}
}

// Add saves a crop and journals an OpAdd in the same transaction. A
// crop whose identity key is already present is reported as Duplicate
// and nothing is written, journal included.
func (s *Store) Add(ctx context.Context, c crop.Crop) (AddResult, error) {
	cropJSON, err := json.Marshal(c)
	if err != nil {
		return Added, fmt.Errorf("marshal crop: %w", err)
	}

	identity := c.IdentityKey()
	result := Added

	err = s.db.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM saved_crops
			 WHERE identity_key = ?`, identity,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check duplicate: %w", err)
		}

		if exists > 0 {
			result = Duplicate
			return nil
		}

		now := time.Now()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO saved_crops
			 (identity_key, crop_json, saved_at)
			 VALUES (?, ?, ?)`,
			identity, string(cropJSON), now.Unix(),
		)
		if err != nil {
			return fmt.Errorf("insert crop: %w", err)
		}

		return appendOp(ctx, tx, PendingOperation{
			Type:         OpAdd,
			Crop:         &c,
			CropIdentity: identity,
			CreatedAt:    now,
		}, string(cropJSON))
	})
	if err != nil {
		return Added, err
	}

	return result, nil
}

// Delete removes a crop by identity key and journals an OpDelete. The
// delete is journaled even when the crop is not present locally: the
// remote copy may still hold it, and the journal is what carries the
// user's intent there.
func (s *Store) Delete(ctx context.Context, identity string) error {
	return s.db.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM saved_crops WHERE identity_key = ?`,
			identity,
		)
		if err != nil {
			return fmt.Errorf("delete crop: %w", err)
		}

		return appendOp(ctx, tx, PendingOperation{
			Type:         OpDelete,
			CropIdentity: identity,
			CreatedAt:    time.Now(),
		}, "")
	})
}

// Clear wipes the saved set and journals an OpClear. Earlier journal
// entries are kept; replay short-circuits them when it meets the clear.
func (s *Store) Clear(ctx context.Context) error {
	return s.db.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(
			ctx, `DELETE FROM saved_crops`,
		); err != nil {
			return fmt.Errorf("clear crops: %w", err)
		}

		return appendOp(ctx, tx, PendingOperation{
			Type:      OpClear,
			CreatedAt: time.Now(),
		}, "")
	})
}

// appendOp inserts a journal row inside the caller's transaction.
func appendOp(
	ctx context.Context, tx *sql.Tx, op PendingOperation,
	cropJSON string,
) error {

	_, err := tx.ExecContext(ctx,
		`INSERT INTO pending_operations
		 (idempotency_key, op_type, crop_identity, crop_json,
		  created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		uuid.Must(uuid.NewV7()).String(), string(op.Type),
		op.CropIdentity, cropJSON, op.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("append pending operation: %w", err)
	}

	return nil
}

// ReadAll returns the saved crop set in save order.
func (s *Store) ReadAll(ctx context.Context) ([]crop.Crop, error) {
	rows, err := s.db.DB().QueryContext(ctx,
		`SELECT crop_json FROM saved_crops
		 ORDER BY saved_at, rowid`,
	)
	if err != nil {
		return nil, fmt.Errorf("read saved crops: %w", err)
	}
	defer rows.Close()

	var crops []crop.Crop
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan saved crop: %w", err)
		}

		var c crop.Crop
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, fmt.Errorf("decode saved crop: %w", err)
		}

		crops = append(crops, c)
	}

	return crops, rows.Err()
}

// ReplaceAll overwrites the saved set with the given crops without
// journaling. The reconciler uses this to install a merged set; user
// mutations go through Add/Delete/Clear instead.
func (s *Store) ReplaceAll(ctx context.Context, crops []crop.Crop) error {
	return s.db.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(
			ctx, `DELETE FROM saved_crops`,
		); err != nil {
			return fmt.Errorf("clear crops: %w", err)
		}

		now := time.Now().Unix()
		for _, c := range crops {
			cropJSON, err := json.Marshal(c)
			if err != nil {
				return fmt.Errorf("marshal crop: %w", err)
			}

			_, err = tx.ExecContext(ctx,
				`INSERT INTO saved_crops
				 (identity_key, crop_json, saved_at)
				 VALUES (?, ?, ?)`,
				c.IdentityKey(), string(cropJSON), now,
			)
			if err != nil {
				return fmt.Errorf("insert crop: %w", err)
			}
		}

		return nil
	})
}

// PendingOps returns the journal in append order.
func (s *Store) PendingOps(ctx context.Context) ([]PendingOperation, error) {
	rows, err := s.db.DB().QueryContext(ctx,
		`SELECT id, idempotency_key, op_type, crop_identity,
		        crop_json, created_at, attempts,
		        COALESCE(last_error, '')
		 FROM pending_operations ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("read pending operations: %w", err)
	}
	defer rows.Close()

	var ops []PendingOperation
	for rows.Next() {
		var (
			op        PendingOperation
			opType    string
			cropJSON  string
			createdAt int64
		)

		err := rows.Scan(
			&op.ID, &op.IdempotencyKey, &opType,
			&op.CropIdentity, &cropJSON, &createdAt,
			&op.Attempts, &op.LastError,
		)
		if err != nil {
			return nil, fmt.Errorf("scan pending operation: %w",
				err)
		}

		op.Type = OpType(opType)
		op.CreatedAt = time.Unix(createdAt, 0)

		if cropJSON != "" {
			var c crop.Crop
			if err := json.Unmarshal(
				[]byte(cropJSON), &c,
			); err != nil {
				return nil, fmt.Errorf("decode pending "+
					"crop: %w", err)
			}
			op.Crop = &c
		}

		ops = append(ops, op)
	}

	return ops, rows.Err()
}

// ClearPendingThrough removes journal entries up to and including
// maxID. Operations appended after a drain keep their place for the
// next sync.
func (s *Store) ClearPendingThrough(ctx context.Context, maxID int64) error {
	return s.db.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM pending_operations WHERE id <= ?`,
			maxID,
		)
		if err != nil {
			return fmt.Errorf("clear pending operations: %w", err)
		}
		return nil
	})
}

// PendingCount returns the number of journaled operations.
func (s *Store) PendingCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pending_operations`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending operations: %w", err)
	}

	return count, nil
}

// MarkSyncFailed records a failed replay attempt on every pending
// operation so status displays can show how stuck the journal is.
func (s *Store) MarkSyncFailed(ctx context.Context, errMsg string) error {
	return s.db.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE pending_operations
			 SET attempts = attempts + 1, last_error = ?`,
			errMsg,
		)
		if err != nil {
			return fmt.Errorf("mark sync failed: %w", err)
		}
		return nil
	})
}

// LastSyncAt returns the time of the last successful sync, or None if
// no sync has ever completed.
func (s *Store) LastSyncAt(ctx context.Context) (fn.Option[time.Time], error) {
	var raw string
	err := s.db.DB().QueryRowContext(ctx,
		`SELECT v FROM sync_meta WHERE k = ?`, lastSyncKey,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return fn.None[time.Time](), nil
	}
	if err != nil {
		return fn.None[time.Time](), fmt.Errorf("read last sync: %w",
			err)
	}

	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fn.None[time.Time](), fmt.Errorf("parse last sync: %w",
			err)
	}

	return fn.Some(time.Unix(unix, 0)), nil
}

// SetLastSyncAt records the time of a successful sync.
func (s *Store) SetLastSyncAt(ctx context.Context, t time.Time) error {
	return s.db.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO sync_meta (k, v) VALUES (?, ?)
			 ON CONFLICT(k) DO UPDATE SET v = excluded.v`,
			lastSyncKey, strconv.FormatInt(t.Unix(), 10),
		)
		if err != nil {
			return fmt.Errorf("set last sync: %w", err)
		}
		return nil
	})
}

// Stats returns aggregate counts for status displays.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats

	err := s.db.DB().QueryRowContext(ctx,
		`SELECT
		    (SELECT COUNT(*) FROM saved_crops),
		    (SELECT COUNT(*) FROM pending_operations)`,
	).Scan(&stats.SavedCount, &stats.PendingCount)
	if err != nil {
		return stats, fmt.Errorf("read stats: %w", err)
	}

	var oldest sql.NullInt64
	err = s.db.DB().QueryRowContext(ctx,
		`SELECT MIN(created_at) FROM pending_operations`,
	).Scan(&oldest)
	if err != nil {
		return stats, fmt.Errorf("read oldest pending: %w", err)
	}
	if oldest.Valid {
		t := time.Unix(oldest.Int64, 0)
		stats.OldestPending = &t
	}

	return stats, nil
}
