package cropstore

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/agrisense/agrisense/internal/crop"
	"github.com/agrisense/agrisense/internal/db"
)

// newTestStore creates a Store backed by a real SQLite database in a
// temporary directory.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	dbStore, err := db.Open(
		filepath.Join(t.TempDir(), "crops.db"), nil,
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		dbStore.Close()
	})

	return New(dbStore, nil)
}

func maize() crop.Crop {
	return crop.Crop{
		Name:             "Maize",
		ScientificName:   "Zea mays",
		Category:         "Cereal",
		WaterRequirement: crop.WaterModerate,
		TempMin:          18,
		TempMax:          32,
	}
}

func beans() crop.Crop {
	return crop.Crop{
		Name:             "Beans",
		Category:         "Legume",
		WaterRequirement: crop.WaterModerate,
	}
}

// TestAddAndReadAll verifies the basic save path and save ordering.
func TestAddAndReadAll(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	result, err := store.Add(ctx, maize())
	require.NoError(t, err)
	require.Equal(t, Added, result)

	result, err = store.Add(ctx, beans())
	require.NoError(t, err)
	require.Equal(t, Added, result)

	crops, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, crops, 2)
	require.Equal(t, "Maize", crops[0].Name)
	require.Equal(t, "Beans", crops[1].Name)
}

// TestAddDuplicate verifies that a duplicate save is a distinguishable
// no-op: Added then Duplicate, exactly one stored copy, exactly one
// journal entry.
func TestAddDuplicate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	result, err := store.Add(ctx, maize())
	require.NoError(t, err)
	require.Equal(t, Added, result)

	// Same identity even with different casing of the name.
	dup := maize()
	dup.Name = "MAIZE"
	result, err = store.Add(ctx, dup)
	require.NoError(t, err)
	require.Equal(t, Duplicate, result)

	crops, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, crops, 1)

	count, err := store.PendingCount(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

// TestMutationAndJournalAreAtomic verifies every mutation journals
// exactly one operation in the same transaction.
func TestMutationAndJournalAreAtomic(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, maize())
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "maize"))
	require.NoError(t, store.Clear(ctx))

	ops, err := store.PendingOps(ctx)
	require.NoError(t, err)
	require.Len(t, ops, 3)

	require.Equal(t, OpAdd, ops[0].Type)
	require.NotNil(t, ops[0].Crop)
	require.Equal(t, "Maize", ops[0].Crop.Name)
	require.Equal(t, "maize", ops[0].CropIdentity)

	require.Equal(t, OpDelete, ops[1].Type)
	require.Equal(t, "maize", ops[1].CropIdentity)

	require.Equal(t, OpClear, ops[2].Type)

	// Journal IDs are strictly increasing: replay order is append
	// order.
	require.Less(t, ops[0].ID, ops[1].ID)
	require.Less(t, ops[1].ID, ops[2].ID)
}

// TestDeleteRoundTrip verifies that save-then-delete restores the
// prior set.
func TestDeleteRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, maize())
	require.NoError(t, err)

	before, err := store.ReadAll(ctx)
	require.NoError(t, err)

	c := beans()
	_, err = store.Add(ctx, c)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, c.IdentityKey()))

	after, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

// TestReplaceAllDoesNotJournal verifies the reconciler's install path
// bypasses the journal.
func TestReplaceAllDoesNotJournal(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceAll(
		ctx, []crop.Crop{maize(), beans()},
	))

	crops, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, crops, 2)

	count, err := store.PendingCount(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
}

// TestClearPendingThrough verifies that only drained entries are
// removed, preserving anything appended mid-sync.
func TestClearPendingThrough(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, maize())
	require.NoError(t, err)

	ops, err := store.PendingOps(ctx)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	drainedThrough := ops[0].ID

	// A mutation lands after the drain.
	_, err = store.Add(ctx, beans())
	require.NoError(t, err)

	require.NoError(t, store.ClearPendingThrough(ctx, drainedThrough))

	remaining, err := store.PendingOps(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	require.Equal(t, "beans", remaining[0].CropIdentity)
}

// TestLastSyncAt verifies the sync timestamp round trip.
func TestLastSyncAt(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	got, err := store.LastSyncAt(ctx)
	require.NoError(t, err)
	require.True(t, got.IsNone())

	now := time.Now().Truncate(time.Second)
	require.NoError(t, store.SetLastSyncAt(ctx, now))

	got, err = store.LastSyncAt(ctx)
	require.NoError(t, err)
	require.True(t, got.IsSome())
	require.Equal(t, now.Unix(), got.UnwrapOr(time.Time{}).Unix())
}

// TestMarkSyncFailed verifies attempt accounting on the journal.
func TestMarkSyncFailed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, maize())
	require.NoError(t, err)

	require.NoError(t, store.MarkSyncFailed(ctx, "remote 503"))
	require.NoError(t, store.MarkSyncFailed(ctx, "remote 503"))

	ops, err := store.PendingOps(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, ops[0].Attempts)
	require.Equal(t, "remote 503", ops[0].LastError)
}

// TestStats verifies the aggregate view.
func TestStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, maize())
	require.NoError(t, err)
	_, err = store.Add(ctx, beans())
	require.NoError(t, err)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, stats.SavedCount)
	require.EqualValues(t, 2, stats.PendingCount)
	require.NotNil(t, stats.OldestPending)
}

// TestStoreMatchesModel runs random mutation sequences against both
// the SQLite store and an in-memory model, and checks they agree.
func TestStoreMatchesModel(outer *testing.T) {
	catalogue := crop.ReferenceCrops()
	baseDir := outer.TempDir()

	var run int
	rapid.Check(outer, func(t *rapid.T) {
		run++
		dbStore, err := db.Open(filepath.Join(
			baseDir, fmt.Sprintf("model-%d.db", run),
		), nil)
		if err != nil {
			t.Fatal(err)
		}
		defer dbStore.Close()

		store := New(dbStore, nil)
		ctx := context.Background()

		model := make(map[string]crop.Crop)

		steps := rapid.IntRange(1, 20).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			c := catalogue[rapid.IntRange(
				0, len(catalogue)-1,
			).Draw(t, "crop")]
			key := c.IdentityKey()

			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0: // add
				result, err := store.Add(ctx, c)
				if err != nil {
					t.Fatal(err)
				}

				_, exists := model[key]
				if exists != (result == Duplicate) {
					t.Fatalf("duplicate mismatch "+
						"for %s", key)
				}
				model[key] = c

			case 1: // delete
				if err := store.Delete(ctx, key); err != nil {
					t.Fatal(err)
				}
				delete(model, key)

			case 2: // clear
				if err := store.Clear(ctx); err != nil {
					t.Fatal(err)
				}
				model = make(map[string]crop.Crop)
			}
		}

		got, err := store.ReadAll(ctx)
		if err != nil {
			t.Fatal(err)
		}

		if len(got) != len(model) {
			t.Fatalf("got %d crops, want %d", len(got), len(model))
		}
		for _, c := range got {
			if _, ok := model[c.IdentityKey()]; !ok {
				t.Fatalf("unexpected crop %s", c.IdentityKey())
			}
		}
	})
}
