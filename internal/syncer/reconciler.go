// Package syncer reconciles the durable local crop set with the remote
// store. It is offline-first: being unreachable is the expected steady
// state, not an error, and local reads and writes never wait on it.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/agrisense/agrisense/internal/crop"
	"github.com/agrisense/agrisense/internal/cropstore"
)

// DefaultStalenessThreshold is how old the last successful sync may be
// before an opportunistic sync is attempted. Policy, so configurable.
const DefaultStalenessThreshold = 5 * time.Minute

// SkipReason explains why a sync pass did nothing.
type SkipReason string

const (
	// SkipNone means the sync ran.
	SkipNone SkipReason = ""

	// SkipOffline means the connectivity probe reported no
	// reachability.
	SkipOffline SkipReason = "offline"

	// SkipFresh means the last sync is recent enough that nothing
	// needed doing.
	SkipFresh SkipReason = "fresh"
)

// RemoteSyncError wraps a remote store failure. It is non-fatal: the
// journal stays intact and the next sync attempt retries it.
type RemoteSyncError struct {
	Err error
}

// Error returns the error message.
func (e *RemoteSyncError) Error() string {
	return fmt.Sprintf("remote sync failed: %v", e.Err)
}

// Unwrap returns the wrapped error.
func (e *RemoteSyncError) Unwrap() error {
	return e.Err
}

// Result reports what a sync pass did.
type Result struct {
	// Skipped is non-empty when the pass was a no-op.
	Skipped SkipReason

	// Merged is the size of the reconciled set written to both
	// tiers.
	Merged int

	// Replayed is the number of journal operations applied.
	Replayed int
}

// Config holds reconciler tunables.
type Config struct {
	// StalenessThreshold gates opportunistic syncs: a non-forced
	// sync is skipped while the last success is younger than this.
	StalenessThreshold time.Duration

	// Merge resolves local/remote divergence. Defaults to
	// LocalWins.
	Merge MergeStrategy
}

// DefaultConfig returns a Config with the default staleness threshold
// and the LocalWins merge strategy.
func DefaultConfig() Config {
	return Config{
		StalenessThreshold: DefaultStalenessThreshold,
		Merge:              LocalWins,
	}
}

// Reconciler merges local and remote saved crop sets and replays the
// pending operation journal. Sync passes are serialized: the journal's
// global ordering is the one place where concurrency is not allowed.
type Reconciler struct {
	cfg    Config
	store  *cropstore.Store
	remote RemoteStore
	probe  Probe
	log    *slog.Logger

	mu sync.Mutex
}

// NewReconciler creates a Reconciler.
func NewReconciler(
	cfg Config, store *cropstore.Store, remote RemoteStore,
	probe Probe, log *slog.Logger,
) *Reconciler {

	if log == nil {
		log = slog.Default()
	}
	if cfg.Merge == nil {
		cfg.Merge = LocalWins
	}
	if cfg.StalenessThreshold <= 0 {
		cfg.StalenessThreshold = DefaultStalenessThreshold
	}

	return &Reconciler{
		cfg:    cfg,
		store:  store,
		remote: remote,
		probe:  probe,
		log:    log.With("component", "syncer"),
	}
}

// Sync runs one reconciliation pass. When force is false the pass is
// skipped if the last successful sync is fresher than the staleness
// threshold. Offline is a clean skip, never an error.
//
// On remote-write failure the journal is left intact for the next
// attempt and a *RemoteSyncError is returned; local state is already
// merged and remains fully usable.
func (r *Reconciler) Sync(ctx context.Context, force bool) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.probe.Online(ctx) {
		r.log.Debug("Sync skipped, offline")
		return Result{Skipped: SkipOffline}, nil
	}

	if !force {
		lastSync, err := r.store.LastSyncAt(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("read last sync: %w", err)
		}

		fresh := time.Since(
			lastSync.UnwrapOr(time.Time{}),
		) < r.cfg.StalenessThreshold

		if lastSync.IsSome() && fresh {
			r.log.Debug("Sync skipped, still fresh")
			return Result{Skipped: SkipFresh}, nil
		}
	}

	remoteCrops, err := r.remote.Fetch(ctx)
	if err != nil {
		return Result{}, &RemoteSyncError{
			Err: fmt.Errorf("fetch: %w", err),
		}
	}

	localCrops, err := r.store.ReadAll(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("read local crops: %w", err)
	}

	ops, err := r.store.PendingOps(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("read pending operations: %w",
			err)
	}

	merged := r.cfg.Merge(localCrops, remoteCrops)
	merged = Replay(merged, ops)

	// Install the reconciled set locally first: local remains
	// authoritative for reads no matter what the remote does next.
	if err := r.store.ReplaceAll(ctx, merged); err != nil {
		return Result{}, fmt.Errorf("write merged set locally: %w",
			err)
	}

	if err := r.remote.Replace(ctx, merged); err != nil {
		// Keep the journal for the next attempt and record the
		// failure so status displays can see it.
		if markErr := r.store.MarkSyncFailed(
			ctx, err.Error(),
		); markErr != nil {
			r.log.Warn("Failed to record sync failure",
				"error", markErr)
		}

		r.log.Warn("Remote write failed, journal retained",
			"pending_ops", len(ops), "error", err)

		return Result{}, &RemoteSyncError{
			Err: fmt.Errorf("replace: %w", err),
		}
	}

	// Only a remote ack clears the journal, and only the entries
	// that were actually replayed: anything appended mid-sync keeps
	// its place.
	if len(ops) > 0 {
		maxID := ops[len(ops)-1].ID
		if err := r.store.ClearPendingThrough(ctx, maxID); err != nil {
			return Result{}, fmt.Errorf("clear journal: %w", err)
		}
	}

	if err := r.store.SetLastSyncAt(ctx, time.Now()); err != nil {
		return Result{}, fmt.Errorf("record sync time: %w", err)
	}

	r.log.Info("Sync complete",
		"merged", len(merged), "replayed", len(ops))

	return Result{Merged: len(merged), Replayed: len(ops)}, nil
}

// SyncIfStale runs a non-forced sync. It exists for callers wired to
// foreground/resume signals that just want "sync if it has been a
// while".
func (r *Reconciler) SyncIfStale(ctx context.Context) (Result, error) {
	return r.Sync(ctx, false)
}

// Replay applies journal operations to a crop set in append order and
// returns the resulting set. An OpClear empties the set and
// short-circuits everything journaled before it, so only operations
// after the last clear matter.
func Replay(
	set []crop.Crop, ops []cropstore.PendingOperation,
) []crop.Crop {

	// Find the last clear; operations before it are dead.
	start := 0
	for i, op := range ops {
		if op.Type == cropstore.OpClear {
			set = nil
			start = i + 1
		}
	}

	merged := make([]crop.Crop, 0, len(set)+len(ops))
	index := make(map[string]int, len(set))
	for _, c := range set {
		index[c.IdentityKey()] = len(merged)
		merged = append(merged, c)
	}

	deleted := make(map[string]bool)

	for _, op := range ops[start:] {
		switch op.Type {
		case cropstore.OpAdd:
			if op.Crop == nil {
				continue
			}
			key := op.Crop.IdentityKey()
			delete(deleted, key)
			if i, ok := index[key]; ok {
				merged[i] = *op.Crop
				continue
			}
			index[key] = len(merged)
			merged = append(merged, *op.Crop)

		case cropstore.OpDelete:
			deleted[op.CropIdentity] = true
		}
	}

	if len(deleted) == 0 {
		return merged
	}

	result := make([]crop.Crop, 0, len(merged))
	for _, c := range merged {
		if deleted[c.IdentityKey()] {
			continue
		}
		result = append(result, c)
	}

	return result
}
