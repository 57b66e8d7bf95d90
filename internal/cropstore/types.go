package cropstore

import (
	"time"

	"github.com/agrisense/agrisense/internal/crop"
)

// OpType is the kind of journaled mutation.
type OpType string

const (
	// OpAdd records a crop save.
	OpAdd OpType = "add"

	// OpDelete records a crop removal by identity key.
	OpDelete OpType = "delete"

	// OpClear records a wipe of the whole saved set.
	OpClear OpType = "clear"
)

// AddResult distinguishes a fresh save from a duplicate, so the caller
// can tell the user "already saved" instead of "saved". A duplicate is
// not an error.
type AddResult int

const (
	// Added means the crop was stored.
	Added AddResult = iota

	// Duplicate means a crop with the same identity key was already
	// stored and nothing changed.
	Duplicate
)

// String returns a human-readable form of the result.
func (r AddResult) String() string {
	if r == Duplicate {
		return "duplicate"
	}
	return "added"
}

// PendingOperation is one journaled mutation awaiting replay against
// the remote store. The journal is append-only until a sync drains it.
type PendingOperation struct {
	// ID is the journal sequence number; replay order is ID order.
	ID int64

	// IdempotencyKey uniquely identifies the operation across
	// retries.
	IdempotencyKey string

	// Type is the mutation kind.
	Type OpType

	// Crop carries the full record for OpAdd.
	Crop *crop.Crop

	// CropIdentity carries the identity key for OpAdd and OpDelete.
	CropIdentity string

	// CreatedAt is when the mutation happened locally.
	CreatedAt time.Time

	// Attempts counts failed replay attempts.
	Attempts int

	// LastError holds the most recent replay failure, if any.
	LastError string
}

// Stats summarizes the durable state for status displays.
type Stats struct {
	// SavedCount is the number of crops in the local set.
	SavedCount int64

	// PendingCount is the number of journaled operations awaiting
	// sync.
	PendingCount int64

	// OldestPending is the timestamp of the oldest unsynced
	// operation, if any.
	OldestPending *time.Time
}
