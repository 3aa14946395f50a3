package ports

import (
	"context"

	"github.com/sawane/shiori/pkg/state"
)

// SnapshotStore defines the interface for persisting runtime snapshots
// under named save slots. This allows play state to survive process
// restarts and to move between store backends.
type SnapshotStore interface {
	// Save persists the snapshot for a slot, replacing any previous one.
	Save(ctx context.Context, slot string, snap *state.Snapshot) error

	// Load retrieves the snapshot for a slot.
	// Returns state.ErrSnapshotNotFound if the slot does not exist.
	Load(ctx context.Context, slot string) (*state.Snapshot, error)

	// Delete removes the snapshot for a slot. Deleting a missing slot
	// is not an error.
	Delete(ctx context.Context, slot string) error

	// List returns all slots that currently hold a snapshot.
	List(ctx context.Context) ([]string, error)
}
