package state

import (
	"time"

	"github.com/sawane/shiori/pkg/scenario"
)

// SnapshotFormat is the snapshot schema revision this build reads and
// writes. Restore rejects other values with ErrSnapshotFormat.
const SnapshotFormat = 1

// Reveal is the mid-line typewriter position, captured when a snapshot
// is taken while a line is still being revealed.
type Reveal struct {
	VisibleRunes int     `json:"visible_runes"`
	Elapsed      float64 `json:"elapsed"`
}

// Snapshot is a complete, self-contained capture of a runtime. It holds
// everything needed to resume: cursor, stores, scene stack, pending
// choice, display composition, read tracking and the truncated backlog.
// Snapshots are plain data and serialize to JSON.
type Snapshot struct {
	Format          int       `json:"format"`
	DocumentID      string    `json:"document_id"`
	DocumentVersion string    `json:"document_version,omitempty"`
	CreatedAt       time.Time `json:"created_at"`

	Status Status `json:"status"`
	Cursor Cursor `json:"cursor"`

	Flags     map[string]bool           `json:"flags,omitempty"`
	Variables map[string]scenario.Value `json:"variables,omitempty"`

	SceneStack []Frame `json:"scene_stack,omitempty"`

	Pending       *PendingChoice `json:"pending,omitempty"`
	Reveal        *Reveal        `json:"reveal,omitempty"`
	WaitRemaining float64        `json:"wait_remaining,omitempty"`

	History []HistoryEntry `json:"history,omitempty"`
	// Seen records every dialogue position the player has read, for
	// skip-read behavior. Unlike History it is not capped.
	Seen []Cursor `json:"seen,omitempty"`

	Display DisplayState `json:"display"`

	// Thumbnail is an opaque host-provided handle (usually a screenshot
	// path). The runtime stores it untouched.
	Thumbnail string `json:"thumbnail,omitempty"`
}
