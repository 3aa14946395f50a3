package state

import "errors"

// ErrSnapshotNotFound is returned when a save slot does not exist.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrDocumentMismatch is returned when a snapshot was taken against a
// different document ID or version than the one loaded.
var ErrDocumentMismatch = errors.New("snapshot does not match loaded document")

// ErrSnapshotFormat is returned when a snapshot's format marker is not
// one this build can read.
var ErrSnapshotFormat = errors.New("unsupported snapshot format")

// ErrNotStarted is returned when the runtime is asked to advance before
// it has been started.
var ErrNotStarted = errors.New("runtime not started")

// ErrNoPendingChoice is returned when a choice is selected while no
// choice is being presented.
var ErrNoPendingChoice = errors.New("no pending choice")

// ErrChoiceIndex is returned when a selected choice index is not among
// the visible options. The runtime state is unchanged.
var ErrChoiceIndex = errors.New("choice index out of range")
