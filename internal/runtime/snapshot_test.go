package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawane/shiori/pkg/scenario"
	"github.com/sawane/shiori/pkg/state"
)

func TestSnapshotRoundTrip(t *testing.T) {
	r := newStarted(t, testDoc())
	advanceTo(t, r, state.StatusAwaitingChoice)

	snap := r.Snapshot("thumb.png")
	assert.Equal(t, state.SnapshotFormat, snap.Format)
	assert.Equal(t, "test-story", snap.DocumentID)
	assert.Equal(t, state.StatusAwaitingChoice, snap.Status)
	assert.Equal(t, "thumb.png", snap.Thumbnail)
	assert.True(t, snap.Flags["met_alice"])
	assert.Equal(t, "bg/room.png", snap.Display.Background)
	require.NotNil(t, snap.Pending)
	require.Len(t, snap.Pending.Options, 2)
	assert.False(t, snap.CreatedAt.IsZero())

	// Restore into a fresh runtime and continue playing.
	r2, err := New(testDoc(), WithTextSpeed(0))
	require.NoError(t, err)
	ev, err := r2.Restore(snap)
	require.NoError(t, err)

	assert.Equal(t, state.StatusAwaitingChoice, ev.Status)
	require.NotNil(t, ev.Choice)
	require.Len(t, ev.Choice.Options, 2)
	// Display is rebuilt through effects for the host.
	require.Len(t, ev.Effects, 1)
	assert.Equal(t, state.EffectShowBackground, ev.Effects[0].Kind)
	assert.Equal(t, "bg/room.png", ev.Effects[0].Asset)

	ev, err = r2.SelectChoice(2)
	require.NoError(t, err)
	assert.Equal(t, "stay", ev.Cursor.Scene)
	assert.True(t, r2.Flag("stayed"))
}

func TestSnapshotIsIndependentOfRuntime(t *testing.T) {
	r := newStarted(t, testDoc())
	advanceTo(t, r, state.StatusAwaitingChoice)

	snap := r.Snapshot("")
	_, err := r.SelectChoice(0)
	require.NoError(t, err)
	advanceTo(t, r, state.StatusEnded)

	// Playing on after the capture must not change the snapshot.
	assert.Equal(t, state.StatusAwaitingChoice, snap.Status)
	assert.False(t, snap.Flags["stayed"])
}

func TestRestoreRejectsDocumentMismatch(t *testing.T) {
	r := newStarted(t, testDoc())
	advanceTo(t, r, state.StatusAwaitingChoice)
	snap := r.Snapshot("")

	other := testDoc()
	other.ID = "other-story"
	r2, err := New(other, WithTextSpeed(0))
	require.NoError(t, err)
	require.NoError(t, r2.Start())

	_, err = r2.Restore(snap)
	assert.ErrorIs(t, err, state.ErrDocumentMismatch)
	// The failed restore left the target untouched.
	assert.Equal(t, state.StatusRunning, r2.Status())

	versioned := testDoc()
	versioned.Version = "2"
	r3, err := New(versioned)
	require.NoError(t, err)
	_, err = r3.Restore(snap)
	assert.ErrorIs(t, err, state.ErrDocumentMismatch)
}

func TestRestoreRejectsUnknownFormat(t *testing.T) {
	r := newStarted(t, testDoc())
	snap := r.Snapshot("")
	snap.Format = 99

	_, err := r.Restore(snap)
	assert.ErrorIs(t, err, state.ErrSnapshotFormat)
}

func TestRestoreRejectsUnknownScene(t *testing.T) {
	r := newStarted(t, testDoc())
	ev, err := r.Advance(0.016, false)
	require.NoError(t, err)
	require.Equal(t, state.StatusAwaitingAdvance, ev.Status)

	snap := r.Snapshot("")
	snap.Cursor.Scene = "deleted"

	_, err = r.Restore(snap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deleted")
	// The runtime keeps playing from where it was.
	assert.Equal(t, state.StatusAwaitingAdvance, r.Status())
}

func TestRestoreRejectsCursorPastScene(t *testing.T) {
	r := newStarted(t, testDoc())
	r.Advance(0.016, false)

	snap := r.Snapshot("")
	snap.Cursor.Index = 999

	_, err := r.Restore(snap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestRestoreMidReveal(t *testing.T) {
	doc := &scenario.Document{
		ID:    "typing",
		Entry: "s",
		Scenes: map[string]*scenario.Scene{
			"s": {ID: "s", Commands: []scenario.Command{
				scenario.Dialogue{Text: "Hello there"},
				scenario.End{},
			}},
		},
	}
	r, err := New(doc, WithTextSpeed(10))
	require.NoError(t, err)
	require.NoError(t, r.Start())

	_, err = r.Advance(0.016, false)
	require.NoError(t, err)
	ev, err := r.Advance(0.3, false)
	require.NoError(t, err)
	require.Equal(t, "Hel", ev.Line.Visible)

	snap := r.Snapshot("")
	require.NotNil(t, snap.Reveal)
	assert.Equal(t, 3, snap.Reveal.VisibleRunes)

	r2, err := New(doc, WithTextSpeed(10))
	require.NoError(t, err)
	ev, err = r2.Restore(snap)
	require.NoError(t, err)
	require.NotNil(t, ev.Line)
	assert.Equal(t, "Hel", ev.Line.Visible)
	assert.False(t, ev.Line.Complete)

	// The reveal resumes from where it left off.
	ev, err = r2.Advance(0.2, false)
	require.NoError(t, err)
	assert.Equal(t, "Hello", ev.Line.Visible)
}

func TestRestoreAwaitingAdvanceCompletesLine(t *testing.T) {
	r := newStarted(t, testDoc())
	ev, err := r.Advance(0.016, false)
	require.NoError(t, err)
	require.Equal(t, state.StatusAwaitingAdvance, ev.Status)

	snap := r.Snapshot("")

	r2, err := New(testDoc(), WithTextSpeed(0))
	require.NoError(t, err)
	ev, err = r2.Restore(snap)
	require.NoError(t, err)
	assert.Equal(t, state.StatusAwaitingAdvance, ev.Status)
	require.NotNil(t, ev.Line)
	assert.Equal(t, "Hello.", ev.Line.Visible)
	assert.True(t, ev.Line.Complete)
}

func TestRestorePreservesCallStackAndHistory(t *testing.T) {
	doc := &scenario.Document{
		ID:    "subroutine",
		Entry: "main",
		Scenes: map[string]*scenario.Scene{
			"main": {ID: "main", Commands: []scenario.Command{
				scenario.Call{Scene: "sub"},
				scenario.Dialogue{Text: "Back."},
				scenario.End{},
			}},
			"sub": {ID: "sub", Commands: []scenario.Command{
				scenario.Dialogue{Text: "Deep."},
				scenario.Return{},
			}},
		},
	}
	r := newStarted(t, doc)

	ev, err := r.Advance(0.016, false)
	require.NoError(t, err)
	require.Equal(t, "sub", ev.Cursor.Scene)

	snap := r.Snapshot("")
	require.Len(t, snap.SceneStack, 1)
	assert.Equal(t, state.Frame{Scene: "main", Index: 1}, snap.SceneStack[0])
	require.Len(t, snap.History, 1)

	r2, err := New(doc, WithTextSpeed(0))
	require.NoError(t, err)
	_, err = r2.Restore(snap)
	require.NoError(t, err)

	// Return still pops back to main after the restore.
	ev, err = r2.Advance(0.016, true)
	require.NoError(t, err)
	assert.Equal(t, state.Cursor{Scene: "main", Index: 1}, ev.Cursor)
	require.NotNil(t, ev.Line)
	assert.Equal(t, "Back.", ev.Line.Text)

	entries := r2.HistoryEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "Deep.", entries[0].Text)
	assert.True(t, r2.HasSeen(state.Cursor{Scene: "sub", Index: 0}))
}

func TestRestoreRejectsBadSceneStack(t *testing.T) {
	r := newStarted(t, testDoc())
	r.Advance(0.016, false)

	snap := r.Snapshot("")
	snap.SceneStack = []state.Frame{{Scene: "nowhere", Index: 0}}

	_, err := r.Restore(snap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scene stack")
}

func TestRestoreNilSnapshot(t *testing.T) {
	r := newStarted(t, testDoc())
	_, err := r.Restore(nil)
	assert.Error(t, err)
}
