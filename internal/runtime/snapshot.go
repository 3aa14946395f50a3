package runtime

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/sawane/shiori/pkg/scenario"
	"github.com/sawane/shiori/pkg/state"
)

// Snapshot captures the complete runtime state as plain data. The
// thumbnail handle is stored untouched; pass "" when the host has none.
func (r *Runtime) Snapshot(thumbnail string) *state.Snapshot {
	snap := &state.Snapshot{
		Format:          state.SnapshotFormat,
		DocumentID:      r.doc.ID,
		DocumentVersion: r.doc.Version,
		CreatedAt:       time.Now().UTC(),
		Status:          r.status,
		Cursor:          r.cursor,
		Flags:           r.flags.Snapshot(),
		Variables:       r.vars.Snapshot(),
		SceneStack:      slices.Clone(r.stack),
		WaitRemaining:   r.waitRemaining,
		History:         r.history.Entries(),
		Seen:            r.seenList(),
		Display:         r.display.snapshot(),
		Thumbnail:       thumbnail,
	}
	if r.pending != nil {
		opts := make([]state.ChoiceView, len(r.pending.Options))
		copy(opts, r.pending.Options)
		snap.Pending = &state.PendingChoice{Prompt: r.pending.Prompt, Options: opts}
	}
	if r.reveal != nil && r.status == state.StatusRunning {
		snap.Reveal = &state.Reveal{VisibleRunes: r.reveal.visible, Elapsed: r.reveal.elapsed}
	}
	return snap
}

// seenList flattens the seen set in a deterministic order.
func (r *Runtime) seenList() []state.Cursor {
	if len(r.seen) == 0 {
		return nil
	}
	out := make([]state.Cursor, 0, len(r.seen))
	for c := range r.seen {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Scene != out[j].Scene {
			return out[i].Scene < out[j].Scene
		}
		return out[i].Index < out[j].Index
	})
	return out
}

// Restore replaces the runtime state with a snapshot. Restore is atomic:
// every check runs before the first mutation, so a failed restore leaves
// the current playthrough exactly as it was.
//
// The snapshot must have been taken against the same document ID and
// version. The returned event carries the effects a host needs to
// rebuild the screen.
func (r *Runtime) Restore(snap *state.Snapshot) (state.Event, error) {
	if snap == nil {
		return state.Event{}, fmt.Errorf("snapshot is required")
	}
	if snap.Format != state.SnapshotFormat {
		return state.Event{}, fmt.Errorf("%w: format %d, supported %d", state.ErrSnapshotFormat, snap.Format, state.SnapshotFormat)
	}
	if snap.DocumentID != r.doc.ID || snap.DocumentVersion != r.doc.Version {
		return state.Event{}, fmt.Errorf("%w: snapshot %s@%s, loaded %s@%s",
			state.ErrDocumentMismatch, snap.DocumentID, snap.DocumentVersion, r.doc.ID, r.doc.Version)
	}

	switch snap.Status {
	case state.StatusIdle, state.StatusRunning, state.StatusAwaitingChoice, state.StatusAwaitingAdvance, state.StatusEnded:
	default:
		return state.Event{}, fmt.Errorf("snapshot has unknown status %q", snap.Status)
	}

	// Positional checks only apply while the snapshot is inside the
	// document.
	var dialogue *scenario.Dialogue
	if snap.Status == state.StatusRunning || snap.Status == state.StatusAwaitingChoice || snap.Status == state.StatusAwaitingAdvance {
		scene := r.doc.Scene(snap.Cursor.Scene)
		if scene == nil {
			return state.Event{}, fmt.Errorf("snapshot references unknown scene %q", snap.Cursor.Scene)
		}
		if snap.Cursor.Index < 0 || snap.Cursor.Index > len(scene.Commands) {
			return state.Event{}, fmt.Errorf("snapshot cursor index %d out of range for scene %q", snap.Cursor.Index, snap.Cursor.Scene)
		}

		var cmd scenario.Command
		if snap.Cursor.Index < len(scene.Commands) {
			cmd = scene.Commands[snap.Cursor.Index]
		}
		switch snap.Status {
		case state.StatusAwaitingChoice:
			choice, ok := cmd.(scenario.ShowChoice)
			if !ok {
				return state.Event{}, fmt.Errorf("snapshot awaits a choice but cursor %v is not a choice command", snap.Cursor)
			}
			if snap.Pending == nil || len(snap.Pending.Options) == 0 {
				return state.Event{}, fmt.Errorf("snapshot awaits a choice but carries no pending options")
			}
			for _, opt := range snap.Pending.Options {
				if opt.Index < 0 || opt.Index >= len(choice.Options) {
					return state.Event{}, fmt.Errorf("snapshot pending option index %d out of range", opt.Index)
				}
			}
		case state.StatusAwaitingAdvance:
			d, ok := cmd.(scenario.Dialogue)
			if !ok {
				return state.Event{}, fmt.Errorf("snapshot awaits advance but cursor %v is not a dialogue command", snap.Cursor)
			}
			dialogue = &d
		case state.StatusRunning:
			if snap.Reveal != nil {
				d, ok := cmd.(scenario.Dialogue)
				if !ok {
					return state.Event{}, fmt.Errorf("snapshot has reveal state but cursor %v is not a dialogue command", snap.Cursor)
				}
				dialogue = &d
			}
		}
	}

	for _, f := range snap.SceneStack {
		scene := r.doc.Scene(f.Scene)
		if scene == nil {
			return state.Event{}, fmt.Errorf("snapshot scene stack references unknown scene %q", f.Scene)
		}
		if f.Index < 0 || f.Index > len(scene.Commands) {
			return state.Event{}, fmt.Errorf("snapshot scene stack index %d out of range for scene %q", f.Index, f.Scene)
		}
	}

	// Validation passed; replace state wholesale.
	r.status = snap.Status
	r.cursor = snap.Cursor
	r.flags.Restore(snap.Flags)
	r.vars.Restore(snap.Variables)
	r.stack = slices.Clone(snap.SceneStack)
	r.waitRemaining = snap.WaitRemaining
	r.history.Restore(snap.History)
	r.seen = make(map[state.Cursor]struct{}, len(snap.Seen))
	for _, c := range snap.Seen {
		r.seen[c] = struct{}{}
	}
	r.display.restore(snap.Display)

	r.pending = nil
	if snap.Pending != nil {
		opts := make([]state.ChoiceView, len(snap.Pending.Options))
		copy(opts, snap.Pending.Options)
		r.pending = &state.PendingChoice{Prompt: snap.Pending.Prompt, Options: opts}
	}

	r.line = nil
	r.reveal = nil
	if dialogue != nil {
		r.line = dialogue
		r.reveal = newReveal(dialogue.Text, r.textSpeed)
		if snap.Status == state.StatusAwaitingAdvance {
			r.reveal.skip()
		} else if snap.Reveal != nil {
			r.reveal.restoreAt(snap.Reveal.VisibleRunes, snap.Reveal.Elapsed)
		}
	}

	r.logger.Info("snapshot restored",
		"scene", r.cursor.Scene,
		"index", r.cursor.Index,
		"status", r.status,
	)
	return r.event(r.display.rebuildEffects(), nil), nil
}
