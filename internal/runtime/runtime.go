// Package runtime implements the frame-driven scenario state machine:
// command execution, choice handling, the typewriter reveal, read
// tracking and snapshot capture/restore. It is single-threaded by
// contract; callers serialize access.
package runtime

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/sawane/shiori/pkg/scenario"
	"github.com/sawane/shiori/pkg/state"
)

const (
	// DefaultChainLimit bounds how many zero-duration commands one
	// Advance call may execute before the runtime declares a cycle.
	DefaultChainLimit = 64
	// DefaultHistoryLimit caps the dialogue backlog.
	DefaultHistoryLimit = 200
	// DefaultCallDepth bounds the scene call stack.
	DefaultCallDepth = 100
	// DefaultTextSpeed is the typewriter reveal rate in runes per
	// second. Zero disables the reveal and shows lines instantly.
	DefaultTextSpeed = 40.0
)

// Runtime executes one playthrough of a document. It never blocks and
// keeps no timers; all timing is driven by the dt passed to Advance.
type Runtime struct {
	doc    *scenario.Document
	logger *slog.Logger

	chainLimit   int
	historyLimit int
	textSpeed    float64
	maxCallDepth int

	status  state.Status
	cursor  state.Cursor
	flags   *FlagStore
	vars    *VariableStore
	history *History
	seen    map[state.Cursor]struct{}
	stack   []state.Frame
	display *display

	pending       *state.PendingChoice
	line          *scenario.Dialogue
	reveal        *reveal
	waitRemaining float64
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithChainLimit bounds zero-duration command chains per Advance call.
func WithChainLimit(n int) Option {
	return func(r *Runtime) {
		if n > 0 {
			r.chainLimit = n
		}
	}
}

// WithHistoryLimit caps the dialogue backlog.
func WithHistoryLimit(n int) Option {
	return func(r *Runtime) {
		if n > 0 {
			r.historyLimit = n
		}
	}
}

// WithTextSpeed sets the typewriter rate in runes per second. Zero or
// negative reveals lines instantly.
func WithTextSpeed(runesPerSecond float64) Option {
	return func(r *Runtime) {
		r.textSpeed = runesPerSecond
	}
}

// WithCallDepth bounds the scene call stack.
func WithCallDepth(n int) Option {
	return func(r *Runtime) {
		if n > 0 {
			r.maxCallDepth = n
		}
	}
}

// New creates an idle runtime over a document. The document is treated
// as read-only and may be shared between runtimes.
func New(doc *scenario.Document, opts ...Option) (*Runtime, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is required")
	}
	r := &Runtime{
		doc:          doc,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		chainLimit:   DefaultChainLimit,
		historyLimit: DefaultHistoryLimit,
		textSpeed:    DefaultTextSpeed,
		maxCallDepth: DefaultCallDepth,
		status:       state.StatusIdle,
		flags:        NewFlagStore(),
		vars:         NewVariableStore(),
		seen:         make(map[state.Cursor]struct{}),
		display:      newDisplay(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.history = NewHistory(r.historyLimit)
	r.flags.Observe(func(name string, value bool) {
		r.logger.Debug("flag changed", "flag", name, "value", value)
	})
	r.vars.Observe(func(name string, value scenario.Value) {
		r.logger.Debug("variable changed", "variable", name, "value", value.String())
	})
	return r, nil
}

// Start positions the cursor at the entry scene. It does not execute
// anything; the first Advance does.
func (r *Runtime) Start() error {
	if r.status != state.StatusIdle {
		return fmt.Errorf("runtime already started")
	}
	if r.doc.EntryScene() == nil {
		return fmt.Errorf("entry scene %q not found", r.doc.Entry)
	}
	r.cursor = state.Cursor{Scene: r.doc.Entry}
	r.status = state.StatusRunning
	r.logger.Debug("scenario started", "scene", r.cursor.Scene)
	return nil
}

// Advance drives the runtime by one frame. dt is the host's elapsed time
// in seconds; input reports whether the player pressed advance this
// frame. The same (dt, input) sequence always produces the same events.
//
// Advancing an ended runtime is a no-op, not an error. Advancing while a
// choice is pending returns the pending choice unchanged.
func (r *Runtime) Advance(dt float64, input bool) (state.Event, error) {
	switch r.status {
	case state.StatusIdle:
		return state.Event{}, state.ErrNotStarted
	case state.StatusEnded, state.StatusAwaitingChoice:
		return r.event(nil, nil), nil
	}

	// A line mid-reveal absorbs the frame: dt grows the visible prefix,
	// input skips to the full text.
	if r.status == state.StatusRunning && r.reveal != nil {
		if input {
			r.reveal.skip()
		} else {
			r.reveal.advance(dt)
		}
		if r.reveal.complete() {
			r.status = state.StatusAwaitingAdvance
		}
		return r.event(nil, nil), nil
	}

	if r.status == state.StatusAwaitingAdvance {
		if !input {
			return r.event(nil, nil), nil
		}
		r.line = nil
		r.reveal = nil
		r.cursor.Index++
		r.status = state.StatusRunning
	}

	if r.waitRemaining > 0 {
		r.waitRemaining -= dt
		if r.waitRemaining > 0 {
			return r.event(nil, nil), nil
		}
		r.waitRemaining = 0
	}

	var (
		effects []state.Effect
		diags   []state.Diagnostic
	)
	r.runChain(&effects, &diags)
	return r.event(effects, diags), nil
}

// SelectChoice resolves the pending choice by document option index.
// Selecting an option that was filtered out, or selecting with no
// pending choice, is a caller error and leaves the state untouched.
func (r *Runtime) SelectChoice(index int) (state.Event, error) {
	if r.status != state.StatusAwaitingChoice || r.pending == nil {
		return state.Event{}, state.ErrNoPendingChoice
	}
	visible := false
	for _, opt := range r.pending.Options {
		if opt.Index == index {
			visible = true
			break
		}
	}
	if !visible {
		return state.Event{}, fmt.Errorf("%w: option %d is not selectable", state.ErrChoiceIndex, index)
	}

	scene := r.doc.Scene(r.cursor.Scene)
	if scene == nil || r.cursor.Index >= len(scene.Commands) {
		return state.Event{}, fmt.Errorf("pending choice cursor %v is out of the document", r.cursor)
	}
	choice, ok := scene.Commands[r.cursor.Index].(scenario.ShowChoice)
	if !ok {
		return state.Event{}, fmt.Errorf("pending choice cursor %v does not address a choice command", r.cursor)
	}
	opt := choice.Options[index]

	for _, f := range opt.SetFlags {
		r.flags.Set(f, true)
	}

	var (
		effects []state.Effect
		diags   []state.Diagnostic
	)
	st, err := r.execJump(opt.Scene, 0)
	if err != nil {
		r.fail(&diags, err)
		return r.event(effects, diags), nil
	}
	r.pending = nil
	r.cursor = st.jump
	r.status = state.StatusRunning
	effects = append(effects, st.effects...)
	r.logger.Debug("choice selected", "option", index, "scene", opt.Scene)

	r.runChain(&effects, &diags)
	return r.event(effects, diags), nil
}

// runChain executes commands until one yields to the player, starts a
// wait, ends the scenario, or the chain limit trips.
func (r *Runtime) runChain(effects *[]state.Effect, diags *[]state.Diagnostic) {
	for n := 0; n < r.chainLimit; n++ {
		scene := r.doc.Scene(r.cursor.Scene)
		if scene == nil {
			r.fail(diags, contentErrorf("scene %q not found", r.cursor.Scene))
			return
		}
		if r.cursor.Index >= len(scene.Commands) {
			// Falling off the end of a scene ends the scenario, same
			// as an explicit End.
			r.logger.Debug("scene exhausted, scenario ended", "scene", r.cursor.Scene)
			r.status = state.StatusEnded
			return
		}

		st, err := r.execCommand(scene.Commands[r.cursor.Index])
		if err != nil {
			r.fail(diags, err)
			return
		}
		*effects = append(*effects, st.effects...)

		switch st.kind {
		case stepContinue:
			r.cursor.Index++
		case stepDialogue:
			r.startLine(st.dialogue, effects)
			return
		case stepChoice:
			r.pending = st.choice
			r.status = state.StatusAwaitingChoice
			return
		case stepWait:
			r.cursor.Index++
			if st.wait > 0 {
				r.waitRemaining = st.wait
				return
			}
		case stepJump:
			r.cursor = st.jump
		case stepEnd:
			r.logger.Debug("scenario ended", "scene", r.cursor.Scene)
			r.status = state.StatusEnded
			return
		}
	}
	r.fail(diags, contentErrorf("chain limit %d exceeded without yielding; likely a command cycle", r.chainLimit))
}

// startLine begins displaying a dialogue line: voice effect, backlog and
// read tracking, reveal state.
func (r *Runtime) startLine(d *scenario.Dialogue, effects *[]state.Effect) {
	if d.Voice != "" {
		*effects = append(*effects, state.Effect{Kind: state.EffectPlayVoice, Asset: d.Voice, Volume: 1})
	}
	r.line = d
	r.reveal = newReveal(d.Text, r.textSpeed)
	r.history.Add(state.HistoryEntry{
		Scene:   r.cursor.Scene,
		Index:   r.cursor.Index,
		Speaker: d.Speaker,
		Text:    d.Text,
	})
	r.seen[r.cursor] = struct{}{}
	if r.reveal.complete() {
		r.status = state.StatusAwaitingAdvance
	} else {
		r.status = state.StatusRunning
	}
}

// fail records a content defect and terminates the scenario. Content is
// the author's responsibility; the runtime refuses to guess and stops
// deterministically instead.
func (r *Runtime) fail(diags *[]state.Diagnostic, err error) {
	*diags = append(*diags, state.Diagnostic{Cursor: r.cursor, Message: err.Error()})
	r.logger.Error("content defect, ending scenario",
		"scene", r.cursor.Scene,
		"index", r.cursor.Index,
		"err", err,
	)
	r.pending = nil
	r.line = nil
	r.reveal = nil
	r.waitRemaining = 0
	r.status = state.StatusEnded
}

// event assembles the externally visible view of the current state.
func (r *Runtime) event(effects []state.Effect, diags []state.Diagnostic) state.Event {
	ev := state.Event{
		Status:      r.status,
		Cursor:      r.cursor,
		Effects:     effects,
		Diagnostics: diags,
	}
	if r.line != nil && r.reveal != nil {
		ev.Line = &state.Line{
			Speaker:  r.line.Speaker,
			Text:     r.line.Text,
			Visible:  r.reveal.visibleText(),
			Complete: r.reveal.complete(),
		}
	}
	if r.status == state.StatusAwaitingChoice && r.pending != nil {
		opts := make([]state.ChoiceView, len(r.pending.Options))
		copy(opts, r.pending.Options)
		ev.Choice = &state.PendingChoice{Prompt: r.pending.Prompt, Options: opts}
	}
	return ev
}

// CurrentState returns the current view without advancing anything.
func (r *Runtime) CurrentState() state.Event {
	return r.event(nil, nil)
}

// Status returns the current execution status.
func (r *Runtime) Status() state.Status {
	return r.status
}

// HistoryEntries returns a copy of the dialogue backlog, oldest first.
func (r *Runtime) HistoryEntries() []state.HistoryEntry {
	return r.history.Entries()
}

// HasSeen reports whether the dialogue at the given position has been
// read in this playthrough or any restored one.
func (r *Runtime) HasSeen(c state.Cursor) bool {
	_, ok := r.seen[c]
	return ok
}

// Flag returns the value of a flag; unset flags read false.
func (r *Runtime) Flag(name string) bool {
	return r.flags.Get(name)
}

// Variable returns a variable and whether it is defined.
func (r *Runtime) Variable(name string) (scenario.Value, bool) {
	return r.vars.Get(name)
}
