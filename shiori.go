package shiori

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/sawane/shiori/internal/runtime"
	"github.com/sawane/shiori/pkg/ports"
	"github.com/sawane/shiori/pkg/scenario"
	"github.com/sawane/shiori/pkg/state"
)

// Engine is the high-level entry point for the Shiori library.
// It wraps the internal runtime and provides a simplified API for hosts.
type Engine struct {
	runtime     *runtime.Runtime
	doc         *scenario.Document
	logger      *slog.Logger
	runtimeOpts []runtime.Option
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTextSpeed sets the typewriter reveal speed in runes per second.
// A speed of zero reveals lines instantly.
func WithTextSpeed(runesPerSecond float64) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithTextSpeed(runesPerSecond))
	}
}

// WithChainLimit caps how many commands one Advance call may execute.
func WithChainLimit(n int) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithChainLimit(n))
	}
}

// WithHistoryLimit caps the number of retained read history entries.
func WithHistoryLimit(n int) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithHistoryLimit(n))
	}
}

// WithCallDepth caps the scene call stack depth.
func WithCallDepth(n int) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithCallDepth(n))
	}
}

// ValidationError is returned by New when a document has structural
// errors. It carries every issue so a host can report them all at once.
type ValidationError struct {
	Issues []scenario.Issue
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "document failed validation with %d issue(s)", len(e.Issues))
	for _, issue := range e.Issues {
		b.WriteString("\n  ")
		b.WriteString(issue.String())
	}
	return b.String()
}

// New initializes an Engine for the given document. The document is
// validated first; structural errors reject it with a *ValidationError,
// warnings are logged and playback proceeds.
func New(doc *scenario.Document, opts ...Option) (*Engine, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is required")
	}

	eng := &Engine{doc: doc}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if doc.ID != "" {
		eng.logger = eng.logger.With("document", doc.ID)
	}

	issues := scenario.Validate(doc)
	if scenario.HasErrors(issues) {
		return nil, &ValidationError{Issues: issues}
	}
	for _, issue := range issues {
		eng.logger.Warn("document validation warning",
			"scene", issue.Scene,
			"index", issue.Index,
			"detail", issue.Message,
		)
	}

	runtimeOpts := append([]runtime.Option{runtime.WithLogger(eng.logger)}, eng.runtimeOpts...)
	rt, err := runtime.New(doc, runtimeOpts...)
	if err != nil {
		return nil, err
	}
	eng.runtime = rt
	return eng, nil
}

// Load retrieves a document through the loader and initializes an
// Engine for it.
func Load(ctx context.Context, loader ports.DocumentLoader, opts ...Option) (*Engine, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	doc, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	return New(doc, opts...)
}

// Start begins playback at the document's entry scene. The first
// Advance call executes the opening commands.
func (e *Engine) Start() error {
	return e.runtime.Start()
}

// Advance drives playback by one host frame. dt is the elapsed time in
// seconds since the previous call; input reports whether the player
// pressed the advance control during the frame.
func (e *Engine) Advance(dt float64, input bool) (state.Event, error) {
	return e.runtime.Advance(dt, input)
}

// SelectChoice resolves a pending choice by document option index.
func (e *Engine) SelectChoice(index int) (state.Event, error) {
	return e.runtime.SelectChoice(index)
}

// CurrentState returns the current presentation state without advancing.
func (e *Engine) CurrentState() state.Event {
	return e.runtime.CurrentState()
}

// Status returns the current playback status.
func (e *Engine) Status() state.Status {
	return e.runtime.Status()
}

// History returns the read history, oldest first.
func (e *Engine) History() []state.HistoryEntry {
	return e.runtime.HistoryEntries()
}

// HasSeen reports whether the dialogue line at the cursor was ever
// displayed in this playthrough or any restored one.
func (e *Engine) HasSeen(c state.Cursor) bool {
	return e.runtime.HasSeen(c)
}

// Flag returns the value of a story flag. Unset flags read false.
func (e *Engine) Flag(name string) bool {
	return e.runtime.Flag(name)
}

// Variable returns a story variable and whether it has been set.
func (e *Engine) Variable(name string) (scenario.Value, bool) {
	return e.runtime.Variable(name)
}

// Snapshot captures the complete play state for persistence.
func (e *Engine) Snapshot(thumbnail string) *state.Snapshot {
	return e.runtime.Snapshot(thumbnail)
}

// Restore replaces the play state with a previously captured snapshot.
// The returned event carries the effects needed to rebuild the screen.
func (e *Engine) Restore(snap *state.Snapshot) (state.Event, error) {
	return e.runtime.Restore(snap)
}

// SaveTo captures a snapshot and persists it under a slot.
func (e *Engine) SaveTo(ctx context.Context, store ports.SnapshotStore, slot, thumbnail string) error {
	if store == nil {
		return fmt.Errorf("store is required")
	}
	if err := store.Save(ctx, slot, e.Snapshot(thumbnail)); err != nil {
		return fmt.Errorf("failed to save slot %q: %w", slot, err)
	}
	e.logger.Info("saved", "slot", slot)
	return nil
}

// RestoreFrom loads a slot from the store and restores it.
func (e *Engine) RestoreFrom(ctx context.Context, store ports.SnapshotStore, slot string) (state.Event, error) {
	if store == nil {
		return state.Event{}, fmt.Errorf("store is required")
	}
	snap, err := store.Load(ctx, slot)
	if err != nil {
		return state.Event{}, fmt.Errorf("failed to load slot %q: %w", slot, err)
	}
	return e.Restore(snap)
}

// Document returns the loaded scenario document.
func (e *Engine) Document() *scenario.Document {
	return e.doc
}
