package runtime

import (
	"maps"

	"github.com/sawane/shiori/pkg/scenario"
)

// FlagStore holds boolean story flags. Reading an unset flag yields
// false; flags are never deleted, only overwritten.
type FlagStore struct {
	flags    map[string]bool
	onChange func(name string, value bool)
}

// NewFlagStore creates an empty flag store.
func NewFlagStore() *FlagStore {
	return &FlagStore{flags: make(map[string]bool)}
}

// Observe registers a callback invoked on every Set. Restore does not
// notify; it is a wholesale replacement, not a story mutation.
func (s *FlagStore) Observe(fn func(name string, value bool)) {
	s.onChange = fn
}

// Get returns the flag value, false when unset.
func (s *FlagStore) Get(name string) bool {
	return s.flags[name]
}

// Set writes the flag.
func (s *FlagStore) Set(name string, value bool) {
	s.flags[name] = value
	if s.onChange != nil {
		s.onChange(name, value)
	}
}

// Len returns the number of set flags.
func (s *FlagStore) Len() int {
	return len(s.flags)
}

// Snapshot returns a copy of the flag map for persistence.
func (s *FlagStore) Snapshot() map[string]bool {
	return maps.Clone(s.flags)
}

// Restore replaces all flags with the given map.
func (s *FlagStore) Restore(flags map[string]bool) {
	s.flags = make(map[string]bool, len(flags))
	maps.Copy(s.flags, flags)
}

// VariableStore holds typed story variables. A variable's kind is set by
// the last write; reads of undefined variables are resolved by the
// caller to a type-specific zero.
type VariableStore struct {
	vars     map[string]scenario.Value
	onChange func(name string, value scenario.Value)
}

// NewVariableStore creates an empty variable store.
func NewVariableStore() *VariableStore {
	return &VariableStore{vars: make(map[string]scenario.Value)}
}

// Observe registers a callback invoked on every Set. Restore does not
// notify; it is a wholesale replacement, not a story mutation.
func (s *VariableStore) Observe(fn func(name string, value scenario.Value)) {
	s.onChange = fn
}

// Get returns the variable value and whether it is defined.
func (s *VariableStore) Get(name string) (scenario.Value, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// Set writes the variable, replacing any previous value and kind.
func (s *VariableStore) Set(name string, value scenario.Value) {
	s.vars[name] = value
	if s.onChange != nil {
		s.onChange(name, value)
	}
}

// Len returns the number of defined variables.
func (s *VariableStore) Len() int {
	return len(s.vars)
}

// Snapshot returns a copy of the variable map for persistence.
func (s *VariableStore) Snapshot() map[string]scenario.Value {
	return maps.Clone(s.vars)
}

// Restore replaces all variables with the given map.
func (s *VariableStore) Restore(vars map[string]scenario.Value) {
	s.vars = make(map[string]scenario.Value, len(vars))
	maps.Copy(s.vars, vars)
}
