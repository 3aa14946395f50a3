// Package memory provides an in-memory snapshot store.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sawane/shiori/pkg/state"
)

// Store implements ports.SnapshotStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

// Save persists the snapshot in memory. The snapshot is serialized on
// write so callers cannot mutate a stored save through shared slices.
func (s *Store) Save(ctx context.Context, slot string, snap *state.Snapshot) error {
	if slot == "" {
		return fmt.Errorf("slot cannot be empty")
	}
	if snap == nil {
		return fmt.Errorf("snapshot is required")
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[slot] = data
	return nil
}

// Load retrieves the snapshot for a slot.
func (s *Store) Load(ctx context.Context, slot string) (*state.Snapshot, error) {
	s.mu.RLock()
	data, ok := s.data[slot]
	s.mu.RUnlock()
	if !ok {
		return nil, state.ErrSnapshotNotFound
	}

	var snap state.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Delete removes the slot.
func (s *Store) Delete(ctx context.Context, slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, slot)
	return nil
}

// List returns all slots holding a save.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slots := make([]string, 0, len(s.data))
	for slot := range s.data {
		slots = append(slots, slot)
	}
	return slots, nil
}
