package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sawane/shiori/pkg/state"
)

// Store implements ports.SnapshotStore on the local filesystem.
// Each slot is one JSON file in the configured directory.
type Store struct {
	BasePath string
}

// New creates a Store with the given base path.
// If basePath is empty, it defaults to ".shiori/saves".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".shiori", "saves")
	}
	return &Store{BasePath: basePath}
}

// validSlot rejects names that would escape the save directory.
func validSlot(slot string) error {
	if slot == "" {
		return fmt.Errorf("slot cannot be empty")
	}
	if strings.ContainsAny(slot, `/\`) || slot == "." || slot == ".." {
		return fmt.Errorf("invalid slot name %q", slot)
	}
	return nil
}

func (f *Store) path(slot string) string {
	return filepath.Join(f.BasePath, slot+".json")
}

// Save writes the snapshot to its slot file. The write goes through a
// temp file and a rename, so a crash mid-write cannot corrupt an
// existing save.
func (f *Store) Save(ctx context.Context, slot string, snap *state.Snapshot) error {
	if err := validSlot(slot); err != nil {
		return err
	}
	if snap == nil {
		return fmt.Errorf("snapshot is required")
	}

	if err := os.MkdirAll(f.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure save directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(f.BasePath, slot+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp save file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write save file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close save file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path(slot)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to commit save file: %w", err)
	}
	return nil
}

// Load reads the snapshot from its slot file.
func (f *Store) Load(ctx context.Context, slot string) (*state.Snapshot, error) {
	if err := validSlot(slot); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path(slot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, state.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to read save file: %w", err)
	}

	var snap state.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Delete removes the slot file.
func (f *Store) Delete(ctx context.Context, slot string) error {
	if err := validSlot(slot); err != nil {
		return err
	}

	err := os.Remove(f.path(slot))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete save file: %w", err)
	}
	return nil
}

// List returns all slots with a save file, in directory order.
func (f *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}

	var slots []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && filepath.Ext(name) == ".json" {
			slots = append(slots, name[:len(name)-len(".json")])
		}
	}
	return slots, nil
}
