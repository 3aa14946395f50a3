package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/sawane/shiori/internal/logging"
	"github.com/sawane/shiori/pkg/ports"
	"github.com/sawane/shiori/pkg/state"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates save slot access, ensuring safe concurrent
// operations. It uses reference counting to garbage collect unused
// locks.
type Manager struct {
	store ports.SnapshotStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new save slot Manager over the given store.
func NewManager(store ports.SnapshotStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewSlotID generates a unique slot identifier for auto and quick
// saves. Named slots chosen by the player pass through untouched.
func NewSlotID() string {
	return uuid.NewString()
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(slot) after
// unlocking.
func (m *Manager) acquire(slot string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[slot]
	if !exists {
		entry = &lockEntry{}
		m.locks[slot] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it
// reaches zero.
func (m *Manager) release(slot string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[slot]
	if !exists {
		return // Should not happen if paired correctly
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, slot)
	}
}

// Save persists a snapshot under the slot.
func (m *Manager) Save(ctx context.Context, slot string, snap *state.Snapshot) error {
	return m.WithLock(ctx, slot, func(ctx context.Context) error {
		return m.store.Save(ctx, slot, snap)
	})
}

// Load retrieves the snapshot for a slot.
func (m *Manager) Load(ctx context.Context, slot string) (*state.Snapshot, error) {
	var snap *state.Snapshot
	err := m.WithLock(ctx, slot, func(ctx context.Context) error {
		var err error
		snap, err = m.store.Load(ctx, slot)
		return err
	})
	return snap, err
}

// Delete removes the slot from the store.
func (m *Manager) Delete(ctx context.Context, slot string) error {
	return m.WithLock(ctx, slot, func(ctx context.Context) error {
		return m.store.Delete(ctx, slot)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}

// SlotInfo is the metadata a save/load screen renders for one slot.
type SlotInfo struct {
	Slot            string    `json:"slot"`
	DocumentID      string    `json:"document_id"`
	DocumentVersion string    `json:"document_version,omitempty"`
	Status          string    `json:"status"`
	Scene           string    `json:"scene"`
	CreatedAt       time.Time `json:"created_at"`
	Thumbnail       string    `json:"thumbnail,omitempty"`
}

// Peek loads the metadata for a slot without handing out the full
// snapshot.
func (m *Manager) Peek(ctx context.Context, slot string) (SlotInfo, error) {
	snap, err := m.Load(ctx, slot)
	if err != nil {
		return SlotInfo{}, err
	}
	return SlotInfo{
		Slot:            slot,
		DocumentID:      snap.DocumentID,
		DocumentVersion: snap.DocumentVersion,
		Status:          string(snap.Status),
		Scene:           snap.Cursor.Scene,
		CreatedAt:       snap.CreatedAt,
		Thumbnail:       snap.Thumbnail,
	}, nil
}

// Slots returns metadata for every saved slot, newest first. Slots that
// vanish between List and Peek are skipped; other load failures are
// logged and skipped so one corrupt save cannot hide the rest.
func (m *Manager) Slots(ctx context.Context) ([]SlotInfo, error) {
	slots, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]SlotInfo, 0, len(slots))
	for _, slot := range slots {
		info, err := m.Peek(ctx, slot)
		if err != nil {
			if !errors.Is(err, state.ErrSnapshotNotFound) {
				m.logger.Warn("skipping unreadable save slot", "slot", slot, "err", err)
			}
			continue
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos, nil
}

// WithLock executes a function while holding the lock for the slot.
func (m *Manager) WithLock(ctx context.Context, slot string, fn func(context.Context) error) error {
	entry := m.acquire(slot)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(slot)
	}()

	return fn(ctx)
}
