package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawane/shiori/pkg/adapters/memory"
	"github.com/sawane/shiori/pkg/session"
	"github.com/sawane/shiori/pkg/state"
)

// SlowStore simulates latency to provoke race conditions if locking is
// missing.
type SlowStore struct {
	data map[string]*state.Snapshot
	mu   sync.Mutex
}

func (s *SlowStore) Save(ctx context.Context, slot string, snap *state.Snapshot) error {
	time.Sleep(10 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string]*state.Snapshot)
	}
	s.data[slot] = snap
	return nil
}

func (s *SlowStore) Load(ctx context.Context, slot string) (*state.Snapshot, error) {
	time.Sleep(10 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap, ok := s.data[slot]; ok {
		return snap, nil
	}
	return nil, state.ErrSnapshotNotFound
}

func (s *SlowStore) Delete(ctx context.Context, slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, slot)
	return nil
}

func (s *SlowStore) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slots := make([]string, 0, len(s.data))
	for slot := range s.data {
		slots = append(slots, slot)
	}
	return slots, nil
}

func TestManagerSerializesSlotAccess(t *testing.T) {
	mgr := session.NewManager(&SlowStore{})
	ctx := context.Background()

	// Concurrent writers to the same slot must not interleave; the last
	// committed write wins and the slot stays readable throughout.
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap := &state.Snapshot{
				Format:     state.SnapshotFormat,
				DocumentID: "story",
				Cursor:     state.Cursor{Scene: "s", Index: i},
			}
			assert.NoError(t, mgr.Save(ctx, "contested", snap))
		}(i)
	}
	wg.Wait()

	got, err := mgr.Load(ctx, "contested")
	require.NoError(t, err)
	assert.Equal(t, "story", got.DocumentID)
}

func TestManagerLoadMissing(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	_, err := mgr.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, state.ErrSnapshotNotFound)
}

func TestManagerPeek(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	created := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	snap := &state.Snapshot{
		Format:     state.SnapshotFormat,
		DocumentID: "story",
		Status:     state.StatusAwaitingAdvance,
		Cursor:     state.Cursor{Scene: "chapter2", Index: 7},
		CreatedAt:  created,
		Thumbnail:  "thumbs/42.png",
	}
	require.NoError(t, mgr.Save(ctx, "slot1", snap))

	info, err := mgr.Peek(ctx, "slot1")
	require.NoError(t, err)
	assert.Equal(t, "slot1", info.Slot)
	assert.Equal(t, "story", info.DocumentID)
	assert.Equal(t, "awaiting_advance", info.Status)
	assert.Equal(t, "chapter2", info.Scene)
	assert.True(t, created.Equal(info.CreatedAt))
	assert.Equal(t, "thumbs/42.png", info.Thumbnail)
}

func TestManagerSlotsNewestFirst(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, slot := range []string{"old", "mid", "new"} {
		snap := &state.Snapshot{
			Format:     state.SnapshotFormat,
			DocumentID: "story",
			CreatedAt:  base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, mgr.Save(ctx, slot, snap))
	}

	infos, err := mgr.Slots(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 3)
	assert.Equal(t, "new", infos[0].Slot)
	assert.Equal(t, "mid", infos[1].Slot)
	assert.Equal(t, "old", infos[2].Slot)
}

func TestNewSlotID(t *testing.T) {
	a := session.NewSlotID()
	b := session.NewSlotID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
