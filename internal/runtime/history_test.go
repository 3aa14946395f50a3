package runtime

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sawane/shiori/pkg/state"
)

func TestHistoryEviction(t *testing.T) {
	h := NewHistory(100)
	for i := 0; i < 150; i++ {
		h.Add(state.HistoryEntry{Scene: "s", Index: i, Text: fmt.Sprintf("line %d", i)})
	}

	entries := h.Entries()
	assert.Len(t, entries, 100)
	// Oldest 50 evicted; the newest 100 remain in order.
	assert.Equal(t, 50, entries[0].Index)
	assert.Equal(t, 149, entries[99].Index)
}

func TestHistoryDuplicateSuppression(t *testing.T) {
	h := NewHistory(10)
	e := state.HistoryEntry{Scene: "s", Index: 3, Text: "again"}
	h.Add(e)
	h.Add(e)
	h.Add(e)
	assert.Equal(t, 1, h.Len())

	// A different position is not a duplicate.
	h.Add(state.HistoryEntry{Scene: "s", Index: 4, Text: "next"})
	assert.Equal(t, 2, h.Len())

	// Returning to an earlier position appends again.
	h.Add(e)
	assert.Equal(t, 3, h.Len())
}

func TestHistoryRestoreTruncates(t *testing.T) {
	h := NewHistory(3)
	in := []state.HistoryEntry{
		{Scene: "s", Index: 0}, {Scene: "s", Index: 1},
		{Scene: "s", Index: 2}, {Scene: "s", Index: 3},
	}
	h.Restore(in)

	entries := h.Entries()
	assert.Len(t, entries, 3)
	assert.Equal(t, 1, entries[0].Index)
	assert.Equal(t, 3, entries[2].Index)
}

func TestHistoryEntriesIsACopy(t *testing.T) {
	h := NewHistory(10)
	h.Add(state.HistoryEntry{Scene: "s", Index: 0, Text: "original"})

	got := h.Entries()
	got[0].Text = "mutated"
	assert.Equal(t, "original", h.Entries()[0].Text)
}
