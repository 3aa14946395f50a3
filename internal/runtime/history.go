package runtime

import "github.com/sawane/shiori/pkg/state"

// History is the capped dialogue backlog. When full, adding evicts the
// oldest entry. Re-adding the line at the same position as the newest
// entry is suppressed, so replaying a frame cannot duplicate the tail.
type History struct {
	limit   int
	entries []state.HistoryEntry
}

// NewHistory creates a backlog holding at most limit entries.
func NewHistory(limit int) *History {
	if limit < 1 {
		limit = 1
	}
	return &History{limit: limit}
}

// Add appends an entry, evicting the oldest when over the cap.
func (h *History) Add(e state.HistoryEntry) {
	if n := len(h.entries); n > 0 {
		last := h.entries[n-1]
		if last.Scene == e.Scene && last.Index == e.Index {
			return
		}
	}
	h.entries = append(h.entries, e)
	if len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns a copy of the backlog, oldest first.
func (h *History) Entries() []state.HistoryEntry {
	out := make([]state.HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Restore replaces the backlog. Input beyond the cap is truncated,
// keeping the newest entries.
func (h *History) Restore(entries []state.HistoryEntry) {
	if len(entries) > h.limit {
		entries = entries[len(entries)-h.limit:]
	}
	h.entries = make([]state.HistoryEntry, len(entries))
	copy(h.entries, entries)
}
