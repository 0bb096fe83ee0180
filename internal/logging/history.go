package logging

import (
	"sync"
	"time"
)

// LogEntry is one structured log record as retained in the history and
// served over the API.
type LogEntry struct {
	Timestamp  time.Time      `json:"timestamp"`
	Level      string         `json:"level"`
	Module     string         `json:"module"`
	Message    string         `json:"message"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// LogHistory keeps the most recent log entries in a fixed-size ring so the
// log stream can replay them to late-joining clients.
type LogHistory struct {
	mu   sync.RWMutex
	ring []LogEntry
	next int
	full bool
}

// NewLogHistory creates a history retaining at most capacity entries.
func NewLogHistory(capacity int) *LogHistory {
	return &LogHistory{ring: make([]LogEntry, capacity)}
}

// Append records an entry, evicting the oldest once the ring is full.
func (h *LogHistory) Append(entry LogEntry) {
	h.mu.Lock()
	h.ring[h.next] = entry
	h.next++
	if h.next == len(h.ring) {
		h.next = 0
		h.full = true
	}
	h.mu.Unlock()
}

// Snapshot returns the retained entries, oldest first.
func (h *LogHistory) Snapshot() []LogEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.full {
		return append([]LogEntry(nil), h.ring[:h.next]...)
	}
	out := make([]LogEntry, 0, len(h.ring))
	out = append(out, h.ring[h.next:]...)
	return append(out, h.ring[:h.next]...)
}

// Len reports how many entries are currently retained.
func (h *LogHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.full {
		return len(h.ring)
	}
	return h.next
}
