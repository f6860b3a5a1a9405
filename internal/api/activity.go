package api

import (
	"sync"
	"time"
)

// ActivityEntry represents one transport or status event shown in the
// dashboard's activity feed.
type ActivityEntry struct {
	Timestamp time.Time `json:"timestamp"`
	PrinterID string    `json:"printer_id,omitempty"`
	Event     string    `json:"event"`
}

// ActivityBuffer is a thread-safe ring buffer of recent events. It is a
// presentation aid only; nothing is persisted.
type ActivityBuffer struct {
	mu      sync.RWMutex
	entries []ActivityEntry
	cap     int
}

// NewActivityBuffer creates a buffer with the given capacity
func NewActivityBuffer(capacity int) *ActivityBuffer {
	return &ActivityBuffer{
		entries: make([]ActivityEntry, 0, capacity),
		cap:     capacity,
	}
}

// Add records an event, dropping the oldest entry when full
func (ab *ActivityBuffer) Add(printerID, event string) {
	ab.mu.Lock()
	defer ab.mu.Unlock()

	entry := ActivityEntry{
		Timestamp: time.Now(),
		PrinterID: printerID,
		Event:     event,
	}

	if len(ab.entries) >= ab.cap {
		// Shift everything left by 1, drop oldest
		copy(ab.entries, ab.entries[1:])
		ab.entries[len(ab.entries)-1] = entry
	} else {
		ab.entries = append(ab.entries, entry)
	}
}

// Entries returns a copy of all buffered events, oldest first
func (ab *ActivityBuffer) Entries() []ActivityEntry {
	ab.mu.RLock()
	defer ab.mu.RUnlock()

	result := make([]ActivityEntry, len(ab.entries))
	copy(result, ab.entries)
	return result
}

// Clear removes all entries
func (ab *ActivityBuffer) Clear() {
	ab.mu.Lock()
	defer ab.mu.Unlock()
	ab.entries = ab.entries[:0]
}
