package logstream

import (
	"sync"

	"github.com/rxtech-lab/arb-console/internal/types"
)

// DefaultCapacity is the number of entries kept in memory.
const DefaultCapacity = 1000

// Buffer is a fixed-capacity FIFO of log entries in receipt order.
// When full, appending evicts the oldest entry. Len never exceeds Cap.
type Buffer struct {
	mu      sync.RWMutex
	entries []types.LogEntry
	head    int
	size    int
}

// NewBuffer creates a buffer holding at most capacity entries.
// A non-positive capacity falls back to DefaultCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Buffer{
		mu:      sync.RWMutex{},
		entries: make([]types.LogEntry, capacity),
		head:    0,
		size:    0,
	}
}

// Append adds an entry, evicting the oldest one when the buffer is full.
// It reports whether an entry was evicted.
func (b *Buffer) Append(entry types.LogEntry) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	capacity := len(b.entries)
	if b.size < capacity {
		b.entries[(b.head+b.size)%capacity] = entry
		b.size++

		return false
	}

	b.entries[b.head] = entry
	b.head = (b.head + 1) % capacity

	return true
}

// Entries returns a copy of the buffered entries, oldest first.
func (b *Buffer) Entries() []types.LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]types.LogEntry, b.size)
	capacity := len(b.entries)

	for i := 0; i < b.size; i++ {
		out[i] = b.entries[(b.head+i)%capacity]
	}

	return out
}

// Len returns the number of buffered entries.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.size
}

// Cap returns the buffer capacity.
func (b *Buffer) Cap() int {
	return len(b.entries)
}

// Clear drops every entry.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	clear(b.entries)
	b.head = 0
	b.size = 0
}
