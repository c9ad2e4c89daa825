// Package history provides the fixed-capacity FIFO buffers backing the
// cost adjuster's signal history and the attributor's factor records.
package history

import "sync"

// Ring is a bounded FIFO buffer: appending beyond capacity evicts the
// oldest entry. Safe for concurrent appends from parallel analyses.
type Ring[T any] struct {
	mu    sync.Mutex
	items []T
	cap   int
}

// NewRing creates a buffer holding at most capacity entries.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{cap: capacity}
}

// Append adds v, evicting the oldest entry when full.
func (r *Ring[T]) Append(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == r.cap {
		copy(r.items, r.items[1:])
		r.items[len(r.items)-1] = v
		return
	}
	r.items = append(r.items, v)
}

// Len reports the current number of entries.
func (r *Ring[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Cap reports the fixed capacity.
func (r *Ring[T]) Cap() int { return r.cap }

// Mutate runs fn over the buffered entries in place, oldest first,
// holding the lock for the duration. Concurrent appends are ordered
// either wholly before or wholly after fn.
func (r *Ring[T]) Mutate(fn func(items []T)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.items)
}

// Snapshot returns a copy of the entries, oldest first.
func (r *Ring[T]) Snapshot() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.items))
	copy(out, r.items)
	return out
}

// Tail returns a copy of the most recent n entries, oldest first.
func (r *Ring[T]) Tail(n int) []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n > len(r.items) {
		n = len(r.items)
	}
	out := make([]T, n)
	copy(out, r.items[len(r.items)-n:])
	return out
}
