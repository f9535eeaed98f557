package ledger

import "sync"

// Journal is an append-only log. Entries are never edited or removed;
// Replace exists only to restore a persisted log at startup.
type Journal[T any] struct {
	mu      sync.RWMutex
	entries []T
}

func NewJournal[T any](entries ...T) *Journal[T] {
	j := &Journal[T]{}
	j.Replace(entries)
	return j
}

func (j *Journal[T]) Append(entry T) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
}

// All returns a copy in append order.
func (j *Journal[T]) All() []T {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]T, len(j.entries))
	copy(out, j.entries)
	return out
}

func (j *Journal[T]) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}

func (j *Journal[T]) Replace(entries []T) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.entries = make([]T, len(entries))
	copy(j.entries, entries)
}
