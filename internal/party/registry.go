package party

import (
	"sync"
	"time"

	"minimercado/backend/internal/domain"
	"minimercado/backend/internal/xid"
)

// Record is implemented by domain.Customer and domain.Supplier.
type Record[T any] interface {
	Key() string
	Validate() error
	Prepared(id string, at time.Time) T
}

// Registry is an insertion-ordered collection of customers or suppliers.
// Transactions refer to entries by id only, so deleting never cascades.
type Registry[T Record[T]] struct {
	mu      sync.RWMutex
	prefix  string
	now     func() time.Time
	entries []T
}

func NewCustomers(now func() time.Time) *Registry[domain.Customer] {
	return &Registry[domain.Customer]{prefix: "cus", now: now}
}

func NewSuppliers(now func() time.Time) *Registry[domain.Supplier] {
	return &Registry[domain.Supplier]{prefix: "sup", now: now}
}

func (r *Registry[T]) Add(entry T) (T, error) {
	var zero T

	r.mu.Lock()
	defer r.mu.Unlock()

	entry = entry.Prepared(xid.New(r.prefix), r.clock())
	if err := entry.Validate(); err != nil {
		return zero, err
	}
	for _, existing := range r.entries {
		if existing.Key() == entry.Key() {
			return zero, domain.Invalid("id %q already registered", entry.Key())
		}
	}
	r.entries = append(r.entries, entry)
	return entry, nil
}

func (r *Registry[T]) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, entry := range r.entries {
		if entry.Key() == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Registry[T]) Find(id string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.entries {
		if entry.Key() == id {
			return entry, true
		}
	}
	var zero T
	return zero, false
}

func (r *Registry[T]) List() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]T, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *Registry[T]) Replace(entries []T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = make([]T, len(entries))
	copy(r.entries, entries)
}

func (r *Registry[T]) clock() time.Time {
	if r.now == nil {
		return time.Now().UTC()
	}
	return r.now()
}
