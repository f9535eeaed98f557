package memory

import (
	"context"
	"sync"

	"minimercado/backend/internal/store"
)

// Store keeps collection payloads in process memory. It backs development
// runs and tests; nothing survives a restart.
type Store struct {
	mu          sync.RWMutex
	collections map[store.Collection][]byte
}

func New() *Store {
	return &Store{collections: make(map[store.Collection][]byte)}
}

func (s *Store) Load(_ context.Context, name store.Collection) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.collections[name]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

func (s *Store) Replace(_ context.Context, batch map[store.Collection][]byte) error {
	if err := store.ValidateBatch(batch); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for name, payload := range batch {
		stored := make([]byte, len(payload))
		copy(stored, payload)
		s.collections[name] = stored
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}
