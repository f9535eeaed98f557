package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"minimercado/backend/internal/store"
)

// Store keeps one <collection>.json file per collection under a directory.
type Store struct {
	mu  sync.Mutex
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(name store.Collection) string {
	return filepath.Join(s.dir, string(name)+".json")
}

func (s *Store) Load(_ context.Context, name store.Collection) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, store.ErrNotFound
	}
	return payload, err
}

// Replace stages every payload in a temp file before renaming any of them,
// so a failed write leaves the previous files untouched.
func (s *Store) Replace(_ context.Context, batch map[store.Collection][]byte) error {
	if err := store.ValidateBatch(batch); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make(map[store.Collection]string, len(batch))
	cleanup := func() {
		for _, tmp := range staged {
			_ = os.Remove(tmp)
		}
	}

	for name, payload := range batch {
		tmp, err := os.CreateTemp(s.dir, string(name)+".*.tmp")
		if err != nil {
			cleanup()
			return err
		}
		staged[name] = tmp.Name()
		if _, err := tmp.Write(payload); err != nil {
			_ = tmp.Close()
			cleanup()
			return err
		}
		if err := tmp.Sync(); err != nil {
			_ = tmp.Close()
			cleanup()
			return err
		}
		if err := tmp.Close(); err != nil {
			cleanup()
			return err
		}
	}

	for name, tmp := range staged {
		if err := os.Rename(tmp, s.path(name)); err != nil {
			cleanup()
			return fmt.Errorf("commit %s: %w", name, err)
		}
		delete(staged, name)
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}
