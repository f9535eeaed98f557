package redis

import (
	"context"
	"errors"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"minimercado/backend/internal/store"
)

// Store keeps each collection under <prefix>:<name>. A batch is written in
// one MULTI/EXEC block.
type Store struct {
	client *redis.Client
	prefix string
}

func New(ctx context.Context, addr string, password string, db int, prefix string) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	s := &Store{client: client, prefix: prefix}
	if err := s.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) key(name store.Collection) string {
	if s.prefix == "" {
		return string(name)
	}
	return fmt.Sprintf("%s:%s", s.prefix, name)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Load(ctx context.Context, name store.Collection) ([]byte, error) {
	val, err := s.client.Get(ctx, s.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *Store) Replace(ctx context.Context, batch map[store.Collection][]byte) error {
	if err := store.ValidateBatch(batch); err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for name, payload := range batch {
			pipe.Set(ctx, s.key(name), payload, 0)
		}
		return nil
	})
	return err
}
