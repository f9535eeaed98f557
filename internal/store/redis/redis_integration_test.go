package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"minimercado/backend/internal/store"
)

func TestReplaceAndLoadRoundTrip(t *testing.T) {
	addr := os.Getenv("MINIMERCADO_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set MINIMERCADO_TEST_REDIS_ADDR to run redis integration test")
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("minimercado-it-%d", time.Now().UnixNano())
	s, err := New(ctx, addr, "", 0, prefix)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		for _, name := range store.Collections() {
			_ = s.client.Del(ctx, s.key(name)).Err()
		}
		_ = s.Close()
	})

	if _, err := s.Load(ctx, store.Sales); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before first write, got %v", err)
	}

	if err := s.Replace(ctx, map[store.Collection][]byte{
		store.Sales:    []byte(`[{"id":"sale-1"}]`),
		store.Products: []byte(`[]`),
	}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := s.Load(ctx, store.Sales)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != `[{"id":"sale-1"}]` {
		t.Fatalf("unexpected payload %s", got)
	}
}

func TestKeyUsesPrefix(t *testing.T) {
	s := &Store{prefix: "shop"}
	if got := s.key(store.CashMovements); got != "shop:cash_movements" {
		t.Fatalf("unexpected key %q", got)
	}
	s.prefix = ""
	if got := s.key(store.Session); got != "session" {
		t.Fatalf("unexpected key %q", got)
	}
}
