package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"

	"securebank/internal/client"
	"securebank/internal/config"
	"securebank/internal/repository"
)

func TestStoreUsesPrefix(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer s.Close()

	cfg := &config.Config{}
	cfg.Redis.URL = "redis://" + s.Addr()
	cfg.Redis.KeyPrefix = "securebank:"

	rc, err := client.NewRedisClient(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer rc.Close()

	store := NewStore(rc)
	ctx := context.Background()

	if _, err := store.Get(ctx, "transactions"); !errors.Is(err, repository.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}

	if err := store.Set(ctx, "transactions", []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if raw, err := s.Get("securebank:transactions"); err != nil || raw != "[]" {
		t.Fatalf("expected prefixed key, got %q %v", raw, err)
	}
	if s.TTL("securebank:transactions") != 0 {
		t.Fatalf("ledger keys must not expire")
	}

	got, err := store.Get(ctx, "transactions")
	if err != nil || string(got) != "[]" {
		t.Fatalf("get: %q %v", got, err)
	}
}
