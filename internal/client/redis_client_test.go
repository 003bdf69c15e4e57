package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"

	"securebank/internal/config"
)

func newTestRedisClient(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)

	cfg := &config.Config{}
	cfg.Redis.URL = "redis://" + s.Addr()
	cfg.Redis.PoolSize = 4
	cfg.Redis.KeyPrefix = "securebank:"

	rc, err := NewRedisClient(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("new redis client: %v", err)
	}
	t.Cleanup(func() { _ = rc.Close() })
	return rc, s
}

func TestRedisClientGetSetDel(t *testing.T) {
	rc, s := newTestRedisClient(t)
	ctx := context.Background()

	if err := rc.Set(ctx, "securebank:accounts", []byte("[]"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, _ := s.Get("securebank:accounts"); got != "[]" {
		t.Fatalf("unexpected stored value %q", got)
	}

	val, err := rc.Get(ctx, "securebank:accounts")
	if err != nil || string(val) != "[]" {
		t.Fatalf("get: %q %v", val, err)
	}

	if err := rc.Del(ctx, "securebank:accounts"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, err := rc.Get(ctx, "securebank:accounts"); !errors.Is(err, ErrNil) {
		t.Fatalf("expected ErrNil, got %v", err)
	}
}

func TestRedisClientHealthCheck(t *testing.T) {
	rc, s := newTestRedisClient(t)

	if err := rc.HealthCheck(context.Background()); err != nil {
		t.Fatalf("health check: %v", err)
	}
	if s.Exists("securebank:healthcheck") {
		t.Fatalf("health check key should be removed")
	}

	s.Close()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := rc.HealthCheck(ctx); err == nil {
		t.Fatalf("expected failure after server shutdown")
	}
}
