package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisLimiterWindow(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer s.Close()

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	lim := NewRedisLimiter(client, 2, time.Minute, "")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, _, err := lim.Allow(ctx, "10.0.0.1", time.Now())
		if err != nil || !allowed {
			t.Fatalf("expected allow on call %d, err=%v", i+1, err)
		}
	}

	allowed, retryAfter, err := lim.Allow(ctx, "10.0.0.1", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatalf("expected rate limited")
	}
	if retryAfter <= 0 || retryAfter > time.Minute {
		t.Fatalf("unexpected retryAfter %s", retryAfter)
	}
	if !s.Exists("securebank:rl:10.0.0.1") {
		t.Fatalf("expected prefixed counter key")
	}

	s.FastForward(time.Minute + time.Millisecond)

	allowed, _, err = lim.Allow(ctx, "10.0.0.1", time.Now())
	if err != nil || !allowed {
		t.Fatalf("expected allow after window expiry")
	}
}
