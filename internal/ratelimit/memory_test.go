package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiterAllowAndReset(t *testing.T) {
	lim := NewMemory(2, time.Minute)
	now := time.Date(2024, 12, 19, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, retry, err := lim.Allow(ctx, "token", now)
		if err != nil || !allowed || retry != 0 {
			t.Fatalf("expected allow on call %d", i+1)
		}
	}

	allowed, retry, err := lim.Allow(ctx, "token", now.Add(15*time.Second))
	if err != nil || allowed {
		t.Fatalf("expected rate limit on third call")
	}
	if retry != 45*time.Second {
		t.Fatalf("expected 45s retry, got %s", retry)
	}

	if allowed, _, _ := lim.Allow(ctx, "other", now); !allowed {
		t.Fatalf("keys must be limited independently")
	}

	allowed, _, err = lim.Allow(ctx, "token", now.Add(time.Minute))
	if err != nil || !allowed {
		t.Fatalf("expected allow after window reset")
	}
}

func TestMemoryLimiterCleanup(t *testing.T) {
	lim := NewMemory(1, time.Second)
	now := time.Unix(1000, 0)

	lim.Allow(context.Background(), "1.1.1.1", now)
	lim.Allow(context.Background(), "2.2.2.2", now.Add(2*time.Second))

	if len(lim.entries) != 1 {
		t.Fatalf("expected cleanup to remove expired entries, have %d", len(lim.entries))
	}
}
