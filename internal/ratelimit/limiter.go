// Package ratelimit implements fixed-window API call limits keyed by client.
package ratelimit

import (
	"context"
	"time"
)

// Limiter reports whether another call for key fits in the current window and,
// if not, how long until the window resets.
type Limiter interface {
	Allow(ctx context.Context, key string, now time.Time) (bool, time.Duration, error)
}
