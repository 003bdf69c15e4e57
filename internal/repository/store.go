package repository

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned when a key has never been written.
var ErrKeyNotFound = errors.New("repository: key not found")

// Store persists opaque JSON blobs under string keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
