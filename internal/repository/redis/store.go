package redis

import (
	"context"
	"errors"
	"fmt"

	"securebank/internal/client"
	"securebank/internal/repository"
)

// Store keeps ledger blobs in Redis under the configured key prefix.
// Values never expire.
type Store struct {
	client *client.RedisClient
	prefix string
}

func NewStore(rc *client.RedisClient) *Store {
	return &Store{client: rc, prefix: rc.KeyPrefix()}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.prefix+key)
	if err != nil {
		if errors.Is(err, client.ErrNil) {
			return nil, repository.ErrKeyNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
