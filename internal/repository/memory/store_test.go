package memory

import (
	"context"
	"errors"
	"testing"

	"securebank/internal/repository"
)

func TestStoreGetSet(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if _, err := s.Get(ctx, "accounts"); !errors.Is(err, repository.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}

	value := []byte(`[{"id":"ACC001"}]`)
	if err := s.Set(ctx, "accounts", value); err != nil {
		t.Fatalf("set: %v", err)
	}
	value[0] = 'X'

	got, err := s.Get(ctx, "accounts")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `[{"id":"ACC001"}]` {
		t.Fatalf("stored value must not alias caller slice, got %q", got)
	}
}
