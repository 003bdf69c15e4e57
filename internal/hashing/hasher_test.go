package hashing

import "testing"

func testHasher() *Hasher {
	return NewHasherWithParams(Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1}, "test-pepper")
}

func TestHashAndVerifyPassword(t *testing.T) {
	h := testHasher()

	res, err := h.HashPassword("SecureBank123!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if res.Algorithm != "argon2id-v1" {
		t.Fatalf("unexpected algorithm %q", res.Algorithm)
	}

	ok, err := h.VerifyPassword("SecureBank123!", res)
	if err != nil || !ok {
		t.Fatalf("expected password to verify, ok=%v err=%v", ok, err)
	}

	ok, err = h.VerifyPassword("SecureBank123?", res)
	if err != nil || ok {
		t.Fatalf("expected mismatch, ok=%v err=%v", ok, err)
	}
}

func TestVerifyPasswordDifferentPepper(t *testing.T) {
	res, err := testHasher().HashPassword("SecureBank123!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	other := NewHasherWithParams(Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1}, "other-pepper")
	ok, err := other.VerifyPassword("SecureBank123!", res)
	if err != nil || ok {
		t.Fatalf("expected pepper mismatch to fail verification")
	}
}

func TestVerifyPasswordInvalidHash(t *testing.T) {
	h := testHasher()
	if _, err := h.VerifyPassword("x", &HashResult{Hash: "%%%", Salt: "abc"}); err != ErrInvalidHash {
		t.Fatalf("expected ErrInvalidHash, got %v", err)
	}
	if _, err := h.VerifyPassword("x", nil); err != ErrInvalidHash {
		t.Fatalf("expected ErrInvalidHash for nil result, got %v", err)
	}
}
