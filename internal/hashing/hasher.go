package hashing

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"securebank/internal/config"
	"securebank/internal/util"

	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidHash = errors.New("invalid hash format")
)

const passwordContext = "password"

type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Hasher derives argon2id hashes of credentials mixed with a process-wide pepper.
type Hasher struct {
	params Argon2Params
	pepper string
}

type HashResult struct {
	Hash      string `json:"hash"`
	Salt      string `json:"salt"`
	Algorithm string `json:"algorithm"`
}

func NewHasher(cfg *config.Config) *Hasher {
	params := Argon2Params{
		Memory:      uint32(cfg.Hashing.Argon2MemoryCost),
		Iterations:  uint32(cfg.Hashing.Argon2TimeCost),
		Parallelism: uint8(cfg.Hashing.Argon2Parallelism),
		SaltLength:  16,
		KeyLength:   32,
	}

	pepper := cfg.Hashing.Pepper
	if pepper == "" {
		pepper = generatePepper()
	}

	return NewHasherWithParams(params, pepper)
}

func NewHasherWithParams(params Argon2Params, pepper string) *Hasher {
	if params.SaltLength == 0 {
		params.SaltLength = 16
	}
	if params.KeyLength == 0 {
		params.KeyLength = 32
	}
	if params.Iterations == 0 {
		params.Iterations = 1
	}
	if params.Parallelism == 0 {
		params.Parallelism = 1
	}
	return &Hasher{params: params, pepper: pepper}
}

// generatePepper returns a random pepper. Hashes made with it only verify
// within the same process, which suits credentials hashed at startup.
func generatePepper() string {
	pepperBytes := make([]byte, 32)
	if _, err := rand.Read(pepperBytes); err != nil {
		util.Fatal("Failed to generate pepper", zap.Error(err))
	}
	return base64.RawURLEncoding.EncodeToString(pepperBytes)
}

func (h *Hasher) HashPassword(password string) (*HashResult, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := h.derive(password, salt, h.params.KeyLength)

	return &HashResult{
		Hash:      base64.RawURLEncoding.EncodeToString(hash),
		Salt:      base64.RawURLEncoding.EncodeToString(salt),
		Algorithm: "argon2id-v1",
	}, nil
}

func (h *Hasher) VerifyPassword(password string, hashResult *HashResult) (bool, error) {
	if hashResult == nil {
		return false, ErrInvalidHash
	}

	salt, err := base64.RawURLEncoding.DecodeString(hashResult.Salt)
	if err != nil {
		return false, ErrInvalidHash
	}

	expectedHash, err := base64.RawURLEncoding.DecodeString(hashResult.Hash)
	if err != nil || len(expectedHash) == 0 {
		return false, ErrInvalidHash
	}

	computedHash := h.derive(password, salt, uint32(len(expectedHash)))

	return subtle.ConstantTimeCompare(computedHash, expectedHash) == 1, nil
}

func (h *Hasher) derive(data string, salt []byte, keyLength uint32) []byte {
	contextualData := data + h.pepper + passwordContext
	return argon2.IDKey(
		[]byte(contextualData),
		salt,
		h.params.Iterations,
		h.params.Memory,
		h.params.Parallelism,
		keyLength,
	)
}
