package service

import (
	"fmt"
	"sync"

	"securebank/internal/hashing"
	"securebank/internal/models"
)

type userRecord struct {
	user       models.User
	credential *hashing.HashResult
}

// UserDirectory holds the users allowed to sign in. Passwords are kept only
// as argon2id hashes.
type UserDirectory struct {
	mu     sync.RWMutex
	hasher *hashing.Hasher
	users  map[string]*userRecord
}

func NewUserDirectory(hasher *hashing.Hasher) *UserDirectory {
	return &UserDirectory{
		hasher: hasher,
		users:  make(map[string]*userRecord),
	}
}

// Add registers user, replacing any existing user with the same username.
func (d *UserDirectory) Add(user models.User, password string) error {
	if user.Username == "" || password == "" {
		return fmt.Errorf("add user: %w", ErrMissingCredentials)
	}

	credential, err := d.hasher.HashPassword(password)
	if err != nil {
		return fmt.Errorf("add user %s: %w", user.Username, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[user.Username] = &userRecord{user: user, credential: credential}
	return nil
}

// Authenticate reports whether password matches the stored hash for username.
func (d *UserDirectory) Authenticate(username, password string) (models.User, bool, error) {
	d.mu.RLock()
	rec, ok := d.users[username]
	d.mu.RUnlock()
	if !ok {
		return models.User{}, false, nil
	}

	match, err := d.hasher.VerifyPassword(password, rec.credential)
	if err != nil {
		return models.User{}, false, fmt.Errorf("verify password: %w", err)
	}
	if !match {
		return models.User{}, false, nil
	}
	return rec.user, true, nil
}

func (d *UserDirectory) Lookup(username string) (models.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	rec, ok := d.users[username]
	if !ok {
		return models.User{}, false
	}
	return rec.user, true
}
