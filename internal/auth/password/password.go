// Package password wraps bcrypt hashing behind a small interface so
// services and tests do not touch the cost parameter directly.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch is returned when a password does not match its hash.
var ErrMismatch = errors.New("password_mismatch")

// ErrTooShort is returned for passwords under the minimum length.
var ErrTooShort = errors.New("password_too_short")

const minLength = 8

// Hasher hashes and verifies login passwords.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) error
}

type bcryptHasher struct {
	cost int
}

// NewHasher returns a bcrypt-backed Hasher at the default cost.
func NewHasher() Hasher {
	return &bcryptHasher{cost: bcrypt.DefaultCost}
}

func (h *bcryptHasher) Hash(plain string) (string, error) {
	if len(plain) < minLength {
		return "", ErrTooShort
	}
	out, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (h *bcryptHasher) Verify(hash, plain string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); err != nil {
		return ErrMismatch
	}
	return nil
}
