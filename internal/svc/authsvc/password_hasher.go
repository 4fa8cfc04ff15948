package authsvc

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkrupp/myflix/internal/domain"
)

// PasswordHasher turns plaintext passwords into salted one-way hashes and checks them.
type PasswordHasher interface {
	// Hash returns a salted hash of plaintext. Two calls on the same input differ.
	// Returns domain.ErrInvalidCredentialInput for an empty plaintext.
	Hash(plaintext string) (string, error)

	// Verify reports whether plaintext matches hashed.
	Verify(plaintext, hashed string) bool
}

// BcryptHasher implements PasswordHasher with bcrypt.
type BcryptHasher struct {
	Cost int

	dummyOnce sync.Once
	dummy     []byte
}

var _ PasswordHasher = (*BcryptHasher)(nil)

// NewBcryptHasher creates a hasher with the given cost, falling back to bcrypt.DefaultCost
// when cost is outside bcrypt's range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &BcryptHasher{Cost: cost}
}

// Hash implements PasswordHasher.Hash.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", domain.ErrInvalidCredentialInput
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.Cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", errors.Join(domain.ErrInvalidCredentialInput, err)
		}

		return "", fmt.Errorf("generate hash: %w", err)
	}

	return string(hashed), nil
}

// Verify implements PasswordHasher.Verify.
func (h *BcryptHasher) Verify(plaintext, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}

// Burn performs a comparison of the same cost as Verify against a throwaway hash.
// Login calls it for unknown usernames so both failure paths take similar time.
func (h *BcryptHasher) Burn(plaintext string) {
	h.dummyOnce.Do(func() {
		h.dummy, _ = bcrypt.GenerateFromPassword([]byte("myflix-dummy-password"), h.Cost)
	})

	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plaintext))
}
