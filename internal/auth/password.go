package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MaxPasswordBytes is the longest password accepted at the input boundary.
	MaxPasswordBytes = 70
	// significantPasswordBytes is how much of a password bcrypt actually uses.
	significantPasswordBytes = 71
	DefaultBcryptCost        = 10
)

// PasswordHasher hashes and verifies credentials with bcrypt at a fixed cost.
type PasswordHasher struct {
	cost  int
	dummy string
}

// NewPasswordHasher returns a hasher using cost, or DefaultBcryptCost when cost is out of range.
// It hashes a random secret up front for DummyHash.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost, dummy: dummyHash(cost)}
}

// Hash returns a bcrypt hash of the password. Bytes past the first 71 are ignored.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(significant(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. Malformed hashes never match.
func (h *PasswordHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), significant(plaintext)) == nil
}

// DummyHash returns a hash of a random secret at the configured cost. Comparing
// against it costs the same as a real comparison and never matches.
func (h *PasswordHasher) DummyHash() string {
	return h.dummy
}

func dummyHash(cost int) string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	// The secret is 64 bytes and cost is in range, so this cannot fail.
	hash, _ := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(buf)), cost)
	return string(hash)
}

func significant(plaintext string) []byte {
	b := []byte(plaintext)
	if len(b) > significantPasswordBytes {
		b = b[:significantPasswordBytes]
	}
	return b
}
