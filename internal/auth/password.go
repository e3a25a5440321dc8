// Package auth — password hashing utilities.
//
// bcrypt generates a random salt per hash and embeds it in the output, so
// the same password produces different hash strings on every call while
// remaining verifiable. The cost factor controls how slow (and therefore
// how brute-force resistant) hashing is.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor. Cost 12 takes roughly 250ms on a
// modern server.
const defaultCost = 12

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct (not free functions) so the cost can be injected: tests use
// the minimum cost to avoid the ~250ms overhead per hash.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost (12).
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceWithCost creates a PasswordService with a custom cost.
// Tests pass bcrypt.MinCost; production code should use NewPasswordService.
func NewPasswordServiceWithCost(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes the given plaintext password with bcrypt.
//
// The output is a self-contained string (salt and cost included) that is
// stored directly in the users table. Returns an error if the plaintext is
// longer than 72 bytes — bcrypt silently truncates beyond that, so we
// reject explicitly.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify reports whether a plaintext password matches a stored bcrypt hash.
//
// A malformed or empty hash is not an error — it simply never matches.
// Accounts created through Telegram login have no password hash at all, and
// a login attempt against them must fail the same way as a wrong password.
//
// bcrypt.CompareHashAndPassword compares in constant time, so response
// timing does not reveal how close a guess was.
func (p *PasswordService) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
