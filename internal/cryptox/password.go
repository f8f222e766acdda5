// Package cryptox wraps the password-hashing primitives used by the
// authentication service.
package cryptox

import "golang.org/x/crypto/bcrypt"

// DefaultCost is the bcrypt work factor used when the configuration does
// not override it.
const DefaultCost = bcrypt.DefaultCost

// HashPassword produces a salted bcrypt digest of the plaintext. The salt
// is generated internally, so hashing the same plaintext twice yields
// different digests. An error is returned only on invalid cost or
// entropy failure.
func HashPassword(plaintext string, cost int) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// CheckPassword reports whether the plaintext matches the stored digest.
// The comparison is constant-time; a mismatch or a malformed digest
// yields false, never an error.
func CheckPassword(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
