// Package auth implements the session token codec: issuing and verifying
// HMAC-signed, expiring tokens bound to an account identifier. The tokens
// are stateless; validity is a pure function of signature and clock.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Typed verification failures. Callers must treat all three as "not
// authenticated"; the distinction exists for diagnostics.
var (
	ErrTokenMalformed        = errors.New("malformed token")
	ErrTokenSignatureInvalid = errors.New("token signature mismatch")
	ErrTokenExpired          = errors.New("token expired")
)

// Session is the decoded, verified view of a session token. It exists only
// transiently per request and is never stored.
type Session struct {
	AccountID string
	ExpiresAt time.Time
}

// IssueToken mints a signed HS256 token with subject = accountID,
// issued-at = now and expiry = now + ttl. The signature covers the full
// payload, so tampering with any claim invalidates the token.
func IssueToken(accountID string, secretKey []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   accountID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	return token.SignedString(secretKey)
}

// VerifyToken recomputes the signature over the claimed payload and checks
// the expiry against the current time. On success it returns the decoded
// Session; on failure one of ErrTokenMalformed, ErrTokenSignatureInvalid
// or ErrTokenExpired.
func VerifyToken(tokenString string, secretKey []byte) (*Session, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignatureInvalid
		default:
			return nil, ErrTokenMalformed
		}
	}

	if !token.Valid || claims.Subject == "" {
		return nil, ErrTokenMalformed
	}

	session := &Session{AccountID: claims.Subject}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}
