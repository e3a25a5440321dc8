// Package auth provides session tokens, password hashing, and the Telegram
// federated-login verifier for the notes API.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. POST /register stores username + bcrypt hash
// 2. POST /token verifies the password and issues a JWT access token
// 3. On subsequent API calls, middleware reads the Authorization header,
//    validates the JWT, and sets the subject (username) in the request context
//
// The token is stateless — no session is stored server-side. All the
// information needed (subject, expiry) is inside the signed token, so
// validation is a pure function of the token string and the secret.
// Rotating the secret invalidates every outstanding token.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/notes-api/internal/apperror"
)

// DefaultTokenTTL is the lifetime of access tokens issued by Issue.
const DefaultTokenTTL = 30 * time.Minute

const tokenIssuer = "notes-api"

// TokenService issues and validates signed session tokens.
//
// It holds the HMAC secret used to sign and verify. The same secret must be
// used for both operations; it is injected here (not read from a global) so
// the service is testable in isolation.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: token secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload. The registered "sub" claim carries the
// username the token was issued for.
type claims struct {
	jwt.RegisteredClaims
}

// Issue creates and signs an access token for the given subject with the
// default TTL.
//
// Signing algorithm: HS256 (HMAC-SHA256). Symmetric — the same secret
// signs and verifies.
func (s *TokenService) Issue(subject string) (string, error) {
	return s.IssueWithTTL(subject, DefaultTokenTTL)
}

// IssueWithTTL creates a token with a custom expiry duration. Used by tests
// to mint already-expired tokens.
func (s *TokenService) IssueWithTTL(subject string, ttl time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a token string and returns the embedded
// subject.
//
// Checks performed by the jwt library:
//   - signature is valid for our secret
//   - expiry is in the future
//   - issuer matches (rejects tokens minted by other apps)
//   - algorithm is HS256 (rejects algorithm-confusion tokens)
//
// Failures come back as apperror.ErrUnauthorized so the HTTP layer maps
// them to 401 without inspecting the cause; an expired token is still
// distinguishable through the wrapped jwt.ErrTokenExpired.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: %w", apperror.Unauthorized("token expired"), err)
		}
		return "", fmt.Errorf("%w: %w", apperror.Unauthorized("invalid token"), err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", apperror.Unauthorized("invalid token claims")
	}

	if c.Subject == "" {
		return "", apperror.Unauthorized("token has no subject")
	}

	return c.Subject, nil
}
