package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrNoBearerToken is returned when a request carries no usable
// Authorization header.
var ErrNoBearerToken = errors.New("auth: missing bearer token")

// contextKey is an unexported type for context keys in this package.
// A package-private key type means only this package can read or write the
// subject value in a request context — no collisions with other packages.
type contextKey string

const subjectKey contextKey = "subject"

// RequireAuth enforces bearer-token authentication on protected routes.
//
// It reads the "Authorization: Bearer <token>" header, validates the token,
// and stores the subject (username) in the request context. A missing or
// invalid token ends the request with 401 and a {detail} body before the
// handler runs.
//
// Handlers that also need the full user record resolve it from the
// repository by username; RequireAuth only proves the token.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, err := extractSubject(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("WWW-Authenticate", "Bearer")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"detail":"could not validate credentials"}`))
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SubjectFromContext retrieves the authenticated username from the request
// context. Returns ("", false) if the request did not pass RequireAuth.
func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectKey).(string)
	return subject, ok && subject != ""
}

// extractSubject reads and validates the bearer token from the
// Authorization header.
func extractSubject(r *http.Request, tokens *TokenService) (string, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", ErrNoBearerToken
	}

	return tokens.Validate(token)
}
