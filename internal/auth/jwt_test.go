package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sakif/notes-api/internal/apperror"
)

// newTestTokenService creates a TokenService with a fixed, known secret so
// tests are deterministic.
func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

// =========================================================================
// TOKEN SERVICE CONSTRUCTION TESTS
// =========================================================================

func TestNewTokenService_ShortSecret(t *testing.T) {
	_, err := NewTokenService("short")
	if err == nil {
		t.Fatal("NewTokenService() should reject secrets shorter than 16 chars")
	}
}

func TestNewTokenService_ValidSecret(t *testing.T) {
	_, err := NewTokenService("this-is-16-chars")
	if err != nil {
		t.Fatalf("NewTokenService() unexpected error for valid secret: %v", err)
	}
}

// =========================================================================
// ISSUE TESTS
// =========================================================================

func TestIssue_ReturnsWellFormedToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token == "" {
		t.Error("Issue() returned empty token")
	}

	// JWTs have 3 dot-separated parts: header.payload.signature
	if parts := strings.Split(token, "."); len(parts) != 3 {
		t.Errorf("Issue() token has %d segments, want 3", len(parts))
	}
}

func TestIssue_DifferentSubjectsGetDifferentTokens(t *testing.T) {
	ts := newTestTokenService(t)

	token1, _ := ts.Issue("alice")
	token2, _ := ts.Issue("bob")

	if token1 == token2 {
		t.Error("Issue() returned identical tokens for different subjects")
	}
}

// =========================================================================
// VALIDATE TESTS
// =========================================================================

func TestValidate_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	got, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got != "alice" {
		t.Errorf("Validate() subject = %q, want %q", got, "alice")
	}
}

func TestValidate_ExpiredToken(t *testing.T) {
	ts := newTestTokenService(t)

	// A token that expired one second ago.
	token, err := ts.IssueWithTTL("alice", -1*time.Second)
	if err != nil {
		t.Fatalf("IssueWithTTL() error = %v", err)
	}

	_, err = ts.Validate(token)
	if err == nil {
		t.Fatal("Validate() should return an error for an expired token")
	}
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("Validate() error = %v, want ErrUnauthorized", err)
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Errorf("Validate() error %q should mention expiry", err)
	}
}

func TestValidate_TamperedToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, _ := ts.Issue("alice")

	// Flip a character in the signature (the segment after the 2nd dot).
	tampered := token[:len(token)-1]
	if strings.HasSuffix(token, "A") {
		tampered += "B"
	} else {
		tampered += "A"
	}

	_, err := ts.Validate(tampered)
	if err == nil {
		t.Fatal("Validate() should reject a tampered token")
	}
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("Validate() error = %v, want ErrUnauthorized", err)
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	ts := newTestTokenService(t)
	other, err := NewTokenService("a-completely-different-secret!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	token, _ := other.Issue("alice")

	if _, err := ts.Validate(token); err == nil {
		t.Fatal("Validate() should reject a token signed with a different secret")
	}
}

func TestValidate_Garbage(t *testing.T) {
	ts := newTestTokenService(t)

	for _, tokenStr := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := ts.Validate(tokenStr); err == nil {
			t.Errorf("Validate(%q) should fail", tokenStr)
		}
	}
}
