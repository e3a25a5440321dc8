package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sakif/notes-api/internal/model"
)

// newTestDB creates a throwaway database in a temp directory. A file-backed
// database (rather than ":memory:") behaves correctly when the pool opens
// more than one connection, which the concurrency tests rely on.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

// createTestUser creates a user and fails the test on error.
func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()

	user, err := db.Users().Create(context.Background(), username, "$2a$04$fakehashforrepositorytests")
	if err != nil {
		t.Fatalf("failed to create test user %q: %v", username, err)
	}
	return user
}

// createTestNote creates a note and fails the test on error.
func createTestNote(t *testing.T, db *DB, ownerID int64, title string, tags []string) *model.Note {
	t.Helper()

	note, err := db.Notes().Create(context.Background(), ownerID, title, "content of "+title, tags)
	if err != nil {
		t.Fatalf("failed to create test note %q: %v", title, err)
	}
	return note
}
