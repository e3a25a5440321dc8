// Package repository declares the persistence interfaces the service layer
// programs against. The sqlite subpackage is the concrete implementation;
// tests substitute their own.
package repository

import (
	"context"

	"github.com/sakif/notes-api/internal/model"
)

// UserRepository manages user accounts.
type UserRepository interface {
	// Create inserts a new password-authenticated user. Returns
	// apperror.ErrConflict if the username is already registered.
	Create(ctx context.Context, username, passwordHash string) (*model.User, error)

	// GetByUsername returns apperror.ErrNotFound if no such user exists.
	GetByUsername(ctx context.Context, username string) (*model.User, error)

	// FindOrCreateByTelegramID looks a user up by Telegram identity and
	// creates one on first login. If the Telegram username is already
	// taken by another account, the new account gets a deterministic
	// "-tg<id>" suffix instead.
	FindOrCreateByTelegramID(ctx context.Context, telegramID int64, username string) (*model.User, error)
}

// NoteRepository manages notes and their tags. Every operation is scoped by
// the owner's user ID: a note that exists but belongs to someone else
// behaves exactly like a note that does not exist.
type NoteRepository interface {
	// Create persists a note and its tag associations atomically,
	// creating missing tags by name.
	Create(ctx context.Context, ownerID int64, title, content string, tagNames []string) (*model.Note, error)

	ListByOwner(ctx context.Context, ownerID int64) ([]model.Note, error)

	// GetByOwnerAndID returns apperror.ErrNotFound when the note is
	// absent or owned by another user.
	GetByOwnerAndID(ctx context.Context, ownerID, noteID int64) (*model.Note, error)

	// Update replaces title and content, and — only when tagNames is
	// non-empty — the full tag association set. An empty tagNames leaves
	// the existing tags untouched.
	Update(ctx context.Context, ownerID, noteID int64, title, content string, tagNames []string) (*model.Note, error)

	// Delete returns apperror.ErrNotFound when the note is absent or not
	// owned.
	Delete(ctx context.Context, ownerID, noteID int64) error

	// SearchByTag returns the owner's notes carrying a tag with exactly
	// the given name.
	SearchByTag(ctx context.Context, ownerID int64, tagName string) ([]model.Note, error)
}
