package service

import (
	"context"

	"github.com/sakif/notes-api/internal/model"
	"github.com/sakif/notes-api/internal/repository"
)

// mockUserRepo implements repository.UserRepository with overridable
// function fields, so each test stubs exactly the calls it expects.
type mockUserRepo struct {
	createFn       func(ctx context.Context, username, passwordHash string) (*model.User, error)
	getFn          func(ctx context.Context, username string) (*model.User, error)
	findOrCreateFn func(ctx context.Context, telegramID int64, username string) (*model.User, error)
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

func (m *mockUserRepo) Create(ctx context.Context, username, passwordHash string) (*model.User, error) {
	return m.createFn(ctx, username, passwordHash)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return m.getFn(ctx, username)
}

func (m *mockUserRepo) FindOrCreateByTelegramID(ctx context.Context, telegramID int64, username string) (*model.User, error) {
	return m.findOrCreateFn(ctx, telegramID, username)
}

// mockNoteRepo implements repository.NoteRepository the same way.
type mockNoteRepo struct {
	createFn func(ctx context.Context, ownerID int64, title, content string, tagNames []string) (*model.Note, error)
	listFn   func(ctx context.Context, ownerID int64) ([]model.Note, error)
	getFn    func(ctx context.Context, ownerID, noteID int64) (*model.Note, error)
	updateFn func(ctx context.Context, ownerID, noteID int64, title, content string, tagNames []string) (*model.Note, error)
	deleteFn func(ctx context.Context, ownerID, noteID int64) error
	searchFn func(ctx context.Context, ownerID int64, tagName string) ([]model.Note, error)
}

var _ repository.NoteRepository = (*mockNoteRepo)(nil)

func (m *mockNoteRepo) Create(ctx context.Context, ownerID int64, title, content string, tagNames []string) (*model.Note, error) {
	return m.createFn(ctx, ownerID, title, content, tagNames)
}

func (m *mockNoteRepo) ListByOwner(ctx context.Context, ownerID int64) ([]model.Note, error) {
	return m.listFn(ctx, ownerID)
}

func (m *mockNoteRepo) GetByOwnerAndID(ctx context.Context, ownerID, noteID int64) (*model.Note, error) {
	return m.getFn(ctx, ownerID, noteID)
}

func (m *mockNoteRepo) Update(ctx context.Context, ownerID, noteID int64, title, content string, tagNames []string) (*model.Note, error) {
	return m.updateFn(ctx, ownerID, noteID, title, content, tagNames)
}

func (m *mockNoteRepo) Delete(ctx context.Context, ownerID, noteID int64) error {
	return m.deleteFn(ctx, ownerID, noteID)
}

func (m *mockNoteRepo) SearchByTag(ctx context.Context, ownerID int64, tagName string) ([]model.Note, error) {
	return m.searchFn(ctx, ownerID, tagName)
}
