package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/notes-api/internal/apperror"
	"github.com/sakif/notes-api/internal/model"
)

func newTestNoteService(notes *mockNoteRepo) *NoteService {
	return NewNoteService(notes, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNoteServiceCreate(t *testing.T) {
	notes := &mockNoteRepo{
		createFn: func(ctx context.Context, ownerID int64, title, content string, tagNames []string) (*model.Note, error) {
			assert.Equal(t, int64(7), ownerID)
			assert.Equal(t, "T", title)
			assert.Equal(t, []string{"x", "y"}, tagNames)
			return &model.Note{ID: 1, OwnerID: ownerID, Title: title, Content: content}, nil
		},
	}
	s := newTestNoteService(notes)

	note, err := s.Create(context.Background(), 7, "  T  ", "C", []string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), note.ID)
}

func TestNoteServiceCreate_Validation(t *testing.T) {
	s := newTestNoteService(&mockNoteRepo{})

	tests := []struct {
		name    string
		title   string
		content string
		tags    []string
	}{
		{"empty title", "", "c", nil},
		{"whitespace title", "   ", "c", nil},
		{"oversized title", strings.Repeat("t", MaxTitleLength+1), "c", nil},
		{"oversized content", "t", strings.Repeat("c", MaxContentLength+1), nil},
		{"oversized tag name", "t", "c", []string{strings.Repeat("x", MaxTagNameLength+1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(context.Background(), 1, tt.title, tt.content, tt.tags)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestNoteServiceCreate_NormalizesTags(t *testing.T) {
	notes := &mockNoteRepo{
		createFn: func(ctx context.Context, ownerID int64, title, content string, tagNames []string) (*model.Note, error) {
			assert.Equal(t, []string{"work"}, tagNames)
			return &model.Note{ID: 1}, nil
		},
	}
	s := newTestNoteService(notes)

	_, err := s.Create(context.Background(), 1, "T", "C", []string{" work ", "", "  "})
	require.NoError(t, err)
}

func TestNoteServiceUpdate_PassesTagsThrough(t *testing.T) {
	var gotTags []string
	notes := &mockNoteRepo{
		updateFn: func(ctx context.Context, ownerID, noteID int64, title, content string, tagNames []string) (*model.Note, error) {
			gotTags = tagNames
			return &model.Note{ID: noteID, OwnerID: ownerID, Title: title, Content: content}, nil
		},
	}
	s := newTestNoteService(notes)

	// A list of blank names normalizes to empty — the repository then
	// treats it as "tags unchanged", same as no list at all.
	_, err := s.Update(context.Background(), 1, 2, "T", "C", []string{"  "})
	require.NoError(t, err)
	assert.Empty(t, gotTags)

	_, err = s.Update(context.Background(), 1, 2, "T", "C", []string{"home"})
	require.NoError(t, err)
	assert.Equal(t, []string{"home"}, gotTags)
}

func TestNoteServiceUpdate_NotFoundPassthrough(t *testing.T) {
	notes := &mockNoteRepo{
		updateFn: func(ctx context.Context, ownerID, noteID int64, title, content string, tagNames []string) (*model.Note, error) {
			return nil, apperror.NotFound("note", noteID)
		},
	}
	s := newTestNoteService(notes)

	_, err := s.Update(context.Background(), 1, 99, "T", "C", nil)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestNoteServiceDelete_NotFoundPassthrough(t *testing.T) {
	notes := &mockNoteRepo{
		deleteFn: func(ctx context.Context, ownerID, noteID int64) error {
			return apperror.NotFound("note", noteID)
		},
	}
	s := newTestNoteService(notes)

	err := s.Delete(context.Background(), 1, 99)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestNoteServiceSearchByTag_EmptyTag(t *testing.T) {
	s := newTestNoteService(&mockNoteRepo{})

	_, err := s.SearchByTag(context.Background(), 1, "   ")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
