package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/notes-api/internal/apperror"
	"github.com/sakif/notes-api/internal/model"
	"github.com/sakif/notes-api/internal/repository"
)

const (
	MaxTitleLength   = 200
	MaxContentLength = 100000 // ~100KB
	MaxTagsPerNote   = 50
	MaxTagNameLength = 64
)

// NoteService handles business logic for notes. Every method takes the
// acting user's ID; the repository scopes all reads and writes by it, so a
// caller can never reach another user's notes through this service.
type NoteService struct {
	notes  repository.NoteRepository
	logger *slog.Logger
}

// NewNoteService creates a NoteService.
func NewNoteService(notes repository.NoteRepository, logger *slog.Logger) *NoteService {
	return &NoteService{
		notes:  notes,
		logger: logger,
	}
}

// Create validates and persists a new note with its tags.
func (s *NoteService) Create(ctx context.Context, ownerID int64, title, content string, tagNames []string) (*model.Note, error) {
	title = strings.TrimSpace(title)
	if err := validateNoteFields(title, content, tagNames); err != nil {
		return nil, err
	}

	note, err := s.notes.Create(ctx, ownerID, title, content, normalizeTags(tagNames))
	if err != nil {
		s.logger.Error("failed to create note",
			slog.Int64("ownerID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating note: %w", err)
	}

	s.logger.Info("note created",
		slog.Int64("ownerID", ownerID),
		slog.Int64("noteID", note.ID),
		slog.String("title", note.Title),
	)

	return note, nil
}

// List returns all notes owned by ownerID.
func (s *NoteService) List(ctx context.Context, ownerID int64) ([]model.Note, error) {
	notes, err := s.notes.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list notes",
			slog.Int64("ownerID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	return notes, nil
}

// Get returns a single note. Absent and not-owned are the same ErrNotFound.
func (s *NoteService) Get(ctx context.Context, ownerID, noteID int64) (*model.Note, error) {
	return s.notes.GetByOwnerAndID(ctx, ownerID, noteID)
}

// Update replaces a note's title and content, and its tag set when tagNames
// is non-empty. An empty tag list leaves existing tags in place.
func (s *NoteService) Update(ctx context.Context, ownerID, noteID int64, title, content string, tagNames []string) (*model.Note, error) {
	title = strings.TrimSpace(title)
	if err := validateNoteFields(title, content, tagNames); err != nil {
		return nil, err
	}

	note, err := s.notes.Update(ctx, ownerID, noteID, title, content, normalizeTags(tagNames))
	if err != nil {
		return nil, err
	}

	s.logger.Info("note updated",
		slog.Int64("ownerID", ownerID),
		slog.Int64("noteID", noteID),
	)

	return note, nil
}

// Delete removes a note. ErrNotFound covers both absence and foreign
// ownership.
func (s *NoteService) Delete(ctx context.Context, ownerID, noteID int64) error {
	if err := s.notes.Delete(ctx, ownerID, noteID); err != nil {
		return err
	}

	s.logger.Info("note deleted",
		slog.Int64("ownerID", ownerID),
		slog.Int64("noteID", noteID),
	)

	return nil
}

// SearchByTag returns the owner's notes tagged exactly tagName.
func (s *NoteService) SearchByTag(ctx context.Context, ownerID int64, tagName string) ([]model.Note, error) {
	tagName = strings.TrimSpace(tagName)
	if tagName == "" {
		return nil, apperror.ValidationFailed("tag", "tag name is required")
	}

	notes, err := s.notes.SearchByTag(ctx, ownerID, tagName)
	if err != nil {
		s.logger.Error("failed to search notes",
			slog.Int64("ownerID", ownerID),
			slog.String("tag", tagName),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("searching notes by tag: %w", err)
	}

	s.logger.Info("notes searched",
		slog.Int64("ownerID", ownerID),
		slog.String("tag", tagName),
		slog.Int("results", len(notes)),
	)

	return notes, nil
}

func validateNoteFields(title, content string, tagNames []string) error {
	if title == "" {
		return apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > MaxTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	if len(content) > MaxContentLength {
		return apperror.ValidationFailed("content",
			fmt.Sprintf("content must be %d characters or less", MaxContentLength))
	}
	if len(tagNames) > MaxTagsPerNote {
		return apperror.ValidationFailed("tags",
			fmt.Sprintf("at most %d tags per note", MaxTagsPerNote))
	}
	for _, name := range tagNames {
		if len(name) > MaxTagNameLength {
			return apperror.ValidationFailed("tags",
				fmt.Sprintf("tag names must be %d characters or less", MaxTagNameLength))
		}
	}
	return nil
}

// normalizeTags trims whitespace and drops empty names. A list that
// normalizes to empty behaves like an absent list (tags unchanged on
// update).
func normalizeTags(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}
