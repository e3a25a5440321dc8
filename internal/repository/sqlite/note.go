package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/notes-api/internal/apperror"
	"github.com/sakif/notes-api/internal/model"
	"github.com/sakif/notes-api/internal/repository"
)

// NoteDB implements repository.NoteRepository over the shared connection
// pool. Obtain one with DB.Notes().
type NoteDB struct {
	conn *sql.DB
}

// compile-time check that *NoteDB implements repository.NoteRepository
var _ repository.NoteRepository = (*NoteDB)(nil)

// Create persists a note with its tag associations in one transaction, so a
// half-written note-with-tags state is never observable.
func (db *NoteDB) Create(ctx context.Context, ownerID int64, title, content string, tagNames []string) (*model.Note, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO notes (owner_id, title, content, created_at) VALUES (?, ?, ?, ?)`,
		ownerID, title, content, now,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: inserting note: %w", err)
	}

	noteID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading note id: %w", err)
	}

	tags, err := resolveTags(ctx, tx, tagNames)
	if err != nil {
		return nil, err
	}

	for _, tag := range tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO note_tags (note_id, tag_id) VALUES (?, ?)`,
			noteID, tag.ID,
		); err != nil {
			return nil, fmt.Errorf("sqlite: associating tag %q with note %d: %w", tag.Name, noteID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: committing note: %w", err)
	}

	return &model.Note{
		ID:        noteID,
		OwnerID:   ownerID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		Tags:      tags,
	}, nil
}

// resolveTags finds or creates a tag row for each distinct name. Repeated
// names collapse to one association; inserting the same (note, tag) pair
// twice would trip the note_tags primary key.
//
// The tags.name UNIQUE constraint makes the find-or-create safe under
// concurrency: INSERT ... ON CONFLICT(name) DO NOTHING is a no-op when
// another request created the tag first, and the SELECT that follows picks
// up whichever row won.
func resolveTags(ctx context.Context, tx *sql.Tx, names []string) ([]model.Tag, error) {
	tags := make([]model.Tag, 0, len(names))
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tags (name) VALUES (?) ON CONFLICT(name) DO NOTHING`,
			name,
		); err != nil {
			return nil, fmt.Errorf("sqlite: upserting tag %q: %w", name, err)
		}

		var tag model.Tag
		if err := tx.QueryRowContext(ctx,
			`SELECT id, name FROM tags WHERE name = ?`, name,
		).Scan(&tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("sqlite: resolving tag %q: %w", name, err)
		}
		tags = append(tags, tag)
	}

	return tags, nil
}

// ListByOwner returns every note owned by ownerID in storage order.
func (db *NoteDB) ListByOwner(ctx context.Context, ownerID int64) ([]model.Note, error) {
	return db.queryNotes(ctx,
		`SELECT id, owner_id, title, content, created_at, updated_at
		 FROM notes WHERE owner_id = ?`,
		ownerID,
	)
}

// GetByOwnerAndID retrieves a single note scoped by owner. A note owned by
// someone else is reported as not found — callers cannot distinguish
// "absent" from "not yours".
func (db *NoteDB) GetByOwnerAndID(ctx context.Context, ownerID, noteID int64) (*model.Note, error) {
	var (
		n         model.Note
		updatedAt sql.NullTime
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, owner_id, title, content, created_at, updated_at
		 FROM notes WHERE id = ? AND owner_id = ?`,
		noteID, ownerID,
	).Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &n.CreatedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("note", noteID)
		}
		return nil, fmt.Errorf("sqlite: getting note %d: %w", noteID, err)
	}
	if updatedAt.Valid {
		n.UpdatedAt = &updatedAt.Time
	}

	tagsByNote, err := db.loadTags(ctx, []int64{n.ID})
	if err != nil {
		return nil, err
	}
	// Keep "tags" a list in JSON even when the note has none.
	n.Tags = []model.Tag{}
	if tags, ok := tagsByNote[n.ID]; ok {
		n.Tags = tags
	}

	return &n, nil
}

// Update replaces title and content, and replaces the tag association set
// only when tagNames is non-empty. An empty tag list means "leave tags
// unchanged" — the asymmetry with Create is part of the contract.
func (db *NoteDB) Update(ctx context.Context, ownerID, noteID int64, title, content string, tagNames []string) (*model.Note, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`UPDATE notes SET title = ?, content = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?`,
		title, content, now, noteID, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating note %d: %w", noteID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFound("note", noteID)
	}

	if len(tagNames) > 0 {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM note_tags WHERE note_id = ?`, noteID,
		); err != nil {
			return nil, fmt.Errorf("sqlite: clearing tags for note %d: %w", noteID, err)
		}

		tags, err := resolveTags(ctx, tx, tagNames)
		if err != nil {
			return nil, err
		}
		for _, tag := range tags {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO note_tags (note_id, tag_id) VALUES (?, ?)`,
				noteID, tag.ID,
			); err != nil {
				return nil, fmt.Errorf("sqlite: associating tag %q with note %d: %w", tag.Name, noteID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: committing note update: %w", err)
	}

	return db.GetByOwnerAndID(ctx, ownerID, noteID)
}

// Delete removes a note; its note_tags rows go with it via the foreign-key
// cascade. Tag rows are never deleted — orphaned tags persist.
func (db *NoteDB) Delete(ctx context.Context, ownerID, noteID int64) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM notes WHERE id = ? AND owner_id = ?`,
		noteID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting note %d: %w", noteID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("note", noteID)
	}

	return nil
}

// SearchByTag returns the owner's notes carrying a tag with exactly the
// given name.
func (db *NoteDB) SearchByTag(ctx context.Context, ownerID int64, tagName string) ([]model.Note, error) {
	return db.queryNotes(ctx,
		`SELECT n.id, n.owner_id, n.title, n.content, n.created_at, n.updated_at
		 FROM notes n
		 JOIN note_tags nt ON nt.note_id = n.id
		 JOIN tags t ON t.id = nt.tag_id
		 WHERE n.owner_id = ? AND t.name = ?`,
		ownerID, tagName,
	)
}

// queryNotes runs a SELECT over the notes columns and attaches tags to each
// result with one extra query.
func (db *NoteDB) queryNotes(ctx context.Context, query string, args ...any) ([]model.Note, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying notes: %w", err)
	}
	defer rows.Close()

	notes := []model.Note{}
	for rows.Next() {
		var (
			n         model.Note
			updatedAt sql.NullTime
		)
		if err := rows.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &n.CreatedAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning note row: %w", err)
		}
		if updatedAt.Valid {
			n.UpdatedAt = &updatedAt.Time
		}
		n.Tags = []model.Tag{}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating notes: %w", err)
	}

	if len(notes) == 0 {
		return notes, nil
	}

	ids := make([]int64, len(notes))
	for i, n := range notes {
		ids[i] = n.ID
	}
	tagsByNote, err := db.loadTags(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range notes {
		if tags, ok := tagsByNote[notes[i].ID]; ok {
			notes[i].Tags = tags
		}
	}

	return notes, nil
}

// loadTags fetches the tags for a set of notes in a single query and groups
// them by note id.
func (db *NoteDB) loadTags(ctx context.Context, noteIDs []int64) (map[int64][]model.Tag, error) {
	placeholders := strings.Repeat("?,", len(noteIDs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(noteIDs))
	for i, id := range noteIDs {
		args[i] = id
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT nt.note_id, t.id, t.name
		 FROM note_tags nt
		 JOIN tags t ON t.id = nt.tag_id
		 WHERE nt.note_id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading tags: %w", err)
	}
	defer rows.Close()

	tagsByNote := make(map[int64][]model.Tag, len(noteIDs))
	for rows.Next() {
		var (
			noteID int64
			tag    model.Tag
		)
		if err := rows.Scan(&noteID, &tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag row: %w", err)
		}
		tagsByNote[noteID] = append(tagsByNote[noteID], tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tags: %w", err)
	}

	return tagsByNote, nil
}
