// Package model defines the data structures used throughout the application.
package model

import "time"

// Note is a tagged text note owned by a single user.
//
// OwnerID scopes all access: a note is visible and mutable only by its
// owner, and the API reports notes owned by someone else as not found.
//
// UpdatedAt is a pointer so it serializes as null until the note is
// updated for the first time.
type Note struct {
	ID        int64      `json:"id"`
	OwnerID   int64      `json:"-"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
	Tags      []Tag      `json:"tags"`
}

// Tag is a globally shared label. Tag identity is by name — the same name
// referenced from two users' notes resolves to one row. Tags are created
// lazily on first reference and never deleted.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
