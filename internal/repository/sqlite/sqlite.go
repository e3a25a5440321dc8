// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// modernc.org/sqlite is a pure-Go translation of SQLite — no CGo, no C
// compiler, works everywhere Go works. The driver registers itself with
// database/sql under the name "sqlite" via the blank import below.
//
// The connection is opened in WAL mode so reads proceed concurrently with a
// write, and foreign keys are switched on (SQLite leaves them off by
// default) so note_tags rows cannot outlive their note.
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements the repository
// interfaces.
type DB struct {
	conn *sql.DB
}

// New creates a SQLite connection pool and runs migrations.
//
// dbPath examples:
//   - "data/notes.db" → file-based database (persistent)
//   - ":memory:"      → in-memory database (tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// sql.Open doesn't actually connect; Ping surfaces a bad path or
	// permission problem immediately instead of on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	// A writer that hits the single-writer lock waits up to 5s instead of
	// failing immediately with SQLITE_BUSY. Past the timeout the error
	// surfaces as a generic persistence failure.
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Callers defer this right after New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Users returns the user repository backed by this database.
func (db *DB) Users() *UserDB {
	return &UserDB{conn: db.conn}
}

// Notes returns the note repository backed by this database.
func (db *DB) Notes() *NoteDB {
	return &NoteDB{conn: db.conn}
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it
// idempotent across restarts.
//
// Constraints that the domain depends on:
//   - users.username UNIQUE      → duplicate registration is a conflict
//   - users.telegram_id UNIQUE   → one account per Telegram identity
//   - tags.name UNIQUE           → concurrent find-or-create of the same
//     tag name cannot produce duplicates; the loser of the race re-reads
//   - note_tags FK ON DELETE CASCADE → deleting a note drops its
//     associations (tag rows themselves are never deleted)
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			telegram_id   INTEGER UNIQUE,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS notes (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id   INTEGER NOT NULL REFERENCES users(id),
			title      TEXT NOT NULL,
			content    TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME
		);
		CREATE INDEX IF NOT EXISTS idx_notes_owner_id ON notes(owner_id);

		CREATE TABLE IF NOT EXISTS tags (
			id   INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS note_tags (
			note_id INTEGER NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
			tag_id  INTEGER NOT NULL REFERENCES tags(id),
			PRIMARY KEY (note_id, tag_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}
