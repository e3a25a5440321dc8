package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/notes-api/internal/apperror"
	"github.com/sakif/notes-api/internal/model"
	"github.com/sakif/notes-api/internal/repository"
)

// UserDB implements repository.UserRepository over the shared connection
// pool. Obtain one with DB.Users().
type UserDB struct {
	conn *sql.DB
}

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// The driver exposes the SQLite extended result code on its error type, so
// we don't have to match on error strings.
func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		return serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			serr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// Create inserts a new password-authenticated user.
//
// The username UNIQUE constraint is the source of truth for duplicates: a
// violation maps to apperror.ErrConflict rather than a lookup-then-insert
// race.
func (db *UserDB) Create(ctx context.Context, username, passwordHash string) (*model.User, error) {
	now := time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username, passwordHash, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.Conflict("username already registered")
		}
		return nil, fmt.Errorf("sqlite: inserting user %q: %w", username, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading user id: %w", err)
	}

	return &model.User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, nil
}

// GetByUsername retrieves a user by username. Returns apperror.ErrNotFound
// if no user exists.
func (db *UserDB) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, password_hash, COALESCE(telegram_id, 0), created_at
		 FROM users WHERE username = ?`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.TelegramID, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &apperror.AppError{
				Err:     apperror.ErrNotFound,
				Message: fmt.Sprintf("user %q not found", username),
			}
		}
		return nil, fmt.Errorf("sqlite: getting user %q: %w", username, err)
	}

	return &u, nil
}

// FindOrCreateByTelegramID resolves a Telegram identity to a user account,
// creating one on first login.
//
// Two races are handled through the schema's UNIQUE constraints:
//   - telegram_id: two concurrent first logins for the same identity — the
//     loser of the insert re-reads the winner's row.
//   - username: the Telegram username may already belong to a password
//     account. The new account is created as "<username>-tg<id>" instead,
//     which is unique per Telegram identity and leaves the existing
//     account untouched.
func (db *UserDB) FindOrCreateByTelegramID(ctx context.Context, telegramID int64, username string) (*model.User, error) {
	if u, err := db.getByTelegramID(ctx, telegramID); err == nil {
		return u, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	now := time.Now().UTC()
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (username, telegram_id, created_at) VALUES (?, ?, ?)`,
		username, telegramID, now,
	)
	if err != nil && isUniqueViolation(err) {
		// Someone else may have just created this identity.
		if u, lookupErr := db.getByTelegramID(ctx, telegramID); lookupErr == nil {
			return u, nil
		}
		// Otherwise the username is taken by a different account; retry
		// with a deterministic suffix.
		username = fmt.Sprintf("%s-tg%d", username, telegramID)
		result, err = db.conn.ExecContext(ctx,
			`INSERT INTO users (username, telegram_id, created_at) VALUES (?, ?, ?)`,
			username, telegramID, now,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: creating telegram user %d: %w", telegramID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading user id: %w", err)
	}

	return &model.User{
		ID:         id,
		Username:   username,
		TelegramID: telegramID,
		CreatedAt:  now,
	}, nil
}

func (db *UserDB) getByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, password_hash, COALESCE(telegram_id, 0), created_at
		 FROM users WHERE telegram_id = ?`,
		telegramID,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.TelegramID, &u.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &u, nil
}
