// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// A user can authenticate with a password, with a Telegram identity, or
// both. PasswordHash is empty for accounts created through Telegram login,
// and TelegramID is zero for accounts created through /register. Every user
// has at least one of the two.
//
// PasswordHash and TelegramID are never serialized — the JSON shape of a
// user is always {id, username}.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	TelegramID   int64     `json:"-"` // zero when the account has no Telegram identity
	CreatedAt    time.Time `json:"-"`
}
