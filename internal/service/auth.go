// Package service contains the business logic layer of the application.
//
// The structure follows the three-layer split:
//
//	Handler (HTTP)     → parses requests, writes responses
//	Service (business) → validates, enforces rules, orchestrates
//	Repository (data)  → reads/writes the database
//
// Services take repository interfaces, not concrete types, so tests can
// substitute mocks, and they return domain errors (apperror), never HTTP
// status codes.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/notes-api/internal/apperror"
	"github.com/sakif/notes-api/internal/auth"
	"github.com/sakif/notes-api/internal/model"
	"github.com/sakif/notes-api/internal/repository"
)

const (
	MaxUsernameLength = 64
	MaxPasswordLength = 72 // bcrypt input limit
)

// AuthService handles registration, password login, and Telegram federated
// login.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	telegram  *auth.TelegramVerifier
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	telegram *auth.TelegramVerifier,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		telegram:  telegram,
		logger:    logger,
	}
}

// TokenResult bundles an issued access token with its type, matching the
// OAuth2 bearer response shape.
type TokenResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register creates a password-authenticated account. The password is hashed
// before it reaches the repository; the plaintext is never stored or
// logged.
func (s *AuthService) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if len(username) > MaxUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or less", MaxUsernameLength))
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}
	if len(password) > MaxPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be %d bytes or less", MaxPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user, err := s.users.Create(ctx, username, hash)
	if err != nil {
		s.logger.Info("registration rejected",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("user registered",
		slog.Int64("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login verifies a username/password pair and issues an access token.
//
// A missing user and a wrong password produce the same error, so a caller
// cannot probe which usernames exist. Telegram-only accounts have no
// password hash and fail the same way.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenResult, error) {
	badCredentials := &apperror.AppError{
		Err:     apperror.ErrValidation,
		Message: "incorrect username or password",
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		s.logger.Warn("login failed", slog.String("username", username))
		return nil, badCredentials
	}

	if !s.passwords.Verify(password, user.PasswordHash) {
		s.logger.Warn("login failed", slog.String("username", username))
		return nil, badCredentials
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for %q: %w", username, err)
	}

	s.logger.Info("token issued", slog.String("username", username))

	return &TokenResult{AccessToken: token, TokenType: "bearer"}, nil
}

// CurrentUser resolves a validated token subject to the user record. The
// token may outlive knowledge of the user, so an absent row is an
// authorization failure, not an internal error.
func (s *AuthService) CurrentUser(ctx context.Context, username string) (*model.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		s.logger.Warn("token subject no longer resolves", slog.String("username", username))
		return nil, apperror.Unauthorized("could not validate credentials")
	}
	return user, nil
}

// TelegramLogin validates a signed Telegram identity assertion, resolves
// (or creates) the account, and issues a normal access token for it.
//
// The signature proves the assertion came from the bot; the session itself
// is established by the issued token, same as a password login.
func (s *AuthService) TelegramLogin(ctx context.Context, telegramID int64, username, hash string) (*TokenResult, error) {
	if !s.telegram.Verify(telegramID, username, hash) {
		s.logger.Warn("invalid telegram signature",
			slog.Int64("telegramID", telegramID),
			slog.String("username", username),
		)
		return nil, apperror.Forbidden("invalid telegram signature")
	}

	user, err := s.users.FindOrCreateByTelegramID(ctx, telegramID, username)
	if err != nil {
		s.logger.Error("telegram login: resolving user failed",
			slog.Int64("telegramID", telegramID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/auth: resolving telegram user %d: %w", telegramID, err)
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		s.logger.Error("telegram login: issuing token failed",
			slog.String("username", user.Username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/auth: issuing token for %q: %w", user.Username, err)
	}

	s.logger.Info("telegram login succeeded",
		slog.Int64("telegramID", telegramID),
		slog.String("username", user.Username),
	)

	return &TokenResult{AccessToken: token, TokenType: "bearer"}, nil
}
