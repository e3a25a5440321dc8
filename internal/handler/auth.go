package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/notes-api/internal/apperror"
	"github.com/sakif/notes-api/internal/auth"
	"github.com/sakif/notes-api/internal/model"
	"github.com/sakif/notes-api/internal/service"
)

// AuthHandler owns account endpoints: registration, credential and
// Telegram login, and the current-user lookup.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: authSvc, logger: logger}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// HandleRegister creates a new account.
//
// HTTP: POST /register
// REQUEST BODY: {"username": "carol", "password": "pw123"}
// RESPONSE: 201 {"id": 1, "username": "carol"}
//
// A username that is already taken yields 400, matching the error shape
// of every other validation failure.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, userResponse{
		ID:       user.ID,
		Username: user.Username,
	})
}

// HandleToken exchanges a username and password for a bearer token.
//
// HTTP: POST /token
// REQUEST BODY: form-encoded, username=carol&password=pw123
// RESPONSE: 200 {"access_token": "...", "token_type": "bearer"}
//
// The body is a form, not JSON, so standard OAuth2 password-flow
// clients can post to it directly.
func (h *AuthHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, h.logger, apperror.ValidationFailed("body", "invalid form body"))
		return
	}

	result, err := h.auth.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, result)
}

// HandleMe returns the account behind the request's bearer token.
//
// HTTP: GET /users/me
// RESPONSE: 200 {"id": 1, "username": "carol"}
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.auth)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, userResponse{
		ID:       user.ID,
		Username: user.Username,
	})
}

type telegramLoginRequest struct {
	TelegramID int64  `json:"telegram_id"`
	Username   string `json:"telegram_username"`
	Hash       string `json:"hash"`
}

// HandleTelegramLogin authenticates a Telegram identity assertion.
//
// HTTP: POST /auth/telegram-login
// REQUEST BODY: {"telegram_id": 42, "telegram_username": "bob", "hash": "..."}
// RESPONSE: 200 {"access_token": "...", "token_type": "bearer"}
//
// A bad signature is 403: the caller presented credentials, they just
// don't verify.
func (h *AuthHandler) HandleTelegramLogin(w http.ResponseWriter, r *http.Request) {
	var req telegramLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.auth.TelegramLogin(r.Context(), req.TelegramID, req.Username, req.Hash)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, result)
}

// currentUser resolves the token subject stored by the auth middleware
// into a full account. The account is re-read on every request, so a
// token for a deleted user stops working immediately.
func currentUser(r *http.Request, authSvc *service.AuthService) (*model.User, error) {
	subject, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		return nil, apperror.Unauthorized("could not validate credentials")
	}
	return authSvc.CurrentUser(r.Context(), subject)
}
