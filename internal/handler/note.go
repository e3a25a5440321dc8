package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/notes-api/internal/apperror"
	"github.com/sakif/notes-api/internal/service"
)

// NoteHandler owns the notes CRUD and tag search endpoints. Every
// operation is scoped to the authenticated account: a note owned by
// someone else looks exactly like a note that does not exist.
type NoteHandler struct {
	notes  *service.NoteService
	auth   *service.AuthService
	logger *slog.Logger
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(notes *service.NoteService, authSvc *service.AuthService, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{notes: notes, auth: authSvc, logger: logger}
}

type noteRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// HandleCreate creates a note for the authenticated account.
//
// HTTP: POST /notes/
// REQUEST BODY: {"title": "T", "content": "C", "tags": ["x", "y"]}
// RESPONSE: 201 with the created note, tags included
func (h *NoteHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.auth)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	note, err := h.notes.Create(r.Context(), user.ID, req.Title, req.Content, req.Tags)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, note)
}

// HandleList returns every note the authenticated account owns.
//
// HTTP: GET /notes/
func (h *NoteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.auth)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	notes, err := h.notes.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, notes)
}

// HandleGet returns a single owned note.
//
// HTTP: GET /notes/{id}
func (h *NoteHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.auth)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	noteID, err := notePathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	note, err := h.notes.Get(r.Context(), user.ID, noteID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, note)
}

// HandleUpdate replaces a note's title and content. Tags are replaced
// only when the request carries a non-empty tag list; an absent or
// empty list leaves existing tags alone.
//
// HTTP: PUT /notes/{id}
// REQUEST BODY: {"title": "T", "content": "C", "tags": ["home"]}
func (h *NoteHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.auth)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	noteID, err := notePathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	note, err := h.notes.Update(r.Context(), user.ID, noteID, req.Title, req.Content, req.Tags)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, note)
}

// HandleDelete removes an owned note.
//
// HTTP: DELETE /notes/{id}
// RESPONSE: 200 {"detail": "note deleted"}
func (h *NoteHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.auth)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	noteID, err := notePathID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.notes.Delete(r.Context(), user.ID, noteID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, detailResponse{Detail: "note deleted"})
}

// HandleSearch returns the account's notes carrying an exact tag name.
//
// HTTP: GET /notes/search/{tag}
func (h *NoteHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.auth)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	notes, err := h.notes.SearchByTag(r.Context(), user.ID, chi.URLParam(r, "tag"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, notes)
}

// notePathID parses the {id} path segment. Non-numeric ids are 404s,
// the same as ids that point at nothing.
func notePathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperror.NotFound("note", 0)
	}
	return id, nil
}
