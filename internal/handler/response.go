// Package handler contains the HTTP layer: request decoding, calls
// into the service layer, and response encoding. Handlers never touch
// the database directly.
//
// Error responses use a single shape, {"detail": "..."}, so clients
// only ever have one field to look at. The status code comes from the
// apperror sentinel wrapped in the returned error.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/notes-api/internal/apperror"
)

// detailResponse is the body of every error (and some informational)
// response.
type detailResponse struct {
	Detail string `json:"detail"`
}

// writeJSON encodes v as the response body with the given status.
// Encoding failures are logged but not reported to the client: the
// status line has already been written by then.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError maps a service-layer error onto an HTTP status and a
// {"detail": ...} body. Unknown errors become an opaque 500 so internal
// details never leak to clients.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	detail := "internal server error"

	switch {
	case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrConflict):
		status = http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		logger.Error("unhandled error", slog.String("error", err.Error()))
	} else {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			detail = appErr.Message
		}
	}

	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}

	writeJSON(w, logger, status, detailResponse{Detail: detail})
}

// decodeJSON reads the request body into dst, rejecting bodies with
// unknown fields so typos surface as 400s instead of being silently
// dropped.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "invalid request body")
	}
	return nil
}
