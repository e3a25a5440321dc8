// Package middleware contains HTTP middleware for the notes API: request
// logging and per-client admission control.
//
// A middleware wraps an http.Handler to add cross-cutting behaviour without
// modifying the handler itself:
//
//	func MyMiddleware(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        // before the handler
//	        next.ServeHTTP(w, r)
//	        // after the handler
//	    })
//	}
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"
)

// responseWriter wraps http.ResponseWriter to capture the status code and
// bytes written — the standard library doesn't expose either after the
// response has been sent.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Logger returns a middleware that logs each request with slog.
//
// Each line carries a request id (xid — 20 chars, sortable by time),
// method, path, client address, status, duration, and bytes written. The
// request id is also echoed in the X-Request-ID response header so a client
// report can be matched to a log line.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := xid.New().String()
			w.Header().Set("X-Request-ID", reqID)

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK, // default if WriteHeader is never called
			}

			next.ServeHTTP(wrapped, r)

			logger.Info("request completed",
				slog.String("requestID", reqID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("client", r.RemoteAddr),
				slog.Int("status", wrapped.statusCode),
				slog.Duration("duration", time.Since(start)),
				slog.Int64("bytes", wrapped.written),
			)
		})
	}
}
