// Package server wires the application together: database, services,
// handlers, middleware, and routes, plus the HTTP server lifecycle.
//
// All dependency injection happens here, in one place. main.go only
// loads configuration and calls New + Start.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/notes-api/internal/auth"
	"github.com/sakif/notes-api/internal/handler"
	"github.com/sakif/notes-api/internal/middleware"
	sqliteRepo "github.com/sakif/notes-api/internal/repository/sqlite"
	"github.com/sakif/notes-api/internal/service"
)

// Config holds server configuration, loaded from the environment by
// main.go.
type Config struct {
	Port int

	// DBPath is the SQLite database file. The parent directory must
	// already exist.
	DBPath string

	// Secret signs session tokens and verifies Telegram login
	// signatures. At least 16 characters.
	Secret string

	// RateLimit / RateWindow bound how many requests a single client IP
	// may make per window. Zero values fall back to the middleware
	// defaults (60 requests per minute).
	RateLimit  int
	RateWindow time.Duration
}

// Server owns the router and the database connection. The connection
// is closed during graceful shutdown so the WAL is flushed before the
// process exits.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and assembles the full dependency chain:
// repositories, auth primitives, services, handlers, routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router, mainly so tests can mount the whole
// application on an httptest server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database connection. Start does this on its own;
// Close exists for callers that never reach Start.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures middleware and the route table.
//
// ROUTE STRUCTURE:
// POST   /register               → create an account
// POST   /token                  → password login (form body)
// POST   /auth/telegram-login    → Telegram signature login
// GET    /users/me               → current account        [auth]
// POST   /notes/                 → create note            [auth]
// GET    /notes/                 → list own notes         [auth]
// GET    /notes/{id}             → get one note           [auth]
// PUT    /notes/{id}             → update note            [auth]
// DELETE /notes/{id}             → delete note            [auth]
// GET    /notes/search/{tag}     → exact-tag search       [auth]
//
// Middleware order: the rate limiter sits before logging so a flooding
// client is turned away as cheaply as possible, and before CORS so the
// limit also covers preflight requests.
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.Secret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()
	telegram := auth.NewTelegramVerifier(s.config.Secret)

	authService := service.NewAuthService(s.db.Users(), tokens, passwords, telegram, s.logger)
	noteService := service.NewNoteService(s.db.Notes(), s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	noteHandler := handler.NewNoteHandler(noteService, authService, s.logger)

	limit := s.config.RateLimit
	if limit <= 0 {
		limit = middleware.DefaultRateLimit
	}
	window := s.config.RateWindow
	if window <= 0 {
		window = middleware.DefaultRateWindow
	}
	limiter := middleware.NewRateLimiter(limit, window, middleware.DefaultMaxClients, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(limiter.Middleware)

	// Browser clients may live anywhere, so CORS is wide open. The API
	// carries no cookies; credentials stay off.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	// Public routes
	s.router.Post("/register", authHandler.HandleRegister)
	s.router.Post("/token", authHandler.HandleToken)
	s.router.Post("/auth/telegram-login", authHandler.HandleTelegramLogin)

	// Authenticated routes
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/users/me", authHandler.HandleMe)

		r.Route("/notes", func(r chi.Router) {
			r.Post("/", noteHandler.HandleCreate)
			r.Get("/", noteHandler.HandleList)
			r.Get("/search/{tag}", noteHandler.HandleSearch)
			r.Get("/{id}", noteHandler.HandleGet)
			r.Put("/{id}", noteHandler.HandleUpdate)
			r.Delete("/{id}", noteHandler.HandleDelete)
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests
// (30s budget), close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
