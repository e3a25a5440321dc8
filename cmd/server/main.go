// Package main is the entry point for the notes API server.
//
// main stays minimal: read configuration from the environment, build a
// logger, hand both to internal/server. Everything else lives in the
// internal packages.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sakif/notes-api/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	dbPath := "data/notes.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}

	// Create the data directory if needed, like `mkdir -p`.
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", dbDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// SECRET_KEY signs session tokens and verifies Telegram login
	// signatures. Generate one with: openssl rand -hex 32
	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		logger.Error("SECRET_KEY not set")
		os.Exit(1)
	}

	cfg := server.Config{
		Port:       port,
		DBPath:     dbPath,
		Secret:     secret,
		RateLimit:  envInt(logger, "RATE_LIMIT"),
		RateWindow: time.Duration(envInt(logger, "RATE_WINDOW_SECONDS")) * time.Second,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// envInt reads an optional integer environment variable. Unset or
// malformed values come back as zero, which the server treats as "use
// the default".
func envInt(logger *slog.Logger, name string) int {
	raw := os.Getenv(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warn("ignoring invalid integer env var",
			slog.String("name", name),
			slog.String("value", raw),
		)
		return 0
	}
	return n
}
