// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

// Command server runs the BookBrain HTTP server: library tracking, catalog
// search, and recommendations behind a single binary.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bookbrain/bookbrain/internal/api"
	"github.com/bookbrain/bookbrain/internal/catalog"
	"github.com/bookbrain/bookbrain/internal/config"
	"github.com/bookbrain/bookbrain/internal/database"
	"github.com/bookbrain/bookbrain/internal/logging"
	"github.com/bookbrain/bookbrain/internal/recommend"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	if cfg.Security.JWTSecret == "" {
		// Development convenience only; production config validation
		// rejects an empty secret before we get here. Tokens stop
		// verifying across restarts.
		secret, err := randomSecret()
		if err != nil {
			return fmt.Errorf("failed to generate ephemeral JWT secret: %w", err)
		}
		cfg.Security.JWTSecret = secret
		logging.Warn().Msg("No JWT secret configured, generated an ephemeral one; sessions will not survive restarts")
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	cat, err := catalog.NewService(&cfg.Catalog, logging.Logger())
	if err != nil {
		return fmt.Errorf("failed to build catalog service: %w", err)
	}
	defer cat.Close()

	engine, err := recommend.NewEngine(cfg.Recommend.Engine, logging.Logger())
	if err != nil {
		return fmt.Errorf("failed to build recommendation engine: %w", err)
	}

	handler, err := api.NewHandler(db, cat, engine, cfg, logging.Logger())
	if err != nil {
		return fmt.Errorf("failed to build API handler: %w", err)
	}
	defer handler.Close()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.NewRouter(handler, cfg).Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().
			Str("addr", addr).
			Str("environment", cfg.Server.Environment).
			Str("version", api.Version).
			Msg("BookBrain server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		logging.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logging.Info().Msg("Server stopped")
	return nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
