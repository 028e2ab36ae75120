// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/bookbrain/bookbrain/internal/auth"
	"github.com/bookbrain/bookbrain/internal/config"
	"github.com/bookbrain/bookbrain/internal/database"
	"github.com/bookbrain/bookbrain/internal/models"
	"github.com/bookbrain/bookbrain/internal/recommend"
	"github.com/bookbrain/bookbrain/internal/validation"
)

// Catalog is the slice of the catalog service the handlers need; the
// narrow interface keeps handler tests independent of real upstreams.
type Catalog interface {
	Search(ctx context.Context, query string, limit int) ([]models.Book, error)
	SearchBySubject(ctx context.Context, subject string, limit int) ([]models.Book, error)
	SearchByAuthor(ctx context.Context, author string, limit int) ([]models.Book, error)
}

// Handler holds the dependencies shared by every endpoint.
type Handler struct {
	db           *database.DB
	catalog      Catalog
	engine       *recommend.Engine
	passwords    *auth.PasswordManager
	jwt          *auth.JWTManager
	authMW       *auth.Middleware
	loginLimiter *auth.LoginLimiter
	cfg          *config.Config
	logger       zerolog.Logger
}

// NewHandler wires a Handler from its dependencies.
func NewHandler(
	db *database.DB,
	cat Catalog,
	engine *recommend.Engine,
	cfg *config.Config,
	logger zerolog.Logger,
) (*Handler, error) {
	passwords, err := auth.NewPasswordManager(cfg.Security.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to create password manager: %w", err)
	}
	jwtManager, err := auth.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT manager: %w", err)
	}

	cookieSecure := cfg.Security.CookieSecure || cfg.Server.IsProduction()

	return &Handler{
		db:           db,
		catalog:      cat,
		engine:       engine,
		passwords:    passwords,
		jwt:          jwtManager,
		authMW:       auth.NewMiddleware(jwtManager, cookieSecure),
		loginLimiter: auth.NewLoginLimiter(cfg.Security.LoginRatePerMinute),
		cfg:          cfg,
		logger:       logger,
	}, nil
}

// Close releases handler-owned resources.
func (h *Handler) Close() {
	h.loginLimiter.Stop()
}

// decodeAndValidate decodes the request body into dst and runs struct
// validation. It writes the error response itself and reports whether the
// handler should continue.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	rw := NewResponseWriter(w, r)

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(dst); err != nil {
		rw.BadRequest("Invalid JSON body")
		return false
	}

	if verr := validation.ValidateStruct(dst); verr != nil {
		rw.ValidationError("Request validation failed", verr.Fields())
		return false
	}
	return true
}

// pagination extracts limit/offset query params, clamped to configured bounds.
func (h *Handler) pagination(r *http.Request) (limit, offset int) {
	limit = h.cfg.API.DefaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > h.cfg.API.MaxPageSize {
		limit = h.cfg.API.MaxPageSize
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}

// claims returns the authenticated user's claims, or writes a 401 and
// returns nil. Routes behind the auth middleware always have claims; the
// check guards against wiring mistakes.
func (h *Handler) claims(w http.ResponseWriter, r *http.Request) *auth.Claims {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		NewResponseWriter(w, r).Unauthorized("Authentication required")
	}
	return claims
}
