// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

package api

import (
	"errors"
	"net"
	"net/http"

	"github.com/bookbrain/bookbrain/internal/database"
	"github.com/bookbrain/bookbrain/internal/logging"
	"github.com/bookbrain/bookbrain/internal/models"
)

// loginResponse pairs the account with its token expiry. The token itself
// travels only in the HttpOnly cookie.
type loginResponse struct {
	User      *models.User `json:"user"`
	ExpiresIn int64        `json:"expires_in"`
}

// Register creates a new account and signs the user in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.RegisterRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	hash, err := h.passwords.Hash(req.Password)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	user, err := h.db.CreateUser(r.Context(), req.Username, req.Email, hash)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			rw.Conflict("Username or email already registered")
			return
		}
		rw.DatabaseError(err)
		return
	}

	token, err := h.jwt.GenerateToken(user.ID, user.Username)
	if err != nil {
		rw.InternalError("Failed to issue token")
		return
	}
	h.authMW.SetAuthCookie(w, token, h.jwt.TTL())

	logger := logging.Ctx(r.Context())
	logger.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Msg("User registered")

	rw.Created(loginResponse{User: user, ExpiresIn: int64(h.jwt.TTL().Seconds())})
}

// Login authenticates a user and sets the auth cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if !h.loginLimiter.Allow(clientIP(r)) {
		rw.TooManyRequests("Too many login attempts, try again later")
		return
	}

	var req models.LoginRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.db.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// Same response as a bad password, no account enumeration.
			rw.Unauthorized("Invalid username or password")
			return
		}
		rw.DatabaseError(err)
		return
	}

	if !h.passwords.Verify(user.PasswordHash, req.Password) {
		logger := logging.Ctx(r.Context())
		logger.Warn().
			Str("username", req.Username).
			Str("remote_ip", clientIP(r)).
			Msg("Failed login attempt")
		rw.Unauthorized("Invalid username or password")
		return
	}

	token, err := h.jwt.GenerateToken(user.ID, user.Username)
	if err != nil {
		rw.InternalError("Failed to issue token")
		return
	}
	h.authMW.SetAuthCookie(w, token, h.jwt.TTL())

	rw.Success(loginResponse{User: user, ExpiresIn: int64(h.jwt.TTL().Seconds())})
}

// Logout clears the auth cookie. The JWT stays valid until expiry; the
// short token TTL bounds the exposure.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authMW.ClearAuthCookie(w)
	NewResponseWriter(w, r).Success(map[string]string{"status": "logged_out"})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	claims := h.claims(w, r)
	if claims == nil {
		return
	}

	user, err := h.db.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.Unauthorized("Account no longer exists")
			return
		}
		rw.DatabaseError(err)
		return
	}
	rw.Success(user)
}

// clientIP returns the peer address without the port. RealIP middleware has
// already folded X-Forwarded-For into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
