// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/bookbrain/bookbrain/internal/logging"
)

type contextKey string

// claimsContextKey is where Authenticate stores the validated claims.
const claimsContextKey contextKey = "claims"

// CookieName is the HTTP-only cookie carrying the access token.
const CookieName = "access_token"

// Middleware guards authenticated routes.
type Middleware struct {
	jwtManager   *JWTManager
	cookieSecure bool
}

// NewMiddleware creates the authentication middleware.
func NewMiddleware(jwtManager *JWTManager, cookieSecure bool) *Middleware {
	return &Middleware{jwtManager: jwtManager, cookieSecure: cookieSecure}
}

// Authenticate rejects requests without a valid access token. The token is
// read from the Authorization header ("Bearer " prefix) first, then from the
// auth cookie. Validated claims are stored on the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			unauthorized(w, "authentication required")
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			logger := logging.Ctx(r.Context())
			logger.Debug().Err(err).Msg("Token validation failed")
			unauthorized(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken pulls the access token from the request.
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		if strings.HasPrefix(authHeader, "Bearer ") {
			return strings.TrimPrefix(authHeader, "Bearer ")
		}
		return ""
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// unauthorized writes a minimal JSON 401. The api package owns the full
// response envelope; this middleware stays below it in the stack.
func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"success":false,"error":{"code":"UNAUTHORIZED","message":"` + message + `"}}`))
}

// ClaimsFromContext returns the authenticated claims, or nil when the
// request did not pass Authenticate.
func ClaimsFromContext(ctx context.Context) *Claims {
	if claims, ok := ctx.Value(claimsContextKey).(*Claims); ok {
		return claims
	}
	return nil
}

// ContextWithClaims stores claims on a context. Exposed for handler tests.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// SetAuthCookie writes the access token as an HTTP-only cookie.
func (m *Middleware) SetAuthCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearAuthCookie expires the auth cookie.
func (m *Middleware) ClearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
