// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestPasswordManagerHashAndVerify(t *testing.T) {
	// Low cost keeps the test fast; production uses cost 12.
	pm, err := NewPasswordManager(4)
	if err != nil {
		t.Fatalf("NewPasswordManager() error = %v", err)
	}

	hash, err := pm.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatal("Hash() returned the plaintext password")
	}

	if !pm.Verify(hash, "correct horse battery") {
		t.Error("Verify() rejected the correct password")
	}
	if pm.Verify(hash, "wrong password") {
		t.Error("Verify() accepted a wrong password")
	}
}

func TestPasswordManagerRejections(t *testing.T) {
	pm, err := NewPasswordManager(4)
	if err != nil {
		t.Fatalf("NewPasswordManager() error = %v", err)
	}

	if _, err := pm.Hash("short"); err == nil {
		t.Error("Hash(short password) = nil error")
	}
	if _, err := pm.Hash(strings.Repeat("x", 80)); err == nil {
		t.Error("Hash(password over 72 bytes) = nil error")
	}
	if _, err := NewPasswordManager(50); err == nil {
		t.Error("NewPasswordManager(cost 50) = nil error")
	}
}

func newTestJWTManager(t *testing.T, ttl time.Duration) *JWTManager {
	t.Helper()
	m, err := NewJWTManager("test-secret-at-least-32-characters!!", ttl)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	return m
}

func TestJWTRoundTrip(t *testing.T) {
	m := newTestJWTManager(t, time.Hour)

	token, err := m.GenerateToken("user-1", "alice")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != "user-1" || claims.Username != "alice" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestJWTRejections(t *testing.T) {
	m := newTestJWTManager(t, time.Hour)

	if _, err := m.ValidateToken("not.a.token"); err == nil {
		t.Error("ValidateToken(garbage) = nil error")
	}

	other := newTestJWTManager(t, time.Hour)
	token, err := m.GenerateToken("user-1", "alice")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	// Same struct, different secret.
	other.secret = []byte("a-completely-different-secret-value!")
	if _, err := other.ValidateToken(token); err == nil {
		t.Error("ValidateToken(wrong secret) = nil error")
	}

	expired := newTestJWTManager(t, -time.Minute)
	expiredToken, err := expired.GenerateToken("user-1", "alice")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if _, err := expired.ValidateToken(expiredToken); err == nil {
		t.Error("ValidateToken(expired) = nil error")
	}

	if _, err := NewJWTManager("", time.Hour); err == nil {
		t.Error("NewJWTManager(empty secret) = nil error")
	}
}

func TestAuthenticateMiddleware(t *testing.T) {
	m := newTestJWTManager(t, time.Hour)
	mw := NewMiddleware(m, false)

	var gotClaims *Claims
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	token, err := m.GenerateToken("user-1", "alice")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	tests := []struct {
		name       string
		setup      func(*http.Request)
		wantStatus int
		wantUser   string
	}{
		{
			name:       "no credentials",
			setup:      func(*http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "bearer header",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+token)
			},
			wantStatus: http.StatusOK,
			wantUser:   "user-1",
		},
		{
			name: "auth cookie",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: CookieName, Value: token})
			},
			wantStatus: http.StatusOK,
			wantUser:   "user-1",
		},
		{
			name: "malformed header",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Token "+token)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "tampered token",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+token+"x")
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotClaims = nil
			req := httptest.NewRequest(http.MethodGet, "/api/v1/library", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantUser != "" {
				if gotClaims == nil || gotClaims.UserID != tt.wantUser {
					t.Errorf("claims = %+v, want user %q", gotClaims, tt.wantUser)
				}
			}
		})
	}
}

func TestAuthCookieLifecycle(t *testing.T) {
	m := newTestJWTManager(t, time.Hour)
	mw := NewMiddleware(m, true)

	rec := httptest.NewRecorder()
	mw.SetAuthCookie(rec, "tok", time.Hour)
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != CookieName || c.Value != "tok" || !c.HttpOnly || !c.Secure {
		t.Errorf("cookie = %+v", c)
	}
	if c.MaxAge != 3600 {
		t.Errorf("MaxAge = %d, want 3600", c.MaxAge)
	}

	rec = httptest.NewRecorder()
	mw.ClearAuthCookie(rec)
	c = rec.Result().Cookies()[0]
	if c.MaxAge != -1 || c.Value != "" {
		t.Errorf("cleared cookie = %+v", c)
	}
}

func TestLoginLimiter(t *testing.T) {
	ll := NewLoginLimiter(3)
	defer ll.Stop()

	for i := 0; i < 3; i++ {
		if !ll.Allow("10.0.0.1") {
			t.Fatalf("attempt %d denied within burst", i+1)
		}
	}
	if ll.Allow("10.0.0.1") {
		t.Error("attempt beyond burst allowed")
	}
	// Other IPs are unaffected.
	if !ll.Allow("10.0.0.2") {
		t.Error("separate IP denied")
	}
}
