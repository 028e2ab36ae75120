// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/bookbrain/bookbrain/internal/auth"
	"github.com/bookbrain/bookbrain/internal/config"
	"github.com/bookbrain/bookbrain/internal/database"
	"github.com/bookbrain/bookbrain/internal/models"
	"github.com/bookbrain/bookbrain/internal/recommend"
)

// fakeCatalog serves canned results keyed by query substring.
type fakeCatalog struct {
	books []models.Book
	err   error
}

func (f *fakeCatalog) Search(ctx context.Context, query string, limit int) ([]models.Book, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.books, nil
}

func (f *fakeCatalog) SearchBySubject(ctx context.Context, subject string, limit int) ([]models.Book, error) {
	return f.Search(ctx, "subject:"+subject, limit)
}

func (f *fakeCatalog) SearchByAuthor(ctx context.Context, author string, limit int) ([]models.Book, error) {
	return f.Search(ctx, "inauthor:"+author, limit)
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:        "127.0.0.1",
			Port:        8080,
			Environment: "development",
		},
		Database: config.DatabaseConfig{
			Path:      ":memory:",
			MaxMemory: "256MB",
			Threads:   2,
		},
		Security: config.SecurityConfig{
			JWTSecret:          "test-secret-for-handler-tests",
			TokenTTL:           time.Hour,
			BcryptCost:         10,
			RateLimitReqs:      1000,
			RateLimitWindow:    time.Minute,
			RateLimitDisabled:  true,
			LoginRatePerMinute: 100,
		},
		Recommend: config.RecommendConfig{
			Engine:            recommend.DefaultConfig(),
			CandidateSubjects: 3,
			CandidateAuthors:  2,
			SubjectQueryLimit: 8,
			AuthorQueryLimit:  5,
			MinLibraryBooks:   2,
		},
		API: config.APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
	}
}

type testServer struct {
	srv     *httptest.Server
	handler *Handler
	cookie  *http.Cookie
}

func newTestServer(t *testing.T, cat Catalog) *testServer {
	t.Helper()

	cfg := testConfig()

	db, err := database.New(&cfg.Database)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	engine, err := recommend.NewEngine(cfg.Recommend.Engine, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}

	handler, err := NewHandler(db, cat, engine, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to build handler: %v", err)
	}
	t.Cleanup(handler.Close)

	srv := httptest.NewServer(NewRouter(handler, cfg).Setup())
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, handler: handler}
}

// do issues a request, attaching the auth cookie when one is held.
func (ts *testServer) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.srv.URL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if ts.cookie != nil {
		req.AddCookie(ts.cookie)
	}

	resp, err := ts.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

// register creates an account and captures its auth cookie.
func (ts *testServer) register(t *testing.T, username string) {
	t.Helper()

	resp := ts.do(t, http.MethodPost, "/api/v1/auth/register", models.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct-horse-battery",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register returned status %d", resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == auth.CookieName {
			ts.cookie = c
			return
		}
	}
	t.Fatal("register did not set an auth cookie")
}

func decodeEnvelope(t *testing.T, resp *http.Response) APIResponse {
	t.Helper()
	defer resp.Body.Close()
	var envelope APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response envelope: %v", err)
	}
	return envelope
}

// remarshal round-trips an envelope Data field into a concrete type.
func remarshal(t *testing.T, data any, dst any) {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("failed to remarshal data: %v", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		t.Fatalf("failed to unmarshal data: %v", err)
	}
}

func TestRegisterLoginFlow(t *testing.T) {
	ts := newTestServer(t, &fakeCatalog{})

	ts.register(t, "alice")

	// The profile endpoint sees the cookie identity.
	resp := ts.do(t, http.MethodGet, "/api/v1/auth/me", nil)
	envelope := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusOK || !envelope.Success {
		t.Fatalf("me returned status %d, success %v", resp.StatusCode, envelope.Success)
	}
	var user models.User
	remarshal(t, envelope.Data, &user)
	if user.Username != "alice" {
		t.Errorf("profile username = %q, want alice", user.Username)
	}

	// Duplicate registration conflicts.
	resp = ts.do(t, http.MethodPost, "/api/v1/auth/register", models.RegisterRequest{
		Username: "alice",
		Email:    "other@example.com",
		Password: "another-password",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate register returned %d, want 409", resp.StatusCode)
	}

	// Login with the right and wrong password.
	resp = ts.do(t, http.MethodPost, "/api/v1/auth/login", models.LoginRequest{
		Username: "alice", Password: "correct-horse-battery",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("login returned %d, want 200", resp.StatusCode)
	}
	resp = ts.do(t, http.MethodPost, "/api/v1/auth/login", models.LoginRequest{
		Username: "alice", Password: "wrong-password",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong-password login returned %d, want 401", resp.StatusCode)
	}
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t, &fakeCatalog{})

	resp := ts.do(t, http.MethodPost, "/api/v1/auth/register", models.RegisterRequest{
		Username: "x",
		Email:    "not-an-email",
		Password: "short",
	})
	envelope := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid register returned %d, want 400", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != ErrCodeValidationFailed {
		t.Errorf("expected %s error, got %+v", ErrCodeValidationFailed, envelope.Error)
	}
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	ts := newTestServer(t, &fakeCatalog{})

	for _, path := range []string{
		"/api/v1/library/",
		"/api/v1/search/?q=dune",
		"/api/v1/recommendations/",
		"/api/v1/auth/me",
	} {
		resp := ts.do(t, http.MethodGet, path, nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("GET %s returned %d without auth, want 401", path, resp.StatusCode)
		}
	}
}

func TestLibraryCRUD(t *testing.T) {
	ts := newTestServer(t, &fakeCatalog{})
	ts.register(t, "bob")

	// Add.
	resp := ts.do(t, http.MethodPost, "/api/v1/library/", models.AddBookRequest{
		BookID:      "vol-1",
		Title:       "Dune",
		Authors:     []string{"Frank Herbert"},
		Categories:  []string{"Science Fiction"},
		Description: "Desert planet epic.",
		Rating:      4.5,
	})
	envelope := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add returned %d, want 201", resp.StatusCode)
	}
	var added models.UserBook
	remarshal(t, envelope.Data, &added)
	if added.Status != recommend.StatusWantToRead {
		t.Errorf("default status = %q, want %q", added.Status, recommend.StatusWantToRead)
	}
	if added.Authors != "Frank Herbert" {
		t.Errorf("authors stored as %q", added.Authors)
	}

	// Adding the same catalog book twice conflicts.
	resp = ts.do(t, http.MethodPost, "/api/v1/library/", models.AddBookRequest{
		BookID: "vol-1", Title: "Dune",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate add returned %d, want 409", resp.StatusCode)
	}

	// Update rating and status.
	rating := 5
	status := string(recommend.StatusFinished)
	resp = ts.do(t, http.MethodPatch, "/api/v1/library/"+added.ID, models.UpdateBookRequest{
		Rating: &rating,
		Status: &status,
	})
	envelope = decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update returned %d, want 200", resp.StatusCode)
	}
	var updated models.UserBook
	remarshal(t, envelope.Data, &updated)
	if updated.Rating != 5 || updated.Status != recommend.StatusFinished {
		t.Errorf("update produced rating %d status %q", updated.Rating, updated.Status)
	}

	// Empty patch is a bad request.
	resp = ts.do(t, http.MethodPatch, "/api/v1/library/"+added.ID, models.UpdateBookRequest{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty update returned %d, want 400", resp.StatusCode)
	}

	// List and stats see the entry.
	resp = ts.do(t, http.MethodGet, "/api/v1/library/?status=finished", nil)
	envelope = decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list returned %d", resp.StatusCode)
	}
	if envelope.Meta == nil || envelope.Meta.Pagination == nil || envelope.Meta.Pagination.Total != 1 {
		t.Errorf("list pagination = %+v, want total 1", envelope.Meta)
	}

	resp = ts.do(t, http.MethodGet, "/api/v1/library/stats", nil)
	envelope = decodeEnvelope(t, resp)
	var stats models.LibraryStats
	remarshal(t, envelope.Data, &stats)
	if stats.Total != 1 || stats.Finished != 1 {
		t.Errorf("stats = %+v, want one finished book", stats)
	}

	// Delete and verify.
	resp = ts.do(t, http.MethodDelete, "/api/v1/library/"+added.ID, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete returned %d, want 204", resp.StatusCode)
	}
	resp = ts.do(t, http.MethodGet, "/api/v1/library/"+added.ID, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete returned %d, want 404", resp.StatusCode)
	}
}

func TestListBooksRejectsUnknownStatus(t *testing.T) {
	ts := newTestServer(t, &fakeCatalog{})
	ts.register(t, "carol")

	resp := ts.do(t, http.MethodGet, "/api/v1/library/?status=abandoned", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown status filter returned %d, want 400", resp.StatusCode)
	}
}

func TestSearchEndpoint(t *testing.T) {
	cat := &fakeCatalog{books: []models.Book{
		{ID: "g1", Title: "Dune", Source: "googlebooks"},
	}}
	ts := newTestServer(t, cat)
	ts.register(t, "dave")

	resp := ts.do(t, http.MethodGet, "/api/v1/search/?q=dune", nil)
	envelope := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search returned %d", resp.StatusCode)
	}
	var books []models.Book
	remarshal(t, envelope.Data, &books)
	if len(books) != 1 || books[0].Title != "Dune" {
		t.Errorf("search returned %+v", books)
	}

	// Missing query.
	resp = ts.do(t, http.MethodGet, "/api/v1/search/", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("search without q returned %d, want 400", resp.StatusCode)
	}

	// Upstream failure surfaces as a gateway error.
	cat.err = fmt.Errorf("all catalog sources failed")
	resp = ts.do(t, http.MethodGet, "/api/v1/search/?q=dune", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("failed search returned %d, want 502", resp.StatusCode)
	}
}

func TestRecommendationsSmallLibrary(t *testing.T) {
	ts := newTestServer(t, &fakeCatalog{})
	ts.register(t, "erin")

	resp := ts.do(t, http.MethodGet, "/api/v1/recommendations/", nil)
	envelope := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("recommendations returned %d", resp.StatusCode)
	}
	var payload recommendResponse
	remarshal(t, envelope.Data, &payload)
	if len(payload.Recommendations) != 0 {
		t.Errorf("empty library produced %d recommendations", len(payload.Recommendations))
	}
	if payload.Message == "" {
		t.Error("small library response should carry an explanatory message")
	}
}

func TestRecommendationsEndToEnd(t *testing.T) {
	cat := &fakeCatalog{books: []models.Book{
		{
			ID:          "cand-1",
			Title:       "Hyperion",
			Authors:     []string{"Dan Simmons"},
			Categories:  []string{"Science Fiction"},
			Description: "Pilgrims cross a distant world sharing tales of the Shrike.",
			Rating:      4.2,
			Source:      "googlebooks",
		},
		{
			ID:          "vol-dune",
			Title:       "Dune",
			Authors:     []string{"Frank Herbert"},
			Categories:  []string{"Science Fiction"},
			Description: "Already owned, must be excluded.",
			Source:      "googlebooks",
		},
	}}
	ts := newTestServer(t, cat)
	ts.register(t, "frank")

	rate := func(id, title, authors, desc string) {
		t.Helper()
		resp := ts.do(t, http.MethodPost, "/api/v1/library/", models.AddBookRequest{
			BookID:      id,
			Title:       title,
			Authors:     []string{authors},
			Categories:  []string{"Science Fiction"},
			Description: desc,
			Status:      string(recommend.StatusFinished),
		})
		envelope := decodeEnvelope(t, resp)
		var added models.UserBook
		remarshal(t, envelope.Data, &added)

		rating := 5
		resp = ts.do(t, http.MethodPatch, "/api/v1/library/"+added.ID, models.UpdateBookRequest{Rating: &rating})
		resp.Body.Close()
	}

	rate("vol-dune", "Dune", "Frank Herbert", "A desert planet empire of spice and prophecy among the stars.")
	rate("vol-foundation", "Foundation", "Isaac Asimov", "A galactic empire collapses while scientists preserve knowledge among the stars.")

	resp := ts.do(t, http.MethodGet, "/api/v1/recommendations/", nil)
	envelope := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("recommendations returned %d", resp.StatusCode)
	}

	var payload recommendResponse
	remarshal(t, envelope.Data, &payload)

	if payload.LibrarySize != 2 {
		t.Errorf("library size = %d, want 2", payload.LibrarySize)
	}
	// The owned Dune volume must never come back as a candidate.
	if payload.CandidateCount != 1 {
		t.Errorf("candidate count = %d, want owned book excluded", payload.CandidateCount)
	}
	if len(payload.Recommendations) != 1 {
		t.Fatalf("got %d recommendations, want 1: %+v", len(payload.Recommendations), payload.Recommendations)
	}
	rec := payload.Recommendations[0]
	if rec.Book.Title != "Hyperion" {
		t.Errorf("recommended %q, want Hyperion", rec.Book.Title)
	}
	if rec.Score <= 0.25 {
		t.Errorf("score = %v, want above retention threshold", rec.Score)
	}
	if !strings.Contains(rec.Reason, "Science Fiction") {
		t.Errorf("reason = %q, want the shared genre mentioned", rec.Reason)
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t, &fakeCatalog{})

	for _, path := range []string{"/api/v1/health/", "/api/v1/health/live", "/api/v1/health/ready"} {
		resp := ts.do(t, http.MethodGet, path, nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s returned %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	ts := newTestServer(t, &fakeCatalog{})

	resp := ts.do(t, http.MethodGet, "/metrics", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("metrics endpoint returned %d", resp.StatusCode)
	}
}
