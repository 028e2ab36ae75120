// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bookbrain/bookbrain/internal/logging"
	"github.com/bookbrain/bookbrain/internal/metrics"
	"github.com/bookbrain/bookbrain/internal/models"
	"github.com/bookbrain/bookbrain/internal/recommend"
)

// recommendResponse is the payload for the recommendations endpoint.
type recommendResponse struct {
	Recommendations []recommend.ScoredRecommendation `json:"recommendations"`
	LibrarySize     int                              `json:"library_size"`
	CandidateCount  int                              `json:"candidate_count"`
	Message         string                           `json:"message,omitempty"`
}

// Recommendations scores fresh catalog candidates against the user's
// library and returns the ranked list. Each call gathers candidates from
// the user's favorite subjects and authors, drops everything already in
// the library, and runs the scoring engine on the rest.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	claims := h.claims(w, r)
	if claims == nil {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			rw.BadRequest("limit must be a positive integer")
			return
		}
		limit = v
	}

	start := time.Now()

	entries, err := h.db.ListAllBooks(r.Context(), claims.UserID)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rcfg := h.cfg.Recommend
	if len(entries) < rcfg.MinLibraryBooks {
		rw.Success(recommendResponse{
			Recommendations: []recommend.ScoredRecommendation{},
			LibrarySize:     len(entries),
			Message:         "Add a few books to your library to unlock recommendations",
		})
		return
	}

	library := make([]recommend.RatedBook, 0, len(entries))
	for _, entry := range entries {
		library = append(library, entry.ToRatedBook())
	}

	candidates := h.gatherCandidates(r, entries, library)

	results := h.engine.Rank(library, candidates, limit)

	duration := time.Since(start)
	metrics.RecommendDuration.Observe(duration.Seconds())
	metrics.RecommendCandidates.Observe(float64(len(candidates)))
	metrics.RecommendResults.Observe(float64(len(results)))

	logger := logging.Ctx(r.Context())
	logger.Info().
		Str("user_id", claims.UserID).
		Int("library_size", len(library)).
		Int("candidates", len(candidates)).
		Int("results", len(results)).
		Dur("duration", duration).
		Msg("Recommendations computed")

	rw.Success(recommendResponse{
		Recommendations: results,
		LibrarySize:     len(library),
		CandidateCount:  len(candidates),
	})
}

// gatherCandidates queries the catalog for books matching the user's
// favorite subjects and authors, dropping anything already in the library.
// Failed catalog queries are logged and skipped; recommendations degrade
// to whatever candidates arrived.
func (h *Handler) gatherCandidates(r *http.Request, entries []models.UserBook, library []recommend.RatedBook) []recommend.Candidate {
	rcfg := h.cfg.Recommend
	ctx := r.Context()
	log := logging.Ctx(ctx)

	ownedIDs := make(map[string]struct{}, len(entries))
	ownedTitles := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		ownedIDs[entry.BookID] = struct{}{}
		ownedTitles[strings.ToLower(strings.TrimSpace(entry.Title))] = struct{}{}
	}

	subjects := recommend.FavoriteCategories(library)
	if len(subjects) > rcfg.CandidateSubjects {
		subjects = subjects[:rcfg.CandidateSubjects]
	}
	authors := recommend.FavoriteAuthors(library)
	if len(authors) > rcfg.CandidateAuthors {
		authors = authors[:rcfg.CandidateAuthors]
	}

	var candidates []recommend.Candidate
	seen := make(map[string]struct{})

	collect := func(books []models.Book) {
		for _, book := range books {
			if _, owned := ownedIDs[book.ID]; owned {
				continue
			}
			title := book.NormalizedTitle()
			if _, owned := ownedTitles[title]; owned {
				continue
			}
			if _, dup := seen[book.ID]; dup {
				continue
			}
			if _, dup := seen["title:"+title]; dup {
				continue
			}
			seen[book.ID] = struct{}{}
			seen["title:"+title] = struct{}{}
			candidates = append(candidates, book.ToCandidate())
		}
	}

	for _, subject := range subjects {
		books, err := h.catalog.SearchBySubject(ctx, subject, rcfg.SubjectQueryLimit)
		if err != nil {
			log.Warn().Err(err).Str("subject", subject).Msg("Subject candidate query failed")
			continue
		}
		collect(books)
	}
	for _, author := range authors {
		books, err := h.catalog.SearchByAuthor(ctx, author, rcfg.AuthorQueryLimit)
		if err != nil {
			log.Warn().Err(err).Str("author", author).Msg("Author candidate query failed")
			continue
		}
		collect(books)
	}

	return candidates
}
