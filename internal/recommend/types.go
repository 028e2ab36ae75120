// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

package recommend

import "strings"

// ReadingStatus tracks where a library book sits in the user's reading flow.
type ReadingStatus string

const (
	// StatusWantToRead marks a book saved for later.
	StatusWantToRead ReadingStatus = "want_to_read"
	// StatusReading marks a book currently being read.
	StatusReading ReadingStatus = "reading"
	// StatusFinished marks a completed book.
	StatusFinished ReadingStatus = "finished"
)

// RatedBook is a snapshot of one library entry as the engine sees it.
// Authors and Categories are comma-delimited strings, mirroring how the
// library stores them; the engine splits and trims on demand.
type RatedBook struct {
	// BookID is the catalog identifier of the book.
	BookID string `json:"book_id"`

	// Title is the book title.
	Title string `json:"title"`

	// Description is the free-text description (may be empty).
	Description string `json:"description"`

	// Categories is a comma-delimited category list (may be empty).
	Categories string `json:"categories"`

	// Authors is a comma-delimited author list (may be empty).
	Authors string `json:"authors"`

	// Rating is the user's 1-5 star rating, 0 when unrated.
	Rating int `json:"rating"`

	// Status is the reading status.
	Status ReadingStatus `json:"status"`
}

// Rated reports whether the user has assigned a star rating.
func (b RatedBook) Rated() bool { return b.Rating > 0 }

// Candidate is a book not yet in the library, proposed for recommendation.
// Candidates are supplied externally per run and never persisted here.
type Candidate struct {
	// ID is the catalog identifier of the book.
	ID string `json:"id"`

	// Title is the book title.
	Title string `json:"title"`

	// Description is the free-text description (may be empty).
	Description string `json:"description"`

	// Categories is the category list.
	Categories []string `json:"categories"`

	// Authors is the author list.
	Authors []string `json:"authors"`

	// Rating is the external aggregate rating, 0 meaning unrated.
	Rating float64 `json:"rating"`

	// Thumbnail is the cover image URL, passed through untouched.
	Thumbnail string `json:"thumbnail,omitempty"`

	// Source names the catalog the candidate came from.
	Source string `json:"source,omitempty"`
}

// ScoredRecommendation is one ranked output entry. Ordering is significant:
// results are sorted descending by Score, which is already rounded to three
// decimal places as part of the scoring contract.
type ScoredRecommendation struct {
	// Book is the recommended candidate.
	Book Candidate `json:"book"`

	// Score is the composite score, rounded to three decimals.
	Score float64 `json:"score"`

	// Reason is a short human-readable explanation.
	Reason string `json:"reason"`
}

// splitCSV splits a comma-delimited field into trimmed non-empty tokens.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// isFavorite reports whether a library book counts as positive preference
// evidence: rated at or above the favorite threshold, or finished without a
// rating.
func isFavorite(b RatedBook, minRating float64) bool {
	if b.Rated() {
		return float64(b.Rating) >= minRating
	}
	return b.Status == StatusFinished
}

// isDisliked reports whether a library book counts as negative preference
// evidence. Unrated books are never disliked, so the favorite and disliked
// sets are disjoint by construction.
func isDisliked(b RatedBook, maxRating float64) bool {
	return b.Rated() && float64(b.Rating) <= maxRating
}
