// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

package models

import (
	"testing"

	"github.com/bookbrain/bookbrain/internal/recommend"
)

func TestUserBookToRatedBook(t *testing.T) {
	book := UserBook{
		ID:          "row-1",
		UserID:      "user-1",
		BookID:      "gb-123",
		Title:       "Dune",
		Authors:     "Frank Herbert",
		Categories:  "Science Fiction, Classics",
		Description: "desert planet",
		Rating:      5,
		Status:      recommend.StatusFinished,
	}

	rated := book.ToRatedBook()
	if rated.BookID != "gb-123" || rated.Title != "Dune" {
		t.Errorf("ToRatedBook() identity fields = %+v", rated)
	}
	if rated.Categories != "Science Fiction, Classics" {
		t.Errorf("Categories = %q, want pass-through CSV", rated.Categories)
	}
	if rated.Rating != 5 || rated.Status != recommend.StatusFinished {
		t.Errorf("rating/status = %d/%s", rated.Rating, rated.Status)
	}
}

func TestBookToCandidate(t *testing.T) {
	book := Book{
		ID:         "ol-9",
		Title:      "Hyperion",
		Authors:    []string{"Dan Simmons"},
		Categories: []string{"Science Fiction"},
		Rating:     4.2,
		Source:     "openlibrary",
	}

	cand := book.ToCandidate()
	if cand.ID != "ol-9" || cand.Source != "openlibrary" {
		t.Errorf("ToCandidate() = %+v", cand)
	}
	if len(cand.Authors) != 1 || cand.Authors[0] != "Dan Simmons" {
		t.Errorf("Authors = %v", cand.Authors)
	}
}

func TestNormalizedTitle(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Dune", "dune"},
		{"  The Dispossessed  ", "the dispossessed"},
		{"HYPERION", "hyperion"},
	}
	for _, tt := range tests {
		if got := (Book{Title: tt.title}).NormalizedTitle(); got != tt.want {
			t.Errorf("NormalizedTitle(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestJoinList(t *testing.T) {
	if got := JoinList([]string{"A", "B"}); got != "A, B" {
		t.Errorf("JoinList() = %q", got)
	}
	if got := JoinList(nil); got != "" {
		t.Errorf("JoinList(nil) = %q", got)
	}
}
