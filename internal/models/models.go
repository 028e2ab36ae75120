// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

// Package models defines the domain types shared across BookBrain packages.
package models

import (
	"strings"
	"time"

	"github.com/bookbrain/bookbrain/internal/recommend"
)

// User is a registered BookBrain account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserBook is one entry in a user's library. Authors and Categories are
// stored as comma-delimited strings exactly as they arrive from the catalog.
type UserBook struct {
	ID           string                  `json:"id"`
	UserID       string                  `json:"user_id"`
	BookID       string                  `json:"book_id"`
	Title        string                  `json:"title"`
	Authors      string                  `json:"authors"`
	Categories   string                  `json:"categories"`
	Description  string                  `json:"description"`
	Thumbnail    string                  `json:"thumbnail,omitempty"`
	CatalogScore float64                 `json:"catalog_score,omitempty"`
	Rating       int                     `json:"rating"`
	Status       recommend.ReadingStatus `json:"status"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// ToRatedBook converts a library entry into the engine's snapshot type.
func (b UserBook) ToRatedBook() recommend.RatedBook {
	return recommend.RatedBook{
		BookID:      b.BookID,
		Title:       b.Title,
		Description: b.Description,
		Categories:  b.Categories,
		Authors:     b.Authors,
		Rating:      b.Rating,
		Status:      b.Status,
	}
}

// Book is a catalog search result, normalized across sources.
type Book struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Categories  []string `json:"categories"`
	Description string   `json:"description"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	PublishedAt string   `json:"published_at,omitempty"`
	PageCount   int      `json:"page_count,omitempty"`
	Source      string   `json:"source"`
}

// ToCandidate converts a catalog result into a recommendation candidate.
func (b Book) ToCandidate() recommend.Candidate {
	return recommend.Candidate{
		ID:          b.ID,
		Title:       b.Title,
		Description: b.Description,
		Categories:  b.Categories,
		Authors:     b.Authors,
		Rating:      b.Rating,
		Thumbnail:   b.Thumbnail,
		Source:      b.Source,
	}
}

// NormalizedTitle returns the lowercased trimmed title, the key used for
// cross-source deduplication.
func (b Book) NormalizedTitle() string {
	return strings.ToLower(strings.TrimSpace(b.Title))
}

// JoinList renders a catalog list field as the comma-delimited form the
// library stores.
func JoinList(values []string) string {
	return strings.Join(values, ", ")
}

// LibraryStats summarizes a user's library.
type LibraryStats struct {
	Total      int     `json:"total"`
	Finished   int     `json:"finished"`
	Reading    int     `json:"reading"`
	WantToRead int     `json:"want_to_read"`
	Rated      int     `json:"rated"`
	AvgRating  float64 `json:"avg_rating"`
}

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AddBookRequest is the payload for adding a catalog book to the library.
type AddBookRequest struct {
	BookID      string   `json:"book_id" validate:"required,max=128"`
	Title       string   `json:"title" validate:"required,max=512"`
	Authors     []string `json:"authors" validate:"max=16,dive,max=256"`
	Categories  []string `json:"categories" validate:"max=16,dive,max=256"`
	Description string   `json:"description" validate:"max=8192"`
	Thumbnail   string   `json:"thumbnail" validate:"omitempty,url,max=1024"`
	Rating      float64  `json:"rating" validate:"min=0,max=5"`
	Status      string   `json:"status" validate:"omitempty,oneof=want_to_read reading finished"`
}

// UpdateBookRequest is the payload for updating a library entry. Pointer
// fields distinguish "leave unchanged" from explicit zero values.
type UpdateBookRequest struct {
	Rating *int    `json:"rating" validate:"omitempty,min=0,max=5"`
	Status *string `json:"status" validate:"omitempty,oneof=want_to_read reading finished"`
}
