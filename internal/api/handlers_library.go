// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookbrain/bookbrain/internal/database"
	"github.com/bookbrain/bookbrain/internal/logging"
	"github.com/bookbrain/bookbrain/internal/models"
	"github.com/bookbrain/bookbrain/internal/recommend"
)

// AddBook adds a catalog book to the user's library.
func (h *Handler) AddBook(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	claims := h.claims(w, r)
	if claims == nil {
		return
	}

	var req models.AddBookRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	status := recommend.ReadingStatus(req.Status)
	if status == "" {
		status = recommend.StatusWantToRead
	}

	book := &models.UserBook{
		UserID:       claims.UserID,
		BookID:       req.BookID,
		Title:        req.Title,
		Authors:      models.JoinList(req.Authors),
		Categories:   models.JoinList(req.Categories),
		Description:  req.Description,
		Thumbnail:    req.Thumbnail,
		CatalogScore: req.Rating,
		Status:       status,
	}

	if err := h.db.AddBook(r.Context(), book); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			rw.Conflict("Book already in library")
			return
		}
		rw.DatabaseError(err)
		return
	}

	logger := logging.Ctx(r.Context())
	logger.Info().
		Str("user_id", claims.UserID).
		Str("book_id", book.BookID).
		Str("title", book.Title).
		Msg("Book added to library")

	rw.Created(book)
}

// ListBooks returns a page of the user's library, optionally filtered by
// reading status via ?status=.
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	claims := h.claims(w, r)
	if claims == nil {
		return
	}

	status := recommend.ReadingStatus(r.URL.Query().Get("status"))
	switch status {
	case "", recommend.StatusWantToRead, recommend.StatusReading, recommend.StatusFinished:
	default:
		rw.BadRequest("Unknown status filter: " + string(status))
		return
	}

	limit, offset := h.pagination(r)
	books, total, err := h.db.ListBooks(r.Context(), claims.UserID, status, limit, offset)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.SuccessWithPagination(books, &PaginationMeta{
		Total:   total,
		Count:   len(books),
		Offset:  offset,
		Limit:   limit,
		HasMore: int64(offset+len(books)) < total,
	})
}

// GetBook returns one library entry.
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	claims := h.claims(w, r)
	if claims == nil {
		return
	}

	book, err := h.db.GetBook(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("Book not found in library")
			return
		}
		rw.DatabaseError(err)
		return
	}
	rw.Success(book)
}

// UpdateBook changes a library entry's rating or reading status.
func (h *Handler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	claims := h.claims(w, r)
	if claims == nil {
		return
	}

	var req models.UpdateBookRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if req.Rating == nil && req.Status == nil {
		rw.BadRequest("Nothing to update")
		return
	}

	book, err := h.db.UpdateBook(r.Context(), claims.UserID, chi.URLParam(r, "id"), req)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("Book not found in library")
			return
		}
		rw.DatabaseError(err)
		return
	}
	rw.Success(book)
}

// DeleteBook removes a library entry.
func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	claims := h.claims(w, r)
	if claims == nil {
		return
	}

	if err := h.db.DeleteBook(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("Book not found in library")
			return
		}
		rw.DatabaseError(err)
		return
	}
	rw.NoContent()
}

// LibraryStatsHandler returns aggregate counts and the average rating for
// the user's library.
func (h *Handler) LibraryStatsHandler(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	claims := h.claims(w, r)
	if claims == nil {
		return
	}

	stats, err := h.db.LibraryStats(r.Context(), claims.UserID)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(stats)
}
