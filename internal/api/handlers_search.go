// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

package api

import (
	"net/http"
	"strconv"
	"strings"
)

// Search queries the external catalogs and returns merged results.
// Query parameters: q (required), limit (optional).
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		rw.BadRequest("Query parameter q is required")
		return
	}
	if len(query) > 512 {
		rw.BadRequest("Query too long")
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

	books, err := h.catalog.Search(r.Context(), query, limit)
	if err != nil {
		rw.ExternalServiceError("catalog", err)
		return
	}

	rw.SuccessWithPagination(books, &PaginationMeta{Count: len(books), Limit: limit})
}
