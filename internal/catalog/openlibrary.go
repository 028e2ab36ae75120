// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/bookbrain/bookbrain/internal/metrics"
	"github.com/bookbrain/bookbrain/internal/models"
)

// SourceOpenLibrary identifies results from the Open Library search API.
const SourceOpenLibrary = "openlibrary"

// openLibraryCoverURL renders a cover image URL from a cover ID.
const openLibraryCoverURL = "https://covers.openlibrary.org/b/id/%d-M.jpg"

// OpenLibraryClient queries the Open Library search API.
type OpenLibraryClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewOpenLibraryClient creates an Open Library client.
func NewOpenLibraryClient(baseURL string, timeout time.Duration) *OpenLibraryClient {
	return &OpenLibraryClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Source returns the catalog source name.
func (c *OpenLibraryClient) Source() string { return SourceOpenLibrary }

// openLibraryResponse mirrors the subset of the search payload we read.
type openLibraryResponse struct {
	Docs []struct {
		Key              string   `json:"key"`
		Title            string   `json:"title"`
		AuthorName       []string `json:"author_name"`
		Subject          []string `json:"subject"`
		FirstSentence    []string `json:"first_sentence"`
		FirstPublishYear int      `json:"first_publish_year"`
		CoverID          int      `json:"cover_i"`
		RatingsAverage   float64  `json:"ratings_average"`
		NumberOfPages    int      `json:"number_of_pages_median"`
	} `json:"docs"`
}

// Search queries the search endpoint and returns normalized results.
// Open Library understands subject: field syntax but spells Google's
// inauthor: qualifier as author:.
func (c *OpenLibraryClient) Search(ctx context.Context, query string, limit int) ([]models.Book, error) {
	params := url.Values{}
	params.Set("q", strings.ReplaceAll(query, "inauthor:", "author:"))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", "key,title,author_name,subject,first_sentence,first_publish_year,cover_i,ratings_average,number_of_pages_median")

	start := time.Now()
	var payload openLibraryResponse
	err := c.doGetJSON(ctx, c.baseURL+"?"+params.Encode(), &payload)
	metrics.RecordCatalogRequest(SourceOpenLibrary, err, time.Since(start))
	if err != nil {
		return nil, err
	}

	books := make([]models.Book, 0, len(payload.Docs))
	for _, doc := range payload.Docs {
		if doc.Title == "" {
			continue
		}

		book := models.Book{
			// Work keys look like "/works/OL45883W"; keep the tail as ID.
			ID:          "ol-" + strings.TrimPrefix(doc.Key, "/works/"),
			Title:       doc.Title,
			Authors:     doc.AuthorName,
			Categories:  topSubjects(doc.Subject, 5),
			Description: strings.Join(doc.FirstSentence, " "),
			Rating:      doc.RatingsAverage,
			PageCount:   doc.NumberOfPages,
			Source:      SourceOpenLibrary,
		}
		if doc.FirstPublishYear > 0 {
			book.PublishedAt = strconv.Itoa(doc.FirstPublishYear)
		}
		if doc.CoverID > 0 {
			book.Thumbnail = fmt.Sprintf(openLibraryCoverURL, doc.CoverID)
		}
		books = append(books, book)
	}
	return books, nil
}

// topSubjects keeps the leading subjects; Open Library tags works with
// dozens of noisy subject strings.
func topSubjects(subjects []string, n int) []string {
	out := make([]string, 0, n)
	seen := make(map[string]struct{}, n)
	for _, s := range subjects {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[strings.ToLower(s)]; dup {
			continue
		}
		seen[strings.ToLower(s)] = struct{}{}
		out = append(out, s)
		if len(out) == n {
			break
		}
	}
	return out
}

func (c *OpenLibraryClient) doGetJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("open library request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("open library returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode open library response: %w", err)
	}
	return nil
}
