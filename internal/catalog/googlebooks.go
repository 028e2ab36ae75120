// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

// Package catalog queries external book catalogs (Google Books, Open
// Library), normalizes their results, and merges them behind a cache and
// per-upstream circuit breakers.
package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/bookbrain/bookbrain/internal/metrics"
	"github.com/bookbrain/bookbrain/internal/models"
)

// SourceGoogleBooks identifies results from the Google Books API.
const SourceGoogleBooks = "googlebooks"

// GoogleBooksClient queries the Google Books volumes API.
type GoogleBooksClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewGoogleBooksClient creates a Google Books client. The API key is
// optional; unauthenticated requests work at a reduced quota.
func NewGoogleBooksClient(baseURL, apiKey string, timeout time.Duration) *GoogleBooksClient {
	return &GoogleBooksClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Source returns the catalog source name.
func (c *GoogleBooksClient) Source() string { return SourceGoogleBooks }

// googleVolumesResponse mirrors the subset of the volumes payload we read.
type googleVolumesResponse struct {
	Items []struct {
		ID         string `json:"id"`
		VolumeInfo struct {
			Title         string   `json:"title"`
			Authors       []string `json:"authors"`
			Categories    []string `json:"categories"`
			Description   string   `json:"description"`
			AverageRating float64  `json:"averageRating"`
			PublishedDate string   `json:"publishedDate"`
			PageCount     int      `json:"pageCount"`
			ImageLinks    struct {
				Thumbnail string `json:"thumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Search queries the volumes endpoint and returns normalized results.
// The query may use Google's field operators, e.g. `subject:fiction` or
// `inauthor:"Frank Herbert"`.
func (c *GoogleBooksClient) Search(ctx context.Context, query string, limit int) ([]models.Book, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(limit))
	params.Set("printType", "books")
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	var payload googleVolumesResponse
	if err := c.getJSON(ctx, c.baseURL+"?"+params.Encode(), &payload); err != nil {
		return nil, err
	}

	books := make([]models.Book, 0, len(payload.Items))
	for _, item := range payload.Items {
		info := item.VolumeInfo
		if info.Title == "" {
			continue
		}
		books = append(books, models.Book{
			ID:          item.ID,
			Title:       info.Title,
			Authors:     info.Authors,
			Categories:  info.Categories,
			Description: info.Description,
			Thumbnail:   info.ImageLinks.Thumbnail,
			Rating:      info.AverageRating,
			PublishedAt: info.PublishedDate,
			PageCount:   info.PageCount,
			Source:      SourceGoogleBooks,
		})
	}
	return books, nil
}

func (c *GoogleBooksClient) getJSON(ctx context.Context, rawURL string, out any) error {
	start := time.Now()
	err := c.doGetJSON(ctx, rawURL, out)
	metrics.RecordCatalogRequest(SourceGoogleBooks, err, time.Since(start))
	return err
}

func (c *GoogleBooksClient) doGetJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("google books request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("google books returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode google books response: %w", err)
	}
	return nil
}
