// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookbrain/bookbrain/internal/config"
	"github.com/bookbrain/bookbrain/internal/models"
)

// Service merges search results from every configured upstream catalog.
// Google Books results come first and win title collisions; Open Library
// fills the gaps.
type Service struct {
	sources  []Searcher
	cache    *SearchCache
	cacheTTL time.Duration
	maxPer   int
	logger   zerolog.Logger
}

// NewService wires the upstream clients, breakers, and cache from config.
func NewService(cfg *config.CatalogConfig, logger zerolog.Logger) (*Service, error) {
	cache, err := NewSearchCache(cfg.CachePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create search cache: %w", err)
	}

	google := NewGoogleBooksClient(cfg.GoogleBooksURL, cfg.GoogleBooksAPIKey, cfg.Timeout)
	openLib := NewOpenLibraryClient(cfg.OpenLibraryURL, cfg.Timeout)

	return &Service{
		sources:  []Searcher{withBreaker(google), withBreaker(openLib)},
		cache:    cache,
		cacheTTL: cfg.CacheTTL,
		maxPer:   cfg.MaxResults,
		logger:   logger,
	}, nil
}

// newServiceWithSources is the test seam: in-memory cache, explicit sources.
func newServiceWithSources(sources []Searcher, cacheTTL time.Duration, maxPer int, logger zerolog.Logger) (*Service, error) {
	cache, err := NewSearchCache("")
	if err != nil {
		return nil, err
	}
	return &Service{
		sources:  sources,
		cache:    cache,
		cacheTTL: cacheTTL,
		maxPer:   maxPer,
		logger:   logger,
	}, nil
}

// Close releases the cache.
func (s *Service) Close() error {
	return s.cache.Close()
}

// Search queries every source and returns the merged, title-deduplicated
// result list, at most limit entries (capped at the configured per-source
// maximum). Responses are served from the cache when fresh.
//
// A failing source is logged and skipped; Search fails only when every
// source fails.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]models.Book, error) {
	if limit <= 0 || limit > s.maxPer {
		limit = s.maxPer
	}

	if books, ok := s.cache.Get(query, limit); ok {
		return books, nil
	}

	var merged []models.Book
	seen := make(map[string]struct{})
	var failures int
	for _, source := range s.sources {
		books, err := source.Search(ctx, query, limit)
		if err != nil {
			failures++
			s.logger.Warn().Err(err).
				Str("source", source.Source()).
				Str("query", query).
				Msg("Catalog source failed, continuing with remaining sources")
			continue
		}
		for _, book := range books {
			key := book.NormalizedTitle()
			if _, dup := seen[key]; dup || key == "" {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, book)
		}
	}

	if failures == len(s.sources) {
		return nil, fmt.Errorf("all catalog sources failed for query %q", query)
	}
	if len(merged) > limit {
		merged = merged[:limit]
	}

	if err := s.cache.Set(query, limit, merged, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to cache search response")
	}
	return merged, nil
}

// SearchBySubject queries every source for books in a subject.
func (s *Service) SearchBySubject(ctx context.Context, subject string, limit int) ([]models.Book, error) {
	return s.Search(ctx, `subject:"`+subject+`"`, limit)
}

// SearchByAuthor queries every source for books by an author.
func (s *Service) SearchByAuthor(ctx context.Context, author string, limit int) ([]models.Book, error) {
	return s.Search(ctx, `inauthor:"`+author+`"`, limit)
}
