// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/bookbrain/bookbrain/internal/metrics"
	"github.com/bookbrain/bookbrain/internal/models"
)

// searchKeyPrefix namespaces search entries in the Badger keyspace.
const searchKeyPrefix = "search:"

// SearchCache stores merged search responses in BadgerDB with a TTL, so
// repeated queries do not hit the upstream catalogs. Entries expire via
// Badger's native TTL; there is no manual sweep.
type SearchCache struct {
	db *badger.DB
}

// NewSearchCache opens a Badger-backed cache at dir; an empty dir runs the
// cache fully in memory.
func NewSearchCache(dir string) (*SearchCache, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open search cache: %w", err)
	}
	return &SearchCache{db: db}, nil
}

// Close closes the underlying Badger database.
func (c *SearchCache) Close() error {
	return c.db.Close()
}

// cacheKey builds the cache key for a query. Queries are case-folded so
// "Dune" and "dune" share an entry.
func cacheKey(query string, limit int) []byte {
	return []byte(searchKeyPrefix + strings.ToLower(strings.TrimSpace(query)) + ":" + strconv.Itoa(limit))
}

// Get returns the cached result set for the query, or (nil, false) on miss.
// A corrupt entry behaves like a miss and gets overwritten on the next Set.
func (c *SearchCache) Get(query string, limit int) ([]models.Book, bool) {
	var books []models.Book
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(query, limit))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &books)
		})
	})
	if err != nil {
		metrics.CatalogCacheMisses.Inc()
		return nil, false
	}
	metrics.CatalogCacheHits.Inc()
	return books, true
}

// Set stores a result set for the query with the given TTL.
func (c *SearchCache) Set(query string, limit int, books []models.Book, ttl time.Duration) error {
	data, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(cacheKey(query, limit), data).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
}
