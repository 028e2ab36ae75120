// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

package catalog

import (
	"context"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/bookbrain/bookbrain/internal/logging"
	"github.com/bookbrain/bookbrain/internal/metrics"
	"github.com/bookbrain/bookbrain/internal/models"
)

// Searcher is one upstream catalog.
type Searcher interface {
	Source() string
	Search(ctx context.Context, query string, limit int) ([]models.Book, error)
}

// breakerSearcher wraps a Searcher with a circuit breaker so a failing
// upstream cannot stall every search request. The breaker uses real time
// for its recovery windows; tests exercise the wrapped client directly.
type breakerSearcher struct {
	inner Searcher
	cb    *gobreaker.CircuitBreaker[[]models.Book]
}

// withBreaker wraps an upstream with circuit breaker protection. Opens after
// a 60% failure rate across at least 10 requests; retries after one minute.
func withBreaker(inner Searcher) Searcher {
	name := inner.Source()
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]models.Book](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &breakerSearcher{inner: inner, cb: cb}
}

func (b *breakerSearcher) Source() string { return b.inner.Source() }

func (b *breakerSearcher) Search(ctx context.Context, query string, limit int) ([]models.Book, error) {
	return b.cb.Execute(func() ([]models.Book, error) {
		return b.inner.Search(ctx, query, limit)
	})
}

func stateToString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
