// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

// Package recommend implements the content-based recommendation scoring engine.
//
// The engine turns a user's rated library into a ranked list of novel candidate
// books. Each invocation is a stateless, one-shot computation: a TF-IDF vector
// space is built fresh over the combined favorite/disliked/candidate corpus,
// candidates are scored by cosine similarity against the favorite and disliked
// sets, and a composite score merges the semantic signal with category overlap,
// author overlap, external rating, and a dislike penalty.
//
// # Scoring Model
//
// The composite score is additive, so a candidate can partially qualify on one
// axis even when weak on others:
//
//	score = 0.45 * semantic
//	      - 0.25 * penalty      (only when penalty > 0.40)
//	      + 0.30                (flat, any shared category with favorites)
//	      + 0.15                (flat, any shared author with favorites)
//	      + 0.10 / 0.05         (external rating >= 4.5 / >= 4.0)
//
// Candidates scoring 0.25 or less are dropped; survivors are sorted by score
// rounded to three decimals and truncated to the requested limit.
//
// # Failure Semantics
//
// Degenerate input (no favorites, no candidates) yields an empty list, never an
// error. A vectorization failure is recovered locally: semantic and penalty
// scores fall back to zero and ranking proceeds on the remaining signals. No
// error from this package reaches the caller through Rank.
//
// # Concurrency
//
// All operations are pure functions of their inputs with no shared mutable
// state, safe to invoke concurrently for different users. The vector space is
// never cached across calls: corpus composition differs per call and a stale
// vocabulary would silently bias later runs.
package recommend
