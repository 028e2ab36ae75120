// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

package recommend

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
)

// noDescriptionPlaceholder stands in for empty item texts so vectorization
// never sees a degenerate document, which would produce an all-zero vector
// and destabilize the similarity math.
const noDescriptionPlaceholder = "no description"

// reasonSeparator joins the reason fragments of a recommendation.
const reasonSeparator = " • "

// defaultReason is used when no specific signal triggered for a candidate.
const defaultReason = "Based on your profile"

// Engine ranks candidate books against a user's rated library.
//
// Rank is a single synchronous, side-effect-free computation: it reads a
// library snapshot and a candidate list and returns a ranked list. The engine
// holds only immutable configuration, so one Engine may serve concurrent
// requests for different users.
type Engine struct {
	cfg    Config
	logger zerolog.Logger
}

// NewEngine creates a ranking engine with the given configuration.
func NewEngine(cfg Config, logger zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recommend config: %w", err)
	}
	return &Engine{cfg: cfg, logger: logger}, nil
}

// Rank scores every candidate against the library snapshot and returns the
// retained candidates ordered by descending score, truncated to limit
// (DefaultLimit when limit is not positive).
//
// A library with no favorites, or an empty candidate pool, yields an empty
// list. Vectorization trouble degrades to category/author/rating signals
// only; Rank never fails.
func (e *Engine) Rank(library []RatedBook, candidates []Candidate, limit int) []ScoredRecommendation {
	if limit <= 0 {
		limit = e.cfg.DefaultLimit
	}

	var favorites, disliked []RatedBook
	for _, b := range library {
		switch {
		case isFavorite(b, e.cfg.FavoriteMinRating):
			favorites = append(favorites, b)
		case isDisliked(b, e.cfg.DislikedMaxRating):
			disliked = append(disliked, b)
		}
	}
	if len(favorites) == 0 || len(candidates) == 0 {
		return []ScoredRecommendation{}
	}

	semantic, penalty := e.similarityScores(favorites, disliked, candidates)

	favCategories := lowercaseUnion(favorites, func(b RatedBook) []string { return splitCSV(b.Categories) })
	favAuthors := lowercaseUnion(favorites, func(b RatedBook) []string { return splitCSV(b.Authors) })

	recs := make([]ScoredRecommendation, 0, len(candidates))
	for i, cand := range candidates {
		score := semantic[i] * e.cfg.SemanticWeight

		// Penalize only strong resemblance to disliked books; a weak echo
		// is not evidence the user would dislike the candidate.
		if penalty[i] > e.cfg.PenaltyThreshold {
			score -= penalty[i] * e.cfg.PenaltyWeight
		}

		var reasons []string

		if shared := firstShared(cand.Categories, favCategories); shared != "" {
			score += e.cfg.CategoryBonus
			reasons = append(reasons, "Genre: "+titleCase(shared))
		}

		if shared := firstShared(cand.Authors, favAuthors); shared != "" {
			score += e.cfg.AuthorBonus
			reasons = append(reasons, "Author: "+titleCase(shared))
		}

		switch {
		case cand.Rating >= e.cfg.HighRatingMin:
			score += e.cfg.HighRatingBonus
			reasons = append(reasons, "Critically acclaimed")
		case cand.Rating >= e.cfg.GoodRatingMin:
			score += e.cfg.GoodRatingBonus
		}

		if score > e.cfg.MinScore {
			recs = append(recs, ScoredRecommendation{
				Book:   cand,
				Score:  roundScore(score),
				Reason: buildReason(reasons),
			})
		}
	}

	// Scores are pre-rounded to three decimals; the rounding is part of the
	// contract and doubles as the tie grouping. Stable sort keeps input
	// order within a tie group.
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

// similarityScores builds the per-run TF-IDF space and computes the semantic
// and penalty score per candidate. Any vectorization failure is logged and
// recovered by returning all-zero scores for both signals.
func (e *Engine) similarityScores(favorites, disliked []RatedBook, candidates []Candidate) (semantic, penalty []float64) {
	favTexts := normalizeTexts(libraryTexts(favorites))
	disTexts := normalizeTexts(libraryTexts(disliked))
	candTexts := normalizeTexts(candidateTexts(candidates))

	corpus := make([]string, 0, len(favTexts)+len(disTexts)+len(candTexts))
	corpus = append(corpus, favTexts...)
	corpus = append(corpus, disTexts...)
	corpus = append(corpus, candTexts...)

	v := newVectorizer(e.cfg.MaxFeatures)
	if err := v.fit(corpus); err != nil {
		e.logger.Warn().Err(err).
			Int("favorites", len(favorites)).
			Int("candidates", len(candidates)).
			Msg("Vectorization failed, ranking without semantic signal")
		return make([]float64, len(candidates)), make([]float64, len(candidates))
	}

	zeros := func(err error) ([]float64, []float64) {
		e.logger.Warn().Err(err).Msg("Vector transform failed, ranking without semantic signal")
		return make([]float64, len(candidates)), make([]float64, len(candidates))
	}

	candVectors, err := v.transform(candTexts)
	if err != nil {
		return zeros(err)
	}
	favVectors, err := v.transform(favTexts)
	if err != nil {
		return zeros(err)
	}
	disVectors, err := v.transform(disTexts)
	if err != nil {
		return zeros(err)
	}

	return semanticScores(candVectors, favVectors, e.cfg.TopKFavorites),
		penaltyScores(candVectors, disVectors)
}

// normalizeTexts guarantees every entry is non-empty: whitespace-only texts
// are replaced with a fixed placeholder. The output has the same length and
// order as the input.
func normalizeTexts(texts []string) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			out[i] = noDescriptionPlaceholder
		} else {
			out[i] = t
		}
	}
	return out
}

// libraryTexts picks each book's description, falling back to its title.
func libraryTexts(books []RatedBook) []string {
	texts := make([]string, len(books))
	for i, b := range books {
		texts[i] = b.Description
		if texts[i] == "" {
			texts[i] = b.Title
		}
	}
	return texts
}

// candidateTexts picks each candidate's description, falling back to its title.
func candidateTexts(candidates []Candidate) []string {
	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Description
		if texts[i] == "" {
			texts[i] = c.Title
		}
	}
	return texts
}

// lowercaseUnion collects the lowercased, trimmed union of a field across books.
func lowercaseUnion(books []RatedBook, extract func(RatedBook) []string) map[string]struct{} {
	union := make(map[string]struct{})
	for _, b := range books {
		for _, v := range extract(b) {
			union[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
		}
	}
	return union
}

// firstShared returns the lexicographically smallest candidate value whose
// lowercased trimmed form appears in the favorites union, or "" when the
// intersection is empty. Picking the smallest makes the reason text
// deterministic rather than dependent on map iteration order.
func firstShared(values []string, favorites map[string]struct{}) string {
	best := ""
	for _, v := range values {
		norm := strings.ToLower(strings.TrimSpace(v))
		if norm == "" {
			continue
		}
		if _, ok := favorites[norm]; ok && (best == "" || norm < best) {
			best = norm
		}
	}
	return best
}

// buildReason joins up to the first two triggered reasons, defaulting to a
// generic profile explanation when none triggered.
func buildReason(reasons []string) string {
	if len(reasons) == 0 {
		return defaultReason
	}
	if len(reasons) > 2 {
		reasons = reasons[:2]
	}
	return strings.Join(reasons, reasonSeparator)
}

// titleCase uppercases the first letter of every space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// roundScore rounds to three decimal places.
func roundScore(s float64) float64 {
	return math.Round(s*1000) / 1000
}
