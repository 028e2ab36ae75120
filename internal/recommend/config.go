// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

package recommend

import "fmt"

// Config holds the scoring weights and thresholds of the ranking engine.
// The defaults reproduce the documented scoring contract; they are exposed
// as configuration so deployments can tune signal balance without rebuilds.
type Config struct {
	// SemanticWeight scales the cosine-similarity-to-favorites signal.
	SemanticWeight float64 `koanf:"semantic_weight"`

	// PenaltyWeight scales the similarity-to-disliked penalty.
	PenaltyWeight float64 `koanf:"penalty_weight"`

	// PenaltyThreshold is the exclusive activation bound for the penalty:
	// a candidate is penalized only when its max similarity to a disliked
	// book strictly exceeds this value.
	PenaltyThreshold float64 `koanf:"penalty_threshold"`

	// CategoryBonus is the flat bonus for any category overlap with favorites.
	CategoryBonus float64 `koanf:"category_bonus"`

	// AuthorBonus is the flat bonus for any author overlap with favorites.
	AuthorBonus float64 `koanf:"author_bonus"`

	// HighRatingBonus applies when the external rating is >= HighRatingMin.
	HighRatingBonus float64 `koanf:"high_rating_bonus"`
	HighRatingMin   float64 `koanf:"high_rating_min"`

	// GoodRatingBonus applies when the external rating is >= GoodRatingMin
	// but below HighRatingMin.
	GoodRatingBonus float64 `koanf:"good_rating_bonus"`
	GoodRatingMin   float64 `koanf:"good_rating_min"`

	// MinScore is the exclusive retention threshold: candidates are kept
	// only when their composite score strictly exceeds it.
	MinScore float64 `koanf:"min_score"`

	// DefaultLimit is the result count used when Rank is called with a
	// non-positive limit.
	DefaultLimit int `koanf:"default_limit"`

	// MaxFeatures caps the TF-IDF vocabulary size.
	MaxFeatures int `koanf:"max_features"`

	// TopKFavorites is how many best favorite similarities are averaged per
	// candidate. Fewer favorites than this means averaging all of them.
	TopKFavorites int `koanf:"top_k_favorites"`

	// FavoriteMinRating is the inclusive rating bound for the favorite set.
	FavoriteMinRating float64 `koanf:"favorite_min_rating"`

	// DislikedMaxRating is the inclusive rating bound for the disliked set.
	DislikedMaxRating float64 `koanf:"disliked_max_rating"`
}

// DefaultConfig returns the scoring contract defaults.
func DefaultConfig() Config {
	return Config{
		SemanticWeight:    0.45,
		PenaltyWeight:     0.25,
		PenaltyThreshold:  0.4,
		CategoryBonus:     0.30,
		AuthorBonus:       0.15,
		HighRatingBonus:   0.10,
		HighRatingMin:     4.5,
		GoodRatingBonus:   0.05,
		GoodRatingMin:     4.0,
		MinScore:          0.25,
		DefaultLimit:      12,
		MaxFeatures:       1500,
		TopKFavorites:     3,
		FavoriteMinRating: 3.5,
		DislikedMaxRating: 2.5,
	}
}

// Validate checks the configuration for internally inconsistent values.
func (c Config) Validate() error {
	if c.DefaultLimit <= 0 {
		return fmt.Errorf("default_limit must be positive, got %d", c.DefaultLimit)
	}
	if c.MaxFeatures <= 0 {
		return fmt.Errorf("max_features must be positive, got %d", c.MaxFeatures)
	}
	if c.TopKFavorites <= 0 {
		return fmt.Errorf("top_k_favorites must be positive, got %d", c.TopKFavorites)
	}
	if c.FavoriteMinRating <= c.DislikedMaxRating {
		// Overlapping thresholds would break the favorite/disliked disjointness invariant.
		return fmt.Errorf("favorite_min_rating (%.2f) must exceed disliked_max_rating (%.2f)",
			c.FavoriteMinRating, c.DislikedMaxRating)
	}
	if c.PenaltyThreshold < 0 || c.PenaltyThreshold > 1 {
		return fmt.Errorf("penalty_threshold must be in [0,1], got %.2f", c.PenaltyThreshold)
	}
	return nil
}
