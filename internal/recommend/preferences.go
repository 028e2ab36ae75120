// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

package recommend

import "sort"

// Preference accumulation weights. A single 5-star book should influence
// preference more than three 3-star books, and disliked books actively
// suppress their categories rather than being ignored.
const (
	categoryWeightFive       = 3.0
	categoryWeightFour       = 2.0
	categoryWeightFinished   = 1.5
	categoryWeightDefault    = 1.0
	categoryWeightDisliked   = -1.0
	authorWeightLoved        = 3.0
	authorWeightDefault      = 1.0
	authorWeightDisliked     = 0.0
	maxFavoriteCategoryCount = 6
	maxFavoriteAuthorCount   = 4
)

// FavoriteCategories derives the user's ranked favorite categories from the
// full library. Each book contributes a weight to every category it carries:
// 3 for a 5-star rating, 2 for 4 stars, -1 for 2 stars or below, 1.5 for an
// unrated finished book, and 1 otherwise. Categories whose accumulated weight
// ends up at or below zero are discarded; the rest are returned best-first,
// at most six. Ties are broken by name so the ordering is deterministic.
func FavoriteCategories(library []RatedBook) []string {
	weights := make(map[string]float64)
	for _, book := range library {
		categories := splitCSV(book.Categories)
		if len(categories) == 0 {
			continue
		}

		weight := categoryWeightDefault
		switch {
		case book.Rated() && book.Rating == 5:
			weight = categoryWeightFive
		case book.Rated() && book.Rating == 4:
			weight = categoryWeightFour
		case book.Rated() && book.Rating <= 2:
			weight = categoryWeightDisliked
		case !book.Rated() && book.Status == StatusFinished:
			weight = categoryWeightFinished
		}

		for _, cat := range categories {
			weights[cat] += weight
		}
	}

	for cat, w := range weights {
		if w <= 0 {
			delete(weights, cat)
		}
	}
	return topNames(weights, maxFavoriteCategoryCount)
}

// FavoriteAuthors derives the user's ranked favorite authors: 3 per book
// rated 4 or above, 0 for books rated 2 or below, 1 otherwise. Unlike
// categories there is no negative suppression and no non-positive filter;
// the floor is already zero, so a zero-weight author can still fill a
// trailing slot. Returns at most four names, best-first, ties broken by name.
func FavoriteAuthors(library []RatedBook) []string {
	weights := make(map[string]float64)
	for _, book := range library {
		authors := splitCSV(book.Authors)
		if len(authors) == 0 {
			continue
		}

		weight := authorWeightDefault
		if book.Rated() {
			switch {
			case book.Rating >= 4:
				weight = authorWeightLoved
			case book.Rating <= 2:
				weight = authorWeightDisliked
			}
		}

		for _, author := range authors {
			weights[author] += weight
		}
	}
	return topNames(weights, maxFavoriteAuthorCount)
}

// topNames returns up to n keys sorted by weight descending, then name
// ascending. The secondary sort keeps rank stable across runs; map iteration
// order must never leak into the output.
func topNames(weights map[string]float64, n int) []string {
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if weights[names[i]] != weights[names[j]] {
			return weights[names[i]] > weights[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > n {
		names = names[:n]
	}
	return names
}
