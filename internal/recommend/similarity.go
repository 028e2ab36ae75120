// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

package recommend

import (
	"math"
	"sort"
)

// cosineSimilarity computes the cosine of the angle between two term-weight
// vectors. The similarity of a zero vector with anything is defined as 0.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// semanticScores computes one score per candidate: the mean of the top-k
// cosine similarities against the favorite vectors. Averaging the best few
// matches instead of taking the single maximum keeps one outlier favorite
// from dominating the signal; with fewer than k favorites, all are averaged.
func semanticScores(candidates, favorites [][]float64, topK int) []float64 {
	scores := make([]float64, len(candidates))
	if len(favorites) == 0 {
		return scores
	}

	sims := make([]float64, len(favorites))
	for c, cand := range candidates {
		for f, fav := range favorites {
			sims[f] = cosineSimilarity(cand, fav)
		}
		k := topK
		if len(sims) < k {
			k = len(sims)
		}
		sort.Sort(sort.Reverse(sort.Float64Slice(sims)))
		var sum float64
		for i := 0; i < k; i++ {
			sum += sims[i]
		}
		scores[c] = sum / float64(k)
	}
	return scores
}

// penaltyScores computes one score per candidate: the maximum cosine
// similarity against any disliked vector, or 0 for every candidate when no
// disliked books exist.
func penaltyScores(candidates, disliked [][]float64) []float64 {
	scores := make([]float64, len(candidates))
	if len(disliked) == 0 {
		return scores
	}

	for c, cand := range candidates {
		var maxSim float64
		for _, dis := range disliked {
			if sim := cosineSimilarity(cand, dis); sim > maxSim {
				maxSim = sim
			}
		}
		scores[c] = maxSim
	}
	return scores
}
