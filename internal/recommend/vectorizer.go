// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

package recommend

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// Vectorization errors.
var (
	// ErrEmptyCorpus is returned when Fit is called on an empty corpus.
	ErrEmptyCorpus = errors.New("empty corpus for tf-idf fit")

	// ErrNoTerms is returned when the corpus yields no usable terms, for
	// example when every document consists solely of stop-words.
	ErrNoTerms = errors.New("no usable terms in corpus")

	// ErrNotFitted is returned when Transform is called before Fit.
	ErrNotFitted = errors.New("vectorizer not fitted")
)

// tokenPattern extracts word tokens; compiled once at package init.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// vectorizer is a TF-IDF vectorizer over unigrams and bigrams.
//
// The vocabulary is built from the fit corpus with English stop-words removed
// and is capped at maxFeatures terms, keeping the terms that occur most often
// across the whole corpus (ties broken lexicographically). IDF values are
// smoothed so unseen terms cannot produce infinities:
//
//	idf(t) = ln((1 + N) / (1 + df(t))) + 1
//
// Produced vectors are L2-normalized, so the dot product of two transformed
// documents is their cosine similarity.
//
// A vectorizer is fitted once per recommendation run and discarded; it is not
// safe for concurrent use and is never shared between runs.
type vectorizer struct {
	maxFeatures int
	vocabulary  map[string]int
	idf         []float64
	fitted      bool
}

// newVectorizer creates an unfitted vectorizer with the given vocabulary cap.
func newVectorizer(maxFeatures int) *vectorizer {
	return &vectorizer{maxFeatures: maxFeatures}
}

// tokenize lowercases the text and extracts unigram and bigram terms.
// Stop-words and single-character tokens are dropped before n-gram assembly,
// so bigrams span the surviving token sequence: "the dark fantasy" yields
// "dark", "fantasy", and "dark fantasy".
func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	words := make([]string, 0, len(raw))
	for _, w := range raw {
		if len(w) < 2 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		words = append(words, w)
	}

	terms := make([]string, 0, 2*len(words))
	terms = append(terms, words...)
	for i := 0; i+1 < len(words); i++ {
		terms = append(terms, words[i]+" "+words[i+1])
	}
	return terms
}

// fit builds the vocabulary and IDF table from the corpus.
func (v *vectorizer) fit(corpus []string) error {
	if len(corpus) == 0 {
		return ErrEmptyCorpus
	}

	totalCounts := make(map[string]int)
	docFreq := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]struct{})
		for _, term := range tokenize(doc) {
			totalCounts[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				docFreq[term]++
			}
		}
	}
	if len(totalCounts) == 0 {
		return ErrNoTerms
	}

	// Cap the vocabulary at the most frequent terms across the corpus,
	// breaking ties lexicographically for deterministic output.
	terms := make([]string, 0, len(totalCounts))
	for term := range totalCounts {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if totalCounts[terms[i]] != totalCounts[terms[j]] {
			return totalCounts[terms[i]] > totalCounts[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if v.maxFeatures > 0 && len(terms) > v.maxFeatures {
		terms = terms[:v.maxFeatures]
	}

	// Stable index assignment: sorted term order.
	sort.Strings(terms)
	v.vocabulary = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		v.vocabulary[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
	v.fitted = true
	return nil
}

// transform converts documents into L2-normalized TF-IDF vectors in the
// fitted vector space. Documents sharing no vocabulary terms come out as
// zero vectors.
func (v *vectorizer) transform(docs []string) ([][]float64, error) {
	if !v.fitted {
		return nil, ErrNotFitted
	}

	vectors := make([][]float64, len(docs))
	for d, doc := range docs {
		vec := make([]float64, len(v.idf))
		for _, term := range tokenize(doc) {
			if i, ok := v.vocabulary[term]; ok {
				vec[i] += v.idf[i]
			}
		}

		var norm float64
		for _, x := range vec {
			norm += x * x
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for i := range vec {
				vec[i] /= norm
			}
		}
		vectors[d] = vec
	}
	return vectors, nil
}
