// BookBrain - Personal Library Tracking and Book Recommendations
// Copyright 2026 BookBrain contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookbrain/bookbrain

package recommend

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "empty text",
			text: "",
			want: []string{},
		},
		{
			name: "stop words removed",
			text: "the cat and the hat",
			want: []string{"cat", "hat", "cat hat"},
		},
		{
			name: "bigrams follow surviving tokens",
			text: "a dark fantasy epic",
			want: []string{"dark", "fantasy", "epic", "dark fantasy", "fantasy epic"},
		},
		{
			name: "case folded and punctuation split",
			text: "Space-Opera, Epic!",
			want: []string{"space", "opera", "epic", "space opera", "opera epic"},
		},
		{
			name: "single characters dropped",
			text: "x marks y spot",
			want: []string{"marks", "spot", "marks spot"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenize(tt.text)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestVectorizerFitErrors(t *testing.T) {
	tests := []struct {
		name    string
		corpus  []string
		wantErr error
	}{
		{
			name:    "empty corpus",
			corpus:  nil,
			wantErr: ErrEmptyCorpus,
		},
		{
			name:    "only stop words",
			corpus:  []string{"the and of", "a an the"},
			wantErr: ErrNoTerms,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newVectorizer(1500)
			err := v.fit(tt.corpus)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("fit() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestVectorizerTransformBeforeFit(t *testing.T) {
	v := newVectorizer(1500)
	if _, err := v.transform([]string{"anything"}); !errors.Is(err, ErrNotFitted) {
		t.Errorf("transform() error = %v, want %v", err, ErrNotFitted)
	}
}

func TestVectorizerVocabularyCap(t *testing.T) {
	corpus := []string{
		"alpha alpha alpha beta beta gamma",
		"alpha beta delta",
	}

	v := newVectorizer(2)
	if err := v.fit(corpus); err != nil {
		t.Fatalf("fit() error = %v", err)
	}
	if len(v.vocabulary) != 2 {
		t.Fatalf("vocabulary size = %d, want 2", len(v.vocabulary))
	}
	// Highest corpus-wide counts survive the cap.
	for _, term := range []string{"alpha", "beta"} {
		if _, ok := v.vocabulary[term]; !ok {
			t.Errorf("vocabulary missing %q", term)
		}
	}
}

func TestVectorizerTransform(t *testing.T) {
	corpus := []string{
		"dark fantasy with dragons",
		"space opera among distant stars",
		"cozy mystery in small town",
	}

	v := newVectorizer(1500)
	if err := v.fit(corpus); err != nil {
		t.Fatalf("fit() error = %v", err)
	}

	vectors, err := v.transform(corpus)
	if err != nil {
		t.Fatalf("transform() error = %v", err)
	}
	if len(vectors) != len(corpus) {
		t.Fatalf("transform() returned %d vectors, want %d", len(vectors), len(corpus))
	}

	for i, vec := range vectors {
		var norm float64
		for _, x := range vec {
			norm += x * x
		}
		if math.Abs(math.Sqrt(norm)-1) > 1e-9 {
			t.Errorf("vector %d norm = %f, want 1", i, math.Sqrt(norm))
		}
	}

	// A document sharing no vocabulary terms maps to the zero vector.
	zero, err := v.transform([]string{"unrelated vocabulary entirely"})
	if err != nil {
		t.Fatalf("transform() error = %v", err)
	}
	for _, x := range zero[0] {
		if x != 0 {
			t.Fatalf("expected zero vector for out-of-vocabulary document, got %v", zero[0])
		}
	}
}

func TestVectorizerDeterminism(t *testing.T) {
	corpus := []string{
		"science fiction epic about desert planets",
		"fantasy adventure with ancient magic",
		"science fantasy crossover story",
	}

	run := func() [][]float64 {
		v := newVectorizer(1500)
		if err := v.fit(corpus); err != nil {
			t.Fatalf("fit() error = %v", err)
		}
		vectors, err := v.transform(corpus)
		if err != nil {
			t.Fatalf("transform() error = %v", err)
		}
		return vectors
	}

	if !reflect.DeepEqual(run(), run()) {
		t.Error("identical corpora produced different vector spaces")
	}
}
