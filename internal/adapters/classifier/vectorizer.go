package classifier

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"regexp"
)

// tokenPattern mirrors the tokenization the vectorizer was fitted with:
// word characters, minimum length two.
var tokenPattern = regexp.MustCompile(`\b\w\w+\b`)

// Vectorizer is a fitted TF-IDF vectorizer: a vocabulary mapping tokens to
// feature columns and the per-column inverse-document-frequency weights
// learned at training time. Immutable after load.
type Vectorizer struct {
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	SublinearTF bool           `json:"sublinear_tf"`
}

// LoadVectorizer reads a vectorizer artifact from disk.
func LoadVectorizer(path string) (*Vectorizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vectorizer artifact: %w", err)
	}

	var v Vectorizer
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse vectorizer artifact: %w", err)
	}
	if err := v.validate(); err != nil {
		return nil, fmt.Errorf("invalid vectorizer artifact %s: %w", path, err)
	}

	return &v, nil
}

func (v *Vectorizer) validate() error {
	if len(v.Vocabulary) == 0 {
		return fmt.Errorf("empty vocabulary")
	}
	if len(v.IDF) != len(v.Vocabulary) {
		return fmt.Errorf("idf length %d does not match vocabulary size %d", len(v.IDF), len(v.Vocabulary))
	}
	for token, idx := range v.Vocabulary {
		if idx < 0 || idx >= len(v.IDF) {
			return fmt.Errorf("token %q maps to out-of-range column %d", token, idx)
		}
	}
	return nil
}

// Features returns the number of feature columns.
func (v *Vectorizer) Features() int {
	return len(v.IDF)
}

// Transform converts text into a sparse L2-normalized TF-IDF vector keyed
// by feature column. Out-of-vocabulary tokens contribute nothing.
func (v *Vectorizer) Transform(text string) map[int]float64 {
	counts := make(map[int]float64)
	for _, token := range tokenPattern.FindAllString(text, -1) {
		if idx, ok := v.Vocabulary[token]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return counts
	}

	var sumSquares float64
	for idx, tf := range counts {
		if v.SublinearTF {
			tf = 1 + math.Log(tf)
		}
		weighted := tf * v.IDF[idx]
		counts[idx] = weighted
		sumSquares += weighted * weighted
	}

	norm := math.Sqrt(sumSquares)
	if norm > 0 {
		for idx := range counts {
			counts[idx] /= norm
		}
	}

	return counts
}
