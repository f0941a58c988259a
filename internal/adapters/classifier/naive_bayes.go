package classifier

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// NaiveBayes is a fitted multinomial naive-bayes model over TF-IDF
// features: per-class log priors and per-class, per-feature conditional
// log probabilities. Immutable after load.
type NaiveBayes struct {
	Classes        []string    `json:"classes"`
	ClassLogPrior  []float64   `json:"class_log_prior"`
	FeatureLogProb [][]float64 `json:"feature_log_prob"`
}

// LoadNaiveBayes reads a classifier artifact from disk.
func LoadNaiveBayes(path string, features int) (*NaiveBayes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read classifier artifact: %w", err)
	}

	var m NaiveBayes
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse classifier artifact: %w", err)
	}
	if err := m.validate(features); err != nil {
		return nil, fmt.Errorf("invalid classifier artifact %s: %w", path, err)
	}

	return &m, nil
}

func (m *NaiveBayes) validate(features int) error {
	if len(m.Classes) != 2 {
		return fmt.Errorf("expected 2 classes, got %d", len(m.Classes))
	}
	if len(m.ClassLogPrior) != len(m.Classes) {
		return fmt.Errorf("class_log_prior length %d does not match class count %d",
			len(m.ClassLogPrior), len(m.Classes))
	}
	if len(m.FeatureLogProb) != len(m.Classes) {
		return fmt.Errorf("feature_log_prob has %d rows, want %d", len(m.FeatureLogProb), len(m.Classes))
	}
	for i, row := range m.FeatureLogProb {
		if len(row) != features {
			return fmt.Errorf("feature_log_prob row %d has %d columns, want %d", i, len(row), features)
		}
	}
	return nil
}

// ClassIndex returns the row index for a class label, or -1.
func (m *NaiveBayes) ClassIndex(label string) int {
	for i, c := range m.Classes {
		if c == label {
			return i
		}
	}
	return -1
}

// Probabilities returns calibrated per-class probabilities for a sparse
// feature vector. The log joint per class is the log prior plus the
// weighted sum of conditional log probabilities; a stable softmax turns
// the joints into probabilities summing to one.
func (m *NaiveBayes) Probabilities(features map[int]float64) []float64 {
	joints := make([]float64, len(m.Classes))
	for c := range m.Classes {
		joint := m.ClassLogPrior[c]
		row := m.FeatureLogProb[c]
		for idx, weight := range features {
			joint += weight * row[idx]
		}
		joints[c] = joint
	}

	maxJoint := joints[0]
	for _, j := range joints[1:] {
		if j > maxJoint {
			maxJoint = j
		}
	}

	var sum float64
	probs := make([]float64, len(joints))
	for c, j := range joints {
		probs[c] = math.Exp(j - maxJoint)
		sum += probs[c]
	}
	for c := range probs {
		probs[c] /= sum
	}

	return probs
}
