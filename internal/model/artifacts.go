// Package model loads serialized classifier artifacts and exposes them
// behind a Registry. Artifacts are JSON files produced by the offline
// training pipeline; this package only consumes them as opaque
// classifiers. Any artifact that is missing or malformed is treated as
// absent rather than fatal.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Prediction is a single classifier verdict. Label 1 means cardiac risk
// indicated; Probability is the model's estimate for the positive class.
// The label is the model's own hard decision, not thresholded from the
// probability.
type Prediction struct {
	Label       int     `json:"label"`
	Probability float64 `json:"probability"`
}

// Classifier is the capability contract every loaded model satisfies.
type Classifier interface {
	Predict(features []float64) (Prediction, error)
}

// Scaler transforms a feature vector before prediction. A scaler is
// always paired with the classifier it was fitted for.
type Scaler interface {
	Transform(features []float64) []float64
}

// FeatureCount is the fixed input width every artifact must match.
const FeatureCount = 13

// treeNode is one node of a serialized decision tree. Feature -1 marks a
// leaf; Value holds the per-class sample counts at that leaf.
type treeNode struct {
	Feature   int        `json:"feature"`
	Threshold float64    `json:"threshold"`
	Left      int        `json:"left"`
	Right     int        `json:"right"`
	Value     [2]float64 `json:"value"`
}

type decisionTree struct {
	Nodes []treeNode `json:"nodes"`
}

func (t *decisionTree) validate() error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	for i, n := range t.Nodes {
		if n.Feature >= FeatureCount {
			return fmt.Errorf("node %d: feature index %d out of range", i, n.Feature)
		}
		if n.Feature >= 0 {
			if n.Left < 0 || n.Left >= len(t.Nodes) || n.Right < 0 || n.Right >= len(t.Nodes) {
				return fmt.Errorf("node %d: child index out of range", i)
			}
		}
	}
	return nil
}

// classShares walks the tree for one sample and returns the normalized
// class distribution at the reached leaf.
func (t *decisionTree) classShares(x []float64) ([2]float64, error) {
	idx := 0
	for steps := 0; steps <= len(t.Nodes); steps++ {
		n := t.Nodes[idx]
		if n.Feature < 0 {
			total := n.Value[0] + n.Value[1]
			if total <= 0 {
				return [2]float64{0.5, 0.5}, nil
			}
			return [2]float64{n.Value[0] / total, n.Value[1] / total}, nil
		}
		if x[n.Feature] <= n.Threshold {
			idx = n.Left
		} else {
			idx = n.Right
		}
	}
	return [2]float64{}, fmt.Errorf("tree traversal did not reach a leaf")
}

func (t *decisionTree) Predict(x []float64) (Prediction, error) {
	if len(x) != FeatureCount {
		return Prediction{}, fmt.Errorf("expected %d features, got %d", FeatureCount, len(x))
	}
	shares, err := t.classShares(x)
	if err != nil {
		return Prediction{}, err
	}
	return Prediction{Label: argmax(shares), Probability: shares[1]}, nil
}

// forest is a bagged ensemble of decision trees. Its probability is the
// mean of the per-tree class shares and its label the argmax of that
// mean, matching how the ensemble was evaluated during training.
type forest struct {
	Trees              []decisionTree `json:"trees"`
	FeatureImportances []float64      `json:"feature_importances"`
}

func (f *forest) validate() error {
	if len(f.Trees) == 0 {
		return fmt.Errorf("forest has no trees")
	}
	for i := range f.Trees {
		if err := f.Trees[i].validate(); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	if len(f.FeatureImportances) != 0 && len(f.FeatureImportances) != FeatureCount {
		return fmt.Errorf("expected %d feature importances, got %d", FeatureCount, len(f.FeatureImportances))
	}
	return nil
}

func (f *forest) Predict(x []float64) (Prediction, error) {
	if len(x) != FeatureCount {
		return Prediction{}, fmt.Errorf("expected %d features, got %d", FeatureCount, len(x))
	}
	var sum [2]float64
	for i := range f.Trees {
		shares, err := f.Trees[i].classShares(x)
		if err != nil {
			return Prediction{}, err
		}
		sum[0] += shares[0]
		sum[1] += shares[1]
	}
	n := float64(len(f.Trees))
	avg := [2]float64{sum[0] / n, sum[1] / n}
	return Prediction{Label: argmax(avg), Probability: avg[1]}, nil
}

// linearSVM is a linear support vector classifier with Platt-scaled
// probabilities: P(risk) = 1 / (1 + exp(ProbA*margin + ProbB)).
type linearSVM struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
	ProbA   float64   `json:"prob_a"`
	ProbB   float64   `json:"prob_b"`
}

func (s *linearSVM) validate() error {
	if len(s.Weights) != FeatureCount {
		return fmt.Errorf("expected %d weights, got %d", FeatureCount, len(s.Weights))
	}
	return nil
}

func (s *linearSVM) Predict(x []float64) (Prediction, error) {
	if len(x) != FeatureCount {
		return Prediction{}, fmt.Errorf("expected %d features, got %d", FeatureCount, len(x))
	}
	margin := s.Bias
	for i, w := range s.Weights {
		margin += w * x[i]
	}
	label := 0
	if margin > 0 {
		label = 1
	}
	prob := 1.0 / (1.0 + math.Exp(s.ProbA*margin+s.ProbB))
	return Prediction{Label: label, Probability: prob}, nil
}

// stdScaler applies the standardization fitted alongside the SVM:
// (x - mean) / scale per component.
type stdScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func (s *stdScaler) validate() error {
	if len(s.Mean) != FeatureCount || len(s.Scale) != FeatureCount {
		return fmt.Errorf("expected %d mean/scale entries, got %d/%d", FeatureCount, len(s.Mean), len(s.Scale))
	}
	return nil
}

func (s *stdScaler) Transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		scale := 1.0
		if i < len(s.Scale) && s.Scale[i] != 0 {
			scale = s.Scale[i]
		}
		mean := 0.0
		if i < len(s.Mean) {
			mean = s.Mean[i]
		}
		out[i] = (x[i] - mean) / scale
	}
	return out
}

func argmax(shares [2]float64) int {
	if shares[1] > shares[0] {
		return 1
	}
	return 0
}

type validator interface {
	validate() error
}

// loadArtifact reads one JSON artifact into dst and runs its structural
// validation. Both I/O and format errors make the artifact absent.
func loadArtifact(path string, dst validator) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if err := dst.validate(); err != nil {
		return fmt.Errorf("validate %s: %w", path, err)
	}
	return nil
}
