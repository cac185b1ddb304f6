package model

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// WriteSampleArtifacts writes a small deterministic artifact set into dir
// for use in tests across packages. The forest splits on cholesterol at
// 240, the tree on vessel count at 0.5, and the SVM weighs cholesterol
// only, so expected outputs are easy to derive by hand.
func WriteSampleArtifacts(dir string) error {
	sampleForest := forest{
		Trees: []decisionTree{
			{Nodes: []treeNode{
				{Feature: 4, Threshold: 240, Left: 1, Right: 2},
				{Feature: -1, Value: [2]float64{8, 2}},
				{Feature: -1, Value: [2]float64{1, 9}},
			}},
			{Nodes: []treeNode{
				{Feature: 4, Threshold: 240, Left: 1, Right: 2},
				{Feature: -1, Value: [2]float64{8, 2}},
				{Feature: -1, Value: [2]float64{1, 9}},
			}},
		},
		FeatureImportances: []float64{0.02, 0.01, 0.08, 0.06, 0.30, 0.01, 0.03, 0.10, 0.05, 0.12, 0.04, 0.15, 0.03},
	}

	sampleTree := decisionTree{Nodes: []treeNode{
		{Feature: 11, Threshold: 0.5, Left: 1, Right: 2},
		{Feature: -1, Value: [2]float64{7, 3}},
		{Feature: -1, Value: [2]float64{2, 8}},
	}}

	sampleSVM := linearSVM{
		Weights: []float64{0, 0, 0, 0, 0.01, 0, 0, 0, 0, 0, 0, 0, 0},
		Bias:    -2.0,
		ProbA:   -1.0,
		ProbB:   0.0,
	}

	identity := make([]float64, FeatureCount)
	ones := make([]float64, FeatureCount)
	for i := range ones {
		ones[i] = 1
	}
	sampleScaler := stdScaler{Mean: identity, Scale: ones}

	names := []string{
		"age", "sex", "cp", "trestbps", "chol", "fbs", "restecg",
		"thalach", "exang", "oldpeak", "slope", "ca", "thal",
	}

	files := map[string]any{
		primaryFile:      sampleForest,
		decisionTreeFile: sampleTree,
		svmFile:          sampleSVM,
		svmScalerFile:    sampleScaler,
		featureNamesFile: names,
	}
	for name, v := range files {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o600); err != nil {
			return err
		}
	}
	return nil
}
