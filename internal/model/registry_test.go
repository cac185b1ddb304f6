package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_EmptyDir(t *testing.T) {
	reg := Load(t.TempDir())

	if reg.Available() {
		t.Error("empty directory must leave the registry unavailable")
	}
	if _, err := reg.Primary(); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("expected ErrNotLoaded, got %v", err)
	}
	if n := reg.LoadedCount(); n != 0 {
		t.Errorf("expected 0 loaded classifiers, got %d", n)
	}
	if reg.Importances() != nil {
		t.Error("expected nil importances without a primary classifier")
	}
	if len(reg.Comparisons()) != 0 {
		t.Error("expected no comparisons")
	}
}

func TestLoad_FullSet(t *testing.T) {
	reg := loadSample(t)

	if !reg.Available() {
		t.Fatal("registry must be available after a full load")
	}
	if n := reg.LoadedCount(); n != 3 {
		t.Errorf("expected 3 loaded classifiers, got %d", n)
	}
	if len(reg.Importances()) != FeatureCount {
		t.Errorf("expected %d importance weights, got %d", FeatureCount, len(reg.Importances()))
	}
	if len(reg.FeatureNames()) != FeatureCount {
		t.Errorf("expected %d feature names, got %d", FeatureCount, len(reg.FeatureNames()))
	}
	for _, name := range []string{DecisionTreeName, SVMName} {
		if _, ok := reg.Comparisons()[name]; !ok {
			t.Errorf("comparison %q missing", name)
		}
	}
}

func TestLoad_SVMWithoutScaler(t *testing.T) {
	dir := t.TempDir()
	if err := WriteSampleArtifacts(dir); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(dir, svmScalerFile)); err != nil {
		t.Fatal(err)
	}

	reg := Load(dir)
	if _, ok := reg.Comparisons()[SVMName]; ok {
		t.Error("svm must be skipped when its scaler is missing")
	}
	if _, ok := reg.Comparisons()[DecisionTreeName]; !ok {
		t.Error("decision tree must survive an svm scaler failure")
	}
	if !reg.Available() {
		t.Error("primary classifier must survive an svm scaler failure")
	}
}

func TestLoad_PartialSet(t *testing.T) {
	dir := t.TempDir()
	if err := WriteSampleArtifacts(dir); err != nil {
		t.Fatal(err)
	}
	// Only the primary classifier remains.
	for _, name := range []string{decisionTreeFile, svmFile, svmScalerFile, featureNamesFile} {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			t.Fatal(err)
		}
	}

	reg := Load(dir)
	if !reg.Available() {
		t.Fatal("primary classifier should have loaded")
	}
	if n := reg.LoadedCount(); n != 1 {
		t.Errorf("expected 1 loaded classifier, got %d", n)
	}
	if len(reg.FeatureNames()) != 0 {
		t.Error("expected no feature names")
	}
}

func TestLoad_CorruptPrimary(t *testing.T) {
	dir := t.TempDir()
	if err := WriteSampleArtifacts(dir); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, primaryFile), []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}

	reg := Load(dir)
	if reg.Available() {
		t.Error("corrupt primary artifact must leave the registry unavailable")
	}
	// Comparisons still load independently.
	if _, ok := reg.Comparisons()[DecisionTreeName]; !ok {
		t.Error("decision tree should still have loaded")
	}
}
