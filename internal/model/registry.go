package model

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// ErrNotLoaded is returned when the primary classifier is unavailable.
// Callers should surface it as a service-unavailable condition.
var ErrNotLoaded = errors.New("model not loaded")

// Model names as they appear in comparative results.
const (
	PrimaryName      = "random_forest"
	DecisionTreeName = "decision_tree"
	SVMName          = "svm"
)

// Artifact file names inside the models directory.
const (
	primaryFile      = "random_forest.json"
	decisionTreeFile = "decision_tree.json"
	svmFile          = "svm.json"
	svmScalerFile    = "svm_scaler.json"
	featureNamesFile = "feature_names.json"
)

// Comparison pairs a comparison classifier with its optional scaler.
// When Scaler is non-nil it must be applied before every prediction.
type Comparison struct {
	Classifier Classifier
	Scaler     Scaler
}

// Registry holds the classifiers loaded at startup. It is immutable once
// Load returns and safe for unsynchronized concurrent reads.
type Registry struct {
	primary      Classifier
	importances  []float64
	comparisons  map[string]Comparison
	featureNames []string
}

// Load reads whatever artifacts exist under dir. Individual artifacts
// that fail to load are logged and omitted; Load itself never fails, so
// process startup is never blocked by a missing model. When the primary
// classifier is absent every prediction path reports ErrNotLoaded.
func Load(dir string) *Registry {
	r := &Registry{comparisons: make(map[string]Comparison)}

	var primary forest
	if err := loadArtifact(filepath.Join(dir, primaryFile), &primary); err != nil {
		log.Warn().Err(err).Str("models_dir", dir).Msg("primary classifier not loaded, predictions will be unavailable")
	} else {
		r.primary = &primary
		r.importances = primary.FeatureImportances
		log.Info().Str("models_dir", dir).Int("trees", len(primary.Trees)).Msg("primary classifier loaded")
	}

	var tree decisionTree
	if err := loadArtifact(filepath.Join(dir, decisionTreeFile), &tree); err != nil {
		log.Warn().Err(err).Msg("decision tree comparison not loaded")
	} else {
		r.comparisons[DecisionTreeName] = Comparison{Classifier: &tree}
	}

	// The SVM and its scaler are a matched pair: never load one without
	// the other.
	var svm linearSVM
	var scaler stdScaler
	svmErr := loadArtifact(filepath.Join(dir, svmFile), &svm)
	scalerErr := loadArtifact(filepath.Join(dir, svmScalerFile), &scaler)
	switch {
	case svmErr != nil:
		log.Warn().Err(svmErr).Msg("svm comparison not loaded")
	case scalerErr != nil:
		log.Warn().Err(scalerErr).Msg("svm scaler not loaded, skipping svm comparison")
	default:
		r.comparisons[SVMName] = Comparison{Classifier: &svm, Scaler: &scaler}
	}

	names, err := loadFeatureNames(filepath.Join(dir, featureNamesFile))
	if err != nil {
		log.Warn().Err(err).Msg("feature names not loaded, importance labels will be positional")
	} else {
		r.featureNames = names
	}

	return r
}

func loadFeatureNames(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// Available reports whether the primary classifier loaded.
func (r *Registry) Available() bool {
	return r != nil && r.primary != nil
}

// Primary returns the primary classifier or ErrNotLoaded.
func (r *Registry) Primary() (Classifier, error) {
	if !r.Available() {
		return nil, ErrNotLoaded
	}
	return r.primary, nil
}

// Comparisons returns the comparison classifiers that loaded
// successfully, keyed by model name. Absent models are simply omitted.
func (r *Registry) Comparisons() map[string]Comparison {
	if r == nil {
		return nil
	}
	return r.comparisons
}

// Importances returns the primary classifier's global feature weights,
// or nil when no primary classifier or weight data loaded.
func (r *Registry) Importances() []float64 {
	if !r.Available() {
		return nil
	}
	return r.importances
}

// FeatureNames returns the raw feature identifiers loaded from the
// feature-name artifact, or an empty slice when the artifact is absent.
func (r *Registry) FeatureNames() []string {
	if r == nil {
		return nil
	}
	return r.featureNames
}

// LoadedCount returns how many classifiers loaded, primary included.
func (r *Registry) LoadedCount() int {
	if r == nil {
		return 0
	}
	n := len(r.comparisons)
	if r.primary != nil {
		n++
	}
	return n
}
