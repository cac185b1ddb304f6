// Package engine composes the evaluation pipeline: validate the raw
// request, run the primary prediction, derive the rule-based risk
// profile, persist the outcome and assemble the response. The ML branch
// and the rule branch never depend on each other's output.
package engine

import (
	"context"

	"github.com/rs/zerolog/log"

	"cardiorisk/internal/features"
	"cardiorisk/internal/inference"
	"cardiorisk/internal/match"
	"cardiorisk/internal/metrics"
	"cardiorisk/internal/model"
	"cardiorisk/internal/profile"
	"cardiorisk/internal/storage"
	"cardiorisk/internal/validation"
)

const (
	riskMessage   = "Cardiac risk indicated."
	noRiskMessage = "No cardiac risk detected."
)

// Engine runs complete evaluations. The store may be nil, in which case
// results are simply not persisted.
type Engine struct {
	inference       *inference.Service
	store           *storage.Store
	lookup          match.CandidateLookup
	metrics         *metrics.Metrics
	importanceLimit int
}

// Result is the composed evaluation response.
type Result struct {
	RiskDetected       int                       `json:"risk_detected"`
	RiskProbability    float64                   `json:"risk_probability"`
	Message            string                    `json:"message"`
	PatientID          string                    `json:"patient_id,omitempty"`
	RiskProfile        profile.Profile           `json:"risk_profile"`
	FeatureImportances []inference.FeatureWeight `json:"feature_importances"`
	Parameters         []float64                 `json:"parameters"`
	Evaluated          map[string]float64        `json:"evaluated_parameters"`
}

func New(inf *inference.Service, store *storage.Store, lookup match.CandidateLookup, m *metrics.Metrics, importanceLimit int) *Engine {
	if importanceLimit <= 0 {
		importanceLimit = 8
	}
	return &Engine{
		inference:       inf,
		store:           store,
		lookup:          lookup,
		metrics:         m,
		importanceLimit: importanceLimit,
	}
}

// Available reports whether the primary prediction path can serve.
func (e *Engine) Available() bool {
	return e.inference.Available()
}

// Evaluate validates the raw request and runs the full pipeline.
// Validation failures return *validation.Error; an unavailable primary
// classifier returns model.ErrNotLoaded. Persistence is fire-and-forget:
// write failures are logged and counted, never surfaced.
func (e *Engine) Evaluate(ctx context.Context, raw map[string]any) (*Result, error) {
	patient, vec, err := validation.Validate(raw)
	if err != nil {
		if e.metrics != nil {
			e.metrics.ValidationErrors.Inc()
		}
		return nil, err
	}

	pred, err := e.inference.PredictPrimary(vec)
	if err != nil {
		if e.metrics != nil {
			e.metrics.ErrorsTotal.Inc()
		}
		return nil, err
	}

	riskProfile := profile.Derive(vec)
	if e.metrics != nil {
		e.metrics.ProfilesDerived.Inc()
	}

	patientID := e.persist(patient, vec, pred.Label)

	message := noRiskMessage
	if pred.Label == 1 {
		message = riskMessage
	}

	if e.metrics != nil {
		e.metrics.EvaluationsTotal.Inc()
	}

	return &Result{
		RiskDetected:       pred.Label,
		RiskProbability:    pred.Probability,
		Message:            message,
		PatientID:          patientID,
		RiskProfile:        riskProfile,
		FeatureImportances: e.inference.TopFeatures(e.importanceLimit),
		Parameters:         vec.Slice(),
		Evaluated: map[string]float64{
			"chest_pain_type": vec[features.IdxChestPain],
			"resting_bp":      vec[features.IdxRestingBP],
			"cholesterol":     vec[features.IdxCholesterol],
			"max_heart_rate":  vec[features.IdxMaxHeartRate],
			"st_depression":   vec[features.IdxSTDepression],
			"vessel_count":    vec[features.IdxVesselCount],
		},
	}, nil
}

// Compare runs all loaded classifiers over an explicit 13-value
// parameter list. The primary result, when present, is stored without a
// patient identity for future model training.
func (e *Engine) Compare(ctx context.Context, params []float64) (map[string]model.Prediction, error) {
	vec, err := features.FromSlice(params)
	if err != nil {
		return nil, &validation.Error{Field: "parameters", Message: err.Error()}
	}
	if !e.inference.Available() {
		return nil, model.ErrNotLoaded
	}

	results := e.inference.PredictComparative(vec)

	if primary, ok := results[model.PrimaryName]; ok && e.store != nil {
		if _, err := e.store.SaveEvaluation("", vec, primary.Label, model.PrimaryName); err != nil {
			log.Warn().Err(err).Msg("comparative evaluation not persisted")
			if e.metrics != nil {
				e.metrics.PersistFailures.Inc()
			}
		}
	}
	return results, nil
}

// Recommend matches specialists against a risk profile using the
// configured candidate pool. With no pool configured the recommendation
// is empty rather than an error.
func (e *Engine) Recommend(ctx context.Context, p profile.Profile) match.Recommendation {
	if e.metrics != nil {
		e.metrics.SpecialistMatches.Inc()
	}
	if e.lookup == nil {
		detected := p.Primary
		if detected == "" {
			detected = profile.GeneralCardiology
		}
		return match.Recommendation{
			Specialists:            []match.Specialist{},
			DetectedProfile:        detected,
			RecommendedSpecialties: []string{},
		}
	}
	return match.Recommend(ctx, p, e.lookup)
}

// TopFeatures exposes the ranked importance report of the primary
// classifier.
func (e *Engine) TopFeatures(limit int) []inference.FeatureWeight {
	return e.inference.TopFeatures(limit)
}

func (e *Engine) persist(patient validation.Patient, vec features.Vector, label int) string {
	if e.store == nil {
		return ""
	}
	patientID, err := e.store.GetOrCreatePatient(patient)
	if err != nil {
		log.Warn().Err(err).Msg("patient record not persisted")
		if e.metrics != nil {
			e.metrics.PersistFailures.Inc()
		}
		return ""
	}
	if _, err := e.store.SaveEvaluation(patientID, vec, label, model.PrimaryName); err != nil {
		log.Warn().Err(err).Msg("evaluation record not persisted")
		if e.metrics != nil {
			e.metrics.PersistFailures.Inc()
		}
	}
	return patientID
}
