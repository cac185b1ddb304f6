// Package inference runs validated feature vectors through the model
// registry, producing the authoritative primary prediction and, on
// demand, a side-by-side comparison across all loaded classifiers.
package inference

import (
	"time"

	"github.com/rs/zerolog/log"

	"cardiorisk/internal/features"
	"cardiorisk/internal/model"
)

// MetricsSink defines the metrics methods needed by the service.
type MetricsSink interface {
	PredictionsInc()
	FailuresInc()
	LatencyObserve(float64)
	ScoreObserve(float64)
}

// Service invokes the classifiers held by an immutable Registry. It
// carries no mutable state and is safe for concurrent use.
type Service struct {
	reg     *model.Registry
	metrics MetricsSink
}

func New(reg *model.Registry, metrics MetricsSink) *Service {
	return &Service{reg: reg, metrics: metrics}
}

// Available reports whether the primary prediction path can serve.
func (s *Service) Available() bool {
	return s.reg.Available()
}

// PredictPrimary runs the vector through the primary classifier. Returns
// model.ErrNotLoaded when no primary classifier is available.
func (s *Service) PredictPrimary(v features.Vector) (model.Prediction, error) {
	clf, err := s.reg.Primary()
	if err != nil {
		return model.Prediction{}, err
	}

	start := time.Now()
	pred, err := clf.Predict(v.Slice())
	if s.metrics != nil {
		s.metrics.LatencyObserve(time.Since(start).Seconds())
		s.metrics.PredictionsInc()
		if err != nil {
			s.metrics.FailuresInc()
		} else {
			s.metrics.ScoreObserve(pred.Probability)
		}
	}
	if err != nil {
		return model.Prediction{}, err
	}
	return pred, nil
}

// PredictComparative runs the vector through every loaded classifier and
// returns the results keyed by model name. Models that failed to load
// are omitted from the map entirely, so a missing key means "model
// unavailable", never "no risk". A comparison classifier with a paired
// scaler always gets the scaled vector.
func (s *Service) PredictComparative(v features.Vector) map[string]model.Prediction {
	results := make(map[string]model.Prediction)

	if pred, err := s.PredictPrimary(v); err == nil {
		results[model.PrimaryName] = pred
	} else if err != model.ErrNotLoaded {
		log.Warn().Err(err).Str("model", model.PrimaryName).Msg("comparative prediction failed")
	}

	for name, cmp := range s.reg.Comparisons() {
		x := v.Slice()
		if cmp.Scaler != nil {
			x = cmp.Scaler.Transform(x)
		}
		pred, err := cmp.Classifier.Predict(x)
		if err != nil {
			log.Warn().Err(err).Str("model", name).Msg("comparative prediction failed")
			if s.metrics != nil {
				s.metrics.FailuresInc()
			}
			continue
		}
		results[name] = pred
	}
	return results
}
