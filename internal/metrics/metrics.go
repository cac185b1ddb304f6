// Package metrics provides Prometheus metrics collection for the risk
// evaluation service: prediction counts and latency, validation
// rejections, profile derivations and specialist matching activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the evaluation service.
type Metrics struct {
	// Evaluation pipeline
	EvaluationsTotal prometheus.Counter // Completed evaluation requests
	ValidationErrors prometheus.Counter // Requests rejected by the validator
	PersistFailures  prometheus.Counter // Fire-and-forget writes that failed

	// Prediction metrics
	Predictions        prometheus.Counter   // Classifier invocations
	PredictionFailures prometheus.Counter   // Classifier invocations that errored
	PredictionLatency  prometheus.Histogram // End-to-end prediction latency in seconds
	PredictionScores   prometheus.Histogram // Distribution of risk probabilities
	ModelsLoaded       prometheus.Gauge     // Number of classifiers loaded at startup

	// Rule engine and matching
	ProfilesDerived   prometheus.Counter // Risk profiles derived
	SpecialistMatches prometheus.Counter // Specialist recommendation requests

	// System metrics
	ErrorsTotal prometheus.Counter // Total number of errors encountered
}

// New creates and registers all metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for
// tests that need isolated metric collection).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		EvaluationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "evaluations_total",
			Help: "Total number of completed evaluation requests",
		}),
		ValidationErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "validation_errors_total",
			Help: "Total number of requests rejected by the validator",
		}),
		PersistFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "persist_failures_total",
			Help: "Total number of failed persistence writes",
		}),
		Predictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of classifier invocations",
		}),
		PredictionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "prediction_failures_total",
			Help: "Total number of classifier invocations that errored",
		}),
		PredictionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_latency_seconds",
			Help:    "End-to-end prediction latency in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		PredictionScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_scores",
			Help:    "Distribution of predicted risk probabilities",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		ModelsLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "models_loaded",
			Help: "Number of classifiers loaded at startup",
		}),
		ProfilesDerived: factory.NewCounter(prometheus.CounterOpts{
			Name: "profiles_derived_total",
			Help: "Total number of risk profiles derived",
		}),
		SpecialistMatches: factory.NewCounter(prometheus.CounterOpts{
			Name: "specialist_matches_total",
			Help: "Total number of specialist recommendation requests",
		}),
		ErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors encountered",
		}),
	}
}
