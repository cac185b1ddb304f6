package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewWithRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry)

	m.EvaluationsTotal.Inc()
	m.EvaluationsTotal.Inc()
	m.ValidationErrors.Inc()
	m.ModelsLoaded.Set(3)

	if got := testutil.ToFloat64(m.EvaluationsTotal); got != 2 {
		t.Errorf("expected 2 evaluations, got %v", got)
	}
	if got := testutil.ToFloat64(m.ValidationErrors); got != 1 {
		t.Errorf("expected 1 validation error, got %v", got)
	}
	if got := testutil.ToFloat64(m.ModelsLoaded); got != 3 {
		t.Errorf("expected 3 loaded models, got %v", got)
	}
}

func TestWrapper(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry)
	w := NewWrapper(m)

	w.PredictionsInc()
	w.PredictionsInc()
	w.FailuresInc()
	w.LatencyObserve(0.002)
	w.ScoreObserve(0.9)

	if got := testutil.ToFloat64(m.Predictions); got != 2 {
		t.Errorf("expected 2 predictions, got %v", got)
	}
	if got := testutil.ToFloat64(m.PredictionFailures); got != 1 {
		t.Errorf("expected 1 failure, got %v", got)
	}
	if got := testutil.CollectAndCount(m.PredictionLatency); got != 1 {
		t.Errorf("expected the latency histogram to be collectable, got %d series", got)
	}
}
