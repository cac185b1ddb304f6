package metrics

// MetricsWrapper adapts the Metrics struct to the narrow sink interface
// the inference service consumes, avoiding a package cycle.
type MetricsWrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *MetricsWrapper {
	return &MetricsWrapper{m: m}
}

func (w *MetricsWrapper) PredictionsInc() {
	w.m.Predictions.Inc()
}

func (w *MetricsWrapper) FailuresInc() {
	w.m.PredictionFailures.Inc()
}

func (w *MetricsWrapper) LatencyObserve(v float64) {
	w.m.PredictionLatency.Observe(v)
}

func (w *MetricsWrapper) ScoreObserve(v float64) {
	w.m.PredictionScores.Observe(v)
}
