package inference

import (
	"sort"

	"cardiorisk/internal/features"
)

// FeatureWeight is one entry of a ranked feature-importance report.
type FeatureWeight struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// TopFeatures ranks the primary classifier's global feature weights,
// resolves raw identifiers to display labels and truncates to limit.
// Returns an empty slice when no primary classifier or weight data is
// loaded. The sort is stable, so equal weights keep their input order.
func (s *Service) TopFeatures(limit int) []FeatureWeight {
	weights := s.reg.Importances()
	if len(weights) == 0 || limit <= 0 {
		return []FeatureWeight{}
	}

	names := s.reg.FeatureNames()
	if len(names) != len(weights) {
		names = nil
	}

	out := make([]FeatureWeight, 0, len(weights))
	for i, w := range weights {
		raw := ""
		if names != nil {
			raw = names[i]
		}
		out = append(out, FeatureWeight{Name: features.DisplayLabel(raw, i), Weight: w})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })

	if limit < len(out) {
		out = out[:limit]
	}
	return out
}
