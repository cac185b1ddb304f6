// Package profile derives cardiology sub-specialty recommendations from
// a clinical feature vector using a fixed, deterministic rule table. It
// never consults the ML classifiers: the rule-based branch and the
// prediction branch are independent by design of the evaluation flow.
package profile

import (
	"sort"
	"strings"

	"cardiorisk/internal/features"
)

// The closed set of specialty names used by the rule engine and as the
// sanitization whitelist for specialist matching.
const (
	InterventionalCoronary = "Interventional Coronary"
	IschemicCardiology     = "Ischemic Cardiology"
	Arrhythmia             = "Arrhythmia"
	HeartFailure           = "Heart Failure"
	Hypertension           = "Hypertension"
	PreventiveCardiology   = "Preventive Cardiology"
	GeneralCardiology      = "General Cardiology"
)

// Profile is the rule-derived specialty recommendation for one patient.
// Specialties is ordered by descending priority and never empty; Primary
// is its first entry.
type Profile struct {
	Specialties []string       `json:"specialties"`
	Primary     string         `json:"primary"`
	Scores      map[string]int `json:"scores"`
}

// rule maps one clinical condition to a specialty with a fixed priority.
// Rules are evaluated independently; several may fire for one vector.
type rule struct {
	specialty string
	priority  int
	matches   func(v features.Vector) bool
}

// Rule order is the tie-break order for equal priorities.
var rules = []rule{
	{InterventionalCoronary, 100, func(v features.Vector) bool {
		return v[features.IdxVesselCount] > 0
	}},
	{Arrhythmia, 90, func(v features.Vector) bool {
		return v[features.IdxRestingECG] != 0 ||
			v[features.IdxMaxHeartRate] > 170 ||
			v[features.IdxMaxHeartRate] < 60
	}},
	{IschemicCardiology, 95, func(v features.Vector) bool {
		return v[features.IdxChestPain] == 3 ||
			v[features.IdxExerciseAngina] == 1 ||
			v[features.IdxSTDepression] > 1.5
	}},
	{Hypertension, 85, func(v features.Vector) bool {
		return v[features.IdxRestingBP] > 140
	}},
	{PreventiveCardiology, 80, func(v features.Vector) bool {
		return v[features.IdxCholesterol] > 240 ||
			v[features.IdxFastingGlucose] == 1
	}},
	{HeartFailure, 88, func(v features.Vector) bool {
		return v[features.IdxRestingECG] == 2
	}},
}

var whitelist = map[string]struct{}{
	InterventionalCoronary: {},
	IschemicCardiology:     {},
	Arrhythmia:             {},
	HeartFailure:           {},
	Hypertension:           {},
	PreventiveCardiology:   {},
	GeneralCardiology:      {},
}

// Derive evaluates the rule table over the vector. Pure and
// deterministic: the same vector always yields the same profile, and
// the result is never empty. When no rule fires the profile falls back
// to General Cardiology.
func Derive(v features.Vector) Profile {
	specialties := make([]string, 0, len(rules))
	scores := make(map[string]int, len(rules))

	for _, r := range rules {
		if r.matches(v) {
			specialties = append(specialties, r.specialty)
			scores[r.specialty] = r.priority
		}
	}

	if len(specialties) == 0 {
		specialties = append(specialties, GeneralCardiology)
		scores[GeneralCardiology] = 70
	}

	sort.SliceStable(specialties, func(i, j int) bool {
		return scores[specialties[i]] > scores[specialties[j]]
	})

	return Profile{
		Specialties: specialties,
		Primary:     specialties[0],
		Scores:      scores,
	}
}

// Sanitize coerces a specialty string to the closed whitelist. Anything
// unrecognized, including empty input, maps to General Cardiology.
func Sanitize(specialty string) string {
	s := strings.TrimSpace(specialty)
	if _, ok := whitelist[s]; ok {
		return s
	}
	return GeneralCardiology
}
