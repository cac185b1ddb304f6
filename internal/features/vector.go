// Package features defines the clinical feature vector consumed by the
// classifiers and the rule-based risk profiler. The vector is positional:
// every component indexes into it with the Idx* constants, so the order
// must never change.
package features

import "fmt"

// Count is the fixed width of a clinical feature vector.
const Count = 13

// Positional indices into a Vector.
const (
	IdxAge = iota
	IdxSex
	IdxChestPain
	IdxRestingBP
	IdxCholesterol
	IdxFastingGlucose
	IdxRestingECG
	IdxMaxHeartRate
	IdxExerciseAngina
	IdxSTDepression
	IdxSTSlope
	IdxVesselCount
	IdxThal
)

// Vector is an ordered set of 13 clinical measurements:
// [age, sex, chest_pain_type, resting_bp, cholesterol, fasting_glucose_flag,
// resting_ecg, max_heart_rate, exercise_angina_flag, st_depression,
// st_slope, vessel_count, thalassemia_code].
// All components are stored as float64; integer-valued fields carry whole
// numbers.
type Vector [Count]float64

// FromSlice builds a Vector from a raw slice of exactly Count values.
func FromSlice(values []float64) (Vector, error) {
	var v Vector
	if len(values) != Count {
		return v, fmt.Errorf("expected %d features, got %d", Count, len(values))
	}
	copy(v[:], values)
	return v, nil
}

// Slice returns a fresh copy of the vector's values, safe for callers
// (such as scalers) to mutate.
func (v Vector) Slice() []float64 {
	out := make([]float64, Count)
	copy(out, v[:])
	return out
}
