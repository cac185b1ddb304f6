// Package validation normalizes and range-checks raw evaluation requests
// before any inference runs. Validation is a pure function from the raw
// payload to a patient identity plus feature vector, or a typed Error.
package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"cardiorisk/internal/features"
)

// Error reports a malformed or out-of-range caller input. It is always
// recoverable by the caller correcting the request.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }

func missing(field string) *Error {
	return &Error{Field: field, Message: "missing field: " + field}
}

func invalid(field, reason string) *Error {
	return &Error{Field: field, Message: fmt.Sprintf("%s: %s", field, reason)}
}

// Patient holds the identity fields that accompany a clinical evaluation.
// Optional location fields default to "Not specified".
type Patient struct {
	Name       string    `json:"name"`
	RecordID   string    `json:"record_id"`
	NationalID string    `json:"national_id"`
	BirthDate  time.Time `json:"birth_date"`
	Phone      string    `json:"phone,omitempty"`
	Address    string    `json:"address,omitempty"`
	Province   string    `json:"province"`
	City       string    `json:"city"`
	District   string    `json:"district"`
}

const notSpecified = "Not specified"

// Identity and clinical field names expected in the raw payload.
const (
	fieldName       = "name"
	fieldRecordID   = "record_id"
	fieldNationalID = "national_id"
	fieldBirthDate  = "birth_date"
)

var clinicalFields = []string{
	"age", "sex", "chest_pain_type", "resting_bp", "cholesterol",
	"fasting_glucose_flag", "resting_ecg", "max_heart_rate",
	"exercise_angina_flag", "st_depression", "st_slope",
	"vessel_count", "thalassemia_code",
}

var identityFields = []string{fieldName, fieldRecordID, fieldNationalID, fieldBirthDate}

// Validate checks presence, length and range constraints on the raw
// request and returns the patient identity and the ordered feature
// vector. All failures are *Error values; malformed input never panics.
func Validate(raw map[string]any) (Patient, features.Vector, error) {
	var vec features.Vector
	if len(raw) == 0 {
		return Patient{}, vec, invalid("request", "empty payload")
	}

	for _, f := range identityFields {
		if isBlank(raw[f]) {
			return Patient{}, vec, missing(f)
		}
	}
	for _, f := range clinicalFields {
		if isBlank(raw[f]) {
			return Patient{}, vec, missing(f)
		}
	}

	name := asString(raw[fieldName])
	recordID := asString(raw[fieldRecordID])
	nationalID := asString(raw[fieldNationalID])
	if len(name) > 200 {
		return Patient{}, vec, invalid(fieldName, "longer than 200 characters")
	}
	if len(recordID) > 50 {
		return Patient{}, vec, invalid(fieldRecordID, "longer than 50 characters")
	}
	if len(nationalID) > 20 {
		return Patient{}, vec, invalid(fieldNationalID, "longer than 20 characters")
	}

	birthDate, err := time.Parse("2006-01-02", asString(raw[fieldBirthDate]))
	if err != nil {
		return Patient{}, vec, invalid(fieldBirthDate, "invalid date, use YYYY-MM-DD")
	}

	age, err := intField(raw, "age")
	if err != nil {
		return Patient{}, vec, err
	}
	if age < 1 || age > 120 {
		return Patient{}, vec, invalid("age", "must be between 1 and 120")
	}

	restingBP, err := intField(raw, "resting_bp")
	if err != nil {
		return Patient{}, vec, err
	}
	if restingBP < 50 || restingBP > 250 {
		return Patient{}, vec, invalid("resting_bp", "must be between 50 and 250")
	}

	cholesterol, err := floatField(raw, "cholesterol")
	if err != nil {
		return Patient{}, vec, err
	}
	if cholesterol < 0 || cholesterol > 600 {
		return Patient{}, vec, invalid("cholesterol", "must be between 0 and 600")
	}

	maxHR, err := intField(raw, "max_heart_rate")
	if err != nil {
		return Patient{}, vec, err
	}
	if maxHR < 40 || maxHR > 250 {
		return Patient{}, vec, invalid("max_heart_rate", "must be between 40 and 250")
	}

	stDepression, err := floatField(raw, "st_depression")
	if err != nil {
		return Patient{}, vec, err
	}
	if stDepression < -5 || stDepression > 10 {
		return Patient{}, vec, invalid("st_depression", "must be between -5 and 10")
	}

	sex, err := intField(raw, "sex")
	if err != nil {
		return Patient{}, vec, err
	}
	chestPain, err := intField(raw, "chest_pain_type")
	if err != nil {
		return Patient{}, vec, err
	}
	glucose, err := intField(raw, "fasting_glucose_flag")
	if err != nil {
		return Patient{}, vec, err
	}
	restingECG, err := intField(raw, "resting_ecg")
	if err != nil {
		return Patient{}, vec, err
	}
	angina, err := intField(raw, "exercise_angina_flag")
	if err != nil {
		return Patient{}, vec, err
	}
	stSlope, err := intField(raw, "st_slope")
	if err != nil {
		return Patient{}, vec, err
	}
	vessels, err := intField(raw, "vessel_count")
	if err != nil {
		return Patient{}, vec, err
	}
	thal, err := intField(raw, "thalassemia_code")
	if err != nil {
		return Patient{}, vec, err
	}

	vec[features.IdxAge] = float64(age)
	vec[features.IdxSex] = float64(sex)
	vec[features.IdxChestPain] = float64(chestPain)
	vec[features.IdxRestingBP] = float64(restingBP)
	vec[features.IdxCholesterol] = cholesterol
	vec[features.IdxFastingGlucose] = float64(glucose)
	vec[features.IdxRestingECG] = float64(restingECG)
	vec[features.IdxMaxHeartRate] = float64(maxHR)
	vec[features.IdxExerciseAngina] = float64(angina)
	vec[features.IdxSTDepression] = stDepression
	vec[features.IdxSTSlope] = float64(stSlope)
	vec[features.IdxVesselCount] = float64(vessels)
	vec[features.IdxThal] = float64(thal)

	patient := Patient{
		Name:       name,
		RecordID:   recordID,
		NationalID: nationalID,
		BirthDate:  birthDate,
		Phone:      asString(raw["phone"]),
		Address:    asString(raw["address"]),
		Province:   orDefault(asString(raw["province"]), notSpecified),
		City:       orDefault(asString(raw["city"]), notSpecified),
		District:   orDefault(asString(raw["district"]), notSpecified),
	}
	return patient, vec, nil
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	return strings.TrimSpace(asString(v)) == ""
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// The helpers return the error interface, never a typed *Error: a nil
// *Error boxed into error compares non-nil at the call sites.
func intField(raw map[string]any, field string) (int, error) {
	f, err := floatField(raw, field)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, invalid(field, "not a finite number")
	}
	return int(f), nil
}

func floatField(raw map[string]any, field string) (float64, error) {
	switch v := raw[field].(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, invalid(field, "not a number")
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, invalid(field, "not a number")
		}
		return f, nil
	default:
		return 0, invalid(field, "not a number")
	}
}
