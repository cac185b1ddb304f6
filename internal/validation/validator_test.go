package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardiorisk/internal/features"
)

func validPayload() map[string]any {
	return map[string]any{
		"name":                 "Doe, Jane",
		"record_id":            "HC-004211",
		"national_id":          "44556677",
		"birth_date":           "1969-03-12",
		"age":                  float64(55),
		"sex":                  float64(1),
		"chest_pain_type":      float64(2),
		"resting_bp":           float64(130),
		"cholesterol":          float64(250),
		"fasting_glucose_flag": float64(0),
		"resting_ecg":          float64(0),
		"max_heart_rate":       float64(150),
		"exercise_angina_flag": float64(0),
		"st_depression":        1.0,
		"st_slope":             float64(1),
		"vessel_count":         float64(0),
		"thalassemia_code":     float64(2),
	}
}

func TestValidate_OK(t *testing.T) {
	patient, vec, err := Validate(validPayload())
	require.NoError(t, err)

	assert.Equal(t, "Doe, Jane", patient.Name)
	assert.Equal(t, "44556677", patient.NationalID)
	assert.Equal(t, 1969, patient.BirthDate.Year())
	assert.Equal(t, "Not specified", patient.Province)

	// The vector must be positional, in schema order.
	assert.Equal(t, 55.0, vec[features.IdxAge])
	assert.Equal(t, 130.0, vec[features.IdxRestingBP])
	assert.Equal(t, 250.0, vec[features.IdxCholesterol])
	assert.Equal(t, 1.0, vec[features.IdxSTDepression])
	assert.Equal(t, 2.0, vec[features.IdxThal])
}

func TestValidate_ValidInputReturnsNilInterface(t *testing.T) {
	// The error must be untyped nil, not a nil *Error boxed into the
	// interface: callers compare err != nil and would otherwise reject
	// every valid request.
	_, _, err := Validate(validPayload())
	if err != nil {
		t.Fatalf("expected err == nil, got %#v", err)
	}
}

func TestValidate_StringNumbersCoerced(t *testing.T) {
	raw := validPayload()
	raw["age"] = "55"
	raw["cholesterol"] = "250.5"

	_, vec, err := Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, 55.0, vec[features.IdxAge])
	assert.Equal(t, 250.5, vec[features.IdxCholesterol])
}

func TestValidate_MissingFields(t *testing.T) {
	for _, field := range []string{"name", "national_id", "birth_date", "age", "st_depression", "thalassemia_code"} {
		t.Run(field, func(t *testing.T) {
			raw := validPayload()
			delete(raw, field)

			_, _, err := Validate(raw)
			var vErr *Error
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, field, vErr.Field)
			assert.Equal(t, "missing field: "+field, vErr.Error())
		})
	}
}

func TestValidate_BlankIsMissing(t *testing.T) {
	raw := validPayload()
	raw["record_id"] = "   "

	_, _, err := Validate(raw)
	var vErr *Error
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "record_id", vErr.Field)
}

func TestValidate_LengthLimits(t *testing.T) {
	long := func(n int) string {
		b := make([]byte, n)
		for i := range b {
			b[i] = 'x'
		}
		return string(b)
	}

	testCases := []struct {
		field string
		value string
	}{
		{"name", long(201)},
		{"record_id", long(51)},
		{"national_id", long(21)},
	}
	for _, tc := range testCases {
		t.Run(tc.field, func(t *testing.T) {
			raw := validPayload()
			raw[tc.field] = tc.value

			_, _, err := Validate(raw)
			var vErr *Error
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}

func TestValidate_RangeChecks(t *testing.T) {
	testCases := []struct {
		field string
		value any
	}{
		{"age", float64(0)},
		{"age", float64(121)},
		{"resting_bp", float64(49)},
		{"resting_bp", float64(251)},
		{"cholesterol", -0.5},
		{"cholesterol", 600.5},
		{"max_heart_rate", float64(39)},
		{"max_heart_rate", float64(251)},
		{"st_depression", -5.5},
		{"st_depression", 10.5},
	}
	for _, tc := range testCases {
		t.Run(tc.field, func(t *testing.T) {
			raw := validPayload()
			raw[tc.field] = tc.value

			_, _, err := Validate(raw)
			var vErr *Error
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}

func TestValidate_BoundaryValuesAccepted(t *testing.T) {
	raw := validPayload()
	raw["age"] = float64(120)
	raw["resting_bp"] = float64(50)
	raw["cholesterol"] = float64(0)
	raw["max_heart_rate"] = float64(250)
	raw["st_depression"] = float64(-5)

	_, _, err := Validate(raw)
	assert.NoError(t, err)
}

func TestValidate_BadBirthDate(t *testing.T) {
	raw := validPayload()
	raw["birth_date"] = "12/03/1969"

	_, _, err := Validate(raw)
	var vErr *Error
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "birth_date", vErr.Field)
}

func TestValidate_NonNumeric(t *testing.T) {
	raw := validPayload()
	raw["resting_bp"] = "high"

	_, _, err := Validate(raw)
	var vErr *Error
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "resting_bp", vErr.Field)
}

func TestValidate_EmptyPayload(t *testing.T) {
	_, _, err := Validate(nil)
	var vErr *Error
	assert.ErrorAs(t, err, &vErr)

	_, _, err = Validate(map[string]any{})
	assert.ErrorAs(t, err, &vErr)
}
