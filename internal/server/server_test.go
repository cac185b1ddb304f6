package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardiorisk/internal/engine"
	"cardiorisk/internal/inference"
	"cardiorisk/internal/match"
	"cardiorisk/internal/model"
	"cardiorisk/internal/profile"
	"cardiorisk/internal/storage"
)

func newTestServer(t *testing.T, loaded bool) (*Server, *storage.Store) {
	t.Helper()

	modelsDir := t.TempDir()
	if loaded {
		require.NoError(t, model.WriteSampleArtifacts(modelsDir))
	}
	svc := inference.New(model.Load(modelsDir), nil)

	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	eng := engine.New(svc, store, store, nil, 8)
	return New(eng, store, ":0"), store
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func evaluationBody() map[string]any {
	return map[string]any{
		"name":                 "Doe, Jane",
		"record_id":            "HC-004211",
		"national_id":          "44556677",
		"birth_date":           "1969-03-12",
		"age":                  55,
		"sex":                  1,
		"chest_pain_type":      2,
		"resting_bp":           130,
		"cholesterol":          250,
		"fasting_glucose_flag": 0,
		"resting_ecg":          0,
		"max_heart_rate":       150,
		"exercise_angina_flag": 0,
		"st_depression":        1.0,
		"st_slope":             1,
		"vessel_count":         0,
		"thalassemia_code":     2,
	}
}

func TestHandleEvaluate_OK(t *testing.T) {
	srv, _ := newTestServer(t, true)

	rec := postJSON(t, srv.Handler(), "/api/v1/evaluations", evaluationBody())
	require.Equal(t, http.StatusOK, rec.Code)

	var result engine.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.RiskDetected)
	assert.Equal(t, "Cardiac risk indicated.", result.Message)
	assert.NotEmpty(t, result.PatientID)
	assert.Contains(t, result.RiskProfile.Specialties, profile.PreventiveCardiology)
}

func TestHandleEvaluate_ValidationError(t *testing.T) {
	srv, _ := newTestServer(t, true)

	body := evaluationBody()
	delete(body, "cholesterol")

	rec := postJSON(t, srv.Handler(), "/api/v1/evaluations", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "missing field: cholesterol", resp["error"])
}

func TestHandleEvaluate_InvalidJSON(t *testing.T) {
	srv, _ := newTestServer(t, true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluations", bytes.NewReader([]byte("{broken")))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleEvaluate_ModelNotLoaded(t *testing.T) {
	srv, _ := newTestServer(t, false)

	rec := postJSON(t, srv.Handler(), "/api/v1/evaluations", evaluationBody())
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleEvaluate_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/evaluations", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleComparative(t *testing.T) {
	srv, _ := newTestServer(t, true)

	body := map[string]any{
		"parameters": []float64{55, 1, 2, 130, 250, 0, 0, 150, 0, 1.0, 1, 0, 2},
	}
	rec := postJSON(t, srv.Handler(), "/api/v1/evaluations/comparative", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp comparativeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Predictions, 3)
	assert.Equal(t, 1, resp.Predictions[model.PrimaryName].Label)
	assert.Equal(t, 0, resp.Predictions[model.DecisionTreeName].Label)
	assert.Equal(t, 1, resp.Predictions[model.SVMName].Label)
	assert.Len(t, resp.Parameters, 13)
	assert.InDelta(t, 90.91, resp.ReferenceMetrics[model.PrimaryName]["accuracy"], 1e-9)
}

func TestHandleComparative_WrongWidth(t *testing.T) {
	srv, _ := newTestServer(t, true)

	rec := postJSON(t, srv.Handler(), "/api/v1/evaluations/comparative", map[string]any{
		"parameters": []float64{1, 2, 3},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRecommend(t *testing.T) {
	srv, store := newTestServer(t, true)
	require.NoError(t, store.PutSpecialist(match.Specialist{
		ID: 1, Name: "A", Specialty: "Cardiology", Subspecialty: "Hypertension", Rating: 4.6,
	}))
	require.NoError(t, store.PutSpecialist(match.Specialist{
		ID: 2, Name: "B", Specialty: "Cardiology", Rating: 4.1,
	}))

	body := map[string]any{
		"risk_profile": profile.Profile{
			Specialties: []string{profile.Hypertension},
			Primary:     profile.Hypertension,
		},
	}
	rec := postJSON(t, srv.Handler(), "/api/v1/specialists/recommended", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp match.Recommendation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, profile.Hypertension, resp.DetectedProfile)
	require.NotEmpty(t, resp.Specialists)
	assert.Equal(t, int64(1), resp.Specialists[0].ID)
}

func TestHandleListSpecialists(t *testing.T) {
	srv, store := newTestServer(t, true)
	for i := int64(1); i <= 12; i++ {
		require.NoError(t, store.PutSpecialist(match.Specialist{
			ID: i, Name: "S", Specialty: "Cardiology", Rating: float64(i),
		}))
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/specialists?page=2&per_page=5", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Specialists []match.Specialist `json:"specialists"`
		Total       int                `json:"total"`
		Page        int                `json:"page"`
		PerPage     int                `json:"per_page"`
		TotalPages  int                `json:"total_pages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 12, resp.Total)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 3, resp.TotalPages)
	require.Len(t, resp.Specialists, 5)
	// Rating order carries across pages: page two starts at rating 7.
	assert.Equal(t, 7.0, resp.Specialists[0].Rating)
}

func TestHandleListSpecialists_BadQueryDefaults(t *testing.T) {
	srv, _ := newTestServer(t, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/specialists?page=-3&per_page=9999", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Page    int `json:"page"`
		PerPage int `json:"per_page"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 10, resp.PerPage)
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t, true)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"model_loaded": true}`, rec.Body.String())
}

func TestHandleHealth_NotLoaded(t *testing.T) {
	srv, _ := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
