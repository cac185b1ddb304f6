// Package server exposes the evaluation engine over a small JSON API.
// Transport concerns end here: handlers decode, delegate to the engine
// and map its error kinds to status codes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"cardiorisk/internal/engine"
	"cardiorisk/internal/model"
	"cardiorisk/internal/profile"
	"cardiorisk/internal/storage"
	"cardiorisk/internal/validation"
)

// referenceMetrics are the held-out evaluation scores of the trained
// models, reported alongside comparative predictions.
var referenceMetrics = map[string]map[string]float64{
	model.PrimaryName:      {"accuracy": 90.91, "precision": 83.33, "recall": 100.0, "f1": 90.91},
	model.DecisionTreeName: {"accuracy": 54.55, "precision": 50.0, "recall": 80.0, "f1": 61.54},
	model.SVMName:          {"accuracy": 81.82, "precision": 71.43, "recall": 100.0, "f1": 83.33},
}

// Server serves the evaluation API.
type Server struct {
	engine *engine.Engine
	store  *storage.Store
	server *http.Server
}

// New builds the API server. store may be nil; the specialist listing
// endpoint then reports an empty pool.
func New(eng *engine.Engine, store *storage.Store, addr string) *Server {
	s := &Server{engine: eng, store: store}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/evaluations", s.handleEvaluate)
	mux.HandleFunc("/api/v1/evaluations/comparative", s.handleComparative)
	mux.HandleFunc("/api/v1/specialists/recommended", s.handleRecommend)
	mux.HandleFunc("/api/v1/specialists", s.handleListSpecialists)
	mux.HandleFunc("/health", s.handleHealth)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("starting api server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the routing handler for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	result, err := s.engine.Evaluate(r.Context(), raw)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type comparativeRequest struct {
	Parameters []float64 `json:"parameters"`
}

type comparativeResponse struct {
	Predictions      map[string]model.Prediction   `json:"predictions"`
	Parameters       []float64                     `json:"parameters"`
	ReferenceMetrics map[string]map[string]float64 `json:"reference_metrics"`
}

func (s *Server) handleComparative(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req comparativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	predictions, err := s.engine.Compare(r.Context(), req.Parameters)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comparativeResponse{
		Predictions:      predictions,
		Parameters:       req.Parameters,
		ReferenceMetrics: referenceMetrics,
	})
}

type recommendRequest struct {
	RiskProfile profile.Profile `json:"risk_profile"`
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	writeJSON(w, http.StatusOK, s.engine.Recommend(r.Context(), req.RiskProfile))
}

func (s *Server) handleListSpecialists(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 10)
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	type listing struct {
		Specialists any `json:"specialists"`
		Total       int `json:"total"`
		Page        int `json:"page"`
		PerPage     int `json:"per_page"`
		TotalPages  int `json:"total_pages"`
	}

	if s.store == nil {
		writeJSON(w, http.StatusOK, listing{Specialists: []any{}, Page: page, PerPage: perPage, TotalPages: 1})
		return
	}

	specialists, total, err := s.store.ListSpecialists(perPage, (page-1)*perPage)
	if err != nil {
		log.Error().Err(err).Msg("specialist listing failed")
		writeError(w, http.StatusInternalServerError, "failed to list specialists")
		return
	}

	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	writeJSON(w, http.StatusOK, listing{
		Specialists: specialists,
		Total:       total,
		Page:        page,
		PerPage:     perPage,
		TotalPages:  totalPages,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	if !s.engine.Available() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]bool{"model_loaded": s.engine.Available()})
}

func writeEngineError(w http.ResponseWriter, err error) {
	var vErr *validation.Error
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, model.ErrNotLoaded):
		writeError(w, http.StatusServiceUnavailable, model.ErrNotLoaded.Error())
	default:
		log.Error().Err(err).Msg("evaluation failed")
		writeError(w, http.StatusInternalServerError, "failed to process the request")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("response encoding failed")
	}
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
