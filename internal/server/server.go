// Package server exposes the guidance pipeline over HTTP.
//
// Endpoints:
//
//	POST /llm/assess     - severity assessment for an emergency context
//	POST /llm/first-aid  - step-by-step first aid guidance
//	GET  /llm/health     - provider availability report
//	GET  /status         - metrics snapshot and service info
//
// The HTTP layer is deliberately thin: request decoding, error mapping, and
// a per-request ULID for log correlation. All decision logic lives in the
// pipeline.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"emergency-guidance/internal/config"
	"emergency-guidance/internal/logger"
	"emergency-guidance/internal/metrics"
	"emergency-guidance/internal/models"
	"emergency-guidance/internal/pipeline"
	"emergency-guidance/internal/provider"
)

// maxRequestBody bounds inbound request reads.
const maxRequestBody = 1 << 20 // 1 MiB

// AvailabilityChecker is the health-reporting contract of the orchestrator.
type AvailabilityChecker interface {
	CheckAvailability(ctx context.Context) provider.Availability
	Providers() []string
}

// Server handles the guidance HTTP API.
type Server struct {
	pipe   *pipeline.Pipeline
	health AvailabilityChecker
	met    *metrics.Metrics
	log    *logger.Logger
	mux    *http.ServeMux
}

// New builds the server and its route table.
func New(cfg *config.Config, pipe *pipeline.Pipeline, health AvailabilityChecker, met *metrics.Metrics) *Server {
	s := &Server{
		pipe:   pipe,
		health: health,
		met:    met,
		log:    logger.New("SERVER", cfg.LogLevel),
		mux:    http.NewServeMux(),
	}
	s.mux.HandleFunc("POST /llm/assess", s.handleAssess)
	s.mux.HandleFunc("POST /llm/first-aid", s.handleFirstAid)
	s.mux.HandleFunc("GET /llm/health", s.handleHealth)
	s.mux.HandleFunc("GET /status", s.handleStatus)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	reqID := ulid.Make().String()

	var req models.AssessmentRequest
	if err := decodeJSON(r, &req); err != nil {
		s.log.Warnf("assess", "[%s] bad request: %v", reqID, err)
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	start := time.Now()
	result, err := s.pipe.Assess(r.Context(), &req)
	if err != nil {
		s.writePipelineError(w, reqID, "assess", err)
		return
	}
	s.log.Infof("assess", "[%s] %s severity=%s in %s",
		reqID, result.EmergencyID, result.Severity, time.Since(start).Round(time.Millisecond))
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleFirstAid(w http.ResponseWriter, r *http.Request) {
	reqID := ulid.Make().String()

	var req models.FirstAidRequest
	if err := decodeJSON(r, &req); err != nil {
		s.log.Warnf("first_aid", "[%s] bad request: %v", reqID, err)
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	start := time.Now()
	result, err := s.pipe.FirstAid(r.Context(), &req)
	if err != nil {
		s.writePipelineError(w, reqID, "first_aid", err)
		return
	}
	s.log.Infof("first_aid", "[%s] %s steps=%d in %s",
		reqID, result.EmergencyID, len(result.Steps), time.Since(start).Round(time.Millisecond))
	writeJSON(w, http.StatusOK, result)
}

// writePipelineError maps pipeline errors onto HTTP statuses: request
// validation problems are the caller's fault (400), exhausted providers
// with fallback disabled are 503, anything else is a 500.
func (s *Server) writePipelineError(w http.ResponseWriter, reqID, action string, err error) {
	switch {
	case errors.Is(err, models.ErrMissingEmergencyID),
		errors.Is(err, models.ErrDescriptionTooShort),
		errors.Is(err, models.ErrDescriptionTooLong):
		s.log.Warnf(action, "[%s] invalid context: %v", reqID, err)
		writeError(w, http.StatusBadRequest, "INVALID_CONTEXT", err.Error())
	case errors.Is(err, pipeline.ErrServiceUnavailable):
		s.log.Errorf(action, "[%s] %v", reqID, err)
		writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE",
			pipeline.ErrServiceUnavailable.Error())
	default:
		s.log.Errorf(action, "[%s] %v", reqID, err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "request failed")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	avail := s.health.CheckAvailability(r.Context())
	// No provider reachable is degraded, not down: the fallback knowledge
	// base still answers every request, so this stays a 200.
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"providers": avail.Providers,
		"available": avail.Available,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":   "emergency-guidance",
		"providers": s.health.Providers(),
		"metrics":   s.met.TakeSnapshot(),
	})
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, models.ServiceError{
		Success:   false,
		Error:     http.StatusText(status),
		ErrorCode: code,
		Message:   msg,
	})
}
