// Package transport exposes the latest analysis over HTTP.
package transport

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/goodnatureofminers/stateinsight7000/internal/analysis"
	"github.com/goodnatureofminers/stateinsight7000/internal/render"
	"go.uber.org/zap"
)

// Snapshots supplies the result to serve. Latest returns nil until the first analysis completes.
type Snapshots interface {
	Latest() *analysis.Result
}

// Static serves a fixed result.
type Static struct {
	Result *analysis.Result
}

func (s Static) Latest() *analysis.Result {
	return s.Result
}

const (
	healthStatusHealthy  = "healthy"
	healthStatusStarting = "starting"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	RunID  string `json:"run_id,omitempty"`
	States int    `json:"states"`
}

type errorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// AnalysisHandler serves the analysis endpoints.
type AnalysisHandler struct {
	snapshots Snapshots
	logger    *zap.Logger
}

// NewAnalysisHandler returns an AnalysisHandler instance.
func NewAnalysisHandler(snapshots Snapshots, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{snapshots: snapshots, logger: logger}
}

// Health reports server health. The server is starting until a snapshot exists.
func (h *AnalysisHandler) Health(w http.ResponseWriter, _ *http.Request) {
	res := h.snapshots.Latest()
	if res == nil {
		h.respondJSON(w, http.StatusOK, HealthResponse{Status: healthStatusStarting})
		return
	}
	h.respondJSON(w, http.StatusOK, HealthResponse{
		Status: healthStatusHealthy,
		RunID:  res.RunID,
		States: res.Graph.Len(),
	})
}

// Analysis handles GET /api/v1/analysis.
func (h *AnalysisHandler) Analysis(w http.ResponseWriter, _ *http.Request) {
	res := h.snapshots.Latest()
	if res == nil {
		h.respondError(w, http.StatusServiceUnavailable, "analysis not ready")
		return
	}
	h.respondJSON(w, http.StatusOK, render.NewReport(res))
}

// State handles GET /api/v1/states/{key}. The key is "hash#index" with the '#' escaped.
func (h *AnalysisHandler) State(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil || key == "" {
		h.respondError(w, http.StatusBadRequest, "state key is required")
		return
	}
	res := h.snapshots.Latest()
	if res == nil {
		h.respondError(w, http.StatusServiceUnavailable, "analysis not ready")
		return
	}
	n, ok := res.Graph.Node(key)
	if !ok {
		h.respondError(w, http.StatusNotFound, "state not found")
		return
	}
	h.respondJSON(w, http.StatusOK, render.NewStateView(n))
}

func (h *AnalysisHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *AnalysisHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, errorResponse{Error: true, Message: message, Code: status})
}
