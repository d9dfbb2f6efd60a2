package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"Process_Insights/internal/dashboard"
	"Process_Insights/internal/logger"
	"Process_Insights/internal/models"

	"github.com/gorilla/mux"
)

// Handler contains the HTTP handlers for the API
type Handler struct {
	dashboard dashboard.Service
	logger    logger.Service
}

// NewHandler creates a new HTTP handler
func NewHandler(
	dashboard dashboard.Service,
	logger logger.Service,
) *Handler {
	return &Handler{
		dashboard: dashboard,
		logger:    logger,
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// DatasetResponse wraps a single dataset
type DatasetResponse struct {
	Dataset   string      `json:"dataset"`
	Count     int         `json:"count"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// InvalidateResponse confirms a cache invalidation
type InvalidateResponse struct {
	Dataset     string    `json:"dataset"`
	Invalidated bool      `json:"invalidated"`
	Timestamp   time.Time `json:"timestamp"`
}

// writeJSONResponse writes a JSON response with standard headers including X-Request-ID
func (h *Handler) writeJSONResponse(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) error {
	logEvent := logger.GetLogEvent(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", logEvent.ProcessID)
	w.WriteHeader(statusCode)

	return json.NewEncoder(w).Encode(data)
}

// writeDataset writes a dataset response, logging encoding failures
func (h *Handler) writeDataset(w http.ResponseWriter, r *http.Request, dataset string, count int, data interface{}) {
	response := DatasetResponse{
		Dataset:   dataset,
		Count:     count,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, response); err != nil {
		// Response already sent with 200, but log the encoding error
		h.logger.LogError(r.Context(), logger.OpDatasetFetch, dataset, "Failed to encode response", err, models.LogSeverityLow, nil)
	}
}

// GetProcesses handles GET /api/processes[?status=]
func (h *Handler) GetProcesses(w http.ResponseWriter, r *http.Request) {
	processes, err := h.dashboard.Processes(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.writeDatasetError(w, r, models.DatasetProcesses, err)
		return
	}
	h.writeDataset(w, r, models.DatasetProcesses, len(processes), processes)
}

// GetMetrics handles GET /api/metrics
func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.dashboard.Metrics(r.Context())
	if err != nil {
		h.writeDatasetError(w, r, models.DatasetMetrics, err)
		return
	}
	h.writeDataset(w, r, models.DatasetMetrics, len(metrics), metrics)
}

// GetHistory handles GET /api/history
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.dashboard.History(r.Context())
	if err != nil {
		h.writeDatasetError(w, r, models.DatasetHistory, err)
		return
	}
	h.writeDataset(w, r, models.DatasetHistory, len(history), history)
}

// GetOverview handles GET /api/overview
func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	overview, err := h.dashboard.Overview(ctx)
	if err != nil {
		h.writeErrorResponse(w, r, statusCodeForError(err), "failed to load overview", errorMessage(err))
		return
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, overview); err != nil {
		h.logger.LogError(ctx, logger.OpOverview, "", "Failed to encode overview", err, models.LogSeverityLow, nil)
	}
}

// InvalidateCache handles DELETE /api/cache/{dataset}
func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dataset := mux.Vars(r)["dataset"]

	if err := h.dashboard.Invalidate(ctx, dataset); err != nil {
		h.writeErrorResponse(w, r, statusCodeForError(err), "cache invalidation failed", err.Error())
		return
	}

	response := InvalidateResponse{
		Dataset:     dataset,
		Invalidated: true,
		Timestamp:   time.Now().UTC(),
	}
	if err := h.writeJSONResponse(w, r, http.StatusOK, response); err != nil {
		h.logger.LogError(ctx, logger.OpCacheInvalidate, dataset, "Failed to encode response", err, models.LogSeverityLow, nil)
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, response); err != nil {
		h.logger.LogError(ctx, logger.OpHealthCheck, "", "Failed to encode health response", err, models.LogSeverityLow, nil)
		return
	}

	h.logger.LogInfo(ctx, logger.OpHealthCheck, "Health check performed successfully", nil)
}

func (h *Handler) writeDatasetError(w http.ResponseWriter, r *http.Request, dataset string, err error) {
	h.writeErrorResponse(w, r, statusCodeForError(err), "failed to load "+dataset, errorMessage(err))
}

// writeErrorResponse writes a standardized error response
func (h *Handler) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, error, message string) {
	response := ErrorResponse{
		Error:     error,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}

	if err := h.writeJSONResponse(w, r, statusCode, response); err != nil {
		h.logger.LogError(r.Context(), "response_encoding", "", "Failed to encode error response", err, models.LogSeverityLow, nil)
	}
}

// statusCodeForError maps service errors to HTTP status codes.
// An upstream status is passed through when it is a client or server error;
// a timeout is a gateway timeout and any other fetch failure is a bad gateway.
func statusCodeForError(err error) int {
	apiErr, isAPIError := models.AsAPIError(err)
	if isAPIError && apiErr.StatusCode != nil && *apiErr.StatusCode >= 400 && *apiErr.StatusCode <= 599 {
		return *apiErr.StatusCode
	}

	switch {
	case errors.Is(err, models.ErrFetchTimeout):
		return http.StatusGatewayTimeout
	case isAPIError:
		return http.StatusBadGateway
	case errors.Is(err, models.ErrUnknownDataset):
		return http.StatusNotFound
	case errors.Is(err, models.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage prefers the normalized message of an APIError
func errorMessage(err error) string {
	if apiErr, ok := models.AsAPIError(err); ok {
		return apiErr.Message
	}
	return err.Error()
}
