// Package handlers exposes the search entry point over HTTP. Every search
// answers with the orchestrator's state snapshot, so clients see the same
// phases a subscribed UI would.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/tjswar/medilookapp/entities"
	"github.com/tjswar/medilookapp/interfaces"
	"github.com/tjswar/medilookapp/logging"
	"github.com/tjswar/medilookapp/orchestrator"
)

// Compile-time check to ensure HTTPHandlerImpl implements HTTPHandler
var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	coordinator   interfaces.SearchCoordinator
	history       interfaces.HistoryCache
	validator     interfaces.QueryValidator
	healthChecker interfaces.HealthChecker
	startTime     time.Time
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(
	coordinator interfaces.SearchCoordinator,
	history interfaces.HistoryCache,
	validator interfaces.QueryValidator,
	healthChecker interfaces.HealthChecker,
) interfaces.HTTPHandler {
	return &HTTPHandlerImpl{
		coordinator:   coordinator,
		history:       history,
		validator:     validator,
		healthChecker: healthChecker,
		startTime:     time.Now(),
	}
}

// OCRRequest is the body of POST /v1/search/ocr.
type OCRRequest struct {
	Lines []string `json:"lines"`
}

// OCRResponse carries the extracted names alongside the resulting state.
type OCRResponse struct {
	Candidates []string               `json:"candidates"`
	State      interfaces.SearchState `json:"state"`
}

// HistoryResponse wraps the history entries with their count.
type HistoryResponse struct {
	Count   int                           `json:"count"`
	Entries []entities.SearchHistoryEntry `json:"entries"`
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string         `json:"status"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Data          map[string]any `json:"data"`
	System        map[string]any `json:"system"`
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Warn("Failed to write response", "error", err)
	}
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// Search runs a typed query synchronously. An empty q clears the results.
// With live=true the query is debounced like keystrokes in a search box: the
// handler answers 202 with the current state and the outcome is read later
// from /v1/state.
func (h *HTTPHandlerImpl) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	if err := h.validator.ValidateQuery(query); err != nil {
		logging.Warn("Unusual user input", "q", query, "error", err)
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	live := false
	if raw := r.URL.Query().Get("live"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			h.RespondWithError(w, http.StatusBadRequest, "live must be a boolean")
			return
		}
		live = parsed
	}

	if live {
		h.coordinator.SubmitDebounced(query)
		h.RespondWithJSON(w, http.StatusAccepted, h.coordinator.State())
		return
	}

	state := h.coordinator.Submit(r.Context(), query)
	h.RespondWithJSON(w, http.StatusOK, state)
}

// SearchOCR extracts medicine names from recognized prescription text and
// searches each of them.
func (h *HTTPHandlerImpl) SearchOCR(w http.ResponseWriter, r *http.Request) {
	var req OCRRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := h.validator.ValidateRecognizedText(req.Lines); err != nil {
		logging.Warn("Unusual OCR input", "regions", len(req.Lines), "error", err)
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	candidates, state, err := h.coordinator.SearchRecognizedText(r.Context(), req.Lines)
	if errors.Is(err, orchestrator.ErrNoCandidates) {
		h.RespondWithError(w, http.StatusUnprocessableEntity, orchestrator.NoCandidatesMessage)
		return
	}
	if err != nil {
		logging.Error("OCR search failed", "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, OCRResponse{
		Candidates: candidates,
		State:      state,
	})
}

// CurrentState returns the latest search state.
func (h *HTTPHandlerImpl) CurrentState(w http.ResponseWriter, r *http.Request) {
	h.RespondWithJSON(w, http.StatusOK, h.coordinator.State())
}

// ListHistory returns past searches, most recent first.
func (h *HTTPHandlerImpl) ListHistory(w http.ResponseWriter, r *http.Request) {
	entries := h.history.Entries()
	h.RespondWithJSON(w, http.StatusOK, HistoryResponse{
		Count:   len(entries),
		Entries: entries,
	})
}

// ClearHistory empties the search history.
func (h *HTTPHandlerImpl) ClearHistory(w http.ResponseWriter, r *http.Request) {
	h.history.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck returns server health information
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	status, data, httpStatus := h.healthChecker.HealthCheck()

	response := HealthResponse{
		Status:        status,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		Data:          data,
		System: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb": int(m.Alloc / 1024 / 1024),
				"sys_mb":   int(m.Sys / 1024 / 1024),
				"num_gc":   m.NumGC,
			},
		},
	}

	h.RespondWithJSON(w, httpStatus, response)
}
