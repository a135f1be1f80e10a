package server

import (
	"net/http"
	"time"
)

// healthHandler answers liveness probes.
type healthHandler struct{}

func newHealthHandler() *healthHandler {
	return &healthHandler{}
}

func (h *healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

// readyHandler answers readiness probes. The estimator is ready when
// the takeoff service is reachable; a failing upstream flips readiness
// so orchestrators stop routing triggers here.
type readyHandler struct {
	takeoff HealthReporter
}

func newReadyHandler(takeoff HealthReporter) *readyHandler {
	return &readyHandler{takeoff: takeoff}
}

func (h *readyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	health := h.takeoff.GetHealth()
	status := "ready"
	statusCode := http.StatusOK
	if !health.IsHealthy {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	var lastError any
	if health.LastError != nil {
		lastError = health.LastError.Error()
	}

	writeJSON(w, statusCode, map[string]any{
		"status": status,
		"takeoff": map[string]any{
			"healthy":              health.IsHealthy,
			"consecutive_failures": health.ConsecutiveFailures,
			"total_fetches":        health.TotalFetches,
			"failed_fetches":       health.FailedFetches,
			"last_error":           lastError,
		},
		"timestamp": time.Now().Unix(),
	})
}
