// Package api provides the operational HTTP handlers for meetingsview
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// HealthResponse represents the response for health check endpoints
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// readyTimeout bounds the store ping of a readiness probe
const readyTimeout = 2 * time.Second

// HealthLiveHandler handles Kubernetes liveness probe requests
func HealthLiveHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "UP"})
}

// HealthReadyHandler handles Kubernetes readiness probe requests.
// The service is ready when the view store answers a ping.
func HealthReadyHandler(store Pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			log.Warn("Readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status: "DOWN",
				Error:  "view store unavailable",
			})
			return
		}

		writeJSON(w, http.StatusOK, HealthResponse{Status: "UP"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
