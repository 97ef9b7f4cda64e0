package api

import (
	"log/slog"
	"net/http"

	"github.com/navikt/meetingsview/internal/logger"
	"github.com/navikt/meetingsview/internal/metrics"
)

// SetupRoutes registers the operational routes on the given mux
func SetupRoutes(mux *http.ServeMux, store ViewStore, views ViewCounter, log *slog.Logger) {
	if log == nil {
		log = logger.Discard()
	}

	// Health check endpoints for Kubernetes
	mux.HandleFunc("/health/live", HealthLiveHandler)
	mux.HandleFunc("/health/ready", HealthReadyHandler(store, log))

	mux.Handle("/metrics", metrics.Handler())

	viewHandler := NewViewHandler(store, views, log)
	mux.Handle("/api/views", viewHandler)
	mux.Handle("/api/views/", viewHandler)
}
