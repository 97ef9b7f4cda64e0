package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/navikt/meetingsview/internal/models"
)

// ViewStats summarizes mounted views
type ViewStats struct {
	// Active counts views mounted by this process
	Active int `json:"active"`
	// Stored counts views in the store, including those of other replicas
	Stored int `json:"stored"`
}

// ViewHandler exposes read-only view state for operators
type ViewHandler struct {
	store ViewStore
	views ViewCounter
	log   *slog.Logger
}

// NewViewHandler creates a new view handler
func NewViewHandler(store ViewStore, views ViewCounter, log *slog.Logger) *ViewHandler {
	return &ViewHandler{
		store: store,
		views: views,
		log:   log,
	}
}

// ServeHTTP handles GET /api/views and GET /api/views/{viewID}
func (h *ViewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	viewID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/views"), "/")
	if viewID == "" {
		h.stats(w, r)
		return
	}
	h.getView(w, r, viewID)
}

// stats handles GET /api/views
func (h *ViewHandler) stats(w http.ResponseWriter, r *http.Request) {
	stored, err := h.store.CountViews(r.Context())
	if err != nil {
		h.log.Error("Error counting views", "error", err)
		http.Error(w, "Error retrieving views", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, ViewStats{
		Active: h.views.ActiveViews(),
		Stored: stored,
	})
}

// getView handles GET /api/views/{viewID}
func (h *ViewHandler) getView(w http.ResponseWriter, r *http.Request, viewID string) {
	state, err := h.store.GetView(r.Context(), viewID)
	if errors.Is(err, models.ErrViewNotFound) {
		http.Error(w, "View not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("Error getting view", "error", err)
		http.Error(w, "Error retrieving view", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, state)
}
