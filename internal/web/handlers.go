package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/navikt/meetingsview/internal/logger"
	"github.com/navikt/meetingsview/internal/metrics"
	"github.com/navikt/meetingsview/internal/models"
	"github.com/navikt/meetingsview/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler manages web UI requests
type Handler struct {
	views      ViewServicer
	templates  *template.Template
	sseManager *SSEManager
	log        *slog.Logger
}

// NewHandler creates a new web UI handler
func NewHandler(views ViewServicer, subscribeTimeout time.Duration, log *slog.Logger) (*Handler, error) {
	if log == nil {
		log = logger.Discard()
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Handler{
		views:      views,
		templates:  tmpl,
		sseManager: NewSSEManager(views, subscribeTimeout, log),
		log:        log,
	}, nil
}

// SetupRoutes registers web UI routes on the given mux
func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.Handle("/events", h.sseManager)
	mux.HandleFunc("/", h.handleIndex)
	mux.HandleFunc("/partial/meetings", h.HandlePartialMeetingList)
}

// layoutData is the view model of layout.html
type layoutData struct {
	ViewID    string
	Live      bool
	Component template.HTML
}

// handleIndex mounts a view for the page and renders its current state
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	// Every request here mounts a view, so only GET is served
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))

	v, err := h.views.Mount(r.Context())
	if err != nil {
		h.log.Error("Failed to mount view", "error", err, "rid", RequestID(r.Context()))
		http.Error(w, "Failed to load page", http.StatusInternalServerError)
		return
	}

	data := layoutData{ViewID: v.ID(), Live: !wait}
	if wait {
		// Static page: the view is released as soon as it is rendered
		defer h.unmount(v.ID())
		if err := v.Wait(r.Context()); err != nil {
			h.log.Debug("Client left before the view settled", "view_id", v.ID())
			return
		}
	} else {
		// The stream must exist before the state is read, so a populate
		// that lands after this point is always published
		h.sseManager.Track(v.ID())
	}

	state, err := v.Snapshot(r.Context())
	if err != nil {
		h.log.Error("Failed to read view", "view_id", v.ID(), "error", err)
		http.Error(w, "Failed to load page", http.StatusInternalServerError)
		return
	}

	var component bytes.Buffer
	if err := view.RenderState(&component, state); err != nil {
		h.log.Error("Error rendering template", "error", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	data.Component = template.HTML(component.String())

	h.render(w, "layout.html", data)
}

// HandlePartialMeetingList renders just the meetings component for HTMX updates
func (h *Handler) HandlePartialMeetingList(w http.ResponseWriter, r *http.Request) {
	state, err := h.views.State(r.Context(), r.URL.Query().Get("view"))
	if errors.Is(err, models.ErrViewNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.log.Error("Failed to read view", "error", err)
		http.Error(w, "Failed to get meeting data", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := view.RenderState(&buf, state); err != nil {
		h.log.Error("Error rendering template", "error", err)
		http.Error(w, "Failed to render meeting list", http.StatusInternalServerError)
		return
	}

	metrics.RecordRender(view.TemplateName)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// render executes a page template into a buffer so a failure never leaves a half-written page
func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.log.Error("Error rendering template", "template", name, "error", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	metrics.RecordRender(name)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (h *Handler) unmount(viewID string) {
	ctx, cancel := context.WithTimeout(context.Background(), unmountTimeout)
	defer cancel()
	if err := h.views.Unmount(ctx, viewID); err != nil {
		h.log.Warn("Failed to unmount view", "view_id", viewID, "error", err)
	}
}

// NotifyPopulated sends a populated event to the page of the view.
// Register it with the view service.
func (h *Handler) NotifyPopulated(viewID string) {
	h.sseManager.NotifyPopulated(viewID)
}

// Shutdown gracefully shuts down the web handler and its SSE manager
func (h *Handler) Shutdown() {
	h.sseManager.Shutdown()
}
