package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/navikt/meetingsview/internal/logger"
	"github.com/r3labs/sse/v2"
)

// PopulatedEvent is the event name sent when a view's collection has arrived.
// The page listens for it with hx-trigger="sse:populated".
const PopulatedEvent = "populated"

// unmountTimeout bounds store cleanup after a client goes away
const unmountTimeout = 5 * time.Second

// SSEManager runs one event stream per mounted view. The view lives as long
// as its page is subscribed: a subscriber disconnect unmounts it, and a page
// that never subscribes is unmounted after the subscribe timeout.
type SSEManager struct {
	server           *sse.Server
	views            ViewServicer
	log              *slog.Logger
	subscribeTimeout time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewSSEManager creates a new server-sent events manager
func NewSSEManager(views ViewServicer, subscribeTimeout time.Duration, log *slog.Logger) *SSEManager {
	if log == nil {
		log = logger.Discard()
	}

	manager := &SSEManager{
		views:            views,
		log:              log,
		subscribeTimeout: subscribeTimeout,
		pending:          make(map[string]*time.Timer),
	}

	server := sse.New()
	// Replay covers a populated event published before the page subscribed
	server.AutoReplay = true
	server.AutoStream = false
	server.OnSubscribe = manager.onSubscribe
	server.OnUnsubscribe = manager.onUnsubscribe
	manager.server = server

	return manager
}

// Track opens the stream for a freshly mounted view
func (sm *SSEManager) Track(viewID string) {
	sm.server.CreateStream(viewID)

	timer := time.AfterFunc(sm.subscribeTimeout, func() {
		sm.log.Info("No subscriber for view, unmounting", "view_id", viewID)
		sm.release(viewID)
	})

	sm.mu.Lock()
	sm.pending[viewID] = timer
	sm.mu.Unlock()
}

// NotifyPopulated tells the page of a view to fetch the populated list
func (sm *SSEManager) NotifyPopulated(viewID string) {
	if !sm.server.StreamExists(viewID) {
		return
	}
	sm.log.Debug("Publishing populated event", "view_id", viewID)
	sm.server.Publish(viewID, &sse.Event{
		Event: []byte(PopulatedEvent),
		Data:  []byte(viewID),
	})
}

func (sm *SSEManager) onSubscribe(streamID string, _ *sse.Subscriber) {
	sm.mu.Lock()
	if timer, ok := sm.pending[streamID]; ok {
		timer.Stop()
		delete(sm.pending, streamID)
	}
	sm.mu.Unlock()
	sm.log.Debug("SSE client subscribed", "view_id", streamID)
}

func (sm *SSEManager) onUnsubscribe(streamID string, _ *sse.Subscriber) {
	sm.log.Debug("SSE client disconnected", "view_id", streamID)
	// Removing the stream from inside its own callback would block the stream
	go sm.release(streamID)
}

// release unmounts the view and closes its stream
func (sm *SSEManager) release(viewID string) {
	sm.mu.Lock()
	if timer, ok := sm.pending[viewID]; ok {
		timer.Stop()
		delete(sm.pending, viewID)
	}
	sm.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), unmountTimeout)
	defer cancel()

	if err := sm.views.Unmount(ctx, viewID); err != nil {
		sm.log.Debug("Unmount after disconnect", "view_id", viewID, "error", err)
	}
	if sm.server.StreamExists(viewID) {
		sm.server.RemoveStream(viewID)
	}
}

// ServeHTTP implements the http.Handler interface for SSE connections
func (sm *SSEManager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logStreamRequest(sm.log, r)

	// Set CORS headers to make SSE work in various environments
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

	// Handle CORS preflight
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	streamID := r.URL.Query().Get("stream")
	if streamID == "" || !sm.server.StreamExists(streamID) {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("X-Content-Type-Options", "nosniff")

	sm.server.ServeHTTP(w, r)
}

// Shutdown closes every stream
func (sm *SSEManager) Shutdown() {
	sm.mu.Lock()
	for id, timer := range sm.pending {
		timer.Stop()
		delete(sm.pending, id)
	}
	sm.mu.Unlock()

	sm.server.Close()
}
