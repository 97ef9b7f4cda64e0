package web

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/navikt/meetingsview/internal/logger"
)

type requestIDKey struct{}

// RequestID returns the id assigned to the request by RequestLogger
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// statusRecorder captures the response status. It keeps Flush available
// for the event stream.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// RequestLogger writes a structured log line per request and sets X-Request-ID
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Discard()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := uuid.NewString()
			w.Header().Set("X-Request-ID", reqID)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, reqID)))

			log.Info("http_request",
				"rid", reqID,
				"method", r.Method,
				"path", logger.SanitizeLogString(r.URL.Path),
				"status", rec.status,
				"latency_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}

// HTTPProtocolMiddleware prevents HTTP/3 QUIC protocol issues in cloud environments
// This middleware adds headers to prevent browsers from attempting HTTP/3 connections
// which can cause net::ERR_QUIC_PROTOCOL_ERROR in complex proxy setups
func HTTPProtocolMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Disable HTTP/3 QUIC protocol advertising globally
		w.Header().Set("Alt-Svc", "clear")

		// Force HTTP/1.1 semantics for the event stream
		if strings.HasPrefix(r.URL.Path, "/events") {
			w.Header().Set("X-Force-HTTP1", "true")
			w.Header().Set("X-Accel-Buffering", "no")
		}

		next.ServeHTTP(w, r)
	})
}

// WrapMuxWithMiddleware wraps an HTTP mux with request logging and the protocol middleware
func WrapMuxWithMiddleware(mux *http.ServeMux, log *slog.Logger) http.Handler {
	return RequestLogger(log)(HTTPProtocolMiddleware(mux))
}
