package web

import (
	"context"
	"log/slog"
	"net/http"
)

// relevantHeaders are logged for event stream requests to debug proxy issues
var relevantHeaders = []string{
	"Accept", "Connection", "User-Agent",
	"Accept-Encoding", "X-Forwarded-For",
	"X-Forwarded-Proto", "Upgrade", "Origin",
	"Last-Event-ID",
}

// logStreamRequest logs protocol and header details of an event stream request
func logStreamRequest(log *slog.Logger, r *http.Request) {
	if !log.Enabled(r.Context(), slog.LevelDebug) {
		return
	}

	attrs := []slog.Attr{
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("proto", r.Proto),
		slog.Bool("tls", r.TLS != nil),
		slog.String("stream", r.URL.Query().Get("stream")),
	}
	for _, header := range relevantHeaders {
		if value := r.Header.Get(header); value != "" {
			attrs = append(attrs, slog.String(header, value))
		}
	}

	log.LogAttrs(context.Background(), slog.LevelDebug, "SSE request", attrs...)
}
