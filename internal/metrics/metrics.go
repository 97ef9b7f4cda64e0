// Package metrics provides Prometheus metrics for the meetings view.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch outcomes used as label values
const (
	OutcomeSuccess     = "success"
	OutcomeParseError  = "parse_error"
	OutcomeStatusError = "status_error"
	OutcomeTransport   = "transport_error"
	OutcomeCanceled    = "canceled"
)

var (
	// fetchTotal counts collection requests by outcome.
	fetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetingsview_fetch_total",
			Help: "Total number of meetings collection requests",
		},
		[]string{"outcome"},
	)

	// fetchDuration records how long collection requests take, including decoding.
	fetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meetingsview_fetch_duration_seconds",
			Help:    "Duration of meetings collection requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	activeViews = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "meetingsview_active_views",
			Help: "Number of currently mounted views",
		},
	)

	// renderTotal counts rendered pages and partials by template.
	renderTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetingsview_renders_total",
			Help: "Total number of rendered templates",
		},
		[]string{"template"},
	)
)

func init() {
	prometheus.MustRegister(fetchTotal)
	prometheus.MustRegister(fetchDuration)
	prometheus.MustRegister(activeViews)
	prometheus.MustRegister(renderTotal)
}

// RecordFetch records one finished collection request
func RecordFetch(outcome string, durationSeconds float64) {
	fetchTotal.WithLabelValues(outcome).Inc()
	fetchDuration.Observe(durationSeconds)
}

// ViewMounted increments the active view gauge
func ViewMounted() {
	activeViews.Inc()
}

// ViewUnmounted decrements the active view gauge
func ViewUnmounted() {
	activeViews.Dec()
}

// RecordRender counts a rendered template
func RecordRender(template string) {
	renderTotal.WithLabelValues(template).Inc()
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
