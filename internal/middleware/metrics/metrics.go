// Package metrics provides Prometheus HTTP metrics middleware and board gauges.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyboard_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "resource", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studyboard_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "studyboard_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// boardResources are the /v1 route groups reported in the resource label.
var boardResources = map[string]bool{
	"posts": true, "replies": true, "threads": true, "flagged": true,
	"feedback": true, "grading": true, "me": true,
}

// routeResource maps a chi route pattern to the board resource it serves.
// A reply created under /posts/{id}/replies counts as a reply.
func routeResource(pattern string) string {
	parts := strings.Split(strings.Trim(pattern, "/"), "/")
	if len(parts) < 2 || parts[0] != "v1" || !boardResources[parts[1]] {
		return "system"
	}
	if parts[1] == "posts" && len(parts) >= 4 && parts[3] == "replies" {
		return "replies"
	}
	return parts[1]
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns HTTP middleware that records Prometheus metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{w, http.StatusOK}
		next.ServeHTTP(wrapped, r)

		// chi's route pattern keeps post ids out of the label
		path := "unmatched"
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
			if pattern := routeCtx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		httpRequestsTotal.WithLabelValues(r.Method, routeResource(path), path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
