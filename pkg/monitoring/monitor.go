package monitoring

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	ResponsesSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formpulse_responses_submitted_total",
			Help: "Accepted form submissions",
		},
		[]string{"form_id"},
	)

	AnalyticsCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formpulse_analytics_cache_total",
			Help: "Analytics memo lookups by outcome (hit, miss, error)",
		},
		[]string{"outcome"},
	)

	AggregationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "formpulse_aggregation_duration_seconds",
			Help:    "Time spent filtering and aggregating a response set",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
	)

	ExportsRendered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formpulse_exports_total",
			Help: "Rendered exports by format",
		},
		[]string{"format"},
	)
)

var initOnce sync.Once

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(ResponsesSubmitted)
		prometheus.MustRegister(AnalyticsCache)
		prometheus.MustRegister(AggregationDuration)
		prometheus.MustRegister(ExportsRendered)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack keeps websocket upgrades working behind the middleware.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// MetricsMiddleware records request counts and latency per route template.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tpl
			}
		}

		RequestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rec.status)).Inc()
		RequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}

// PrometheusHandler serves /metrics.
func PrometheusHandler() http.Handler {
	return promhttp.Handler()
}
