// Package metrics exposes the call-logd Prometheus counters and an HTTP
// instrumentation middleware.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "call_logd"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests processed.",
	}, []string{"method", "path_pattern", "status_code"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path_pattern"})
)

var (
	callLogsGenerated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "call_logs_generated_total",
		Help:      "Total call logs successfully generated.",
	})

	callLogsInvalid = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "call_logs_invalid_total",
		Help:      "Total call log groups skipped for failing validation.",
	})

	noInterpretorMatched = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "no_interpretor_matched_total",
		Help:      "Total linked-id groups no interpretor could classify.",
	})

	TriggersReceivedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "triggers_received_total",
		Help:      "Total LINKEDID_END triggers received, by source.",
	}, []string{"source"})

	DirectoryLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "directory_lookups_total",
		Help:      "Total directory service lookups, by kind and outcome.",
	}, []string{"kind", "outcome"})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		callLogsGenerated,
		callLogsInvalid,
		noInterpretorMatched,
		TriggersReceivedTotal,
		DirectoryLookupsTotal,
	)
}

// Recorder implements callgen.Metrics against the package-level counters.
type Recorder struct{}

func (Recorder) CallLogGenerated()     { callLogsGenerated.Inc() }
func (Recorder) CallLogInvalid()       { callLogsInvalid.Inc() }
func (Recorder) NoInterpretorMatched() { noInterpretorMatched.Inc() }

// InstrumentHandler records HTTP request metrics, using chi's route
// pattern as the path label to avoid cardinality explosion.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(sw, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = "unknown"
		}
		method := r.Method
		status := strconv.Itoa(sw.status)
		duration := time.Since(start).Seconds()

		HTTPRequestsTotal.WithLabelValues(method, pattern, status).Inc()
		HTTPRequestDuration.WithLabelValues(method, pattern).Observe(duration)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
