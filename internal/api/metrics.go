package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	splitsComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hearthledger_splits_computed_total",
		Help: "Split computations by method (previews and creates).",
	}, []string{"method"})

	paymentsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hearthledger_payments_recorded_total",
		Help: "Payments appended to the settlement ledger.",
	})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hearthledger_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// instrument records request latency keyed by the chi route pattern, so
// /api/v1/obligations/{id} aggregates as one series rather than one per
// obligation.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &metricsRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		requestDuration.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}

type metricsRecorder struct {
	http.ResponseWriter
	status int
}

func (r *metricsRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
