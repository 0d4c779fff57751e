package xld

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const statusLabelTransportError = "error"

// Metrics records client call counts and latencies.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the client metrics on reg. A nil registerer yields a
// Metrics value that records nothing.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "xld_client_requests_total",
		Help: "XLD API calls by route and HTTP status.",
	}, []string{"route", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "xld_client_request_duration_seconds",
		Help:    "Duration of XLD API calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	reg.MustRegister(requests, duration)
	return &Metrics{requests: requests, duration: duration}
}

// observe records one call. statusCode 0 means the transport failed.
func (m *Metrics) observe(route string, statusCode int, elapsed time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	status := statusLabelTransportError
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	m.requests.WithLabelValues(route, status).Inc()
	m.duration.WithLabelValues(route).Observe(elapsed.Seconds())
}
