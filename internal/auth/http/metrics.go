package http

import (
	"net/http"
	"strconv"

	"github.com/felixge/httpsnoop"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors. Each Router registers
// its own set so tests can build many routers side by side.
type Metrics struct {
	httpDuration *prometheus.HistogramVec
	httpRequests *prometheus.CounterVec

	tokensIssued    *prometheus.CounterVec
	refreshes       *prometheus.CounterVec
	guardRejections *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method", "status"}),

		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"path", "method", "status"}),

		tokensIssued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_tokens_issued_total",
			Help: "Token pairs minted, by sign-in flow and platform.",
		}, []string{"flow", "platform"}),

		refreshes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_refresh_total",
			Help: "Refresh attempts by result.",
		}, []string{"result"}),

		guardRejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_guard_rejections_total",
			Help: "Requests rejected by the auth guard, by reason.",
		}, []string{"reason"}),
	}
}

// Middleware records RED metrics. The path label is the matched mux pattern
// so raw paths never blow up cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snoop := httpsnoop.CaptureMetrics(next, w, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(snoop.Code)
		m.httpDuration.WithLabelValues(path, r.Method, status).Observe(snoop.Duration.Seconds())
		m.httpRequests.WithLabelValues(path, r.Method, status).Inc()
	})
}

func (m *Metrics) tokenIssued(flow, platform string) {
	m.tokensIssued.WithLabelValues(flow, platform).Inc()
}

func (m *Metrics) refreshed(result string) {
	m.refreshes.WithLabelValues(result).Inc()
}

func (m *Metrics) guardRejected(_ *http.Request, reason string) {
	m.guardRejections.WithLabelValues(reason).Inc()
}
