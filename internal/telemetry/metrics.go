package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jamesprial/authgate/internal/auth"
)

// Metrics holds the authgate prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	TokenVerifications  *prometheus.CounterVec
	KeyFetches          *prometheus.CounterVec
	KeyFetchDuration    prometheus.Histogram
	KeySetSize          prometheus.Gauge
	Throttled           *prometheus.CounterVec
	Lockouts            prometheus.Counter
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors on a private registry that also
// carries the Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		TokenVerifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authgate_token_verifications_total",
				Help: "Token verifications by outcome",
			},
			[]string{"result"},
		),
		KeyFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authgate_jwks_fetches_total",
				Help: "Signing key set fetches by outcome",
			},
			[]string{"result"},
		),
		KeyFetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "authgate_jwks_fetch_duration_seconds",
				Help:    "Signing key set fetch latency",
				Buckets: prometheus.DefBuckets,
			},
		),
		KeySetSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "authgate_jwks_keys",
				Help: "Number of keys in the last fetched key set",
			},
		),
		Throttled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authgate_throttled_total",
				Help: "Attempts refused by an abuse guard",
			},
			[]string{"action", "reason"},
		),
		Lockouts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "authgate_lockouts_total",
				Help: "Identities locked after repeated login failures",
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authgate_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "authgate_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.TokenVerifications,
		m.KeyFetches,
		m.KeyFetchDuration,
		m.KeySetSize,
		m.Throttled,
		m.Lockouts,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// KeysFetched implements auth.Observer.
func (m *Metrics) KeysFetched(count int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.KeyFetchDuration.Observe(elapsed.Seconds())
	if err != nil {
		m.KeyFetches.WithLabelValues("error").Inc()
		return
	}
	m.KeyFetches.WithLabelValues("ok").Inc()
	m.KeySetSize.Set(float64(count))
}

// TokenVerified implements auth.Observer.
func (m *Metrics) TokenVerified(err error) {
	if m == nil {
		return
	}
	m.TokenVerifications.WithLabelValues(auth.Reason(err)).Inc()
}

// AttemptThrottled counts a refusal by the limiter ("rate_limited") or the
// lockout tracker ("locked_out").
func (m *Metrics) AttemptThrottled(action, reason string) {
	if m == nil {
		return
	}
	m.Throttled.WithLabelValues(action, reason).Inc()
}

// LockoutEngaged counts a transition into the locked state.
func (m *Metrics) LockoutEngaged() {
	if m == nil {
		return
	}
	m.Lockouts.Inc()
}

// RequestServed records one completed HTTP request.
func (m *Metrics) RequestServed(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

var _ auth.Observer = (*Metrics)(nil)
