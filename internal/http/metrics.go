package http

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"musicpin/internal/core"
	"musicpin/internal/flood"
	"musicpin/pkg/musiclink"
)

// Metrics records provider calls, resolution outcomes and API traffic. It is the
// musiclink.CallObserver of the shared transport and the core.Recorder of the strategy.
type Metrics struct {
	ProviderCallsTotal   *prometheus.CounterVec
	ProviderCallDuration *prometheus.HistogramVec
	CandidatesTotal      *prometheus.CounterVec
	ResolutionsTotal     *prometheus.CounterVec
	ResolutionDuration   *prometheus.HistogramVec
	RequestsTotal        *prometheus.CounterVec
	RateLimitedTotal     prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		ProviderCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "musicpin_provider_calls_total",
				Help: "Total number of upstream provider calls",
			},
			[]string{"provider", "outcome"},
		),
		ProviderCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "musicpin_provider_call_duration_seconds",
				Help:    "Time spent waiting for upstream providers",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		CandidatesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "musicpin_candidates_total",
				Help: "Total number of interfaces probed during resolution",
			},
			[]string{"platform", "provider", "outcome"},
		),
		ResolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "musicpin_resolutions_total",
				Help: "Total number of search resolutions",
			},
			[]string{"outcome"},
		),
		ResolutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "musicpin_resolution_duration_seconds",
				Help:    "Time spent resolving a search",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20, 40, 80},
			},
			[]string{"outcome"},
		),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "musicpin_http_requests_total",
				Help: "Total number of API requests",
			},
			[]string{"route", "status"},
		),
		RateLimitedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "musicpin_rate_limited_total",
				Help: "Total number of API requests rejected by the rate limiter",
			},
		),
	}

	reg.MustRegister(
		metrics.ProviderCallsTotal,
		metrics.ProviderCallDuration,
		metrics.CandidatesTotal,
		metrics.ResolutionsTotal,
		metrics.ResolutionDuration,
		metrics.RequestsTotal,
		metrics.RateLimitedTotal,
	)

	return metrics
}

func (m *Metrics) ObserveProviderCall(provider musiclink.Provider, outcome string, elapsed time.Duration) {
	m.ProviderCallsTotal.WithLabelValues(string(provider), outcome).Inc()
	m.ProviderCallDuration.WithLabelValues(string(provider)).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveCandidate(iface core.Interface, outcome string) {
	m.CandidatesTotal.WithLabelValues(string(iface.Platform), string(iface.Provider), outcome).Inc()
}

func (m *Metrics) ObserveResolution(outcome string, elapsed time.Duration) {
	m.ResolutionsTotal.WithLabelValues(outcome).Inc()
	m.ResolutionDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordRequest(route string, status int) {
	m.RequestsTotal.WithLabelValues(route, statusLabel(status)).Inc()
}

func (m *Metrics) RecordRateLimited() {
	m.RateLimitedTotal.Inc()
}

// WatchFloodgate exports the rate limiter's tracked clients and limit as gauges.
func WatchFloodgate(reg prometheus.Registerer, gate *flood.Floodgate) {
	reg.MustRegister(
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "musicpin_rate_limit_active_clients",
				Help: "Number of clients currently tracked by the rate limiter",
			},
			func() float64 { return float64(gate.GetStats().ActiveClients) },
		),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "musicpin_rate_limit_per_minute",
				Help: "Configured API requests per client per minute (0 means unlimited)",
			},
			func() float64 { return float64(gate.GetStats().LimitPerMinute) },
		),
	)
}

var (
	_ musiclink.CallObserver = (*Metrics)(nil)
	_ core.Recorder          = (*Metrics)(nil)
)
