// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeServed      = "served"
	OutcomeNotServed   = "not_served"
	OutcomeCreated     = "created"
	OutcomeDuplicate   = "duplicate"
	OutcomeInvalid     = "invalid"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

var (
	ValidationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "service_area_validations_total",
		Help: "Location validations by outcome",
	}, []string{"outcome"})
	WaitlistCapturesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "service_area_waitlist_captures_total",
		Help: "Waitlist capture attempts by outcome",
	}, []string{"outcome"})
	RegistryRefreshesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "service_area_registry_refreshes_total",
		Help: "Registry reloads from the database by result",
	}, []string{"result"})
	RegistryActiveAreas = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "service_area_registry_active_areas",
		Help: "Active service areas in the current registry snapshot",
	})
	RegistryInvalidationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "service_area_registry_invalidations_total",
		Help: "Registry invalidations by source",
	}, []string{"source"})
	RateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "service_area_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	}, []string{"route"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "service_area_request_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(ValidationsTotal)
	prometheus.MustRegister(WaitlistCapturesTotal)
	prometheus.MustRegister(RegistryRefreshesTotal)
	prometheus.MustRegister(RegistryActiveAreas)
	prometheus.MustRegister(RegistryInvalidationsTotal)
	prometheus.MustRegister(RateLimitedTotal)
	prometheus.MustRegister(RequestDurationMs)
}

// RegistryObserver records registry reload outcomes.
type RegistryObserver struct{}

// RegistryRefreshed updates the reload counter and, on success, the active-area gauge.
func (RegistryObserver) RegistryRefreshed(activeAreas int, err error) {
	if err != nil {
		RegistryRefreshesTotal.WithLabelValues("error").Inc()
		return
	}
	RegistryRefreshesTotal.WithLabelValues("ok").Inc()
	RegistryActiveAreas.Set(float64(activeAreas))
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler { return promhttp.Handler() }
