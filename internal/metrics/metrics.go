// Package metrics exposes forecast pipeline counters on a private prometheus registry
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for the forecasts counter
const (
	OutcomeSuccess        = "success"
	OutcomeMissingFile    = "missing_file"
	OutcomeInputError     = "input_error"
	OutcomeFitError       = "fit_error"
	OutcomeInvalidHorizon = "invalid_horizon"
	OutcomeBusy           = "busy"
	OutcomeError          = "error"
)

// Metrics holds the collectors for one server instance
type Metrics struct {
	registry *prometheus.Registry

	forecasts   *prometheus.CounterVec
	duration    prometheus.Histogram
	historyRows prometheus.Histogram
}

// New registers the forecast collectors along with the go and process collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		forecasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "augur",
			Name:      "forecasts_total",
			Help:      "Forecast requests by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "augur",
			Name:      "forecast_duration_seconds",
			Help:      "Time spent loading, fitting and presenting a forecast.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		historyRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "augur",
			Name:      "history_rows",
			Help:      "Number of historical rows per forecast.",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 8),
		}),
	}
	m.registry.MustRegister(
		m.forecasts,
		m.duration,
		m.historyRows,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveForecast records one forecast attempt
func (m *Metrics) ObserveForecast(outcome string, elapsed time.Duration, rows int) {
	m.forecasts.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
	if rows > 0 {
		m.historyRows.Observe(float64(rows))
	}
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
