// Package metrics exposes Prometheus instrumentation for the fit server.
package metrics

import (
	"net/http"

	"github.com/baditaflorin/go_fit_predictor/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the server collectors on a private registry.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	predictions     *prometheus.CounterVec
	fitScores       prometheus.Histogram
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fit_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fit_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path"},
		),
		predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fit_predictions_total",
				Help: "Total number of size guides scored",
			},
			[]string{"brand", "perfect"},
		),
		fitScores: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fit_best_score",
				Help:    "Fit score of the selected size",
				Buckets: prometheus.LinearBuckets(0, 10, 11),
			},
		),
	}

	m.registry.MustRegister(
		m.requests,
		m.requestDuration,
		m.predictions,
		m.fitScores,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveRequest records a served HTTP request.
func (m *Metrics) ObserveRequest(path, status string, seconds float64) {
	m.requests.WithLabelValues(path, status).Inc()
	m.requestDuration.WithLabelValues(path).Observe(seconds)
}

// ObserveBest records the size selected for a guide.
func (m *Metrics) ObserveBest(brand string, best domain.FitPrediction) {
	perfect := "false"
	if best.PerfectFit {
		perfect = "true"
	}
	m.predictions.WithLabelValues(brand, perfect).Inc()
	m.fitScores.Observe(float64(best.FitScore))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
