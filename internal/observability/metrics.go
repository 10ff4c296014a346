// Package observability holds the Prometheus metrics and HTTP logging
// middleware of the calculator.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the calculator.
type Metrics struct {
	// Registry owns these metrics and backs the /metrics endpoint.
	Registry *prometheus.Registry

	projections        *prometheus.CounterVec
	projectionDuration *prometheus.HistogramVec
	projectedYears     *prometheus.HistogramVec
	renders            *prometheus.CounterVec
	renderDuration     *prometheus.HistogramVec
	reportPages        prometheus.Histogram
	renderWarnings     *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// NewMetrics creates a dedicated registry and registers all metrics in it,
// so repeated construction in tests never collides.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		projections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "invest_calc_projections_total",
				Help: "Total projections computed by model and outcome.",
			},
			[]string{"model", "status"},
		),
		projectionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "invest_calc_projection_duration_seconds",
				Help:    "Duration of projection computations by model.",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"model"},
		),
		projectedYears: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "invest_calc_projected_years",
				Help:    "Number of years per projection by model.",
				Buckets: []float64{1, 5, 10, 20, 30, 50, 100},
			},
			[]string{"model"},
		),
		renders: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "invest_calc_renders_total",
				Help: "Total artifacts rendered by kind and outcome.",
			},
			[]string{"kind", "status"},
		),
		renderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "invest_calc_render_duration_seconds",
				Help:    "Duration of chart, report and export rendering.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		reportPages: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "invest_calc_report_pages",
				Help:    "Pages per rendered PDF report.",
				Buckets: []float64{1, 2, 3, 5, 8, 13},
			},
		),
		renderWarnings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "invest_calc_render_warnings_total",
				Help: "Non-fatal rendering degradations by kind.",
			},
			[]string{"kind"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "invest_calc_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route and status class.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "status"},
		),
	}
}

// RecordProjection records one projection attempt.
func (m *Metrics) RecordProjection(model string, years int, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.projections.WithLabelValues(model, status(err)).Inc()
	if err != nil {
		return
	}
	m.projectionDuration.WithLabelValues(model).Observe(d.Seconds())
	m.projectedYears.WithLabelValues(model).Observe(float64(years))
}

// RecordRender records one render of kind (chart, report or export).
func (m *Metrics) RecordRender(kind string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(kind, status(err)).Inc()
	if err == nil {
		m.renderDuration.WithLabelValues(kind).Observe(d.Seconds())
	}
}

// RecordReportPages records the page count of a rendered report.
func (m *Metrics) RecordReportPages(pages int) {
	if m == nil {
		return
	}
	m.reportPages.Observe(float64(pages))
}

// IncrRenderWarning counts a degraded render.
func (m *Metrics) IncrRenderWarning(kind string) {
	if m == nil {
		return
	}
	m.renderWarnings.WithLabelValues(kind).Inc()
}

// RecordHTTPRequest records the duration of one HTTP request.
func (m *Metrics) RecordHTTPRequest(route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(route, statusClass(code)).Observe(d.Seconds())
}

// ProjectionCount returns the projections counted for model and status.
func (m *Metrics) ProjectionCount(model, status string) float64 {
	return getCounterValue(m.projections, model, status)
}

// RenderCount returns the renders counted for kind and status.
func (m *Metrics) RenderCount(kind, status string) float64 {
	return getCounterValue(m.renders, kind, status)
}

// WarningCount returns the render warnings counted for kind.
func (m *Metrics) WarningCount(kind string) float64 {
	return getCounterValue(m.renderWarnings, kind)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// getCounterValue extracts the current value from a CounterVec for the given labels.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter, err := cv.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0
	}
	m := &dto.Metric{}
	if err := counter.Write(m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}
