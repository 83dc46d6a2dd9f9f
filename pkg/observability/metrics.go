package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/quiver/pkg/domain"
)

// Metrics collects compile and field statistics on its own registry.
type Metrics struct {
	registry        *prometheus.Registry
	compiles        *prometheus.CounterVec
	compileDuration *prometheus.HistogramVec
	kills           prometheus.Counter
	fields          prometheus.Counter
	samples         *prometheus.CounterVec
}

// NewMetrics creates and registers the quiver metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		compiles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiver_compiles_total",
				Help: "Compilations by outcome",
			},
			[]string{"outcome"},
		),
		compileDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quiver_compile_duration_seconds",
				Help:    "Wall-clock time of compilations, including sandbox start-up",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"outcome"},
		),
		kills: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiver_sandbox_kills_total",
			Help: "Workers terminated before answering",
		}),
		fields: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiver_fields_total",
			Help: "Vector fields produced",
		}),
		samples: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiver_field_samples_total",
				Help: "Field samples by quality",
			},
			[]string{"quality"},
		),
	}
	m.registry.MustRegister(m.compiles, m.compileDuration, m.kills, m.fields, m.samples)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCompileFinish: func(_ context.Context, e *domain.CompileEvent) {
			outcome := string(e.Outcome)
			m.compiles.WithLabelValues(outcome).Inc()
			m.compileDuration.WithLabelValues(outcome).Observe(e.Duration.Seconds())
			if e.Killed {
				m.kills.Inc()
			}
		},
		OnField: func(_ context.Context, e *domain.FieldEvent) {
			m.fields.Inc()
			m.samples.WithLabelValues("ok").Add(float64(e.Points - e.Degenerate))
			m.samples.WithLabelValues("degenerate").Add(float64(e.Degenerate))
		},
	}
}
