package observability

import (
	"context"

	"github.com/aretw0/pfc/pkg/validator"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pfc"

// Metrics holds the collectors updated by validator hooks.
type Metrics struct {
	validations *prometheus.CounterVec
	findings    *prometheus.CounterVec
	duration    prometheus.Histogram
	reduced     prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validations_total",
				Help:      "Total number of chart validations by verdict.",
			},
			[]string{"result"},
		),
		findings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "findings_total",
				Help:      "Total number of validation findings by kind.",
			},
			[]string{"kind"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "validation_duration_seconds",
				Help:      "Duration of chart validations.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
		reduced: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reduced_nodes_total",
				Help:      "Total number of nodes removed by reduction before validation.",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.validations, m.findings, m.duration, m.reduced)
	}
	return m
}

// Hooks returns validator hooks that record into m.
func (m *Metrics) Hooks() validator.Hooks {
	return validator.Hooks{
		OnFinding: func(_ context.Context, f validator.Finding) {
			m.findings.WithLabelValues(string(f.Kind)).Inc()
		},
		OnComplete: func(_ context.Context, r *validator.Report) {
			result := "invalid"
			if r.Valid {
				result = "valid"
			}
			m.validations.WithLabelValues(result).Inc()
			m.duration.Observe(r.Elapsed.Seconds())
			m.reduced.Add(float64(r.Reduced))
		},
	}
}
