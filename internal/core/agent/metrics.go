package agent

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records per-tree step outcomes.
type Metrics struct {
	ticks    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. Collectors already registered
// by an earlier call are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ticks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "behave_ticks_total",
				Help: "Total number of tree ticks",
			},
			[]string{"tree"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "behave_tick_duration_seconds",
				Help:    "Duration of a single tree tick",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"tree"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "behave_step_errors_total",
				Help: "Total number of failed agent steps",
			},
			[]string{"tree"},
		),
	}

	var err error
	if m.ticks, err = register(reg, m.ticks); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, m.duration); err != nil {
		return nil, err
	}
	if m.errors, err = register(reg, m.errors); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Observe records one step of an agent running tree.
func (m *Metrics) Observe(tree string, took time.Duration, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.errors.WithLabelValues(tree).Inc()
		return
	}
	m.ticks.WithLabelValues(tree).Inc()
	m.duration.WithLabelValues(tree).Observe(took.Seconds())
}
