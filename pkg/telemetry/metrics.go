package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/navcore/pkg/history"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "navcore").
	Namespace string

	// Subsystem is the metrics subsystem (default: "router").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for transition duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "navcore",
		Subsystem: "router",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a history.Observer that records transition counts, guard
// phases and transition latency.
type Metrics struct {
	transitions *prometheus.CounterVec
	guards      *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	inflight    prometheus.Gauge
	now         func() time.Time
}

var _ history.Observer = (*Metrics)(nil)

// NewMetrics registers the navigation collectors and returns the observer.
// Registering twice against the same registry panics, as promauto does.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   config.Namespace,
				Subsystem:   config.Subsystem,
				Name:        "transitions_total",
				Help:        "Total number of finished navigations by result",
				ConstLabels: config.ConstLabels,
			},
			[]string{"result"},
		),
		guards: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   config.Namespace,
				Subsystem:   config.Subsystem,
				Name:        "guard_phases_total",
				Help:        "Total number of guard steps started by phase",
				ConstLabels: config.ConstLabels,
			},
			[]string{"phase"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   config.Namespace,
				Subsystem:   config.Subsystem,
				Name:        "transition_duration_seconds",
				Help:        "Time from navigation start to its outcome",
				ConstLabels: config.ConstLabels,
				Buckets:     config.Buckets,
			},
			[]string{"result"},
		),
		inflight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace:   config.Namespace,
				Subsystem:   config.Subsystem,
				Name:        "transitions_inflight",
				Help:        "Number of navigations started but not yet finished",
				ConstLabels: config.ConstLabels,
			},
		),
		now: time.Now,
	}
}

func (m *Metrics) TransitionStarted(history.TransitionInfo) {
	m.inflight.Inc()
}

func (m *Metrics) GuardStarted(_ history.TransitionInfo, phase history.Phase) {
	m.guards.WithLabelValues(string(phase)).Inc()
}

func (m *Metrics) TransitionFinished(info history.TransitionInfo, result history.Result, _ error) {
	m.inflight.Dec()
	m.transitions.WithLabelValues(string(result)).Inc()
	if !info.Started.IsZero() {
		m.duration.WithLabelValues(string(result)).Observe(m.now().Sub(info.Started).Seconds())
	}
}
