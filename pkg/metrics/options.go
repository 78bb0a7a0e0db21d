package metrics

import (
	"maps"

	"github.com/prometheus/client_golang/prometheus"
)

// latencyBuckets are in milliseconds; every latency histogram here records
// milliseconds.
var latencyBuckets = []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500} //nolint:gochecknoglobals // defaults

// Option configures a Manager.
type Option func(*Manager)

// WithNamespace replaces the "heatsheet" namespace.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem replaces the "schedule" subsystem.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithMetricPrefix prefixes every metric name, after namespace and subsystem.
func WithMetricPrefix(prefix string) Option {
	return func(m *Manager) {
		m.metricPrefix = prefix
	}
}

// WithLatencyBuckets replaces the millisecond buckets of the latency
// histograms.
func WithLatencyBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithMeet labels every series with the meet it describes, so several
// meets can share one Prometheus.
func WithMeet(name string) Option {
	return WithConstLabels(map[string]string{"meet": name})
}

// WithConstLabels adds constant labels to every series. Empty values are
// skipped.
func WithConstLabels(labels map[string]string) Option {
	return func(m *Manager) {
		for k, v := range labels {
			if v != "" {
				m.constLabels[k] = v
			}
		}
	}
}

// WithPrometheusRegistry registers metrics with registry instead of the
// default registerer.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// ConstLabels returns a copy of the labels attached to every series.
func (m *Manager) ConstLabels() map[string]string { return maps.Clone(m.constLabels) }
