package repository

import "time"

const defaultMetricsUpdateInterval = 5 * time.Second

type options struct {
	metricsUpdateInterval time.Duration
}

// Option applies a configuration option to a store.
type Option func(*options)

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(o *options) {
		if interval > 0 {
			o.metricsUpdateInterval = interval
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{metricsUpdateInterval: defaultMetricsUpdateInterval}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
