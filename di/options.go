package di

import "go.uber.org/zap"

type options struct {
	name    string
	log     *zap.Logger
	metrics *Metrics
}

// Option configures a Container.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMetrics records construction, resolution and teardown metrics.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithName names the container in logs. The default is its id.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}
