package di

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors a container reports to. A nil
// *Metrics records nothing. One Metrics value can be shared by a container
// and its children.
type Metrics struct {
	constructions    *prometheus.CounterVec
	resolveSeconds   *prometheus.HistogramVec
	teardownFailures *prometheus.CounterVec
	live             prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		constructions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "compo",
			Subsystem: "container",
			Name:      "constructions_total",
			Help:      "Component instances constructed.",
		}, []string{"component"}),
		resolveSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "compo",
			Subsystem: "container",
			Name:      "resolve_duration_seconds",
			Help:      "Time spent in top-level resolution requests.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"contract"}),
		teardownFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "compo",
			Subsystem: "container",
			Name:      "teardown_failures_total",
			Help:      "Teardown hooks that returned an error or panicked.",
		}, []string{"component"}),
		live: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "compo",
			Subsystem: "container",
			Name:      "live_instances",
			Help:      "Constructed instances not yet disposed.",
		}),
	}

	for _, col := range []prometheus.Collector{m.constructions, m.resolveSeconds, m.teardownFailures, m.live} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) constructed(component string) {
	if m == nil {
		return
	}
	m.constructions.WithLabelValues(component).Inc()
	m.live.Inc()
}

func (m *Metrics) resolved(contract string, start time.Time) {
	if m == nil {
		return
	}
	m.resolveSeconds.WithLabelValues(contract).Observe(time.Since(start).Seconds())
}

func (m *Metrics) tornDown(component string, err error) {
	if m == nil {
		return
	}
	m.live.Dec()
	if err != nil {
		m.teardownFailures.WithLabelValues(component).Inc()
	}
}
