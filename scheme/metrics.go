package scheme

import "github.com/prometheus/client_golang/prometheus"

// metrics bundles the Prometheus collectors a Scheme reports against.
// All are created unregistered (prometheus.NewXxx, not promauto) so a
// caller can register them with whatever registry it uses, or ignore
// them entirely by passing WithMetricsNamespace("").
type metrics struct {
	blocksTotal           prometheus.Gauge
	enableFailuresTotal   prometheus.Counter
	disableFailuresTotal  prometheus.Counter
	conflictsTotal        prometheus.Gauge
	tickDuration          prometheus.Histogram
	tickBlockFailuresTotal prometheus.Counter
}

// newMetrics builds the collector set under namespace. NewScheme builds
// one under "conman" by default; WithMetricsNamespace("") leaves
// s.metrics nil instead, and the scheme nil-checks s.metrics before
// every use.
func newMetrics(namespace string) *metrics {
	return &metrics{
		blocksTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "blocks_total",
			Help:      "Number of blocks currently registered with the scheme.",
		}),
		enableFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enable_failures_total",
			Help:      "Number of EnableBlock calls whose peer Start hook reported failure.",
		}),
		disableFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disable_failures_total",
			Help:      "Number of DisableBlock calls whose peer Stop hook reported failure.",
		}),
		conflictsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "conflicts_total",
			Help:      "Number of undirected edges currently in the resource conflict graph.",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Wall-clock duration of one Update call across the whole execution order.",
			Buckets:   prometheus.DefBuckets,
		}),
		tickBlockFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tick_block_failures_total",
			Help:      "Number of per-block Hook.Update errors observed across all ticks.",
		}),
	}
}

// Collectors returns every collector in the set, for callers that want
// to register them with a prometheus.Registerer themselves.
func (m *metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.blocksTotal,
		m.enableFailuresTotal,
		m.disableFailuresTotal,
		m.conflictsTotal,
		m.tickDuration,
		m.tickBlockFailuresTotal,
	}
}
