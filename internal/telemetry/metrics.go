package telemetry

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds per-Engine-instance Prometheus collectors. The teacher's own
// pack (prometheus/client_golang in the indirect closure) is wired here for
// observability only; nothing in the engine reads these back to make
// scheduling decisions.
type Metrics struct {
	BlocksCompiled   prometheus.Counter
	BlocksEvicted    prometheus.Counter
	CacheSize        prometheus.Gauge
	RSBHits          prometheus.Counter
	RSBMisses        prometheus.Counter
	FastDispatchHits prometheus.Counter
	DispatcherExits  prometheus.Counter
	Invalidations    prometheus.Counter
	Generation       prometheus.Gauge
}

// NewMetrics constructs a fresh, unregistered set of collectors labeled with
// instanceID so multiple JIT instances in one process don't collide on
// registration.
func NewMetrics(instanceID string) *Metrics {
	labels := prometheus.Labels{"instance": instanceID}
	mk := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "a32jit",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
	}
	mkGauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "a32jit",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
	}
	return &Metrics{
		BlocksCompiled:   mk("blocks_compiled_total", "blocks translated and emitted"),
		BlocksEvicted:    mk("blocks_evicted_total", "blocks removed by invalidation or reset"),
		CacheSize:        mkGauge("cache_size", "live emitted blocks currently cached"),
		RSBHits:          mk("rsb_hits_total", "return-stack-buffer predictions taken"),
		RSBMisses:        mk("rsb_misses_total", "return-stack-buffer predictions missed"),
		FastDispatchHits: mk("fast_dispatch_hits_total", "fast-dispatch table hits"),
		DispatcherExits:  mk("dispatcher_exits_total", "times run() returned to the caller"),
		Invalidations:    mk("invalidations_total", "invalidate_range/invalidate_all calls processed"),
		Generation:       mkGauge("invalidation_generation", "current invalidation generation counter"),
	}
}

// Collectors returns every collector so the embedder can register them with
// its own prometheus.Registry.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.BlocksCompiled, m.BlocksEvicted, m.CacheSize, m.RSBHits, m.RSBMisses,
		m.FastDispatchHits, m.DispatcherExits, m.Invalidations, m.Generation,
	}
}
