package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/brodielang/streamcache/cache"
)

// Adapter implements cache.Metrics and exports Prometheus counters/gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits            prometheus.Counter
	misses          prometheus.Counter
	evictionsTotal  prometheus.Counter
	evictionBatches prometheus.Counter
	heapSize        prometheus.Gauge
	earlierExpiry   prometheus.Counter
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "hits_total",
			Help:        "Cache hits",
			ConstLabels: constLabels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "misses_total",
			Help:        "Cache misses",
			ConstLabels: constLabels,
		}),
		evictionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "evictions_total",
			Help:        "Keys evicted on TTL expiry",
			ConstLabels: constLabels,
		}),
		evictionBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "eviction_sweeps_total",
			Help:        "Eviction sweeps that removed at least one key",
			ConstLabels: constLabels,
		}),
		heapSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "expiry_heap_size",
			Help:        "Current size of a shard's expiry heap",
			ConstLabels: constLabels,
		}),
		earlierExpiry: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "wakeups_total",
			Help:        "Eviction worker wakeups triggered by an earlier-scheduled SET",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.hits, a.misses, a.evictionsTotal, a.evictionBatches, a.heapSize, a.earlierExpiry)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// EvictionBatch records one eviction sweep removing n keys.
func (a *Adapter) EvictionBatch(n int) {
	a.evictionBatches.Inc()
	a.evictionsTotal.Add(float64(n))
}

// HeapSize updates the expiry heap size gauge.
func (a *Adapter) HeapSize(n int) { a.heapSize.Set(float64(n)) }

// NotifyEarlierExpiry increments the wakeup counter.
func (a *Adapter) NotifyEarlierExpiry() { a.earlierExpiry.Inc() }

// Compile-time check: ensure Adapter implements cache.Metrics.
var _ cache.Metrics = (*Adapter)(nil)
