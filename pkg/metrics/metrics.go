// Package metrics exposes Reservoir pool utilization as Prometheus metrics.
//
// The package stays on the diagnostic side of the pool contract: it only
// consumes the read-only statistics operations and never mutates pool state.
// Pools are exported by registering anything that implements StatsSource
// with a PoolCollector, which computes fresh values on every scrape.
//
// # Basic Usage
//
//	p := pool.New(pool.Config[Body]{Name: "bodies", ThreadSafe: true})
//	collector := metrics.NewPoolCollector(p)
//	prometheus.MustRegister(collector)
//
// Workload-level counters for the bench harness are registered globally
// through promauto and recorded with the package helpers.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ajitpratap0/reservoir/pkg/pool"
)

// StatsSource is the read-only view a pool exposes to monitoring. Both
// pool.Pool[T] and pool.SlabPool satisfy it.
type StatsSource interface {
	Name() string
	Stats() pool.Stats
	EstimateMemoryUse() uint64
}

// Workload metrics recorded by the bench harness.
var (
	// WorkloadIterations counts completed acquire/release iterations per
	// workload run.
	WorkloadIterations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservoir_workload_iterations_total",
			Help: "Total acquire/release iterations completed by workload",
		},
		[]string{"workload"},
	)

	// WorkloadErrors counts failed releases observed by a workload.
	WorkloadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservoir_workload_errors_total",
			Help: "Total errors observed by workload",
		},
		[]string{"workload"},
	)

	// WorkloadDuration tracks wall-clock duration of workload runs.
	WorkloadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reservoir_workload_duration_seconds",
			Help:    "Wall-clock duration of workload runs",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"workload"},
	)
)

// PoolCollector implements prometheus.Collector over a set of registered
// pools. Values are read at scrape time, so a scrape always reflects the
// pool's current consistent snapshot.
type PoolCollector struct {
	mu      sync.RWMutex
	sources []StatsSource

	allocated   *prometheus.Desc
	free        *prometheus.Desc
	inUse       *prometheus.Desc
	acquires    *prometheus.Desc
	releases    *prometheus.Desc
	reuses      *prometheus.Desc
	reuseRate   *prometheus.Desc
	memoryBytes *prometheus.Desc
}

// NewPoolCollector creates a collector for the given pools. More pools can
// be added later with Register.
func NewPoolCollector(sources ...StatsSource) *PoolCollector {
	labels := []string{"pool"}
	return &PoolCollector{
		sources: sources,
		allocated: prometheus.NewDesc(
			"reservoir_pool_allocated",
			"Objects the pool has constructed and still owns",
			labels, nil),
		free: prometheus.NewDesc(
			"reservoir_pool_free",
			"Objects currently available for reuse",
			labels, nil),
		inUse: prometheus.NewDesc(
			"reservoir_pool_in_use",
			"Objects currently on loan",
			labels, nil),
		acquires: prometheus.NewDesc(
			"reservoir_pool_acquires_total",
			"Total acquire operations",
			labels, nil),
		releases: prometheus.NewDesc(
			"reservoir_pool_releases_total",
			"Total successful release operations",
			labels, nil),
		reuses: prometheus.NewDesc(
			"reservoir_pool_reuses_total",
			"Acquires satisfied from the free list",
			labels, nil),
		reuseRate: prometheus.NewDesc(
			"reservoir_pool_reuse_rate",
			"Fraction of acquires satisfied by reuse, in [0,1]",
			labels, nil),
		memoryBytes: prometheus.NewDesc(
			"reservoir_pool_memory_bytes",
			"Estimated bytes owned by the pool including bookkeeping",
			labels, nil),
	}
}

// Register adds a pool to the collector. Safe for concurrent use with
// scrapes.
func (c *PoolCollector) Register(src StatsSource) {
	c.mu.Lock()
	c.sources = append(c.sources, src)
	c.mu.Unlock()
}

// Describe implements prometheus.Collector.
func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.allocated
	ch <- c.free
	ch <- c.inUse
	ch <- c.acquires
	ch <- c.releases
	ch <- c.reuses
	ch <- c.reuseRate
	ch <- c.memoryBytes
}

// Collect implements prometheus.Collector.
func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	sources := make([]StatsSource, len(c.sources))
	copy(sources, c.sources)
	c.mu.RUnlock()

	for _, src := range sources {
		name := src.Name()
		s := src.Stats()

		ch <- prometheus.MustNewConstMetric(c.allocated,
			prometheus.GaugeValue, float64(s.Allocated), name)
		ch <- prometheus.MustNewConstMetric(c.free,
			prometheus.GaugeValue, float64(s.Free), name)
		ch <- prometheus.MustNewConstMetric(c.inUse,
			prometheus.GaugeValue, float64(s.InUse), name)
		ch <- prometheus.MustNewConstMetric(c.acquires,
			prometheus.CounterValue, float64(s.TotalAcquires), name)
		ch <- prometheus.MustNewConstMetric(c.releases,
			prometheus.CounterValue, float64(s.TotalReleases), name)
		ch <- prometheus.MustNewConstMetric(c.reuses,
			prometheus.CounterValue, float64(s.ReuseCount), name)
		ch <- prometheus.MustNewConstMetric(c.reuseRate,
			prometheus.GaugeValue, s.ReuseRate, name)
		ch <- prometheus.MustNewConstMetric(c.memoryBytes,
			prometheus.GaugeValue, float64(src.EstimateMemoryUse()), name)
	}
}
