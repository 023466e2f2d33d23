package cache

// metrics.go is a thin abstraction over Prometheus, generalising the
// teacher's pkg/metrics.go shard-labeled hit/miss/eviction/arena-bytes
// metrics to this cache's TTL/sweep model: hits, misses, sweep deletions,
// sweeps, live entry count, bucket capacity and whole-cache alloc KiB, all
// labeled by shard. Passing a nil *prometheus.Registry (the default) keeps the no-op
// sink so the hot path never pays for a metric update.
//
// © 2025 processcache authors. MIT License.

import (
    "strconv"

    "github.com/prometheus/client_golang/prometheus"
)

// metricsSink abstracts the concrete backend (Prometheus vs noop) away from
// the engine and the sweeper in cache.go.
type metricsSink interface {
    incHit(shard int)
    incMiss(shard int)
    observeSweep(shard int, stats SweepStats)
}

/* ---------------- no-op ---------------- */

type noopMetrics struct{}

func (noopMetrics) incHit(int)                     {}
func (noopMetrics) incMiss(int)                    {}
func (noopMetrics) observeSweep(int, SweepStats)   {}

/* ---------------- Prometheus ---------------- */

type promMetrics struct {
    name string

    hits      *prometheus.CounterVec
    misses    *prometheus.CounterVec
    deletions *prometheus.CounterVec
    sweeps    *prometheus.CounterVec
    liveCount *prometheus.GaugeVec
    bucketMax *prometheus.GaugeVec
    allocKB   *prometheus.GaugeVec
}

func newPromMetrics(name string, reg *prometheus.Registry) *promMetrics {
    label := []string{"shard"}
    ns := "processcache"

    pm := &promMetrics{
        name: name,
        hits: prometheus.NewCounterVec(prometheus.CounterOpts{
            Namespace:   ns,
            Name:        "hits_total",
            Help:        "Number of cache hits.",
            ConstLabels: prometheus.Labels{"cache": name},
        }, label),
        misses: prometheus.NewCounterVec(prometheus.CounterOpts{
            Namespace:   ns,
            Name:        "misses_total",
            Help:        "Number of cache misses (not found or expired).",
            ConstLabels: prometheus.Labels{"cache": name},
        }, label),
        deletions: prometheus.NewCounterVec(prometheus.CounterOpts{
            Namespace:   ns,
            Name:        "sweep_deleted_total",
            Help:        "Number of entries reclaimed by the expiry sweeper.",
            ConstLabels: prometheus.Labels{"cache": name},
        }, label),
        sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
            Namespace:   ns,
            Name:        "sweeps_total",
            Help:        "Number of Clean() calls that swept this shard.",
            ConstLabels: prometheus.Labels{"cache": name},
        }, label),
        liveCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
            Namespace:   ns,
            Name:        "live_entries",
            Help:        "Live entry count observed at the shard's last sweep.",
            ConstLabels: prometheus.Labels{"cache": name},
        }, label),
        bucketMax: prometheus.NewGaugeVec(prometheus.GaugeOpts{
            Namespace:   ns,
            Name:        "bucket_capacity",
            Help:        "Bucket-array capacity observed at the shard's last sweep.",
            ConstLabels: prometheus.Labels{"cache": name},
        }, label),
        allocKB: prometheus.NewGaugeVec(prometheus.GaugeOpts{
            Namespace:   ns,
            Name:        "alloc_kilobytes",
            Help:        "Whole-cache approximate memory, in KiB, at the shard's last sweep.",
            ConstLabels: prometheus.Labels{"cache": name},
        }, label),
    }

    reg.MustRegister(pm.hits, pm.misses, pm.deletions, pm.sweeps, pm.liveCount, pm.bucketMax, pm.allocKB)
    return pm
}

func (m *promMetrics) incHit(shard int)  { m.hits.WithLabelValues(strconv.Itoa(shard)).Inc() }
func (m *promMetrics) incMiss(shard int) { m.misses.WithLabelValues(strconv.Itoa(shard)).Inc() }

func (m *promMetrics) observeSweep(shard int, stats SweepStats) {
    label := strconv.Itoa(shard)
    m.sweeps.WithLabelValues(label).Inc()
    m.deletions.WithLabelValues(label).Add(float64(stats.SweepDeleted))
    m.liveCount.WithLabelValues(label).Set(float64(stats.LiveCount))
    m.bucketMax.WithLabelValues(label).Set(float64(stats.BucketMax))
    m.allocKB.WithLabelValues(label).Set(float64(stats.AllocMemoryKB))
}

func newMetricsSink(name string, reg *prometheus.Registry) metricsSink {
    if reg == nil {
        return noopMetrics{}
    }
    return newPromMetrics(name, reg)
}
