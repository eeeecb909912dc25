package nagle

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusStats is a StatsCollector that exports collection activity as
// Prometheus metrics. It keeps a BasicStatsCollector alongside, so GetStats
// works the same as without metrics.
type PrometheusStats struct {
	basic *BasicStatsCollector

	added     prometheus.Counter
	blocked   prometheus.Counter
	rejected  *prometheus.CounterVec
	batches   *prometheus.CounterVec
	taken     prometheus.Counter
	batchSize prometheus.Histogram
	wait      prometheus.Histogram
	buffered  prometheus.Gauge
}

// NewPrometheusStats creates the metrics and registers them with reg. name is
// attached to every metric as the "collection" label so that several
// collections can share a registry.
func NewPrometheusStats(reg prometheus.Registerer, name string) (*PrometheusStats, error) {
	if reg == nil {
		return nil, &ArgumentError{Name: "registerer", Value: nil}
	}
	if name == "" {
		return nil, &ArgumentError{Name: "name", Value: name}
	}

	labels := prometheus.Labels{"collection": name}
	p := &PrometheusStats{
		basic: NewBasicStatsCollector(),
		added: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "nagle",
			Name:        "items_added_total",
			ConstLabels: labels,
			Help:        "Total number of items appended to the collection",
		}),
		blocked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "nagle",
			Name:        "writers_blocked_total",
			ConstLabels: labels,
			Help:        "Total number of writes that waited for capacity",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "nagle",
			Name:        "writes_rejected_total",
			ConstLabels: labels,
			Help:        "Total number of writes refused, by collection state",
		}, []string{"state"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "nagle",
			Name:        "batches_total",
			ConstLabels: labels,
			Help:        "Total number of batches released, by reason",
		}, []string{"reason"}),
		taken: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "nagle",
			Name:        "items_taken_total",
			ConstLabels: labels,
			Help:        "Total number of items removed in batches",
		}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "nagle",
			Name:        "batch_size",
			ConstLabels: labels,
			Help:        "Number of items per released batch",
			Buckets:     prometheus.ExponentialBuckets(1, 2, 12),
		}),
		wait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "nagle",
			Name:        "batch_wait_seconds",
			ConstLabels: labels,
			Help:        "Time TakeBatch callers waited for a batch",
			Buckets:     prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		buffered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "nagle",
			Name:        "buffered_items",
			ConstLabels: labels,
			Help:        "Current number of buffered items",
		}),
	}

	for _, c := range []prometheus.Collector{
		p.added, p.blocked, p.rejected, p.batches, p.taken, p.batchSize, p.wait, p.buffered,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// RecordAdd implements the StatsCollector interface.
func (p *PrometheusStats) RecordAdd(buffered int) {
	p.basic.RecordAdd(buffered)
	p.added.Inc()
	p.buffered.Set(float64(buffered))
}

// RecordBlocked implements the StatsCollector interface.
func (p *PrometheusStats) RecordBlocked() {
	p.basic.RecordBlocked()
	p.blocked.Inc()
}

// RecordRejected implements the StatsCollector interface.
func (p *PrometheusStats) RecordRejected(state State) {
	p.basic.RecordRejected(state)
	p.rejected.WithLabelValues(state.String()).Inc()
}

// RecordBatch implements the StatsCollector interface.
func (p *PrometheusStats) RecordBatch(size, buffered int, reason BatchReason, wait time.Duration) {
	p.basic.RecordBatch(size, buffered, reason, wait)
	p.batches.WithLabelValues(reason.String()).Inc()
	p.taken.Add(float64(size))
	p.batchSize.Observe(float64(size))
	p.wait.Observe(wait.Seconds())
	p.buffered.Set(float64(buffered))
}

// GetStats implements the StatsCollector interface.
func (p *PrometheusStats) GetStats() Stats {
	return p.basic.GetStats()
}
