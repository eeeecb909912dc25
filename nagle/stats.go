package nagle

import (
	"sync"
	"sync/atomic"
	"time"
)

// StatsCollector records what happens inside a Collection. Implementations
// can keep counters in memory (BasicStatsCollector) or export them
// (PrometheusStats). The StatsCollector is optional - if not provided, no
// statistics are collected.
//
// RecordAdd and RecordBatch are called while the collection's lock is held, so
// implementations must not call back into the collection.
type StatsCollector interface {
	// RecordAdd is called after an item is appended. buffered is the
	// buffer length after the append.
	RecordAdd(buffered int)

	// RecordBlocked is called when a writer has to wait for capacity.
	RecordBlocked()

	// RecordRejected is called when a write is refused because the
	// collection is in state.
	RecordRejected(state State)

	// RecordBatch is called when TakeBatch releases a batch. buffered is the
	// buffer length after the removal and wait is how long the caller waited.
	RecordBatch(size, buffered int, reason BatchReason, wait time.Duration)

	// GetStats returns a snapshot of the current statistics.
	GetStats() Stats
}

// Stats holds aggregated statistics about a Collection.
type Stats struct {
	// ItemsAdded is the total number of items appended.
	ItemsAdded uint64

	// WritersBlocked is the number of writes that had to wait for capacity.
	WritersBlocked uint64

	// WritesRejected is the number of writes refused after CompleteAdding or Close.
	WritesRejected uint64

	// BatchesTaken is the number of TakeBatch calls that returned without error,
	// including empty batches.
	BatchesTaken uint64

	// ItemsTaken is the total number of items removed by TakeBatch.
	ItemsTaken uint64

	// FullBatches, TimeoutBatches, CanceledBatches and ClosedBatches break
	// BatchesTaken down by BatchReason.
	FullBatches     uint64
	TimeoutBatches  uint64
	CanceledBatches uint64
	ClosedBatches   uint64

	// MinBatchSize and MaxBatchSize are the extremes over non-empty batches.
	MinBatchSize int
	MaxBatchSize int

	// Buffered is the buffer length at the last update.
	Buffered int

	// TotalWait is the cumulative time TakeBatch callers spent waiting.
	TotalWait time.Duration

	// MaxWait is the longest single TakeBatch wait.
	MaxWait time.Duration

	// StartTime is when statistics collection began.
	StartTime time.Time

	// LastUpdateTime is when statistics were last updated.
	LastUpdateTime time.Time
}

// AverageBatchSize returns the mean number of items per batch.
// Returns 0 if no batches have been taken.
func (s *Stats) AverageBatchSize() float64 {
	if s.BatchesTaken == 0 {
		return 0
	}
	return float64(s.ItemsTaken) / float64(s.BatchesTaken)
}

// AverageWait returns the mean TakeBatch wait.
func (s *Stats) AverageWait() time.Duration {
	if s.BatchesTaken == 0 {
		return 0
	}
	return s.TotalWait / time.Duration(s.BatchesTaken)
}

// FullRatio returns the fraction of batches released because they were full,
// between 0 and 1. A low ratio under load means the timeout, not the batch
// size, is deciding when batches go out.
func (s *Stats) FullRatio() float64 {
	if s.BatchesTaken == 0 {
		return 0
	}
	return float64(s.FullBatches) / float64(s.BatchesTaken)
}

// NoOpStatsCollector discards everything. It is the default stats collector.
type NoOpStatsCollector struct{}

// RecordAdd implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordAdd(buffered int) {}

// RecordBlocked implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordBlocked() {}

// RecordRejected implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordRejected(state State) {}

// RecordBatch implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordBatch(size, buffered int, reason BatchReason, wait time.Duration) {
}

// GetStats implements the StatsCollector interface.
func (n *NoOpStatsCollector) GetStats() Stats {
	return Stats{}
}

// BasicStatsCollector is an in-memory StatsCollector. All operations are
// thread-safe.
type BasicStatsCollector struct {
	mu    sync.RWMutex
	stats Stats

	// Atomic counters for lock-free updates
	itemsAdded     uint64
	writersBlocked uint64
	writesRejected uint64
}

// NewBasicStatsCollector creates a new BasicStatsCollector.
func NewBasicStatsCollector() *BasicStatsCollector {
	now := time.Now()
	return &BasicStatsCollector{
		stats: Stats{
			StartTime:      now,
			LastUpdateTime: now,
		},
	}
}

// RecordAdd implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordAdd(buffered int) {
	atomic.AddUint64(&b.itemsAdded, 1)

	b.mu.Lock()
	b.stats.Buffered = buffered
	b.stats.LastUpdateTime = time.Now()
	b.mu.Unlock()
}

// RecordBlocked implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordBlocked() {
	atomic.AddUint64(&b.writersBlocked, 1)
}

// RecordRejected implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordRejected(state State) {
	atomic.AddUint64(&b.writesRejected, 1)
}

// RecordBatch implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordBatch(size, buffered int, reason BatchReason, wait time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := &b.stats
	s.LastUpdateTime = time.Now()
	s.BatchesTaken++
	s.ItemsTaken += uint64(size)
	s.Buffered = buffered
	s.TotalWait += wait
	if wait > s.MaxWait {
		s.MaxWait = wait
	}

	switch reason {
	case ReasonFull:
		s.FullBatches++
	case ReasonTimeout:
		s.TimeoutBatches++
	case ReasonCanceled:
		s.CanceledBatches++
	case ReasonClosed:
		s.ClosedBatches++
	}

	if size == 0 {
		return
	}
	if size < s.MinBatchSize || s.MinBatchSize == 0 {
		s.MinBatchSize = size
	}
	if size > s.MaxBatchSize {
		s.MaxBatchSize = size
	}
}

// GetStats implements the StatsCollector interface.
// It returns a snapshot of the current statistics.
func (b *BasicStatsCollector) GetStats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	stats := b.stats
	stats.ItemsAdded = atomic.LoadUint64(&b.itemsAdded)
	stats.WritersBlocked = atomic.LoadUint64(&b.writersBlocked)
	stats.WritesRejected = atomic.LoadUint64(&b.writesRejected)
	return stats
}
