package sender

import (
	"sync"
	"time"
)

// Config retrieves the values used by a Sender. If these values are constant,
// NewConstantConfig can be used to create an implementation of the interface.
//
// The Sender calls Get before every TakeBatch, so a dynamic implementation can
// retune batching while the sender is running, for example to trade latency
// for throughput as load changes.
type Config interface {
	// Get returns the values for configuration.
	//
	// If the config values may be modified while the sender runs, Get
	// must properly handle concurrency issues.
	Get() ConfigValues
}

// ConfigValues controls how a Sender takes and flushes batches.
type ConfigValues struct {
	// MaxBatchSize is the maxBatchSize passed to TakeBatch. A batch is sent
	// as soon as this many items are buffered. Default: DefaultMaxBatchSize.
	MaxBatchSize int `json:"maxBatchSize" yaml:"maxBatchSize"`

	// MaxWait is the timeout passed to TakeBatch: the longest an item waits
	// for a batch to fill before a partial batch is sent. Default:
	// DefaultMaxWait.
	MaxWait time.Duration `json:"maxWait" yaml:"maxWait"`

	// FlushTimeout bounds each call to the FlushFunc. Zero means no bound
	// other than the context passed to Go.
	FlushTimeout time.Duration `json:"flushTimeout" yaml:"flushTimeout"`

	// FlushRate limits how many batches per second are flushed. While the
	// limiter holds the sender back, items keep accumulating, so batches get
	// larger. Zero means unlimited.
	FlushRate float64 `json:"flushRate" yaml:"flushRate"`

	// FlushBurst is the limiter burst. Values below 1 are treated as 1.
	FlushBurst int `json:"flushBurst" yaml:"flushBurst"`
}

// fixConfig fills in defaults so that the sender loop never busy-waits or
// asks TakeBatch for an invalid batch size.
func fixConfig(c ConfigValues) ConfigValues {
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = DefaultMaxBatchSize
	}
	if c.MaxWait <= 0 {
		c.MaxWait = DefaultMaxWait
	}
	if c.FlushTimeout < 0 {
		c.FlushTimeout = 0
	}
	if c.FlushRate < 0 {
		c.FlushRate = 0
	}
	if c.FlushBurst < 1 {
		c.FlushBurst = 1
	}
	return c
}

// NewConstantConfig returns a Config with constant values. If values is nil,
// the defaults are used.
func NewConstantConfig(values *ConfigValues) *ConstantConfig {
	if values == nil {
		return &ConstantConfig{}
	}

	return &ConstantConfig{
		values: *values,
	}
}

// ConstantConfig is a Config with constant values. Create one with
// NewConstantConfig.
type ConstantConfig struct {
	values ConfigValues
}

// Get implements the Config interface.
func (c *ConstantConfig) Get() ConfigValues {
	return c.values
}

// NewDynamicConfig creates a configuration that can be adjusted at runtime.
// If values is nil, the defaults are used.
func NewDynamicConfig(values *ConfigValues) *DynamicConfig {
	if values == nil {
		return &DynamicConfig{}
	}
	return &DynamicConfig{values: *values}
}

// DynamicConfig is a Config whose values can be changed while a Sender is
// running. It is safe for concurrent use.
type DynamicConfig struct {
	mu     sync.RWMutex
	values ConfigValues
}

// Get implements the Config interface.
func (c *DynamicConfig) Get() ConfigValues {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values
}

// UpdateBatchSize changes MaxBatchSize.
func (c *DynamicConfig) UpdateBatchSize(maxBatchSize int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values.MaxBatchSize = maxBatchSize
}

// UpdateTiming changes MaxWait and FlushTimeout.
func (c *DynamicConfig) UpdateTiming(maxWait, flushTimeout time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values.MaxWait = maxWait
	c.values.FlushTimeout = flushTimeout
}

// UpdateRate changes FlushRate and FlushBurst.
func (c *DynamicConfig) UpdateRate(perSecond float64, burst int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values.FlushRate = perSecond
	c.values.FlushBurst = burst
}

// Update replaces all configuration values at once.
func (c *DynamicConfig) Update(values ConfigValues) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = values
}
