package sender

import "time"

const (
	// DefaultMaxBatchSize is used when ConfigValues.MaxBatchSize is not positive.
	DefaultMaxBatchSize = 100

	// DefaultMaxWait is used when ConfigValues.MaxWait is not positive.
	DefaultMaxWait = 100 * time.Millisecond

	// DefaultCapacity is the collection capacity used by DefaultFileConfig.
	DefaultCapacity = 1000

	// DefaultErrorBufferSize is the buffer size of the channel returned by Go.
	DefaultErrorBufferSize = 100
)
