package hashcrack

import (
	"runtime"
	"time"
)

const (
	MinBatchSize           = 64
	DefaultQueueFactor     = 4
	MinQueueFactor         = 2
	DefaultShutdownTimeout = 30 * time.Second
)

// Config tunes the engine. Zero values pick defaults and out-of-range values
// are clamped, never rejected.
type Config struct {
	// Workers is the pool size; defaults to the number of CPUs.
	Workers int
	// BatchSize is the number of candidates per task; chosen from the
	// dictionary size when unset.
	BatchSize int
	// QueueCapacity bounds the batches waiting for a worker.
	QueueCapacity int
	// ShutdownTimeout bounds the graceful pool drain after the run.
	ShutdownTimeout time.Duration
}

func (c Config) normalize(total int) Config {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	c.Workers = max(c.Workers, 1)
	if c.BatchSize <= 0 {
		c.BatchSize = ChooseBatchSize(total)
	}
	c.BatchSize = max(c.BatchSize, MinBatchSize)
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = DefaultQueueFactor * c.Workers
	}
	c.QueueCapacity = max(c.QueueCapacity, MinQueueFactor*c.Workers)
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	return c
}

// ChooseBatchSize grows the batch with the dictionary so large runs pay
// less per-task overhead.
func ChooseBatchSize(total int) int {
	switch {
	case total < 10_000:
		return 512
	case total < 100_000:
		return 1024
	case total < 1_000_000:
		return 2048
	default:
		return 4096
	}
}
