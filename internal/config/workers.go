package config

import (
	"fmt"
	"runtime"
	"time"

	"cce/internal/cerrors"
)

// WorkerConfig governs the Background Worker pool (spec §4.12).
type WorkerConfig struct {
	WorkerCount    int           `yaml:"worker_count"` // 0 = use default formula
	QueueSoftBound int           `yaml:"queue_soft_bound"`
	DefaultTimeout time.Duration `yaml:"default_timeout"`
}

// DefaultWorkerConfig returns defaults; WorkerCount 0 means the pool
// computes max(2, min(8, ceil(0.75*cores))) at construction.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		WorkerCount:    0,
		QueueSoftBound: 256,
		DefaultTimeout: 30 * time.Second,
	}
}

// ResolvedWorkerCount applies the spec's default-pool-size formula when
// WorkerCount is unset.
func (c WorkerConfig) ResolvedWorkerCount() int {
	if c.WorkerCount > 0 {
		return c.WorkerCount
	}
	cores := runtime.NumCPU()
	n := (3*cores + 3) / 4 // ceil(0.75 * cores)
	if n < 2 {
		n = 2
	}
	if n > 8 {
		n = 8
	}
	return n
}

func (c WorkerConfig) Validate() error {
	if c.DefaultTimeout <= 0 {
		return cerrors.New(cerrors.InputInvalid, "WorkerConfig.Validate", fmt.Errorf("default_timeout must be > 0"))
	}
	if c.QueueSoftBound <= 0 {
		return cerrors.New(cerrors.InputInvalid, "WorkerConfig.Validate", fmt.Errorf("queue_soft_bound must be > 0"))
	}
	return nil
}
