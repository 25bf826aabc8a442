package primary

import (
	"context"
	"time"
)

// QueueScheduler defines the primary port for the recurring queue drain.
type QueueScheduler interface {
	// Start arms the recurring timer. Starting a running scheduler is a no-op.
	Start() error

	// Stop disarms the timer. In-flight drains finish naturally.
	Stop() error

	// GetStatus returns the current configuration and state.
	GetStatus() SchedulerStatus

	// ProcessQueueManually drains the queue synchronously, outside the cadence.
	ProcessQueueManually(ctx context.Context) QueueProcessResult
}

// QueueProcessResult is the outcome of one queue drain.
type QueueProcessResult struct {
	Processed int
	Remaining int
	Error     string // Empty unless the drain failed or was skipped
}

// SchedulerStatus is a snapshot of scheduler state.
type SchedulerStatus struct {
	IsRunning      bool
	Cadence        time.Duration
	MaxRetries     int
	TickInProgress bool
	TickCount      int
	SkippedTicks   int
	TotalProcessed int
	LastRunAt      time.Time // zero if never run
	LastResult     *QueueProcessResult
}
