package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/example/slawatch/internal/ports/primary"
)

// QueueAdapter is a thin adapter that translates CLI operations to QueueScheduler calls.
type QueueAdapter struct {
	scheduler primary.QueueScheduler
	out       io.Writer
}

// NewQueueAdapter creates a new QueueAdapter with the given scheduler.
func NewQueueAdapter(scheduler primary.QueueScheduler, out io.Writer) *QueueAdapter {
	return &QueueAdapter{
		scheduler: scheduler,
		out:       out,
	}
}

// Drain runs one synchronous queue drain. A failed drain is printed and
// returned as an error so the command exits non-zero.
func (a *QueueAdapter) Drain(ctx context.Context) error {
	result := a.scheduler.ProcessQueueManually(ctx)
	if result.Error != "" {
		fmt.Fprintf(a.out, "%s queue drain failed: %s\n", color.New(color.FgRed).Sprint("✗"), result.Error)
		return fmt.Errorf("queue drain failed: %s", result.Error)
	}

	fmt.Fprintf(a.out, "✓ Processed %d queue items, %d remaining\n", result.Processed, result.Remaining)
	return nil
}

// Status prints the scheduler status.
func (a *QueueAdapter) Status() primary.SchedulerStatus {
	status := a.scheduler.GetStatus()

	state := color.New(color.FgYellow).Sprint("stopped")
	if status.IsRunning {
		state = color.New(color.FgGreen).Sprint("running")
	}
	fmt.Fprintf(a.out, "Scheduler:   %s\n", state)
	fmt.Fprintf(a.out, "Cadence:     %s\n", status.Cadence)
	fmt.Fprintf(a.out, "Max retries: %d\n", status.MaxRetries)
	fmt.Fprintf(a.out, "In progress: %t\n", status.TickInProgress)
	fmt.Fprintf(a.out, "Ticks:       %d (skipped %d)\n", status.TickCount, status.SkippedTicks)
	fmt.Fprintf(a.out, "Processed:   %d\n", status.TotalProcessed)
	if !status.LastRunAt.IsZero() {
		fmt.Fprintf(a.out, "Last run:    %s\n", status.LastRunAt.Format(time.RFC3339))
	}
	if last := status.LastResult; last != nil {
		if last.Error != "" {
			fmt.Fprintf(a.out, "Last result: %s %s\n", color.New(color.FgRed).Sprint("error"), last.Error)
		} else {
			fmt.Fprintf(a.out, "Last result: %d processed, %d remaining\n", last.Processed, last.Remaining)
		}
	}
	return status
}
