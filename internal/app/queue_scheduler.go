package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/slawatch/internal/core/scheduler"
	"github.com/example/slawatch/internal/ports/primary"
	"github.com/example/slawatch/internal/ports/secondary"
)

// Default queue scheduler settings.
const (
	DefaultQueueCadence = 30 * time.Second
	DefaultMaxRetries   = 3
)

// QueueSchedulerOptions configures a QueueSchedulerImpl.
type QueueSchedulerOptions struct {
	Cadence    time.Duration
	MaxRetries int
	Logger     logrus.FieldLogger
	Clock      func() time.Time
}

// QueueSchedulerImpl implements the QueueScheduler interface. It owns one
// ticker while running and allows at most one queue drain in flight.
type QueueSchedulerImpl struct {
	resolver   secondary.AssignmentResolver
	cadence    time.Duration
	maxRetries int
	logger     logrus.FieldLogger
	clock      func() time.Time

	mu     sync.Mutex
	state  scheduler.State
	ticker *time.Ticker
	done   chan struct{}

	inFlight atomic.Bool
	wg       sync.WaitGroup

	// Stats, guarded by mu.
	tickCount      int
	skippedTicks   int
	totalProcessed int
	lastRunAt      time.Time
	lastResult     *primary.QueueProcessResult
}

// NewQueueScheduler creates a stopped QueueScheduler draining through resolver.
func NewQueueScheduler(resolver secondary.AssignmentResolver, opts QueueSchedulerOptions) *QueueSchedulerImpl {
	cadence := opts.Cadence
	if cadence <= 0 {
		cadence = DefaultQueueCadence
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	return &QueueSchedulerImpl{
		resolver:   resolver,
		cadence:    cadence,
		maxRetries: maxRetries,
		logger:     logger.WithField("component", "queue_scheduler"),
		clock:      clock,
		state:      scheduler.InitialState(),
	}
}

// Start arms the recurring timer. Starting a running scheduler logs a warning
// and leaves the existing timer in place.
func (s *QueueSchedulerImpl) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tr := scheduler.Start(s.state)
	if tr.NoOp {
		s.logger.WithError(primary.ErrAlreadyRunning).Warn(tr.Warning)
		return nil
	}

	s.state = tr.NewState
	s.ticker = time.NewTicker(s.cadence)
	s.done = make(chan struct{})

	s.wg.Add(1)
	go s.loop(s.ticker, s.done)

	s.logger.WithField("cadence", s.cadence.String()).Info("Queue scheduler started")
	return nil
}

// Stop disarms the timer so no further ticks fire. A drain already in
// flight is left to finish.
func (s *QueueSchedulerImpl) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tr := scheduler.Stop(s.state)
	if tr.NoOp {
		s.logger.WithError(primary.ErrAlreadyStopped).Warn(tr.Warning)
		return nil
	}

	s.state = tr.NewState
	s.ticker.Stop()
	close(s.done)
	s.ticker = nil
	s.done = nil

	s.logger.Info("Queue scheduler stopped")
	return nil
}

// Wait blocks until the timer loop has exited and in-flight drains have finished.
func (s *QueueSchedulerImpl) Wait() {
	s.wg.Wait()
}

// GetStatus returns a snapshot of configuration and state.
func (s *QueueSchedulerImpl) GetStatus() primary.SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := primary.SchedulerStatus{
		IsRunning:      s.state == scheduler.StateRunning,
		Cadence:        s.cadence,
		MaxRetries:     s.maxRetries,
		TickInProgress: s.inFlight.Load(),
		TickCount:      s.tickCount,
		SkippedTicks:   s.skippedTicks,
		TotalProcessed: s.totalProcessed,
		LastRunAt:      s.lastRunAt,
	}
	if s.lastResult != nil {
		last := *s.lastResult
		status.LastResult = &last
	}
	return status
}

// ProcessQueueManually drains the queue synchronously. If a drain is already
// in flight the call is skipped and the result carries the reason.
func (s *QueueSchedulerImpl) ProcessQueueManually(ctx context.Context) primary.QueueProcessResult {
	decision := scheduler.CanBeginTick(scheduler.SourceManual, !s.inFlight.CompareAndSwap(false, true))
	if !decision.Run {
		s.recordSkip(decision.Reason)
		return primary.QueueProcessResult{Error: decision.Reason}
	}
	defer s.inFlight.Store(false)

	return s.processQueue(ctx, scheduler.SourceManual)
}

// loop fires a drain on every tick until done is closed.
func (s *QueueSchedulerImpl) loop(ticker *time.Ticker, done <-chan struct{}) {
	defer s.wg.Done()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.fire()
		}
	}
}

// fire starts a timer-driven drain on its own goroutine so the timer stays armed.
// A tick received just before Stop took the lock is dropped.
func (s *QueueSchedulerImpl) fire() {
	s.mu.Lock()
	running := s.state == scheduler.StateRunning
	s.mu.Unlock()
	if !running {
		return
	}

	decision := scheduler.CanBeginTick(scheduler.SourceTimer, !s.inFlight.CompareAndSwap(false, true))
	if !decision.Run {
		s.recordSkip(decision.Reason)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.inFlight.Store(false)
		s.processQueue(context.Background(), scheduler.SourceTimer)
	}()
}

// processQueue invokes the resolver and converts any failure into a result.
// It never panics and never returns an error.
func (s *QueueSchedulerImpl) processQueue(ctx context.Context, source scheduler.TickSource) primary.QueueProcessResult {
	log := s.logger.WithField("source", string(source))

	res, err := s.invokeResolver(ctx)

	var result primary.QueueProcessResult
	switch {
	case err != nil:
		result = primary.QueueProcessResult{Processed: 0, Error: err.Error()}
		log.WithError(err).Error("Queue processing failed")
	case res != nil:
		result = primary.QueueProcessResult{
			Processed: max(res.Processed, 0),
			Remaining: max(res.Remaining, 0),
		}
	}

	if result.Processed > 0 {
		log.WithFields(logrus.Fields{
			"processed": result.Processed,
			"remaining": result.Remaining,
		}).Infof("Processed %d queue items, %d remaining", result.Processed, result.Remaining)
	}

	s.mu.Lock()
	s.tickCount++
	s.totalProcessed += result.Processed
	s.lastRunAt = s.clock()
	last := result
	s.lastResult = &last
	s.mu.Unlock()

	return result
}

func (s *QueueSchedulerImpl) invokeResolver(ctx context.Context) (res *secondary.ResolverResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("assignment resolver panicked: %v", r)
		}
	}()
	return s.resolver.ProcessQueue(ctx)
}

func (s *QueueSchedulerImpl) recordSkip(reason string) {
	s.mu.Lock()
	s.skippedTicks++
	s.mu.Unlock()
	s.logger.Warn(reason)
}

// Ensure QueueSchedulerImpl implements the interface
var _ primary.QueueScheduler = (*QueueSchedulerImpl)(nil)
