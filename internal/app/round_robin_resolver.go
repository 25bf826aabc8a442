package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/example/slawatch/internal/ports/secondary"
)

// RoundRobinResolver is the default AssignmentResolver. It hands pending queue
// items to active assignees of one role in rotation.
type RoundRobinResolver struct {
	queueRepo  secondary.AssignmentQueueRepository
	role       string
	batchSize  int
	maxRetries int
	logger     logrus.FieldLogger

	mu   sync.Mutex
	next int
}

// NewRoundRobinResolver creates a resolver assigning up to batchSize items per call.
// Items failing maxRetries times are parked as failed.
func NewRoundRobinResolver(queueRepo secondary.AssignmentQueueRepository, role string, batchSize, maxRetries int, logger logrus.FieldLogger) *RoundRobinResolver {
	if batchSize <= 0 {
		batchSize = 10
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RoundRobinResolver{
		queueRepo:  queueRepo,
		role:       role,
		batchSize:  batchSize,
		maxRetries: maxRetries,
		logger:     logger.WithField("component", "round_robin_resolver"),
	}
}

// ProcessQueue assigns one batch of pending items and reports counts.
func (r *RoundRobinResolver) ProcessQueue(ctx context.Context) (*secondary.ResolverResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.queueRepo.ListPending(ctx, r.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending items: %w", err)
	}
	if len(items) == 0 {
		return &secondary.ResolverResult{}, nil
	}

	assignees, err := r.queueRepo.ListActiveAssignees(ctx, r.role)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignees: %w", err)
	}
	if len(assignees) == 0 {
		return nil, fmt.Errorf("no active assignees with role %s for %d pending items", r.role, len(items))
	}

	processed := 0
	for _, item := range items {
		assignee := assignees[r.next%len(assignees)]
		r.next++

		if err := r.queueRepo.Assign(ctx, item.ID, assignee.ID); err != nil {
			r.logger.WithField("item_id", item.ID).WithError(err).Warn("Assignment failed")
			if ferr := r.queueRepo.RecordFailure(ctx, item.ID, err.Error(), r.maxRetries); ferr != nil {
				r.logger.WithField("item_id", item.ID).WithError(ferr).Error("Failed to record assignment failure")
			}
			continue
		}
		processed++
	}

	remaining, err := r.queueRepo.CountPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending items: %w", err)
	}

	return &secondary.ResolverResult{Processed: processed, Remaining: remaining}, nil
}

// Ensure RoundRobinResolver implements the interface
var _ secondary.AssignmentResolver = (*RoundRobinResolver)(nil)
