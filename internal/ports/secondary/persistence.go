// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"time"
)

// CandidateRepository defines the secondary port for querying entities that
// may be in SLA breach.
type CandidateRepository interface {
	// FindBreachCandidates returns entities of the queried class that are still
	// in the stuck state and were created at or before OlderThan.
	FindBreachCandidates(ctx context.Context, query CandidateQuery) ([]*CandidateRecord, error)
}

// CandidateQuery selects one monitored entity population.
type CandidateQuery struct {
	Class      string // e.g. 'event_draft'
	EntityType string // 'EVENT', 'ORGANIZER'
	State      string // state the entity must still be in
	OlderThan  time.Time
}

// CandidateRecord is an entity view returned by the breach query. Not persisted.
type CandidateRecord struct {
	EntityType string
	EntityID   string
	CreatedAt  time.Time
	State      string
}

// EscalationRepository defines the secondary port for escalation persistence.
type EscalationRepository interface {
	// Create persists a new escalation. When escalation.ID is empty the store
	// allocates the next ID atomically and sets it on the record.
	Create(ctx context.Context, escalation *EscalationRecord) error

	// GetByID retrieves an escalation by its ID.
	GetByID(ctx context.Context, id string) (*EscalationRecord, error)

	// List retrieves escalations matching the given filters, newest first.
	List(ctx context.Context, filters EscalationFilters) ([]*EscalationRecord, error)

	// FindPendingByEntity returns the newest pending escalation for an entity,
	// or nil if there is none.
	FindPendingByEntity(ctx context.Context, entityType, entityID string) (*EscalationRecord, error)

	// Resolve sets status, resolved_by, resolved_at and resolution in one write.
	Resolve(ctx context.Context, id, resolvedBy, resolution string, resolvedAt time.Time) error
}

// EscalationRecord represents an escalation as stored in persistence.
type EscalationRecord struct {
	ID          string
	EntityType  string // 'EVENT', 'ORGANIZER'
	EntityID    string
	EscalatedBy string // 'SYSTEM' for automated escalations
	EscalatedTo string // target role, e.g. 'HEAD'
	Reason      string
	Status      string // 'pending', 'resolved'
	ResolvedBy  string // Empty string means null
	Resolution  string // Empty string means null
	CreatedAt   string
	ResolvedAt  string // Empty string means null
}

// EscalationFilters contains filter options for querying escalations.
type EscalationFilters struct {
	EntityType  string
	EntityID    string
	Status      string
	EscalatedTo string
	Limit       int
}

// ActivityLogRepository defines the secondary port for the audit trail.
// Entries are append-only - no Update or Delete operations.
type ActivityLogRepository interface {
	// Append persists a new activity log entry.
	Append(ctx context.Context, entry *ActivityLogRecord) error

	// List retrieves entries matching the given filters, newest first.
	List(ctx context.Context, filters ActivityLogFilters) ([]*ActivityLogRecord, error)
}

// ActivityLogRecord represents an audit entry as stored in persistence.
type ActivityLogRecord struct {
	ID         string
	ActorID    string
	Action     string // e.g. 'AUTO_ESCALATE_EVENT_HEAD'
	EntityType string // Empty string means null
	EntityID   string // Empty string means null
	IPAddress  string // Empty string means null
	UserAgent  string // Empty string means null
	Timestamp  string
}

// ActivityLogFilters contains filter options for querying the audit trail.
type ActivityLogFilters struct {
	ActorID  string
	Action   string
	EntityID string
	Limit    int
}

// AssignmentResolver drains the pending-assignment queue. How items are
// matched to assignees is up to the implementation.
type AssignmentResolver interface {
	// ProcessQueue attempts to resolve a batch and reports counts.
	// Must be safe to call repeatedly.
	ProcessQueue(ctx context.Context) (*ResolverResult, error)
}

// ResolverResult is the outcome of one resolver invocation.
type ResolverResult struct {
	Processed int
	Remaining int
}

// AssignmentQueueRepository defines the secondary port for the pending-assignment
// queue used by the default resolver.
type AssignmentQueueRepository interface {
	// Enqueue adds a new pending item. When item.ID is empty the store
	// allocates the next ID atomically and sets it on the item.
	Enqueue(ctx context.Context, item *AssignmentItemRecord) error

	// GetByID retrieves an item by its ID.
	GetByID(ctx context.Context, id string) (*AssignmentItemRecord, error)

	// ListPending returns up to limit pending items, oldest first.
	ListPending(ctx context.Context, limit int) ([]*AssignmentItemRecord, error)

	// CountPending returns the number of pending items.
	CountPending(ctx context.Context) (int, error)

	// Assign marks an item assigned to an assignee.
	Assign(ctx context.Context, itemID, assigneeID string) error

	// RecordFailure increments the attempt count and parks the item as failed
	// once attempts reach maxAttempts.
	RecordFailure(ctx context.Context, itemID, lastError string, maxAttempts int) error

	// ListActiveAssignees returns active assignees for a role, ordered by ID.
	ListActiveAssignees(ctx context.Context, role string) ([]*AssigneeRecord, error)
}

// Assignment queue item statuses.
const (
	AssignmentStatusPending  = "pending"
	AssignmentStatusAssigned = "assigned"
	AssignmentStatusFailed   = "failed"
)

// AssignmentItemRecord represents a queue item as stored in persistence.
type AssignmentItemRecord struct {
	ID         string
	EntityType string
	EntityID   string
	Status     string // 'pending', 'assigned', 'failed'
	AssigneeID string // Empty string means null
	Attempts   int
	LastError  string // Empty string means null
	CreatedAt  string
	AssignedAt string // Empty string means null
}

// AssigneeRecord represents a user that can receive queue items.
type AssigneeRecord struct {
	ID     string
	Name   string
	Role   string
	Active bool
}

// EscalationNotifier publishes newly raised escalations to interested parties.
type EscalationNotifier interface {
	NotifyEscalation(ctx context.Context, escalation *EscalationRecord) error
}
