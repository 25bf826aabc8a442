package primary

import (
	"context"
	"time"
)

// SLAMonitorService defines the primary port for SLA breach detection and
// escalation handling.
type SLAMonitorService interface {
	// CheckAutoEscalation sweeps all monitored entity classes at now and raises
	// escalations for breached entities. It always completes; per-candidate
	// failures are collected in the report.
	CheckAutoEscalation(ctx context.Context, now time.Time) *SweepReport

	// ResolveEscalation resolves an escalation. Fails with ErrNotFound or
	// ErrValidation.
	ResolveEscalation(ctx context.Context, req ResolveEscalationRequest) (*Escalation, error)

	// GetEscalationHistory returns all escalations for an entity, newest first.
	// Store failures degrade to an empty result.
	GetEscalationHistory(ctx context.Context, entityType, entityID string) []*Escalation

	// GetEscalation retrieves an escalation by ID.
	GetEscalation(ctx context.Context, escalationID string) (*Escalation, error)

	// ListEscalations lists escalations with optional filters.
	ListEscalations(ctx context.Context, filters EscalationFilters) ([]*Escalation, error)
}

// Escalation represents an escalation entity at the port boundary.
type Escalation struct {
	ID          string
	EntityType  string
	EntityID    string
	EscalatedBy string
	EscalatedTo string
	Reason      string
	Status      string // 'pending', 'resolved'
	ResolvedBy  string // May be empty
	Resolution  string // May be empty
	CreatedAt   string
	ResolvedAt  string // May be empty
}

// EscalationFilters contains filter options for listing escalations.
type EscalationFilters struct {
	EntityType  string
	EntityID    string
	Status      string
	EscalatedTo string
	Limit       int
}

// ResolveEscalationRequest contains parameters for resolving an escalation.
type ResolveEscalationRequest struct {
	EscalationID string
	ResolvedBy   string
	Resolution   string
}

// SweepReport summarizes one pass of the SLA monitor.
type SweepReport struct {
	SweepID    string
	StartedAt  time.Time
	FinishedAt time.Time
	Candidates int
	Escalated  int
	Skipped    int
	Created    []string // IDs of escalations raised in this sweep
	Failures   []CandidateFailure
}

// Failed returns the number of candidates (or class queries) that failed.
func (r *SweepReport) Failed() int {
	return len(r.Failures)
}

// CandidateFailure records a failure to process one candidate. EntityID is
// empty when the whole class query failed.
type CandidateFailure struct {
	Class      string
	EntityType string
	EntityID   string
	Err        error
}

// Escalation status constants
const (
	EscalationStatusPending  = "pending"
	EscalationStatusResolved = "resolved"
)
