package escalation

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle state of an escalation.
type Status string

const (
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
)

// SystemActor is the sentinel actor for automated escalations.
const SystemActor = "SYSTEM"

// DefaultTargetRole is the role automated escalations are routed to.
const DefaultTargetRole = "HEAD"

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // Human-readable reason (populated when not allowed)
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// AutoEscalateContext provides context for deciding whether a breached
// candidate gets a new escalation.
type AutoEscalateContext struct {
	EntityType          EntityType
	EntityID            string
	PendingEscalationID string // existing pending escalation for the entity, if any
	DedupPending        bool
}

// CanAutoEscalate evaluates whether a new escalation may be raised for an entity.
// Rule: with dedup enabled, an entity that already has a pending escalation is skipped.
func CanAutoEscalate(ctx AutoEscalateContext) GuardResult {
	if !ctx.EntityType.Valid() {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("unknown entity type %q", ctx.EntityType),
		}
	}
	if ctx.EntityID == "" {
		return GuardResult{
			Allowed: false,
			Reason:  "entity ID must not be empty",
		}
	}
	if ctx.DedupPending && ctx.PendingEscalationID != "" {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("%s %s already has pending escalation %s", ctx.EntityType, ctx.EntityID, ctx.PendingEscalationID),
		}
	}
	return GuardResult{Allowed: true}
}

// ResolveContext provides context for escalation resolution guards.
type ResolveContext struct {
	EscalationID  string
	CurrentStatus Status
	ResolvedBy    string
	Resolution    string
	Strict        bool // reject re-resolution of an already resolved escalation
}

// CanResolve evaluates whether an escalation can be resolved.
// Rules: resolver and resolution text are required; re-resolution overwrites
// unless strict mode is on.
func CanResolve(ctx ResolveContext) GuardResult {
	if strings.TrimSpace(ctx.ResolvedBy) == "" {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("resolvedBy is required to resolve escalation %s", ctx.EscalationID),
		}
	}
	if strings.TrimSpace(ctx.Resolution) == "" {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("resolution is required to resolve escalation %s", ctx.EscalationID),
		}
	}
	if ctx.Strict && ctx.CurrentStatus == StatusResolved {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("escalation %s is already resolved", ctx.EscalationID),
		}
	}
	return GuardResult{Allowed: true}
}

// Resolution holds the fields written together when an escalation is resolved.
// They are always populated as a unit.
type Resolution struct {
	Status     Status
	ResolvedBy string
	ResolvedAt time.Time
	Resolution string
}

// ApplyResolution returns the resolution fields for a resolve at now.
// The caller passes the current time to enable testing.
func ApplyResolution(resolvedBy, resolution string, now time.Time) Resolution {
	return Resolution{
		Status:     StatusResolved,
		ResolvedBy: strings.TrimSpace(resolvedBy),
		ResolvedAt: now.UTC(),
		Resolution: strings.TrimSpace(resolution),
	}
}

// InitialStatus returns the initial status for a new escalation.
func InitialStatus() Status {
	return StatusPending
}
