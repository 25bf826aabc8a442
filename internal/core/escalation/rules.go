// Package escalation contains the pure business logic for SLA escalations.
// This is part of the Functional Core - no I/O, only pure functions.
package escalation

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Kind identifies an escalation route with its own breach threshold.
type Kind string

const (
	// KindAgentToHead routes stuck work from the handling agent to the head role.
	KindAgentToHead Kind = "AGENT_TO_HEAD"
)

// EntityType is the type of entity an escalation refers to.
type EntityType string

const (
	EntityTypeEvent     EntityType = "EVENT"
	EntityTypeOrganizer EntityType = "ORGANIZER"
)

// Valid reports whether the entity type is one the monitor knows about.
func (t EntityType) Valid() bool {
	return t == EntityTypeEvent || t == EntityTypeOrganizer
}

// ParseEntityType parses a case-insensitive entity type.
func ParseEntityType(s string) (EntityType, error) {
	t := EntityType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown entity type %q (must be EVENT or ORGANIZER)", s)
	}
	return t, nil
}

// Rule maps an escalation kind to its breach threshold.
type Rule struct {
	Kind      Kind
	Threshold time.Duration
}

// RuleTable is an immutable kind -> threshold mapping.
type RuleTable struct {
	rules map[Kind]Rule
}

// NewRuleTable builds a rule table. Every kind must appear exactly once and
// carry a positive threshold.
func NewRuleTable(rules ...Rule) (*RuleTable, error) {
	t := &RuleTable{rules: make(map[Kind]Rule, len(rules))}
	for _, r := range rules {
		if r.Kind == "" {
			return nil, fmt.Errorf("rule kind must not be empty")
		}
		if r.Threshold <= 0 {
			return nil, fmt.Errorf("rule %s: threshold must be positive (got %s)", r.Kind, r.Threshold)
		}
		if _, dup := t.rules[r.Kind]; dup {
			return nil, fmt.Errorf("duplicate rule for kind %s", r.Kind)
		}
		t.rules[r.Kind] = r
	}
	return t, nil
}

// DefaultRuleTable returns the current rule set: a single AGENT_TO_HEAD rule.
func DefaultRuleTable(threshold time.Duration) (*RuleTable, error) {
	return NewRuleTable(Rule{Kind: KindAgentToHead, Threshold: threshold})
}

// Threshold returns the breach threshold for a kind.
func (t *RuleTable) Threshold(kind Kind) (time.Duration, error) {
	r, ok := t.rules[kind]
	if !ok {
		return 0, fmt.Errorf("no escalation rule for kind %s", kind)
	}
	return r.Threshold, nil
}

// Rules returns a copy of the rules in the table, ordered by kind.
func (t *RuleTable) Rules() []Rule {
	out := make([]Rule, 0, len(t.rules))
	for _, r := range t.rules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

// EntityClass is a population of entities monitored for SLA breach.
type EntityClass struct {
	Name       string
	EntityType EntityType
	StuckState string // state the entity must still be in to count as breached
	Kind       Kind
}

// Monitored entity classes.
var (
	ClassEventDraft = EntityClass{
		Name:       "event_draft",
		EntityType: EntityTypeEvent,
		StuckState: "draft",
		Kind:       KindAgentToHead,
	}
	ClassOrganizerPendingVerification = EntityClass{
		Name:       "organizer_pending_verification",
		EntityType: EntityTypeOrganizer,
		StuckState: "pending_verification",
		Kind:       KindAgentToHead,
	}
)

// MonitoredClasses returns the entity classes swept by the monitor, in sweep order.
func MonitoredClasses() []EntityClass {
	return []EntityClass{ClassEventDraft, ClassOrganizerPendingVerification}
}

// Cutoff returns the creation time before which an entity is in breach.
func Cutoff(now time.Time, threshold time.Duration) time.Time {
	return now.Add(-threshold)
}

// IsBreached reports whether an entity created at createdAt has exceeded threshold at now.
// An entity exactly at the threshold counts as breached.
func IsBreached(createdAt, now time.Time, threshold time.Duration) bool {
	return now.Sub(createdAt) >= threshold
}

// Candidate is a view of an entity that may be in breach.
type Candidate struct {
	EntityType EntityType
	EntityID   string
	CreatedAt  time.Time
	State      string
}

// AutoEscalateAction returns the audit action for an automated escalation,
// e.g. AUTO_ESCALATE_EVENT_HEAD.
func AutoEscalateAction(entityType EntityType, targetRole string) string {
	return fmt.Sprintf("AUTO_ESCALATE_%s_%s", entityType, strings.ToUpper(targetRole))
}

// AutoEscalateReason builds the human-readable reason for an automated escalation.
func AutoEscalateReason(c Candidate, threshold time.Duration, now time.Time) string {
	age := now.Sub(c.CreatedAt).Truncate(time.Minute)
	return fmt.Sprintf("%s %s has been in state %q for %s (SLA %s)",
		strings.ToLower(string(c.EntityType)), c.EntityID, c.State, age, threshold)
}
