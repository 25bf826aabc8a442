// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting, but delegate
// business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/example/slawatch/internal/ports/primary"
)

// EscalationAdapter is a thin adapter that translates CLI operations to SLAMonitorService calls.
type EscalationAdapter struct {
	service primary.SLAMonitorService
	out     io.Writer
}

// NewEscalationAdapter creates a new EscalationAdapter with the given service.
func NewEscalationAdapter(service primary.SLAMonitorService, out io.Writer) *EscalationAdapter {
	return &EscalationAdapter{
		service: service,
		out:     out,
	}
}

// Check runs one SLA sweep and prints its report.
func (a *EscalationAdapter) Check(ctx context.Context, now time.Time) *primary.SweepReport {
	report := a.service.CheckAutoEscalation(ctx, now)

	fmt.Fprintf(a.out, "Sweep %s\n", report.SweepID)
	fmt.Fprintf(a.out, "  candidates: %d\n", report.Candidates)
	fmt.Fprintf(a.out, "  escalated:  %s\n", color.New(color.FgGreen).Sprint(report.Escalated))
	fmt.Fprintf(a.out, "  skipped:    %d\n", report.Skipped)
	if report.Failed() == 0 {
		fmt.Fprintf(a.out, "  failed:     %d\n", 0)
	} else {
		fmt.Fprintf(a.out, "  failed:     %s\n", color.New(color.FgRed).Sprint(report.Failed()))
	}

	for _, id := range report.Created {
		fmt.Fprintf(a.out, "✓ Created escalation %s\n", id)
	}
	for _, f := range report.Failures {
		subject := f.Class
		if f.EntityID != "" {
			subject = f.EntityType + " " + f.EntityID
		}
		fmt.Fprintf(a.out, "%s %s: %v\n", color.New(color.FgRed).Sprint("✗"), subject, f.Err)
	}
	return report
}

// Resolve resolves an escalation.
func (a *EscalationAdapter) Resolve(ctx context.Context, escalationID, resolvedBy, resolution string) error {
	esc, err := a.service.ResolveEscalation(ctx, primary.ResolveEscalationRequest{
		EscalationID: escalationID,
		ResolvedBy:   resolvedBy,
		Resolution:   resolution,
	})
	if err != nil {
		return fmt.Errorf("failed to resolve escalation: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Escalation %s resolved by %s at %s\n", esc.ID, esc.ResolvedBy, esc.ResolvedAt)
	return nil
}

// History prints every escalation for an entity, newest first.
func (a *EscalationAdapter) History(ctx context.Context, entityType, entityID string) error {
	escalations := a.service.GetEscalationHistory(ctx, entityType, entityID)
	if len(escalations) == 0 {
		fmt.Fprintf(a.out, "No escalations for %s %s\n", entityType, entityID)
		return nil
	}
	a.writeTable(escalations)
	return nil
}

// List lists escalations with optional filters.
func (a *EscalationAdapter) List(ctx context.Context, filters primary.EscalationFilters) error {
	escalations, err := a.service.ListEscalations(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to list escalations: %w", err)
	}

	if len(escalations) == 0 {
		fmt.Fprintln(a.out, "No escalations found.")
		return nil
	}
	a.writeTable(escalations)
	return nil
}

// Show displays details for a single escalation.
func (a *EscalationAdapter) Show(ctx context.Context, escalationID string) (*primary.Escalation, error) {
	esc, err := a.service.GetEscalation(ctx, escalationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get escalation: %w", err)
	}

	fmt.Fprintf(a.out, "Escalation: %s\n", esc.ID)
	fmt.Fprintf(a.out, "Entity: %s %s\n", esc.EntityType, esc.EntityID)
	fmt.Fprintf(a.out, "Status: %s\n", statusLabel(esc.Status))
	fmt.Fprintf(a.out, "Escalated: %s -> %s\n", esc.EscalatedBy, esc.EscalatedTo)
	fmt.Fprintf(a.out, "Reason: %s\n", esc.Reason)
	fmt.Fprintf(a.out, "Created: %s\n", esc.CreatedAt)
	if esc.ResolvedBy != "" {
		fmt.Fprintf(a.out, "Resolved By: %s\n", esc.ResolvedBy)
	}
	if esc.Resolution != "" {
		fmt.Fprintf(a.out, "Resolution: %s\n", esc.Resolution)
	}
	if esc.ResolvedAt != "" {
		fmt.Fprintf(a.out, "Resolved: %s\n", esc.ResolvedAt)
	}
	return esc, nil
}

func (a *EscalationAdapter) writeTable(escalations []*primary.Escalation) {
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tENTITY\tSTATUS\tTO\tCREATED\tRESOLVED BY")
	fmt.Fprintln(w, "--\t------\t------\t--\t-------\t-----------")
	for _, e := range escalations {
		resolvedBy := e.ResolvedBy
		if resolvedBy == "" {
			resolvedBy = "-"
		}
		fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\t%s\t%s\n",
			e.ID,
			e.EntityType, e.EntityID,
			e.Status,
			e.EscalatedTo,
			e.CreatedAt,
			resolvedBy,
		)
	}
	w.Flush()
}

func statusLabel(status string) string {
	switch status {
	case primary.EscalationStatusPending:
		return color.New(color.FgYellow).Sprint(status)
	case primary.EscalationStatusResolved:
		return color.New(color.FgGreen).Sprint(status)
	default:
		return status
	}
}
