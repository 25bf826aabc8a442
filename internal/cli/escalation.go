package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/slawatch/internal/core/escalation"
	"github.com/example/slawatch/internal/ports/primary"
)

var escalationCmd = &cobra.Command{
	Use:   "escalation",
	Short: "Manage SLA escalations",
	Long:  "Run SLA sweeps and list, view and resolve escalations",
}

var escalationCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one SLA sweep now",
	Long: `Scan events stuck in draft and organizers stuck in pending_verification
and raise an escalation for every entity past its SLA threshold.

Failures on individual entities are reported but never abort the sweep.

Examples:
  slawatch escalation check
  slawatch escalation check --at 2026-03-10T12:00:00Z`,
	RunE: func(cmd *cobra.Command, args []string) error {
		at, _ := cmd.Flags().GetString("at")
		now := time.Now()
		if at != "" {
			parsed, err := time.Parse(time.RFC3339, at)
			if err != nil {
				return fmt.Errorf("--at must be RFC3339: %w", err)
			}
			now = parsed
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		report := a.EscalationAdapter(os.Stdout).Check(NewContext(), now)
		if report.Failed() > 0 {
			return fmt.Errorf("sweep %s finished with %d failures", report.SweepID, report.Failed())
		}
		return nil
	},
}

var escalationResolveCmd = &cobra.Command{
	Use:   "resolve [escalation-id]",
	Short: "Resolve an escalation",
	Long: `Resolve an escalation with a resolution note.

Resolving an already resolved escalation overwrites the earlier resolution
unless strict_resolve is configured.

Examples:
  slawatch escalation resolve ESC-001 -r "organizer published the event"
  slawatch escalation resolve ESC-002 --by head-7 -r "verified documents"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resolution, _ := cmd.Flags().GetString("resolution")
		resolvedBy, _ := cmd.Flags().GetString("by")
		if resolvedBy == "" {
			resolvedBy = GetActorID()
		}
		if strings.TrimSpace(resolution) == "" {
			return fmt.Errorf("--resolution is required")
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		return a.EscalationAdapter(os.Stdout).Resolve(NewContext(), args[0], resolvedBy, resolution)
	},
}

var escalationHistoryCmd = &cobra.Command{
	Use:   "history [EVENT|ORGANIZER] [entity-id]",
	Short: "Show escalation history for an entity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		entityType, err := escalation.ParseEntityType(args[0])
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		return a.EscalationAdapter(os.Stdout).History(NewContext(), string(entityType), args[1])
	},
}

var escalationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List escalations",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		role, _ := cmd.Flags().GetString("to")
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		return a.EscalationAdapter(os.Stdout).List(NewContext(), primary.EscalationFilters{
			Status:      status,
			EscalatedTo: role,
			Limit:       limit,
		})
	},
}

var escalationShowCmd = &cobra.Command{
	Use:   "show [escalation-id]",
	Short: "Show escalation details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		_, err = a.EscalationAdapter(os.Stdout).Show(NewContext(), args[0])
		return err
	},
}

func init() {
	// escalation check flags
	escalationCheckCmd.Flags().String("at", "", "Evaluate the sweep as of this RFC3339 time (default now)")

	// escalation resolve flags
	escalationResolveCmd.Flags().StringP("resolution", "r", "", "Resolution note (required)")
	escalationResolveCmd.Flags().String("by", "", "Who resolved it (default --actor)")

	// escalation list flags
	escalationListCmd.Flags().StringP("status", "s", "", "Filter by status (pending|resolved)")
	escalationListCmd.Flags().String("to", "", "Filter by target role")
	escalationListCmd.Flags().IntP("limit", "n", 0, "Maximum rows (0 for all)")

	// Register subcommands
	escalationCmd.AddCommand(escalationCheckCmd)
	escalationCmd.AddCommand(escalationResolveCmd)
	escalationCmd.AddCommand(escalationHistoryCmd)
	escalationCmd.AddCommand(escalationListCmd)
	escalationCmd.AddCommand(escalationShowCmd)
}

// EscalationCmd returns the escalation command
func EscalationCmd() *cobra.Command {
	return escalationCmd
}
