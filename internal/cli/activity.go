package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/slawatch/internal/ports/secondary"
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "View the activity log",
	Long:  "View the audit trail of automatic escalations and resolutions",
}

var activityListCmd = &cobra.Command{
	Use:   "list [entity-id]",
	Short: "List activity log entries, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		actorID, _ := cmd.Flags().GetString("by")
		action, _ := cmd.Flags().GetString("action")
		limit, _ := cmd.Flags().GetInt("limit")

		filters := secondary.ActivityLogFilters{
			ActorID: actorID,
			Action:  action,
			Limit:   limit,
		}
		if len(args) > 0 {
			filters.EntityID = args[0]
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.ActivityRepo.List(ctx, filters)
		if err != nil {
			return fmt.Errorf("failed to fetch activity: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("No activity found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tACTOR\tACTION\tENTITY")
		fmt.Fprintln(w, "----\t-----\t------\t------")
		for _, e := range entries {
			entity := "-"
			if e.EntityID != "" {
				entity = e.EntityType + " " + e.EntityID
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Timestamp, e.ActorID, e.Action, entity)
		}
		return w.Flush()
	},
}

func init() {
	activityListCmd.Flags().String("by", "", "Filter by actor")
	activityListCmd.Flags().String("action", "", "Filter by action (e.g. AUTO_ESCALATE_EVENT_HEAD)")
	activityListCmd.Flags().IntP("limit", "n", 50, "Maximum rows (0 for all)")

	activityCmd.AddCommand(activityListCmd)
}

// ActivityCmd returns the activity command
func ActivityCmd() *cobra.Command {
	return activityCmd
}
