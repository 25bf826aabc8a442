package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/slawatch/internal/core/escalation"
	"github.com/example/slawatch/internal/ports/secondary"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Manage the assignment queue",
	Long:  "Drain the pending-assignment queue, inspect the scheduler and enqueue items",
}

var queueDrainCmd = &cobra.Command{
	Use:   "drain",
	Short: "Process the queue once, synchronously",
	Long: `Run one queue drain immediately and print the outcome.

The drain is skipped if another drain is already in flight in this process.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		return a.QueueAdapter(os.Stdout).Drain(NewContext())
	},
}

var queueStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show scheduler status and pending count",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		a.QueueAdapter(os.Stdout).Status()

		pending, err := a.QueueRepo.CountPending(ctx)
		if err != nil {
			return fmt.Errorf("failed to count pending items: %w", err)
		}
		fmt.Printf("Pending:     %d\n", pending)
		return nil
	},
}

var queueEnqueueCmd = &cobra.Command{
	Use:   "enqueue [EVENT|ORGANIZER] [entity-id]",
	Short: "Add an entity to the assignment queue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		entityType, err := escalation.ParseEntityType(args[0])
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		item := &secondary.AssignmentItemRecord{
			EntityType: string(entityType),
			EntityID:   args[1],
			Status:     secondary.AssignmentStatusPending,
		}
		if err := a.QueueRepo.Enqueue(ctx, item); err != nil {
			return fmt.Errorf("failed to enqueue: %w", err)
		}

		fmt.Printf("✓ Enqueued %s for %s %s\n", item.ID, entityType, args[1])
		return nil
	},
}

func init() {
	queueCmd.AddCommand(queueDrainCmd)
	queueCmd.AddCommand(queueStatusCmd)
	queueCmd.AddCommand(queueEnqueueCmd)
}

// QueueCmd returns the queue command
func QueueCmd() *cobra.Command {
	return queueCmd
}
