package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/slawatch/internal/cli"
	"github.com/example/slawatch/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "slawatch",
		Short:   "slawatch - SLA monitor and assignment queue scheduler",
		Version: version.String(),
		Long: `slawatch escalates events stuck in draft and organizers stuck in
pending verification once they breach their SLA, and drains the
pending-assignment queue on a fixed cadence.`,
		SilenceUsage: true,
	}
	cli.BindGlobalFlags(rootCmd)

	// SLA monitor
	rootCmd.AddCommand(cli.EscalationCmd())
	rootCmd.AddCommand(cli.ActivityCmd())

	// Assignment queue
	rootCmd.AddCommand(cli.QueueCmd())

	// Long-running
	rootCmd.AddCommand(cli.ServeCmd())

	// Setup and developer tools
	rootCmd.AddCommand(cli.ConfigCmd())
	rootCmd.AddCommand(cli.DevCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
