package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/example/slawatch/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the SLA monitor and queue scheduler until interrupted",
	Long: `Start the queue scheduler and run an SLA sweep every sweep_interval.

A sweep runs immediately on start. SIGINT or SIGTERM stops the scheduler,
waits for any in-flight drain and exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		noSweep, _ := cmd.Flags().GetBool("no-sweep")

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(NewContext(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := a.Scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		a.Logger.WithFields(logrus.Fields{
			"cadence":        a.Config.QueueCadence,
			"sweep_interval": a.Config.SweepInterval,
		}).Info("slawatch serving")

		if noSweep {
			<-ctx.Done()
		} else {
			runSweeps(ctx, a.SLAMonitor, a.Config.SweepInterval)
		}

		a.Logger.Info("Shutting down")
		if err := a.Scheduler.Stop(); err != nil {
			a.Logger.WithError(err).Warn("Scheduler stop failed")
		}
		a.Scheduler.Wait()
		return nil
	},
}

// runSweeps runs one sweep immediately and then one per interval until ctx ends.
func runSweeps(ctx context.Context, monitor *app.SLAMonitorServiceImpl, interval time.Duration) {
	monitor.CheckAutoEscalation(ctx, time.Now())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			monitor.CheckAutoEscalation(ctx, now)
		}
	}
}

func init() {
	serveCmd.Flags().Bool("no-sweep", false, "Only run the queue scheduler")
}

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	return serveCmd
}
