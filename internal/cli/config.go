package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/slawatch/internal/config"
	"github.com/example/slawatch/internal/core/escalation"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage slawatch configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .slawatch/config.json",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		dir, err := configDir()
		if err != nil {
			return err
		}
		path := config.ConfigPath(dir)
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		if err := config.SaveConfig(dir, config.Default()); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  "Show configuration after applying config.json, .env and SLAWATCH_* overrides",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		dbPath := cfg.DBPath
		if dbPath == "" {
			dbPath = "(default ~/.slawatch/slawatch.db)"
		}
		broker := cfg.Kafka.Broker
		if broker == "" {
			broker = "(disabled)"
		}

		rules, err := escalation.DefaultRuleTable(cfg.EscalationThreshold)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "escalation_threshold\t%s\n", cfg.EscalationThreshold)
		fmt.Fprintf(w, "escalation_target_role\t%s\n", cfg.EscalationTargetRole)
		fmt.Fprintf(w, "dedup_pending\t%t\n", cfg.DedupPending)
		fmt.Fprintf(w, "strict_resolve\t%t\n", cfg.StrictResolve)
		fmt.Fprintf(w, "sweep_interval\t%s\n", cfg.SweepInterval)
		fmt.Fprintf(w, "queue_cadence\t%s\n", cfg.QueueCadence)
		fmt.Fprintf(w, "max_retries\t%d\n", cfg.MaxRetries)
		fmt.Fprintf(w, "batch_size\t%d\n", cfg.BatchSize)
		fmt.Fprintf(w, "assignee_role\t%s\n", cfg.AssigneeRole)
		fmt.Fprintf(w, "db_path\t%s\n", dbPath)
		fmt.Fprintf(w, "log_level\t%s\n", cfg.Log.Level)
		fmt.Fprintf(w, "log_dir\t%s\n", cfg.Log.Dir)
		fmt.Fprintf(w, "log_json\t%t\n", cfg.Log.JSON)
		fmt.Fprintf(w, "kafka_broker\t%s\n", broker)
		fmt.Fprintf(w, "kafka_topic\t%s\n", cfg.Kafka.Topic)
		for _, r := range rules.Rules() {
			fmt.Fprintf(w, "rule %s\t%s\n", r.Kind, r.Threshold)
		}
		for _, class := range escalation.MonitoredClasses() {
			fmt.Fprintf(w, "class %s\t%s %s -> %s\n", class.Name, class.EntityType, class.StuckState, class.Kind)
		}
		return w.Flush()
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

// ConfigCmd returns the config command
func ConfigCmd() *cobra.Command {
	return configCmd
}
