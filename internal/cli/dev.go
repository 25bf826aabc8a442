package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/slawatch/internal/db"
)

// DevCmd returns the dev command group for development utilities.
func DevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Development utilities",
		Long: `Development utilities for working with a local slawatch database.

These commands refuse to run against the default database path. Set
db_path (or SLAWATCH_DB_PATH) to a scratch database first.`,
	}

	cmd.AddCommand(devSeedCmd())
	cmd.AddCommand(devResetCmd())
	return cmd
}

func devSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed fixture entities, assignees and queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, err := devDBPath()
			if err != nil {
				return err
			}

			database, err := db.Open(dbPath)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := db.SeedFixtures(database, time.Now()); err != nil {
				return fmt.Errorf("failed to seed fixtures: %w", err)
			}
			fmt.Printf("✓ Seeded fixtures into %s\n", dbPath)
			return nil
		},
	}
}

func devResetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the dev database with fresh fixtures",
		Long: `Delete the dev database and recreate it with fixture data.

This command:
1. Deletes the existing database file
2. Creates a fresh database with the current schema
3. Seeds fixture data`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, err := devDBPath()
			if err != nil {
				return err
			}

			if !force {
				fmt.Printf("This will delete and recreate: %s\n", dbPath)
				fmt.Print("Continue? [y/N] ")
				var response string
				fmt.Scanln(&response)
				if response != "y" && response != "Y" {
					fmt.Println("Aborted.")
					return nil
				}
			}

			if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to delete database: %w", err)
			}
			fmt.Printf("✓ Deleted %s\n", dbPath)

			database, err := db.Open(dbPath)
			if err != nil {
				return fmt.Errorf("failed to create database: %w", err)
			}
			defer database.Close()
			fmt.Println("✓ Created fresh database with schema")

			if err := db.SeedFixtures(database, time.Now()); err != nil {
				return fmt.Errorf("failed to seed fixtures: %w", err)
			}
			fmt.Println("✓ Seeded fixture data")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}

// devDBPath returns the configured database path, refusing the default one.
func devDBPath() (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.DBPath == "" {
		return "", fmt.Errorf("db_path not set - point SLAWATCH_DB_PATH at a scratch database\n\nThis safety check prevents accidental changes to your real database")
	}
	return cfg.DBPath, nil
}
