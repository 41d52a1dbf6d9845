package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paulsundquist/yt-aggregator/internal/config"
	"github.com/paulsundquist/yt-aggregator/migrations"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long:  `Apply or roll back the SQL migrations embedded in the binary.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			databaseURL, err := migrationURL()
			if err != nil {
				return err
			}
			if err := migrations.Up(databaseURL); err != nil {
				return err
			}
			return printSchemaVersion(cmd, databaseURL)
		},
	})

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")

			databaseURL, err := migrationURL()
			if err != nil {
				return err
			}
			if err := migrations.Down(databaseURL, steps); err != nil {
				return err
			}
			return printSchemaVersion(cmd, databaseURL)
		},
	}
	down.Flags().Int("steps", 1, "Number of migrations to roll back (0 rolls back everything)")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			databaseURL, err := migrationURL()
			if err != nil {
				return err
			}
			return printSchemaVersion(cmd, databaseURL)
		},
	})

	return cmd
}

func migrationURL() (string, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return "", fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := cfg.ParseDatabaseConfig()
	if err != nil {
		return "", fmt.Errorf("failed to parse database config: %w", err)
	}
	return dbConfig.MigrationURL(), nil
}

func printSchemaVersion(cmd *cobra.Command, databaseURL string) error {
	version, dirty, err := migrations.Version(databaseURL)
	if err != nil {
		return err
	}

	switch {
	case version == 0:
		fmt.Fprintln(cmd.OutOrStdout(), "Schema version: none")
	case dirty:
		fmt.Fprintf(cmd.OutOrStdout(), "Schema version: %d (dirty, fix manually before migrating again)\n", version)
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "Schema version: %d\n", version)
	}
	return nil
}
