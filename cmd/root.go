package cmd

import (
	"github.com/spf13/cobra"
)

// Persistent flags shared by every subcommand
var (
	logLevel  string
	logFormat string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ytagg",
	Short: "YouTube channel and video aggregator",
	Long: `ytagg tracks YouTube channels and keeps a PostgreSQL catalog of their
recent uploads up to date. Run "ytagg sync" from a scheduler to refresh
channels by schedule tier.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides log_level in the config")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "Log format (json or console)")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newChannelCmd())
	rootCmd.AddCommand(newVideoCmd())
	rootCmd.AddCommand(newSyncCmd())
}
