package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/paulsundquist/yt-aggregator/internal/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration settings",
	Long:  `Manage configuration settings for ytagg.`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init [DATABASE_URL]",
	Short: "Initialize configuration file",
	Long:  `Create a new configuration file with database connection and sync settings.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var databaseURL string
		if len(args) > 0 {
			databaseURL = args[0]
		}

		if err := config.InitConfig(databaseURL); err != nil {
			return err
		}

		configPath, err := config.GetConfigPath()
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", configPath)
		fmt.Fprintln(cmd.OutOrStdout(), "Please set youtube_api_key and check database_url, then run 'ytagg migrate up'.")

		return nil
	},
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration file path and effective settings. Secrets are masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := config.GetConfigPath()
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file: %s\n\n", configPath)

		// Load and display current config
		cfg, err := config.NewConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		writeConfig(cmd.OutOrStdout(), cfg)
		return nil
	},
}

func writeConfig(w io.Writer, cfg *config.Config) {
	databaseURL := cfg.DatabaseURL
	if dbConfig, err := cfg.ParseDatabaseConfig(); err == nil && dbConfig.Password != "" {
		dbConfig.Password = "****"
		databaseURL = dbConfig.MigrationURL()
	}

	fmt.Fprintf(w, "DATABASE_URL: %s\n", databaseURL)
	fmt.Fprintf(w, "YOUTUBE_API_KEY: %s\n", maskSecret(cfg.YouTubeAPIKey))
	fmt.Fprintf(w, "REDIS_URL: %s\n", valueOrUnset(cfg.RedisURL))
	fmt.Fprintf(w, "PUSHGATEWAY_URL: %s\n", valueOrUnset(cfg.PushgatewayURL))
	fmt.Fprintf(w, "LOG_LEVEL: %s\n", cfg.LogLevel)
	fmt.Fprintf(w, "youtube: requests_per_second=%g max_in_flight=%d call_timeout=%s\n",
		cfg.YouTube.RequestsPerSecond, cfg.YouTube.MaxInFlight, cfg.YouTube.CallTimeout)
	fmt.Fprintf(w, "sync: max_results=%d concurrency=%d lock_ttl=%s\n",
		cfg.Sync.MaxResults, cfg.Sync.Concurrency, cfg.Sync.LockTTL)
}

// maskSecret keeps the last four characters of a secret
func maskSecret(s string) string {
	switch {
	case s == "":
		return "(not set)"
	case len(s) <= 4:
		return "****"
	default:
		return "****" + s[len(s)-4:]
	}
}

func valueOrUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
