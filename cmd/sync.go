package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/paulsundquist/yt-aggregator/internal/model"
	"github.com/paulsundquist/yt-aggregator/internal/service/channelsync"
)

// metricsJob is the Pushgateway job name for sync runs
const metricsJob = "ytagg_sync"

func newSyncCmd() *cobra.Command {
	var (
		maxResults  int
		concurrency int
		schedule    string
		channelID   string
		format      string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch recent videos for tracked channels",
		Long: `Fetch the most recent uploads of every active channel, or of one schedule
tier or a single channel, and upsert their metadata.

Per-channel failures are listed in the output and do not change the exit
status. The command only fails when the channel selection cannot be loaded.`,
		Example: `  ytagg sync --schedule hourly
  ytagg sync --channel-id UC_x5XG1OV2P6uZZ5FSM9Ttw --max-results 25 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := parseSelection(schedule, channelID)
			if err != nil {
				return err
			}

			formatter, err := getFormatter(format)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			d, err := loadDeps(ctx, depsOptions{concurrency: concurrency, requireAPIKey: true})
			if err != nil {
				return err
			}
			defer d.close()

			if maxResults <= 0 {
				maxResults = d.cfg.Sync.MaxResults
			}

			result, err := d.sync.RunSync(ctx, sel, maxResults)
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}

			if err := d.metrics.Push(ctx, d.cfg.PushgatewayURL, metricsJob, sel.String()); err != nil {
				d.logger.Warn().Err(err).Msg("failed to push metrics")
			}

			output, err := formatter.Format(result)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), output)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxResults, "max-results", 0, "Recent videos to fetch per channel, capped at 50 (default from config)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Channels to sync in parallel (default from config)")
	cmd.Flags().StringVar(&schedule, "schedule", "", "Only sync channels in this schedule tier (hourly, daily, weekly)")
	cmd.Flags().StringVar(&channelID, "channel-id", "", "Only sync this channel")
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text or json)")
	cmd.MarkFlagsMutuallyExclusive("schedule", "channel-id")

	return cmd
}

// parseSelection turns the selection flags into a channelsync.Selection
func parseSelection(schedule, channelID string) (channelsync.Selection, error) {
	schedule = strings.TrimSpace(schedule)
	channelID = strings.TrimSpace(channelID)

	switch {
	case schedule != "" && channelID != "":
		return channelsync.Selection{}, errors.New("--schedule and --channel-id cannot be used together")
	case schedule != "":
		tier, err := model.ParseScheduleTier(schedule)
		if err != nil {
			return channelsync.Selection{}, err
		}
		return channelsync.ByScheduleTier(tier), nil
	case channelID != "":
		return channelsync.ByChannelID(channelID), nil
	default:
		return channelsync.AllActive(), nil
	}
}
