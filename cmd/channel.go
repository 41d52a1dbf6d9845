package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paulsundquist/yt-aggregator/internal/service/channelsync"
)

// registerFetchCount is how many videos "channel add --fetch" pulls right away
const registerFetchCount = 10

func newChannelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channel",
		Short: "YouTube channel operations",
		Long:  `Register, list and maintain the channels tracked by ytagg.`,
	}

	cmd.AddCommand(newChannelAddCmd())
	cmd.AddCommand(newChannelListCmd())
	cmd.AddCommand(newChannelResetCatalogCmd())
	return cmd
}

// newChannelAddCmd registers a channel by id or @handle
func newChannelAddCmd() *cobra.Command {
	var (
		name     string
		category string
		schedule string
		fetch    bool
	)

	cmd := &cobra.Command{
		Use:   "add [CHANNEL_ID|@HANDLE]",
		Short: "Start tracking a channel",
		Long: `Register a channel by its id or @handle. Handles are resolved through the
YouTube Data API and default the name to the channel's display name; raw
ids require --name. Unless --fetch=false, the channel's latest videos are
synced right away.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			needsAPI := fetch || strings.HasPrefix(strings.TrimSpace(args[0]), "@")

			d, err := loadDeps(ctx, depsOptions{requireAPIKey: needsAPI})
			if err != nil {
				return err
			}
			defer d.close()

			channel, err := d.sync.RegisterChannel(ctx, channelsync.RegisterRequest{
				IDOrHandle: args[0],
				Name:       name,
				Category:   category,
				Schedule:   schedule,
			})
			if err != nil {
				return fmt.Errorf("failed to register channel: %w", err)
			}

			if err := printJSON(cmd.OutOrStdout(), "Channel saved successfully:", channel); err != nil {
				return err
			}

			if !fetch {
				return nil
			}

			result, err := d.sync.RunSync(ctx, channelsync.ByChannelID(channel.ID), registerFetchCount)
			if err != nil {
				return fmt.Errorf("channel saved but initial fetch failed: %w", err)
			}
			output, err := (&textFormatter{}).Format(result)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nInitial fetch:\n%s", output)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Channel name (required for raw channel ids)")
	cmd.Flags().StringVar(&category, "category", "", "Category tag copied onto the channel's videos")
	cmd.Flags().StringVar(&schedule, "schedule", "", "Schedule tier (hourly, daily, weekly)")
	cmd.Flags().BoolVar(&fetch, "fetch", true, "Fetch the latest videos after registering")

	return cmd
}

// newChannelListCmd lists tracked channels
func newChannelListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked channels",
		Long:  `List all channels saved in the database, active or not.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			d, err := loadDeps(ctx, depsOptions{})
			if err != nil {
				return err
			}
			defer d.close()

			// Get pagination flags
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")

			channels, err := d.channels.List(ctx, limit, offset)
			if err != nil {
				return fmt.Errorf("failed to list channels: %w", err)
			}

			if len(channels) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No channels found in the database.")
				return nil
			}

			return printJSON(cmd.OutOrStdout(), fmt.Sprintf("Found %d channel(s):", len(channels)), channels)
		},
	}

	cmd.Flags().Int("limit", 10, "Maximum number of channels to retrieve")
	cmd.Flags().Int("offset", 0, "Number of channels to skip")

	return cmd
}

// newChannelResetCatalogCmd forgets a channel's cached uploads playlist
func newChannelResetCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-catalog [CHANNEL_ID]",
		Short: "Forget a channel's cached uploads playlist",
		Long: `Clear the cached uploads playlist id so the next sync resolves it again.
Use this when a channel's catalog lookups keep failing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			d, err := loadDeps(ctx, depsOptions{})
			if err != nil {
				return err
			}
			defer d.close()

			if err := d.channels.ClearCatalogID(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to reset catalog: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Cleared cached catalog for %s; the next sync will resolve it again.\n", args[0])
			return nil
		},
	}
}
