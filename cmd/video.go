package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paulsundquist/yt-aggregator/internal/model"
)

func newVideoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "video",
		Short: "YouTube video operations",
		Long:  `Inspect video metadata collected by sync runs.`,
	}

	cmd.AddCommand(newVideoListCmd())
	return cmd
}

// newVideoListCmd lists stored videos, newest first
func newVideoListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored videos",
		Long:  `List stored videos ordered by publish time, newest first, optionally for one channel.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			d, err := loadDeps(ctx, depsOptions{})
			if err != nil {
				return err
			}
			defer d.close()

			channelID, _ := cmd.Flags().GetString("channel-id")
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")

			var videos []*model.Video
			if channelID != "" {
				videos, err = d.videos.GetByChannelID(ctx, channelID, limit, offset)
			} else {
				videos, err = d.videos.List(ctx, limit, offset)
			}
			if err != nil {
				return fmt.Errorf("failed to list videos: %w", err)
			}

			if len(videos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No videos found in the database.")
				return nil
			}

			return printJSON(cmd.OutOrStdout(), fmt.Sprintf("Found %d video(s):", len(videos)), videos)
		},
	}

	cmd.Flags().String("channel-id", "", "Only list videos from this channel")
	cmd.Flags().Int("limit", 10, "Maximum number of videos to retrieve")
	cmd.Flags().Int("offset", 0, "Number of videos to skip")

	return cmd
}
