package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/paulsundquist/yt-aggregator/internal/model"
)

// resultFormatter renders a sync result for the terminal
type resultFormatter interface {
	Format(result *model.SyncResult) (string, error)
}

// textFormatter formats a sync result as plain text
type textFormatter struct{}

func (f *textFormatter) Format(result *model.SyncResult) (string, error) {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("Run ID: %s\n", result.RunID))
	output.WriteString(fmt.Sprintf("Channels processed: %d\n", result.ChannelsProcessed))
	output.WriteString(fmt.Sprintf("Videos upserted: %d\n", result.VideosUpserted))
	output.WriteString(fmt.Sprintf("Duration: %s\n", result.Duration.Round(time.Millisecond)))

	if len(result.Errors) == 0 {
		output.WriteString("Errors: none\n")
		return output.String(), nil
	}

	output.WriteString(fmt.Sprintf("Errors (%d):\n", len(result.Errors)))
	for _, e := range result.Errors {
		output.WriteString(fmt.Sprintf("  - %s: %s\n", e.ChannelID, e.Message))
	}
	return output.String(), nil
}

// jsonFormatter formats a sync result as indented JSON
type jsonFormatter struct{}

func (f *jsonFormatter) Format(result *model.SyncResult) (string, error) {
	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(jsonBytes) + "\n", nil
}

// getFormatter returns the formatter for a --format value
func getFormatter(format string) (resultFormatter, error) {
	switch strings.ToLower(format) {
	case "text", "txt", "":
		return &textFormatter{}, nil
	case "json":
		return &jsonFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (expected text or json)", format)
	}
}

// printJSON writes v as indented JSON under a heading
func printJSON(w io.Writer, heading string, v any) error {
	result, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format result: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n%s\n", heading, result)
	return err
}
