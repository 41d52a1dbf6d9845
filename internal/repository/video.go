package repository

import (
	"context"

	"github.com/paulsundquist/yt-aggregator/internal/model"
)

// VideoRepository defines operations for Video persistence
type VideoRepository interface {
	// Upsert inserts a video or overwrites its mutable fields.
	// Channel, publish time and category are kept from the first insert.
	Upsert(ctx context.Context, video *model.Video) error

	// GetByID retrieves a video by its ID
	GetByID(ctx context.Context, id string) (*model.Video, error)

	// GetByChannelID retrieves a channel's videos, newest first
	GetByChannelID(ctx context.Context, channelID string, limit, offset int) ([]*model.Video, error)

	// List retrieves videos across all channels, newest first
	List(ctx context.Context, limit, offset int) ([]*model.Video, error)
}
