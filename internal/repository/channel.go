package repository

import (
	"context"

	"github.com/paulsundquist/yt-aggregator/internal/model"
)

// ChannelRepository defines operations for Channel persistence
type ChannelRepository interface {
	// ListActive retrieves every channel with the active flag set
	ListActive(ctx context.Context) ([]*model.Channel, error)

	// ListActiveBySchedule retrieves active channels assigned to the given tier
	ListActiveBySchedule(ctx context.Context, tier model.ScheduleTier) ([]*model.Channel, error)

	// GetActiveByID retrieves a single active channel; inactive channels are reported as not found
	GetActiveByID(ctx context.Context, id string) (*model.Channel, error)

	// GetByID retrieves a channel by its ID regardless of the active flag
	GetByID(ctx context.Context, id string) (*model.Channel, error)

	// Upsert inserts a channel or overwrites name, category and schedule, reactivating it
	Upsert(ctx context.Context, channel *model.Channel) error

	// CacheCatalogID stores the resolved uploads playlist for a channel
	CacheCatalogID(ctx context.Context, channelID, catalogID string) error

	// ClearCatalogID drops a cached uploads playlist so the next sync resolves it again
	ClearCatalogID(ctx context.Context, channelID string) error

	// List retrieves channels with pagination
	List(ctx context.Context, limit, offset int) ([]*model.Channel, error)
}
