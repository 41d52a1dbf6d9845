package channelsync

import (
	"context"

	"github.com/stretchr/testify/mock"
	ytapi "google.golang.org/api/youtube/v3"

	"github.com/paulsundquist/yt-aggregator/internal/model"
	"github.com/paulsundquist/yt-aggregator/internal/service/youtube"
)

// mockChannelRepository is a mock implementation of ChannelRepository for testing
type mockChannelRepository struct {
	mock.Mock
}

func (m *mockChannelRepository) ListActive(ctx context.Context) ([]*model.Channel, error) {
	args := m.Called(ctx)
	channels, _ := args.Get(0).([]*model.Channel)
	return channels, args.Error(1)
}

func (m *mockChannelRepository) ListActiveBySchedule(ctx context.Context, tier model.ScheduleTier) ([]*model.Channel, error) {
	args := m.Called(ctx, tier)
	channels, _ := args.Get(0).([]*model.Channel)
	return channels, args.Error(1)
}

func (m *mockChannelRepository) GetActiveByID(ctx context.Context, id string) (*model.Channel, error) {
	args := m.Called(ctx, id)
	channel, _ := args.Get(0).(*model.Channel)
	return channel, args.Error(1)
}

func (m *mockChannelRepository) GetByID(ctx context.Context, id string) (*model.Channel, error) {
	args := m.Called(ctx, id)
	channel, _ := args.Get(0).(*model.Channel)
	return channel, args.Error(1)
}

func (m *mockChannelRepository) Upsert(ctx context.Context, channel *model.Channel) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

func (m *mockChannelRepository) CacheCatalogID(ctx context.Context, channelID, catalogID string) error {
	args := m.Called(ctx, channelID, catalogID)
	return args.Error(0)
}

func (m *mockChannelRepository) ClearCatalogID(ctx context.Context, channelID string) error {
	args := m.Called(ctx, channelID)
	return args.Error(0)
}

func (m *mockChannelRepository) List(ctx context.Context, limit, offset int) ([]*model.Channel, error) {
	args := m.Called(ctx, limit, offset)
	channels, _ := args.Get(0).([]*model.Channel)
	return channels, args.Error(1)
}

// mockVideoRepository is a mock implementation of VideoRepository for testing
type mockVideoRepository struct {
	mock.Mock
}

func (m *mockVideoRepository) Upsert(ctx context.Context, video *model.Video) error {
	args := m.Called(ctx, video)
	return args.Error(0)
}

func (m *mockVideoRepository) GetByID(ctx context.Context, id string) (*model.Video, error) {
	args := m.Called(ctx, id)
	video, _ := args.Get(0).(*model.Video)
	return video, args.Error(1)
}

func (m *mockVideoRepository) GetByChannelID(ctx context.Context, channelID string, limit, offset int) ([]*model.Video, error) {
	args := m.Called(ctx, channelID, limit, offset)
	videos, _ := args.Get(0).([]*model.Video)
	return videos, args.Error(1)
}

func (m *mockVideoRepository) List(ctx context.Context, limit, offset int) ([]*model.Video, error) {
	args := m.Called(ctx, limit, offset)
	videos, _ := args.Get(0).([]*model.Video)
	return videos, args.Error(1)
}

// mockYouTubeClient is a mock implementation of youtube.Client for testing
type mockYouTubeClient struct {
	mock.Mock
}

func (m *mockYouTubeClient) ResolveHandle(ctx context.Context, handle string) (*youtube.ChannelInfo, error) {
	args := m.Called(ctx, handle)
	info, _ := args.Get(0).(*youtube.ChannelInfo)
	return info, args.Error(1)
}

func (m *mockYouTubeClient) ResolveCatalogID(ctx context.Context, channelID string) (string, error) {
	args := m.Called(ctx, channelID)
	return args.String(0), args.Error(1)
}

func (m *mockYouTubeClient) ListVideoIDs(ctx context.Context, catalogID string, maxResults int) ([]string, error) {
	args := m.Called(ctx, catalogID, maxResults)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *mockYouTubeClient) FetchDetails(ctx context.Context, videoIDs []string) (map[string]*ytapi.Video, error) {
	args := m.Called(ctx, videoIDs)
	details, _ := args.Get(0).(map[string]*ytapi.Video)
	return details, args.Error(1)
}
