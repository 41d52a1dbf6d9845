// Package youtube talks to the YouTube Data API v3. Every call is paced by a
// shared rate limiter, bounded by an in-flight semaphore and given its own
// timeout; failures are mapped onto NOT_FOUND or UPSTREAM_UNAVAILABLE.
package youtube

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	apperrors "github.com/paulsundquist/yt-aggregator/internal/errors"
	"github.com/paulsundquist/yt-aggregator/internal/metrics"
)

const (
	// MaxPageSize is the per-call ceiling for playlistItems.list and videos.list
	MaxPageSize = 50

	defaultPageSize = 10
)

// API endpoints, used as metric labels
const (
	endpointChannels      = "channels.list"
	endpointPlaylistItems = "playlistItems.list"
	endpointVideos        = "videos.list"
)

// ChannelInfo is the result of resolving a handle
type ChannelInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	CatalogID   string `json:"catalog_id,omitempty"` // empty when the API omits the uploads playlist
}

// Client is the subset of the YouTube Data API used by the sync pipeline
type Client interface {
	// ResolveHandle maps "@handle" (or "handle") to a channel
	ResolveHandle(ctx context.Context, handle string) (*ChannelInfo, error)

	// ResolveCatalogID looks up the uploads playlist of a known channel
	ResolveCatalogID(ctx context.Context, channelID string) (string, error)

	// ListVideoIDs returns up to maxResults video ids from a playlist, most recent first
	ListVideoIDs(ctx context.Context, catalogID string, maxResults int) ([]string, error)

	// FetchDetails returns metadata keyed by video id; ids the API omits are absent
	FetchDetails(ctx context.Context, videoIDs []string) (map[string]*ytapi.Video, error)
}

// Options configures NewClient
type Options struct {
	APIKey            string
	RequestsPerSecond float64
	MaxInFlight       int
	CallTimeout       time.Duration
	Metrics           *metrics.Metrics
	Logger            zerolog.Logger

	// ClientOptions are passed through to the generated API client
	ClientOptions []option.ClientOption
}

// client implements Client
type client struct {
	service     *ytapi.Service
	limiter     *rate.Limiter
	sem         *semaphore.Weighted
	callTimeout time.Duration
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewClient creates a Client backed by the YouTube Data API v3
func NewClient(ctx context.Context, opts Options) (Client, error) {
	clientOpts := append([]option.ClientOption{}, opts.ClientOptions...)
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	service, err := ytapi.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to create youtube service")
	}

	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	inFlight := opts.MaxInFlight
	if inFlight <= 0 {
		inFlight = 4
	}
	timeout := opts.CallTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &client{
		service:     service,
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		sem:         semaphore.NewWeighted(int64(inFlight)),
		callTimeout: timeout,
		metrics:     opts.Metrics,
		logger:      opts.Logger.With().Str("component", "youtube").Logger(),
	}, nil
}

// do runs one API request under the limiter, the semaphore and a per-call timeout.
// Each request costs one quota unit for the endpoints used here.
func (c *client) do(ctx context.Context, endpoint string, fn func(ctx context.Context) error) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.CodeUpstreamUnavailable, endpoint+": rate limiter wait aborted")
	}
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return apperrors.Wrap(err, apperrors.CodeUpstreamUnavailable, endpoint+": no request slot available")
	}
	defer c.sem.Release(1)

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	start := time.Now()
	err := fn(callCtx)
	c.metrics.ObserveAPICall(endpoint, 1, err)

	c.logger.Debug().
		Str("endpoint", endpoint).
		Dur("duration_ms", time.Since(start)).
		Err(err).
		Msg("youtube api call")

	if err != nil {
		return classifyError(endpoint, err, callCtx)
	}
	return nil
}

// classifyError maps transport and API failures onto the application taxonomy
func classifyError(endpoint string, err error, callCtx context.Context) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		if gErr.Code == http.StatusNotFound {
			return apperrors.Wrap(err, apperrors.CodeNotFound, endpoint+": resource not found")
		}
		return apperrors.Wrap(err, apperrors.CodeUpstreamUnavailable, endpoint+": api returned "+http.StatusText(gErr.Code))
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return apperrors.Wrap(err, apperrors.CodeUpstreamUnavailable, endpoint+": call timed out")
	}
	return apperrors.Wrap(err, apperrors.CodeUpstreamUnavailable, endpoint+": request failed")
}

// ResolveHandle maps a handle to a channel id, display name and, when present, its uploads playlist
func (c *client) ResolveHandle(ctx context.Context, handle string) (*ChannelInfo, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArg, "handle is empty")
	}

	var resp *ytapi.ChannelListResponse
	err := c.do(ctx, endpointChannels, func(ctx context.Context) error {
		var err error
		resp, err = c.service.Channels.List([]string{"snippet", "contentDetails"}).
			ForHandle(handle).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Items) == 0 || resp.Items[0] == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "no channel found for handle @"+handle)
	}

	item := resp.Items[0]
	info := &ChannelInfo{ID: item.Id}
	if item.Snippet != nil {
		info.DisplayName = item.Snippet.Title
	}
	info.CatalogID = uploadsPlaylist(item)
	return info, nil
}

// ResolveCatalogID looks up the uploads playlist of a known channel
func (c *client) ResolveCatalogID(ctx context.Context, channelID string) (string, error) {
	if channelID == "" {
		return "", apperrors.New(apperrors.CodeInvalidArg, "channel id is empty")
	}

	var resp *ytapi.ChannelListResponse
	err := c.do(ctx, endpointChannels, func(ctx context.Context) error {
		var err error
		resp, err = c.service.Channels.List([]string{"contentDetails"}).
			Id(channelID).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return "", err
	}

	if len(resp.Items) == 0 {
		return "", apperrors.New(apperrors.CodeNotFound, "channel not found upstream: "+channelID)
	}

	catalogID := uploadsPlaylist(resp.Items[0])
	if catalogID == "" {
		return "", apperrors.New(apperrors.CodeNotFound, "channel has no uploads playlist: "+channelID)
	}
	return catalogID, nil
}

func uploadsPlaylist(item *ytapi.Channel) string {
	if item == nil || item.ContentDetails == nil || item.ContentDetails.RelatedPlaylists == nil {
		return ""
	}
	return item.ContentDetails.RelatedPlaylists.Uploads
}

// ClampPageSize bounds a requested result count to the API ceiling.
// Non-positive values fall back to the default page size.
func ClampPageSize(maxResults int) int {
	switch {
	case maxResults <= 0:
		return defaultPageSize
	case maxResults > MaxPageSize:
		return MaxPageSize
	default:
		return maxResults
	}
}

// ListVideoIDs returns up to maxResults (clamped to 50) ids from the playlist,
// preserving the API's most-recent-first order
func (c *client) ListVideoIDs(ctx context.Context, catalogID string, maxResults int) ([]string, error) {
	if catalogID == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArg, "catalog id is empty")
	}
	limit := ClampPageSize(maxResults)

	ids := make([]string, 0, limit)
	pageToken := ""
	for {
		var resp *ytapi.PlaylistItemListResponse
		err := c.do(ctx, endpointPlaylistItems, func(ctx context.Context) error {
			call := c.service.PlaylistItems.List([]string{"contentDetails"}).
				PlaylistId(catalogID).
				MaxResults(int64(limit - len(ids))).
				Context(ctx)
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}
			var err error
			resp, err = call.Do()
			return err
		})
		if err != nil {
			return nil, err
		}

		for _, item := range resp.Items {
			if item == nil || item.ContentDetails == nil || item.ContentDetails.VideoId == "" {
				continue
			}
			ids = append(ids, item.ContentDetails.VideoId)
			if len(ids) == limit {
				return ids, nil
			}
		}

		// A short page with a continuation token happens when the API filters
		// private or deleted entries out of the page.
		pageToken = resp.NextPageToken
		if pageToken == "" || len(resp.Items) == 0 {
			return ids, nil
		}
	}
}

// FetchDetails retrieves snippet, contentDetails and statistics for the given ids.
// Ids are requested in chunks of at most 50; ids missing from the response are
// simply absent from the returned map.
func (c *client) FetchDetails(ctx context.Context, videoIDs []string) (map[string]*ytapi.Video, error) {
	details := make(map[string]*ytapi.Video, len(videoIDs))
	for start := 0; start < len(videoIDs); start += MaxPageSize {
		end := min(start+MaxPageSize, len(videoIDs))
		chunk := videoIDs[start:end]

		var resp *ytapi.VideoListResponse
		err := c.do(ctx, endpointVideos, func(ctx context.Context) error {
			var err error
			resp, err = c.service.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
				Id(chunk...).
				Context(ctx).
				Do()
			return err
		})
		if err != nil {
			return nil, err
		}

		for _, video := range resp.Items {
			if video != nil && video.Id != "" {
				details[video.Id] = video
			}
		}
	}
	return details, nil
}
