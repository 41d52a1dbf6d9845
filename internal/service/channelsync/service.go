// Package channelsync drives the channel/video sync pipeline: select channels,
// resolve and cache each uploads playlist, list recent video ids, fetch their
// metadata and upsert the normalized records. Failures are collected per
// channel and never abort the rest of the batch.
package channelsync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/paulsundquist/yt-aggregator/internal/errors"
	"github.com/paulsundquist/yt-aggregator/internal/metrics"
	"github.com/paulsundquist/yt-aggregator/internal/model"
	"github.com/paulsundquist/yt-aggregator/internal/repository"
	"github.com/paulsundquist/yt-aggregator/internal/runlock"
	"github.com/paulsundquist/yt-aggregator/internal/service/youtube"
)

// DefaultLockTTL bounds how long a crashed run can block the next one
const DefaultLockTTL = 30 * time.Minute

// Service is the entry point used by the CLI
type Service interface {
	// RunSync syncs the selected channels. Only a failure to load the
	// selection is returned as an error; every per-channel and per-record
	// failure is reported in the result.
	RunSync(ctx context.Context, sel Selection, maxResults int) (*model.SyncResult, error)

	// RegisterChannel creates or updates a tracked channel from an id or "@handle"
	RegisterChannel(ctx context.Context, req RegisterRequest) (*model.Channel, error)
}

// RegisterRequest describes a channel to start tracking
type RegisterRequest struct {
	IDOrHandle string
	Name       string // required for raw ids; defaults to the display name for handles
	Category   string
	Schedule   string
}

// Options tunes a Service. The zero value runs channels sequentially
// without metrics or locking.
type Options struct {
	Concurrency int
	Metrics     *metrics.Metrics
	Locker      runlock.Locker
	LockTTL     time.Duration

	now func() time.Time
}

// service implements Service
type service struct {
	channels repository.ChannelRepository
	videos   repository.VideoRepository
	youtube  youtube.Client
	logger   zerolog.Logger

	concurrency int
	metrics     *metrics.Metrics
	locker      runlock.Locker
	lockTTL     time.Duration
	now         func() time.Time
}

// NewService creates a Service from its collaborators
func NewService(
	channels repository.ChannelRepository,
	videos repository.VideoRepository,
	yt youtube.Client,
	logger zerolog.Logger,
	opts Options,
) Service {
	s := &service{
		channels:    channels,
		videos:      videos,
		youtube:     yt,
		logger:      logger.With().Str("component", "channelsync").Logger(),
		concurrency: opts.Concurrency,
		metrics:     opts.Metrics,
		locker:      opts.Locker,
		lockTTL:     opts.LockTTL,
		now:         opts.now,
	}
	if s.concurrency < 1 {
		s.concurrency = 1
	}
	if s.locker == nil {
		s.locker = runlock.Noop{}
	}
	if s.lockTTL <= 0 {
		s.lockTTL = DefaultLockTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// channelOutcome is the result of one channel's pipeline, folded into the SyncResult
type channelOutcome struct {
	channelID string
	completed bool
	upserted  int
	errors    []model.SyncError
}

func (o *channelOutcome) addError(format string, args ...any) {
	o.errors = append(o.errors, model.SyncError{
		ChannelID: o.channelID,
		Message:   fmt.Sprintf(format, args...),
	})
}

// RunSync syncs every channel in the selection
func (s *service) RunSync(ctx context.Context, sel Selection, maxResults int) (*model.SyncResult, error) {
	if sel.mode == modeScheduleTier && !sel.tier.Valid() {
		return nil, apperrors.New(apperrors.CodeInvalidArg, "invalid schedule tier: "+string(sel.tier))
	}
	if sel.mode == modeChannelID && strings.TrimSpace(sel.channelID) == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArg, "channel id is empty")
	}

	result := &model.SyncResult{
		RunID:     uuid.NewString(),
		StartedAt: s.now().UTC(),
		Errors:    []model.SyncError{},
	}
	logger := s.logger.With().
		Str("run_id", result.RunID).
		Str("selection", sel.String()).
		Logger()

	release, err := s.locker.Acquire(ctx, "sync:"+sel.String(), s.lockTTL)
	switch {
	case errors.Is(err, runlock.ErrLocked):
		return nil, apperrors.Wrap(err, apperrors.CodeConflict, "a sync for "+sel.String()+" is already running")
	case err != nil:
		logger.Warn().Err(err).Msg("run lock unavailable, continuing without it")
	default:
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				logger.Warn().Err(err).Msg("failed to release run lock")
			}
		}()
	}

	channels, err := s.selectChannels(ctx, sel)
	if err != nil {
		logger.Error().Err(err).Msg("channel selection failed")
		return nil, err
	}
	logger.Info().Int("channels", len(channels)).Int("max_results", maxResults).Msg("sync started")

	for _, outcome := range s.syncChannels(ctx, channels, maxResults, logger) {
		if outcome.completed {
			result.ChannelsProcessed++
		}
		result.VideosUpserted += outcome.upserted
		result.Errors = append(result.Errors, outcome.errors...)
	}

	result.Duration = s.now().Sub(result.StartedAt)
	s.metrics.ObserveRun(result)

	logger.Info().
		Int("channels_processed", result.ChannelsProcessed).
		Int("videos_upserted", result.VideosUpserted).
		Int("errors", len(result.Errors)).
		Dur("duration_ms", result.Duration).
		Msg("sync finished")

	return result, nil
}

// selectChannels loads the channel set. Store faults become SELECTION_FAILED;
// an explicit id that is missing or inactive is an empty selection.
func (s *service) selectChannels(ctx context.Context, sel Selection) ([]*model.Channel, error) {
	var (
		channels []*model.Channel
		err      error
	)

	switch sel.mode {
	case modeScheduleTier:
		channels, err = s.channels.ListActiveBySchedule(ctx, sel.tier)
	case modeChannelID:
		var channel *model.Channel
		channel, err = s.channels.GetActiveByID(ctx, sel.channelID)
		if apperrors.HasCode(err, apperrors.CodeNotFound) {
			return []*model.Channel{}, nil
		}
		if err == nil {
			channels = []*model.Channel{channel}
		}
	default:
		channels, err = s.channels.ListActive(ctx)
	}

	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeSelectionFailed, "failed to select channels for "+sel.String())
	}
	return channels, nil
}

// syncChannels runs the per-channel pipeline and returns outcomes in selection order
func (s *service) syncChannels(ctx context.Context, channels []*model.Channel, maxResults int, logger zerolog.Logger) []channelOutcome {
	outcomes := make([]channelOutcome, len(channels))

	if s.concurrency == 1 {
		for i, channel := range channels {
			outcomes[i] = s.syncChannel(ctx, channel, maxResults, logger)
		}
		return outcomes
	}

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, channel := range channels {
		g.Go(func() error {
			outcomes[i] = s.syncChannel(ctx, channel, maxResults, logger)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// syncChannel never panics or returns an error: every fault lands in the outcome
func (s *service) syncChannel(ctx context.Context, channel *model.Channel, maxResults int, logger zerolog.Logger) (out channelOutcome) {
	out.channelID = channel.ID
	logger = logger.With().Str("channel_id", channel.ID).Logger()

	defer func() {
		if r := recover(); r != nil {
			out.completed = false
			out.addError("panic during sync: %v", r)
			logger.Error().Interface("panic", r).Msg("channel sync panicked")
		}
		s.metrics.ObserveChannel(!out.completed, out.upserted)
	}()

	catalogID, ok := s.catalogID(ctx, channel, &out, logger)
	if !ok {
		return out
	}

	ids, err := s.youtube.ListVideoIDs(ctx, catalogID, maxResults)
	if err != nil {
		out.addError("could not list videos: %v", err)
		logger.Warn().Err(err).Msg("listing videos failed")
		return out
	}
	if len(ids) == 0 {
		out.completed = true
		logger.Info().Msg("no videos found")
		return out
	}

	details, err := s.youtube.FetchDetails(ctx, ids)
	if err != nil {
		out.addError("could not fetch video details: %v", err)
		logger.Warn().Err(err).Msg("fetching video details failed")
		return out
	}

	for _, id := range ids {
		raw, found := details[id]
		if !found {
			logger.Debug().Str("video_id", id).Msg("video missing from details response")
			continue
		}

		video, err := youtube.Normalize(raw, channel.ID, channel.Category)
		if err != nil {
			out.addError("video %s: %v", id, err)
			continue
		}
		if err := s.videos.Upsert(ctx, video); err != nil {
			out.addError("video %s: %v", id, err)
			continue
		}
		out.upserted++
	}

	out.completed = true
	logger.Info().
		Int("videos_found", len(ids)).
		Int("videos_upserted", out.upserted).
		Int("record_errors", len(out.errors)).
		Msg("channel synced")
	return out
}

// catalogID returns the cached uploads playlist or resolves and caches it.
// A failed cache write is recorded but does not stop the channel.
func (s *service) catalogID(ctx context.Context, channel *model.Channel, out *channelOutcome, logger zerolog.Logger) (string, bool) {
	if channel.CatalogID != nil && *channel.CatalogID != "" {
		return *channel.CatalogID, true
	}

	catalogID, err := s.youtube.ResolveCatalogID(ctx, channel.ID)
	if err != nil {
		out.addError("could not resolve catalog: %v", err)
		logger.Warn().Err(err).Msg("catalog resolution failed")
		return "", false
	}

	if err := s.channels.CacheCatalogID(ctx, channel.ID, catalogID); err != nil {
		out.addError("could not cache catalog %s: %v", catalogID, err)
		logger.Warn().Err(err).Str("catalog_id", catalogID).Msg("caching catalog id failed")
	} else {
		channel.CatalogID = &catalogID
	}
	return catalogID, true
}

// RegisterChannel creates or updates a tracked channel from an id or "@handle"
func (s *service) RegisterChannel(ctx context.Context, req RegisterRequest) (*model.Channel, error) {
	input := strings.TrimSpace(req.IDOrHandle)
	if input == "" || input == "@" {
		return nil, apperrors.New(apperrors.CodeInvalidArg, "channel id or handle is required")
	}

	channel := &model.Channel{Name: strings.TrimSpace(req.Name)}
	if category := strings.TrimSpace(req.Category); category != "" {
		channel.Category = &category
	}
	if req.Schedule != "" {
		tier, err := model.ParseScheduleTier(req.Schedule)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInvalidArg, "invalid channel schedule")
		}
		channel.Schedule = &tier
	}

	var catalogID string
	if strings.HasPrefix(input, "@") {
		info, err := s.youtube.ResolveHandle(ctx, input)
		if err != nil {
			return nil, err
		}
		channel.ID = info.ID
		if channel.Name == "" {
			channel.Name = info.DisplayName
		}
		catalogID = info.CatalogID
	} else {
		if channel.Name == "" {
			return nil, apperrors.New(apperrors.CodeInvalidArg, "a name is required when registering by channel id")
		}
		channel.ID = input
	}

	if err := s.channels.Upsert(ctx, channel); err != nil {
		return nil, err
	}

	if catalogID != "" {
		if err := s.channels.CacheCatalogID(ctx, channel.ID, catalogID); err != nil {
			s.logger.Warn().Err(err).Str("channel_id", channel.ID).Msg("caching catalog id failed")
		} else {
			channel.CatalogID = &catalogID
		}
	}

	s.logger.Info().
		Str("channel_id", channel.ID).
		Str("name", channel.Name).
		Msg("channel registered")
	return channel, nil
}
