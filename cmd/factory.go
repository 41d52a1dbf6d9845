package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/paulsundquist/yt-aggregator/internal/config"
	"github.com/paulsundquist/yt-aggregator/internal/logging"
	"github.com/paulsundquist/yt-aggregator/internal/metrics"
	"github.com/paulsundquist/yt-aggregator/internal/repository"
	"github.com/paulsundquist/yt-aggregator/internal/runlock"
	"github.com/paulsundquist/yt-aggregator/internal/service/channelsync"
	"github.com/paulsundquist/yt-aggregator/internal/service/youtube"
)

// deps bundles the collaborators a command needs for one invocation
type deps struct {
	cfg      *config.Config
	logger   zerolog.Logger
	channels repository.ChannelRepository
	videos   repository.VideoRepository
	sync     channelsync.Service
	metrics  *metrics.Metrics
	close    func()
}

type depsOptions struct {
	// concurrency overrides sync.concurrency when positive
	concurrency int
	// requireAPIKey fails early when no YouTube API key is configured
	requireAPIKey bool
}

// loadDeps builds deps from configuration. Tests replace it.
var loadDeps = newDeps

func newDeps(ctx context.Context, opts depsOptions) (*deps, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.requireAPIKey && cfg.YouTubeAPIKey == "" {
		return nil, errors.New("YouTube API key is not configured: set YOUTUBE_API_KEY or youtube_api_key")
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	logger := logging.New(level, os.Stderr)
	if logFormat == "console" {
		logger = logging.NewConsole(level, os.Stderr)
	}

	dbPool, err := config.NewDatabasePool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	m := metrics.New()

	yt, err := youtube.NewClient(ctx, youtube.Options{
		APIKey:            cfg.YouTubeAPIKey,
		RequestsPerSecond: cfg.YouTube.RequestsPerSecond,
		MaxInFlight:       cfg.YouTube.MaxInFlight,
		CallTimeout:       cfg.YouTube.CallTimeout,
		Metrics:           m,
		Logger:            logger,
	})
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to create YouTube client: %w", err)
	}

	locker, err := runlock.New(cfg.RedisURL)
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to configure run lock: %w", err)
	}

	concurrency := cfg.Sync.Concurrency
	if opts.concurrency > 0 {
		concurrency = opts.concurrency
	}

	channels := repository.NewChannelRepository(dbPool)
	videos := repository.NewVideoRepository(dbPool)

	svc := channelsync.NewService(channels, videos, yt, logger, channelsync.Options{
		Concurrency: concurrency,
		Metrics:     m,
		Locker:      locker,
		LockTTL:     cfg.Sync.LockTTL,
	})

	return &deps{
		cfg:      cfg,
		logger:   logger,
		channels: channels,
		videos:   videos,
		sync:     svc,
		metrics:  m,
		close: func() {
			if err := locker.Close(); err != nil {
				logger.Warn().Err(err).Msg("failed to close run lock client")
			}
			dbPool.Close()
		},
	}, nil
}
