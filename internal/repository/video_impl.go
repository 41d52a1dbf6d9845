package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/paulsundquist/yt-aggregator/internal/errors"
	"github.com/paulsundquist/yt-aggregator/internal/model"
)

const videoColumns = "video_id, channel_id, title, description, published_at, thumbnail_url, " +
	"view_count, like_count, comment_count, duration, category"

// upsertVideoSQL never rewrites channel_id, published_at or category on conflict
const upsertVideoSQL = `INSERT INTO videos (video_id, channel_id, title, description, published_at, thumbnail_url,
		view_count, like_count, comment_count, duration, category)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (video_id) DO UPDATE SET
		title = EXCLUDED.title,
		description = EXCLUDED.description,
		thumbnail_url = EXCLUDED.thumbnail_url,
		view_count = EXCLUDED.view_count,
		like_count = EXCLUDED.like_count,
		comment_count = EXCLUDED.comment_count,
		duration = EXCLUDED.duration,
		updated_at = now()`

// videoRepository implements VideoRepository using PostgreSQL
type videoRepository struct {
	pool Pool
}

// NewVideoRepository creates a new instance of VideoRepository
func NewVideoRepository(pool Pool) VideoRepository {
	return &videoRepository{
		pool: pool,
	}
}

func scanVideo(row scanner) (*model.Video, error) {
	var video model.Video
	err := row.Scan(
		&video.ID,
		&video.ChannelID,
		&video.Title,
		&video.Description,
		&video.PublishedAt,
		&video.ThumbnailURL,
		&video.ViewCount,
		&video.LikeCount,
		&video.CommentCount,
		&video.Duration,
		&video.Category,
	)
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// Upsert inserts a video or overwrites title, description, counters, thumbnail and duration
func (r *videoRepository) Upsert(ctx context.Context, video *model.Video) error {
	if video.ID == "" || video.ChannelID == "" {
		return apperrors.New(apperrors.CodeInvalidArg, "video id and channel id are required")
	}

	_, err := r.pool.Exec(ctx, upsertVideoSQL,
		video.ID,
		video.ChannelID,
		video.Title,
		video.Description,
		video.PublishedAt,
		video.ThumbnailURL,
		video.ViewCount,
		video.LikeCount,
		video.CommentCount,
		video.Duration,
		video.Category,
	)
	if err != nil {
		return storeWriteError(err, "failed to upsert video "+video.ID)
	}
	return nil
}

// GetByID retrieves a video by its ID
func (r *videoRepository) GetByID(ctx context.Context, id string) (*model.Video, error) {
	sql := "SELECT " + videoColumns + " FROM videos WHERE video_id = $1"
	video, err := scanVideo(r.pool.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(err, apperrors.CodeNotFound, "video not found: "+id)
		}
		return nil, handlePostgreSQLError(err, "failed to get video")
	}
	return video, nil
}

// GetByChannelID retrieves a channel's videos, newest first
func (r *videoRepository) GetByChannelID(ctx context.Context, channelID string, limit, offset int) ([]*model.Video, error) {
	sql := "SELECT " + videoColumns + " FROM videos WHERE channel_id = $1 ORDER BY published_at DESC, video_id LIMIT $2 OFFSET $3"
	return r.queryVideos(ctx, "failed to get videos by channel ID", sql, channelID, limit, offset)
}

// List retrieves videos across all channels, newest first
func (r *videoRepository) List(ctx context.Context, limit, offset int) ([]*model.Video, error) {
	sql := "SELECT " + videoColumns + " FROM videos ORDER BY published_at DESC, video_id LIMIT $1 OFFSET $2"
	return r.queryVideos(ctx, "failed to list videos", sql, limit, offset)
}

func (r *videoRepository) queryVideos(ctx context.Context, operation, sql string, args ...any) ([]*model.Video, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, handlePostgreSQLError(err, operation)
	}
	defer rows.Close()

	videos := []*model.Video{}
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to scan video row")
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to iterate video rows")
	}

	return videos, nil
}
