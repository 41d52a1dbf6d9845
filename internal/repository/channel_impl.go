package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/paulsundquist/yt-aggregator/internal/errors"
	"github.com/paulsundquist/yt-aggregator/internal/model"
)

// Pool interface for abstracting pgx connection pool
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

const channelColumns = "channel_id, channel_name, channel_category, schedule, uploads_playlist_id, is_active, updated_at"

// channelRepository implements ChannelRepository using PostgreSQL
type channelRepository struct {
	pool Pool
}

// NewChannelRepository creates a new instance of ChannelRepository
func NewChannelRepository(pool Pool) ChannelRepository {
	return &channelRepository{
		pool: pool,
	}
}

// scanner is satisfied by both pgx.Row and pgx.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanChannel(row scanner) (*model.Channel, error) {
	var (
		channel  model.Channel
		schedule *string
	)
	err := row.Scan(
		&channel.ID,
		&channel.Name,
		&channel.Category,
		&schedule,
		&channel.CatalogID,
		&channel.Active,
		&channel.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if schedule != nil {
		tier := model.ScheduleTier(*schedule)
		channel.Schedule = &tier
	}
	return &channel, nil
}

func (r *channelRepository) queryChannels(ctx context.Context, operation, sql string, args ...any) ([]*model.Channel, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, handlePostgreSQLError(err, operation)
	}
	defer rows.Close()

	channels := []*model.Channel{}
	for rows.Next() {
		channel, err := scanChannel(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to scan channel row")
		}
		channels = append(channels, channel)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to iterate channel rows")
	}

	return channels, nil
}

func (r *channelRepository) getChannel(ctx context.Context, operation, sql, id string) (*model.Channel, error) {
	channel, err := scanChannel(r.pool.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(err, apperrors.CodeNotFound, "channel not found: "+id)
		}
		return nil, handlePostgreSQLError(err, operation)
	}
	return channel, nil
}

// ListActive retrieves every channel with the active flag set
func (r *channelRepository) ListActive(ctx context.Context) ([]*model.Channel, error) {
	sql := "SELECT " + channelColumns + " FROM channels WHERE is_active = TRUE ORDER BY channel_id"
	return r.queryChannels(ctx, "failed to list active channels", sql)
}

// ListActiveBySchedule retrieves active channels assigned to the given tier
func (r *channelRepository) ListActiveBySchedule(ctx context.Context, tier model.ScheduleTier) ([]*model.Channel, error) {
	if !tier.Valid() {
		return nil, apperrors.New(apperrors.CodeInvalidArg, "invalid schedule tier: "+tier.String())
	}
	sql := "SELECT " + channelColumns + " FROM channels WHERE is_active = TRUE AND schedule = $1 ORDER BY channel_id"
	return r.queryChannels(ctx, "failed to list channels by schedule", sql, string(tier))
}

// GetActiveByID retrieves a single active channel
func (r *channelRepository) GetActiveByID(ctx context.Context, id string) (*model.Channel, error) {
	sql := "SELECT " + channelColumns + " FROM channels WHERE channel_id = $1 AND is_active = TRUE"
	return r.getChannel(ctx, "failed to get active channel", sql, id)
}

// GetByID retrieves a channel by its ID
func (r *channelRepository) GetByID(ctx context.Context, id string) (*model.Channel, error) {
	sql := "SELECT " + channelColumns + " FROM channels WHERE channel_id = $1"
	return r.getChannel(ctx, "failed to get channel", sql, id)
}

// Upsert inserts a channel or overwrites its mutable fields, always reactivating it
func (r *channelRepository) Upsert(ctx context.Context, channel *model.Channel) error {
	if channel.ID == "" {
		return apperrors.New(apperrors.CodeInvalidArg, "channel id is required")
	}

	var schedule *string
	if channel.Schedule != nil {
		s := string(*channel.Schedule)
		schedule = &s
	}

	sql := `INSERT INTO channels (channel_id, channel_name, channel_category, schedule, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (channel_id) DO UPDATE SET
			channel_name = EXCLUDED.channel_name,
			channel_category = EXCLUDED.channel_category,
			schedule = EXCLUDED.schedule,
			is_active = TRUE,
			updated_at = now()`
	_, err := r.pool.Exec(ctx, sql, channel.ID, channel.Name, channel.Category, schedule)
	if err != nil {
		return storeWriteError(err, "failed to upsert channel")
	}

	channel.Active = true
	return nil
}

// CacheCatalogID stores the resolved uploads playlist for a channel
func (r *channelRepository) CacheCatalogID(ctx context.Context, channelID, catalogID string) error {
	if catalogID == "" {
		return apperrors.New(apperrors.CodeInvalidArg, "catalog id is required")
	}
	sql := "UPDATE channels SET uploads_playlist_id = $2, updated_at = now() WHERE channel_id = $1"
	tag, err := r.pool.Exec(ctx, sql, channelID, catalogID)
	if err != nil {
		return storeWriteError(err, "failed to cache catalog id")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.New(apperrors.CodeNotFound, "channel not found: "+channelID)
	}
	return nil
}

// ClearCatalogID drops a cached uploads playlist
func (r *channelRepository) ClearCatalogID(ctx context.Context, channelID string) error {
	sql := "UPDATE channels SET uploads_playlist_id = NULL, updated_at = now() WHERE channel_id = $1"
	tag, err := r.pool.Exec(ctx, sql, channelID)
	if err != nil {
		return storeWriteError(err, "failed to clear catalog id")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.New(apperrors.CodeNotFound, "channel not found: "+channelID)
	}
	return nil
}

// List retrieves channels with pagination
func (r *channelRepository) List(ctx context.Context, limit, offset int) ([]*model.Channel, error) {
	sql := "SELECT " + channelColumns + " FROM channels ORDER BY channel_id LIMIT $1 OFFSET $2"
	return r.queryChannels(ctx, "failed to list channels", sql, limit, offset)
}
