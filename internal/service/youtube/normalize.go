package youtube

import (
	"time"

	ytapi "google.golang.org/api/youtube/v3"

	apperrors "github.com/paulsundquist/yt-aggregator/internal/errors"
	"github.com/paulsundquist/yt-aggregator/internal/model"
)

// Normalize maps an API video onto the persisted record. Missing counters
// become 0, a missing description becomes "", and the category comes from
// the owning channel rather than the platform.
func Normalize(raw *ytapi.Video, channelID string, category *string) (*model.Video, error) {
	if raw == nil || raw.Id == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArg, "video record has no id")
	}
	if raw.Snippet == nil {
		return nil, apperrors.New(apperrors.CodeInvalidArg, "video "+raw.Id+" has no snippet")
	}

	publishedAt, err := time.Parse(time.RFC3339, raw.Snippet.PublishedAt)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidArg, "video "+raw.Id+" has an invalid publishedAt")
	}

	video := &model.Video{
		ID:           raw.Id,
		ChannelID:    channelID,
		Title:        raw.Snippet.Title,
		Description:  raw.Snippet.Description,
		PublishedAt:  publishedAt.UTC(),
		ThumbnailURL: thumbnailURL(raw.Snippet.Thumbnails),
	}
	if category != nil {
		c := *category
		video.Category = &c
	}
	if raw.Statistics != nil {
		video.ViewCount = int64(raw.Statistics.ViewCount)
		video.LikeCount = int64(raw.Statistics.LikeCount)
		video.CommentCount = int64(raw.Statistics.CommentCount)
	}
	if raw.ContentDetails != nil {
		video.Duration = raw.ContentDetails.Duration
	}
	return video, nil
}

// thumbnailURL prefers the high resolution thumbnail
func thumbnailURL(t *ytapi.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, thumb := range []*ytapi.Thumbnail{t.High, t.Medium, t.Default} {
		if thumb != nil && thumb.Url != "" {
			return thumb.Url
		}
	}
	return ""
}
