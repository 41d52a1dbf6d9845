package youtube

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ytapi "google.golang.org/api/youtube/v3"

	apperrors "github.com/paulsundquist/yt-aggregator/internal/errors"
)

// decodeVideo builds an API record from raw JSON so absent fields stay absent
func decodeVideo(t *testing.T, raw string) *ytapi.Video {
	t.Helper()
	var v ytapi.Video
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return &v
}

func TestNormalize(t *testing.T) {
	category := "fitness"

	tests := []struct {
		name  string
		raw   string
		check func(t *testing.T, raw *ytapi.Video)
	}{
		{
			name: "full record",
			raw: `{
				"id": "vid1",
				"snippet": {
					"title": "Morning Yoga",
					"description": "20 minute flow",
					"publishedAt": "2024-02-03T04:05:06+09:00",
					"thumbnails": {
						"default": {"url": "https://i.ytimg.com/vi/vid1/default.jpg"},
						"high": {"url": "https://i.ytimg.com/vi/vid1/hqdefault.jpg"}
					}
				},
				"statistics": {"viewCount": "1200", "likeCount": "45", "commentCount": "6"},
				"contentDetails": {"duration": "PT20M"}
			}`,
			check: func(t *testing.T, raw *ytapi.Video) {
				v, err := Normalize(raw, "UC_FIT", &category)
				require.NoError(t, err)
				assert.Equal(t, "vid1", v.ID)
				assert.Equal(t, "UC_FIT", v.ChannelID)
				assert.Equal(t, "Morning Yoga", v.Title)
				assert.Equal(t, "20 minute flow", v.Description)
				assert.Equal(t, time.Date(2024, 2, 2, 19, 5, 6, 0, time.UTC), v.PublishedAt)
				assert.Equal(t, time.UTC, v.PublishedAt.Location())
				assert.Equal(t, "https://i.ytimg.com/vi/vid1/hqdefault.jpg", v.ThumbnailURL)
				assert.Equal(t, int64(1200), v.ViewCount)
				assert.Equal(t, int64(45), v.LikeCount)
				assert.Equal(t, int64(6), v.CommentCount)
				assert.Equal(t, "PT20M", v.Duration)
				require.NotNil(t, v.Category)
				assert.Equal(t, "fitness", *v.Category)
			},
		},
		{
			name: "missing likeCount and description",
			raw: `{
				"id": "vid2",
				"snippet": {"title": "No likes shown", "publishedAt": "2024-01-01T00:00:00Z"},
				"statistics": {"viewCount": "10", "commentCount": "1"}
			}`,
			check: func(t *testing.T, raw *ytapi.Video) {
				v, err := Normalize(raw, "UC_X", nil)
				require.NoError(t, err)
				assert.Equal(t, int64(0), v.LikeCount)
				assert.Equal(t, int64(10), v.ViewCount)
				assert.Equal(t, "", v.Description)
				assert.Equal(t, "", v.ThumbnailURL)
				assert.Equal(t, "", v.Duration)
				assert.Nil(t, v.Category)
			},
		},
		{
			name: "no statistics block at all",
			raw:  `{"id": "vid3", "snippet": {"title": "t", "publishedAt": "2024-01-01T00:00:00Z"}}`,
			check: func(t *testing.T, raw *ytapi.Video) {
				v, err := Normalize(raw, "UC_X", nil)
				require.NoError(t, err)
				assert.Zero(t, v.ViewCount)
				assert.Zero(t, v.LikeCount)
				assert.Zero(t, v.CommentCount)
			},
		},
		{
			name: "medium thumbnail when high is missing",
			raw: `{"id": "vid4", "snippet": {"title": "t", "publishedAt": "2024-01-01T00:00:00Z",
				"thumbnails": {"medium": {"url": "https://i.ytimg.com/vi/vid4/mqdefault.jpg"}}}}`,
			check: func(t *testing.T, raw *ytapi.Video) {
				v, err := Normalize(raw, "UC_X", nil)
				require.NoError(t, err)
				assert.Equal(t, "https://i.ytimg.com/vi/vid4/mqdefault.jpg", v.ThumbnailURL)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, decodeVideo(t, tt.raw))
		})
	}
}

func TestNormalize_CategoryIsCopied(t *testing.T) {
	category := "music"
	raw := decodeVideo(t, `{"id": "vid1", "snippet": {"title": "t", "publishedAt": "2024-01-01T00:00:00Z"}}`)

	v, err := Normalize(raw, "UC_X", &category)
	require.NoError(t, err)

	category = "changed"
	assert.Equal(t, "music", *v.Category)
}

func TestNormalize_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  *ytapi.Video
	}{
		{name: "nil record", raw: nil},
		{name: "missing id", raw: &ytapi.Video{Snippet: &ytapi.VideoSnippet{PublishedAt: "2024-01-01T00:00:00Z"}}},
		{name: "missing snippet", raw: &ytapi.Video{Id: "vid1"}},
		{name: "bad timestamp", raw: &ytapi.Video{Id: "vid1", Snippet: &ytapi.VideoSnippet{PublishedAt: "yesterday"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Normalize(tt.raw, "UC_X", nil)
			require.Error(t, err)
			assert.Nil(t, v)
			assert.Equal(t, apperrors.CodeInvalidArg, apperrors.CodeOf(err))
		})
	}
}
