package model

import (
	"fmt"
	"strings"
	"time"
)

// ScheduleTier partitions channels across periodic sync runs
type ScheduleTier string

const (
	ScheduleHourly ScheduleTier = "hourly"
	ScheduleDaily  ScheduleTier = "daily"
	ScheduleWeekly ScheduleTier = "weekly"
)

// ParseScheduleTier validates a tier name (case-insensitive)
func ParseScheduleTier(s string) (ScheduleTier, error) {
	tier := ScheduleTier(strings.ToLower(strings.TrimSpace(s)))
	if !tier.Valid() {
		return "", fmt.Errorf("invalid schedule %q: must be 'hourly', 'daily', or 'weekly'", s)
	}
	return tier, nil
}

// Valid reports whether t is one of the known tiers
func (t ScheduleTier) Valid() bool {
	switch t {
	case ScheduleHourly, ScheduleDaily, ScheduleWeekly:
		return true
	}
	return false
}

func (t ScheduleTier) String() string {
	return string(t)
}

// Channel represents a tracked YouTube channel
type Channel struct {
	ID        string        `json:"id" db:"channel_id"`
	Name      string        `json:"name" db:"channel_name"`
	Category  *string       `json:"category,omitempty" db:"channel_category"`
	Schedule  *ScheduleTier `json:"schedule,omitempty" db:"schedule"`
	CatalogID *string       `json:"catalog_id,omitempty" db:"uploads_playlist_id"` // uploads playlist, cached on first resolution
	Active    bool          `json:"active" db:"is_active"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// Video represents YouTube video metadata as persisted
type Video struct {
	ID           string    `json:"id" db:"video_id"`
	ChannelID    string    `json:"channel_id" db:"channel_id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	PublishedAt  time.Time `json:"published_at" db:"published_at"`
	ThumbnailURL string    `json:"thumbnail_url" db:"thumbnail_url"`
	ViewCount    int64     `json:"view_count" db:"view_count"`
	LikeCount    int64     `json:"like_count" db:"like_count"`
	CommentCount int64     `json:"comment_count" db:"comment_count"`
	Duration     string    `json:"duration" db:"duration"` // ISO 8601, e.g. PT4M13S
	Category     *string   `json:"category,omitempty" db:"category"`
}
