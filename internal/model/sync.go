package model

import "time"

// SyncError is a failure recorded against a single channel during a sync run
type SyncError struct {
	ChannelID string `json:"channel_id"`
	Message   string `json:"message"`
}

// SyncResult summarizes one sync invocation. It is never persisted.
type SyncResult struct {
	RunID             string        `json:"run_id"`
	StartedAt         time.Time     `json:"started_at"`
	Duration          time.Duration `json:"duration_ns"`
	ChannelsProcessed int           `json:"channels_processed"`
	VideosUpserted    int           `json:"videos_upserted"`
	Errors            []SyncError   `json:"errors"`
}

// Failed reports whether any channel or record failed during the run
func (r *SyncResult) Failed() bool {
	return len(r.Errors) > 0
}
