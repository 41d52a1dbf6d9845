// Package metrics holds the Prometheus collectors for sync runs. A batch job
// has no scrape endpoint, so collectors live on a private registry that is
// pushed to a Pushgateway at the end of each run.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/paulsundquist/yt-aggregator/internal/model"
)

// Metrics holds all Prometheus collectors for the sync pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ChannelsProcessed prometheus.Counter
	ChannelsFailed    prometheus.Counter
	VideosUpserted    prometheus.Counter
	SyncErrors        prometheus.Counter
	APICalls          *prometheus.CounterVec
	QuotaUnits        *prometheus.CounterVec
	RunDuration       prometheus.Histogram
	LastRunTimestamp  prometheus.Gauge
}

// New creates and registers all collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ChannelsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ytagg_channels_processed_total",
			Help: "Channels that completed a sync without a channel-level failure.",
		}),
		ChannelsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ytagg_channels_failed_total",
			Help: "Channels whose sync aborted with a channel-level failure.",
		}),
		VideosUpserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ytagg_videos_upserted_total",
			Help: "Video records written to the store.",
		}),
		SyncErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ytagg_sync_errors_total",
			Help: "Error entries reported in sync results, channel and record level.",
		}),
		APICalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ytagg_youtube_api_calls_total",
			Help: "YouTube Data API calls, by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		QuotaUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ytagg_youtube_quota_units_total",
			Help: "Estimated YouTube Data API quota units consumed, by endpoint.",
		}, []string{"endpoint"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ytagg_sync_run_duration_seconds",
			Help:    "Wall-clock duration of sync runs.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ytagg_sync_last_run_timestamp_seconds",
			Help: "Unix time at which the last sync run finished.",
		}),
	}

	m.registry.MustRegister(
		m.ChannelsProcessed,
		m.ChannelsFailed,
		m.VideosUpserted,
		m.SyncErrors,
		m.APICalls,
		m.QuotaUnits,
		m.RunDuration,
		m.LastRunTimestamp,
	)
	return m
}

// Registry exposes the registry backing m
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveAPICall counts one API call and the quota units it cost.
// Failed calls are still charged since YouTube bills the request.
func (m *Metrics) ObserveAPICall(endpoint string, units int, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.APICalls.WithLabelValues(endpoint, outcome).Inc()
	m.QuotaUnits.WithLabelValues(endpoint).Add(float64(units))
}

// ObserveChannel records the outcome of one channel's pipeline
func (m *Metrics) ObserveChannel(failed bool, upserted int) {
	if m == nil {
		return
	}
	if failed {
		m.ChannelsFailed.Inc()
	} else {
		m.ChannelsProcessed.Inc()
	}
	m.VideosUpserted.Add(float64(upserted))
}

// ObserveRun records totals for a finished run
func (m *Metrics) ObserveRun(result *model.SyncResult) {
	if m == nil || result == nil {
		return
	}
	m.SyncErrors.Add(float64(len(result.Errors)))
	m.RunDuration.Observe(result.Duration.Seconds())
	m.LastRunTimestamp.Set(float64(result.StartedAt.Add(result.Duration).Unix()))
}

// Push sends the registry to a Pushgateway under the given job, grouped by selection
func (m *Metrics) Push(ctx context.Context, gatewayURL, job, selection string) error {
	if m == nil || gatewayURL == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := push.New(gatewayURL, job).
		Gatherer(m.registry).
		Grouping("selection", selection).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
