package parkcache

import (
	"context"
	"errors"

	"github.com/mwhitt/parkcache/internal/cache"
	"github.com/mwhitt/parkcache/internal/config"
	"github.com/mwhitt/parkcache/internal/metrics"
	"github.com/mwhitt/parkcache/internal/metrics/datadog"
	"github.com/mwhitt/parkcache/internal/types"
)

// New creates a cache with default configuration.
func New(opts ...CoordinatorOption) (Cache, error) {
	cfg := config.DefaultConfig()
	return NewFromConfig(cfg, opts...)
}

// NewFromConfig creates a cache from configuration.
func NewFromConfig(cfg *config.Config, opts ...CoordinatorOption) (Cache, error) {
	coordOpts := &CoordinatorOptions{}
	for _, opt := range opts {
		opt(coordOpts)
	}

	c := &client{}

	// Unless the caller supplied their own recorder, wire the built-in
	// tracker, with DataDog publishing layered on when enabled.
	if coordOpts.Metrics == nil && cfg.Metrics.Enabled {
		c.tracker = metrics.NewTracker()
		coordOpts.Metrics = c.tracker

		if cfg.Metrics.DataDog.Enabled {
			publisher, err := datadog.NewPublisher(&cfg.Metrics.DataDog, nil)
			if err != nil {
				return nil, err
			}
			c.publisher = publisher
			coordOpts.Metrics = metrics.NewPublishingTracker(c.tracker, publisher)
		}
	}

	coordinator, err := cache.NewCoordinator(cfg, coordOpts)
	if err != nil {
		if c.publisher != nil {
			_ = c.publisher.Close()
		}
		return nil, err
	}
	c.Coordinator = coordinator

	if c.publisher != nil && cfg.Metrics.PublishInterval > 0 {
		c.background = metrics.NewBackgroundPublisher(
			c.publisher,
			cfg.Metrics.PublishInterval,
			c.healthMetrics,
			nil,
		)
		c.background.Start(context.Background())
	}

	return c, nil
}

// NewFromFile creates a cache from a JSON config file, applying
// PARKCACHE_* environment overrides.
func NewFromFile(path string, opts ...CoordinatorOption) (Cache, error) {
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(cfg, opts...)
}

// NewMemoryOnly creates a cache using only the in-process tier.
func NewMemoryOnly(opts ...CoordinatorOption) (Cache, error) {
	cfg := config.DefaultConfig()
	cfg.Redis.Enabled = false
	cfg.Defaults.UseRedis = false
	return NewFromConfig(cfg, opts...)
}

// Config returns a default configuration that can be modified before
// creating a cache.
func Config() *config.Config {
	return config.DefaultConfig()
}

// TestConfig returns a configuration suitable for unit tests.
func TestConfig() *config.Config {
	return config.ForTesting()
}

// client is the concrete Cache: the coordinator plus the metrics pipeline's
// lifecycle.
type client struct {
	*cache.Coordinator

	tracker    *metrics.Tracker
	publisher  types.Publisher
	background *metrics.BackgroundPublisher
}

// Metrics returns a snapshot of the built-in tracker. It is empty when a
// custom MetricsRecorder was supplied at construction.
func (c *client) Metrics() MetricsSnapshot {
	if c.tracker == nil {
		return MetricsSnapshot{}
	}
	return c.tracker.Snapshot()
}

// Close stops the metrics pipeline, then shuts down the coordinator.
func (c *client) Close() error {
	if c.background != nil {
		c.background.Stop()
	}

	var errs []error

	if err := c.Coordinator.Close(); err != nil {
		errs = append(errs, err)
	}
	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (c *client) healthMetrics() *types.PublisherHealthMetrics {
	report, err := c.Coordinator.Health(context.Background())
	if err != nil {
		return nil
	}

	snapshot := c.Metrics()

	usagePct := 0.0
	if report.Memory.MaxSizeBytes > 0 {
		usagePct = float64(report.Memory.SizeBytes) / float64(report.Memory.MaxSizeBytes) * 100
	}

	return &types.PublisherHealthMetrics{
		MemoryUsedBytes:       report.Memory.SizeBytes,
		MemoryLimitBytes:      report.Memory.MaxSizeBytes,
		MemoryUsagePercentage: usagePct,
		TotalEntries:          int64(report.Memory.EntryCount),
		HitRatio:              snapshot.TotalHitRatio(),
		AverageLatencyMs:      snapshot.AvgLatencyMs,
		RedisConnected:        report.Redis.Connected,
	}
}

var _ Cache = (*client)(nil)
