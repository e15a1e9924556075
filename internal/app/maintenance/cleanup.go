package maintenance

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/sitedesk/sitedesk/internal/cache"
	"github.com/sitedesk/sitedesk/internal/services"
	"github.com/sitedesk/sitedesk/pkg/logger"
)

const (
	defaultSweepSpec    = "@daily"
	defaultLowStockSpec = "@hourly"
	defaultCacheSpec    = "@hourly"
)

// Cleaner coordinates background maintenance: enforcing the activity log
// retention cap, scanning inventory for low stock, and expiring cache rows.
type Cleaner struct {
	activity   *services.ActivityService
	materials  *services.MaterialService
	cacheStore *cache.DatabaseStore
	cron       *cron.Cron
	log        *zap.Logger
	enabled    bool

	sweepSchedule    string
	lowStockSchedule string
	cacheSchedule    string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithSweepSchedule overrides the cron specification for the retention sweep.
func WithSweepSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.sweepSchedule = spec
		}
	}
}

// WithLowStockSchedule overrides the cron specification for the low-stock scan.
func WithLowStockSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.lowStockSchedule = spec
		}
	}
}

// WithCacheSchedule overrides the cron specification for cache expiry.
func WithCacheSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.cacheSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. Any nil dependency
// results in the corresponding job being skipped.
func NewCleaner(activity *services.ActivityService, materials *services.MaterialService, cacheStore *cache.DatabaseStore, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		activity:         activity,
		materials:        materials,
		cacheStore:       cacheStore,
		log:              logger.WithModule("maintenance"),
		sweepSchedule:    defaultSweepSpec,
		lowStockSchedule: defaultLowStockSpec,
		cacheSchedule:    defaultCacheSpec,
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	cleaner.enabled = cleaner.activity != nil || cleaner.materials != nil || cleaner.cacheStore != nil

	return cleaner
}

// Start registers the jobs with the scheduler and launches it if at least one
// job is enabled.
func (c *Cleaner) Start() error {
	if !c.enabled {
		return nil
	}

	if c.activity != nil {
		if _, err := c.cron.AddFunc(c.sweepSchedule, func() {
			if removed, err := c.activity.RetentionSweep(context.Background()); err != nil {
				c.log.Warn("activity retention sweep failed", zap.Error(err))
			} else if removed > 0 {
				c.log.Info("activity retention sweep complete", zap.Int64("removed", removed))
			}
		}); err != nil {
			return err
		}
	}

	if c.materials != nil {
		if _, err := c.cron.AddFunc(c.lowStockSchedule, func() {
			if flagged, err := c.materials.ScanLowStock(context.Background()); err != nil {
				c.log.Warn("low stock scan failed", zap.Error(err))
			} else if flagged > 0 {
				c.log.Info("low stock scan complete", zap.Int("flagged", flagged))
			}
		}); err != nil {
			return err
		}
	}

	if c.cacheStore != nil {
		if _, err := c.cron.AddFunc(c.cacheSchedule, func() {
			if _, err := c.cacheStore.CleanupExpired(context.Background()); err != nil {
				c.log.Warn("cache cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured jobs sequentially. Primarily used in tests
// and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.activity != nil {
		if _, err := c.activity.RetentionSweep(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.materials != nil {
		if _, err := c.materials.ScanLowStock(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.cacheStore != nil {
		if _, err := c.cacheStore.CleanupExpired(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}
