package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"stockCharts/internal/domain"
	"stockCharts/internal/ports"
)

// MaintenanceConfig selects the scheduled jobs. An empty schedule disables its job.
type MaintenanceConfig struct {
	PurgeSchedule  string            // Cron spec for the cache purge, e.g. "0 3 * * *"
	WarmupSchedule string            // Cron spec for the watchlist warm-up
	MaxAge         time.Duration     // > 0 purges only older entries when Purger is set
	Purger         ports.CachePurger // Optional age-based purge support of the cache store
	Watchlist      []string          // Symbols whose realtime bars are prefetched
}

// Maintenance runs cache housekeeping on cron schedules.
type Maintenance struct {
	cron      *cron.Cron
	service   *ChartService
	logger    ports.Logger
	purger    ports.CachePurger
	maxAge    time.Duration
	watchlist []string
}

// NewMaintenance registers the configured jobs. Jobs start with Start.
func NewMaintenance(service *ChartService, logger ports.Logger, cfg MaintenanceConfig) (*Maintenance, error) {
	if service == nil || logger == nil {
		return nil, fmt.Errorf("%w: missing required dependencies for Maintenance", ports.ErrConfigurationError)
	}
	m := &Maintenance{
		cron:      cron.New(),
		service:   service,
		logger:    logger,
		purger:    cfg.Purger,
		maxAge:    cfg.MaxAge,
		watchlist: watchlist(cfg.Watchlist),
	}
	if spec := strings.TrimSpace(cfg.PurgeSchedule); spec != "" {
		if _, err := m.cron.AddFunc(spec, func() { _ = m.PurgeNow(context.Background()) }); err != nil {
			return nil, fmt.Errorf("%w: register purge job: %v", ports.ErrConfigurationError, err)
		}
	}
	if spec := strings.TrimSpace(cfg.WarmupSchedule); spec != "" {
		if _, err := m.cron.AddFunc(spec, func() { m.WarmupNow(context.Background()) }); err != nil {
			return nil, fmt.Errorf("%w: register warm-up job: %v", ports.ErrConfigurationError, err)
		}
	}
	return m, nil
}

func watchlist(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Jobs reports how many jobs are scheduled.
func (m *Maintenance) Jobs() int {
	return len(m.cron.Entries())
}

// Start starts the cron scheduler.
func (m *Maintenance) Start() {
	m.cron.Start()
	m.logger.Info(context.Background(), "Maintenance scheduler started", map[string]interface{}{"jobs": m.Jobs()})
}

// Stop stops the scheduler and returns a context that is done once running jobs finish.
func (m *Maintenance) Stop() context.Context {
	ctx := m.cron.Stop()
	m.logger.Info(context.Background(), "Maintenance scheduler stopped")
	return ctx
}

// PurgeNow drops entries older than the configured age when the store
// supports it, and clears the whole cache otherwise.
func (m *Maintenance) PurgeNow(ctx context.Context) error {
	if m.purger != nil && m.maxAge > 0 {
		cutoff := time.Now().Add(-m.maxAge)
		n, err := m.purger.PurgeOlderThan(ctx, cutoff)
		if err != nil {
			m.logger.Error(ctx, err, "Cache purge failed")
			return &ports.CacheError{Op: "purge", Key: "*", Err: err}
		}
		m.logger.Info(ctx, "Cache purged", map[string]interface{}{"removed": n, "maxAge": m.maxAge.String()})
		return nil
	}
	res, err := m.service.ClearCache(ctx)
	if err != nil {
		m.logger.Error(ctx, err, "Scheduled cache clear failed")
		return err
	}
	m.logger.Info(ctx, res.Message)
	return nil
}

// WarmupNow prefetches today's one-minute bars for the watchlist and returns
// how many symbols loaded. Failures are logged and skipped.
func (m *Maintenance) WarmupNow(ctx context.Context) int {
	warmed := 0
	for _, sym := range m.watchlist {
		bars, err := m.service.Realtime(ctx, sym, domain.Interval1m)
		if err != nil {
			m.logger.Warn(ctx, "Warm-up failed", map[string]interface{}{"symbol": sym, "error": err.Error()})
			continue
		}
		m.logger.Debug(ctx, "Warmed realtime bars", map[string]interface{}{"symbol": sym, "bars": len(bars)})
		warmed++
	}
	m.logger.Info(ctx, "Watchlist warm-up finished", map[string]interface{}{"warmed": warmed, "total": len(m.watchlist)})
	return warmed
}
