package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"stockCharts/config"
	"stockCharts/internal/adapters/filecache"
	"stockCharts/internal/adapters/marketapi"
	"stockCharts/internal/adapters/polygonclient"
	"stockCharts/internal/adapters/rediscache"
	"stockCharts/internal/adapters/sqlite"
	"stockCharts/internal/app"
	"stockCharts/internal/marketdata"
	"stockCharts/internal/ports"
)

// Components are the wired services of a process.
type Components struct {
	Cache   ports.CacheStore
	Purger  ports.CachePurger // nil when the backend cannot purge by age
	Gateway *marketdata.Gateway
	Service *app.ChartService

	closers []func() error
}

// Close releases backend connections.
func (c *Components) Close() error {
	var first error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Build wires cache store, providers, gateway and service from cfg.
func Build(ctx context.Context, cfg *config.Config, logger ports.Logger) (*Components, error) {
	c := &Components{}
	cache, err := c.buildCache(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	c.Cache = cache
	if p, ok := cache.(ports.CachePurger); ok {
		c.Purger = p
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	eodhd, err := marketapi.NewEODHDClient(marketapi.EODHDConfig{
		APIKey:     cfg.EODHDAPIKey,
		BaseURL:    cfg.EODHDBaseURL,
		HTTPClient: httpClient,
		Logger:     logger,
	})
	if err != nil {
		c.Close()
		return nil, err
	}

	var bars ports.BarProvider = eodhd
	if cfg.DataProvider == config.ProviderPolygon {
		bars, err = polygonclient.NewClient(polygonclient.Config{APIKey: cfg.PolygonAPIKey, HTTPClient: httpClient, Logger: logger})
		if err != nil {
			c.Close()
			return nil, err
		}
	}

	gwCfg := marketdata.Config{
		Bars:         bars,
		News:         eodhd,
		Symbols:      eodhd,
		Cache:        cache,
		Logger:       logger,
		Location:     cfg.Location,
		FanOut:       cfg.FanOutConcurrency,
		SingleFlight: cfg.SingleFlight,
	}
	if cfg.NasdaqAPIKey != "" {
		nasdaq, err := marketapi.NewNasdaqClient(marketapi.NasdaqConfig{
			APIKey:     cfg.NasdaqAPIKey,
			BaseURL:    cfg.NasdaqBaseURL,
			HTTPClient: httpClient,
			Logger:     logger,
		})
		if err != nil {
			c.Close()
			return nil, err
		}
		gwCfg.Sentiment = nasdaq
	} else {
		logger.Warn(ctx, "NASDAQ_API_KEY not set, RTAT sentiment disabled")
	}

	c.Gateway, err = marketdata.NewGateway(gwCfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Service, err = app.NewChartService(c.Gateway, logger, app.ServiceConfig{
		DefaultRenko:   cfg.Renko,
		SymbolExchange: cfg.SymbolExchange,
	})
	if err != nil {
		c.Close()
		return nil, err
	}
	logger.Info(ctx, "Components wired", map[string]interface{}{
		"provider": bars.Name(), "cache": cfg.CacheBackend, "singleFlight": cfg.SingleFlight,
	})
	return c, nil
}

func (c *Components) buildCache(ctx context.Context, cfg *config.Config, logger ports.Logger) (ports.CacheStore, error) {
	switch cfg.CacheBackend {
	case config.CacheSQLite:
		repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.CacheDBPath, Logger: logger})
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, repo.Close)
		return repo, nil
	case config.CacheRedis:
		store, err := rediscache.NewStore(ctx, rediscache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			Prefix:   cfg.RedisPrefix,
			Logger:   logger,
		})
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, store.Close)
		return store, nil
	case config.CacheFile, "":
		return filecache.NewStore(cfg.CacheDir, logger)
	default:
		return nil, fmt.Errorf("%w: unsupported cache backend %q", ports.ErrConfigurationError, cfg.CacheBackend)
	}
}

// Maintenance builds the cron housekeeping for the wired service.
func (c *Components) Maintenance(cfg *config.Config, logger ports.Logger) (*app.Maintenance, error) {
	return app.NewMaintenance(c.Service, logger, app.MaintenanceConfig{
		PurgeSchedule:  cfg.CachePurgeCron,
		WarmupSchedule: cfg.WarmupCron,
		MaxAge:         time.Duration(cfg.CacheMaxAgeHours) * time.Hour,
		Purger:         c.Purger,
		Watchlist:      cfg.Watchlist,
	})
}
