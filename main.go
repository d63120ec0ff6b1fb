package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os"
	"os/signal"
	"syscall"

	"stockCharts/config"
	"stockCharts/internal/adapters/logger"
	"stockCharts/internal/bootstrap"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.New(cfg.LogFormat, cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String(), "format": cfg.LogFormat})

	// 3. Wire cache, providers and chart service
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components, err := bootstrap.Build(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to wire components")
		log.Fatalf("FATAL: Failed to wire components: %v", err)
	}
	defer func() {
		if err := components.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing cache store")
		}
	}()

	// 4. Initialize scheduled maintenance
	maintenance, err := components.Maintenance(cfg, appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize maintenance scheduler")
		log.Fatalf("FATAL: Failed to initialize maintenance scheduler: %v", err)
	}
	if maintenance.Jobs() == 0 {
		appLogger.Warn(ctx, "No maintenance jobs configured (set CACHE_PURGE_CRON or WARMUP_CRON), exiting")
		return
	}

	// 5. Run until a shutdown signal arrives
	maintenance.Start()
	if len(cfg.Watchlist) > 0 {
		go maintenance.WarmupNow(ctx)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	appLogger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})

	cancel()
	<-maintenance.Stop().Done()
	appLogger.Info(context.Background(), "Application finished gracefully.")
}
