package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stockCharts/config"
	"stockCharts/internal/adapters/export"
	"stockCharts/internal/adapters/logger"
	"stockCharts/internal/app"
	"stockCharts/internal/bootstrap"
)

func main() {
	symbol := flag.String("symbol", "AAPL.US", "Ticker symbol")
	interval := flag.String("interval", "5m", "Bar interval (1m, 5m, 15m, 30m, 1h or static)")
	days := flag.Int("days", 5, "Number of days back from now")
	format := flag.String("format", "csv", "Output format: csv or parquet")
	outDir := flag.String("out", "data", "Output directory")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.New(cfg.LogFormat, cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Wire the chart service
	ctx := context.Background()
	components, err := bootstrap.Build(ctx, cfg, appLogger)
	if err != nil {
		log.Fatalf("FATAL: Failed to wire components: %v", err)
	}
	defer components.Close()

	writer, err := export.NewWriter(*format)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	iv := strings.TrimSpace(*interval)
	end := time.Now().In(cfg.Location)
	start := end.AddDate(0, 0, -*days)

	fmt.Printf("Fetching bars for %s %s from %s to %s...\n", *symbol, iv, start.Format(time.DateOnly), end.Format(time.DateOnly))
	bars, err := components.Service.GetBars(ctx, app.BarsRequest{
		Symbol:   *symbol,
		From:     start,
		To:       end,
		Interval: iv,
	})
	if err != nil {
		appLogger.Error(ctx, err, "Error fetching bars")
		components.Close()
		os.Exit(1)
	}
	appLogger.Info(ctx, "Fetched bars", map[string]interface{}{"count": len(bars)})

	label := iv
	if label == "" {
		label = "static"
	}
	filename := filepath.Join(*outDir, export.FileName(writer, strings.ToUpper(*symbol), label, start, end))
	if err := writer.Write(strings.ToUpper(*symbol), label, bars, filename); err != nil {
		appLogger.Error(ctx, err, "Error writing export file")
		components.Close()
		os.Exit(1)
	}
	appLogger.Info(ctx, "Saved to", map[string]interface{}{"filename": filename})
}
