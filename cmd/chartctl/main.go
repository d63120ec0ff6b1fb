package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"stockCharts/config"
	"stockCharts/internal/adapters/logger"
	"stockCharts/internal/app"
	"stockCharts/internal/bootstrap"
	"stockCharts/internal/domain"
)

const usage = `usage: chartctl <command> [flags]

commands:
  bars       chart bars for a symbol and range
  summary    summary metrics for a symbol and range
  realtime   today's intraday bars
  dashboard  realtime dashboard with compare tickers and day stats
  news       news for one or more tickers
  rtat       retail activity and sentiment for one or more tickers
  symbols    search the symbol list
  clear      clear all cached history
  clear-rt   drop a symbol's cached one-minute realtime bars
`

type opts struct {
	symbol    string
	tickers   string
	from      string
	to        string
	interval  string
	style     string
	renkoMode string
	brick     float64
	atr       int
	pct       float64
	query     string
	limit     int
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cmd := os.Args[1]

	var o opts
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.StringVar(&o.symbol, "symbol", "", "Ticker symbol, e.g. AAPL.US")
	fs.StringVar(&o.tickers, "tickers", "", "Comma separated tickers (news, rtat, dashboard compare)")
	fs.StringVar(&o.from, "from", "", "Range start, YYYY-MM-DD or RFC3339")
	fs.StringVar(&o.to, "to", "", "Range end, YYYY-MM-DD or RFC3339")
	fs.StringVar(&o.interval, "interval", "", "1m, 5m, 15m, 30m, 1h or static (empty)")
	fs.StringVar(&o.style, "style", "candlestick", "candlestick, bar, line, area, baseline, heikin or renko")
	fs.StringVar(&o.renkoMode, "renko-mode", "", "Renko brick mode override: fixed, atr or percentage")
	fs.Float64Var(&o.brick, "brick", 0, "Fixed Renko brick size")
	fs.IntVar(&o.atr, "atr-period", 0, "ATR period for Renko")
	fs.Float64Var(&o.pct, "percent", 0, "Percentage for Renko")
	fs.StringVar(&o.query, "q", "", "Symbol search query")
	fs.IntVar(&o.limit, "limit", 20, "Maximum symbols returned")
	if err := fs.Parse(os.Args[2:]); err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	appLogger := logger.NewStdLoggerTo(os.Stderr, cfg.LogLevel)

	ctx := context.Background()
	components, err := bootstrap.Build(ctx, cfg, appLogger)
	if err != nil {
		log.Fatalf("FATAL: Failed to wire components: %v", err)
	}
	defer components.Close()

	out, err := run(ctx, components.Service, cfg, cmd, o)
	if err != nil {
		appLogger.Error(ctx, err, "Command failed", map[string]interface{}{"command": cmd})
		components.Close()
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("FATAL: encode output: %v", err)
	}
}

func run(ctx context.Context, svc *app.ChartService, cfg *config.Config, cmd string, o opts) (interface{}, error) {
	switch cmd {
	case "bars", "summary":
		from, to, err := parseRange(o.from, o.to, cfg.Location)
		if err != nil {
			return nil, err
		}
		bars, err := svc.GetBars(ctx, app.BarsRequest{
			Symbol:   o.symbol,
			From:     from,
			To:       to,
			Interval: o.interval,
			Style:    domain.ParseChartStyle(o.style),
			Renko:    renkoOverride(o, cfg.Renko),
		})
		if err != nil || cmd == "bars" {
			return bars, err
		}
		return svc.GetSummary(bars, nil), nil
	case "realtime":
		return svc.Realtime(ctx, o.symbol, o.interval)
	case "dashboard":
		return svc.Dashboard(ctx, app.DashboardRequest{
			Symbol:   o.symbol,
			Compare:  splitTickers(o.tickers),
			Interval: o.interval,
			Style:    domain.ParseChartStyle(o.style),
			Renko:    renkoOverride(o, cfg.Renko),
		})
	case "news", "rtat":
		from, to, err := parseRange(o.from, o.to, cfg.Location)
		if err != nil {
			return nil, err
		}
		tickers := splitTickers(o.tickers)
		if cmd == "news" {
			return svc.News(ctx, tickers, from, to)
		}
		return svc.RTAT(ctx, tickers, from, to)
	case "symbols":
		return svc.SearchSymbols(ctx, o.query, o.limit)
	case "clear":
		return svc.ClearCache(ctx)
	case "clear-rt":
		if err := svc.ClearRealtime(ctx, o.symbol); err != nil {
			return nil, err
		}
		return app.ClearResult{Success: true, Message: "Cleared realtime cache for " + strings.ToUpper(o.symbol)}, nil
	default:
		return nil, fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

// renkoOverride returns nil when no Renko flag is set so the service default applies.
func renkoOverride(o opts, base domain.RenkoSettings) *domain.RenkoSettings {
	if o.renkoMode == "" && o.brick == 0 && o.atr == 0 && o.pct == 0 {
		return nil
	}
	s := base
	if o.renkoMode != "" {
		s.Mode = domain.ParseRenkoMode(o.renkoMode)
	}
	if o.brick > 0 {
		s.FixedBrickSize = o.brick
	}
	if o.atr > 0 {
		s.ATRPeriod = o.atr
	}
	if o.pct > 0 {
		s.PercentageValue = o.pct
	}
	return &s
}

func parseRange(from, to string, loc *time.Location) (time.Time, time.Time, error) {
	f, err := parseTime(from, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid -from: %w", err)
	}
	t, err := parseTime(to, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid -to: %w", err)
	}
	return f, t, nil
}

func parseTime(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation(time.DateOnly, s, loc)
}

func splitTickers(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
