package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"stockCharts/internal/analytics"
	"stockCharts/internal/chart"
	"stockCharts/internal/domain"
	"stockCharts/internal/ports"
)

const (
	maxCompareSymbols  = 2
	defaultSearchLimit = 20
	maxMinuteSpanDays  = 1
	maxShortSpanDays   = 5
	clearedMessage     = "Successfully cleared all cached history."
)

// MarketData is the fetch-through data layer the service reads from.
// Implemented by marketdata.Gateway.
type MarketData interface {
	FetchBars(ctx context.Context, symbol string, from, to time.Time, interval string) ([]domain.Bar, error)
	FetchRealtime(ctx context.Context, symbol, interval string) ([]domain.Bar, error)
	ClearRealtime(ctx context.Context, symbol string) error
	FetchNews(ctx context.Context, tickers []string, from, to time.Time) ([]domain.NewsItem, error)
	FetchRTAT(ctx context.Context, tickers []string, from, to time.Time) (map[string][]domain.SentimentRecord, error)
	FetchSymbols(ctx context.Context, exchange string) ([]domain.Symbol, error)
	InvalidateAll(ctx context.Context) error
	Location() *time.Location
}

// ServiceConfig tunes a ChartService.
type ServiceConfig struct {
	DefaultRenko   domain.RenkoSettings // Used when a request carries no Renko settings
	SymbolExchange string               // Exchange whose directory backs symbol search, e.g. "US"
	Now            func() time.Time
}

// ChartService answers chart, summary, news and cache requests.
type ChartService struct {
	data     MarketData
	logger   ports.Logger
	renko    domain.RenkoSettings
	exchange string
	now      func() time.Time
}

// NewChartService creates a new chart service instance.
func NewChartService(data MarketData, logger ports.Logger, cfg ServiceConfig) (*ChartService, error) {
	if data == nil || logger == nil {
		return nil, fmt.Errorf("%w: missing required dependencies for ChartService", ports.ErrConfigurationError)
	}
	renko := cfg.DefaultRenko
	if renko.Mode == "" {
		renko = domain.DefaultRenkoSettings()
	}
	exchange := cfg.SymbolExchange
	if exchange == "" {
		exchange = "US"
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &ChartService{data: data, logger: logger, renko: renko, exchange: exchange, now: now}, nil
}

// BarsRequest describes a chart request. An empty Interval means static.
type BarsRequest struct {
	Symbol   string
	From     time.Time
	To       time.Time
	Interval string
	Style    domain.ChartStyle
	Renko    *domain.RenkoSettings // nil uses the service default
}

// GetBars returns the bars of a chart request in its requested style.
// Static requests are widened to whole days, fetched at the provider's
// default resolution and sampled down to the slot table.
func (s *ChartService) GetBars(ctx context.Context, req BarsRequest) ([]domain.Bar, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		return nil, ports.NewValidationError("symbol", "must not be empty")
	}
	interval := strings.ToLower(strings.TrimSpace(req.Interval))
	if interval == "" {
		interval = domain.IntervalStatic
	}
	if err := ValidateRange(req.From, req.To, interval); err != nil {
		return nil, err
	}

	var (
		bars []domain.Bar
		err  error
	)
	if interval == domain.IntervalStatic {
		from, to := chart.WidenToDays(req.From, req.To, s.data.Location())
		bars, err = s.data.FetchBars(ctx, symbol, from, to, "")
		if err != nil {
			return nil, err
		}
		bars = chart.Sample(bars, from, to)
	} else {
		bars, err = s.data.FetchBars(ctx, symbol, req.From, req.To, interval)
		if err != nil {
			return nil, err
		}
	}

	s.logger.Debug(ctx, "Bars served", map[string]interface{}{
		"symbol": symbol, "interval": interval, "style": string(req.Style), "bars": len(bars),
	})
	return chart.Apply(bars, req.Style, s.renkoSettings(req.Renko)), nil
}

func (s *ChartService) renkoSettings(override *domain.RenkoSettings) domain.RenkoSettings {
	if override != nil {
		return *override
	}
	return s.renko
}

// ValidateRange checks the date bounds and that interval is allowed for the
// span: one minute needs a span of at most a day, 15m/30m/1h at most five days.
func ValidateRange(from, to time.Time, interval string) error {
	if from.IsZero() || to.IsZero() {
		return ports.NewValidationError("range", "from and to are required")
	}
	if !from.Before(to) {
		return ports.NewValidationError("range", "from must be before to")
	}
	span := chart.SpanDays(from, to)
	switch interval {
	case domain.IntervalStatic, domain.Interval5m:
	case domain.Interval1m:
		if span > maxMinuteSpanDays {
			return ports.NewValidationError("interval", "1m is only available for ranges of at most 1 day")
		}
	case domain.Interval15m, domain.Interval30m, domain.Interval1h:
		if span > maxShortSpanDays {
			return ports.NewValidationError("interval", fmt.Sprintf("%s is only available for ranges of at most %d days", interval, maxShortSpanDays))
		}
	default:
		return ports.NewValidationError("interval", fmt.Sprintf("unsupported interval %q", interval))
	}
	return nil
}

// GetSummary computes the info-box metrics of bars.
func (s *ChartService) GetSummary(bars []domain.Bar, sentiment []domain.SentimentRecord) domain.SummaryMetrics {
	return analytics.Summarize(bars, sentiment)
}

// ClearResult reports the outcome of a cache clear.
type ClearResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ClearCache drops every cached entry.
func (s *ChartService) ClearCache(ctx context.Context) (ClearResult, error) {
	if err := s.data.InvalidateAll(ctx); err != nil {
		return ClearResult{Success: false, Message: "Failed to clear cache files due to a server error."}, err
	}
	return ClearResult{Success: true, Message: clearedMessage}, nil
}

// Realtime returns today's bars for symbol.
func (s *ChartService) Realtime(ctx context.Context, symbol, interval string) ([]domain.Bar, error) {
	return s.data.FetchRealtime(ctx, strings.ToUpper(strings.TrimSpace(symbol)), interval)
}

// ClearRealtime forgets today's one-minute realtime bars of symbol.
func (s *ChartService) ClearRealtime(ctx context.Context, symbol string) error {
	return s.data.ClearRealtime(ctx, strings.ToUpper(strings.TrimSpace(symbol)))
}

// News returns tracked headlines for tickers in [from, to], newest first.
func (s *ChartService) News(ctx context.Context, tickers []string, from, to time.Time) ([]domain.NewsItem, error) {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, ports.NewValidationError("range", "from must not be after to")
	}
	return s.data.FetchNews(ctx, tickers, from, to)
}

// RTAT returns retail activity and sentiment rows keyed by ticker.
func (s *ChartService) RTAT(ctx context.Context, tickers []string, from, to time.Time) (map[string][]domain.SentimentRecord, error) {
	return s.data.FetchRTAT(ctx, tickers, from, to)
}

// SearchSymbols matches query against code and name, case-insensitively.
// Code prefix matches rank first. limit <= 0 uses the default of 20.
func (s *ChartService) SearchSymbols(ctx context.Context, query string, limit int) ([]domain.Symbol, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, ports.NewValidationError("query", "must not be empty")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	all, err := s.data.FetchSymbols(ctx, s.exchange)
	if err != nil {
		return nil, err
	}

	type hit struct {
		sym  domain.Symbol
		rank int
	}
	hits := make([]hit, 0)
	for _, sym := range all {
		code := strings.ToLower(sym.Code)
		switch {
		case strings.HasPrefix(code, q):
			hits = append(hits, hit{sym, 0})
		case strings.Contains(code, q) || strings.Contains(strings.ToLower(sym.Name), q):
			hits = append(hits, hit{sym, 1})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].rank < hits[j].rank })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]domain.Symbol, len(hits))
	for i, h := range hits {
		out[i] = h.sym
	}
	return out, nil
}

// TickerView is one ticker's panel of the realtime dashboard.
type TickerView struct {
	Symbol    string                   `json:"symbol"`
	Bars      []domain.Bar             `json:"bars"`
	Series    []domain.Bar             `json:"series"` // Bars in the requested style
	Summary   domain.SummaryMetrics    `json:"summary"`
	Sentiment []domain.SentimentRecord `json:"sentiment"` // Yesterday and today; Summary uses only the lagged day
}

// Dashboard is the realtime view: a main ticker and up to two compare tickers.
type Dashboard struct {
	Interval string            `json:"interval"`
	Style    domain.ChartStyle `json:"style"`
	Main     TickerView        `json:"main"`
	Compare  []TickerView      `json:"compare"`
	DayStats *domain.DayStats  `json:"dayStats,omitempty"`
}

// DashboardRequest describes a realtime dashboard request.
type DashboardRequest struct {
	Symbol   string
	Compare  []string // Only honoured for line and area styles
	Interval string
	Style    domain.ChartStyle
	Renko    *domain.RenkoSettings
}

// Dashboard assembles the realtime view. The main ticker must load; a compare
// ticker or the RTAT lookup that fails degrades to an empty panel.
func (s *ChartService) Dashboard(ctx context.Context, req DashboardRequest) (*Dashboard, error) {
	main := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if main == "" {
		return nil, ports.NewValidationError("symbol", "main symbol is missing")
	}
	style := req.Style
	if style == "" {
		style = domain.StyleCandlestick
	}
	compare := compareSymbols(main, req.Compare, style)
	settings := s.renkoSettings(req.Renko)

	mainBars, err := s.data.FetchRealtime(ctx, main, req.Interval)
	if err != nil {
		return nil, err
	}

	// Yesterday is included so the hover can show the lagged reading.
	today := s.now().In(s.data.Location())
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	tickers := append([]string{main}, compare...)
	rtat, err := s.data.FetchRTAT(ctx, tickers, day.AddDate(0, 0, -1), day)
	if err != nil {
		s.logger.Warn(ctx, "RTAT unavailable for dashboard", map[string]interface{}{"error": err.Error()})
		rtat = map[string][]domain.SentimentRecord{}
	}

	dash := &Dashboard{
		Interval: req.Interval,
		Style:    style,
		Main:     s.tickerView(main, mainBars, rtat[main], style, settings),
		Compare:  make([]TickerView, 0, len(compare)),
	}
	for _, sym := range compare {
		bars, err := s.data.FetchRealtime(ctx, sym, req.Interval)
		if err != nil {
			if errors.Is(err, ports.ErrValidation) {
				return nil, err
			}
			s.logger.Warn(ctx, "Compare ticker unavailable", map[string]interface{}{"symbol": sym, "error": err.Error()})
			bars = []domain.Bar{}
		}
		dash.Compare = append(dash.Compare, s.tickerView(sym, bars, rtat[sym], style, settings))
	}
	if stats, ok := analytics.ComputeDayStats(mainBars); ok {
		dash.DayStats = &stats
	}
	return dash, nil
}

func (s *ChartService) tickerView(symbol string, bars []domain.Bar, sentiment []domain.SentimentRecord, style domain.ChartStyle, settings domain.RenkoSettings) TickerView {
	if sentiment == nil {
		sentiment = []domain.SentimentRecord{}
	}
	return TickerView{
		Symbol:    symbol,
		Bars:      bars,
		Series:    chart.Apply(bars, style, settings),
		Summary:   analytics.Summarize(bars, analytics.LaggedRecords(bars, sentiment)),
		Sentiment: sentiment,
	}
}

// compareSymbols keeps up to two distinct compare tickers other than main.
// Styles other than line and area cannot overlay series, so they get none.
func compareSymbols(main string, requested []string, style domain.ChartStyle) []string {
	if style != domain.StyleLine && style != domain.StyleArea {
		return nil
	}
	out := make([]string, 0, maxCompareSymbols)
	for _, c := range requested {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" || c == main {
			continue
		}
		dup := false
		for _, o := range out {
			if o == c {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		out = append(out, c)
		if len(out) == maxCompareSymbols {
			break
		}
	}
	return out
}

// HoverInfo is the info-box content for the main ticker at one bar.
type HoverInfo struct {
	Time      time.Time               `json:"time"`
	Price     float64                 `json:"price"`
	Volume    int64                   `json:"volume"`
	VWAP      float64                 `json:"vwap"`
	Sentiment *domain.SentimentRecord `json:"sentiment,omitempty"` // Previous day's RTAT reading
}

// HoverAt returns the info-box content for the main ticker's bar at idx.
func (d *Dashboard) HoverAt(idx int) (HoverInfo, bool) {
	bars := d.Main.Bars
	if idx < 0 || idx >= len(bars) {
		return HoverInfo{}, false
	}
	b := bars[idx]
	info := HoverInfo{Time: b.Timestamp(), Price: b.Close, Volume: b.Volume}
	if vwap, ok := analytics.CumulativeVWAP(bars, idx); ok {
		info.VWAP = vwap
	}
	if rec, ok := analytics.LaggedSentiment(b, d.Main.Sentiment); ok {
		info.Sentiment = &rec
	}
	return info, true
}
