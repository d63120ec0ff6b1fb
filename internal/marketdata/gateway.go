package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"stockCharts/internal/domain"
	"stockCharts/internal/ports"
)

const defaultFanOut = 4

// realtimeIntervals maps the interval spellings accepted by the realtime view
// to provider intervals. Anything else falls back to one minute.
var realtimeIntervals = map[string]string{
	"1min": domain.Interval1m, "1m": domain.Interval1m,
	"15min": domain.Interval15m, "15m": domain.Interval15m,
	"30min": domain.Interval30m, "30m": domain.Interval30m,
	"60min": domain.Interval1h, "60m": domain.Interval1h, "1h": domain.Interval1h,
}

// sessionStartHour is the local hour the realtime view starts from (pre-market open).
const sessionStartHour = 4

// Config holds the collaborators and tuning of a Gateway.
type Config struct {
	Bars      ports.BarProvider
	News      ports.NewsProvider      // Optional; news requests fail validation without it
	Sentiment ports.SentimentProvider // Optional; RTAT requests fail validation without it
	Symbols   ports.SymbolProvider    // Optional
	Cache     ports.CacheStore
	Logger    ports.Logger

	Location     *time.Location // Market timezone for realtime sessions, defaults to time.Local
	FanOut       int            // Concurrent provider calls per multi-ticker request
	SingleFlight bool           // Collapse concurrent misses for the same fingerprint
	Now          func() time.Time
}

// Gateway is a fetch-through cache in front of the market data providers.
// A hit is returned without contacting the provider; a miss is fetched,
// normalized and, when non-empty, stored.
type Gateway struct {
	bars      ports.BarProvider
	news      ports.NewsProvider
	sentiment ports.SentimentProvider
	symbols   ports.SymbolProvider
	cache     ports.CacheStore
	logger    ports.Logger

	loc          *time.Location
	fanOut       int
	singleFlight bool
	flights      singleflight.Group
	now          func() time.Time
}

// NewGateway creates a Gateway. Bars, Cache and Logger are required.
func NewGateway(cfg Config) (*Gateway, error) {
	if cfg.Bars == nil || cfg.Cache == nil || cfg.Logger == nil {
		return nil, fmt.Errorf("%w: gateway requires a bar provider, cache store and logger", ports.ErrConfigurationError)
	}
	g := &Gateway{
		bars:         cfg.Bars,
		news:         cfg.News,
		sentiment:    cfg.Sentiment,
		symbols:      cfg.Symbols,
		cache:        cfg.Cache,
		logger:       cfg.Logger,
		loc:          cfg.Location,
		fanOut:       cfg.FanOut,
		singleFlight: cfg.SingleFlight,
		now:          cfg.Now,
	}
	if g.loc == nil {
		g.loc = time.Local
	}
	if g.fanOut <= 0 {
		g.fanOut = defaultFanOut
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g, nil
}

// Location returns the market timezone used for sessions and day boundaries.
func (g *Gateway) Location() *time.Location {
	return g.loc
}

// FetchBars returns normalized bars for symbol in [from, to]. An empty
// interval asks the provider for its default resolution.
func (g *Gateway) FetchBars(ctx context.Context, symbol string, from, to time.Time, interval string) ([]domain.Bar, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, ports.NewValidationError("symbol", "must not be empty")
	}
	fp := Fingerprint{Kind: domain.KindOHLC, Symbols: []string{symbol}, From: from, To: to, Interval: interval}
	return fetchThrough(ctx, g, fp.String(), isEmpty[domain.Bar], func(ctx context.Context) ([]domain.Bar, error) {
		return g.fetchNormalized(ctx, symbol, from, to, interval)
	})
}

// FetchRealtime returns today's bars for symbol from the 04:00 session start
// until now. The entry is keyed by today's date so each day starts fresh.
func (g *Gateway) FetchRealtime(ctx context.Context, symbol, interval string) ([]domain.Bar, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, ports.NewValidationError("symbol", "must not be empty")
	}
	now := g.now().In(g.loc)
	from := time.Date(now.Year(), now.Month(), now.Day(), sessionStartHour, 0, 0, 0, g.loc)
	apiInterval := RealtimeInterval(interval)

	key := g.realtimeKey(symbol, apiInterval, now)
	return fetchThrough(ctx, g, key, isEmpty[domain.Bar], func(ctx context.Context) ([]domain.Bar, error) {
		return g.fetchNormalized(ctx, symbol, from, now, apiInterval)
	})
}

// ClearRealtime drops today's one-minute realtime entry for symbol.
func (g *Gateway) ClearRealtime(ctx context.Context, symbol string) error {
	key := g.realtimeKey(strings.TrimSpace(symbol), domain.Interval1m, g.now().In(g.loc))
	if err := g.cache.Delete(ctx, key); err != nil {
		g.logger.Warn(ctx, "Failed to clear realtime cache entry", map[string]interface{}{"key": key, "error": err.Error()})
		return &ports.CacheError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

func (g *Gateway) realtimeKey(symbol, interval string, day time.Time) string {
	today := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return Fingerprint{Kind: domain.KindRealtime, Symbols: []string{symbol}, From: today, To: today, Interval: interval}.String()
}

// RealtimeInterval maps a realtime interval spelling to a provider interval.
func RealtimeInterval(interval string) string {
	if v, ok := realtimeIntervals[strings.ToLower(strings.TrimSpace(interval))]; ok {
		return v
	}
	return domain.Interval1m
}

// FetchNews returns headlines of tracked publications for all tickers,
// newest first. A ticker whose fetch fails contributes nothing.
func (g *Gateway) FetchNews(ctx context.Context, tickers []string, from, to time.Time) ([]domain.NewsItem, error) {
	if g.news == nil {
		return nil, ports.NewValidationError("news", "no news provider configured")
	}
	tickers = NormalizeTickers(tickers)
	if len(tickers) == 0 {
		return nil, ports.NewValidationError("tickers", "at least one ticker is required")
	}
	fp := Fingerprint{Kind: domain.KindNews, Symbols: tickers, From: from, To: to}
	return fetchThrough(ctx, g, fp.String(), isEmpty[domain.NewsItem], func(ctx context.Context) ([]domain.NewsItem, error) {
		perTicker := make([][]domain.NewsItem, len(tickers))
		g.fanOutTickers(ctx, g.news, tickers, "news", func(ctx context.Context, i int, ticker string) error {
			raw, err := g.news.FetchNewsForTicker(ctx, ticker, from, to)
			if err != nil {
				return err
			}
			perTicker[i] = filterNews(ticker, raw)
			return nil
		})
		all := make([]domain.NewsItem, 0)
		for _, items := range perTicker {
			all = append(all, items...)
		}
		sortNewsNewestFirst(all)
		return all, nil
	})
}

// FetchRTAT returns the daily retail activity/sentiment rows per ticker.
// Every requested ticker is present in the result; failed tickers map to an
// empty slice.
func (g *Gateway) FetchRTAT(ctx context.Context, tickers []string, from, to time.Time) (map[string][]domain.SentimentRecord, error) {
	if g.sentiment == nil {
		return nil, ports.NewValidationError("rtat", "no sentiment provider configured")
	}
	tickers = NormalizeTickers(tickers)
	if len(tickers) == 0 {
		return nil, ports.NewValidationError("tickers", "at least one ticker is required")
	}
	fp := Fingerprint{Kind: domain.KindRTAT, Symbols: tickers, From: from, To: to}
	empty := func(m map[string][]domain.SentimentRecord) bool {
		for _, rows := range m {
			if len(rows) > 0 {
				return false
			}
		}
		return true
	}
	return fetchThrough(ctx, g, fp.String(), empty, func(ctx context.Context) (map[string][]domain.SentimentRecord, error) {
		perTicker := make([][]domain.SentimentRecord, len(tickers))
		g.fanOutTickers(ctx, g.sentiment, tickers, "rtat", func(ctx context.Context, i int, ticker string) error {
			rows, err := g.sentiment.FetchSentiment(ctx, ticker, from, to)
			if err != nil {
				return err
			}
			perTicker[i] = rows
			return nil
		})
		out := make(map[string][]domain.SentimentRecord, len(tickers))
		for i, t := range tickers {
			if perTicker[i] == nil {
				perTicker[i] = []domain.SentimentRecord{}
			}
			out[t] = perTicker[i]
		}
		return out, nil
	})
}

// FetchSymbols returns the symbol directory of exchange.
func (g *Gateway) FetchSymbols(ctx context.Context, exchange string) ([]domain.Symbol, error) {
	if g.symbols == nil {
		return nil, ports.NewValidationError("symbols", "no symbol provider configured")
	}
	exchange = strings.TrimSpace(exchange)
	if exchange == "" {
		return nil, ports.NewValidationError("exchange", "must not be empty")
	}
	fp := Fingerprint{Kind: domain.KindSymbols, Symbols: []string{exchange}}
	return fetchThrough(ctx, g, fp.String(), isEmpty[domain.Symbol], func(ctx context.Context) ([]domain.Symbol, error) {
		symbols, err := g.symbols.FetchSymbols(ctx, exchange)
		if err != nil {
			return nil, providerError(g.symbols, "symbols", exchange, err)
		}
		return symbols, nil
	})
}

// InvalidateAll removes every cache entry.
func (g *Gateway) InvalidateAll(ctx context.Context) error {
	if err := g.cache.InvalidateAll(ctx); err != nil {
		g.logger.Error(ctx, err, "Failed to invalidate cache")
		return &ports.CacheError{Op: "invalidate", Key: "*", Err: err}
	}
	g.logger.Info(ctx, "Cache invalidated")
	return nil
}

func (g *Gateway) fetchNormalized(ctx context.Context, symbol string, from, to time.Time, interval string) ([]domain.Bar, error) {
	raw, err := g.bars.FetchIntraday(ctx, symbol, from, to, interval)
	if err != nil {
		return nil, providerError(g.bars, "intraday", symbol, err)
	}
	bars := Normalize(raw)
	if dropped := len(raw) - len(bars); dropped > 0 {
		g.logger.Debug(ctx, "Dropped invalid provider records", map[string]interface{}{"symbol": symbol, "dropped": dropped, "kept": len(bars)})
	}
	return bars, nil
}

// fanOutTickers runs fn for every ticker with bounded concurrency. Failures
// are logged and never abort the other tickers.
func (g *Gateway) fanOutTickers(ctx context.Context, provider ports.Named, tickers []string, op string, fn func(ctx context.Context, i int, ticker string) error) {
	var eg errgroup.Group
	eg.SetLimit(g.fanOut)
	for i, t := range tickers {
		i, t := i, t // per-iteration copies (go 1.21 loop semantics)
		eg.Go(func() error {
			if err := fn(ctx, i, t); err != nil {
				g.logger.Warn(ctx, "Ticker fetch failed, continuing without it", map[string]interface{}{
					"op":     op,
					"ticker": t,
					"error":  providerError(provider, op, t, err).Error(),
				})
			}
			return nil
		})
	}
	_ = eg.Wait()
}

// providerError attributes err to the provider that returned it.
func providerError(provider ports.Named, op, symbol string, err error) error {
	var pe *ports.ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	return &ports.ProviderError{Provider: provider.Name(), Op: op, Symbol: symbol, Err: err}
}

func isEmpty[T any](s []T) bool { return len(s) == 0 }

// fetchThrough serves key from the cache or runs fetch and stores its result.
// Cache failures are logged and degrade to a miss or a skipped write. The
// fetch and the write run detached from ctx cancellation so an abandoned
// request still completes and fills the cache.
func fetchThrough[T any](ctx context.Context, g *Gateway, key string, empty func(T) bool, fetch func(context.Context) (T, error)) (T, error) {
	if cached, ok := lookup[T](ctx, g, key); ok {
		g.logger.Debug(ctx, "Cache hit", map[string]interface{}{"key": key})
		return cached, nil
	}

	detached := context.WithoutCancel(ctx)
	load := func() (T, error) {
		fresh, err := fetch(detached)
		if err != nil {
			return fresh, err
		}
		if !empty(fresh) {
			store(detached, g, key, fresh)
		}
		return fresh, nil
	}

	if !g.singleFlight {
		return load()
	}

	ch := g.flights.DoChan(key, func() (interface{}, error) { return load() })
	select {
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func lookup[T any](ctx context.Context, g *Gateway, key string) (T, bool) {
	var out T
	payload, ok, err := g.cache.Get(ctx, key)
	if err != nil {
		cerr := &ports.CacheError{Op: "get", Key: key, Err: err}
		g.logger.Warn(ctx, "Cache read failed, treating as miss", map[string]interface{}{"error": cerr.Error()})
		return out, false
	}
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		cerr := &ports.CacheError{Op: "decode", Key: key, Err: err}
		g.logger.Warn(ctx, "Cache entry unreadable, treating as miss", map[string]interface{}{"error": cerr.Error()})
		var zero T
		return zero, false
	}
	return out, true
}

func store[T any](ctx context.Context, g *Gateway, key string, value T) {
	payload, err := json.Marshal(value)
	if err == nil {
		err = g.cache.Put(ctx, key, payload)
	}
	if err != nil {
		cerr := &ports.CacheError{Op: "put", Key: key, Err: err}
		g.logger.Warn(ctx, "Cache write failed, result not persisted", map[string]interface{}{"error": cerr.Error()})
		return
	}
	g.logger.Debug(ctx, "Cache entry stored", map[string]interface{}{"key": key, "bytes": len(payload)})
}
