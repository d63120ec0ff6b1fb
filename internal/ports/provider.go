package ports

import (
	"context"
	"time"

	"stockCharts/internal/domain"
)

// Named identifies a provider in logs and errors.
type Named interface {
	Name() string
}

// BarProvider fetches intraday price records from an upstream market data API.
// Implementations return an empty slice when the range holds no data and an
// error only on transport, authentication or protocol failures.
type BarProvider interface {
	Named
	// FetchIntraday retrieves raw bars for symbol in [from, to]. An empty
	// interval requests the provider's default resolution.
	FetchIntraday(ctx context.Context, symbol string, from, to time.Time, interval string) ([]domain.RawBar, error)
}

// NewsProvider fetches headlines for a single ticker.
type NewsProvider interface {
	Named
	FetchNewsForTicker(ctx context.Context, ticker string, from, to time.Time) ([]domain.RawNewsItem, error)
}

// SentimentProvider fetches daily retail activity/sentiment rows for a single ticker.
type SentimentProvider interface {
	Named
	FetchSentiment(ctx context.Context, ticker string, from, to time.Time) ([]domain.SentimentRecord, error)
}

// SymbolProvider lists the tradable symbols of an exchange.
type SymbolProvider interface {
	Named
	FetchSymbols(ctx context.Context, exchange string) ([]domain.Symbol, error)
}
