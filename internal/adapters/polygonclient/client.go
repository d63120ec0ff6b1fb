package polygonclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	polygonrest "github.com/polygon-io/client-go/rest"
	rmodels "github.com/polygon-io/client-go/rest/models"

	"stockCharts/internal/domain"
	"stockCharts/internal/ports"
)

// maxAggs bounds a single aggregates request; the iterator follows next_url beyond it.
const maxAggs = 50000

// aggIterator is the part of the polygon iterator the client consumes.
type aggIterator interface {
	Next() bool
	Item() rmodels.Agg
	Err() error
}

type aggLister func(ctx context.Context, params *rmodels.ListAggsParams) aggIterator

// Client is a BarProvider backed by Polygon aggregates.
type Client struct {
	list   aggLister
	logger ports.Logger
}

// Config configures a Client.
type Config struct {
	APIKey     string
	HTTPClient *http.Client
	Logger     ports.Logger
}

// NewClient creates a Polygon bar provider.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: Polygon API key is required", ports.ErrConfigurationError)
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("%w: logger is required for Polygon client", ports.ErrConfigurationError)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	rest := polygonrest.NewWithClient(cfg.APIKey, httpClient)
	return &Client{
		list: func(ctx context.Context, params *rmodels.ListAggsParams) aggIterator {
			return rest.ListAggs(ctx, params)
		},
		logger: cfg.Logger,
	}, nil
}

// Name identifies the provider in errors and logs.
func (c *Client) Name() string { return "polygon" }

// FetchIntraday lists aggregates for symbol. An empty interval requests five-minute bars.
func (c *Client) FetchIntraday(ctx context.Context, symbol string, from, to time.Time, interval string) ([]domain.RawBar, error) {
	multiplier, timespan, err := aggSpan(interval)
	if err != nil {
		return nil, err
	}
	if to.IsZero() {
		to = time.Now()
	}
	limit := maxAggs
	order := rmodels.Asc
	adjusted := true
	params := &rmodels.ListAggsParams{
		Ticker:     polygonTicker(symbol),
		Multiplier: multiplier,
		Timespan:   timespan,
		From:       rmodels.Millis(from),
		To:         rmodels.Millis(to),
		Limit:      &limit,
		Order:      &order,
		Adjusted:   &adjusted,
	}

	iter := c.list(ctx, params)
	out := make([]domain.RawBar, 0)
	for iter.Next() {
		out = append(out, toRawBar(iter.Item()))
	}
	if err := iter.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ports.ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ports.ErrProviderUnavailable, err)
	}
	c.logger.Debug(ctx, "Polygon aggregates listed", map[string]interface{}{"symbol": symbol, "bars": len(out)})
	return out, nil
}

func aggSpan(interval string) (int, rmodels.Timespan, error) {
	switch interval {
	case "", domain.Interval5m:
		return 5, rmodels.Minute, nil
	case domain.Interval1m:
		return 1, rmodels.Minute, nil
	case domain.Interval15m:
		return 15, rmodels.Minute, nil
	case domain.Interval30m:
		return 30, rmodels.Minute, nil
	case domain.Interval1h:
		return 1, rmodels.Hour, nil
	default:
		return 0, "", ports.NewValidationError("interval", fmt.Sprintf("unsupported interval %q", interval))
	}
}

// polygonTicker drops the ".US" exchange suffix used elsewhere in the app.
func polygonTicker(symbol string) string {
	return strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(symbol)), ".US")
}

func toRawBar(a rmodels.Agg) domain.RawBar {
	return domain.RawBar{
		Timestamp:    time.Time(a.Timestamp).Unix(),
		HasTimestamp: true,
		Open:         formatFloat(a.Open),
		High:         formatFloat(a.High),
		Low:          formatFloat(a.Low),
		Close:        formatFloat(a.Close),
		Volume:       formatFloat(a.Volume),
	}
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

var _ ports.BarProvider = (*Client)(nil)
