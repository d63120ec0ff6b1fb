package marketapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"stockCharts/internal/domain"
	"stockCharts/internal/ports"
)

const (
	DefaultEODHDBaseURL = "https://eodhd.com/api/"
	newsLimit           = 100
)

// EODHDClient fetches intraday bars, news and symbol directories from EODHD.
type EODHDClient struct {
	baseURL string
	apiKey  string
	http    *transport
	logger  ports.Logger
}

// EODHDConfig configures an EODHDClient.
type EODHDConfig struct {
	APIKey     string
	BaseURL    string // Defaults to DefaultEODHDBaseURL
	HTTPClient *http.Client
	Logger     ports.Logger
}

// NewEODHDClient creates an EODHD client.
func NewEODHDClient(cfg EODHDConfig) (*EODHDClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: EODHD API key is required", ports.ErrConfigurationError)
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("%w: logger is required for EODHD client", ports.ErrConfigurationError)
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultEODHDBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &EODHDClient{
		baseURL: base,
		apiKey:  cfg.APIKey,
		http:    newTransport(cfg.HTTPClient, cfg.Logger),
		logger:  cfg.Logger,
	}, nil
}

// Name identifies the provider in errors and logs.
func (c *EODHDClient) Name() string { return "eodhd" }

func (c *EODHDClient) endpoint(path string, params url.Values) (full, redacted string) {
	params.Set("fmt", "json")
	redacted = c.baseURL + path + "?" + params.Encode()
	params.Set("api_token", c.apiKey)
	return c.baseURL + path + "?" + params.Encode(), redacted
}

// FetchIntraday returns raw bars for symbol. Zero bounds and an empty
// interval are omitted from the request so the provider defaults apply.
func (c *EODHDClient) FetchIntraday(ctx context.Context, symbol string, from, to time.Time, interval string) ([]domain.RawBar, error) {
	params := url.Values{}
	if interval != "" {
		params.Set("interval", interval)
	}
	if !from.IsZero() {
		params.Set("from", strconv.FormatInt(from.Unix(), 10))
	}
	if !to.IsZero() {
		params.Set("to", strconv.FormatInt(to.Unix(), 10))
	}
	u, logURL := c.endpoint("intraday/"+url.PathEscape(symbol), params)
	body, err := c.http.get(ctx, u, logURL)
	if err != nil {
		return nil, err
	}
	return parseIntraday(body), nil
}

func parseIntraday(body []byte) []domain.RawBar {
	arr := gjson.ParseBytes(body)
	if !arr.IsArray() {
		return []domain.RawBar{}
	}
	out := make([]domain.RawBar, 0, len(arr.Array()))
	arr.ForEach(func(_, v gjson.Result) bool {
		ts := v.Get("timestamp")
		out = append(out, domain.RawBar{
			Timestamp:    ts.Int(),
			HasTimestamp: ts.Type == gjson.Number,
			Datetime:     v.Get("datetime").String(),
			Open:         v.Get("open").Raw,
			High:         v.Get("high").Raw,
			Low:          v.Get("low").Raw,
			Close:        v.Get("close").Raw,
			Volume:       v.Get("volume").Raw,
		})
		return true
	})
	return out
}

// FetchNewsForTicker returns up to 100 raw headlines for ticker.
func (c *EODHDClient) FetchNewsForTicker(ctx context.Context, ticker string, from, to time.Time) ([]domain.RawNewsItem, error) {
	params := url.Values{}
	params.Set("s", ticker)
	params.Set("limit", strconv.Itoa(newsLimit))
	if !from.IsZero() {
		params.Set("from", from.UTC().Format(time.DateOnly))
	}
	if !to.IsZero() {
		params.Set("to", to.UTC().Format(time.DateOnly))
	}
	u, logURL := c.endpoint("news", params)
	body, err := c.http.get(ctx, u, logURL)
	if err != nil {
		return nil, err
	}
	items := gjson.ParseBytes(body)
	out := make([]domain.RawNewsItem, 0)
	items.ForEach(func(_, v gjson.Result) bool {
		out = append(out, domain.RawNewsItem{
			Date:  v.Get("date").String(),
			Title: v.Get("title").String(),
			Link:  v.Get("link").String(),
		})
		return true
	})
	return out, nil
}

// FetchSymbols returns the common stocks listed on exchange.
func (c *EODHDClient) FetchSymbols(ctx context.Context, exchange string) ([]domain.Symbol, error) {
	params := url.Values{}
	params.Set("type", "common_stock")
	u, logURL := c.endpoint("exchange-symbol-list/"+url.PathEscape(strings.ToLower(exchange)), params)
	body, err := c.http.get(ctx, u, logURL)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Symbol, 0)
	gjson.ParseBytes(body).ForEach(func(_, v gjson.Result) bool {
		code := strings.TrimSpace(v.Get("Code").String())
		if code == "" {
			return true
		}
		out = append(out, domain.Symbol{
			Code:     code,
			Name:     v.Get("Name").String(),
			Exchange: v.Get("Exchange").String(),
			Type:     v.Get("Type").String(),
		})
		return true
	})
	return out, nil
}

var (
	_ ports.BarProvider    = (*EODHDClient)(nil)
	_ ports.NewsProvider   = (*EODHDClient)(nil)
	_ ports.SymbolProvider = (*EODHDClient)(nil)
)
