package marketapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"stockCharts/internal/domain"
	"stockCharts/internal/ports"
)

const DefaultNasdaqBaseURL = "https://data.nasdaq.com/api/v3/"

// rtatColumns is the column order requested from the RTAT datatable.
const rtatColumns = "date,ticker,activity,sentiment"

// NasdaqClient reads retail trading activity (RTAT) from Nasdaq Data Link.
type NasdaqClient struct {
	baseURL string
	apiKey  string
	http    *transport
}

// NasdaqConfig configures a NasdaqClient.
type NasdaqConfig struct {
	APIKey     string
	BaseURL    string // Defaults to DefaultNasdaqBaseURL
	HTTPClient *http.Client
	Logger     ports.Logger
}

// NewNasdaqClient creates a Nasdaq Data Link client.
func NewNasdaqClient(cfg NasdaqConfig) (*NasdaqClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: Nasdaq API key is required", ports.ErrConfigurationError)
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("%w: logger is required for Nasdaq client", ports.ErrConfigurationError)
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultNasdaqBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &NasdaqClient{baseURL: base, apiKey: cfg.APIKey, http: newTransport(cfg.HTTPClient, cfg.Logger)}, nil
}

func (c *NasdaqClient) Name() string { return "nasdaq" }

// FetchSentiment returns one record per day for ticker in [from, to].
// A trailing ".US" exchange suffix is stripped since RTAT only covers US listings.
func (c *NasdaqClient) FetchSentiment(ctx context.Context, ticker string, from, to time.Time) ([]domain.SentimentRecord, error) {
	params := url.Values{}
	params.Set("ticker", baseTicker(ticker))
	if !from.IsZero() {
		params.Set("date.gte", from.UTC().Format(time.DateOnly))
	}
	if !to.IsZero() {
		params.Set("date.lte", to.UTC().Format(time.DateOnly))
	}
	params.Set("qopts.columns", rtatColumns)
	logURL := c.baseURL + "datatables/NDAQ/RTAT?" + params.Encode()
	params.Set("api_key", c.apiKey)
	body, err := c.http.get(ctx, c.baseURL+"datatables/NDAQ/RTAT?"+params.Encode(), logURL)
	if err != nil {
		return nil, err
	}
	return parseRTAT(body), nil
}

func parseRTAT(body []byte) []domain.SentimentRecord {
	out := make([]domain.SentimentRecord, 0)
	gjson.GetBytes(body, "datatable.data").ForEach(func(_, row gjson.Result) bool {
		cols := row.Array()
		if len(cols) < 4 {
			return true
		}
		out = append(out, domain.SentimentRecord{
			Date:      cols[0].String(),
			Activity:  cols[2].Float(),
			Sentiment: cols[3].Float(),
		})
		return true
	})
	return out
}

func baseTicker(ticker string) string {
	return strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(ticker)), ".US")
}

var _ ports.SentimentProvider = (*NasdaqClient)(nil)
