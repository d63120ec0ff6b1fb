package marketapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockCharts/internal/ports"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func newTestEODHD(t *testing.T, handler http.HandlerFunc) *EODHDClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewEODHDClient(EODHDConfig{APIKey: "secret", BaseURL: srv.URL, Logger: &mockLogger{}})
	require.NoError(t, err)
	c.http.retryDelay = time.Millisecond
	c.http.delay429 = time.Millisecond
	return c
}

func TestNewEODHDClient_RequiresKey(t *testing.T) {
	_, err := NewEODHDClient(EODHDConfig{Logger: &mockLogger{}})
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
}

func TestEODHD_FetchIntraday(t *testing.T) {
	from := time.Unix(1704204000, 0)
	to := time.Unix(1704290400, 0)
	c := newTestEODHD(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/intraday/AAPL.US", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "secret", q.Get("api_token"))
		assert.Equal(t, "json", q.Get("fmt"))
		assert.Equal(t, "5m", q.Get("interval"))
		assert.Equal(t, "1704204000", q.Get("from"))
		assert.Equal(t, "1704290400", q.Get("to"))
		w.Write([]byte(`[
			{"timestamp":1704204000,"gmtoffset":0,"datetime":"2024-01-02 14:00:00","open":10,"high":11,"low":9.5,"close":10.5,"volume":100},
			{"timestamp":1704204300,"datetime":"2024-01-02 14:05:00","open":null,"high":11,"low":9.5,"close":10.5,"volume":100},
			{"datetime":"2024-01-02 14:10:00","open":10,"high":11,"low":9.5,"close":10.5,"volume":100}
		]`))
	})

	raw, err := c.FetchIntraday(context.Background(), "AAPL.US", from, to, "5m")
	require.NoError(t, err)
	require.Len(t, raw, 3)
	assert.Equal(t, int64(1704204000), raw[0].Timestamp)
	assert.True(t, raw[0].HasTimestamp)
	assert.Equal(t, "10", raw[0].Open)
	assert.Equal(t, "null", raw[1].Open)
	assert.False(t, raw[2].HasTimestamp, "missing timestamp falls back to datetime")
	assert.Equal(t, "2024-01-02 14:10:00", raw[2].Datetime)
}

func TestEODHD_FetchIntradayOmitsEmptyParams(t *testing.T) {
	c := newTestEODHD(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.False(t, q.Has("interval"))
		assert.False(t, q.Has("from"))
		w.Write([]byte(`{"unexpected":"object"}`))
	})
	raw, err := c.FetchIntraday(context.Background(), "AAPL.US", time.Time{}, time.Time{}, "")
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestEODHD_RetriesTransientStatus(t *testing.T) {
	var calls int32
	c := newTestEODHD(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[]`))
	})
	_, err := c.FetchIntraday(context.Background(), "AAPL.US", time.Time{}, time.Time{}, "")
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestEODHD_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
		calls  int32
	}{
		{http.StatusUnauthorized, ports.ErrAuthenticationFailed, 1},
		{http.StatusNotFound, ports.ErrNotFound, 1},
		{http.StatusBadRequest, ports.ErrInvalidRequest, 1},
		{http.StatusTooManyRequests, ports.ErrRateLimited, 3},
		{http.StatusBadGateway, ports.ErrProviderUnavailable, 3},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var calls int32
			c := newTestEODHD(t, func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":"nope"}`))
			})
			_, err := c.FetchSymbols(context.Background(), "US")
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.calls, atomic.LoadInt32(&calls))
		})
	}
}

func TestEODHD_FetchNewsForTicker(t *testing.T) {
	c := newTestEODHD(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/news", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "AAPL.US", q.Get("s"))
		assert.Equal(t, "2024-01-02", q.Get("from"))
		assert.Equal(t, "100", q.Get("limit"))
		w.Write([]byte(`[{"date":"2024-01-03T10:00:00+00:00","title":"Apple rallies","link":"https://www.reuters.com/x","symbols":["AAPL.US"]}]`))
	})
	items, err := c.FetchNewsForTicker(context.Background(), "AAPL.US", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Apple rallies", items[0].Title)
	assert.Equal(t, "https://www.reuters.com/x", items[0].Link)
}

func TestEODHD_FetchSymbols(t *testing.T) {
	c := newTestEODHD(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/exchange-symbol-list/us", r.URL.Path)
		assert.Equal(t, "common_stock", r.URL.Query().Get("type"))
		w.Write([]byte(`[{"Code":"AAPL","Name":"Apple Inc","Exchange":"NASDAQ","Type":"Common Stock"},{"Code":"","Name":"blank"}]`))
	})
	syms, err := c.FetchSymbols(context.Background(), "US")
	require.NoError(t, err)
	require.Len(t, syms, 1)
	assert.Equal(t, "AAPL", syms[0].Code)
	assert.Equal(t, "NASDAQ", syms[0].Exchange)
}

func TestNasdaq_FetchSentiment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/datatables/NDAQ/RTAT", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "AAPL", q.Get("ticker"))
		assert.Equal(t, "2024-01-02", q.Get("date.gte"))
		assert.Equal(t, "2024-01-05", q.Get("date.lte"))
		assert.Equal(t, "key", q.Get("api_key"))
		w.Write([]byte(`{"datatable":{"data":[["2024-01-03","AAPL",0.0123,-2],["bad"]],"columns":[]}}`))
	}))
	defer srv.Close()

	c, err := NewNasdaqClient(NasdaqConfig{APIKey: "key", BaseURL: srv.URL, Logger: &mockLogger{}})
	require.NoError(t, err)
	rows, err := c.FetchSentiment(context.Background(), "aapl.us", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-01-03", rows[0].Date)
	assert.InDelta(t, 0.0123, rows[0].Activity, 1e-9)
	assert.Equal(t, -2.0, rows[0].Sentiment)
}
