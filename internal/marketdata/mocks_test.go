package marketdata

import (
	"context"
	"errors"
	"sync"
	"time"

	"stockCharts/internal/domain"
)

type mockLogger struct {
	mu        sync.Mutex
	debugMsgs []string
	infoMsgs  []string
	warnMsgs  []string
	errorMsgs []string

	warnFields []map[string]interface{}
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.debugMsgs = append(m.debugMsgs, msg)
}

func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infoMsgs = append(m.infoMsgs, msg)
}

func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warnMsgs = append(m.warnMsgs, msg)
	if len(fields) > 0 {
		m.warnFields = append(m.warnFields, fields[0])
	}
}

func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorMsgs = append(m.errorMsgs, msg)
}

type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
	putErr  error
	puts    int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (m *memCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *memCache) Put(ctx context.Context, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.puts++
	m.entries[key] = payload
	return nil
}

func (m *memCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *memCache) InvalidateAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string][]byte)
	return nil
}

func (m *memCache) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for k := range m.entries {
		out = append(out, k)
	}
	return out
}

type barCall struct {
	Symbol   string
	From, To time.Time
	Interval string
}

type mockBars struct {
	mu    sync.Mutex
	raw   []domain.RawBar
	err   error
	calls []barCall
	delay time.Duration
}

func (m *mockBars) Name() string { return "mock" }

func (m *mockBars) FetchIntraday(ctx context.Context, symbol string, from, to time.Time, interval string) ([]domain.RawBar, error) {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, barCall{Symbol: symbol, From: from, To: to, Interval: interval})
	return m.raw, m.err
}

func (m *mockBars) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type mockNews struct {
	mu     sync.Mutex
	items  map[string][]domain.RawNewsItem
	failed map[string]bool
	calls  int
}

func (m *mockNews) Name() string { return "mock-news" }

func (m *mockNews) FetchNewsForTicker(ctx context.Context, ticker string, from, to time.Time) ([]domain.RawNewsItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failed[ticker] {
		return nil, errors.New("upstream 500")
	}
	return m.items[ticker], nil
}

type mockSentiment struct {
	mu     sync.Mutex
	rows   map[string][]domain.SentimentRecord
	failed map[string]bool
	calls  int
}

func (m *mockSentiment) Name() string { return "mock-sentiment" }

func (m *mockSentiment) FetchSentiment(ctx context.Context, ticker string, from, to time.Time) ([]domain.SentimentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failed[ticker] {
		return nil, errors.New("upstream 500")
	}
	return m.rows[ticker], nil
}

type mockSymbols struct {
	symbols []domain.Symbol
	calls   int
}

func (m *mockSymbols) Name() string { return "mock-symbols" }

func (m *mockSymbols) FetchSymbols(ctx context.Context, exchange string) ([]domain.Symbol, error) {
	m.calls++
	return m.symbols, nil
}
