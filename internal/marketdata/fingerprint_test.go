package marketdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stockCharts/internal/domain"
)

func TestFingerprint_String(t *testing.T) {
	from := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	to := time.Date(2024, 1, 7, 16, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		fp   Fingerprint
		want string
	}{
		{
			name: "ohlc with interval",
			fp:   Fingerprint{Kind: domain.KindOHLC, Symbols: []string{"AAPL.US"}, From: from, To: to, Interval: "5m"},
			want: "ohlc_AAPL.US_from_2024-01-01_to_2024-01-07_interval_5m",
		},
		{
			name: "multi ticker without interval",
			fp:   Fingerprint{Kind: domain.KindNews, Symbols: []string{"AAPL.US", "MSFT.US"}, From: from, To: to},
			want: "news_AAPL.US+MSFT.US_from_2024-01-01_to_2024-01-07_interval_na",
		},
		{
			name: "unsafe characters",
			fp:   Fingerprint{Kind: domain.KindOHLC, Symbols: []string{"BRK/B US"}, From: from, To: to, Interval: "1h"},
			want: "ohlc_BRK%2FB%20US_from_2024-01-01_to_2024-01-07_interval_1h",
		},
		{
			name: "no bounds",
			fp:   Fingerprint{Kind: domain.KindSymbols, Symbols: []string{"US"}},
			want: "symbols_US_from_na_to_na_interval_na",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fp.String())
		})
	}
}

func TestFingerprint_DistinctSymbolsNeverShareKey(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	key := func(symbols ...string) string {
		return Fingerprint{Kind: domain.KindOHLC, Symbols: symbols, From: day, To: day, Interval: "5m"}.String()
	}

	assert.NotEqual(t, key("A B"), key("A_B"))
	assert.NotEqual(t, key("A+B"), key("A", "B"))
	assert.NotContains(t, SanitizeSymbol("A_B+C é"), "_")
	assert.NotContains(t, SanitizeSymbol("A_B+C é"), "+")
	assert.Equal(t, "A%5FB%2BC%20%C3%A9", SanitizeSymbol("A_B+C é"))
}

func TestFingerprint_DatesAreUTC(t *testing.T) {
	ny := time.FixedZone("EST", -5*3600)
	fp := Fingerprint{
		Kind:    domain.KindOHLC,
		Symbols: []string{"AAPL.US"},
		From:    time.Date(2024, 1, 1, 22, 0, 0, 0, ny),
		To:      time.Date(2024, 1, 2, 22, 0, 0, 0, ny),
	}
	assert.Equal(t, "ohlc_AAPL.US_from_2024-01-02_to_2024-01-03_interval_na", fp.String())
}

func TestNormalizeTickers(t *testing.T) {
	assert.Equal(t, []string{"AAPL.US", "MSFT.US"}, NormalizeTickers([]string{" msft.us", "AAPL.US", "", "aapl.us"}))
	assert.Empty(t, NormalizeTickers(nil))
}

func TestIdentifyPublication(t *testing.T) {
	pub, ok := IdentifyPublication("https://www.Bloomberg.com/news/x")
	assert.True(t, ok)
	assert.Equal(t, "Bloom Berg", pub)

	_, ok = IdentifyPublication("https://seekingalpha.com/x")
	assert.False(t, ok)
}
