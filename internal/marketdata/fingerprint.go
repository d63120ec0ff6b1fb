package marketdata

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"stockCharts/internal/domain"
)

var unsafeSymbolChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// tickerSeparator joins multi-ticker fingerprints. Neither it nor the '_' part
// separator survives escaping, so parts cannot run into each other.
const tickerSeparator = "+"

// Fingerprint identifies a cache entry by the parameters of the request that produced it.
type Fingerprint struct {
	Kind     domain.CacheKind
	Symbols  []string
	From     time.Time // Zero when the request has no lower bound
	To       time.Time // Zero when the request has no upper bound
	Interval string
}

// String renders the fingerprint as a filesystem-safe cache key, e.g.
// "ohlc_AAPL.US_from_2024-01-01_to_2024-01-07_interval_5m". Dates are UTC.
func (f Fingerprint) String() string {
	safe := make([]string, len(f.Symbols))
	for i, s := range f.Symbols {
		safe[i] = SanitizeSymbol(s)
	}
	parts := []string{
		string(f.Kind),
		strings.Join(safe, tickerSeparator),
		"from_" + isoDate(f.From),
		"to_" + isoDate(f.To),
	}
	interval := "na"
	if f.Interval != "" {
		interval = escapeUnsafe(f.Interval)
	}
	parts = append(parts, "interval_"+interval)
	return strings.Join(parts, "_")
}

// SanitizeSymbol escapes every byte outside [A-Za-z0-9.-] as %XX, so distinct
// symbols keep distinct keys.
func SanitizeSymbol(symbol string) string {
	return escapeUnsafe(strings.TrimSpace(symbol))
}

func escapeUnsafe(s string) string {
	return unsafeSymbolChars.ReplaceAllStringFunc(s, func(m string) string {
		var b strings.Builder
		for i := 0; i < len(m); i++ {
			fmt.Fprintf(&b, "%%%02X", m[i])
		}
		return b.String()
	})
}

// NormalizeTickers trims, upper-cases, de-duplicates and sorts tickers.
// Empty entries are dropped.
func NormalizeTickers(tickers []string) []string {
	seen := make(map[string]struct{}, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func isoDate(t time.Time) string {
	if t.IsZero() {
		return "na"
	}
	return t.UTC().Format(time.DateOnly)
}
