package marketdata

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"stockCharts/internal/domain"
)

// datetimeLayouts are tried in order when a record has no epoch timestamp.
// Layouts without a zone are read as UTC.
var datetimeLayouts = []string{
	time.DateTime,
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// Normalize validates raw provider records and returns them as bars sorted by
// time. Records without a usable timestamp, with a price or volume that is not
// a finite number, with volume outside the int64 range, or whose high/low do not bracket
// open and close are dropped. Ties keep provider order.
func Normalize(raw []domain.RawBar) []domain.Bar {
	bars := make([]domain.Bar, 0, len(raw))
	for _, r := range raw {
		b, ok := normalizeOne(r)
		if !ok {
			continue
		}
		bars = append(bars, b)
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time < bars[j].Time })
	return bars
}

func normalizeOne(r domain.RawBar) (domain.Bar, bool) {
	ts, ok := parseTimestamp(r)
	if !ok {
		return domain.Bar{}, false
	}
	open, ok1 := parseFinite(r.Open)
	high, ok2 := parseFinite(r.High)
	low, ok3 := parseFinite(r.Low)
	closePrice, ok4 := parseFinite(r.Close)
	volume, ok5 := parseFinite(r.Volume)
	if !(ok1 && ok2 && ok3 && ok4 && ok5) || volume < 0 || volume >= math.MaxInt64 {
		return domain.Bar{}, false
	}
	if low > math.Min(open, closePrice) || high < math.Max(open, closePrice) {
		return domain.Bar{}, false
	}
	return domain.Bar{
		Time:   ts,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: int64(volume),
	}, true
}

func parseTimestamp(r domain.RawBar) (int64, bool) {
	if r.HasTimestamp || r.Timestamp != 0 {
		return r.Timestamp, true
	}
	s := strings.TrimSpace(r.Datetime)
	if s == "" {
		return 0, false
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.Unix(), true
		}
	}
	return 0, false
}

// parseFinite reads a provider value such as `12.5`, `"12.5"` or `null`.
func parseFinite(s string) (float64, bool) {
	s = strings.Trim(strings.TrimSpace(s), `"`)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
