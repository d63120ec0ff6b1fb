package analytics

import (
	"math"
	"time"

	"stockCharts/internal/domain"
)

// CumulativeVWAP is the volume weighted average of (high+low+close)/3 over
// bars[0..idx]. ok is false when idx is out of range or no volume traded.
func CumulativeVWAP(bars []domain.Bar, idx int) (vwap float64, ok bool) {
	if idx < 0 || idx >= len(bars) {
		return 0, false
	}
	var pv, vol float64
	for i := 0; i <= idx; i++ {
		typical := (bars[i].High + bars[i].Low + bars[i].Close) / 3
		pv += typical * float64(bars[i].Volume)
		vol += float64(bars[i].Volume)
	}
	if vol <= 0 {
		return 0, false
	}
	return pv / vol, true
}

// LaggedSentiment returns the record dated one calendar day (UTC) before the
// bar. Sentiment readings are published for the previous session.
func LaggedSentiment(bar domain.Bar, records []domain.SentimentRecord) (domain.SentimentRecord, bool) {
	lag := bar.Timestamp().AddDate(0, 0, -1).Format(time.DateOnly)
	for _, r := range records {
		if r.Date == lag {
			return r, true
		}
	}
	return domain.SentimentRecord{}, false
}

// LaggedRecords keeps the records dated one calendar day (UTC) before any of
// the bars, in their original order. This is the sentiment input for Summarize.
func LaggedRecords(bars []domain.Bar, records []domain.SentimentRecord) []domain.SentimentRecord {
	lags := make(map[string]struct{}, 2)
	for _, b := range bars {
		lags[b.Timestamp().AddDate(0, 0, -1).Format(time.DateOnly)] = struct{}{}
	}
	out := make([]domain.SentimentRecord, 0, len(records))
	for _, r := range records {
		if _, ok := lags[r.Date]; ok {
			out = append(out, r)
		}
	}
	return out
}

// ComputeDayStats returns the high, low and mean close across bars.
func ComputeDayStats(bars []domain.Bar) (domain.DayStats, bool) {
	if len(bars) == 0 {
		return domain.DayStats{}, false
	}
	stats := domain.DayStats{High: math.Inf(-1), Low: math.Inf(1)}
	var closes float64
	for _, b := range bars {
		stats.High = math.Max(stats.High, b.High)
		stats.Low = math.Min(stats.Low, b.Low)
		closes += b.Close
	}
	stats.AvgClose = closes / float64(len(bars))
	return stats, true
}
