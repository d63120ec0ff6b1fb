package analytics

import (
	"sort"
	"time"

	"stockCharts/internal/chart/indicators"
	"stockCharts/internal/domain"
)

const (
	fourWeekBars    = 20  // ~4 weeks of daily closes
	fiftyTwoWeekBar = 260 // ~52 weeks of daily closes
)

// Summarize computes the dashboard metrics for bars and the (already lagged)
// sentiment records of the same ticker. The input slices are not modified.
//
// VWAP is the unweighted mean of typical prices and TotalVolume is the mean
// volume per bar. Both names are kept from the dashboard they feed.
func Summarize(bars []domain.Bar, sentiment []domain.SentimentRecord) domain.SummaryMetrics {
	metrics := domain.SummaryMetrics{
		BiasScore: BiasScores(bars),
	}
	metrics.AvgSentiment, metrics.AvgActivity = sentimentAverages(sentiment)

	if len(bars) == 0 {
		return metrics
	}
	sorted := sortedByTime(bars)

	var typical, priceRange, volume, volatility float64
	for _, b := range sorted {
		typical += b.TypicalPrice()
		priceRange += b.High - b.Low
		volume += float64(b.Volume)
		if b.Open != 0 {
			volatility += (b.High - b.Low) / b.Open * 100
		}
	}
	n := float64(len(sorted))
	metrics.VWAP = typical / n
	metrics.PriceRange = priceRange / n
	metrics.TotalVolume = volume / n
	metrics.Volatility = volatility / n
	metrics.Avg4W = indicators.NewTrailingMeanClose(fourWeekBars).Calculate(sorted)
	metrics.Avg52W = indicators.NewTrailingMeanClose(fiftyTwoWeekBar).Calculate(sorted)
	return metrics
}

// segmentDay accumulates the bars of one segment on one UTC day.
type segmentDay struct {
	open   float64
	close  float64
	volume int64
}

type segmentKey struct {
	day     string
	segment domain.Segment
}

// BiasScores scores each intraday segment as (buy-sell)/(buy+sell) volume.
// Bars of a segment are merged per UTC day (first open, last close, summed
// volume); the merged candle counts as buy volume when it closed above its
// open and as sell volume when it closed below. Every segment is present in
// the result and lies in [-1, 1].
func BiasScores(bars []domain.Bar) map[domain.Segment]float64 {
	scores := make(map[domain.Segment]float64, len(domain.Segments))
	for _, s := range domain.Segments {
		scores[s] = 0
	}
	if len(bars) == 0 {
		return scores
	}

	merged := make(map[segmentKey]*segmentDay)
	var order []segmentKey
	for _, b := range sortedByTime(bars) {
		ts := b.Timestamp()
		seg, ok := domain.SegmentForHour(ts.Hour())
		if !ok {
			continue
		}
		key := segmentKey{day: ts.Format(time.DateOnly), segment: seg}
		sd, seen := merged[key]
		if !seen {
			sd = &segmentDay{open: b.Open}
			merged[key] = sd
			order = append(order, key)
		}
		sd.close = b.Close
		sd.volume += b.Volume
	}

	buy := make(map[domain.Segment]float64)
	sell := make(map[domain.Segment]float64)
	for _, key := range order {
		sd := merged[key]
		switch {
		case sd.close > sd.open:
			buy[key.segment] += float64(sd.volume)
		case sd.close < sd.open:
			sell[key.segment] += float64(sd.volume)
		}
	}
	for _, s := range domain.Segments {
		if total := buy[s] + sell[s]; total > 0 {
			scores[s] = (buy[s] - sell[s]) / total
		}
	}
	return scores
}

func sentimentAverages(records []domain.SentimentRecord) (sentiment, activity float64) {
	if len(records) == 0 {
		return 0, 0
	}
	for _, r := range records {
		sentiment += r.Sentiment
		activity += r.Activity
	}
	n := float64(len(records))
	return sentiment / n, activity / n
}

func sortedByTime(bars []domain.Bar) []domain.Bar {
	out := make([]domain.Bar, len(bars))
	copy(out, bars)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}
