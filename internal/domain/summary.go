package domain

// Segment is an intraday UTC hour window used for bias scoring.
type Segment string

const (
	SegmentPreMarket Segment = "04-09"
	SegmentMorning   Segment = "09-12"
	SegmentMidday    Segment = "12-16"
	SegmentAfter     Segment = "16-19"
)

// Segments lists the bias segments in chronological order.
var Segments = []Segment{SegmentPreMarket, SegmentMorning, SegmentMidday, SegmentAfter}

// SegmentForHour returns the segment containing the given UTC hour.
func SegmentForHour(hour int) (Segment, bool) {
	switch {
	case hour >= 4 && hour < 9:
		return SegmentPreMarket, true
	case hour >= 9 && hour < 12:
		return SegmentMorning, true
	case hour >= 12 && hour < 16:
		return SegmentMidday, true
	case hour >= 16 && hour < 19:
		return SegmentAfter, true
	default:
		return "", false
	}
}

// SummaryMetrics are the dashboard info-box values derived from a bar series.
type SummaryMetrics struct {
	VWAP         float64             `json:"vwap"`        // Mean typical price, not volume weighted
	PriceRange   float64             `json:"priceRange"`  // Mean high-low
	TotalVolume  float64             `json:"totalVolume"` // Mean volume per bar
	Volatility   float64             `json:"volatility"`  // Mean (high-low)/open in percent
	Avg4W        float64             `json:"avg4W"`
	Avg52W       float64             `json:"avg52W"`
	AvgSentiment float64             `json:"avgSentiment"`
	AvgActivity  float64             `json:"avgActivity"`
	BiasScore    map[Segment]float64 `json:"biasScore"`
}

// DayStats are the headline labels shown next to a realtime chart.
type DayStats struct {
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	AvgClose float64 `json:"avgClose"`
}
