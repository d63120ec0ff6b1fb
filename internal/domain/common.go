package domain

import "strings"

// ChartStyle selects how bars are presented.
type ChartStyle string

const (
	StyleCandlestick ChartStyle = "candlestick"
	StyleBar         ChartStyle = "bar"
	StyleLine        ChartStyle = "line"
	StyleArea        ChartStyle = "area"
	StyleBaseline    ChartStyle = "baseline"
	StyleHeikinAshi  ChartStyle = "heikin"
	StyleRenko       ChartStyle = "renko"
)

// ParseChartStyle converts user input to a ChartStyle. Unknown values fall back to candlestick.
func ParseChartStyle(s string) ChartStyle {
	switch ChartStyle(strings.ToLower(strings.TrimSpace(s))) {
	case StyleBar:
		return StyleBar
	case StyleLine:
		return StyleLine
	case StyleArea:
		return StyleArea
	case StyleBaseline:
		return StyleBaseline
	case StyleHeikinAshi, "heikin-ashi", "heikinashi":
		return StyleHeikinAshi
	case StyleRenko:
		return StyleRenko
	default:
		return StyleCandlestick
	}
}

// Interval values understood by the service.
const (
	IntervalStatic = "static" // Sampled long-range view, fetched at the provider's default interval
	Interval1m     = "1m"
	Interval5m     = "5m"
	Interval15m    = "15m"
	Interval30m    = "30m"
	Interval1h     = "1h"
)

// CacheKind identifies the payload type of a cache entry.
type CacheKind string

const (
	KindOHLC     CacheKind = "ohlc"
	KindNews     CacheKind = "news"
	KindRTAT     CacheKind = "rtat"
	KindRealtime CacheKind = "realtime"
	KindSymbols  CacheKind = "symbols"
)
