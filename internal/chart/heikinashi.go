package chart

import (
	"math"

	"stockCharts/internal/domain"
)

// HeikinAshi converts bars to Heikin-Ashi candles. The output has the same
// length and times as the input; the first candle is the first bar unchanged.
// Each candle depends on the previous one, so the walk is strictly sequential.
func HeikinAshi(bars []domain.Bar) []domain.Bar {
	if len(bars) == 0 {
		return []domain.Bar{}
	}
	out := make([]domain.Bar, len(bars))
	out[0] = bars[0]
	for i := 1; i < len(bars); i++ {
		raw := bars[i]
		prev := out[i-1]
		haClose := raw.TypicalPrice()
		haOpen := (prev.Open + prev.Close) / 2
		out[i] = domain.Bar{
			Time:   raw.Time,
			Open:   haOpen,
			High:   math.Max(raw.High, math.Max(haOpen, haClose)),
			Low:    math.Min(raw.Low, math.Min(haOpen, haClose)),
			Close:  haClose,
			Volume: raw.Volume,
		}
	}
	return out
}
