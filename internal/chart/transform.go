package chart

import "stockCharts/internal/domain"

// Apply derives the series drawn for style. Styles without a transform
// return bars as they are.
func Apply(bars []domain.Bar, style domain.ChartStyle, settings domain.RenkoSettings) []domain.Bar {
	switch style {
	case domain.StyleHeikinAshi:
		return HeikinAshi(bars)
	case domain.StyleRenko:
		return Renko(bars, settings)
	default:
		return bars
	}
}
