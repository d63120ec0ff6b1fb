package indicators

import (
	"stockCharts/internal/domain"
)

// TrailingMeanClose is a simple moving average of closes over the last
// Period bars. Shorter series are averaged over what is available, so it
// never requires a warm-up.
type TrailingMeanClose struct {
	BaseIndicator
}

// NewTrailingMeanClose creates a trailing mean over period bars.
func NewTrailingMeanClose(period int) *TrailingMeanClose {
	return &TrailingMeanClose{BaseIndicator: BaseIndicator{Config: IndicatorConfig{Period: period}}}
}

// Name returns the name of the indicator
func (m *TrailingMeanClose) Name() string {
	return "SMA"
}

// RequiredDataPoints is 1; the mean shrinks its window for short series.
func (m *TrailingMeanClose) RequiredDataPoints() int {
	return 1
}

// Calculate returns the mean close of the last Period bars, or 0 without bars.
func (m *TrailingMeanClose) Calculate(bars []domain.Bar) float64 {
	if len(bars) == 0 || m.Config.Period <= 0 {
		return 0
	}
	start := len(bars) - m.Config.Period
	if start < 0 {
		start = 0
	}
	total := 0.0
	for i := start; i < len(bars); i++ {
		total += bars[i].Close
	}
	return total / float64(len(bars)-start)
}
