package indicators

import (
	"math"

	"stockCharts/internal/domain"
)

// ATRConfig holds configuration for the Average True Range indicator
type ATRConfig struct {
	IndicatorConfig
}

// ATR implements the Average True Range indicator
type ATR struct {
	BaseIndicator
}

// NewATR creates a new Average True Range indicator instance
func NewATR(config ATRConfig) *ATR {
	return &ATR{BaseIndicator: BaseIndicator{Config: config.IndicatorConfig}}
}

// Name returns the name of the indicator
func (a *ATR) Name() string {
	return "ATR"
}

// Calculate computes the Average True Range using Wilder's smoothing.
//
// It returns 0 when there are fewer bars than the period. A result that is
// not finite or exactly zero falls back to 1 so it can be used as a divisor.
func (a *ATR) Calculate(bars []domain.Bar) float64 {
	period := a.Config.Period
	if period <= 0 || len(bars) < period {
		return 0
	}

	// True ranges start at the second bar, each needs the previous close
	trueRanges := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		high := bars[i].High
		low := bars[i].Low
		prevClose := bars[i-1].Close

		// True Range is the greatest of:
		// 1. Current High - Current Low
		// 2. |Current High - Previous Close|
		// 3. |Current Low - Previous Close|
		tr1 := high - low
		tr2 := math.Abs(high - prevClose)
		tr3 := math.Abs(low - prevClose)

		trueRanges = append(trueRanges, math.Max(tr1, math.Max(tr2, tr3)))
	}
	if len(trueRanges) == 0 {
		return 0
	}

	// Seed with the mean of the first 'period' true ranges. With exactly
	// 'period' bars only period-1 ranges exist; the divisor stays 'period'.
	seed := period
	if seed > len(trueRanges) {
		seed = len(trueRanges)
	}
	atr := 0.0
	for i := 0; i < seed; i++ {
		atr += trueRanges[i]
	}
	atr /= float64(period)

	for i := period; i < len(trueRanges); i++ {
		atr = (atr*float64(period-1) + trueRanges[i]) / float64(period)
	}

	if math.IsNaN(atr) || math.IsInf(atr, 0) || atr == 0 {
		return 1
	}
	return atr
}

// AverageTrueRange is a shorthand for NewATR with the given period.
func AverageTrueRange(bars []domain.Bar, period int) float64 {
	return NewATR(ATRConfig{IndicatorConfig: IndicatorConfig{Period: period}}).Calculate(bars)
}
