package chart

import (
	"math"

	"stockCharts/internal/chart/indicators"
	"stockCharts/internal/domain"
)

// BrickSize resolves the Renko brick size for bars under settings.
func BrickSize(bars []domain.Bar, settings domain.RenkoSettings) float64 {
	if len(bars) == 0 {
		return 0
	}
	switch settings.Mode {
	case domain.RenkoATR:
		return indicators.AverageTrueRange(bars, settings.ATRPeriod)
	case domain.RenkoPercentage:
		return bars[0].Close * settings.PercentageValue / 100
	default:
		return settings.FixedBrickSize
	}
}

// Renko converts bars into Renko bricks. Each brick carries the time of the
// bar that completed it and no volume. A brick size that is not a positive
// finite number yields no bricks.
//
// A move against the established direction first emits a reversal brick of
// twice the brick size, which counts as one of the bar's bricks.
func Renko(bars []domain.Bar, settings domain.RenkoSettings) []domain.Bar {
	bricks := []domain.Bar{}
	size := BrickSize(bars, settings)
	if len(bars) == 0 || !(size > 0) || math.IsInf(size, 0) {
		return bricks
	}

	lastPrice := bars[0].Close
	direction := 0

	for _, b := range bars {
		diff := b.Close - lastPrice
		n := int(math.Floor(math.Abs(diff) / size))
		if n == 0 {
			continue
		}
		dir := 1
		if diff < 0 {
			dir = -1
		}

		if direction != 0 && dir != direction {
			bricks = append(bricks, brick(b.Time, lastPrice, lastPrice+2*size*float64(dir)))
			lastPrice += 2 * size * float64(dir)
			n--
		}
		for i := 0; i < n; i++ {
			next := lastPrice + size*float64(dir)
			bricks = append(bricks, brick(b.Time, lastPrice, next))
			lastPrice = next
		}
		direction = dir
	}
	return bricks
}

func brick(t int64, open, close float64) domain.Bar {
	return domain.Bar{
		Time:  t,
		Open:  open,
		High:  math.Max(open, close),
		Low:   math.Min(open, close),
		Close: close,
	}
}
