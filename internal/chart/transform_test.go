package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockCharts/internal/domain"
)

func ohlc(t int64, o, h, l, c float64) domain.Bar {
	return domain.Bar{Time: t, Open: o, High: h, Low: l, Close: c, Volume: 100}
}

func TestHeikinAshi(t *testing.T) {
	bars := []domain.Bar{
		ohlc(0, 10, 12, 9, 11),
		ohlc(60, 11, 13, 10, 12),
		ohlc(120, 12, 12, 8, 9),
	}

	ha := HeikinAshi(bars)

	require.Len(t, ha, len(bars))
	assert.Equal(t, bars[0], ha[0])

	// Second candle: close = mean(11,13,10,12) = 11.5, open = mean(10, 11) = 10.5
	assert.InDelta(t, 11.5, ha[1].Close, 1e-9)
	assert.InDelta(t, 10.5, ha[1].Open, 1e-9)
	assert.Equal(t, 13.0, ha[1].High)
	assert.Equal(t, 10.0, ha[1].Low)

	for i := 1; i < len(ha); i++ {
		assert.Equal(t, bars[i].Time, ha[i].Time)
		assert.GreaterOrEqual(t, ha[i].High, ha[i].Open)
		assert.GreaterOrEqual(t, ha[i].High, ha[i].Close)
		assert.LessOrEqual(t, ha[i].Low, ha[i].Open)
		assert.LessOrEqual(t, ha[i].Low, ha[i].Close)
	}
}

func TestHeikinAshi_Empty(t *testing.T) {
	assert.Empty(t, HeikinAshi(nil))
}

func fixed(size float64) domain.RenkoSettings {
	return domain.RenkoSettings{Mode: domain.RenkoFixed, FixedBrickSize: size}
}

func TestRenko_NonPositiveBrickSizeYieldsNothing(t *testing.T) {
	bars := []domain.Bar{ohlc(0, 10, 12, 9, 10), ohlc(60, 10, 20, 10, 20)}

	assert.Empty(t, Renko(bars, fixed(0)))
	assert.Empty(t, Renko(bars, fixed(-1)))
	assert.Empty(t, Renko(bars, domain.RenkoSettings{Mode: domain.RenkoPercentage, PercentageValue: 0}))
}

func TestRenko_SingleBarHasNoMovement(t *testing.T) {
	bars := []domain.Bar{ohlc(0, 10, 12, 9, 11)}
	assert.Empty(t, Renko(bars, fixed(1)))
}

func TestRenko_OneUpBrick(t *testing.T) {
	bars := []domain.Bar{ohlc(0, 10, 10, 10, 10), ohlc(60, 10, 12, 9, 11)}

	bricks := Renko(bars, fixed(1))

	require.Len(t, bricks, 1)
	assert.Equal(t, domain.Bar{Time: 60, Open: 10, High: 11, Low: 10, Close: 11}, bricks[0])
}

func TestRenko_RisingSeriesMovesUpByBrickSize(t *testing.T) {
	var bars []domain.Bar
	for i := 0; i < 20; i++ {
		c := 100 + float64(i)*1.7
		bars = append(bars, ohlc(int64(i*60), c, c+1, c-1, c))
	}

	bricks := Renko(bars, fixed(0.5))

	require.NotEmpty(t, bricks)
	for _, b := range bricks {
		assert.InDelta(t, 0.5, b.Close-b.Open, 1e-9)
	}
}

func TestRenko_ReversalBrickIsDoubleSize(t *testing.T) {
	bars := []domain.Bar{
		ohlc(0, 10, 10, 10, 10),
		ohlc(60, 10, 12, 10, 12),  // two up bricks: 10->11->12
		ohlc(120, 12, 12, 10, 10), // diff -2: reversal 12->10, then 10->9
	}

	bricks := Renko(bars, fixed(1))

	require.Len(t, bricks, 4)
	assert.Equal(t, domain.Bar{Time: 120, Open: 12, High: 12, Low: 10, Close: 10}, bricks[2])
	assert.Equal(t, domain.Bar{Time: 120, Open: 10, High: 10, Low: 9, Close: 9}, bricks[3])
}

func TestRenko_PercentageAndATRBrickSizes(t *testing.T) {
	bars := []domain.Bar{ohlc(0, 200, 200, 200, 200), ohlc(60, 200, 204, 200, 204)}

	pct := domain.RenkoSettings{Mode: domain.RenkoPercentage, PercentageValue: 1}
	assert.InDelta(t, 2.0, BrickSize(bars, pct), 1e-9)
	assert.Len(t, Renko(bars, pct), 2)

	atr := domain.RenkoSettings{Mode: domain.RenkoATR, ATRPeriod: 14}
	assert.Equal(t, 0.0, BrickSize(bars, atr), "not enough bars for the ATR period")
	assert.Empty(t, Renko(bars, atr))
}

func TestApply(t *testing.T) {
	bars := []domain.Bar{ohlc(0, 10, 10, 10, 10), ohlc(60, 10, 12, 9, 11)}

	assert.Equal(t, bars, Apply(bars, domain.StyleLine, domain.DefaultRenkoSettings()))
	assert.Len(t, Apply(bars, domain.StyleHeikinAshi, domain.DefaultRenkoSettings()), 2)
	assert.Len(t, Apply(bars, domain.StyleRenko, domain.DefaultRenkoSettings()), 1)
}
