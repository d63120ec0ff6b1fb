package marketdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockCharts/internal/domain"
)

func TestNormalize_DropsInvalidRecords(t *testing.T) {
	raw := []domain.RawBar{
		{Timestamp: 300, Open: "10", High: "11", Low: "9", Close: "10.5", Volume: "5"},
		// no timestamp
		{Timestamp: 0, Datetime: "", Open: "10", High: "11", Low: "9", Close: "10", Volume: "1"},
		// null open
		{Timestamp: 400, Open: "null", High: "11", Low: "9", Close: "10", Volume: "1"},
		// negative volume
		{Timestamp: 500, Open: "10", High: "11", Low: "9", Close: "10", Volume: "-1"},
		// high below close
		{Timestamp: 600, Open: "10", High: "10.2", Low: "9", Close: "10.5", Volume: "1"},
		// low above open
		{Timestamp: 700, Open: "10", High: "11", Low: "10.1", Close: "10.5", Volume: "1"},
		// infinite
		{Timestamp: 800, Open: "+Inf", High: "11", Low: "9", Close: "10", Volume: "1"},
		// volume beyond int64
		{Timestamp: 900, Open: "10", High: "11", Low: "9", Close: "10", Volume: "1e19"},
		{Datetime: "2024-01-02 14:30:00", Open: `"20"`, High: "21", Low: "19", Close: "20", Volume: "7"},
	}

	bars := Normalize(raw)
	require.Len(t, bars, 2)
	assert.Equal(t, int64(300), bars[0].Time)
	assert.Equal(t, int64(1704205800), bars[1].Time)
	assert.Equal(t, 20.0, bars[1].Open)
	assert.Equal(t, int64(7), bars[1].Volume)
}

func TestNormalize_EpochZeroTimestamp(t *testing.T) {
	raw := []domain.RawBar{
		{Timestamp: 60, Open: "2", High: "2", Low: "2", Close: "2", Volume: "1"},
		{Timestamp: 0, HasTimestamp: true, Open: "1", High: "1", Low: "1", Close: "1", Volume: "1"},
	}
	bars := Normalize(raw)
	require.Len(t, bars, 2)
	assert.Equal(t, int64(0), bars[0].Time)
	assert.Equal(t, 1.0, bars[0].Close)
}

func TestNormalize_SortsAndKeepsTieOrder(t *testing.T) {
	raw := []domain.RawBar{
		{Timestamp: 200, Open: "2", High: "2", Low: "2", Close: "2", Volume: "0"},
		{Timestamp: 100, Open: "1", High: "1", Low: "1", Close: "1", Volume: "0"},
		{Timestamp: 200, Open: "3", High: "3", Low: "3", Close: "3", Volume: "0"},
	}
	bars := Normalize(raw)
	require.Len(t, bars, 3)
	assert.Equal(t, []float64{1, 2, 3}, []float64{bars[0].Close, bars[1].Close, bars[2].Close})
}

func TestNormalize_DatetimeLayouts(t *testing.T) {
	for _, s := range []string{"2024-01-02T14:30:00Z", "2024-01-02T14:30:00", "2024-01-02 14:30:00"} {
		bars := Normalize([]domain.RawBar{{Datetime: s, Open: "1", High: "1", Low: "1", Close: "1", Volume: "1"}})
		require.Len(t, bars, 1, s)
		assert.Equal(t, int64(1704205800), bars[0].Time, s)
	}
}

func TestNormalize_EmptyInput(t *testing.T) {
	bars := Normalize(nil)
	assert.NotNil(t, bars)
	assert.Empty(t, bars)
}
