package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stockCharts/internal/domain"
)

func TestTrailingMeanClose(t *testing.T) {
	bars := closes(10, 20, 30, 40)

	tests := []struct {
		name   string
		period int
		bars   []domain.Bar
		want   float64
	}{
		{"last two", 2, bars, 35},
		{"period longer than series", 10, bars, 25},
		{"no bars", 3, nil, 0},
		{"non-positive period", 0, bars, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, NewTrailingMeanClose(tt.period).Calculate(tt.bars), 1e-9)
		})
	}
	assert.Equal(t, 1, NewTrailingMeanClose(5).RequiredDataPoints())
}

func closes(values ...float64) []domain.Bar {
	out := make([]domain.Bar, len(values))
	for i, v := range values {
		out[i] = bar(int64(i*60), v, v, v, v)
	}
	return out
}
