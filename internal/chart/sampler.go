package chart

import (
	"time"

	"stockCharts/internal/domain"
)

// Slot is a time of day at which a static view keeps a bar.
type Slot struct {
	Hour   int
	Minute int
}

// slotBucket maps spans up to MaxDays to their slot list.
type slotBucket struct {
	MaxDays float64
	Slots   []Slot
}

// staticSlots is ordered by MaxDays. The last bucket covers any longer span.
var staticSlots = []slotBucket{
	{MaxDays: 5, Slots: []Slot{
		{4, 0}, {5, 0}, {6, 0}, {7, 0}, {8, 0}, {9, 0}, {10, 0}, {12, 0},
		{14, 0}, {16, 0}, {16, 30}, {17, 0}, {19, 0},
	}},
	{MaxDays: 15, Slots: []Slot{
		{4, 0}, {7, 0}, {8, 30}, {9, 30}, {11, 0}, {13, 30}, {16, 30}, {17, 30}, {19, 0},
	}},
	{MaxDays: 60, Slots: []Slot{{4, 0}, {9, 30}, {12, 0}, {16, 30}, {19, 0}}},
	{MaxDays: 120, Slots: []Slot{{4, 0}, {9, 30}, {16, 30}, {19, 0}}},
	{MaxDays: 210, Slots: []Slot{{4, 0}, {19, 0}}},
	{MaxDays: 365, Slots: []Slot{{19, 0}}},
}

// longRangeSlots applies beyond the last bucket, on Mondays and Fridays only.
var longRangeSlots = []Slot{{19, 0}}

const longRangeDays = 365

// SlotsForSpan returns the time-of-day slots used for a range of spanDays.
func SlotsForSpan(spanDays float64) []Slot {
	for _, b := range staticSlots {
		if spanDays <= b.MaxDays {
			return b.Slots
		}
	}
	return longRangeSlots
}

// SpanDays is the length of [from, to] in days.
func SpanDays(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24
}

// StaticTimestamps returns the set of epoch seconds a static view keeps for
// the range. Slots are laid out once per calendar day in from's location;
// weekends are skipped and spans beyond a year keep only Mondays and Fridays.
func StaticTimestamps(from, to time.Time) map[int64]struct{} {
	allowed := make(map[int64]struct{})
	if to.Before(from) {
		return allowed
	}
	span := SpanDays(from, to)
	slots := SlotsForSpan(span)
	loc := from.Location()

	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	for ; !day.After(to); day = day.AddDate(0, 0, 1) {
		wd := day.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			continue
		}
		if span > longRangeDays && wd != time.Monday && wd != time.Friday {
			continue
		}
		for _, s := range slots {
			ts := time.Date(day.Year(), day.Month(), day.Day(), s.Hour, s.Minute, 0, 0, loc)
			allowed[ts.Unix()] = struct{}{}
		}
	}
	return allowed
}

// Sample keeps the bars whose time matches one of the static slot timestamps
// of [from, to]. Input order is preserved.
func Sample(bars []domain.Bar, from, to time.Time) []domain.Bar {
	allowed := StaticTimestamps(from, to)
	out := make([]domain.Bar, 0, len(allowed))
	for _, b := range bars {
		if _, ok := allowed[b.Time]; ok {
			out = append(out, b)
		}
	}
	return out
}

// WidenToDays stretches a range to cover its first and last calendar day
// entirely in loc: from becomes 00:00 and to becomes 23:59:59.999.
func WidenToDays(from, to time.Time, loc *time.Location) (time.Time, time.Time) {
	f := from.In(loc)
	t := to.In(loc)
	start := time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, loc)
	end := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), loc)
	return start, end
}
