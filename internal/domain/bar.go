package domain

import "time"

// Bar represents a single OHLCV price record.
type Bar struct {
	Time   int64   `json:"time" parquet:"time"` // Start of the interval, seconds since epoch
	Open   float64 `json:"open" parquet:"open"`
	High   float64 `json:"high" parquet:"high"`
	Low    float64 `json:"low" parquet:"low"`
	Close  float64 `json:"close" parquet:"close"`
	Volume int64   `json:"volume" parquet:"volume"`
}

// Timestamp returns the bar time as a UTC time.Time.
func (b Bar) Timestamp() time.Time {
	return time.Unix(b.Time, 0).UTC()
}

// TypicalPrice is the mean of open, high, low and close.
func (b Bar) TypicalPrice() float64 {
	return (b.Open + b.High + b.Low + b.Close) / 4
}

// RawBar is an unvalidated record as delivered by a market data provider.
// Numeric fields carry the provider's textual representation so the
// normalizer can decide whether they are usable.
type RawBar struct {
	Timestamp    int64  // Seconds since epoch
	HasTimestamp bool   // Timestamp was delivered; lets epoch 0 be told apart from a missing value
	Datetime     string // Provider datetime string (UTC), used without a timestamp
	Open         string
	High         string
	Low          string
	Close        string
	Volume       string
}
