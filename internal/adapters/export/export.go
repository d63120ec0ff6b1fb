package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"stockCharts/internal/domain"
	"stockCharts/internal/ports"
)

// Writer persists bars to a file.
type Writer interface {
	Extension() string
	Write(symbol, interval string, bars []domain.Bar, path string) error
}

// row is the flat record written by both formats.
type row struct {
	Time     string  `parquet:"time"`
	Symbol   string  `parquet:"symbol"`
	Interval string  `parquet:"interval"`
	Open     float64 `parquet:"open"`
	High     float64 `parquet:"high"`
	Low      float64 `parquet:"low"`
	Close    float64 `parquet:"close"`
	Volume   int64   `parquet:"volume"`
}

func toRows(symbol, interval string, bars []domain.Bar) []row {
	rows := make([]row, len(bars))
	for i, b := range bars {
		rows[i] = row{
			Time:     b.Timestamp().Format(time.RFC3339),
			Symbol:   symbol,
			Interval: interval,
			Open:     b.Open,
			High:     b.High,
			Low:      b.Low,
			Close:    b.Close,
			Volume:   b.Volume,
		}
	}
	return rows
}

// NewWriter returns the writer for format ("csv" or "parquet").
func NewWriter(format string) (Writer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "csv":
		return CSVWriter{}, nil
	case "parquet":
		return ParquetWriter{}, nil
	default:
		return nil, ports.NewValidationError("format", fmt.Sprintf("unsupported export format %q", format))
	}
}

// FileName builds "<symbol>_<interval>_<from>_to_<to>.<ext>" for an export.
func FileName(w Writer, symbol, interval string, from, to time.Time) string {
	return fmt.Sprintf("%s_%s_%s_to_%s.%s", symbol, interval, from.Format("20060102"), to.Format("20060102"), w.Extension())
}

// CSVWriter writes bars as CSV with a header row.
type CSVWriter struct{}

func (CSVWriter) Extension() string { return "csv" }

func (CSVWriter) Write(symbol, interval string, bars []domain.Bar, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"time", "symbol", "interval", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, r := range toRows(symbol, interval, bars) {
		if err := writer.Write([]string{
			r.Time,
			r.Symbol,
			r.Interval,
			strconv.FormatFloat(r.Open, 'f', -1, 64),
			strconv.FormatFloat(r.High, 'f', -1, 64),
			strconv.FormatFloat(r.Low, 'f', -1, 64),
			strconv.FormatFloat(r.Close, 'f', -1, 64),
			strconv.FormatInt(r.Volume, 10),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ParquetWriter writes bars as a Parquet file.
type ParquetWriter struct{}

func (ParquetWriter) Extension() string { return "parquet" }

func (ParquetWriter) Write(symbol, interval string, bars []domain.Bar, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return parquet.WriteFile(path, toRows(symbol, interval, bars))
}
