package collector

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"quantlab/types"
)

// CSVCollector serves candles from per-ticker CSV files in a directory:
// <dir>/<ticker>.csv with a header row and columns
// timestamp,open,high,low,close,volume. Timestamps are RFC 3339 or plain
// dates (2006-01-02).
type CSVCollector struct {
	Dir      string
	Interval types.Interval // interval stamped on loaded candles
}

func NewCSVCollector(dir string, interval types.Interval) *CSVCollector {
	return &CSVCollector{Dir: dir, Interval: interval}
}

func (c *CSVCollector) Name() string { return "csv" }

// GetCandles loads the ticker's file and filters rows to [start, end). The
// requested interval must match the collector's; CSV files are not
// resampled.
func (c *CSVCollector) GetCandles(ctx context.Context, ticker string, interval types.Interval, start, end time.Time) ([]types.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if interval != c.Interval {
		return nil, fmt.Errorf("csv source holds %s candles, %s requested", c.Interval, interval)
	}

	path := filepath.Join(c.Dir, ticker+".csv")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("ticker %s: %w", ticker, ErrNoData)
		}
		return nil, err
	}
	defer f.Close()

	candles, err := readCandles(f, ticker, c.Interval)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	filtered := candles[:0]
	for _, candle := range candles {
		if candle.Timestamp.Before(start) || !candle.Timestamp.Before(end) {
			continue
		}
		filtered = append(filtered, candle)
	}
	if len(filtered) == 0 {
		return nil, fmt.Errorf("ticker %s: %w", ticker, ErrNoData)
	}

	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Timestamp.Before(filtered[j].Timestamp) })
	return filtered, nil
}

func readCandles(r io.Reader, ticker string, interval types.Interval) ([]types.Candle, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("ticker %s: %w", ticker, ErrNoData)
	}

	var candles []types.Candle
	for i, rec := range records[1:] {
		if len(rec) < 6 {
			return nil, fmt.Errorf("row %d: want 6 columns, got %d", i+2, len(rec))
		}
		ts, err := parseTimestamp(rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}

		fields := make([]decimal.Decimal, 5)
		for j, raw := range rec[1:6] {
			fields[j], err = decimal.NewFromString(strings.TrimSpace(raw))
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", i+2, j+2, err)
			}
		}
		candles = append(candles, types.Candle{
			Ticker:    ticker,
			Open:      fields[0],
			High:      fields[1],
			Low:       fields[2],
			Close:     fields[3],
			Volume:    fields[4],
			Interval:  interval,
			Timestamp: ts,
		})
	}
	return candles, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts.UTC(), nil
	}
	ts, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q", raw)
	}
	return ts.UTC(), nil
}
