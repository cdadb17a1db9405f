package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"quantlab/types"
)

var bucketToInterval = map[types.Interval]string{
	types.Hour: "1 hour",
	types.Day:  "1 day",
	types.Week: "1 week",
}

// GetCandles returns bucketed candles for a ticker, ordered by timestamp.
// ErrAssetNotFound, ErrNoCandles and ErrIntervalNotSupported are returned as
// errors.Is-able sentinels so callers can treat missing data as a skip rather
// than a failure.
func (db *Database) GetCandles(ctx context.Context, ticker string, interval types.Interval, start, end time.Time) ([]types.Candle, error) {
	bucket, ok := bucketToInterval[interval]
	if !ok {
		return nil, ErrIntervalNotSupported
	}

	asset, err := db.GetAssetByTicker(ctx, ticker)
	if err != nil {
		return nil, err
	}

	rows, err := db.candles.GetAggregates(ctx, aggregateParams{
		Bucket:  bucket,
		AssetID: int32(asset.Id),
		Start:   start,
		End:     end,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoCandles
		}
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoCandles
	}
	return convertCandles(rows, interval, ticker), nil
}

func convertCandles(rows []candleRow, interval types.Interval, ticker string) []types.Candle {
	var candles []types.Candle
	for _, row := range rows {
		candles = append(candles, types.Candle{
			Ticker:    ticker,
			Open:      row.Open,
			High:      row.High,
			Low:       row.Low,
			Close:     row.Close,
			Volume:    row.Volume,
			Interval:  interval,
			Timestamp: row.Bucket,
		})
	}
	return candles
}
