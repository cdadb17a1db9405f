package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxQueries is the Postgres-backed querier. Candle aggregation relies on
// TimescaleDB's time_bucket and first/last.
type pgxQueries struct {
	pool *pgxpool.Pool
}

const getAssetByTickerSQL = `
SELECT id, ticker, name, type, created_at, modified_at
FROM assets
WHERE ticker = $1`

func (q *pgxQueries) GetAssetByTicker(ctx context.Context, ticker string) (assetRow, error) {
	var row assetRow
	err := q.pool.QueryRow(ctx, getAssetByTickerSQL, ticker).Scan(
		&row.ID,
		&row.Ticker,
		&row.Name,
		&row.Type,
		&row.CreatedAt,
		&row.ModifiedAt,
	)
	return row, err
}

const getAggregatesSQL = `
SELECT time_bucket($1::interval, ts) AS bucket,
       first(open, ts)               AS open,
       max(high)                     AS high,
       min(low)                      AS low,
       last(close, ts)               AS close,
       sum(volume)                   AS volume
FROM candles
WHERE asset_id = $2
  AND ts >= $3
  AND ts < $4
GROUP BY bucket
ORDER BY bucket`

func (q *pgxQueries) GetAggregates(ctx context.Context, arg aggregateParams) ([]candleRow, error) {
	rows, err := q.pool.Query(ctx, getAggregatesSQL, arg.Bucket, arg.AssetID, arg.Start, arg.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []candleRow
	for rows.Next() {
		var r candleRow
		if err := rows.Scan(&r.Bucket, &r.Open, &r.High, &r.Low, &r.Close, &r.Volume); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
