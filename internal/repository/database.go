// Package repository reads historical market data from Postgres/TimescaleDB.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrIntervalNotSupported = errors.New("timeframe not supported")
	ErrAssetNotFound        = errors.New("not found in datasource")
	ErrNoCandles            = errors.New("no candles found in datasource")
)

type assetQuerier interface {
	GetAssetByTicker(ctx context.Context, ticker string) (assetRow, error)
}

type candleQuerier interface {
	GetAggregates(ctx context.Context, arg aggregateParams) ([]candleRow, error)
}

type assetRow struct {
	ID         int32
	Ticker     string
	Name       string
	Type       string
	CreatedAt  time.Time
	ModifiedAt time.Time
}

type aggregateParams struct {
	Bucket  string
	AssetID int32
	Start   time.Time
	End     time.Time
}

type candleRow struct {
	Bucket time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume decimal.Decimal
}

// Database holds the connection pool and the query surface. The querier
// fields are interfaces so tests can stub the SQL layer.
type Database struct {
	assets  assetQuerier
	candles candleQuerier
	pool    *pgxpool.Pool
}

// NewDatabase creates a Database instance and verifies connectivity.
func NewDatabase(ctx context.Context, dbURL string) (*Database, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// Register shopspring decimal codecs on every connection.
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	queries := &pgxQueries{pool: pool}
	return &Database{
		assets:  queries,
		candles: queries,
		pool:    pool,
	}, nil
}

func (db *Database) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}
