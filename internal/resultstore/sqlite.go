// Package resultstore persists backtest runs to a local SQLite database so
// past runs can be listed and compared without rerunning them.
package resultstore

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"quantlab/types"
)

type Store struct {
	db *sql.DB
}

// RunSummary is one persisted run. Metrics that were NaN or infinite are
// stored as NULL and come back as NaN.
type RunSummary struct {
	ID           string
	Ticker       string
	Strategy     string
	Start        time.Time
	End          time.Time
	Bars         int
	Trades       int
	TotalReturn  float64
	CAGR         float64
	SharpeRatio  float64
	MaxDrawdown  float64
	WinRate      float64
	ProfitFactor float64
	RanAt        time.Time
}

// New opens (or creates) the SQLite database and runs migrations.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id              TEXT PRIMARY KEY,
			ticker          TEXT NOT NULL,
			strategy        TEXT NOT NULL,
			start_ts        INTEGER NOT NULL,
			end_ts          INTEGER NOT NULL,
			bars            INTEGER NOT NULL,
			trades          INTEGER NOT NULL,
			total_return    REAL,
			cagr            REAL,
			sharpe_ratio    REAL,
			sortino_ratio   REAL,
			volatility      REAL,
			max_drawdown    REAL,
			win_rate        REAL,
			profit_factor   REAL,
			expectancy      REAL,
			buy_hold_return REAL,
			initial_value   REAL,
			final_value     REAL,
			ran_at          INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ticker ON runs(ticker)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ran_at ON runs(ran_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveResult stores the run's identity and headline metrics. Undefined
// metric values (NaN, Inf) become NULL at this boundary; the engine itself
// never masks them.
func (s *Store) SaveResult(ctx context.Context, result *types.BacktestResult) error {
	m := result.Metrics
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (
			id, ticker, strategy, start_ts, end_ts, bars, trades,
			total_return, cagr, sharpe_ratio, sortino_ratio, volatility,
			max_drawdown, win_rate, profit_factor, expectancy,
			buy_hold_return, initial_value, final_value, ran_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID, result.Ticker, result.Strategy,
		result.Meta.Start.Unix(), result.Meta.End.Unix(), result.Meta.Bars, m.TotalTrades,
		nullable(m.TotalReturn), nullable(m.CAGR), nullable(m.SharpeRatio),
		nullable(m.SortinoRatio), nullable(m.Volatility), nullable(m.MaxDrawdown),
		nullable(m.WinRate), nullable(m.ProfitFactor), nullable(m.Expectancy),
		nullable(m.BuyHoldReturn), nullable(m.InitialValue), nullable(m.FinalValue),
		result.Meta.RanAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", result.ID, err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ticker, strategy, start_ts, end_ts, bars, trades,
		       total_return, cagr, sharpe_ratio, max_drawdown, win_rate,
		       profit_factor, ran_at
		FROM runs
		ORDER BY ran_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var startTS, endTS, ranAt int64
		var ret, cagr, sharpe, dd, winRate, pf sql.NullFloat64
		err := rows.Scan(&r.ID, &r.Ticker, &r.Strategy, &startTS, &endTS, &r.Bars, &r.Trades,
			&ret, &cagr, &sharpe, &dd, &winRate, &pf, &ranAt)
		if err != nil {
			return nil, err
		}
		r.Start = time.Unix(startTS, 0).UTC()
		r.End = time.Unix(endTS, 0).UTC()
		r.RanAt = time.Unix(ranAt, 0).UTC()
		r.TotalReturn = floatOrNaN(ret)
		r.CAGR = floatOrNaN(cagr)
		r.SharpeRatio = floatOrNaN(sharpe)
		r.MaxDrawdown = floatOrNaN(dd)
		r.WinRate = floatOrNaN(winRate)
		r.ProfitFactor = floatOrNaN(pf)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Prune deletes runs executed before the cutoff and returns how many were
// removed.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE ran_at < ?`, before.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Close() error {
	return s.db.Close()
}

func nullable(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
