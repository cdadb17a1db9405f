// Package engine is the backtesting core: portfolio simulation, round-trip
// trade extraction and performance statistics. It performs no I/O; candles
// arrive pre-materialized and results are handed back to the caller.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"quantlab/types"
)

// Engine runs strategies against historical candles. A single Engine is
// safe for concurrent use: each run owns its private buffers and the
// config is never mutated.
type Engine struct {
	cfg SimConfig
	log *slog.Logger
}

func New(cfg SimConfig, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, log: logger}, nil
}

// Run executes one backtest: strategy setup, signal generation, portfolio
// simulation, trade extraction and metrics. The whole pass is synchronous
// and deterministic; callers needing a timeout wrap the call externally.
func (e *Engine) Run(strat Strategy, bars []types.Candle, ticker string) (*types.BacktestResult, error) {
	if len(bars) < strat.RequiredHistory() {
		return nil, fmt.Errorf("strategy %s needs at least %d bars, got %d",
			strat.Name(), strat.RequiredHistory(), len(bars))
	}
	if err := strat.Setup(bars); err != nil {
		return nil, fmt.Errorf("strategy setup: %w", err)
	}

	signals, err := strat.GenerateSignals(bars)
	if err != nil {
		return nil, fmt.Errorf("generate signals: %w", err)
	}

	states, err := Simulate(bars, signals, e.cfg)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}

	trades := ExtractTrades(states)
	metrics := CalculateMetrics(states, trades, e.cfg)

	result := &types.BacktestResult{
		ID:       uuid.NewString(),
		Ticker:   ticker,
		Strategy: strat.Name(),
		States:   states,
		Signals:  signals,
		Trades:   trades,
		Metrics:  metrics,
		Meta: types.RunMeta{
			Start: bars[0].Timestamp,
			End:   bars[len(bars)-1].Timestamp,
			Bars:  len(bars),
			RanAt: time.Now().UTC(),
		},
	}

	e.log.Info("backtest complete",
		"run_id", result.ID,
		"ticker", ticker,
		"strategy", strat.Name(),
		"bars", len(bars),
		"trades", len(trades),
		"total_return", metrics.TotalReturn,
	)
	return result, nil
}
