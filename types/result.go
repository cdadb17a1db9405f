package types

import "time"

// RunMeta describes one backtest run.
type RunMeta struct {
	Start time.Time
	End   time.Time
	Bars  int
	RanAt time.Time
}

// BacktestResult bundles everything a single backtest run produced. It is
// assembled once by the engine and read-only afterwards.
type BacktestResult struct {
	ID       string
	Ticker   string
	Strategy string
	States   []PortfolioState
	Signals  []Signal
	Trades   []Trade
	Metrics  PerformanceMetrics
	Meta     RunMeta
}
