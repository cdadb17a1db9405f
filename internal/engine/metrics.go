package engine

import (
	"math"

	"quantlab/types"
)

// TradingDaysPerYear annualizes per-bar statistics. The engine assumes daily
// bars; this is a documented assumption, not inferred from bar spacing.
const TradingDaysPerYear = 252

// CalculateMetrics aggregates a portfolio trajectory and its trade list into
// a PerformanceMetrics record.
//
// Outputs may be NaN or +Inf where the underlying statistic is undefined or
// unbounded (Sortino with no losing bars, profit factor with no losing
// trades, sample deviation of fewer than two observations). They are
// returned as-is; sanitizing for presentation is the caller's concern.
func CalculateMetrics(states []types.PortfolioState, trades []types.Trade, cfg SimConfig) types.PerformanceMetrics {
	m := types.PerformanceMetrics{}
	if len(states) == 0 {
		return m
	}

	values := make([]float64, len(states))
	for i, s := range states {
		values[i] = s.Value.InexactFloat64()
	}
	v0 := values[0]
	vLast := values[len(values)-1]

	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		returns = append(returns, (values[i]-values[i-1])/values[i-1])
	}

	m.InitialValue = v0
	m.FinalValue = vLast
	m.TotalReturn = (vLast - v0) / v0
	m.CAGR = math.Pow(vLast/v0, TradingDaysPerYear/float64(len(states))) - 1

	m.Volatility = sampleStd(returns) * math.Sqrt(TradingDaysPerYear)
	m.SharpeRatio = sharpe(returns, m.Volatility, cfg.RiskFreeRate)
	m.SortinoRatio = sortino(returns, cfg.RiskFreeRate)

	m.MaxDrawdown, m.AverageDrawdown, m.MaxDrawdownDuration = drawdowns(values)

	fillTradeStats(&m, trades)

	m.BuyHoldReturn = buyHoldReturn(states, cfg)
	return m
}

// sharpe is the annualized excess return over annualized volatility. Zero
// when there are no returns or volatility is exactly zero; an undefined
// (NaN) volatility propagates.
func sharpe(returns []float64, volatility, riskFree float64) float64 {
	if len(returns) == 0 || volatility == 0 {
		return 0
	}
	return (mean(returns)*TradingDaysPerYear - riskFree) / volatility
}

// sortino divides annualized excess return by downside deviation, the
// annualized sample deviation of the negative returns only. With returns but
// no negative ones the ratio is unbounded and reported as +Inf; with no
// returns at all it is zero.
func sortino(returns []float64, riskFree float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if len(downside) == 0 {
		return math.Inf(1)
	}
	downsideStd := sampleStd(downside) * math.Sqrt(TradingDaysPerYear)
	if downsideStd == 0 {
		return 0
	}
	return (mean(returns)*TradingDaysPerYear - riskFree) / downsideStd
}

// drawdowns computes the drawdown series against the running peak and
// reports the worst drawdown and the mean drawdown over below-peak bars
// (both as positive magnitudes), plus the longest consecutive run of
// below-peak bars.
func drawdowns(values []float64) (maxDD, avgDD float64, maxDuration int) {
	peak := values[0]
	var ddSum float64
	ddCount := 0
	run := 0

	for _, v := range values {
		if v > peak {
			peak = v
		}
		dd := (v - peak) / peak
		if dd < 0 {
			if dd < -maxDD {
				maxDD = -dd
			}
			ddSum += dd
			ddCount++
			run++
			if run > maxDuration {
				maxDuration = run
			}
		} else {
			run = 0
		}
	}

	if ddCount > 0 {
		avgDD = -ddSum / float64(ddCount)
	}
	return maxDD, avgDD, maxDuration
}

func fillTradeStats(m *types.PerformanceMetrics, trades []types.Trade) {
	var wins, losses []float64
	var profits []float64
	var sumWins, sumLosses float64

	for _, t := range trades {
		p := t.Profit.InexactFloat64()
		profits = append(profits, p)
		switch {
		case p > 0:
			wins = append(wins, p)
			sumWins += p
		case p < 0:
			losses = append(losses, p)
			sumLosses += p
		}
		// break-even trades count toward neither side
	}

	m.TotalTrades = len(trades)
	m.WinningTrades = len(wins)
	m.LosingTrades = len(losses)

	if m.TotalTrades > 0 {
		m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades)
		m.AverageTrade = mean(profits)
	}

	switch {
	case sumWins == 0:
		m.ProfitFactor = 0
	case sumLosses == 0:
		m.ProfitFactor = math.Inf(1)
	default:
		m.ProfitFactor = sumWins / math.Abs(sumLosses)
	}

	if len(wins) > 0 {
		m.AverageWin = mean(wins)
		m.LargestWin = maxOf(wins)
	}
	if len(losses) > 0 {
		m.AverageLoss = mean(losses)
		m.LargestLoss = minOf(losses)
	}

	m.Expectancy = m.WinRate*m.AverageWin + (1-m.WinRate)*m.AverageLoss

	if len(trades) > 0 {
		days := make([]float64, len(trades))
		for i, t := range trades {
			days[i] = t.Duration.Hours() / 24
		}
		m.AverageTradeDuration = mean(days)
		m.MaxTradeDuration = maxOf(days)
		m.MinTradeDuration = minOf(days)
	}
}

// buyHoldReturn benchmarks against opening a position on the first bar sized
// by the same position_size_pct as the live strategy, paying commission on
// both legs, with the uninvested remainder sitting in cash throughout. The
// fractional sizing keeps capital exposure comparable to the strategy; do
// not "correct" it to a fully invested benchmark.
func buyHoldReturn(states []types.PortfolioState, cfg SimConfig) float64 {
	if len(states) < 2 {
		return 0
	}
	capital := cfg.InitialCapital.InexactFloat64()
	commission := cfg.Commission.InexactFloat64()
	firstClose := states[0].Close.InexactFloat64()
	lastClose := states[len(states)-1].Close.InexactFloat64()

	invest := capital * cfg.PositionSizePct.InexactFloat64()
	shares := (invest - invest*commission) / firstClose
	cash := capital - invest

	proceeds := shares * lastClose
	final := cash + proceeds - proceeds*commission
	return (final - capital) / capital
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStd is the n-1 sample standard deviation. Undefined (NaN) for fewer
// than two observations, matching the statistical definition.
func sampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	m := mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func minOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}
