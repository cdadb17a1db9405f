// Package report renders backtest results for humans: console tables and a
// CSV trade log. Presentation is where undefined metric values get friendly
// labels; everything upstream keeps the raw NaN/Inf.
package report

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/olekukonko/tablewriter"

	"quantlab/internal/resultstore"
	"quantlab/types"
)

type Console struct {
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// PrintSummary renders the headline metrics of one run.
func (c *Console) PrintSummary(res *types.BacktestResult) {
	m := res.Metrics

	fmt.Fprintf(c.out, "\n%s - %s  (%s to %s, %d bars)\n",
		res.Ticker, res.Strategy,
		res.Meta.Start.Format("2006-01-02"), res.Meta.End.Format("2006-01-02"),
		res.Meta.Bars)

	table := tablewriter.NewWriter(c.out)
	table.Header("Metric", "Value")
	table.Append("Total return", pct(m.TotalReturn))
	table.Append("Buy & hold return", pct(m.BuyHoldReturn))
	table.Append("CAGR", pct(m.CAGR))
	table.Append("Sharpe ratio", num(m.SharpeRatio))
	table.Append("Sortino ratio", num(m.SortinoRatio))
	table.Append("Volatility (ann.)", pct(m.Volatility))
	table.Append("Max drawdown", pct(m.MaxDrawdown))
	table.Append("Max drawdown duration", fmt.Sprintf("%d bars", m.MaxDrawdownDuration))
	table.Append("Trades", fmt.Sprintf("%d (%d W / %d L)", m.TotalTrades, m.WinningTrades, m.LosingTrades))
	table.Append("Win rate", pct(m.WinRate))
	table.Append("Profit factor", num(m.ProfitFactor))
	table.Append("Expectancy", money(m.Expectancy))
	table.Append("Final value", money(m.FinalValue))
	table.Render()
}

// PrintTrades renders the individual round trips of one run.
func (c *Console) PrintTrades(res *types.BacktestResult) {
	if len(res.Trades) == 0 {
		fmt.Fprintln(c.out, "no completed trades")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Entry", "Exit", "Days", "Entry Px", "Exit Px", "Profit", "Return")
	for i, tr := range res.Trades {
		table.Append(
			fmt.Sprintf("%d", i+1),
			tr.EntryDate.Format("2006-01-02"),
			tr.ExitDate.Format("2006-01-02"),
			fmt.Sprintf("%.0f", tr.Duration.Hours()/24),
			tr.EntryPrice.StringFixed(2),
			tr.ExitPrice.StringFixed(2),
			tr.Profit.StringFixed(2),
			pct(tr.ProfitPct),
		)
	}
	table.Render()
}

// PrintRuns renders previously stored runs.
func (c *Console) PrintRuns(runs []resultstore.RunSummary) {
	if len(runs) == 0 {
		fmt.Fprintln(c.out, "no stored runs")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Ran", "Ticker", "Strategy", "Period", "Trades", "Return", "Sharpe", "Max DD")
	for _, r := range runs {
		table.Append(
			r.RanAt.Format(time.DateTime),
			r.Ticker,
			r.Strategy,
			fmt.Sprintf("%s..%s", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02")),
			fmt.Sprintf("%d", r.Trades),
			pct(r.TotalReturn),
			num(r.SharpeRatio),
			pct(r.MaxDrawdown),
		)
	}
	table.Render()
}

func num(v float64) string {
	switch {
	case math.IsNaN(v):
		return "n/a"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return fmt.Sprintf("%.2f", v)
}

func pct(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return num(v)
	}
	return fmt.Sprintf("%.2f%%", v*100)
}

func money(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return num(v)
	}
	return fmt.Sprintf("$%.2f", v)
}
