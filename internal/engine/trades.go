package engine

import (
	"quantlab/types"
)

// ExtractTrades derives the completed round-trip trades from a portfolio
// trajectory. A flat->long transition opens a trade, the following
// long->flat transition closes it. The simulator guarantees the trajectory
// ends flat, so every entry has a matching exit and the returned list is
// ordered by entry date with no overlap.
func ExtractTrades(states []types.PortfolioState) []types.Trade {
	var trades []types.Trade

	inPosition := false
	var entry types.PortfolioState

	for _, state := range states {
		switch {
		case state.InPosition && !inPosition:
			inPosition = true
			entry = state

		case !state.InPosition && inPosition:
			inPosition = false
			profit := state.Value.Sub(entry.Value)
			profitPct := state.Close.Sub(entry.Close).Div(entry.Close).InexactFloat64()

			trades = append(trades, types.Trade{
				EntryDate:  entry.Timestamp,
				ExitDate:   state.Timestamp,
				EntryPrice: entry.Close,
				ExitPrice:  state.Close,
				Shares:     entry.Shares,
				EntryValue: entry.Value,
				ExitValue:  state.Value,
				Profit:     profit,
				ProfitPct:  profitPct,
				Duration:   state.Timestamp.Sub(entry.Timestamp),
			})
		}
	}

	return trades
}
