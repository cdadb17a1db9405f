package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantlab/types"
)

func state(day int, close, cash, shares float64) types.PortfolioState {
	c := decimal.NewFromFloat(close)
	sh := decimal.NewFromFloat(shares)
	ca := decimal.NewFromFloat(cash)
	return types.PortfolioState{
		Timestamp:  testStart.AddDate(0, 0, day),
		Close:      c,
		Cash:       ca,
		Shares:     sh,
		Value:      ca.Add(sh.Mul(c)),
		InPosition: shares > 0,
	}
}

func TestExtractTrades(t *testing.T) {
	states := []types.PortfolioState{
		state(0, 100, 10_000, 0),
		state(1, 102, 0, 98), // entry
		state(2, 105, 0, 98),
		state(3, 101, 9_898, 0), // exit
		state(4, 99, 9_898, 0),
		state(5, 98, 0, 101), // entry
		state(6, 103, 10_403, 0), // exit
	}

	trades := ExtractTrades(states)
	require.Len(t, trades, 2)

	first := trades[0]
	assert.Equal(t, states[1].Timestamp, first.EntryDate)
	assert.Equal(t, states[3].Timestamp, first.ExitDate)
	assert.True(t, first.EntryPrice.Equal(decimal.NewFromInt(102)))
	assert.True(t, first.ExitPrice.Equal(decimal.NewFromInt(101)))
	assert.True(t, first.Shares.Equal(decimal.NewFromInt(98)))
	assert.True(t, first.Profit.Equal(first.ExitValue.Sub(first.EntryValue)))
	// Price moved 102 -> 101.
	assert.InDelta(t, -1.0/102.0, first.ProfitPct, 1e-12)
	assert.Equal(t, 48*time.Hour, first.Duration)

	second := trades[1]
	assert.Equal(t, states[5].Timestamp, second.EntryDate)
	assert.Equal(t, states[6].Timestamp, second.ExitDate)
	assert.Equal(t, 24*time.Hour, second.Duration)
}

func TestExtractTrades_Empty(t *testing.T) {
	assert.Empty(t, ExtractTrades(nil))

	// All flat: nothing to extract.
	flat := []types.PortfolioState{
		state(0, 100, 10_000, 0),
		state(1, 101, 10_000, 0),
	}
	assert.Empty(t, ExtractTrades(flat))
}

func TestExtractTrades_UnclosedEntryIgnored(t *testing.T) {
	// The simulator never produces a trajectory that ends long, but the
	// extractor must not invent a half trade if handed one anyway.
	states := []types.PortfolioState{
		state(0, 100, 10_000, 0),
		state(1, 102, 0, 98),
		state(2, 105, 0, 98),
	}
	assert.Empty(t, ExtractTrades(states))
}
