package rsirev

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantlab/internal/engine"
	"quantlab/types"
)

func bars(closes ...float64) []types.Candle {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]types.Candle, len(closes))
	for i, c := range closes {
		price := decimal.NewFromFloat(c)
		out[i] = types.Candle{
			Ticker:    "TEST",
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Interval:  types.Day,
			Timestamp: start.AddDate(0, 0, i),
		}
	}
	return out
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		params  engine.Params
		wantErr bool
	}{
		{"defaults", nil, false},
		{"explicit", engine.Params{"rsi_period": 7, "oversold": 25.0, "overbought": 75.0}, false},
		{"with trend filter", engine.Params{"trend_period": 200}, false},
		{"zero period", engine.Params{"rsi_period": 0}, true},
		{"inverted thresholds", engine.Params{"oversold": 70.0, "overbought": 30.0}, true},
		{"overbought out of range", engine.Params{"overbought": 100.0}, true},
		{"negative trend", engine.Params{"trend_period": -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.params)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGenerateSignals_MeanReversion(t *testing.T) {
	strat, err := New(engine.Params{"rsi_period": 2})
	require.NoError(t, err)

	// Two strong down bars push the 2-period RSI below 30 (buy), the
	// rebound pushes it back above 70 (sell).
	input := bars(100, 101, 102, 90, 80, 95, 105, 110)
	signals, err := strat.GenerateSignals(input)
	require.NoError(t, err)

	want := []types.Signal{
		types.SignalHold,
		types.SignalHold,
		types.SignalHold, // first RSI value, no previous one to cross from
		types.SignalBuy,
		types.SignalHold,
		types.SignalHold,
		types.SignalSell,
		types.SignalHold,
	}
	assert.Equal(t, want, signals)
}

func TestGenerateSignals_TrendFilterBlocksEntry(t *testing.T) {
	strat, err := New(engine.Params{"rsi_period": 2, "trend_period": 3})
	require.NoError(t, err)

	// Same series: the buy bar closes at 90, below its 3-bar average, so
	// the entry is filtered out. The exit is unaffected.
	input := bars(100, 101, 102, 90, 80, 95, 105, 110)
	signals, err := strat.GenerateSignals(input)
	require.NoError(t, err)

	for i, s := range signals {
		assert.NotEqual(t, types.SignalBuy, s, "bar %d", i)
	}
	assert.Equal(t, types.SignalSell, signals[6])
}

func TestRequiredHistory(t *testing.T) {
	strat, err := New(engine.Params{"rsi_period": 14})
	require.NoError(t, err)
	assert.Equal(t, 16, strat.RequiredHistory())

	filtered, err := New(engine.Params{"rsi_period": 14, "trend_period": 200})
	require.NoError(t, err)
	assert.Equal(t, 200, filtered.RequiredHistory())
	assert.Equal(t, "rsi-rev(14,30/70,sma200)", filtered.Name())
}
