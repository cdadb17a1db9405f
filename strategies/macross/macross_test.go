package macross

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
		{"explicit", engine.Params{"fast": 5, "slow": 20, "ma_type": "ema"}, false},
		{"fast not shorter than slow", engine.Params{"fast": 20, "slow": 20}, true},
		{"zero fast", engine.Params{"fast": 0, "slow": 20}, true},
		{"unknown ma type", engine.Params{"ma_type": "wma"}, true},
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

func TestGenerateSignals_Crossover(t *testing.T) {
	strat, err := New(engine.Params{"fast": 2, "slow": 3})
	require.NoError(t, err)

	// Fast SMA crosses above slow on the jump to 20, back below on the
	// drop to 10.
	input := bars(10, 10, 10, 20, 20, 10, 10)
	signals, err := strat.GenerateSignals(input)
	require.NoError(t, err)
	require.Len(t, signals, len(input))

	want := []types.Signal{
		types.SignalHold, // warmup
		types.SignalHold, // warmup
		types.SignalHold, // averages equal, no cross yet
		types.SignalBuy,
		types.SignalHold,
		types.SignalSell,
		types.SignalHold,
	}
	assert.Equal(t, want, signals)
}

func TestGenerateSignals_NoCrossNoSignals(t *testing.T) {
	strat, err := New(engine.Params{"fast": 2, "slow": 3})
	require.NoError(t, err)

	input := bars(10, 11, 12, 13, 14, 15)
	signals, err := strat.GenerateSignals(input)
	require.NoError(t, err)

	// Monotone rise: after warmup the fast average starts above the slow
	// one and stays there.
	for i, s := range signals {
		if s == types.SignalSell {
			t.Errorf("unexpected sell at bar %d", i)
		}
	}
}

func TestRequiredHistory(t *testing.T) {
	strat, err := New(engine.Params{"fast": 10, "slow": 50})
	require.NoError(t, err)
	assert.Equal(t, 51, strat.RequiredHistory())
	assert.Equal(t, "ma-cross(sma,10,50)", strat.Name())
}
