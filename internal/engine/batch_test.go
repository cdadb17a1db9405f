package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantlab/types"
)

var errFeedDown = errors.New("feed down")

// mapFeed serves candles from a fixed map and fails for unknown tickers.
type mapFeed struct {
	bars map[string][]types.Candle
}

func (f *mapFeed) GetCandles(ctx context.Context, ticker string, interval types.Interval, start, end time.Time) ([]types.Candle, error) {
	bars, ok := f.bars[ticker]
	if !ok {
		return nil, errFeedDown
	}
	return bars, nil
}

func batchFixtures(t *testing.T) (*Engine, *mapFeed, *Registry) {
	t.Helper()

	e, err := New(zeroCommissionConfig(10_000, 1.0), testLogger())
	require.NoError(t, err)

	feed := &mapFeed{bars: map[string][]types.Candle{
		"AAA": makeBars(linearCloses(100, 120, 30)),
		"BBB": makeBars(linearCloses(50, 45, 30)),
	}}

	reg := NewRegistry()
	require.NoError(t, reg.Register("buy-and-hold", func(p Params) (Strategy, error) {
		signals := holdSignals(30)
		signals[0] = types.SignalBuy
		return &stubStrategy{name: "buy-and-hold", history: 1, signals: signals}, nil
	}))
	return e, feed, reg
}

func TestRunBatch_OrderAndIsolation(t *testing.T) {
	e, feed, reg := batchFixtures(t)

	reqs := []BatchRequest{
		{Ticker: "AAA", Strategy: "buy-and-hold", Interval: types.Day},
		{Ticker: "MISSING", Strategy: "buy-and-hold", Interval: types.Day},
		{Ticker: "BBB", Strategy: "buy-and-hold", Interval: types.Day},
		{Ticker: "AAA", Strategy: "unregistered", Interval: types.Day},
	}

	outcomes := e.RunBatch(context.Background(), feed, reg, reqs, 3)
	require.Len(t, outcomes, len(reqs))

	// Outcomes line up with requests regardless of worker scheduling.
	for i, out := range outcomes {
		assert.Equal(t, reqs[i].Ticker, out.Request.Ticker, "outcome %d", i)
	}

	require.NoError(t, outcomes[0].Err)
	assert.Positive(t, outcomes[0].Result.Metrics.TotalReturn)

	// A failing feed item is reported in place, not fatal to the batch.
	assert.ErrorIs(t, outcomes[1].Err, errFeedDown)
	assert.Nil(t, outcomes[1].Result)

	require.NoError(t, outcomes[2].Err)
	assert.Negative(t, outcomes[2].Result.Metrics.TotalReturn)

	assert.Error(t, outcomes[3].Err)
}

func TestRunBatch_CanceledContext(t *testing.T) {
	e, feed, reg := batchFixtures(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reqs := []BatchRequest{
		{Ticker: "AAA", Strategy: "buy-and-hold", Interval: types.Day},
		{Ticker: "BBB", Strategy: "buy-and-hold", Interval: types.Day},
	}
	outcomes := e.RunBatch(ctx, feed, reg, reqs, 2)
	for i, out := range outcomes {
		assert.ErrorIs(t, out.Err, context.Canceled, "outcome %d", i)
	}
}

func TestRunBatch_Empty(t *testing.T) {
	e, feed, reg := batchFixtures(t)
	assert.Empty(t, e.RunBatch(context.Background(), feed, reg, nil, 4))
}
