package engine

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"quantlab/types"
)

// Feed supplies historical candles for a backtest. Implementations should
// return errors.Is-able sentinels for missing assets or empty ranges so a
// batch caller can tell "data unavailable" apart from real failures.
type Feed interface {
	GetCandles(ctx context.Context, ticker string, interval types.Interval, start, end time.Time) ([]types.Candle, error)
}

// BatchRequest is one (ticker, strategy, range) combination to backtest.
type BatchRequest struct {
	Ticker   string
	Strategy string
	Params   Params
	Interval types.Interval
	Start    time.Time
	End      time.Time
}

// BatchOutcome is the per-item result. Err is set when the item failed;
// failures never abort the rest of the batch.
type BatchOutcome struct {
	Request BatchRequest
	Result  *types.BacktestResult
	Err     error
}

// RunBatch executes independent backtests over a worker pool. Runs share no
// mutable state: every item fetches its own candle buffer and builds its own
// strategy instance, so the only synchronization is result collection.
// Outcomes are returned in request order.
func (e *Engine) RunBatch(ctx context.Context, feed Feed, reg *Registry, reqs []BatchRequest, workers int) []BatchOutcome {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(reqs) {
		workers = len(reqs)
	}

	outcomes := make([]BatchOutcome, len(reqs))
	workCh := make(chan int, len(reqs))
	bar := newBatchProgressBar(len(reqs))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range workCh {
				outcomes[i] = e.runOne(ctx, feed, reg, reqs[i])
				if err := outcomes[i].Err; err != nil {
					e.log.Warn("backtest item failed",
						"ticker", reqs[i].Ticker,
						"strategy", reqs[i].Strategy,
						"err", err,
					)
				}
				bar.Add(1)
			}
		}()
	}

	for i := range reqs {
		workCh <- i
	}
	close(workCh)
	wg.Wait()

	return outcomes
}

func (e *Engine) runOne(ctx context.Context, feed Feed, reg *Registry, req BatchRequest) BatchOutcome {
	out := BatchOutcome{Request: req}
	if err := ctx.Err(); err != nil {
		out.Err = err
		return out
	}

	strat, err := reg.Create(req.Strategy, req.Params)
	if err != nil {
		out.Err = err
		return out
	}

	bars, err := feed.GetCandles(ctx, req.Ticker, req.Interval, req.Start, req.End)
	if err != nil {
		out.Err = err
		return out
	}

	out.Result, out.Err = e.Run(strat, bars, req.Ticker)
	return out
}

func newBatchProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Backtesting in progress..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
