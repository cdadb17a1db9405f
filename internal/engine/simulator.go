package engine

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"quantlab/types"
)

var (
	ErrNoBars               = errors.New("no bars to simulate")
	ErrSignalLengthMismatch = errors.New("signal series length does not match bar series")
	ErrBarOrder             = errors.New("bar timestamps must be strictly increasing")
	ErrNonPositiveClose     = errors.New("bar close must be positive")
)

// Simulate runs the sequential cash/shares accounting pass over an aligned
// (bars, signals) pair and returns the per-bar portfolio trajectory.
//
// Per bar, in time order:
//   - buy signal while flat: invest cash*positionSize, pay commission on the
//     invested amount, buy at close*(1+slippage)
//   - sell signal while long: sell everything at close*(1-slippage), pay
//     commission on the proceeds
//   - anything else: no state change
//
// The recorded portfolio value is always cash + shares*close at the bar's
// unadjusted close. After the last bar any open position is force-liquidated
// at the final close less commission and the last state is overwritten, so
// the trajectory always ends flat and return metrics reflect realized state
// only.
func Simulate(bars []types.Candle, signals []types.Signal, cfg SimConfig) ([]types.PortfolioState, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := validateBars(bars); err != nil {
		return nil, err
	}
	if len(signals) != len(bars) {
		return nil, fmt.Errorf("%w: %d signals for %d bars", ErrSignalLengthMismatch, len(signals), len(bars))
	}

	cash := cfg.InitialCapital
	shares := decimal.Zero
	buyMult := one.Add(cfg.Slippage)
	sellMult := one.Sub(cfg.Slippage)

	states := make([]types.PortfolioState, len(bars))
	for i, bar := range bars {
		sig := signals[i]
		switch {
		case sig == types.SignalBuy && shares.IsZero():
			execPrice := bar.Close.Mul(buyMult)
			invest := cash.Mul(cfg.PositionSizePct)
			commission := invest.Mul(cfg.Commission)
			shares = shares.Add(invest.Sub(commission).Div(execPrice))
			cash = cash.Sub(invest)

		case sig == types.SignalSell && shares.IsPositive():
			execPrice := bar.Close.Mul(sellMult)
			proceeds := shares.Mul(execPrice)
			commission := proceeds.Mul(cfg.Commission)
			cash = cash.Add(proceeds.Sub(commission))
			shares = decimal.Zero
		}

		states[i] = types.PortfolioState{
			Timestamp:  bar.Timestamp,
			Close:      bar.Close,
			Signal:     sig,
			Cash:       cash,
			Shares:     shares,
			Value:      cash.Add(shares.Mul(bar.Close)),
			InPosition: shares.IsPositive(),
		}
	}

	// Forced liquidation: close any position still open after the last bar
	// at the final close (no slippage) less commission, and overwrite the
	// final state. Without this an open position would inflate the return
	// without a corresponding counted trade.
	if shares.IsPositive() {
		finalClose := bars[len(bars)-1].Close
		proceeds := shares.Mul(finalClose)
		commission := proceeds.Mul(cfg.Commission)
		cash = cash.Add(proceeds.Sub(commission))
		shares = decimal.Zero

		last := &states[len(states)-1]
		last.Cash = cash
		last.Shares = shares
		last.Value = cash
		last.InPosition = false
	}

	return states, nil
}

// validateBars rejects malformed input before the run starts. Positive
// closes are a precondition for every division in the pass; with them no
// mid-run failure is possible.
func validateBars(bars []types.Candle) error {
	if len(bars) == 0 {
		return ErrNoBars
	}
	for i, bar := range bars {
		if !bar.Close.IsPositive() {
			return fmt.Errorf("%w: bar %d close %s", ErrNonPositiveClose, i, bar.Close)
		}
		if i > 0 && !bar.Timestamp.After(bars[i-1].Timestamp) {
			return fmt.Errorf("%w: bar %d (%s) not after bar %d (%s)",
				ErrBarOrder, i, bar.Timestamp, i-1, bars[i-1].Timestamp)
		}
	}
	return nil
}
