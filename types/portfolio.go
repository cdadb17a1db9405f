package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// PortfolioState is the portfolio snapshot recorded after processing one bar.
// Invariant: Value = Cash + Shares*Close, always valued at the bar's
// unadjusted close, never at a slippage-adjusted execution price.
type PortfolioState struct {
	Timestamp  time.Time
	Close      decimal.Decimal
	Signal     Signal
	Cash       decimal.Decimal
	Shares     decimal.Decimal
	Value      decimal.Decimal
	InPosition bool
}
