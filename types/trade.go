package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is one completed entry->exit round trip derived from the portfolio
// trajectory. Profit is the portfolio-value delta between exit and entry
// bars, so commission and slippage are already accounted for.
type Trade struct {
	EntryDate  time.Time
	ExitDate   time.Time
	EntryPrice decimal.Decimal
	ExitPrice  decimal.Decimal
	Shares     decimal.Decimal
	EntryValue decimal.Decimal
	ExitValue  decimal.Decimal
	Profit     decimal.Decimal
	// ProfitPct is the close-to-close price return (ExitPrice-EntryPrice)/EntryPrice.
	ProfitPct float64
	// Duration is the elapsed calendar time between the entry and exit bars.
	Duration time.Duration
}
