package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SimConfig is the execution configuration for a single backtest run.
// Monetary quantities are decimals; RiskFreeRate only feeds the float64
// statistics and stays a float.
type SimConfig struct {
	InitialCapital  decimal.Decimal
	Commission      decimal.Decimal
	Slippage        decimal.Decimal
	PositionSizePct decimal.Decimal
	RiskFreeRate    float64
}

// NewSimConfig builds a SimConfig from plain floats.
func NewSimConfig(initialCapital, commission, slippage, positionSizePct, riskFreeRate float64) SimConfig {
	return SimConfig{
		InitialCapital:  decimal.NewFromFloat(initialCapital),
		Commission:      decimal.NewFromFloat(commission),
		Slippage:        decimal.NewFromFloat(slippage),
		PositionSizePct: decimal.NewFromFloat(positionSizePct),
		RiskFreeRate:    riskFreeRate,
	}
}

var one = decimal.NewFromInt(1)

// Validate checks the configuration ranges. It runs before any simulation
// starts; a valid config cannot fail mid-run.
func (c SimConfig) Validate() error {
	if !c.InitialCapital.IsPositive() {
		return fmt.Errorf("initial capital must be positive, got %s", c.InitialCapital)
	}
	if c.Commission.IsNegative() || c.Commission.GreaterThanOrEqual(one) {
		return fmt.Errorf("commission must be in [0,1), got %s", c.Commission)
	}
	if c.Slippage.IsNegative() {
		return fmt.Errorf("slippage must be non-negative, got %s", c.Slippage)
	}
	if !c.PositionSizePct.IsPositive() || c.PositionSizePct.GreaterThan(one) {
		return fmt.Errorf("position size must be in (0,1], got %s", c.PositionSizePct)
	}
	return nil
}
