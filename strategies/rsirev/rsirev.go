// Package rsirev implements an RSI mean-reversion strategy: buy when the RSI
// crosses down into oversold territory, sell when it crosses up into
// overbought. An optional moving-average trend filter restricts entries to
// bars trading above the filter.
package rsirev

import (
	"fmt"
	"math"

	"quantlab/internal/engine"
	"quantlab/internal/indicator"
	"quantlab/types"
)

const (
	DefaultPeriod     = 14
	DefaultOversold   = 30
	DefaultOverbought = 70
)

type Strategy struct {
	period     int
	oversold   float64
	overbought float64
	trend      int // SMA trend filter window, 0 disables
}

// New builds the strategy from params: "rsi_period", "oversold" and
// "overbought" thresholds, and an optional "trend_period" SMA filter.
func New(p engine.Params) (engine.Strategy, error) {
	s := &Strategy{
		period:     p.Int("rsi_period", DefaultPeriod),
		oversold:   p.Float("oversold", DefaultOversold),
		overbought: p.Float("overbought", DefaultOverbought),
		trend:      p.Int("trend_period", 0),
	}
	if s.period <= 0 {
		return nil, fmt.Errorf("rsi_period must be positive, got %d", s.period)
	}
	if s.oversold <= 0 || s.overbought >= 100 || s.oversold >= s.overbought {
		return nil, fmt.Errorf("thresholds must satisfy 0 < oversold < overbought < 100, got %v and %v",
			s.oversold, s.overbought)
	}
	if s.trend < 0 {
		return nil, fmt.Errorf("trend_period must be non-negative, got %d", s.trend)
	}
	return s, nil
}

func (s *Strategy) Name() string {
	if s.trend > 0 {
		return fmt.Sprintf("rsi-rev(%d,%v/%v,sma%d)", s.period, s.oversold, s.overbought, s.trend)
	}
	return fmt.Sprintf("rsi-rev(%d,%v/%v)", s.period, s.oversold, s.overbought)
}

func (s *Strategy) Setup(bars []types.Candle) error { return nil }

func (s *Strategy) RequiredHistory() int {
	// RSI needs period+1 closes for its first value, plus one bar to detect
	// a threshold crossing.
	need := s.period + 2
	if s.trend > need {
		need = s.trend
	}
	return need
}

func (s *Strategy) GenerateSignals(bars []types.Candle) ([]types.Signal, error) {
	closes := indicator.Closes(bars)

	rsi, err := indicator.RSI(closes, s.period)
	if err != nil {
		return nil, err
	}

	var trend []float64
	if s.trend > 0 {
		trend, err = indicator.SMA(closes, s.trend)
		if err != nil {
			return nil, err
		}
	}

	signals := make([]types.Signal, len(bars))
	for i := 1; i < len(bars); i++ {
		if math.IsNaN(rsi[i]) || math.IsNaN(rsi[i-1]) {
			continue
		}
		switch {
		case rsi[i-1] >= s.oversold && rsi[i] < s.oversold:
			if trend != nil && !(closes[i] > trend[i]) {
				continue // below the trend filter (or filter still warming up)
			}
			signals[i] = types.SignalBuy
		case rsi[i-1] <= s.overbought && rsi[i] > s.overbought:
			signals[i] = types.SignalSell
		}
	}
	return signals, nil
}
