// Package macross implements a moving-average crossover strategy: long when
// the fast average crosses above the slow one, flat when it crosses back
// below.
package macross

import (
	"fmt"
	"math"

	"quantlab/internal/engine"
	"quantlab/internal/indicator"
	"quantlab/types"
)

const (
	DefaultFast = 10
	DefaultSlow = 50
)

type Strategy struct {
	fast   int
	slow   int
	maType string
}

// New builds the strategy from params: "fast" and "slow" window lengths and
// "ma_type" ("sma" or "ema").
func New(p engine.Params) (engine.Strategy, error) {
	s := &Strategy{
		fast:   p.Int("fast", DefaultFast),
		slow:   p.Int("slow", DefaultSlow),
		maType: p.Str("ma_type", "sma"),
	}
	if s.fast <= 0 || s.slow <= 0 {
		return nil, fmt.Errorf("ma windows must be positive, got fast=%d slow=%d", s.fast, s.slow)
	}
	if s.fast >= s.slow {
		return nil, fmt.Errorf("fast window %d must be shorter than slow window %d", s.fast, s.slow)
	}
	if s.maType != "sma" && s.maType != "ema" {
		return nil, fmt.Errorf("unknown ma_type %q, want sma or ema", s.maType)
	}
	return s, nil
}

func (s *Strategy) Name() string {
	return fmt.Sprintf("ma-cross(%s,%d,%d)", s.maType, s.fast, s.slow)
}

func (s *Strategy) Setup(bars []types.Candle) error { return nil }

// RequiredHistory is one bar past the slow window so at least one crossover
// comparison is possible.
func (s *Strategy) RequiredHistory() int { return s.slow + 1 }

func (s *Strategy) GenerateSignals(bars []types.Candle) ([]types.Signal, error) {
	closes := indicator.Closes(bars)

	fast, err := s.average(closes, s.fast)
	if err != nil {
		return nil, err
	}
	slow, err := s.average(closes, s.slow)
	if err != nil {
		return nil, err
	}

	signals := make([]types.Signal, len(bars))
	for i := 1; i < len(bars); i++ {
		if math.IsNaN(slow[i]) || math.IsNaN(slow[i-1]) {
			continue
		}
		crossedUp := fast[i-1] <= slow[i-1] && fast[i] > slow[i]
		crossedDown := fast[i-1] >= slow[i-1] && fast[i] < slow[i]
		switch {
		case crossedUp:
			signals[i] = types.SignalBuy
		case crossedDown:
			signals[i] = types.SignalSell
		}
	}
	return signals, nil
}

func (s *Strategy) average(values []float64, period int) ([]float64, error) {
	if s.maType == "ema" {
		return indicator.EMA(values, period)
	}
	return indicator.SMA(values, period)
}
