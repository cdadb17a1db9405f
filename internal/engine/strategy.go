package engine

import (
	"quantlab/types"
)

// Strategy is the capability contract every tradeable strategy must satisfy.
// The engine never depends on any concrete indicator implementation.
type Strategy interface {
	// Name returns the human-readable strategy name used in results.
	Name() string

	// Setup validates the input series and precomputes whatever the
	// strategy needs. It must fail when the history is insufficient.
	Setup(bars []types.Candle) error

	// GenerateSignals returns exactly one signal per bar, index-aligned
	// with the input. Implementations must be causal: the signal at index
	// i may only depend on bars[0..i]. The simulator assumes this but
	// cannot verify it.
	GenerateSignals(bars []types.Candle) ([]types.Signal, error)

	// RequiredHistory returns the minimum number of bars the strategy
	// needs before it can produce meaningful signals.
	RequiredHistory() int
}
