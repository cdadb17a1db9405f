package types

// Signal is the per-bar decision emitted by a strategy: buy, hold or sell.
// A signal series is index-aligned 1:1 with the candle series it was
// generated from.
type Signal int8

const (
	SignalSell Signal = -1
	SignalHold Signal = 0
	SignalBuy  Signal = 1
)

func (s Signal) String() string {
	switch s {
	case SignalBuy:
		return "BUY"
	case SignalSell:
		return "SELL"
	default:
		return "HOLD"
	}
}
