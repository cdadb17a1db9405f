package types

// PerformanceMetrics is the aggregate statistics record computed once from a
// portfolio trajectory and its trade list.
//
// Values are plain float64 and may legitimately be NaN or +Inf (for example
// ProfitFactor with no losing trades). The calculator never coerces them to
// sentinel values; formatting for presentation or storage is the consumer's
// job.
type PerformanceMetrics struct {
	// Return metrics
	TotalReturn float64
	CAGR        float64

	// Trade statistics
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64
	ProfitFactor  float64
	AverageWin    float64
	AverageLoss   float64
	AverageTrade  float64
	LargestWin    float64
	LargestLoss   float64
	Expectancy    float64

	// Risk metrics
	SharpeRatio  float64
	SortinoRatio float64
	Volatility   float64

	// Drawdown metrics. MaxDrawdown and AverageDrawdown are reported as
	// positive magnitudes; MaxDrawdownDuration is the longest consecutive
	// run of bars spent below the running peak.
	MaxDrawdown         float64
	AverageDrawdown     float64
	MaxDrawdownDuration int

	// Trade durations, in days.
	AverageTradeDuration float64
	MaxTradeDuration     float64
	MinTradeDuration     float64

	// Portfolio values
	InitialValue float64
	FinalValue   float64

	// Benchmark: buy and hold with the strategy's own fractional position
	// size, not a fully invested position.
	BuyHoldReturn float64
}
