package types

// ExitReason identifies why a position was closed.
type ExitReason string

const (
	ExitStopLoss   ExitReason = "StopLoss"
	ExitTakeProfit ExitReason = "TakeProfit"
	ExitSignal     ExitReason = "Signal"
	ExitEndOfData  ExitReason = "EndOfData"
)

// Trade is one closed round-trip position.
type Trade struct {
	EntryTimestamp int64      `json:"entry_timestamp"`
	ExitTimestamp  int64      `json:"exit_timestamp"`
	EntryPrice     float64    `json:"entry_price"`
	ExitPrice      float64    `json:"exit_price"`
	Size           float64    `json:"size"`
	IsLong         bool       `json:"is_long"`
	PnL            float64    `json:"pnl"`
	Commission     float64    `json:"commission"`
	Slippage       float64    `json:"slippage"`
	ExitReason     ExitReason `json:"exit_reason"`
}

// EquityPoint is one sample of the account balance curve, one per closed
// trade, ordered by ExitTimestamp.
type EquityPoint struct {
	Timestamp int64   `json:"timestamp"`
	Balance   float64 `json:"balance"`
	Drawdown  float64 `json:"drawdown"`
}

// BacktestMetrics aggregates return, risk, trade-statistics, duration,
// streak, frequency and exit-reason counts for one backtest. The metrics
// engine's zero-on-empty-denominator guards keep fields free of NaN
// (MetricsError otherwise); ProfitFactor is +Inf when every trade wins.
type BacktestMetrics struct {
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	SortinoRatio     float64 `json:"sortino_ratio"`
	ReturnOnRisk     float64 `json:"return_on_risk"`

	MaxDrawdown         float64 `json:"max_drawdown"`
	MaxDrawdownPercent  float64 `json:"max_drawdown_percent"`
	MaxDrawdownDuration int64   `json:"max_drawdown_duration"`
	CalmarRatio         float64 `json:"calmar_ratio"`
	VaR95               float64 `json:"var_95"`

	TotalTrades    int     `json:"total_trades"`
	WinningTrades  int     `json:"winning_trades"`
	LosingTrades   int     `json:"losing_trades"`
	WinRate        float64 `json:"win_rate"`
	ProfitFactor   float64 `json:"profit_factor"`
	AverageWin     float64 `json:"average_win"`
	AverageLoss    float64 `json:"average_loss"`
	LargestWin     float64 `json:"largest_win"`
	LargestLoss    float64 `json:"largest_loss"`
	Expectancy     float64 `json:"expectancy"`
	RecoveryFactor float64 `json:"recovery_factor"`
	TotalProfit    float64 `json:"total_profit"`
	TotalLoss      float64 `json:"total_loss"`

	AverageTradeDurationMs        int64 `json:"average_trade_duration_ms"`
	AverageWinningTradeDurationMs int64 `json:"average_winning_trade_duration_ms"`
	AverageLosingTradeDurationMs  int64 `json:"average_losing_trade_duration_ms"`

	MaxConsecutiveWins   int `json:"max_consecutive_wins"`
	MaxConsecutiveLosses int `json:"max_consecutive_losses"`

	TradesPerMonth float64 `json:"trades_per_month"`
	TradesPerYear  float64 `json:"trades_per_year"`

	StopLossExits   int `json:"stop_loss_exits"`
	TakeProfitExits int `json:"take_profit_exits"`
	SignalExits     int `json:"signal_exits"`
	EndOfDataExits  int `json:"end_of_data_exits"`
}

// BacktestMetadata records the run's provenance alongside its result.
type BacktestMetadata struct {
	StartTimestamp int64          `json:"start_ts"`
	EndTimestamp   int64          `json:"end_ts"`
	TotalCandles   int            `json:"total_candles"`
	InitialBalance float64        `json:"initial_balance"`
	FinalBalance   float64        `json:"final_balance"`
	Config         BacktestConfig `json:"config"`
}

// BacktestResult is the outcome of backtesting one strategy against one
// OHLCV table.
type BacktestResult struct {
	StrategyName string            `json:"strategy_name"`
	Metrics      BacktestMetrics   `json:"metrics"`
	Trades       []Trade           `json:"trades"`
	EquityCurve  []EquityPoint     `json:"equity_curve"`
	Metadata     BacktestMetadata  `json:"metadata"`
}

// ZeroResult builds the zero-metrics placeholder returned for a strategy
// whose backtest failed, preserving metadata per the per-strategy
// isolation policy.
func ZeroResult(strategyName string, meta BacktestMetadata) BacktestResult {
	return BacktestResult{
		StrategyName: strategyName,
		Metrics:      BacktestMetrics{},
		Trades:       []Trade{},
		EquityCurve:  []EquityPoint{},
		Metadata:     meta,
	}
}
