package types

import (
	"fmt"
	"math"

	"github.com/atlas-desktop/trading-backend/internal/errs"
)

// BacktestConfig holds the economic parameters for a single backtest run.
// StopLossPercent and TakeProfitPercent are optional (nil means "not set").
type BacktestConfig struct {
	InitialBalance      float64  `json:"initial_balance"`
	CommissionRate      float64  `json:"commission_rate"`
	SlippageBps         float64  `json:"slippage_bps"`
	MaxPositions        int      `json:"max_positions"`
	RiskPerTrade        float64  `json:"risk_per_trade"`
	StopLossPercent     *float64 `json:"stop_loss_percent,omitempty"`
	TakeProfitPercent   *float64 `json:"take_profit_percent,omitempty"`
	PositionSizePercent float64  `json:"position_size_percent"`
}

// DefaultBacktestConfig mirrors the reference implementation's defaults.
func DefaultBacktestConfig() BacktestConfig {
	return BacktestConfig{
		InitialBalance:      10000.0,
		CommissionRate:      0.001,
		SlippageBps:         5.0,
		MaxPositions:        1,
		RiskPerTrade:        0.02,
		StopLossPercent:     nil,
		TakeProfitPercent:   nil,
		PositionSizePercent: 0.5,
	}
}

// CalculateCommission returns the commission owed on a trade of the given
// notional value.
func (c BacktestConfig) CalculateCommission(tradeValue float64) float64 {
	return tradeValue * c.CommissionRate
}

// CalculateSlippage returns the monetary slippage applied to an execution
// at the given price.
func (c BacktestConfig) CalculateSlippage(price float64) float64 {
	return price * (c.SlippageBps / 10000.0)
}

// Validate checks the config-level invariants from the error taxonomy,
// returning an *errs.ConfigError for any violation: non-positive or NaN
// balance, negative or NaN commission/slippage, max_positions below 1,
// risk_per_trade or position_size_percent out of (0,1], and a set
// stop_loss_percent or take_profit_percent out of (0,1). Infinite values
// are not rejected separately.
func (c BacktestConfig) Validate() error {
	if !(c.InitialBalance > 0) {
		return &errs.ConfigError{Reason: fmt.Sprintf("initial_balance must be positive, got %v", c.InitialBalance)}
	}
	if c.CommissionRate < 0 || math.IsNaN(c.CommissionRate) {
		return &errs.ConfigError{Reason: fmt.Sprintf("commission_rate must be non-negative, got %v", c.CommissionRate)}
	}
	if c.SlippageBps < 0 || math.IsNaN(c.SlippageBps) {
		return &errs.ConfigError{Reason: fmt.Sprintf("slippage_bps must be non-negative, got %v", c.SlippageBps)}
	}
	if c.MaxPositions < 1 {
		return &errs.ConfigError{Reason: fmt.Sprintf("max_positions must be >= 1, got %v", c.MaxPositions)}
	}
	if c.RiskPerTrade <= 0 || c.RiskPerTrade > 1 || math.IsNaN(c.RiskPerTrade) {
		return &errs.ConfigError{Reason: fmt.Sprintf("risk_per_trade must be in (0,1], got %v", c.RiskPerTrade)}
	}
	if c.StopLossPercent != nil && (*c.StopLossPercent <= 0 || *c.StopLossPercent >= 1) {
		return &errs.ConfigError{Reason: fmt.Sprintf("stop_loss_percent must be in (0,1), got %v", *c.StopLossPercent)}
	}
	if c.TakeProfitPercent != nil && (*c.TakeProfitPercent <= 0 || *c.TakeProfitPercent >= 1) {
		return &errs.ConfigError{Reason: fmt.Sprintf("take_profit_percent must be in (0,1), got %v", *c.TakeProfitPercent)}
	}
	if c.PositionSizePercent <= 0 || c.PositionSizePercent > 1 || math.IsNaN(c.PositionSizePercent) {
		return &errs.ConfigError{Reason: fmt.Sprintf("position_size_percent must be in (0,1], got %v", c.PositionSizePercent)}
	}
	return nil
}
