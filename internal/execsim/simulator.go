// Package execsim implements the Execution Simulator (C6): a per-bar state
// machine over an enriched, signal-bearing table that maintains position
// state and emits trade records honoring strict SL/TP/signal priority,
// slippage, commission and position-sizing rules.
//
// Grounded on original_source's polars_engine/massive.rs
// calculate_trades_from_signals, the richest reference for this state
// machine. Implements both spec-mandated fixes over that reference: the
// non-risk sizing branch honors position_size_percent instead of a
// hardcoded 50% allocation, and per-trade PnL subtracts both entry and
// exit commission per spec §4.6's explicit formula (the reference only
// subtracts the exit leg).
package execsim

import (
	"github.com/atlas-desktop/trading-backend/internal/errs"
	"github.com/atlas-desktop/trading-backend/internal/precompute"
	"github.com/atlas-desktop/trading-backend/pkg/types"
)

type state int

const (
	flat state = iota
	long
)

type position struct {
	entryTS         int64
	entryPrice      float64
	size            float64
	entryCommission float64
}

// Run scans the enriched table row by row, tracking at most one open long
// position, and returns the closed trades plus the derived equity curve
// (one point per closed trade, balance after that trade, in exit order —
// which is automatically chronological since rows are scanned in order).
func Run(table *precompute.EnrichedTable, entrySignal, exitSignal []bool, cfg types.BacktestConfig, strategyName string) ([]types.Trade, []types.EquityPoint, error) {
	n := table.Len()
	if n == 0 {
		return nil, nil, &errs.DataError{Reason: "OHLCV table is empty"}
	}

	var (
		st      = flat
		pos     position
		balance = cfg.InitialBalance
		trades  []types.Trade
		curve   []types.EquityPoint
		peak    = cfg.InitialBalance
	)

	closeTrade := func(exitTS int64, exitPrice, slippageAmount float64, reason types.ExitReason) error {
		exitCommission := cfg.CalculateCommission(exitPrice * pos.size)
		pnl := (exitPrice-pos.entryPrice)*pos.size - (pos.entryCommission + exitCommission)
		if pos.size <= 0 {
			return &errs.ExecutionError{Strategy: strategyName, Reason: "position size must be positive at close"}
		}
		trades = append(trades, types.Trade{
			EntryTimestamp: pos.entryTS,
			ExitTimestamp:  exitTS,
			EntryPrice:     pos.entryPrice,
			ExitPrice:      exitPrice,
			Size:           pos.size,
			IsLong:         true,
			PnL:            pnl,
			Commission:     pos.entryCommission + exitCommission,
			Slippage:       slippageAmount,
			ExitReason:     reason,
		})
		balance += pnl
		if balance > peak {
			peak = balance
		}
		drawdown := 0.0
		if peak > 0 {
			drawdown = (peak - balance) / peak
		}
		curve = append(curve, types.EquityPoint{Timestamp: exitTS, Balance: balance, Drawdown: drawdown})
		st = flat
		return nil
	}

	for i := 0; i < n; i++ {
		high, low, close := table.High[i], table.Low[i], table.Close[i]
		ts := table.Timestamp[i]

		if st == flat {
			if entrySignal[i] {
				entryPrice := close * (1 + cfg.SlippageBps/1e4)
				size := positionSize(balance, entryPrice, cfg)
				entryCommission := cfg.CalculateCommission(entryPrice * size)
				if size > 0 && balance >= entryPrice*size+entryCommission {
					// Balance is not debited here: the full economic effect
					// of the trade (gross P&L minus both commission legs)
					// is applied once, atomically, when the position closes.
					pos = position{entryTS: ts, entryPrice: entryPrice, size: size, entryCommission: entryCommission}
					st = long
				}
			}
			continue
		}

		// st == long: evaluate TP > SL > signal exit > hold, in that order.
		if cfg.TakeProfitPercent != nil {
			tpPrice := pos.entryPrice * (1 + *cfg.TakeProfitPercent)
			if high >= tpPrice {
				if err := closeTrade(ts, tpPrice, 0, types.ExitTakeProfit); err != nil {
					return nil, nil, err
				}
				continue
			}
		}
		if cfg.StopLossPercent != nil {
			slPrice := pos.entryPrice * (1 - *cfg.StopLossPercent)
			if low <= slPrice {
				if err := closeTrade(ts, slPrice, 0, types.ExitStopLoss); err != nil {
					return nil, nil, err
				}
				continue
			}
		}
		if exitSignal[i] {
			exitPrice := close * (1 - cfg.SlippageBps/1e4)
			slippageAmount := close - exitPrice
			if err := closeTrade(ts, exitPrice, slippageAmount, types.ExitSignal); err != nil {
				return nil, nil, err
			}
			continue
		}
	}

	if st == long {
		lastClose := table.Close[n-1]
		exitPrice := lastClose * (1 - cfg.SlippageBps/1e4)
		slippageAmount := lastClose - exitPrice
		if err := closeTrade(table.Timestamp[n-1], exitPrice, slippageAmount, types.ExitEndOfData); err != nil {
			return nil, nil, err
		}
	}

	if trades == nil {
		trades = []types.Trade{}
	}
	if curve == nil {
		curve = []types.EquityPoint{}
	}
	return trades, curve, nil
}

// positionSize implements the sizing rules of spec §4.6: risk-based when
// a stop-loss is configured, else a direct position_size_percent
// allocation of the current balance (the spec-mandated fix over the
// reference's hardcoded 50%).
func positionSize(balance, entryPrice float64, cfg types.BacktestConfig) float64 {
	if cfg.StopLossPercent != nil {
		riskPerUnit := entryPrice * *cfg.StopLossPercent
		if riskPerUnit > 0 {
			maxRiskAmount := balance * cfg.RiskPerTrade
			return maxRiskAmount / riskPerUnit
		}
		return (balance * cfg.PositionSizePercent) / entryPrice
	}
	return (balance * cfg.PositionSizePercent) / entryPrice
}
