// Package metrics implements the Metrics Engine (C7): it turns a closed
// trade list and its derived equity curve into the full BacktestMetrics
// shape, guarding every division against a zero denominator per spec
// §4.7.
//
// Grounded on original_source's metrics/{returns,risk,statistics}.rs,
// translated one function at a time into the Go field-by-field
// equivalents; the zero-risk-free-rate Sharpe/Sortino formulas and the
// VaR95/calmar/recovery-factor definitions follow those files exactly.
package metrics

import (
	"math"
	"sort"

	"github.com/atlas-desktop/trading-backend/internal/errs"
	"github.com/atlas-desktop/trading-backend/pkg/types"
)

// Compute derives BacktestMetrics from a closed trade list, its equity
// curve, the initial balance and the start/end timestamps of the OHLCV
// table the backtest ran over (used for the days-elapsed annualization
// base, which is independent of how many trades actually occurred).
func Compute(trades []types.Trade, curve []types.EquityPoint, initialBalance float64, startTS, endTS int64) (types.BacktestMetrics, error) {
	var m types.BacktestMetrics
	m.TotalTrades = len(trades)

	finalBalance := initialBalance
	if len(curve) > 0 {
		finalBalance = curve[len(curve)-1].Balance
	}

	m.TotalReturn = totalReturn(initialBalance, finalBalance)

	days := float64(endTS-startTS) / 86_400_000.0
	m.AnnualizedReturn = annualizedReturn(m.TotalReturn, days)

	m.MaxDrawdown = maxDrawdown(curve)
	m.MaxDrawdownPercent = m.MaxDrawdown * 100
	m.MaxDrawdownDuration = int64(maxDrawdownDuration(curve))
	m.CalmarRatio = calmarRatio(m.AnnualizedReturn, m.MaxDrawdown)
	m.VaR95 = 0

	returns := balanceRelativeReturns(curve, initialBalance)
	m.VaR95 = valueAtRisk95(returns)
	m.SharpeRatio = sharpeRatio(returns, 0)
	m.SortinoRatio = sortinoRatio(returns, 0)

	m.WinningTrades = countWhere(trades, func(t types.Trade) bool { return t.PnL > 0 })
	m.LosingTrades = countWhere(trades, func(t types.Trade) bool { return t.PnL < 0 })
	m.WinRate = winRate(trades)
	m.TotalProfit = totalProfit(trades)
	m.TotalLoss = totalLoss(trades)
	m.ProfitFactor = profitFactor(m.TotalProfit, m.TotalLoss)
	m.AverageWin = averageWin(trades)
	m.AverageLoss = averageLoss(trades)
	m.LargestWin = largestWin(trades)
	m.LargestLoss = largestLoss(trades)
	m.Expectancy = m.WinRate*m.AverageWin - (1-m.WinRate)*m.AverageLoss
	m.RecoveryFactor = recoveryFactor(m.TotalProfit, m.MaxDrawdown*initialBalance)

	m.AverageTradeDurationMs = int64(averageDuration(trades, nil))
	m.AverageWinningTradeDurationMs = int64(averageDuration(trades, func(t types.Trade) bool { return t.PnL > 0 }))
	m.AverageLosingTradeDurationMs = int64(averageDuration(trades, func(t types.Trade) bool { return t.PnL < 0 }))

	m.MaxConsecutiveWins = maxConsecutive(trades, func(t types.Trade) bool { return t.PnL > 0 })
	m.MaxConsecutiveLosses = maxConsecutive(trades, func(t types.Trade) bool { return t.PnL < 0 })

	if days > 0 {
		months := days / 30.0
		years := days / 365.0
		if months > 0 {
			m.TradesPerMonth = float64(m.TotalTrades) / months
		}
		if years > 0 {
			m.TradesPerYear = float64(m.TotalTrades) / years
		}
	}

	for _, t := range trades {
		switch t.ExitReason {
		case types.ExitStopLoss:
			m.StopLossExits++
		case types.ExitTakeProfit:
			m.TakeProfitExits++
		case types.ExitSignal:
			m.SignalExits++
		case types.ExitEndOfData:
			m.EndOfDataExits++
		}
	}

	if err := checkFinite(m); err != nil {
		return types.BacktestMetrics{}, err
	}
	return m, nil
}

func checkFinite(m types.BacktestMetrics) error {
	fields := []float64{
		m.TotalReturn, m.AnnualizedReturn, m.CalmarRatio, m.VaR95, m.SharpeRatio, m.SortinoRatio,
		m.MaxDrawdown, m.MaxDrawdownPercent, m.WinRate, m.AverageWin, m.AverageLoss,
		m.LargestWin, m.LargestLoss, m.Expectancy, m.RecoveryFactor, m.TotalProfit, m.TotalLoss,
		m.TradesPerMonth, m.TradesPerYear,
	}
	for _, f := range fields {
		if math.IsNaN(f) {
			return &errs.MetricsError{Reason: "metric computation produced NaN"}
		}
	}
	// ProfitFactor is allowed to be +Inf (all-wins case); only NaN is a bug.
	if math.IsNaN(m.ProfitFactor) {
		return &errs.MetricsError{Reason: "profit factor is NaN"}
	}
	return nil
}

func totalReturn(initial, final float64) float64 {
	if initial == 0 {
		return 0
	}
	return (final - initial) / initial
}

func annualizedReturn(totalReturn, days float64) float64 {
	if days <= 0 {
		return 0
	}
	years := days / 365.0
	if years <= 0 {
		return 0
	}
	return math.Pow(1+totalReturn, 1/years) - 1
}

func maxDrawdown(curve []types.EquityPoint) float64 {
	if len(curve) == 0 {
		return 0
	}
	peak := curve[0].Balance
	maxDD := 0.0
	for _, p := range curve {
		if p.Balance > peak {
			peak = p.Balance
		}
		if peak <= 0 {
			continue
		}
		dd := (peak - p.Balance) / peak
		if dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

func maxDrawdownDuration(curve []types.EquityPoint) int {
	if len(curve) == 0 {
		return 0
	}
	peak := curve[0].Balance
	peakIdx := 0
	maxDur, curDur := 0, 0
	for i, p := range curve {
		if p.Balance > peak {
			peak = p.Balance
			peakIdx = i
			curDur = 0
		} else if p.Balance < peak {
			curDur = i - peakIdx
			if curDur > maxDur {
				maxDur = curDur
			}
		}
	}
	return maxDur
}

func calmarRatio(annualizedReturn, maxDrawdown float64) float64 {
	if maxDrawdown == 0 {
		return 0
	}
	return annualizedReturn / maxDrawdown
}

// balanceRelativeReturns turns the equity curve into one fractional
// change per closed trade: (balance_i - balance_{i-1}) / balance_{i-1},
// with balance_0 = initialBalance.
func balanceRelativeReturns(curve []types.EquityPoint, initialBalance float64) []float64 {
	if len(curve) == 0 {
		return nil
	}
	out := make([]float64, len(curve))
	prev := initialBalance
	for i, p := range curve {
		if prev != 0 {
			out[i] = (p.Balance - prev) / prev
		}
		prev = p.Balance
	}
	return out
}

func valueAtRisk95(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sorted := append([]float64(nil), returns...)
	sort.Float64s(sorted)
	idx := int(float64(len(sorted)) * 0.05)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return -sorted[idx]
}

func sharpeRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	mean := meanOf(returns)
	excess := mean - riskFreeRate
	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))
	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return excess / std
}

func sortinoRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	mean := meanOf(returns)
	excess := mean - riskFreeRate
	downsideVariance := 0.0
	for _, r := range returns {
		if r < 0 {
			downsideVariance += r * r
		}
	}
	downsideVariance /= float64(len(returns))
	downsideStd := math.Sqrt(downsideVariance)
	if downsideStd == 0 {
		return 0
	}
	return excess / downsideStd
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func winRate(trades []types.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	wins := countWhere(trades, func(t types.Trade) bool { return t.PnL > 0 })
	return float64(wins) / float64(len(trades))
}

func totalProfit(trades []types.Trade) float64 {
	sum := 0.0
	for _, t := range trades {
		if t.PnL > 0 {
			sum += t.PnL
		}
	}
	return sum
}

func totalLoss(trades []types.Trade) float64 {
	sum := 0.0
	for _, t := range trades {
		if t.PnL < 0 {
			sum += math.Abs(t.PnL)
		}
	}
	return sum
}

func profitFactor(totalProfit, totalLoss float64) float64 {
	if totalLoss == 0 {
		if totalProfit > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return totalProfit / totalLoss
}

func averageWin(trades []types.Trade) float64 {
	sum, n := 0.0, 0
	for _, t := range trades {
		if t.PnL > 0 {
			sum += t.PnL
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func averageLoss(trades []types.Trade) float64 {
	sum, n := 0.0, 0
	for _, t := range trades {
		if t.PnL < 0 {
			sum += math.Abs(t.PnL)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func largestWin(trades []types.Trade) float64 {
	max := 0.0
	for _, t := range trades {
		if t.PnL > max {
			max = t.PnL
		}
	}
	return max
}

func largestLoss(trades []types.Trade) float64 {
	max := 0.0
	for _, t := range trades {
		loss := math.Abs(t.PnL)
		if t.PnL < 0 && loss > max {
			max = loss
		}
	}
	return max
}

func recoveryFactor(totalProfit, maxDrawdownAmount float64) float64 {
	if maxDrawdownAmount == 0 {
		return 0
	}
	return totalProfit / maxDrawdownAmount
}

func averageDuration(trades []types.Trade, keep func(types.Trade) bool) float64 {
	sum, n := int64(0), 0
	for _, t := range trades {
		if keep != nil && !keep(t) {
			continue
		}
		sum += t.ExitTimestamp - t.EntryTimestamp
		n++
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func maxConsecutive(trades []types.Trade, keep func(types.Trade) bool) int {
	max, cur := 0, 0
	for _, t := range trades {
		if keep(t) {
			cur++
			if cur > max {
				max = cur
			}
		} else {
			cur = 0
		}
	}
	return max
}

func countWhere(trades []types.Trade, pred func(types.Trade) bool) int {
	n := 0
	for _, t := range trades {
		if pred(t) {
			n++
		}
	}
	return n
}
