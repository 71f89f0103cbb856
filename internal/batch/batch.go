// Package batch implements the Batch Orchestrator (C8): it runs C4->C7
// for every strategy in a list, isolates per-strategy failures behind a
// zero-metrics result, applies filter thresholds, and ranks survivors by
// a weighted composite score.
//
// Grounded on spec.md §4.8 and, for the embarrassingly-parallel
// across-strategies execution model of spec.md §5, on the teacher's
// internal/workers pool (a trimmed copy of the teacher's pool: a generic
// task pool with panic recovery and a bounded queue, run here with one
// worker per CPU core as §5 describes).
package batch

import (
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/atlas-desktop/trading-backend/internal/errs"
	"github.com/atlas-desktop/trading-backend/internal/execsim"
	"github.com/atlas-desktop/trading-backend/internal/indicators"
	"github.com/atlas-desktop/trading-backend/internal/metrics"
	"github.com/atlas-desktop/trading-backend/internal/precompute"
	"github.com/atlas-desktop/trading-backend/internal/signalcompiler"
	"github.com/atlas-desktop/trading-backend/internal/workers"
	"github.com/atlas-desktop/trading-backend/pkg/types"
)

// Filters holds the conjunctive filter thresholds applied to a
// strategy's metrics before ranking. A nil pointer field means that
// threshold is not enforced.
type Filters struct {
	MinTrades   int
	MinWinRate  *float64
	MinSharpe   *float64
	MinReturn   *float64
	MaxDrawdown *float64
}

// DefaultWeights is the score weighting used when the caller's weights
// don't sum to a positive number, per spec.md §4.8 step 3.
var DefaultWeights = [5]float64{0.3, 0.2, 0.2, 0.15, 0.15}

// Ranked pairs a BacktestResult with its composite score and its
// position in the input strategy list, preserved for a stable tie-break
// when sorting by descending score.
type Ranked struct {
	Result        types.BacktestResult
	Score         float64
	OriginalIndex int
}

// ProgressFunc receives one notification per completed strategy, used by
// the API layer's WebSocket progress stream and Prometheus counters
// (internal/api). Called from whichever worker goroutine finished that
// strategy, so implementations must be safe for concurrent use.
type ProgressFunc func(completed, total int, currentStrategy string, elapsed time.Duration)

// Run executes every strategy's C4->C7 pipeline, isolating failures,
// applies filters, and returns the top N survivors ranked by composite
// score. The table and config are shared read-only across all
// strategies; the Registry must already have every indicator used by
// any of the strategies registered. An optional ProgressFunc is invoked
// once per completed strategy (in completion order, not original index
// order); omit it for silent batches.
func Run(
	logger *zap.Logger,
	table *types.OHLCVTable,
	strategies []*types.StrategyAST,
	reg *indicators.Registry,
	cfg types.BacktestConfig,
	filters Filters,
	weights [5]float64,
	topN int,
	onProgress ...ProgressFunc,
) ([]Ranked, error) {
	if table == nil || table.Len() == 0 {
		return nil, &errs.DataError{Reason: "OHLCV table is empty"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var progress ProgressFunc
	if len(onProgress) > 0 {
		progress = onProgress[0]
	}

	results := runAll(logger, table, strategies, reg, cfg, progress)

	survivors := applyFilters(results, filters)

	w := normalizeWeights(weights)
	ranked := make([]Ranked, len(survivors))
	for i, s := range survivors {
		ranked[i] = Ranked{
			Result:        s.result,
			Score:         compositeScore(s.result.Metrics, w),
			OriginalIndex: s.index,
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].OriginalIndex < ranked[j].OriginalIndex
	})

	if topN > 0 && topN < len(ranked) {
		ranked = ranked[:topN]
	}
	return ranked, nil
}

type indexedResult struct {
	index  int
	result types.BacktestResult
}

// runAll dispatches one task per strategy onto a worker pool sized for
// CPU-bound work, per spec.md §5's "worker pool of size ~ number of CPU
// cores". Each worker computes into its own result slot; a panic or
// error from a single strategy never aborts the batch.
func runAll(logger *zap.Logger, table *types.OHLCVTable, strategies []*types.StrategyAST, reg *indicators.Registry, cfg types.BacktestConfig, progress ProgressFunc) []types.BacktestResult {
	results := make([]types.BacktestResult, len(strategies))

	poolCfg := workers.HighThroughputPoolConfig("batch-screener")
	poolCfg.NumWorkers = runtime.NumCPU()
	pool := workers.NewPool(logger, poolCfg)
	pool.Start()
	defer pool.Stop()

	var (
		wg        sync.WaitGroup
		completed atomic.Int64
	)
	total := len(strategies)
	report := func(name string, elapsed time.Duration) {
		n := int(completed.Add(1))
		if progress != nil {
			progress(n, total, name, elapsed)
		}
	}

	wg.Add(len(strategies))
	for i, strategy := range strategies {
		i, strategy := i, strategy
		task := workers.TaskFunc(func() error {
			defer wg.Done()
			start := time.Now()
			results[i] = runOne(table, strategy, reg, cfg)
			report(strategy.Name, time.Since(start))
			return nil
		})
		if err := pool.Submit(task); err != nil {
			// Queue full or pool stopped: run inline rather than drop the
			// strategy, preserving the "batch MUST NOT abort" guarantee.
			start := time.Now()
			results[i] = runOne(table, strategy, reg, cfg)
			report(strategy.Name, time.Since(start))
			wg.Done()
		}
	}
	wg.Wait()
	return results
}

// runOne executes C4->C7 for a single strategy, converting any error
// (including a panic, which runOne recovers itself) into a zero-metrics
// result that preserves metadata, per spec.md §4.8 step 1. The error is
// not logged.
func runOne(table *types.OHLCVTable, strategy *types.StrategyAST, reg *indicators.Registry, cfg types.BacktestConfig) (result types.BacktestResult) {
	meta := types.BacktestMetadata{
		StartTimestamp: table.Timestamp[0],
		EndTimestamp:   table.Timestamp[table.Len()-1],
		TotalCandles:   table.Len(),
		InitialBalance: cfg.InitialBalance,
		FinalBalance:   cfg.InitialBalance,
		Config:         cfg,
	}

	defer func() {
		if r := recover(); r != nil {
			result = types.ZeroResult(strategy.Name, meta)
		}
	}()

	enriched, err := precompute.Plan(table, strategy, reg)
	if err != nil {
		return types.ZeroResult(strategy.Name, meta)
	}

	entrySignal, err := signalcompiler.Compile(strategy.EntryRules, enriched)
	if err != nil {
		return types.ZeroResult(strategy.Name, meta)
	}
	exitSignal, err := signalcompiler.Compile(strategy.ExitRules, enriched)
	if err != nil {
		return types.ZeroResult(strategy.Name, meta)
	}

	trades, curve, err := execsim.Run(enriched, entrySignal, exitSignal, cfg, strategy.Name)
	if err != nil {
		return types.ZeroResult(strategy.Name, meta)
	}

	m, err := metrics.Compute(trades, curve, cfg.InitialBalance, meta.StartTimestamp, meta.EndTimestamp)
	if err != nil {
		return types.ZeroResult(strategy.Name, meta)
	}

	finalBalance := cfg.InitialBalance
	if len(curve) > 0 {
		finalBalance = curve[len(curve)-1].Balance
	}
	meta.FinalBalance = finalBalance

	return types.BacktestResult{
		StrategyName: strategy.Name,
		Metrics:      m,
		Trades:       trades,
		EquityCurve:  curve,
		Metadata:     meta,
	}
}

func applyFilters(results []types.BacktestResult, f Filters) []indexedResult {
	out := make([]indexedResult, 0, len(results))
	for i, r := range results {
		if r.Metrics.TotalTrades < f.MinTrades {
			continue
		}
		if f.MinWinRate != nil && r.Metrics.WinRate < *f.MinWinRate {
			continue
		}
		if f.MinSharpe != nil && r.Metrics.SharpeRatio < *f.MinSharpe {
			continue
		}
		if f.MinReturn != nil && r.Metrics.TotalReturn < *f.MinReturn {
			continue
		}
		if f.MaxDrawdown != nil && r.Metrics.MaxDrawdown > *f.MaxDrawdown {
			continue
		}
		out = append(out, indexedResult{index: i, result: r})
	}
	return out
}

func normalizeWeights(w [5]float64) [5]float64 {
	sum := 0.0
	for _, x := range w {
		sum += x
	}
	if sum <= 0 {
		return DefaultWeights
	}
	out := [5]float64{}
	for i, x := range w {
		out[i] = x / sum
	}
	return out
}

func clip(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// compositeScore implements spec.md §4.8 step 4 exactly.
func compositeScore(m types.BacktestMetrics, w [5]float64) float64 {
	return w[0]*clip(m.SharpeRatio/5) +
		w[1]*clip(m.SortinoRatio/5) +
		w[2]*clip(m.ProfitFactor/5) +
		w[3]*clip(2*m.TotalReturn) +
		w[4]*(1-clip(2*m.MaxDrawdown))
}
