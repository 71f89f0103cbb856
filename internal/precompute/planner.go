// Package precompute implements the Indicator Precompute Planner (C4):
// it walks a Strategy AST, collects every uniquely-referenced indicator
// spec, and materializes each as a column on an enriched copy of the
// OHLCV table, keyed by canonical key.
//
// Grounded on original_source's polars_engine/massive.rs
// collect_required_indicators + precompute_indicators: dedup by canonical
// key before compute, missing-column recovery policy for high/low/volume,
// and NaN warm-up rows.
package precompute

import (
	"fmt"

	"github.com/atlas-desktop/trading-backend/internal/errs"
	"github.com/atlas-desktop/trading-backend/internal/indicators"
	"github.com/atlas-desktop/trading-backend/pkg/types"
)

// EnrichedTable shares the input OHLCV table read-only (its columns are
// not copied) and owns one computed column per unique indicator spec
// referenced by a strategy. It is exclusively owned by the worker that
// built it for the duration of one backtest (spec §5).
type EnrichedTable struct {
	*types.OHLCVTable
	Columns map[string][]float64 // keyed by IndicatorSpec.CanonicalKey()
}

// Column returns the named indicator column, or nil if never planned.
func (e *EnrichedTable) Column(key string) []float64 {
	return e.Columns[key]
}

// Plan walks the AST's entry and exit rules, deduplicates every referenced
// IndicatorSpec by canonical key, computes each exactly once via the
// registry, and returns the enriched table. Unknown indicators are
// reported as a *errs.StrategyError naming the offending strategy.
func Plan(table *types.OHLCVTable, strategy *types.StrategyAST, reg *indicators.Registry) (*EnrichedTable, error) {
	if table == nil || table.Len() == 0 {
		return nil, &errs.DataError{Reason: "OHLCV table is empty"}
	}

	specs := strategy.AllIndicatorSpecs()
	seen := make(map[string]types.IndicatorSpec, len(specs))
	order := make([]string, 0, len(specs))
	for _, spec := range specs {
		key := spec.CanonicalKey()
		if _, ok := seen[key]; !ok {
			seen[key] = spec
			order = append(order, key)
		}
	}

	columns := make(map[string][]float64, len(order))
	for _, key := range order {
		spec := seen[key]
		col, ok, err := reg.Compute(spec.Name, table, spec.Params)
		if err != nil {
			return nil, &errs.StrategyError{Strategy: strategy.Name, Reason: fmt.Sprintf("computing indicator %q", key), Cause: err}
		}
		if !ok {
			return nil, &errs.StrategyError{Strategy: strategy.Name, Reason: fmt.Sprintf("unknown indicator %q", spec.Name)}
		}
		columns[key] = col
	}

	return &EnrichedTable{OHLCVTable: table, Columns: columns}, nil
}
