// Package signalcompiler implements the Signal Compiler (C5): it lowers a
// Strategy AST's entry/exit RuleSets into boolean column expressions over
// an enriched table.
//
// Grounded on original_source's conditions_to_polars_expr/
// condition_to_polars_expr, reimplemented as boolean-slice-producing Go
// functions rather than a lazy expression tree (no dataframe/expression
// library appears anywhere in the example pack for Go). Implements the
// spec-mandated fix: CrossesAbove/CrossesBelow compare the current row
// against the previous row, rather than degrading to plain GreaterThan/
// LessThan as the reference engine does.
package signalcompiler

import (
	"fmt"
	"math"

	"github.com/atlas-desktop/trading-backend/internal/precompute"
	"github.com/atlas-desktop/trading-backend/pkg/types"
)

// Compile lowers a RuleSet into one boolean-per-row signal column. An
// empty RuleSet compiles to the constant false (the strategy never
// trades on this side), matching the reference's lit(false) fallback.
func Compile(rs types.RuleSet, table *precompute.EnrichedTable) ([]bool, error) {
	n := table.Len()
	if len(rs.Conditions) == 0 {
		return make([]bool, n), nil
	}

	columns := make([][]bool, len(rs.Conditions))
	for i, c := range rs.Conditions {
		col, err := compileCondition(c, table)
		if err != nil {
			return nil, err
		}
		columns[i] = col
	}

	out := make([]bool, n)
	for row := 0; row < n; row++ {
		switch rs.Operator {
		case types.Or:
			result := false
			for _, col := range columns {
				if col[row] {
					result = true
					break
				}
			}
			out[row] = result
		default: // And
			result := true
			for _, col := range columns {
				if !col[row] {
					result = false
					break
				}
			}
			out[row] = result
		}
	}
	return out, nil
}

func compileCondition(c types.Condition, table *precompute.EnrichedTable) ([]bool, error) {
	left := table.Column(c.Indicator.CanonicalKey())
	if left == nil {
		return nil, fmt.Errorf("condition references unplanned indicator column %q", c.Indicator.CanonicalKey())
	}

	right, err := resolveValue(c.Value, table)
	if err != nil {
		return nil, err
	}

	n := table.Len()
	out := make([]bool, n)
	switch c.Comparison {
	case types.GreaterThan:
		for i := 0; i < n; i++ {
			out[i] = pointwiseValid(left[i], right[i]) && left[i] > right[i]
		}
	case types.LessThan:
		for i := 0; i < n; i++ {
			out[i] = pointwiseValid(left[i], right[i]) && left[i] < right[i]
		}
	case types.Equals:
		for i := 0; i < n; i++ {
			out[i] = pointwiseValid(left[i], right[i]) && left[i] == right[i]
		}
	case types.CrossesAbove:
		for i := 1; i < n; i++ {
			out[i] = pointwiseValid(left[i-1], right[i-1]) && pointwiseValid(left[i], right[i]) &&
				left[i-1] <= right[i-1] && left[i] > right[i]
		}
	case types.CrossesBelow:
		for i := 1; i < n; i++ {
			out[i] = pointwiseValid(left[i-1], right[i-1]) && pointwiseValid(left[i], right[i]) &&
				left[i-1] >= right[i-1] && left[i] < right[i]
		}
	default:
		return nil, fmt.Errorf("unknown comparison %q", c.Comparison)
	}
	return out, nil
}

// pointwiseValid reports whether both operands are defined; NaN on either
// side yields a false comparison per spec §4.4.
func pointwiseValid(a, b float64) bool {
	return !math.IsNaN(a) && !math.IsNaN(b)
}

// resolveValue expands a ConditionValue into a per-row column: a literal
// broadcasts to every row, Price resolves to the close column, and an
// IndicatorRef resolves to that indicator's planned column.
func resolveValue(v types.ConditionValue, table *precompute.EnrichedTable) ([]float64, error) {
	n := table.Len()
	switch v.Kind {
	case types.ValueNumber:
		out := make([]float64, n)
		for i := range out {
			out[i] = v.Number
		}
		return out, nil
	case types.ValuePrice:
		return table.Close, nil
	case types.ValueIndicatorRef:
		if v.Indicator == nil {
			return nil, fmt.Errorf("indicator_ref value missing its indicator spec")
		}
		col := table.Column(v.Indicator.CanonicalKey())
		if col == nil {
			return nil, fmt.Errorf("condition value references unplanned indicator column %q", v.Indicator.CanonicalKey())
		}
		return col, nil
	default:
		return nil, fmt.Errorf("unknown condition value kind %q", v.Kind)
	}
}
