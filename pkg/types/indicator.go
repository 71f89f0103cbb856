package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// IndicatorCategory groups indicators for registry browsing and reporting.
type IndicatorCategory string

const (
	CategoryTrend         IndicatorCategory = "trend"
	CategoryMomentum      IndicatorCategory = "momentum"
	CategoryVolatility    IndicatorCategory = "volatility"
	CategoryVolume        IndicatorCategory = "volume"
	CategoryCandlePattern IndicatorCategory = "candle_pattern"
)

// InputKind describes which OHLCV columns an indicator consumes.
type InputKind string

const (
	InputPriceSeries  InputKind = "price_series"  // single column, usually close
	InputCandleSeries InputKind = "candle_series" // open/high/low/close
	InputMultiSeries  InputKind = "multi_series"  // candle columns plus volume
)

// ParamType classifies a parameter's role, mirroring the reference catalog.
type ParamType string

const (
	ParamPeriod     ParamType = "period"
	ParamMultiplier ParamType = "multiplier"
	ParamPercentage ParamType = "percentage"
	ParamValue      ParamType = "value"
)

// ParameterDef declares one parameter's valid range and default.
type ParameterDef struct {
	Name        string    `json:"name"`
	Kind        ParamType `json:"kind"`
	Min         float64   `json:"min"`
	Max         float64   `json:"max"`
	Default     float64   `json:"default"`
	Description string    `json:"description,omitempty"`
}

// PeriodParam is a convenience constructor for a lookback-period parameter.
func PeriodParam(name string, min, max, def float64) ParameterDef {
	return ParameterDef{Name: name, Kind: ParamPeriod, Min: min, Max: max, Default: def}
}

// MultiplierParam is a convenience constructor for a multiplier parameter.
func MultiplierParam(name string, min, max, def float64) ParameterDef {
	return ParameterDef{Name: name, Kind: ParamMultiplier, Min: min, Max: max, Default: def}
}

// IndicatorMetadata describes an indicator's shape: category, inputs,
// declared lookback and parameter schema. Populated once at registry
// initialization and read-only thereafter. Every builtin declares a
// Lookback of 1; the actual number of NaN warm-up rows of a period-based
// kernel depends on its period parameter, not on this field.
type IndicatorMetadata struct {
	Name        string            `json:"name"`
	Category    IndicatorCategory `json:"category"`
	InputKind   InputKind         `json:"input_kind"`
	Lookback    int               `json:"lookback"`
	Parameters  []ParameterDef    `json:"parameters"`
	Description string            `json:"description,omitempty"`
}

// IndicatorSpec is an AST leaf: an indicator name plus concrete parameters.
type IndicatorSpec struct {
	Name   string    `json:"name"`
	Params []float64 `json:"params"`
}

// CanonicalKey returns the deterministic string identifying this spec,
// used both for cross-condition deduplication and as the enriched-table
// column name: bare name with no params, else "name_p1_p2...", each
// parameter floored to an integer.
func (s IndicatorSpec) CanonicalKey() string {
	if len(s.Params) == 0 {
		return s.Name
	}
	parts := make([]string, 0, len(s.Params)+1)
	parts = append(parts, s.Name)
	for _, p := range s.Params {
		parts = append(parts, strconv.FormatInt(int64(math.Floor(p)), 10))
	}
	return strings.Join(parts, "_")
}

func (s IndicatorSpec) String() string {
	return fmt.Sprintf("%s(%v)", s.Name, s.Params)
}
