package types

// Comparison is the operator in a Condition.
type Comparison string

const (
	GreaterThan  Comparison = "greater_than"
	LessThan     Comparison = "less_than"
	Equals       Comparison = "equals"
	CrossesAbove Comparison = "crosses_above"
	CrossesBelow Comparison = "crosses_below"
)

// ValueKind tags which variant a ConditionValue holds.
type ValueKind string

const (
	ValueNumber       ValueKind = "number"
	ValuePrice        ValueKind = "price"
	ValueIndicatorRef ValueKind = "indicator_ref"
)

// ConditionValue is the right-hand side of a Condition: a literal number,
// the close price column, or a reference to another indicator.
type ConditionValue struct {
	Kind      ValueKind      `json:"kind"`
	Number    float64        `json:"number,omitempty"`
	Indicator *IndicatorSpec `json:"indicator,omitempty"`
}

// NumberValue builds a literal-number ConditionValue.
func NumberValue(n float64) ConditionValue { return ConditionValue{Kind: ValueNumber, Number: n} }

// PriceValue builds a ConditionValue referencing the close column.
func PriceValue() ConditionValue { return ConditionValue{Kind: ValuePrice} }

// IndicatorValue builds a ConditionValue referencing another indicator.
func IndicatorValue(spec IndicatorSpec) ConditionValue {
	return ConditionValue{Kind: ValueIndicatorRef, Indicator: &spec}
}

// Condition compares an indicator against a value.
type Condition struct {
	Indicator  IndicatorSpec  `json:"indicator"`
	Comparison Comparison     `json:"comparison"`
	Value      ConditionValue `json:"value"`
}

// LogicalOperator combines conditions within a RuleSet.
type LogicalOperator string

const (
	And LogicalOperator = "and"
	Or  LogicalOperator = "or"
)

// RuleSet is a flat logical combination of conditions. A valid strategy's
// entry and exit rule sets must be non-empty.
type RuleSet struct {
	Operator   LogicalOperator `json:"operator"`
	Conditions []Condition     `json:"conditions"`
}

// StrategyAST is the typed expression tree describing when to enter and
// exit a position. PrimaryTimeframe is carried for JSON shape parity with
// upstream strategy generators but is not consumed by the backtest core:
// the effective timeframe is whatever the supplied OHLCV table represents.
type StrategyAST struct {
	Name             string  `json:"name"`
	PrimaryTimeframe string  `json:"primary_timeframe,omitempty"`
	EntryRules       RuleSet `json:"entry_rules"`
	ExitRules        RuleSet `json:"exit_rules"`
}

// AllIndicatorSpecs walks the full AST (entry + exit, condition indicators
// and any IndicatorRef values) and returns every referenced IndicatorSpec,
// including duplicates. Callers wanting unique specs should dedupe by
// CanonicalKey (see internal/precompute).
func (s *StrategyAST) AllIndicatorSpecs() []IndicatorSpec {
	var specs []IndicatorSpec
	collect := func(rs RuleSet) {
		for _, c := range rs.Conditions {
			specs = append(specs, c.Indicator)
			if c.Value.Kind == ValueIndicatorRef && c.Value.Indicator != nil {
				specs = append(specs, *c.Value.Indicator)
			}
		}
	}
	collect(s.EntryRules)
	collect(s.ExitRules)
	return specs
}
