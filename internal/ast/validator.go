// Package ast validates Strategy ASTs against the indicator registry and a
// set of structural constraints, and provides a content-addressable hash
// for persistence deduplication.
//
// Grounded on the original validator's ValidationReport{errors, warnings,
// info} shape and its validate_basic_strategy / validate_all_indicators /
// analyze_strategy_quality pipeline, with every multi-timeframe-specific
// rule dropped (out of scope per the core spec).
package ast

import (
	"fmt"

	"github.com/atlas-desktop/trading-backend/internal/indicators"
	"github.com/atlas-desktop/trading-backend/pkg/types"
)

// Constraints bounds strategy complexity for validation.
type Constraints struct {
	MaxConditions int // total conditions across entry+exit
	MaxIndicators int // unique indicator specs by canonical key
}

// DefaultConstraints mirrors typical screening-population limits.
func DefaultConstraints() Constraints {
	return Constraints{MaxConditions: 20, MaxIndicators: 10}
}

// Report is the three-tier validation outcome: Errors make the strategy
// unusable (StrategyError), Warnings flag likely-bad design, Info is
// purely advisory quality commentary.
type Report struct {
	Errors   []string
	Warnings []string
	Info     []string
}

// OK reports whether the strategy has no hard errors.
func (r Report) OK() bool { return len(r.Errors) == 0 }

// Validator checks a StrategyAST against an indicator registry and
// structural constraints.
type Validator struct {
	Registry    *indicators.Registry
	Constraints Constraints
}

// NewValidator builds a Validator with the default constraints.
func NewValidator(reg *indicators.Registry) *Validator {
	return &Validator{Registry: reg, Constraints: DefaultConstraints()}
}

// Validate runs the full pipeline and returns a report. It never panics;
// all rule violations are collected rather than short-circuiting, so a
// caller sees every problem in one pass.
func (v *Validator) Validate(s *types.StrategyAST) Report {
	var r Report
	v.validateBasic(s, &r)
	v.validateIndicators(s, &r)
	v.analyzeQuality(s, &r)
	return r
}

func (v *Validator) validateBasic(s *types.StrategyAST, r *Report) {
	if s.Name == "" {
		r.Errors = append(r.Errors, "strategy name must not be empty")
	}
	if len(s.EntryRules.Conditions) == 0 {
		r.Errors = append(r.Errors, "entry rules must not be empty")
	}
	if len(s.ExitRules.Conditions) == 0 {
		r.Errors = append(r.Errors, "exit rules must not be empty")
	}

	total := len(s.EntryRules.Conditions) + len(s.ExitRules.Conditions)
	if total > v.Constraints.MaxConditions {
		r.Errors = append(r.Errors, fmt.Sprintf(
			"complexity %d exceeds max_conditions %d", total, v.Constraints.MaxConditions))
	}

	unique := map[string]struct{}{}
	for _, spec := range s.AllIndicatorSpecs() {
		unique[spec.CanonicalKey()] = struct{}{}
	}
	if len(unique) > v.Constraints.MaxIndicators {
		r.Errors = append(r.Errors, fmt.Sprintf(
			"unique indicator count %d exceeds max_indicators %d", len(unique), v.Constraints.MaxIndicators))
	}
}

func (v *Validator) validateIndicators(s *types.StrategyAST, r *Report) {
	check := func(rs types.RuleSet) {
		for _, c := range rs.Conditions {
			v.validateSpec(c.Indicator, r)
			if c.Value.Kind == types.ValueIndicatorRef && c.Value.Indicator != nil {
				v.validateSpec(*c.Value.Indicator, r)
			}
		}
	}
	check(s.EntryRules)
	check(s.ExitRules)
}

func (v *Validator) validateSpec(spec types.IndicatorSpec, r *Report) {
	meta, ok := v.Registry.Get(spec.Name)
	if !ok {
		r.Errors = append(r.Errors, fmt.Sprintf("unknown indicator %q", spec.Name))
		return
	}
	if len(spec.Params) != len(meta.Parameters) {
		r.Errors = append(r.Errors, fmt.Sprintf(
			"indicator %q expects %d parameter(s), got %d", spec.Name, len(meta.Parameters), len(spec.Params)))
		return
	}
	for i, def := range meta.Parameters {
		p := spec.Params[i]
		if p < def.Min || p > def.Max {
			r.Errors = append(r.Errors, fmt.Sprintf(
				"indicator %q parameter %q=%v outside range [%v,%v]", spec.Name, def.Name, p, def.Min, def.Max))
		}
	}
}

// analyzeQuality emits advisory warnings/info: duplicated indicator usage
// beyond a threshold, and overly long AND/OR chains in the entry rules.
func (v *Validator) analyzeQuality(s *types.StrategyAST, r *Report) {
	counts := map[string]int{}
	for _, spec := range s.AllIndicatorSpecs() {
		counts[spec.CanonicalKey()]++
	}
	for key, n := range counts {
		if n > 3 {
			r.Warnings = append(r.Warnings, fmt.Sprintf("indicator %q used %d times (>3)", key, n))
		}
	}

	switch {
	case s.EntryRules.Operator == types.And && len(s.EntryRules.Conditions) > 5:
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"entry rule AND-chain has %d conditions (>5)", len(s.EntryRules.Conditions)))
	case s.EntryRules.Operator == types.Or && len(s.EntryRules.Conditions) > 7:
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"entry rule OR-chain has %d conditions (>7)", len(s.EntryRules.Conditions)))
	}

	r.Info = append(r.Info, fmt.Sprintf(
		"%d unique indicator(s), %d entry condition(s), %d exit condition(s)",
		len(counts), len(s.EntryRules.Conditions), len(s.ExitRules.Conditions)))
}
