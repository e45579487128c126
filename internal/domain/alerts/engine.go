// Package alerts evaluates stock alert rules. Conditions are CEL
// expressions over per-item stock figures, so operators can tune thresholds
// without a redeploy.
package alerts

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// Rule is one named alert condition.
type Rule struct {
	Name     string `json:"name"`
	Severity string `json:"severity"`
	// Expr is a CEL boolean expression over the evaluation variables:
	// stock, reorder_level, days_to_expiry, has_expiry, is_perishable.
	Expr string `json:"expr"`
}

// DefaultRules returns the built-in reorder and expiry alerts.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "reorder_soon",
			Severity: "warning",
			Expr:     "stock <= reorder_level * 1.5",
		},
		{
			Name:     "expiry_imminent",
			Severity: "critical",
			Expr:     "has_expiry && days_to_expiry < 3",
		},
	}
}

// Input is the variable set one evaluation sees. Quantities arrive as
// float64 here; threshold comparison does not need ledger precision.
type Input struct {
	Stock        float64
	ReorderLevel float64
	DaysToExpiry int64
	HasExpiry    bool
	IsPerishable bool
}

// Alert is one triggered rule.
type Alert struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
}

type compiledRule struct {
	rule Rule
	prg  cel.Program
}

// Engine holds compiled rules. Compile once, evaluate per item/lot.
type Engine struct {
	rules []compiledRule
}

// NewEngine compiles the rules, rejecting any that are not boolean.
func NewEngine(rules []Rule) (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("stock", cel.DoubleType),
		cel.Variable("reorder_level", cel.DoubleType),
		cel.Variable("days_to_expiry", cel.IntType),
		cel.Variable("has_expiry", cel.BoolType),
		cel.Variable("is_perishable", cel.BoolType),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}

	engine := &Engine{rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		ast, iss := env.Compile(r.Expr)
		if iss != nil && iss.Err() != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, iss.Err())
		}
		if ast.OutputType() != cel.BoolType {
			return nil, fmt.Errorf("rule %q: expression must be boolean, got %s", r.Name, ast.OutputType())
		}

		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("program rule %q: %w", r.Name, err)
		}
		engine.rules = append(engine.rules, compiledRule{rule: r, prg: prg})
	}

	return engine, nil
}

// Evaluate runs every rule against the input and returns the triggered ones.
func (e *Engine) Evaluate(in Input) ([]Alert, error) {
	vars := map[string]any{
		"stock":          in.Stock,
		"reorder_level":  in.ReorderLevel,
		"days_to_expiry": in.DaysToExpiry,
		"has_expiry":     in.HasExpiry,
		"is_perishable":  in.IsPerishable,
	}

	var triggered []Alert
	for _, cr := range e.rules {
		out, _, err := cr.prg.Eval(vars)
		if err != nil {
			return nil, fmt.Errorf("eval rule %q: %w", cr.rule.Name, err)
		}
		if hit, ok := out.Value().(bool); ok && hit {
			triggered = append(triggered, Alert{Rule: cr.rule.Name, Severity: cr.rule.Severity})
		}
	}
	return triggered, nil
}
