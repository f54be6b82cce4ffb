// Package gate decides at startup which configured agents the provider registers.
package gate

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"youcomagents/pkg/logger"
)

// Env is the environment a rule is evaluated against.
type Env struct {
	ID      string
	Family  string
	Version string
	// Configured reports whether the agent's credentials resolve at startup.
	Configured bool
}

// Rule is a compiled enabled_when condition. The zero Rule always passes.
type Rule struct {
	source  string
	program *vm.Program
}

// Compile checks condition against Env. An empty condition yields a Rule that
// always passes.
func Compile(condition string) (Rule, error) {
	if condition == "" {
		return Rule{}, nil
	}
	program, err := expr.Compile(condition, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return Rule{}, fmt.Errorf("compile enabled_when %q: %w", condition, err)
	}
	return Rule{source: condition, program: program}, nil
}

// String returns the source condition.
func (r Rule) String() string { return r.source }

// Enabled runs the rule. Evaluation errors are logged and leave the agent enabled.
func (r Rule) Enabled(env Env) bool {
	if r.program == nil {
		return true
	}
	out, err := expr.Run(r.program, env)
	if err != nil {
		logger.Warn("enabled_when failed, keeping agent", "rule", r.source, "agent", env.ID, "error", err)
		return true
	}
	enabled, ok := out.(bool)
	return !ok || enabled
}
