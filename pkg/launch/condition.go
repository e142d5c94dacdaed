package launch

import (
	"fmt"
	"strings"

	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/aretw0/launchtree/pkg/scope"
)

// EvaluateCondition resolves the predicate and applies "unless" negation.
func (e *Engine) EvaluateCondition(c *scope.Context, cond *domain.Condition) (bool, error) {
	if cond == nil {
		return true, nil
	}
	raw, err := e.ResolveSubstitution(c, cond.Expr)
	if err != nil {
		return false, err
	}
	v, err := parseBool(raw)
	if err != nil {
		return false, err
	}
	if cond.Unless {
		return !v, nil
	}
	return v, nil
}

// If returns an "if" condition.
func If(expr domain.Substitution) *domain.Condition {
	return &domain.Condition{Expr: expr}
}

// Unless returns an "unless" condition.
func Unless(expr domain.Substitution) *domain.Condition {
	return &domain.Condition{Expr: expr, Unless: true}
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidCondition, s)
	}
}
