package runtime

import (
	"fmt"

	"github.com/sawane/shiori/pkg/scenario"
)

// evalCondition evaluates a condition tree against the stores. It is
// pure: no store mutation, no side effects. All and Any short-circuit,
// so children past the deciding one are never evaluated and cannot
// raise type errors.
//
// An undefined variable reads as the type-specific zero of the operand's
// kind; a kind mismatch between a defined variable and the operand is an
// evaluation error.
func evalCondition(cond scenario.Condition, flags *FlagStore, vars *VariableStore) (bool, error) {
	switch c := cond.(type) {
	case scenario.Literal:
		return c.Value, nil
	case scenario.FlagIs:
		return flags.Get(c.Flag) == c.Value, nil
	case scenario.Compare:
		current, ok := vars.Get(c.Variable)
		if !ok {
			current = scenario.ZeroValue(c.Value.Kind())
		}
		res, err := current.Compare(c.Op, c.Value)
		if err != nil {
			return false, fmt.Errorf("condition on %q: %w", c.Variable, err)
		}
		return res, nil
	case scenario.All:
		for _, child := range c.Conds {
			ok, err := evalCondition(child, flags, vars)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case scenario.Any:
		for _, child := range c.Conds {
			ok, err := evalCondition(child, flags, vars)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case scenario.Not:
		ok, err := evalCondition(c.Cond, flags, vars)
		if err != nil {
			return false, err
		}
		return !ok, nil
	case nil:
		return true, nil
	default:
		return false, fmt.Errorf("unknown condition type %T", cond)
	}
}
