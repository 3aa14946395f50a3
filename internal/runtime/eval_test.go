package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawane/shiori/pkg/scenario"
)

func TestEvalCondition(t *testing.T) {
	flags := NewFlagStore()
	flags.Set("met_alice", true)
	vars := NewVariableStore()
	vars.Set("score", scenario.IntValue(10))
	vars.Set("name", scenario.StringValue("alice"))
	vars.Set("ratio", scenario.FloatValue(0.5))

	cases := []struct {
		name string
		cond scenario.Condition
		want bool
	}{
		{"literal true", scenario.Literal{Value: true}, true},
		{"literal false", scenario.Literal{Value: false}, false},
		{"flag set", scenario.FlagIs{Flag: "met_alice", Value: true}, true},
		{"flag unset reads false", scenario.FlagIs{Flag: "met_bob", Value: false}, true},
		{"int eq", scenario.Compare{Variable: "score", Op: scenario.OpEq, Value: scenario.IntValue(10)}, true},
		{"int lt", scenario.Compare{Variable: "score", Op: scenario.OpLt, Value: scenario.IntValue(11)}, true},
		{"int ge", scenario.Compare{Variable: "score", Op: scenario.OpGe, Value: scenario.IntValue(11)}, false},
		{"string eq", scenario.Compare{Variable: "name", Op: scenario.OpEq, Value: scenario.StringValue("alice")}, true},
		{"float within tolerance", scenario.Compare{Variable: "ratio", Op: scenario.OpEq, Value: scenario.FloatValue(0.5 + 1e-12)}, true},
		{"undefined int reads zero", scenario.Compare{Variable: "missing", Op: scenario.OpEq, Value: scenario.IntValue(0)}, true},
		{"undefined string reads empty", scenario.Compare{Variable: "missing2", Op: scenario.OpEq, Value: scenario.StringValue("")}, true},
		{"not", scenario.Not{Cond: scenario.FlagIs{Flag: "met_alice", Value: true}}, false},
		{"empty all is true", scenario.All{}, true},
		{"empty any is false", scenario.Any{}, false},
		{
			"all",
			scenario.All{Conds: []scenario.Condition{
				scenario.FlagIs{Flag: "met_alice", Value: true},
				scenario.Compare{Variable: "score", Op: scenario.OpGt, Value: scenario.IntValue(5)},
			}},
			true,
		},
		{
			"any",
			scenario.Any{Conds: []scenario.Condition{
				scenario.FlagIs{Flag: "met_bob", Value: true},
				scenario.Compare{Variable: "score", Op: scenario.OpGt, Value: scenario.IntValue(5)},
			}},
			true,
		},
		{"nil condition is true", nil, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := evalCondition(tc.cond, flags, vars)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvalConditionTypeMismatch(t *testing.T) {
	flags := NewFlagStore()
	vars := NewVariableStore()
	vars.Set("score", scenario.IntValue(10))

	_, err := evalCondition(scenario.Compare{
		Variable: "score",
		Op:       scenario.OpEq,
		Value:    scenario.StringValue("10"),
	}, flags, vars)
	require.Error(t, err)

	var typeErr *scenario.TypeError
	assert.ErrorAs(t, err, &typeErr)
}

func TestEvalConditionShortCircuit(t *testing.T) {
	flags := NewFlagStore()
	vars := NewVariableStore()
	vars.Set("score", scenario.IntValue(10))

	// The mismatching comparison sits behind a deciding child, so it
	// must never be evaluated.
	bad := scenario.Compare{Variable: "score", Op: scenario.OpEq, Value: scenario.StringValue("boom")}

	ok, err := evalCondition(scenario.All{Conds: []scenario.Condition{
		scenario.Literal{Value: false},
		bad,
	}}, flags, vars)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = evalCondition(scenario.Any{Conds: []scenario.Condition{
		scenario.Literal{Value: true},
		bad,
	}}, flags, vars)
	require.NoError(t, err)
	assert.True(t, ok)
}
