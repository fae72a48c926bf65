package cel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvaluator(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)
	assert.NotNil(t, eval)
}

func TestValidateExpression(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	tests := []struct {
		name      string
		expr      string
		wantError bool
	}{
		{name: "valid simple expression", expr: `lead.source == "web"`},
		{name: "valid numeric comparison", expr: `lead.priority > 2`},
		{name: "invalid expression", expr: `invalid syntax here!!!`, wantError: true},
		{name: "undefined variable", expr: `undefinedVar == "test"`, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := eval.ValidateExpression(tt.expr)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateConditionExpression(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	assert.NoError(t, eval.ValidateConditionExpression(`lead.source == "web"`))
	assert.Error(t, eval.ValidateConditionExpression(`lead.priority`))
	assert.Error(t, eval.ValidateConditionExpression(`"text"`))
}

func TestConditionExpressionExamplesCompile(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	for name, expr := range ConditionExpressionExamples {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, eval.ValidateConditionExpression(expr))
		})
	}
}

func TestEvaluate(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	ctx := context.Background()
	vars := Vars{
		Lead: map[string]interface{}{
			"source":   "referral",
			"program":  "DS-BSC",
			"priority": 3,
			"attributes": map[string]interface{}{
				"country": "DE",
			},
		},
	}

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{name: "equals", expr: `lead.source == "referral"`, want: true},
		{name: "not equals", expr: `lead.source == "web"`, want: false},
		{name: "in list", expr: `lead.program in ["DS-BSC", "CS-MSC"]`, want: true},
		{name: "numeric", expr: `lead.priority >= 3`, want: true},
		{name: "nested attribute", expr: `lead.attributes.country == "DE"`, want: true},
		{name: "missing event is empty", expr: `!has(event.action)`, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.Evaluate(ctx, tt.expr, vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_CachesPrograms(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	expr := `event.action == "delete"`
	for i := 0; i < 3; i++ {
		got, err := eval.Evaluate(context.Background(), expr, Vars{Event: map[string]interface{}{"action": "delete"}})
		require.NoError(t, err)
		assert.True(t, got)
	}

	_, ok := eval.programs.Load(expr)
	assert.True(t, ok)
}

func TestEvaluate_NonBoolRejected(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	_, err = eval.Evaluate(context.Background(), `lead.priority`, Vars{})
	assert.Error(t, err)
}
