package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestCondition_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cond    Condition
		wantErr string
	}{
		{name: "equals ok", cond: Condition{Type: TypeEquals, Field: "source", Value: "web"}},
		{name: "equals without field", cond: Condition{Type: TypeEquals}, wantErr: "field is required"},
		{name: "in without values", cond: Condition{Type: TypeIn, Field: "program"}, wantErr: "values is required"},
		{name: "at_least without min", cond: Condition{Type: TypeAtLeast, Field: "priority"}, wantErr: "min is required"},
		{name: "expression ok", cond: Condition{Type: TypeExpression, Expression: `lead.priority > 1`}},
		{name: "expression not bool", cond: Condition{Type: TypeExpression, Expression: `lead.priority`}, wantErr: "must return bool"},
		{name: "missing type", cond: Condition{Field: "x"}, wantErr: "type is required"},
		{name: "unknown type", cond: Condition{Type: "regex"}, wantErr: "unknown condition type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cond.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConditions_ValidateReportsPosition(t *testing.T) {
	cs := Conditions{
		{Type: TypeEquals, Field: "source", Value: "web"},
		{Type: TypeIn, Field: "program"},
	}
	err := cs.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "condition 2")
}

func TestConditions_MatchLead(t *testing.T) {
	eval, err := DefaultEvaluator()
	require.NoError(t, err)

	lead := Lead{Source: "Referral", Program: "DS-BSC", Priority: 3, Attributes: map[string]string{"country": "DE"}}

	tests := []struct {
		name string
		cs   Conditions
		want bool
	}{
		{name: "empty matches", cs: nil, want: true},
		{name: "equals is case insensitive", cs: Conditions{{Type: TypeEquals, Field: "source", Value: "referral"}}, want: true},
		{name: "in", cs: Conditions{{Type: TypeIn, Field: "program", Values: []string{"CS-MSC", "DS-BSC"}}}, want: true},
		{name: "attribute", cs: Conditions{{Type: TypeEquals, Field: "attributes.country", Value: "de"}}, want: true},
		{name: "at_least met", cs: Conditions{{Type: TypeAtLeast, Field: "priority", Min: ptr(3)}}, want: true},
		{name: "at_least unmet", cs: Conditions{{Type: TypeAtLeast, Field: "priority", Min: ptr(4)}}, want: false},
		{name: "missing field", cs: Conditions{{Type: TypeEquals, Field: "campus", Value: "north"}}, want: false},
		{name: "expression", cs: Conditions{{Type: TypeExpression, Expression: `lead.attributes.country == "DE"`}}, want: true},
		{
			name: "all must match",
			cs: Conditions{
				{Type: TypeEquals, Field: "source", Value: "referral"},
				{Type: TypeEquals, Field: "program", Value: "CS-MSC"},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cs.Match(context.Background(), eval, lead)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConditions_MatchEvent(t *testing.T) {
	eval, err := DefaultEvaluator()
	require.NoError(t, err)

	event := EventSubject{"entity": "program", "action": "delete"}
	cs := Conditions{
		{Type: TypeIn, Field: "entity", Values: []string{"program", "campus"}},
		{Type: TypeExpression, Expression: `event.action == "delete"`},
	}

	got, err := cs.Match(context.Background(), eval, event)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestConditions_ValueAndScan(t *testing.T) {
	cs := Conditions{{Type: TypeIn, Field: "program", Values: []string{"A"}}}
	v, err := cs.Value()
	require.NoError(t, err)

	var back Conditions
	require.NoError(t, back.Scan(v))
	assert.Equal(t, cs, back)

	var empty Conditions
	require.NoError(t, empty.Scan(nil))
	assert.Equal(t, Conditions{}, empty)
	assert.Error(t, empty.Scan(42))
}

func TestConditions_ScanKeepsOnlyVariantFields(t *testing.T) {
	var cs Conditions
	require.NoError(t, cs.Scan([]byte(`[{"type":"equals","field":"country","value":"UK","attributes":{"k":"v"}}]`)))

	v, err := cs.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `[{"type":"equals","field":"country","value":"UK"}]`, string(v.([]byte)))
}

func TestRouter_Evaluate(t *testing.T) {
	eval, err := DefaultEvaluator()
	require.NoError(t, err)
	router := NewRouter(eval)

	routes := []Route{
		{ID: "r1", Name: "catch all", TeamID: "general", Priority: 1, Active: true},
		{ID: "r2", Name: "referrals", TeamID: "vip", Priority: 10, Active: true,
			Conditions: Conditions{{Type: TypeEquals, Field: "source", Value: "referral"}}},
		{ID: "r3", Name: "disabled", TeamID: "nobody", Priority: 100, Active: false},
	}

	match, err := router.Evaluate(context.Background(), routes, Lead{Source: "referral"})
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "vip", match.TeamID)

	match, err = router.Evaluate(context.Background(), routes, Lead{Source: "web"})
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "r1", match.RuleID)

	match, err = router.Evaluate(context.Background(), routes[1:], Lead{Source: "web"})
	require.NoError(t, err)
	assert.Nil(t, match)
}
