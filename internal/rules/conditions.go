// Package rules models the condition sets attached to routing rules and
// notification filters, and evaluates them against leads and change events.
package rules

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"admissions/pkg/cel"
)

type ConditionType string

const (
	TypeEquals     ConditionType = "equals"
	TypeIn         ConditionType = "in"
	TypeAtLeast    ConditionType = "at_least"
	TypeExpression ConditionType = "expression"
)

// Condition is a tagged union: Type decides which of the other fields apply.
//
//	equals     Field, Value
//	in         Field, Values
//	at_least   Field, Min
//	expression Expression (CEL, must return bool)
type Condition struct {
	Type       ConditionType `json:"type"`
	Field      string        `json:"field,omitempty"`
	Value      string        `json:"value,omitempty"`
	Values     []string      `json:"values,omitempty"`
	Min        *float64      `json:"min,omitempty"`
	Expression string        `json:"expression,omitempty"`
}

// Conditions are stored as a JSONB column and match when every member matches.
type Conditions []Condition

var (
	defaultOnce      sync.Once
	defaultEvaluator *cel.Evaluator
	defaultErr       error
)

// DefaultEvaluator is shared by entity validation and the routing endpoint.
func DefaultEvaluator() (*cel.Evaluator, error) {
	defaultOnce.Do(func() {
		defaultEvaluator, defaultErr = cel.NewEvaluator()
	})
	return defaultEvaluator, defaultErr
}

func (c Condition) Validate() error {
	switch c.Type {
	case TypeEquals:
		if c.Field == "" {
			return errors.New("field is required")
		}
	case TypeIn:
		if c.Field == "" {
			return errors.New("field is required")
		}
		if len(c.Values) == 0 {
			return errors.New("values is required")
		}
	case TypeAtLeast:
		if c.Field == "" {
			return errors.New("field is required")
		}
		if c.Min == nil {
			return errors.New("min is required")
		}
	case TypeExpression:
		if strings.TrimSpace(c.Expression) == "" {
			return errors.New("expression is required")
		}
		eval, err := DefaultEvaluator()
		if err != nil {
			return err
		}
		if err := eval.ValidateConditionExpression(c.Expression); err != nil {
			return err
		}
	case "":
		return errors.New("type is required")
	default:
		return fmt.Errorf("unknown condition type %q", c.Type)
	}
	return nil
}

func (cs Conditions) Validate() error {
	for i, c := range cs {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("condition %d: %w", i+1, err)
		}
	}
	return nil
}

// Match reports whether subject satisfies every condition. An empty set
// matches everything.
func (cs Conditions) Match(ctx context.Context, eval *cel.Evaluator, subject Subject) (bool, error) {
	for i, c := range cs {
		ok, err := c.Match(ctx, eval, subject)
		if err != nil {
			return false, fmt.Errorf("condition %d: %w", i+1, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (c Condition) Match(ctx context.Context, eval *cel.Evaluator, subject Subject) (bool, error) {
	switch c.Type {
	case TypeEquals:
		v, ok := subject.Lookup(c.Field)
		return ok && strings.EqualFold(v, c.Value), nil
	case TypeIn:
		v, ok := subject.Lookup(c.Field)
		if !ok {
			return false, nil
		}
		for _, want := range c.Values {
			if strings.EqualFold(v, want) {
				return true, nil
			}
		}
		return false, nil
	case TypeAtLeast:
		v, ok := subject.Lookup(c.Field)
		if !ok || c.Min == nil {
			return false, nil
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return false, nil
		}
		return n >= *c.Min, nil
	case TypeExpression:
		if eval == nil {
			return false, errors.New("expression conditions need an evaluator")
		}
		return eval.Evaluate(ctx, c.Expression, subject.Vars())
	default:
		return false, fmt.Errorf("unknown condition type %q", c.Type)
	}
}

func (cs Conditions) Value() (driver.Value, error) {
	if cs == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(cs)
}

func (cs *Conditions) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*cs = Conditions{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into conditions", src)
	}
	if len(data) == 0 {
		*cs = Conditions{}
		return nil
	}
	return json.Unmarshal(data, cs)
}
