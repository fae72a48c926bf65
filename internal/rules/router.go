package rules

import (
	"context"
	"fmt"
	"sort"

	"admissions/pkg/cel"
)

// Route is the part of a routing rule the router needs.
type Route struct {
	ID         string
	Name       string
	TeamID     string
	Priority   int
	Active     bool
	Conditions Conditions
}

type Match struct {
	RuleID   string `json:"rule_id"`
	RuleName string `json:"rule_name"`
	TeamID   string `json:"team_id"`
}

type Router struct {
	eval *cel.Evaluator
}

func NewRouter(eval *cel.Evaluator) *Router {
	return &Router{eval: eval}
}

// Evaluate returns the first active route, by descending priority, whose
// conditions all match the lead. Equal priorities keep input order. A nil
// match means no route applies.
func (r *Router) Evaluate(ctx context.Context, routes []Route, lead Lead) (*Match, error) {
	ordered := make([]Route, 0, len(routes))
	for _, route := range routes {
		if route.Active {
			ordered = append(ordered, route)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	for _, route := range ordered {
		ok, err := route.Conditions.Match(ctx, r.eval, lead)
		if err != nil {
			return nil, fmt.Errorf("routing rule %s: %w", route.Name, err)
		}
		if ok {
			return &Match{RuleID: route.ID, RuleName: route.Name, TeamID: route.TeamID}, nil
		}
	}
	return nil, nil
}
