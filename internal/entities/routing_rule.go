package entities

import (
	"admissions/internal/crud"
	"admissions/internal/rules"
	"admissions/internal/table"
)

type RoutingRule struct {
	crud.Meta
	Name       string           `json:"name"`
	Priority   int              `json:"priority"`
	Conditions rules.Conditions `json:"conditions"`
	TeamID     string           `json:"team_id"`
	IsActive   bool             `json:"is_active"`
}

var RoutingRuleSchema = crud.Schema[RoutingRule]{
	Name:    "routing_rule",
	Path:    "routing-rules",
	Title:   "Routing rule",
	Table:   "routing_rules",
	Columns: []string{"name", "priority", "conditions", "team_id", "is_active"},
	Values: func(r *RoutingRule) []any {
		return []any{r.Name, r.Priority, r.Conditions, r.TeamID, r.IsActive}
	},
	Targets: func(r *RoutingRule) []any {
		return []any{&r.Name, &r.Priority, &r.Conditions, &r.TeamID, &r.IsActive}
	},
	Meta:  func(r *RoutingRule) *crud.Meta { return &r.Meta },
	Label: func(r *RoutingRule) string { return r.Name },
	Validate: func(r *RoutingRule) error {
		return firstError(
			required("name", r.Name),
			required("team_id", r.TeamID),
			r.Conditions.Validate(),
		)
	},
	Defaults: func() RoutingRule {
		return RoutingRule{Priority: 1, Conditions: rules.Conditions{}, IsActive: true}
	},
	OrderBy: "priority DESC",
	View: []table.Column{
		{Key: "priority", Label: "Priority", Type: table.TypeNumber, Sortable: true, Width: "90px"},
		{Key: "name", Label: "Name", Sortable: true},
		{Key: "team_id", Label: "Team", Filterable: true},
		{Key: "is_active", Label: "Active", Type: table.TypeBoolean, Sortable: true, Filterable: true},
	},
}

// Routes converts stored rules for the router.
func Routes(items []RoutingRule) []rules.Route {
	routes := make([]rules.Route, len(items))
	for i, r := range items {
		routes[i] = rules.Route{
			ID:         r.ID,
			Name:       r.Name,
			TeamID:     r.TeamID,
			Priority:   r.Priority,
			Active:     r.IsActive,
			Conditions: r.Conditions,
		}
	}
	return routes
}
