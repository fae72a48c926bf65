package entities

import (
	"admissions/internal/crud"
	"admissions/internal/table"
)

type CallType struct {
	crud.Meta
	Name             string  `json:"name"`
	Description      *string `json:"description"`
	Color            string  `json:"color"`
	DurationMinutes  int     `json:"duration_minutes"`
	RequiresFollowUp bool    `json:"requires_follow_up"`
	IsActive         bool    `json:"is_active"`
}

var CallTypeSchema = crud.Schema[CallType]{
	Name:    "call_type",
	Path:    "call-types",
	Title:   "Call type",
	Table:   "call_types",
	Columns: []string{"name", "description", "color", "duration_minutes", "requires_follow_up", "is_active"},
	Values: func(c *CallType) []any {
		return []any{c.Name, c.Description, c.Color, c.DurationMinutes, c.RequiresFollowUp, c.IsActive}
	},
	Targets: func(c *CallType) []any {
		return []any{&c.Name, &c.Description, &c.Color, &c.DurationMinutes, &c.RequiresFollowUp, &c.IsActive}
	},
	Meta:  func(c *CallType) *crud.Meta { return &c.Meta },
	Label: func(c *CallType) string { return c.Name },
	Validate: func(c *CallType) error {
		return firstError(
			required("name", c.Name),
			validColor("color", c.Color),
			nonNegative("duration_minutes", &c.DurationMinutes),
		)
	},
	Defaults: func() CallType {
		return CallType{Color: "#10b981", DurationMinutes: 15, IsActive: true}
	},
	OrderBy: "name ASC",
	View: []table.Column{
		{Key: "name", Label: "Name", Sortable: true},
		{Key: "color", Label: "Color", Type: table.TypeColor},
		{Key: "duration_minutes", Label: "Duration (min)", Type: table.TypeNumber, Sortable: true},
		{Key: "requires_follow_up", Label: "Follow-up", Type: table.TypeBoolean, Sortable: true, Filterable: true},
		{Key: "is_active", Label: "Active", Type: table.TypeBoolean, Sortable: true, Filterable: true},
	},
}
