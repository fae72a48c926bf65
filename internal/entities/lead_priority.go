package entities

import (
	"fmt"

	"admissions/internal/crud"
	"admissions/internal/table"
)

type LeadPriority struct {
	crud.Meta
	Name        string  `json:"name"`
	Level       int     `json:"level"`
	Color       string  `json:"color"`
	SLAHours    *int    `json:"sla_hours"`
	Description *string `json:"description"`
	IsDefault   bool    `json:"is_default"`
}

var LeadPrioritySchema = crud.Schema[LeadPriority]{
	Name:    "lead_priority",
	Path:    "lead-priorities",
	Title:   "Lead priority",
	Table:   "lead_priorities",
	Columns: []string{"name", "level", "color", "sla_hours", "description", "is_default"},
	Values: func(l *LeadPriority) []any {
		return []any{l.Name, l.Level, l.Color, l.SLAHours, l.Description, l.IsDefault}
	},
	Targets: func(l *LeadPriority) []any {
		return []any{&l.Name, &l.Level, &l.Color, &l.SLAHours, &l.Description, &l.IsDefault}
	},
	Meta:  func(l *LeadPriority) *crud.Meta { return &l.Meta },
	Label: func(l *LeadPriority) string { return l.Name },
	Validate: func(l *LeadPriority) error {
		if err := required("name", l.Name); err != nil {
			return err
		}
		if l.Level < 1 {
			return fmt.Errorf("level must be at least 1, got %d", l.Level)
		}
		return firstError(
			validColor("color", l.Color),
			nonNegative("sla_hours", l.SLAHours),
		)
	},
	Defaults: func() LeadPriority {
		return LeadPriority{Level: 1, Color: "#f59e0b"}
	},
	OrderBy: "level ASC",
	View: []table.Column{
		{Key: "name", Label: "Name", Sortable: true},
		{Key: "level", Label: "Level", Type: table.TypeNumber, Sortable: true},
		{Key: "color", Label: "Color", Type: table.TypeColor},
		{Key: "sla_hours", Label: "SLA (hours)", Type: table.TypeNumber, Sortable: true},
		{Key: "is_default", Label: "Default", Type: table.TypeBoolean, Sortable: true},
	},
}
