package entities

import (
	"admissions/internal/crud"
	"admissions/internal/table"
)

var LeadStages = []string{"new", "working", "qualified", "converted", "lost"}

type LeadStatus struct {
	crud.Meta
	Name     string `json:"name"`
	Stage    string `json:"stage"`
	Color    string `json:"color"`
	Position int    `json:"position"`
	IsFinal  bool   `json:"is_final"`
	IsActive bool   `json:"is_active"`
}

var LeadStatusSchema = crud.Schema[LeadStatus]{
	Name:    "lead_status",
	Path:    "lead-statuses",
	Title:   "Lead status",
	Table:   "lead_statuses",
	Columns: []string{"name", "stage", "color", "position", "is_final", "is_active"},
	Values: func(l *LeadStatus) []any {
		return []any{l.Name, l.Stage, l.Color, l.Position, l.IsFinal, l.IsActive}
	},
	Targets: func(l *LeadStatus) []any {
		return []any{&l.Name, &l.Stage, &l.Color, &l.Position, &l.IsFinal, &l.IsActive}
	},
	Meta:  func(l *LeadStatus) *crud.Meta { return &l.Meta },
	Label: func(l *LeadStatus) string { return l.Name },
	Validate: func(l *LeadStatus) error {
		return firstError(
			required("name", l.Name),
			oneOf("stage", l.Stage, LeadStages...),
			validColor("color", l.Color),
			nonNegative("position", &l.Position),
		)
	},
	Defaults: func() LeadStatus {
		return LeadStatus{Stage: "new", Color: "#6366f1", IsActive: true}
	},
	OrderBy: "position ASC",
	View: []table.Column{
		{Key: "position", Label: "#", Type: table.TypeNumber, Sortable: true, Width: "60px"},
		{Key: "name", Label: "Name", Sortable: true},
		{Key: "stage", Label: "Stage", Type: table.TypeBadge, Sortable: true, Filterable: true,
			BadgeVariants: map[string]string{"converted": "default", "lost": "destructive", "qualified": "secondary"}},
		{Key: "color", Label: "Color", Type: table.TypeColor},
		{Key: "is_final", Label: "Final", Type: table.TypeBoolean, Sortable: true},
		{Key: "is_active", Label: "Active", Type: table.TypeBoolean, Sortable: true, Filterable: true},
	},
}
