package entities

import (
	"github.com/lib/pq"

	"admissions/internal/crud"
	"admissions/internal/table"
)

type Team struct {
	crud.Meta
	Name           string   `json:"name"`
	Description    *string  `json:"description"`
	Members        []string `json:"members"`
	Color          string   `json:"color"`
	MaxLeadsPerDay *int     `json:"max_leads_per_day"`
	IsActive       bool     `json:"is_active"`
}

var TeamSchema = crud.Schema[Team]{
	Name:    "team",
	Path:    "teams",
	Title:   "Team",
	Table:   "teams",
	Columns: []string{"name", "description", "members", "color", "max_leads_per_day", "is_active"},
	Values: func(t *Team) []any {
		return []any{t.Name, t.Description, array(t.Members), t.Color, t.MaxLeadsPerDay, t.IsActive}
	},
	Targets: func(t *Team) []any {
		return []any{&t.Name, &t.Description, pq.Array(&t.Members), &t.Color, &t.MaxLeadsPerDay, &t.IsActive}
	},
	Meta:  func(t *Team) *crud.Meta { return &t.Meta },
	Label: func(t *Team) string { return t.Name },
	Validate: func(t *Team) error {
		return firstError(
			required("name", t.Name),
			validColor("color", t.Color),
			nonNegative("max_leads_per_day", t.MaxLeadsPerDay),
		)
	},
	Defaults: func() Team {
		return Team{Members: []string{}, Color: "#8b5cf6", IsActive: true}
	},
	OrderBy: "name ASC",
	View: []table.Column{
		{Key: "name", Label: "Name", Sortable: true},
		{Key: "members", Label: "Members", Type: table.TypeArray},
		{Key: "color", Label: "Color", Type: table.TypeColor},
		{Key: "max_leads_per_day", Label: "Daily cap", Type: table.TypeNumber, Sortable: true},
		{Key: "is_active", Label: "Active", Type: table.TypeBoolean, Sortable: true, Filterable: true},
	},
}
