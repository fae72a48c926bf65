package entities

import (
	"github.com/lib/pq"

	"admissions/internal/crud"
	"admissions/internal/table"
)

type Program struct {
	crud.Meta
	Name           string   `json:"name"`
	Code           string   `json:"code"`
	Description    *string  `json:"description"`
	Level          string   `json:"level"`
	DurationMonths *int     `json:"duration_months"`
	TuitionFee     *float64 `json:"tuition_fee"`
	Tags           []string `json:"tags"`
	IsActive       bool     `json:"is_active"`
}

var ProgramSchema = crud.Schema[Program]{
	Name:    "program",
	Path:    "programs",
	Title:   "Program",
	Table:   "programs",
	Columns: []string{"name", "code", "description", "level", "duration_months", "tuition_fee", "tags", "is_active"},
	Values: func(p *Program) []any {
		return []any{p.Name, p.Code, p.Description, p.Level, p.DurationMonths, p.TuitionFee, array(p.Tags), p.IsActive}
	},
	Targets: func(p *Program) []any {
		return []any{&p.Name, &p.Code, &p.Description, &p.Level, &p.DurationMonths, &p.TuitionFee, pq.Array(&p.Tags), &p.IsActive}
	},
	Meta:  func(p *Program) *crud.Meta { return &p.Meta },
	Label: func(p *Program) string { return p.Name },
	Validate: func(p *Program) error {
		return firstError(
			required("name", p.Name),
			required("code", p.Code),
			optionalOneOf("level", p.Level, "undergraduate", "graduate", "certificate", "doctorate"),
			nonNegative("duration_months", p.DurationMonths),
			nonNegative("tuition_fee", p.TuitionFee),
		)
	},
	Defaults: func() Program {
		return Program{Level: "undergraduate", Tags: []string{}, IsActive: true}
	},
	OrderBy: "name ASC",
	View: []table.Column{
		{Key: "name", Label: "Name", Sortable: true},
		{Key: "code", Label: "Code", Sortable: true, Width: "120px"},
		{Key: "level", Label: "Level", Type: table.TypeBadge, Sortable: true, Filterable: true,
			BadgeVariants: map[string]string{"graduate": "secondary", "doctorate": "outline"}},
		{Key: "duration_months", Label: "Duration (months)", Type: table.TypeNumber, Sortable: true},
		{Key: "tuition_fee", Label: "Tuition", Type: table.TypeNumber, Sortable: true},
		{Key: "tags", Label: "Tags", Type: table.TypeArray},
		{Key: "is_active", Label: "Active", Type: table.TypeBoolean, Sortable: true, Filterable: true},
	},
}
