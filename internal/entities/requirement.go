package entities

import (
	"github.com/lib/pq"

	"admissions/internal/crud"
	"admissions/internal/table"
)

type Requirement struct {
	crud.Meta
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Type        string   `json:"type"`
	ProgramIDs  []string `json:"program_ids"`
	IsMandatory bool     `json:"is_mandatory"`
	DueDays     *int     `json:"due_days"`
}

var RequirementSchema = crud.Schema[Requirement]{
	Name:    "requirement",
	Path:    "requirements",
	Title:   "Requirement",
	Table:   "requirements",
	Columns: []string{"name", "description", "type", "program_ids", "is_mandatory", "due_days"},
	Values: func(r *Requirement) []any {
		return []any{r.Name, r.Description, r.Type, array(r.ProgramIDs), r.IsMandatory, r.DueDays}
	},
	Targets: func(r *Requirement) []any {
		return []any{&r.Name, &r.Description, &r.Type, pq.Array(&r.ProgramIDs), &r.IsMandatory, &r.DueDays}
	},
	Meta:  func(r *Requirement) *crud.Meta { return &r.Meta },
	Label: func(r *Requirement) string { return r.Name },
	Validate: func(r *Requirement) error {
		return firstError(
			required("name", r.Name),
			optionalOneOf("type", r.Type, "document", "test", "interview", "payment", "other"),
			nonNegative("due_days", r.DueDays),
		)
	},
	Defaults: func() Requirement {
		return Requirement{Type: "document", ProgramIDs: []string{}, IsMandatory: true}
	},
	OrderBy: "name ASC",
	View: []table.Column{
		{Key: "name", Label: "Name", Sortable: true},
		{Key: "type", Label: "Type", Type: table.TypeBadge, Sortable: true, Filterable: true},
		{Key: "program_ids", Label: "Programs", Type: table.TypeArray},
		{Key: "is_mandatory", Label: "Mandatory", Type: table.TypeBoolean, Sortable: true, Filterable: true},
		{Key: "due_days", Label: "Due (days)", Type: table.TypeNumber, Sortable: true},
	},
}
