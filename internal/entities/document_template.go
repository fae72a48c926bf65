package entities

import (
	"github.com/lib/pq"

	"admissions/internal/crud"
	"admissions/internal/table"
)

type DocumentTemplate struct {
	crud.Meta
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description *string  `json:"description"`
	FileKey     *string  `json:"file_key"`
	RequiredFor []string `json:"required_for"`
	IsActive    bool     `json:"is_active"`
}

var DocumentTemplateSchema = crud.Schema[DocumentTemplate]{
	Name:    "document_template",
	Path:    "document-templates",
	Title:   "Document template",
	Table:   "document_templates",
	Columns: []string{"name", "category", "description", "file_key", "required_for", "is_active"},
	Values: func(d *DocumentTemplate) []any {
		return []any{d.Name, d.Category, d.Description, d.FileKey, array(d.RequiredFor), d.IsActive}
	},
	Targets: func(d *DocumentTemplate) []any {
		return []any{&d.Name, &d.Category, &d.Description, &d.FileKey, pq.Array(&d.RequiredFor), &d.IsActive}
	},
	Meta:  func(d *DocumentTemplate) *crud.Meta { return &d.Meta },
	Label: func(d *DocumentTemplate) string { return d.Name },
	Validate: func(d *DocumentTemplate) error {
		return firstError(
			required("name", d.Name),
			required("category", d.Category),
		)
	},
	Defaults: func() DocumentTemplate {
		return DocumentTemplate{Category: "application", RequiredFor: []string{}, IsActive: true}
	},
	OrderBy: "name ASC",
	View: []table.Column{
		{Key: "name", Label: "Name", Sortable: true},
		{Key: "category", Label: "Category", Type: table.TypeBadge, Sortable: true, Filterable: true},
		{Key: "file_key", Label: "File"},
		{Key: "required_for", Label: "Required for", Type: table.TypeArray},
		{Key: "is_active", Label: "Active", Type: table.TypeBoolean, Sortable: true, Filterable: true},
	},
}
