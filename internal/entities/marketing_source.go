package entities

import (
	"admissions/internal/crud"
	"admissions/internal/table"
)

type MarketingSource struct {
	crud.Meta
	Name        string   `json:"name"`
	Channel     string   `json:"channel"`
	CostPerLead *float64 `json:"cost_per_lead"`
	UTMSource   *string  `json:"utm_source"`
	IsActive    bool     `json:"is_active"`
}

var MarketingSourceSchema = crud.Schema[MarketingSource]{
	Name:    "marketing_source",
	Path:    "marketing-sources",
	Title:   "Marketing source",
	Table:   "marketing_sources",
	Columns: []string{"name", "channel", "cost_per_lead", "utm_source", "is_active"},
	Values: func(m *MarketingSource) []any {
		return []any{m.Name, m.Channel, m.CostPerLead, m.UTMSource, m.IsActive}
	},
	Targets: func(m *MarketingSource) []any {
		return []any{&m.Name, &m.Channel, &m.CostPerLead, &m.UTMSource, &m.IsActive}
	},
	Meta:  func(m *MarketingSource) *crud.Meta { return &m.Meta },
	Label: func(m *MarketingSource) string { return m.Name },
	Validate: func(m *MarketingSource) error {
		return firstError(
			required("name", m.Name),
			optionalOneOf("channel", m.Channel, "paid", "organic", "social", "referral", "event", "email", "other"),
			nonNegative("cost_per_lead", m.CostPerLead),
		)
	},
	Defaults: func() MarketingSource {
		return MarketingSource{Channel: "organic", IsActive: true}
	},
	OrderBy: "name ASC",
	View: []table.Column{
		{Key: "name", Label: "Name", Sortable: true},
		{Key: "channel", Label: "Channel", Type: table.TypeBadge, Sortable: true, Filterable: true},
		{Key: "cost_per_lead", Label: "Cost per lead", Type: table.TypeNumber, Sortable: true},
		{Key: "utm_source", Label: "UTM source", Sortable: true},
		{Key: "is_active", Label: "Active", Type: table.TypeBoolean, Sortable: true, Filterable: true},
	},
}
