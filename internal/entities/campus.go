package entities

import (
	"github.com/lib/pq"

	"admissions/internal/crud"
	"admissions/internal/table"
)

type Campus struct {
	crud.Meta
	Name       string   `json:"name"`
	Code       *string  `json:"code"`
	Address    *string  `json:"address"`
	City       *string  `json:"city"`
	Country    *string  `json:"country"`
	Phone      *string  `json:"phone"`
	Email      *string  `json:"email"`
	Capacity   *int     `json:"capacity"`
	Facilities []string `json:"facilities"`
	Color      string   `json:"color"`
	IsActive   bool     `json:"is_active"`
}

var CampusSchema = crud.Schema[Campus]{
	Name:    "campus",
	Path:    "campuses",
	Title:   "Campus",
	Table:   "campuses",
	Columns: []string{"name", "code", "address", "city", "country", "phone", "email", "capacity", "facilities", "color", "is_active"},
	Values: func(c *Campus) []any {
		return []any{c.Name, c.Code, c.Address, c.City, c.Country, c.Phone, c.Email, c.Capacity, array(c.Facilities), c.Color, c.IsActive}
	},
	Targets: func(c *Campus) []any {
		return []any{&c.Name, &c.Code, &c.Address, &c.City, &c.Country, &c.Phone, &c.Email, &c.Capacity, pq.Array(&c.Facilities), &c.Color, &c.IsActive}
	},
	Meta:  func(c *Campus) *crud.Meta { return &c.Meta },
	Label: func(c *Campus) string { return c.Name },
	Validate: func(c *Campus) error {
		return firstError(
			required("name", c.Name),
			validEmail("email", c.Email),
			nonNegative("capacity", c.Capacity),
			validColor("color", c.Color),
		)
	},
	Defaults: func() Campus {
		return Campus{Facilities: []string{}, Color: "#3b82f6", IsActive: true}
	},
	OrderBy: "name ASC",
	View: []table.Column{
		{Key: "name", Label: "Name", Sortable: true},
		{Key: "city", Label: "City", Sortable: true, Filterable: true},
		{Key: "country", Label: "Country", Sortable: true, Filterable: true},
		{Key: "capacity", Label: "Capacity", Type: table.TypeNumber, Sortable: true},
		{Key: "facilities", Label: "Facilities", Type: table.TypeArray, Filterable: true},
		{Key: "color", Label: "Color", Type: table.TypeColor},
		{Key: "is_active", Label: "Active", Type: table.TypeBoolean, Sortable: true, Filterable: true},
	},
}
