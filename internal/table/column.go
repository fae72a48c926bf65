// Package table renders uniformly shaped records as a searchable, sortable
// and actionable table. It never performs I/O; callers own the data.
package table

type ColumnType string

const (
	TypeText    ColumnType = "text"
	TypeNumber  ColumnType = "number"
	TypeBoolean ColumnType = "boolean"
	TypeBadge   ColumnType = "badge"
	TypeDate    ColumnType = "date"
	TypeArray   ColumnType = "array"
	TypeColor   ColumnType = "color"
)

// Column describes one rendered column. Key names a property of every Record.
type Column struct {
	Key        string     `json:"key"`
	Label      string     `json:"label"`
	Type       ColumnType `json:"type"`
	Sortable   bool       `json:"sortable,omitempty"`
	Filterable bool       `json:"filterable,omitempty"`
	Width      string     `json:"width,omitempty"`
	// BadgeVariants maps a badge value to a display variant.
	BadgeVariants map[string]string `json:"badge_variants,omitempty"`
}

func (c Column) kind() ColumnType {
	if c.Type == "" {
		return TypeText
	}
	return c.Type
}

// FindColumn returns the column with the given key.
func FindColumn(columns []Column, key string) (Column, bool) {
	for _, c := range columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}
