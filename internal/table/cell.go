package table

import (
	"strconv"
	"strings"
)

type CellKind string

const (
	CellPlaceholder CellKind = "placeholder"
	CellText        CellKind = "text"
	CellNumber      CellKind = "number"
	CellToggle      CellKind = "toggle"
	CellBadge       CellKind = "badge"
	CellDate        CellKind = "date"
	CellChips       CellKind = "chips"
	CellSwatch      CellKind = "swatch"
)

// Placeholder is printed for null or missing values.
const Placeholder = "-"

// MaxChips is the number of array items shown before the overflow chip.
const MaxChips = 3

// Cell is the rendered form of one value.
type Cell struct {
	Kind     CellKind `json:"kind"`
	Text     string   `json:"text,omitempty"`
	Checked  bool     `json:"checked,omitempty"`
	Variant  string   `json:"variant,omitempty"`
	Color    string   `json:"color,omitempty"`
	Chips    []string `json:"chips,omitempty"`
	Overflow int      `json:"overflow,omitempty"`
}

// OverflowLabel is the text of the trailing chip, e.g. "+2", or "" when all
// items fit.
func (c Cell) OverflowLabel() string {
	if c.Overflow <= 0 {
		return ""
	}
	return "+" + strconv.Itoa(c.Overflow)
}

// String flattens the cell for plain-text output.
func (c Cell) String() string {
	switch c.Kind {
	case CellToggle:
		if c.Checked {
			return "[x]"
		}
		return "[ ]"
	case CellChips:
		parts := make([]string, 0, len(c.Chips)+1)
		for _, chip := range c.Chips {
			parts = append(parts, "["+chip+"]")
		}
		if label := c.OverflowLabel(); label != "" {
			parts = append(parts, "["+label+"]")
		}
		return strings.Join(parts, " ")
	case CellSwatch:
		return "■ " + c.Text
	}
	return c.Text
}

// RenderCell renders rec's value for col. It never fails: unknown keys and
// nulls render the placeholder.
func RenderCell(col Column, rec Record, f *Formatter) Cell {
	v, ok := rec[col.Key]
	if !ok || isNull(v) {
		return Cell{Kind: CellPlaceholder, Text: Placeholder}
	}

	switch col.kind() {
	case TypeBoolean:
		return Cell{Kind: CellToggle, Checked: truthy(v)}
	case TypeBadge:
		label := Stringify(v)
		return Cell{Kind: CellBadge, Text: label, Variant: badgeVariant(col, label)}
	case TypeDate:
		if t, ok := parseDate(v); ok {
			return Cell{Kind: CellDate, Text: f.Date(t)}
		}
		return Cell{Kind: CellText, Text: Stringify(v)}
	case TypeArray:
		items, ok := toStrings(v)
		if !ok {
			return Cell{Kind: CellText, Text: Stringify(v)}
		}
		cell := Cell{Kind: CellChips}
		if len(items) > MaxChips {
			cell.Chips = append([]string(nil), items[:MaxChips]...)
			cell.Overflow = len(items) - MaxChips
		} else {
			cell.Chips = append([]string(nil), items...)
		}
		return cell
	case TypeColor:
		hex := Stringify(v)
		return Cell{Kind: CellSwatch, Text: hex, Color: hex}
	case TypeNumber:
		if n, ok := toFloat(v); ok {
			return Cell{Kind: CellNumber, Text: f.Number(n)}
		}
		return Cell{Kind: CellText, Text: Stringify(v)}
	}
	return Cell{Kind: CellText, Text: Stringify(v)}
}

func badgeVariant(col Column, label string) string {
	if variant, ok := col.BadgeVariants[label]; ok {
		return variant
	}
	if variant, ok := col.BadgeVariants[strings.ToLower(label)]; ok {
		return variant
	}
	return "default"
}

func truthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val != "" && val != "false"
	}
	if n, ok := toFloat(v); ok {
		return n != 0
	}
	return v != nil
}
