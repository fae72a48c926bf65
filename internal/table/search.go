package table

import "strings"

// Search returns the records where any column's string form contains query,
// ignoring case. The input slice is never modified.
func Search(data []Record, columns []Column, query string) []Record {
	out := make([]Record, 0, len(data))
	if query == "" {
		return append(out, data...)
	}

	needle := strings.ToLower(query)
	for _, rec := range data {
		if matches(rec, columns, needle) {
			out = append(out, rec)
		}
	}
	return out
}

func matches(rec Record, columns []Column, needle string) bool {
	for _, col := range columns {
		if strings.Contains(strings.ToLower(Stringify(rec[col.Key])), needle) {
			return true
		}
	}
	return false
}

// FilterColumn keeps records whose value in a filterable column equals value,
// ignoring case. Array columns match when any element equals value.
func FilterColumn(data []Record, col Column, value string) []Record {
	out := make([]Record, 0, len(data))
	for _, rec := range data {
		v := rec[col.Key]
		if items, ok := toStrings(v); ok {
			for _, item := range items {
				if strings.EqualFold(item, value) {
					out = append(out, rec)
					break
				}
			}
			continue
		}
		if strings.EqualFold(Stringify(v), value) {
			out = append(out, rec)
		}
	}
	return out
}
