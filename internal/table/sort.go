package table

import (
	"sort"
	"strings"
)

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortState is the active single-column sort. A zero Key means unsorted.
type SortState struct {
	Key       string    `json:"key,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

// Toggle returns the state after a header click on key: a new key sorts
// ascending, the active key flips direction.
func (s SortState) Toggle(key string) SortState {
	if s.Key == key && s.Direction == Ascending {
		return SortState{Key: key, Direction: Descending}
	}
	return SortState{Key: key, Direction: Ascending}
}

// ParseDirection accepts "desc" (any case) as descending and anything else as ascending.
func ParseDirection(v string) Direction {
	if strings.EqualFold(v, string(Descending)) {
		return Descending
	}
	return Ascending
}

// Sort returns a sorted copy. Null values always land at the end, in either
// direction; equal values keep their input order.
func Sort(data []Record, state SortState) []Record {
	out := append([]Record(nil), data...)
	if state.Key == "" {
		return out
	}

	desc := state.Direction == Descending
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i][state.Key], out[j][state.Key]
		aNull, bNull := isNull(a), isNull(b)
		switch {
		case aNull && bNull:
			return false
		case aNull:
			return false
		case bNull:
			return true
		}
		c := Compare(a, b)
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

// Compare orders two non-null values: numbers numerically, strings by byte
// order, false before true. Mixed types compare by their string forms.
func Compare(a, b any) int {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}

	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			}
			return 1
		}
	}

	return strings.Compare(Stringify(a), Stringify(b))
}
