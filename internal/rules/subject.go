package rules

import (
	"strconv"
	"strings"

	"admissions/internal/table"
	"admissions/pkg/cel"
)

// Subject is what a condition set is evaluated against.
type Subject interface {
	Lookup(field string) (string, bool)
	Vars() cel.Vars
}

// Lead is an inbound prospect as seen by the router.
type Lead struct {
	Source     string            `json:"source"`
	Program    string            `json:"program"`
	Campus     string            `json:"campus"`
	Priority   int               `json:"priority"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Lookup resolves built-in fields first, then attributes. "attributes.x"
// addresses an attribute explicitly.
func (l Lead) Lookup(field string) (string, bool) {
	switch field {
	case "source":
		return l.Source, l.Source != ""
	case "program":
		return l.Program, l.Program != ""
	case "campus":
		return l.Campus, l.Campus != ""
	case "priority":
		return strconv.Itoa(l.Priority), true
	}
	v, ok := l.Attributes[strings.TrimPrefix(field, "attributes.")]
	return v, ok
}

func (l Lead) Vars() cel.Vars {
	attrs := make(map[string]interface{}, len(l.Attributes))
	for k, v := range l.Attributes {
		attrs[k] = v
	}
	return cel.Vars{Lead: map[string]interface{}{
		"source":     l.Source,
		"program":    l.Program,
		"campus":     l.Campus,
		"priority":   l.Priority,
		"attributes": attrs,
	}}
}

// EventSubject exposes a change event's flat fields (entity, action, id, ...).
type EventSubject map[string]interface{}

func (e EventSubject) Lookup(field string) (string, bool) {
	v, ok := e[field]
	if !ok || v == nil {
		return "", false
	}
	return table.Stringify(v), true
}

func (e EventSubject) Vars() cel.Vars {
	return cel.Vars{Event: e}
}
