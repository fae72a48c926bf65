// Package crud binds an entity schema to a Postgres table and exposes the
// list/get/create/update/delete lifecycle shared by every configuration entity.
package crud

import (
	"fmt"
	"time"

	"admissions/internal/table"
)

// Meta is embedded by every entity and owned by the engine.
type Meta struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Schema describes how an entity maps onto its table. Columns, Values and
// Targets must list fields in the same order.
type Schema[T any] struct {
	// Name is the singular identifier used in events and metrics, e.g. "program".
	Name string
	// Path is the URL segment, e.g. "programs".
	Path string
	// Title is the human label used in notifications, e.g. "Program".
	Title string
	Table string

	Columns []string
	Values  func(*T) []any
	Targets func(*T) []any
	Meta    func(*T) *Meta

	Validate func(*T) error
	Defaults func() T
	// Label names a record in notifications, usually its name field.
	Label func(*T) string

	View    []table.Column
	OrderBy string
}

func (s Schema[T]) check() error {
	switch {
	case s.Name == "", s.Table == "":
		return fmt.Errorf("schema requires name and table")
	case s.Values == nil, s.Targets == nil, s.Meta == nil:
		return fmt.Errorf("schema %s: values, targets and meta accessors are required", s.Name)
	}
	var zero T
	if n := len(s.Values(&zero)); n != len(s.Columns) {
		return fmt.Errorf("schema %s: %d values for %d columns", s.Name, n, len(s.Columns))
	}
	if n := len(s.Targets(&zero)); n != len(s.Columns) {
		return fmt.Errorf("schema %s: %d scan targets for %d columns", s.Name, n, len(s.Columns))
	}
	return nil
}

// MustCheck panics when the schema accessors disagree with its column list.
func (s Schema[T]) MustCheck() Schema[T] {
	if err := s.check(); err != nil {
		panic(err)
	}
	return s
}

func (s Schema[T]) orderBy() string {
	if s.OrderBy != "" {
		return s.OrderBy
	}
	return "created_at DESC"
}

func (s Schema[T]) allColumns() []string {
	cols := make([]string, 0, len(s.Columns)+4)
	cols = append(cols, "id", "user_id")
	cols = append(cols, s.Columns...)
	return append(cols, "created_at", "updated_at")
}

func (s Schema[T]) scanTargets(item *T) []any {
	m := s.Meta(item)
	targets := make([]any, 0, len(s.Columns)+4)
	targets = append(targets, &m.ID, &m.UserID)
	targets = append(targets, s.Targets(item)...)
	return append(targets, &m.CreatedAt, &m.UpdatedAt)
}

// New returns the form defaults for a create.
func (s Schema[T]) New() T {
	if s.Defaults != nil {
		return s.Defaults()
	}
	var zero T
	return zero
}

// Check runs the entity validation, if any.
func (s Schema[T]) Check(item *T) error {
	if s.Validate == nil {
		return nil
	}
	return s.Validate(item)
}

// LabelOf returns the display label of item, falling back to its id.
func (s Schema[T]) LabelOf(item *T) string {
	if s.Label != nil {
		if l := s.Label(item); l != "" {
			return l
		}
	}
	return s.Meta(item).ID
}
