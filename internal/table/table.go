package table

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownAction  = errors.New("unknown action")
	ErrNotSortable    = errors.New("column is not sortable")
	ErrNotFilterable  = errors.New("column is not filterable")
	ErrRowNotRendered = errors.New("row is not in the rendered set")
)

const (
	ActionEdit      = "edit"
	ActionDelete    = "delete"
	ActionDuplicate = "duplicate"
)

// Action is a per-row button.
type Action struct {
	ID      string
	Label   string
	Variant string
	Handler func(Record)
}

type Options struct {
	SearchPlaceholder string
	EmptyMessage      string
	HideSearch        bool
	HideAdd           bool
}

// Props are the inputs of a Table. Callbacks are optional; a nil callback
// removes the matching default action.
type Props struct {
	Data        []Record
	Columns     []Column
	Actions     []Action
	OnAdd       func()
	OnEdit      func(Record)
	OnDelete    func(Record)
	OnDuplicate func(Record)
	Loading     bool
	Options     Options
}

// Table holds the interactive state (query, sort, column filters) over
// caller-owned data.
type Table struct {
	props     Props
	query     string
	sort      SortState
	filters   map[string]string
	formatter *Formatter
}

func New(props Props, f *Formatter) *Table {
	if f == nil {
		f = ParseLocale("")
	}
	return &Table{props: props, formatter: f, filters: map[string]string{}}
}

func (t *Table) SetData(data []Record) {
	t.props.Data = data
}

func (t *Table) SetLoading(loading bool) {
	t.props.Loading = loading
}

func (t *Table) Columns() []Column {
	return t.props.Columns
}

func (t *Table) Search(query string) {
	t.query = query
}

func (t *Table) Query() string {
	return t.query
}

// ToggleSort handles a header click.
func (t *Table) ToggleSort(key string) error {
	col, ok := FindColumn(t.props.Columns, key)
	if !ok || !col.Sortable {
		return fmt.Errorf("%w: %s", ErrNotSortable, key)
	}
	t.sort = t.sort.Toggle(key)
	return nil
}

// SetSort applies a sort directly; used when restoring state from a request.
func (t *Table) SetSort(state SortState) error {
	if state.Key == "" {
		t.sort = SortState{}
		return nil
	}
	col, ok := FindColumn(t.props.Columns, state.Key)
	if !ok || !col.Sortable {
		return fmt.Errorf("%w: %s", ErrNotSortable, state.Key)
	}
	if state.Direction != Descending {
		state.Direction = Ascending
	}
	t.sort = state
	return nil
}

func (t *Table) SortState() SortState {
	return t.sort
}

// Filter narrows a filterable column to value; an empty value clears it.
func (t *Table) Filter(key, value string) error {
	col, ok := FindColumn(t.props.Columns, key)
	if !ok || !col.Filterable {
		return fmt.Errorf("%w: %s", ErrNotFilterable, key)
	}
	if value == "" {
		delete(t.filters, key)
		return nil
	}
	t.filters[key] = value
	return nil
}

// Rows is the rendered subset: filtered, searched, then sorted.
func (t *Table) Rows() []Record {
	rows := t.props.Data
	for key, value := range t.filters {
		col, _ := FindColumn(t.props.Columns, key)
		rows = FilterColumn(rows, col, value)
	}
	rows = Search(rows, t.props.Columns, t.query)
	return Sort(rows, t.sort)
}

// Actions lists custom actions followed by the defaults that have callbacks.
func (t *Table) Actions() []Action {
	actions := append([]Action(nil), t.props.Actions...)
	if t.props.OnEdit != nil {
		actions = append(actions, Action{ID: ActionEdit, Label: "Edit", Handler: t.props.OnEdit})
	}
	if t.props.OnDuplicate != nil {
		actions = append(actions, Action{ID: ActionDuplicate, Label: "Duplicate", Handler: t.props.OnDuplicate})
	}
	if t.props.OnDelete != nil {
		actions = append(actions, Action{ID: ActionDelete, Label: "Delete", Variant: "destructive", Handler: t.props.OnDelete})
	}
	return actions
}

// Invoke runs an action for the row with the given id in the rendered set.
func (t *Table) Invoke(actionID, rowID string) error {
	var target Record
	for _, rec := range t.Rows() {
		if rec.ID() == rowID {
			target = rec
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: %s", ErrRowNotRendered, rowID)
	}

	for _, a := range t.Actions() {
		if a.ID == actionID {
			if a.Handler != nil {
				a.Handler(target)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownAction, actionID)
}

// Add invokes the add callback when one is configured.
func (t *Table) Add() bool {
	if t.props.OnAdd == nil || t.props.Options.HideAdd {
		return false
	}
	t.props.OnAdd()
	return true
}

type ActionView struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Variant string `json:"variant,omitempty"`
}

type RowView struct {
	Key    string `json:"key"`
	Cells  []Cell `json:"cells"`
	Record Record `json:"-"`
}

// View is the full rendered table.
type View struct {
	Columns           []Column     `json:"columns"`
	Rows              []RowView    `json:"rows"`
	Actions           []ActionView `json:"actions,omitempty"`
	ShowActions       bool         `json:"show_actions"`
	ShowSearch        bool         `json:"show_search"`
	ShowAdd           bool         `json:"show_add"`
	SearchPlaceholder string       `json:"search_placeholder,omitempty"`
	Query             string       `json:"query,omitempty"`
	Sort              SortState    `json:"sort"`
	Loading           bool         `json:"loading"`
	Empty             bool         `json:"empty"`
	EmptyMessage      string       `json:"empty_message,omitempty"`
	Total             int          `json:"total"`
}

func (t *Table) Render() View {
	actions := t.Actions()
	view := View{
		Columns:           t.props.Columns,
		ShowActions:       len(actions) > 0,
		ShowSearch:        !t.props.Options.HideSearch,
		ShowAdd:           !t.props.Options.HideAdd && t.props.OnAdd != nil,
		SearchPlaceholder: t.props.Options.SearchPlaceholder,
		Query:             t.query,
		Sort:              t.sort,
		Loading:           t.props.Loading,
		Total:             len(t.props.Data),
	}
	if view.SearchPlaceholder == "" {
		view.SearchPlaceholder = "Search..."
	}
	for _, a := range actions {
		view.Actions = append(view.Actions, ActionView{ID: a.ID, Label: a.Label, Variant: a.Variant})
	}

	if t.props.Loading {
		return view
	}

	rows := t.Rows()
	view.Rows = make([]RowView, 0, len(rows))
	for _, rec := range rows {
		cells := make([]Cell, len(t.props.Columns))
		for i, col := range t.props.Columns {
			cells[i] = RenderCell(col, rec, t.formatter)
		}
		view.Rows = append(view.Rows, RowView{Key: rec.ID(), Cells: cells, Record: rec})
	}

	if len(view.Rows) == 0 {
		view.Empty = true
		view.EmptyMessage = t.props.Options.EmptyMessage
		if view.EmptyMessage == "" {
			view.EmptyMessage = "No records found"
		}
	}
	return view
}
