package table

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func campusColumns() []Column {
	return []Column{
		{Key: "name", Label: "Name", Type: TypeText, Sortable: true},
		{Key: "capacity", Label: "Capacity", Type: TypeNumber, Sortable: true},
		{Key: "city", Label: "City", Type: TypeText, Sortable: true, Filterable: true},
		{Key: "facilities", Label: "Facilities", Type: TypeArray},
		{Key: "is_active", Label: "Active", Type: TypeBoolean},
	}
}

func campusData() []Record {
	return []Record{
		{"id": "1", "name": "North", "capacity": 1200.0, "city": "Leeds", "facilities": []any{"Gym", "Library"}, "is_active": true},
		{"id": "2", "name": "East", "capacity": nil, "city": "York", "facilities": []any{}, "is_active": false},
		{"id": "3", "name": "South", "capacity": 300.0, "city": "Leeds", "facilities": []any{"Lab"}, "is_active": true},
		{"id": "4", "name": "West", "capacity": 4500.5, "city": nil, "facilities": nil, "is_active": true},
	}
}

func ids(rows []Record) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID()
	}
	return out
}

func TestSearch(t *testing.T) {
	data := campusData()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "empty query keeps everything", query: "", want: []string{"1", "2", "3", "4"}},
		{name: "case insensitive", query: "LEEDS", want: []string{"1", "3"}},
		{name: "matches numbers by string form", query: "1200", want: []string{"1"}},
		{name: "matches array items", query: "libr", want: []string{"1"}},
		{name: "no match", query: "zzz", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Search(data, campusColumns(), tt.query)))
		})
	}
}

func TestSearch_DoesNotMutateInput(t *testing.T) {
	data := campusData()
	_ = Search(data, campusColumns(), "leeds")
	assert.Len(t, data, 4)
	assert.Equal(t, "North", data[0]["name"])
}

func TestSearch_NarrowingQueriesNarrowResults(t *testing.T) {
	data := campusData()
	queries := []string{"", "e", "ee", "eed", "leeds"}

	prev := Search(data, campusColumns(), queries[0])
	for _, q := range queries[1:] {
		next := Search(data, campusColumns(), q)
		prevIDs := map[string]bool{}
		for _, r := range prev {
			prevIDs[r.ID()] = true
		}
		for _, r := range next {
			assert.True(t, prevIDs[r.ID()], "query %q returned %s outside the broader result", q, r.ID())
		}
		prev = next
	}
}

func TestSort_NullsLastInBothDirections(t *testing.T) {
	data := campusData()

	asc := Sort(data, SortState{Key: "capacity", Direction: Ascending})
	assert.Equal(t, []string{"3", "1", "4", "2"}, ids(asc))

	desc := Sort(data, SortState{Key: "capacity", Direction: Descending})
	assert.Equal(t, []string{"4", "1", "3", "2"}, ids(desc))
}

func TestSort_DescendingIsReversedAscending(t *testing.T) {
	data := campusData()
	for _, key := range []string{"name", "capacity"} {
		asc := Sort(data, SortState{Key: key, Direction: Ascending})
		desc := Sort(data, SortState{Key: key, Direction: Descending})

		var ascNonNull, descNonNull []string
		for _, r := range asc {
			if r[key] != nil {
				ascNonNull = append(ascNonNull, r.ID())
			}
		}
		for _, r := range desc {
			if r[key] != nil {
				descNonNull = append(descNonNull, r.ID())
			}
		}
		for i, j := 0, len(ascNonNull)-1; i < j; i, j = i+1, j-1 {
			ascNonNull[i], ascNonNull[j] = ascNonNull[j], ascNonNull[i]
		}
		assert.Equal(t, ascNonNull, descNonNull, "key %s", key)

		for _, rows := range [][]Record{asc, desc} {
			seenNull := false
			for _, r := range rows {
				if r[key] == nil {
					seenNull = true
				} else {
					assert.False(t, seenNull, "non-null after null for key %s", key)
				}
			}
		}
	}
}

func TestSortState_Toggle(t *testing.T) {
	var s SortState
	s = s.Toggle("name")
	assert.Equal(t, SortState{Key: "name", Direction: Ascending}, s)
	s = s.Toggle("name")
	assert.Equal(t, SortState{Key: "name", Direction: Descending}, s)
	s = s.Toggle("name")
	assert.Equal(t, SortState{Key: "name", Direction: Ascending}, s)
	s = s.Toggle("capacity")
	assert.Equal(t, SortState{Key: "capacity", Direction: Ascending}, s)
}

func TestCompare_MixedTypesFallBackToStrings(t *testing.T) {
	assert.Equal(t, -1, Compare(2.0, 10.0))
	assert.Equal(t, 1, Compare("b", "a"))
	assert.Equal(t, -1, Compare(false, true))
	assert.Equal(t, -1, Compare(10.0, "9"))
}

func TestRenderCell_ArrayOverflow(t *testing.T) {
	col := Column{Key: "facilities", Type: TypeArray}
	rec := Record{"facilities": []any{"Gym", "Library", "Lab", "Pool"}}

	cell := RenderCell(col, rec, ParseLocale("en-US"))

	assert.Equal(t, CellChips, cell.Kind)
	assert.Equal(t, []string{"Gym", "Library", "Lab"}, cell.Chips)
	assert.Equal(t, "+1", cell.OverflowLabel())
	assert.Equal(t, "[Gym] [Library] [Lab] [+1]", cell.String())
}

func TestRenderCell_ShortArrayHasNoOverflow(t *testing.T) {
	cell := RenderCell(Column{Key: "tags", Type: TypeArray}, Record{"tags": []any{"a", "b"}}, nil)
	assert.Equal(t, []string{"a", "b"}, cell.Chips)
	assert.Empty(t, cell.OverflowLabel())
}

func TestRenderCell_Types(t *testing.T) {
	f := ParseLocale("en-US")

	tests := []struct {
		name string
		col  Column
		rec  Record
		want Cell
	}{
		{
			name: "null renders placeholder",
			col:  Column{Key: "city", Type: TypeText},
			rec:  Record{"city": nil},
			want: Cell{Kind: CellPlaceholder, Text: "-"},
		},
		{
			name: "unknown key renders placeholder",
			col:  Column{Key: "does_not_exist", Type: TypeText},
			rec:  Record{"city": "Leeds"},
			want: Cell{Kind: CellPlaceholder, Text: "-"},
		},
		{
			name: "boolean renders toggle",
			col:  Column{Key: "is_active", Type: TypeBoolean},
			rec:  Record{"is_active": true},
			want: Cell{Kind: CellToggle, Checked: true},
		},
		{
			name: "number is grouped",
			col:  Column{Key: "fee", Type: TypeNumber},
			rec:  Record{"fee": 1234567.5},
			want: Cell{Kind: CellNumber, Text: "1,234,567.5"},
		},
		{
			name: "date uses locale layout",
			col:  Column{Key: "created_at", Type: TypeDate},
			rec:  Record{"created_at": "2024-03-09T10:00:00Z"},
			want: Cell{Kind: CellDate, Text: "3/9/2024"},
		},
		{
			name: "unparseable date falls back to text",
			col:  Column{Key: "created_at", Type: TypeDate},
			rec:  Record{"created_at": "soon"},
			want: Cell{Kind: CellText, Text: "soon"},
		},
		{
			name: "color renders swatch and hex",
			col:  Column{Key: "color", Type: TypeColor},
			rec:  Record{"color": "#ff0000"},
			want: Cell{Kind: CellSwatch, Text: "#ff0000", Color: "#ff0000"},
		},
		{
			name: "badge picks variant",
			col:  Column{Key: "stage", Type: TypeBadge, BadgeVariants: map[string]string{"lost": "destructive"}},
			rec:  Record{"stage": "Lost"},
			want: Cell{Kind: CellBadge, Text: "Lost", Variant: "destructive"},
		},
		{
			name: "default coerces to string",
			col:  Column{Key: "code"},
			rec:  Record{"code": 42.0},
			want: Cell{Kind: CellText, Text: "42"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderCell(tt.col, tt.rec, f))
		})
	}
}

func TestFormatter_Locales(t *testing.T) {
	assert.Equal(t, "09.03.2024", ParseLocale("de-DE").Date(mustDate(t, "2024-03-09")))
	assert.Equal(t, "09/03/2024", ParseLocale("en-GB").Date(mustDate(t, "2024-03-09")))
	assert.Equal(t, "3/9/2024", ParseLocale("not a locale").Date(mustDate(t, "2024-03-09")))
}

func mustDate(t *testing.T, v string) time.Time {
	t.Helper()
	d, ok := parseDate(v)
	require.True(t, ok)
	return d
}

func TestTable_ActionsColumnOnlyWithActions(t *testing.T) {
	bare := New(Props{Data: campusData(), Columns: campusColumns()}, nil)
	assert.False(t, bare.Render().ShowActions)

	var edited []string
	withEdit := New(Props{
		Data:    campusData(),
		Columns: campusColumns(),
		OnEdit:  func(r Record) { edited = append(edited, r.ID()) },
	}, nil)
	view := withEdit.Render()
	require.True(t, view.ShowActions)
	require.Len(t, view.Actions, 1)
	assert.Equal(t, ActionEdit, view.Actions[0].ID)

	require.NoError(t, withEdit.Invoke(ActionEdit, "3"))
	assert.Equal(t, []string{"3"}, edited)
	assert.ErrorIs(t, withEdit.Invoke(ActionDelete, "3"), ErrUnknownAction)
}

func TestTable_CustomActions(t *testing.T) {
	var archived string
	tbl := New(Props{
		Data:    campusData(),
		Columns: campusColumns(),
		Actions: []Action{{ID: "archive", Label: "Archive", Handler: func(r Record) { archived = r.ID() }}},
	}, nil)

	require.NoError(t, tbl.Invoke("archive", "2"))
	assert.Equal(t, "2", archived)
}

func TestTable_InvokeOnlyOnRenderedRows(t *testing.T) {
	tbl := New(Props{Data: campusData(), Columns: campusColumns(), OnDelete: func(Record) {}}, nil)
	tbl.Search("north")
	assert.ErrorIs(t, tbl.Invoke(ActionDelete, "2"), ErrRowNotRendered)
}

func TestTable_RenderSearchSortAndEmpty(t *testing.T) {
	tbl := New(Props{Data: campusData(), Columns: campusColumns(), Options: Options{EmptyMessage: "No campuses yet"}}, ParseLocale("en-US"))

	require.NoError(t, tbl.ToggleSort("name"))
	view := tbl.Render()
	require.Len(t, view.Rows, 4)
	assert.Equal(t, "2", view.Rows[0].Key)
	assert.Equal(t, "East", view.Rows[0].Cells[0].Text)
	assert.Equal(t, "-", view.Rows[0].Cells[1].Text)

	tbl.Search("nothing matches")
	view = tbl.Render()
	assert.True(t, view.Empty)
	assert.Equal(t, "No campuses yet", view.EmptyMessage)
	assert.Equal(t, 4, view.Total)
}

func TestTable_SortRejectsUnsortableColumn(t *testing.T) {
	tbl := New(Props{Data: campusData(), Columns: campusColumns()}, nil)
	assert.ErrorIs(t, tbl.ToggleSort("facilities"), ErrNotSortable)
	assert.ErrorIs(t, tbl.ToggleSort("missing"), ErrNotSortable)
}

func TestTable_FilterColumn(t *testing.T) {
	tbl := New(Props{Data: campusData(), Columns: campusColumns()}, nil)
	require.NoError(t, tbl.Filter("city", "leeds"))
	assert.Equal(t, []string{"1", "3"}, ids(tbl.Rows()))
	assert.ErrorIs(t, tbl.Filter("name", "North"), ErrNotFilterable)

	require.NoError(t, tbl.Filter("city", ""))
	assert.Len(t, tbl.Rows(), 4)
}

func TestTable_LoadingRendersNoRows(t *testing.T) {
	tbl := New(Props{Data: campusData(), Columns: campusColumns(), Loading: true}, nil)
	view := tbl.Render()
	assert.True(t, view.Loading)
	assert.Empty(t, view.Rows)
	assert.False(t, view.Empty)
}

func TestRecordOf(t *testing.T) {
	type program struct {
		ID   string   `json:"id"`
		Name string   `json:"name"`
		Fee  *float64 `json:"tuition_fee"`
		Tags []string `json:"tags"`
	}

	rec, err := RecordOf(program{ID: "p1", Name: "Data Science BSc", Tags: []string{"stem"}})
	require.NoError(t, err)
	assert.Equal(t, "p1", rec.ID())
	assert.Nil(t, rec["tuition_fee"])
	assert.True(t, strings.Contains(Stringify(rec["tags"]), "stem"))
}
