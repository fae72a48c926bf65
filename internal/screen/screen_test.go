package screen

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions/internal/crud"
	"admissions/internal/entities"
	"admissions/internal/notify"
	"admissions/internal/table"
	pkgerrors "admissions/pkg/errors"
)

// countingBackend wraps a service and records calls, optionally failing them.
type countingBackend[T any] struct {
	*crud.Service[T]
	lists, creates, updates, deletes int
	listErr, createErr, deleteErr    error
	lastUserID                       string
	schema                           crud.Schema[T]
}

func newBackend[T any](schema crud.Schema[T], seed ...T) *countingBackend[T] {
	repo := crud.NewMemoryRepository(schema, seed...)
	return &countingBackend[T]{Service: crud.NewService[T](repo, schema), schema: schema}
}

func (b *countingBackend[T]) List(ctx context.Context, p crud.ListParams) ([]T, error) {
	b.lists++
	if b.listErr != nil {
		return nil, b.listErr
	}
	return b.Service.List(ctx, p)
}

func (b *countingBackend[T]) Create(ctx context.Context, item *T) (*T, error) {
	b.creates++
	b.lastUserID = b.schema.Meta(item).UserID
	if b.createErr != nil {
		return nil, b.createErr
	}
	return b.Service.Create(ctx, item)
}

func (b *countingBackend[T]) Update(ctx context.Context, id string, item *T) (*T, error) {
	b.updates++
	b.lastUserID = b.schema.Meta(item).UserID
	return b.Service.Update(ctx, id, item)
}

func (b *countingBackend[T]) Delete(ctx context.Context, id string) error {
	b.deletes++
	if b.deleteErr != nil {
		return b.deleteErr
	}
	return b.Service.Delete(ctx, id)
}

func TestSave_CreatesProgramAndRefetches(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(entities.ProgramSchema)
	rec := &notify.Recorder{}
	s := New(entities.ProgramSchema, backend, StaticIdentity("u1"), rec)
	require.NoError(t, s.Load(ctx))
	assert.Equal(t, PhaseLoaded, s.Phase())
	assert.Empty(t, s.Rows())

	s.Add()
	assert.Equal(t, ModeCreate, s.Mode())
	assert.Equal(t, "undergraduate", s.Form().Level, "defaults seed the form")
	require.NoError(t, s.SetField("name", "Data Science BSc"))
	require.NoError(t, s.SetField("code", "DS-BSC"))

	require.NoError(t, s.Save(ctx))
	assert.Equal(t, 1, backend.creates)
	assert.Equal(t, "u1", backend.lastUserID)
	assert.Equal(t, 2, backend.lists, "initial load and refetch")
	assert.Equal(t, ModeClosed, s.Mode())

	rows := s.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "Data Science BSc", rows[0].Name)
	assert.Equal(t, "DS-BSC", rows[0].Code)
	assert.Equal(t, "u1", rows[0].UserID)

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, notify.VariantSuccess, last.Variant)
	assert.Equal(t, "Program created", last.Title)
	assert.Contains(t, last.Description, "Data Science BSc")
}

func TestSave_ValidationFailsWithoutBackendCall(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(entities.CallTypeSchema)
	rec := &notify.Recorder{}
	s := New(entities.CallTypeSchema, backend, StaticIdentity("u1"), rec)
	require.NoError(t, s.Load(ctx))

	s.Add()
	err := s.Save(ctx)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Zero(t, backend.creates)
	assert.Equal(t, 1, backend.lists)
	assert.Equal(t, ModeCreate, s.Mode(), "form stays open")

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, notify.VariantDestructive, last.Variant)
	assert.Contains(t, last.Description, "required")
}

func TestSave_RequiresIdentity(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(entities.ProgramSchema)
	rec := &notify.Recorder{}
	s := New(entities.ProgramSchema, backend, StaticIdentity(""), rec)
	require.NoError(t, s.Load(ctx))

	s.Add()
	require.NoError(t, s.SetField("name", "Nursing"))
	require.NoError(t, s.SetField("code", "NUR"))

	err := s.Save(ctx)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsUnauthorized(err))
	assert.Zero(t, backend.creates)

	last, _ := rec.Last()
	assert.Equal(t, notify.VariantDestructive, last.Variant)
	assert.Contains(t, last.Description, "not authenticated")
	assert.Equal(t, "Nursing", s.Form().Name)
}

func TestSave_BackendFailureKeepsForm(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(entities.ProgramSchema)
	backend.createErr = pkgerrors.ErrConflict.WithMessage("code already exists")
	rec := &notify.Recorder{}
	s := New(entities.ProgramSchema, backend, StaticIdentity("u1"), rec)
	require.NoError(t, s.Load(ctx))

	s.Add()
	require.NoError(t, s.SetField("name", "Law LLB"))
	require.NoError(t, s.SetField("code", "LLB"))
	require.Error(t, s.Save(ctx))

	assert.Equal(t, ModeCreate, s.Mode())
	assert.Equal(t, "LLB", s.Form().Code)
	assert.Equal(t, 1, backend.lists, "no refetch after a failure")

	last, _ := rec.Last()
	assert.Equal(t, "Failed to create program", last.Title)
	assert.Equal(t, "code already exists", last.Description)
}

func TestEdit_NoOpSaveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(entities.ProgramSchema,
		entities.Program{Name: "History BA", Code: "HIS-BA", Level: "undergraduate", Tags: []string{"arts"}, IsActive: true},
	)
	s := New(entities.ProgramSchema, backend, StaticIdentity("u1"), &notify.Recorder{})
	require.NoError(t, s.Load(ctx))
	before := s.Rows()
	require.Len(t, before, 1)

	require.NoError(t, s.Edit(before[0].ID))
	assert.Equal(t, ModeEdit, s.Mode())
	require.NoError(t, s.Save(ctx))
	assert.Equal(t, 1, backend.updates)

	after := s.Rows()
	require.Len(t, after, 1)
	assert.Equal(t, before[0].ID, after[0].ID)
	assert.Equal(t, before[0].Name, after[0].Name)
	assert.Equal(t, before[0].Code, after[0].Code)
	assert.Equal(t, before[0].Tags, after[0].Tags)
	assert.Equal(t, before[0].CreatedAt, after[0].CreatedAt)
}

func TestEdit_FormDoesNotAliasRow(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(entities.ProgramSchema,
		entities.Program{Name: "History BA", Code: "HIS-BA", Tags: []string{"arts"}},
	)
	s := New(entities.ProgramSchema, backend, StaticIdentity("u1"), &notify.Recorder{})
	require.NoError(t, s.Load(ctx))
	id := s.Rows()[0].ID

	require.NoError(t, s.Edit(id))
	require.NoError(t, s.UpdateForm(func(p *entities.Program) { p.Tags[0] = "science" }))
	assert.Equal(t, []string{"arts"}, s.Rows()[0].Tags)

	s.Close()
	assert.Equal(t, ModeClosed, s.Mode())
	assert.ErrorIs(t, s.SetField("name", "x"), ErrModalClosed)
}

func TestDuplicate_OpensCreateForm(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(entities.ProgramSchema, entities.Program{Name: "History BA", Code: "HIS-BA"})
	s := New(entities.ProgramSchema, backend, StaticIdentity("u1"), &notify.Recorder{})
	require.NoError(t, s.Load(ctx))
	id := s.Rows()[0].ID

	require.NoError(t, s.Table().Invoke(table.ActionDuplicate, id))
	assert.Equal(t, ModeCreate, s.Mode())
	assert.Empty(t, s.Form().ID)
	assert.Equal(t, "History BA", s.Form().Name)

	require.NoError(t, s.SetField("code", "HIS-BA-2"))
	require.NoError(t, s.Save(ctx))
	assert.Len(t, s.Rows(), 2)
}

func TestDelete_Confirmed(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(entities.CallTypeSchema,
		entities.CallType{Name: "Intro", Color: "#10b981"},
		entities.CallType{Name: "Follow-up", Color: "#10b981"},
	)
	rec := &notify.Recorder{}
	s := New(entities.CallTypeSchema, backend, StaticIdentity("u1"), rec)
	require.NoError(t, s.Load(ctx))
	target := s.Rows()[0]

	require.NoError(t, s.Table().Invoke(table.ActionDelete, target.ID))
	pending, ok := s.PendingDelete()
	require.True(t, ok)
	assert.Equal(t, target.ID, pending.ID)
	assert.Zero(t, backend.deletes, "nothing is deleted before confirmation")

	require.NoError(t, s.ConfirmDelete(ctx))
	assert.Equal(t, 1, backend.deletes)
	for _, row := range s.Rows() {
		assert.NotEqual(t, target.ID, row.ID)
	}
	assert.Len(t, s.Rows(), 1)
	last, _ := rec.Last()
	assert.Equal(t, "Call type deleted", last.Title)
}

func TestDelete_FailureKeepsRows(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(entities.CallTypeSchema, entities.CallType{Name: "Intro", Color: "#10b981"})
	backend.deleteErr = pkgerrors.ErrInternal.WithMessage("database unavailable")
	rec := &notify.Recorder{}
	s := New(entities.CallTypeSchema, backend, StaticIdentity("u1"), rec)
	require.NoError(t, s.Load(ctx))
	id := s.Rows()[0].ID

	require.NoError(t, s.RequestDelete(id))
	require.Error(t, s.ConfirmDelete(ctx))

	_, pending := s.PendingDelete()
	assert.False(t, pending, "confirmation closes")
	assert.Len(t, s.Rows(), 1)
	assert.Equal(t, 1, backend.lists)
	last, _ := rec.Last()
	assert.Equal(t, notify.VariantDestructive, last.Variant)
	assert.Equal(t, "database unavailable", last.Description)

	assert.ErrorIs(t, s.ConfirmDelete(ctx), ErrNoPending)
}

func TestDelete_Cancelled(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(entities.CallTypeSchema, entities.CallType{Name: "Intro", Color: "#10b981"})
	s := New(entities.CallTypeSchema, backend, StaticIdentity("u1"), &notify.Recorder{})
	require.NoError(t, s.Load(ctx))

	require.NoError(t, s.RequestDelete(s.Rows()[0].ID))
	s.CancelDelete()
	_, pending := s.PendingDelete()
	assert.False(t, pending)
	assert.Zero(t, backend.deletes)
}

func TestLoad_FailureShowsEmptyList(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(entities.ProgramSchema, entities.Program{Name: "History BA", Code: "HIS-BA"})
	rec := &notify.Recorder{}
	s := New(entities.ProgramSchema, backend, StaticIdentity("u1"), rec)
	require.NoError(t, s.Load(ctx))
	require.Len(t, s.Rows(), 1)

	backend.listErr = stderrors.New("connection refused")
	require.Error(t, s.Load(ctx))
	assert.Empty(t, s.Rows())
	assert.Equal(t, PhaseLoaded, s.Phase())
	assert.True(t, s.View().Empty)

	last, _ := rec.Last()
	assert.Equal(t, "Failed to load programs", last.Title)
	assert.Equal(t, "connection refused", last.Description)
}

func TestView_RendersArrayOverflow(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(entities.CampusSchema, entities.Campus{
		Name:       "North",
		Color:      "#3b82f6",
		Facilities: []string{"Library", "Lab", "Gym", "Cafe"},
	})
	s := New(entities.CampusSchema, backend, StaticIdentity("u1"), &notify.Recorder{})
	require.NoError(t, s.Load(ctx))

	view := s.View()
	require.Len(t, view.Rows, 1)
	var chips table.Cell
	for i, col := range view.Columns {
		if col.Key == "facilities" {
			chips = view.Rows[0].Cells[i]
		}
	}
	assert.Equal(t, table.CellChips, chips.Kind)
	assert.Equal(t, []string{"Library", "Lab", "Gym"}, chips.Chips)
	assert.Equal(t, "+1", chips.OverflowLabel())
}

func TestTable_SearchAndSortOverLoadedRows(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(entities.ProgramSchema,
		entities.Program{Name: "Beta Physics", Code: "PHY"},
		entities.Program{Name: "Alpha Data", Code: "DAT"},
		entities.Program{Name: "Gamma Data", Code: "GDA"},
	)
	s := New(entities.ProgramSchema, backend, StaticIdentity("u1"), &notify.Recorder{})
	require.NoError(t, s.Load(ctx))

	s.Table().Search("DATA")
	require.NoError(t, s.Table().ToggleSort("name"))
	rows := s.Table().Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "Alpha Data", rows[0]["name"])
	assert.Equal(t, "Gamma Data", rows[1]["name"])

	require.NoError(t, s.Table().ToggleSort("name"))
	rows = s.Table().Rows()
	assert.Equal(t, "Gamma Data", rows[0]["name"])
}

func TestSetField_UnknownKey(t *testing.T) {
	s := New(entities.ProgramSchema, newBackend(entities.ProgramSchema), StaticIdentity("u1"), &notify.Recorder{})
	s.Add()
	assert.ErrorIs(t, s.SetField("nope", "x"), ErrUnknownField)
	assert.True(t, pkgerrors.IsValidation(s.SetField("duration_months", "twelve")))
}
