// Package screen drives one configuration entity through its
// fetch/edit/save/delete lifecycle on top of the generic table. A Screen is
// headless: callers render its table view and form, and forward user actions.
package screen

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"admissions/internal/crud"
	"admissions/internal/logger"
	"admissions/internal/notify"
	"admissions/internal/table"
	"admissions/pkg/ctxutil"
	"admissions/pkg/errors"
)

// Backend is the storage a screen reads and writes. Both the HTTP client
// resources and in-process crud services satisfy it.
type Backend[T any] interface {
	List(ctx context.Context, params crud.ListParams) ([]T, error)
	Create(ctx context.Context, item *T) (*T, error)
	Update(ctx context.Context, id string, item *T) (*T, error)
	Delete(ctx context.Context, id string) error
}

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
)

type Mode string

const (
	ModeClosed Mode = ""
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

var (
	ErrModalClosed  = stderrors.New("no form is open")
	ErrNoPending    = stderrors.New("no delete awaiting confirmation")
	ErrUnknownField = stderrors.New("unknown field")
)

// Screen is driven from a single goroutine; it is not safe for concurrent use.
type Screen[T any] struct {
	schema   crud.Schema[T]
	backend  Backend[T]
	identity Identity
	notifier notify.Notifier
	log      logger.Logger

	table *table.Table
	phase Phase
	rows  []T

	mode      Mode
	editingID string
	form      T

	pendingDelete *T
}

type Option[T any] func(*Screen[T])

func WithLogger[T any](log logger.Logger) Option[T] {
	return func(s *Screen[T]) {
		if log != nil {
			s.log = log
		}
	}
}

// WithFormatter sets the locale used for number and date cells.
func WithFormatter[T any](f *table.Formatter) Option[T] {
	return func(s *Screen[T]) {
		s.table = s.newTable(f)
	}
}

func New[T any](schema crud.Schema[T], backend Backend[T], identity Identity, notifier notify.Notifier, opts ...Option[T]) *Screen[T] {
	s := &Screen[T]{
		schema:   schema,
		backend:  backend,
		identity: identity,
		notifier: notifier,
		log:      logger.NopLogger(),
		phase:    PhaseIdle,
	}
	s.table = s.newTable(nil)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Screen[T]) newTable(f *table.Formatter) *table.Table {
	return table.New(table.Props{
		Columns:     s.schema.View,
		OnAdd:       s.Add,
		OnEdit:      func(r table.Record) { _ = s.Edit(r.ID()) },
		OnDuplicate: func(r table.Record) { _ = s.Duplicate(r.ID()) },
		OnDelete:    func(r table.Record) { _ = s.RequestDelete(r.ID()) },
		Options: table.Options{
			SearchPlaceholder: fmt.Sprintf("Search %s...", strings.ToLower(s.plural())),
			EmptyMessage:      fmt.Sprintf("No %s found", strings.ToLower(s.plural())),
		},
	}, f)
}

func (s *Screen[T]) plural() string {
	return strings.ReplaceAll(s.schema.Path, "-", " ")
}

func (s *Screen[T]) Schema() crud.Schema[T] { return s.schema }
func (s *Screen[T]) Table() *table.Table    { return s.table }
func (s *Screen[T]) Phase() Phase           { return s.phase }
func (s *Screen[T]) Mode() Mode             { return s.mode }
func (s *Screen[T]) EditingID() string      { return s.editingID }

// Rows returns the last fetched records.
func (s *Screen[T]) Rows() []T {
	return append([]T(nil), s.rows...)
}

// View renders the table over the last fetch.
func (s *Screen[T]) View() table.View {
	return s.table.Render()
}

// Load fetches every record. A failed fetch leaves an empty list and surfaces
// a notification; it is never retried.
func (s *Screen[T]) Load(ctx context.Context) error {
	s.phase = PhaseLoading
	s.table.SetLoading(true)
	defer func() {
		s.phase = PhaseLoaded
		s.table.SetLoading(false)
	}()

	items, err := s.backend.List(ctx, crud.ListParams{})
	if err != nil {
		s.rows = nil
		s.table.SetData(nil)
		s.fail(ctx, fmt.Sprintf("Failed to load %s", strings.ToLower(s.plural())), err)
		return err
	}

	records, err := table.RecordsOf(items)
	if err != nil {
		s.rows = nil
		s.table.SetData(nil)
		s.fail(ctx, fmt.Sprintf("Failed to load %s", strings.ToLower(s.plural())), err)
		return err
	}
	s.rows = items
	s.table.SetData(records)
	return nil
}

// Add opens the create form with the entity defaults.
func (s *Screen[T]) Add() {
	s.mode = ModeCreate
	s.editingID = ""
	s.form = s.schema.New()
}

// Edit opens the edit form seeded from the row with id.
func (s *Screen[T]) Edit(id string) error {
	row, ok := s.find(id)
	if !ok {
		return errors.ErrNotFound.WithMessage(fmt.Sprintf("%s %s is not loaded", s.schema.Name, id))
	}
	form, err := clone(row)
	if err != nil {
		return err
	}
	s.mode = ModeEdit
	s.editingID = id
	s.form = *form
	return nil
}

// Duplicate opens the create form seeded from an existing row.
func (s *Screen[T]) Duplicate(id string) error {
	row, ok := s.find(id)
	if !ok {
		return errors.ErrNotFound.WithMessage(fmt.Sprintf("%s %s is not loaded", s.schema.Name, id))
	}
	form, err := clone(row)
	if err != nil {
		return err
	}
	*s.schema.Meta(form) = crud.Meta{}
	s.mode = ModeCreate
	s.editingID = ""
	s.form = *form
	return nil
}

// Close discards the form.
func (s *Screen[T]) Close() {
	s.mode = ModeClosed
	s.editingID = ""
	var zero T
	s.form = zero
}

// Form returns a copy of the current form state.
func (s *Screen[T]) Form() T {
	return s.form
}

// UpdateForm mutates the form in place.
func (s *Screen[T]) UpdateForm(fn func(*T)) error {
	if s.mode == ModeClosed {
		return ErrModalClosed
	}
	fn(&s.form)
	return nil
}

// SetField assigns one field by its JSON name, decoding value as JSON when
// the field is not a string.
func (s *Screen[T]) SetField(key string, value interface{}) error {
	if s.mode == ModeClosed {
		return ErrModalClosed
	}
	raw, err := json.Marshal(s.form)
	if err != nil {
		return err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return err
	}
	if _, ok := fields[key]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	fields[key] = encoded

	raw, err = json.Marshal(fields)
	if err != nil {
		return err
	}
	var next T
	if err := json.Unmarshal(raw, &next); err != nil {
		return errors.ErrValidation.WithCause(err).WithMessage(fmt.Sprintf("invalid value for %s", key))
	}
	s.form = next
	return nil
}

// Save validates the form locally and, only if it passes, creates or updates
// the record, then closes the form and refetches. On any failure the form
// stays open with its state intact.
func (s *Screen[T]) Save(ctx context.Context) error {
	if s.mode == ModeClosed {
		return ErrModalClosed
	}

	if err := s.schema.Check(&s.form); err != nil {
		verr := errors.ErrValidation.WithCause(err).WithMessage(err.Error())
		s.notify(ctx, notify.Failure("Validation error", err.Error()))
		return verr
	}

	ctx, userID, err := s.authenticate(ctx)
	if err != nil {
		return err
	}

	item, err := clone(&s.form)
	if err != nil {
		return err
	}
	meta := s.schema.Meta(item)
	meta.UserID = userID

	action := "created"
	var saved *T
	if s.mode == ModeEdit {
		action = "updated"
		saved, err = s.backend.Update(ctx, s.editingID, item)
	} else {
		saved, err = s.backend.Create(ctx, item)
	}
	if err != nil {
		s.fail(ctx, fmt.Sprintf("Failed to %s %s", strings.TrimSuffix(action, "d"), s.title()), err)
		return err
	}

	label := s.schema.LabelOf(item)
	if saved != nil {
		label = s.schema.LabelOf(saved)
	}
	s.notify(ctx, notify.Success(fmt.Sprintf("%s %s", s.schema.Title, action), fmt.Sprintf("%q was %s", label, action)))
	s.Close()
	return s.reload(ctx)
}

// RequestDelete asks for confirmation before deleting the row with id.
func (s *Screen[T]) RequestDelete(id string) error {
	row, ok := s.find(id)
	if !ok {
		return errors.ErrNotFound.WithMessage(fmt.Sprintf("%s %s is not loaded", s.schema.Name, id))
	}
	s.pendingDelete = row
	return nil
}

// PendingDelete returns the row awaiting confirmation, if any.
func (s *Screen[T]) PendingDelete() (*T, bool) {
	return s.pendingDelete, s.pendingDelete != nil
}

func (s *Screen[T]) CancelDelete() {
	s.pendingDelete = nil
}

// ConfirmDelete deletes the pending row. The confirmation closes whether or
// not the delete succeeds; the list is refetched only after a success.
func (s *Screen[T]) ConfirmDelete(ctx context.Context) error {
	row := s.pendingDelete
	if row == nil {
		return ErrNoPending
	}
	s.pendingDelete = nil

	ctx, _, err := s.authenticate(ctx)
	if err != nil {
		return err
	}

	id := s.schema.Meta(row).ID
	if err := s.backend.Delete(ctx, id); err != nil {
		s.fail(ctx, fmt.Sprintf("Failed to delete %s", s.title()), err)
		return err
	}
	s.notify(ctx, notify.Success(fmt.Sprintf("%s deleted", s.schema.Title), fmt.Sprintf("%q was deleted", s.schema.LabelOf(row))))
	return s.reload(ctx)
}

// reload refetches after a successful mutation. Its failure is already
// surfaced by Load and does not undo the mutation.
func (s *Screen[T]) reload(ctx context.Context) error {
	_ = s.Load(ctx)
	return nil
}

func (s *Screen[T]) authenticate(ctx context.Context) (context.Context, string, error) {
	userID, err := s.identity.UserID(ctx)
	if err != nil || userID == "" {
		cause := err
		if cause == nil {
			cause = stderrors.New("no current user")
		}
		uerr := errors.ErrUnauthorized.WithCause(cause)
		s.notify(ctx, notify.Failure("Not authenticated", uerr.Description()))
		return ctx, "", uerr
	}
	return ctxutil.WithUserID(ctx, userID), userID, nil
}

func (s *Screen[T]) title() string {
	return strings.ToLower(s.schema.Title)
}

func (s *Screen[T]) fail(ctx context.Context, title string, err error) {
	s.log.ErrorwCtx(ctx, title, "entity", s.schema.Name, "error", err)
	s.notify(ctx, notify.Failure(title, describe(err)))
}

func (s *Screen[T]) notify(ctx context.Context, n notify.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.WarnwCtx(ctx, "Failed to deliver notification", "title", n.Title, "error", err)
	}
}

func (s *Screen[T]) find(id string) (*T, bool) {
	for i := range s.rows {
		if s.schema.Meta(&s.rows[i]).ID == id {
			return &s.rows[i], true
		}
	}
	return nil, false
}

func describe(err error) string {
	var appErr *errors.Error
	if stderrors.As(err, &appErr) {
		return appErr.Description()
	}
	return err.Error()
}

// clone deep-copies v so form edits never alias a loaded row.
func clone[T any](v *T) (*T, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
