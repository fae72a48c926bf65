package crud

import (
	"context"
	"fmt"
	"time"

	"admissions/internal/constants"
	"admissions/internal/logger"
	"admissions/internal/table"
	"admissions/pkg/ctxutil"
	pkgerrors "admissions/pkg/errors"
	"admissions/pkg/metrics"
	"admissions/pkg/models"
)

// EventPublisher receives a change event after every successful mutation.
type EventPublisher interface {
	PublishChange(ctx context.Context, event models.EntityChangeEvent) error
}

// ListParams narrows and orders a list using the same semantics as the table
// engine: case-insensitive search over the view columns, nulls last.
type ListParams struct {
	Query   string
	Sort    table.SortState
	Filters map[string]string
	Limit   int
}

type Service[T any] struct {
	repo      Repository[T]
	schema    Schema[T]
	publisher EventPublisher
	log       logger.Logger
	now       func() time.Time
}

type ServiceOption[T any] func(*Service[T])

func WithEvents[T any](publisher EventPublisher) ServiceOption[T] {
	return func(s *Service[T]) {
		s.publisher = publisher
	}
}

func WithLogger[T any](log logger.Logger) ServiceOption[T] {
	return func(s *Service[T]) {
		if log != nil {
			s.log = log
		}
	}
}

func NewService[T any](repo Repository[T], schema Schema[T], opts ...ServiceOption[T]) *Service[T] {
	s := &Service[T]{
		repo:   repo,
		schema: schema.MustCheck(),
		log:    logger.NopLogger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service[T]) Schema() Schema[T] {
	return s.schema
}

func (s *Service[T]) List(ctx context.Context, params ListParams) (items []T, err error) {
	defer s.observe("list", time.Now(), &err)

	narrowed := params.Query != "" || params.Sort.Key != "" || len(params.Filters) > 0
	fetch := params.Limit
	if narrowed {
		fetch = constants.MaxLimit
	}
	all, err := s.repo.List(ctx, fetch)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	if !narrowed {
		return all, nil
	}

	records, err := table.RecordsOf(all)
	if err != nil {
		return nil, pkgerrors.ErrInternal.WithCause(err)
	}

	records = table.Search(records, s.schema.View, params.Query)
	for key, value := range params.Filters {
		col, ok := table.FindColumn(s.schema.View, key)
		if !ok || !col.Filterable {
			return nil, pkgerrors.ErrValidation.WithMessage(fmt.Sprintf("%s cannot be filtered by %s", s.schema.Name, key))
		}
		records = table.FilterColumn(records, col, value)
	}
	if params.Sort.Key != "" {
		col, ok := table.FindColumn(s.schema.View, params.Sort.Key)
		if !ok || !col.Sortable {
			return nil, pkgerrors.ErrValidation.WithMessage(fmt.Sprintf("%s cannot be sorted by %s", s.schema.Name, params.Sort.Key))
		}
		records = table.Sort(records, params.Sort)
	}

	byID := make(map[string]T, len(all))
	for i := range all {
		byID[s.schema.Meta(&all[i]).ID] = all[i]
	}
	items = make([]T, 0, len(records))
	for _, rec := range records {
		if item, ok := byID[rec.ID()]; ok {
			items = append(items, item)
		}
	}
	if limit := clampLimit(params.Limit); len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Service[T]) Get(ctx context.Context, id string) (_ *T, err error) {
	defer s.observe("get", time.Now(), &err)

	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return item, nil
}

func (s *Service[T]) Create(ctx context.Context, item *T) (_ *T, err error) {
	defer s.observe("create", time.Now(), &err)

	userID, err := ctxutil.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validate(item); err != nil {
		return nil, err
	}

	meta := s.schema.Meta(item)
	meta.ID = ""
	meta.UserID = userID

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	s.publish(ctx, models.ActionCreate, item, userID)
	return item, nil
}

func (s *Service[T]) Update(ctx context.Context, id string, item *T) (_ *T, err error) {
	defer s.observe("update", time.Now(), &err)

	userID, err := ctxutil.RequireUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validate(item); err != nil {
		return nil, err
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	meta := s.schema.Meta(item)
	meta.ID = id
	meta.UserID = userID
	meta.CreatedAt = s.schema.Meta(existing).CreatedAt

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	s.publish(ctx, models.ActionUpdate, item, userID)
	return item, nil
}

func (s *Service[T]) Delete(ctx context.Context, id string) (err error) {
	defer s.observe("delete", time.Now(), &err)

	userID, err := ctxutil.RequireUserID(ctx)
	if err != nil {
		return err
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	s.publish(ctx, models.ActionDelete, existing, userID)
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > constants.MaxLimit {
		return constants.DefaultLimit
	}
	return limit
}

func (s *Service[T]) validate(item *T) error {
	if item == nil {
		return pkgerrors.ErrValidation.WithMessage(fmt.Sprintf("%s body is required", s.schema.Name))
	}
	if err := s.schema.Check(item); err != nil {
		return pkgerrors.ErrValidation.WithCause(err).WithMessage(err.Error())
	}
	return nil
}

func (s *Service[T]) publish(ctx context.Context, action string, item *T, userID string) {
	if s.publisher == nil {
		return
	}
	event := models.EntityChangeEvent{
		Entity:    s.schema.Name,
		Title:     s.schema.Title,
		Action:    action,
		ID:        s.schema.Meta(item).ID,
		Name:      s.schema.LabelOf(item),
		ChangedBy: userID,
		Timestamp: s.now(),
	}
	if err := s.publisher.PublishChange(ctx, event); err != nil {
		s.log.WarnwCtx(ctx, "Failed to publish change event",
			"entity", event.Entity,
			"action", action,
			"id", event.ID,
			"error", err,
		)
	}
}

func (s *Service[T]) observe(op string, start time.Time, errp *error) {
	status := "success"
	if *errp != nil {
		status = "error"
	}
	metrics.ObserveEntityOperation(s.schema.Name, op, status, time.Since(start))
}
