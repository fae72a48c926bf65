package crud

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"admissions/internal/constants"
	pkgerrors "admissions/pkg/errors"
	"admissions/pkg/metrics"
)

type Repository[T any] interface {
	List(ctx context.Context, limit int) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, item *T) error
	Update(ctx context.Context, item *T) error
	Delete(ctx context.Context, id string) error
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type PostgresRepository[T any] struct {
	db     *sql.DB
	schema Schema[T]
	now    func() time.Time
}

func NewRepository[T any](db *sql.DB, schema Schema[T]) *PostgresRepository[T] {
	return &PostgresRepository[T]{
		db:     db,
		schema: schema.MustCheck(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *PostgresRepository[T]) List(ctx context.Context, limit int) (items []T, err error) {
	defer r.observe("list", time.Now(), &err)

	if limit <= 0 || limit > constants.MaxLimit {
		limit = constants.DefaultLimit
	}

	query, args, err := psql.
		Select(r.schema.allColumns()...).
		From(r.schema.Table).
		OrderBy(r.schema.orderBy()).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.schema.Table, err)
	}
	defer rows.Close()

	items = make([]T, 0)
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		var item T
		if err := rows.Scan(r.schema.scanTargets(&item)...); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", r.schema.Name, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", r.schema.Table, err)
	}

	return items, nil
}

func (r *PostgresRepository[T]) Get(ctx context.Context, id string) (_ *T, err error) {
	defer r.observe("get", time.Now(), &err)

	query, args, err := psql.
		Select(r.schema.allColumns()...).
		From(r.schema.Table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get query: %w", err)
	}

	var item T
	err = r.db.QueryRowContext(ctx, query, args...).Scan(r.schema.scanTargets(&item)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.notFound(id)
	}
	if err != nil {
		if isInvalidText(err) {
			return nil, r.notFound(id)
		}
		return nil, fmt.Errorf("failed to get %s: %w", r.schema.Name, err)
	}

	return &item, nil
}

func (r *PostgresRepository[T]) Create(ctx context.Context, item *T) (err error) {
	defer r.observe("create", time.Now(), &err)

	meta := r.schema.Meta(item)
	if meta.ID == "" {
		meta.ID = uuid.New().String()
	}
	now := r.now()
	meta.CreatedAt = now
	meta.UpdatedAt = now

	values := make([]any, 0, len(r.schema.Columns)+4)
	values = append(values, meta.ID, meta.UserID)
	values = append(values, r.schema.Values(item)...)
	values = append(values, meta.CreatedAt, meta.UpdatedAt)

	query, args, err := psql.
		Insert(r.schema.Table).
		Columns(r.schema.allColumns()...).
		Values(values...).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if mapped := r.mapConstraintError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to create %s: %w", r.schema.Name, err)
	}

	return nil
}

func (r *PostgresRepository[T]) Update(ctx context.Context, item *T) (err error) {
	defer r.observe("update", time.Now(), &err)

	meta := r.schema.Meta(item)
	meta.UpdatedAt = r.now()

	builder := psql.Update(r.schema.Table).Set("user_id", meta.UserID)
	values := r.schema.Values(item)
	for i, col := range r.schema.Columns {
		builder = builder.Set(col, values[i])
	}

	query, args, err := builder.
		Set("updated_at", meta.UpdatedAt).
		Where(sq.Eq{"id": meta.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if mapped := r.mapConstraintError(err); mapped != nil {
			return mapped
		}
		if isInvalidText(err) {
			return r.notFound(meta.ID)
		}
		return fmt.Errorf("failed to update %s: %w", r.schema.Name, err)
	}

	return r.expectRow(res, meta.ID)
}

func (r *PostgresRepository[T]) Delete(ctx context.Context, id string) (err error) {
	defer r.observe("delete", time.Now(), &err)

	query, args, err := psql.
		Delete(r.schema.Table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if mapped := r.mapConstraintError(err); mapped != nil {
			return mapped
		}
		if isInvalidText(err) {
			return r.notFound(id)
		}
		return fmt.Errorf("failed to delete %s: %w", r.schema.Name, err)
	}

	return r.expectRow(res, id)
}

func (r *PostgresRepository[T]) expectRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return r.notFound(id)
	}
	return nil
}

func (r *PostgresRepository[T]) notFound(id string) error {
	return pkgerrors.ErrNotFound.
		WithDetail("id", id).
		WithMessage(fmt.Sprintf("%s %s not found", r.schema.Name, id))
}

func (r *PostgresRepository[T]) mapConstraintError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	switch pqErr.Code {
	case "23505":
		return pkgerrors.ErrConflict.WithCause(err).
			WithDetail("constraint", pqErr.Constraint).
			WithMessage(fmt.Sprintf("a %s with the same %s already exists", r.schema.Name, constraintField(pqErr)))
	case "23503":
		return pkgerrors.ErrConflict.WithCause(err).
			WithDetail("constraint", pqErr.Constraint).
			WithMessage(fmt.Sprintf("%s is referenced by other records", r.schema.Name))
	case "23514", "23502":
		return pkgerrors.ErrValidation.WithCause(err).
			WithDetail("constraint", pqErr.Constraint).
			WithMessage(pqErr.Message)
	}
	return nil
}

func constraintField(pqErr *pq.Error) string {
	if pqErr.Column != "" {
		return pqErr.Column
	}
	if pqErr.Constraint != "" {
		return pqErr.Constraint
	}
	return "key"
}

func isInvalidText(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "22P02"
}

func (r *PostgresRepository[T]) observe(op string, start time.Time, errp *error) {
	status := "success"
	if *errp != nil && !pkgerrors.IsNotFound(*errp) {
		status = "error"
	}
	metrics.ObserveDatabaseQuery(r.schema.Name, op, status, time.Since(start))
}
