package stripesync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"admissions/internal/constants"
	"admissions/pkg/metrics"
)

type Store interface {
	LastSuccessfulRun(ctx context.Context) (*Run, error)
	StartRun(ctx context.Context, trigger string, since time.Time) (*Run, error)
	FinishRun(ctx context.Context, run *Run) error
	UpsertPayments(ctx context.Context, payments []Payment) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var runColumns = []string{"id", "trigger", "status", "started_at", "finished_at", "since", "payments", "error"}

type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func scanRun(row interface{ Scan(...any) error }) (*Run, error) {
	var r Run
	if err := row.Scan(&r.ID, &r.Trigger, &r.Status, &r.StartedAt, &r.FinishedAt, &r.Since, &r.Payments, &r.Error); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *PostgresStore) LastSuccessfulRun(ctx context.Context) (_ *Run, err error) {
	defer observe("last_run", time.Now(), &err)

	query, args, err := psql.Select(runColumns...).
		From("stripe_sync_runs").
		Where(sq.Eq{"status": StatusSuccess}).
		OrderBy("started_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	run, err := scanRun(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load last sync run: %w", err)
	}
	return run, nil
}

func (s *PostgresStore) StartRun(ctx context.Context, trigger string, since time.Time) (_ *Run, err error) {
	defer observe("start_run", time.Now(), &err)

	run := &Run{
		ID:        uuid.New().String(),
		Trigger:   trigger,
		Status:    StatusRunning,
		StartedAt: s.now(),
		Since:     since,
	}
	query, args, err := psql.Insert("stripe_sync_runs").
		Columns("id", "trigger", "status", "started_at", "since", "payments").
		Values(run.ID, run.Trigger, run.Status, run.StartedAt, run.Since, 0).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to record sync run: %w", err)
	}
	return run, nil
}

func (s *PostgresStore) FinishRun(ctx context.Context, run *Run) (err error) {
	defer observe("finish_run", time.Now(), &err)

	finished := s.now()
	run.FinishedAt = &finished
	query, args, err := psql.Update("stripe_sync_runs").
		Set("status", run.Status).
		Set("finished_at", finished).
		Set("payments", run.Payments).
		Set("error", run.Error).
		Where(sq.Eq{"id": run.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to finish sync run: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpsertPayments(ctx context.Context, payments []Payment) (err error) {
	if len(payments) == 0 {
		return nil
	}
	defer observe("upsert_payments", time.Now(), &err)

	synced := s.now()
	builder := psql.Insert("stripe_payments").
		Columns("id", "amount", "currency", "status", "customer_id", "email", "description", "created_at", "synced_at")
	for _, p := range payments {
		builder = builder.Values(p.ID, p.Amount, p.Currency, p.Status, p.CustomerID, p.Email, p.Description, p.CreatedAt, synced)
	}
	query, args, err := builder.
		Suffix("ON CONFLICT (id) DO UPDATE SET " +
			"amount = EXCLUDED.amount, status = EXCLUDED.status, customer_id = EXCLUDED.customer_id, " +
			"email = EXCLUDED.email, description = EXCLUDED.description, synced_at = EXCLUDED.synced_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert payments: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) (_ []Run, err error) {
	defer observe("list_runs", time.Now(), &err)

	if limit <= 0 || limit > constants.MaxLimit {
		limit = 50
	}
	query, args, err := psql.Select(runColumns...).
		From("stripe_sync_runs").
		OrderBy("started_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func observe(op string, start time.Time, errp *error) {
	status := "success"
	if *errp != nil {
		status = "error"
	}
	metrics.ObserveDatabaseQuery("stripe_sync", op, status, time.Since(start))
}
