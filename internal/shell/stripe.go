package shell

import (
	"context"

	"admissions/internal/logger"
	"admissions/internal/notify"
	"admissions/internal/stripesync"
	"admissions/internal/table"
)

type RunsSource interface {
	StripeRuns(ctx context.Context, limit int) ([]stripesync.Run, error)
}

var stripeRunColumns = []table.Column{
	{Key: "started_at", Label: "Started", Type: table.TypeDate, Sortable: true},
	{Key: "trigger", Label: "Trigger", Type: table.TypeBadge, Filterable: true},
	{Key: "status", Label: "Status", Type: table.TypeBadge, Sortable: true, Filterable: true,
		BadgeVariants: map[string]string{stripesync.StatusFailed: "destructive", stripesync.StatusRunning: "secondary"}},
	{Key: "payments", Label: "Payments", Type: table.TypeNumber, Sortable: true},
	{Key: "error", Label: "Error"},
}

// StripeRuns is a read-only table over recent sync runs.
type StripeRuns struct {
	source   RunsSource
	notifier notify.Notifier
	log      logger.Logger
	table    *table.Table
}

func NewStripeRuns(source RunsSource, notifier notify.Notifier, log logger.Logger) *StripeRuns {
	if log == nil {
		log = logger.NopLogger()
	}
	return &StripeRuns{
		source:   source,
		notifier: notifier,
		log:      log,
		table: table.New(table.Props{
			Columns: stripeRunColumns,
			Options: table.Options{EmptyMessage: "No sync runs yet", HideAdd: true},
		}, nil),
	}
}

func (s *StripeRuns) Load(ctx context.Context) error {
	s.table.SetLoading(true)
	defer s.table.SetLoading(false)

	runs, err := s.source.StripeRuns(ctx, 0)
	if err == nil {
		var records []table.Record
		records, err = table.RecordsOf(runs)
		if err == nil {
			s.table.SetData(records)
			return nil
		}
	}
	s.table.SetData(nil)
	s.log.ErrorwCtx(ctx, "Failed to load stripe sync runs", "error", err)
	if s.notifier != nil {
		_ = s.notifier.Notify(ctx, notify.Failure("Failed to load sync runs", err.Error()))
	}
	return err
}

func (s *StripeRuns) View() table.View {
	return s.table.Render()
}

func (s *StripeRuns) Table() *table.Table {
	return s.table
}
