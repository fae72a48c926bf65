package stripesync

import (
	"context"
	"errors"
	"time"

	"admissions/internal/config"
	"admissions/internal/constants"
	"admissions/internal/logger"
	"admissions/pkg/circuitbreaker"
	"admissions/pkg/metrics"
	"admissions/pkg/retry"
)

// ErrAlreadyRunning is returned when another replica holds the sync lock.
var ErrAlreadyRunning = errors.New("stripe sync already running")

// overlap re-reads a short window before the last successful run so charges
// created while that run was in flight are not missed. Upserts make this safe.
const overlap = 5 * time.Minute

type Syncer struct {
	lister  ChargeLister
	store   Store
	locker  Locker
	breaker *circuitbreaker.Wrapper
	policy  retry.Policy
	lockTTL time.Duration
	log     logger.Logger
}

func NewSyncer(lister ChargeLister, store Store, locker Locker, breaker *circuitbreaker.Wrapper, cfg config.StripeSyncConfig, log logger.Logger) *Syncer {
	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = 2 * constants.DefaultSyncInterval
	}
	if breaker == nil {
		breaker = circuitbreaker.NewWrapper(circuitbreaker.DefaultConfig("stripe"))
	}
	return &Syncer{
		lister:  lister,
		store:   store,
		locker:  locker,
		breaker: breaker,
		policy:  cfg.Retry.Policy(),
		lockTTL: ttl,
		log:     log,
	}
}

// Run performs one sync pass and returns the recorded run.
func (s *Syncer) Run(ctx context.Context, trigger string) (*Run, error) {
	unlock, ok, err := s.locker.TryLock(ctx, constants.StripeSyncLockKey, s.lockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.log.WarnwCtx(ctx, "Failed to release stripe sync lock", "error", err)
		}
	}()

	var since time.Time
	last, err := s.store.LastSuccessfulRun(ctx)
	if err != nil {
		return nil, err
	}
	if last != nil {
		since = last.StartedAt.Add(-overlap)
	}

	run, err := s.store.StartRun(ctx, trigger, since)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	count, syncErr := s.pull(ctx, since)
	run.Payments = count
	run.Status = StatusSuccess
	if syncErr != nil {
		run.Status = StatusFailed
		msg := syncErr.Error()
		run.Error = &msg
	}
	metrics.ObserveStripeSync(run.Status, count, time.Since(start))

	if err := s.store.FinishRun(context.WithoutCancel(ctx), run); err != nil {
		s.log.ErrorwCtx(ctx, "Failed to record stripe sync run", "run_id", run.ID, "error", err)
	}

	if syncErr != nil {
		s.log.ErrorwCtx(ctx, "Stripe sync failed", "run_id", run.ID, "payments", count, "error", syncErr)
		return run, syncErr
	}
	s.log.InfowCtx(ctx, "Stripe sync completed", "run_id", run.ID, "trigger", trigger, "payments", count)
	return run, nil
}

func (s *Syncer) pull(ctx context.Context, since time.Time) (int, error) {
	total := 0
	cursor := ""
	for {
		var page *Page
		err := retry.Do(ctx, s.policy, func() error {
			p, err := circuitbreaker.Do(ctx, s.breaker, func(ctx context.Context) (*Page, error) {
				return s.lister.ListCharges(ctx, since, cursor)
			})
			if circuitbreaker.IsOpenError(err) {
				return retry.Fatal(err)
			}
			page = p
			return err
		}, func(attempt int, err error, next time.Duration) {
			metrics.IncRetryAttempt("stripe_list_charges")
			s.log.WarnwCtx(ctx, "Retrying stripe page", "attempt", attempt, "next_delay", next, "error", err)
		})
		if err != nil {
			return total, err
		}

		if err := s.store.UpsertPayments(ctx, page.Payments); err != nil {
			return total, err
		}
		total += len(page.Payments)

		if !page.HasMore || page.LastID == "" {
			return total, nil
		}
		cursor = page.LastID
	}
}

func (s *Syncer) Runs(ctx context.Context, limit int) ([]Run, error) {
	return s.store.ListRuns(ctx, limit)
}
