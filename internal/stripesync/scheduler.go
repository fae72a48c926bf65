package stripesync

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron"

	"admissions/internal/logger"
)

// Scheduler triggers Syncer.Run on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	syncer *Syncer
	log    logger.Logger
}

func NewScheduler(spec string, syncer *Syncer, log logger.Logger) (*Scheduler, error) {
	s := &Scheduler{cron: cron.New(), syncer: syncer, log: log}
	if err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("invalid stripe sync schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) tick() {
	ctx := context.Background()
	if _, err := s.syncer.Run(ctx, TriggerSchedule); err != nil {
		if errors.Is(err, ErrAlreadyRunning) {
			s.log.DebugwCtx(ctx, "Stripe sync skipped, lock held elsewhere")
			return
		}
		s.log.ErrorwCtx(ctx, "Scheduled stripe sync failed", "error", err)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}
