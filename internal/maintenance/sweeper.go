// Package maintenance runs scheduled retention sweeps outside the request
// path: terminal jobs past their audit horizon and stale rate counters.
package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"dailyitems/internal/domain"
	"dailyitems/internal/ratelimit"
)

const counterRetention = 7 * 24 * time.Hour

// Sweeper prunes expired durable state on a cron schedule.
type Sweeper struct {
	jobs         domain.JobRepository
	counters     ratelimit.Store
	jobRetention time.Duration
	logger       zerolog.Logger
	cron         *cron.Cron
}

func NewSweeper(jobs domain.JobRepository, counters ratelimit.Store, jobRetention time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		jobs:         jobs,
		counters:     counters,
		jobRetention: jobRetention,
		logger:       logger,
	}
}

// Start schedules the sweep. An empty or "off" schedule disables it.
func (s *Sweeper) Start(schedule string) error {
	if schedule == "" || schedule == "off" {
		s.logger.Info().Msg("retention sweeper disabled")
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { s.Sweep(context.Background()) }); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	s.logger.Info().Str("schedule", schedule).Msg("retention sweeper started")
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// Sweep runs one pass. Failures are logged, never fatal; the next run
// catches up.
func (s *Sweeper) Sweep(ctx context.Context) {
	now := time.Now()

	jobsRemoved, err := s.jobs.DeleteTerminalBefore(ctx, now.Add(-s.jobRetention))
	if err != nil {
		s.logger.Error().Err(err).Msg("job retention sweep failed")
	}

	countersRemoved, err := s.counters.DeleteBefore(ctx, now.Add(-counterRetention))
	if err != nil {
		s.logger.Error().Err(err).Msg("rate counter sweep failed")
	}

	s.logger.Info().
		Int64("jobs_removed", jobsRemoved).
		Int64("counters_removed", countersRemoved).
		Msg("retention sweep finished")
}
