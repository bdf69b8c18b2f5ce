package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"RateCast/internal/pipeline"
	"RateCast/internal/report"
)

// Scheduler triggers the daily pipeline run.
type Scheduler struct {
	Cron     *cron.Cron
	Pipeline *pipeline.Pipeline
	Ctx      context.Context
	Log      zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, p *pipeline.Pipeline, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Pipeline: p,
		Ctx:      ctx,
		Log:      log.With().Str("component", "scheduler").Logger(),
	}
}

// Register registers the daily run task.
func (s *Scheduler) Register(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	s.Log.Info().Msg("scheduler stopped")
}

// RunNow executes the daily run immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.dailyTask()
}

func (s *Scheduler) dailyTask() {
	asOf := time.Now().UTC()
	s.Log.Info().Str("as_of", asOf.Format("2006-01-02")).Msg("running daily pipeline")

	res, err := s.Pipeline.Run(s.Ctx, asOf)
	if err != nil {
		s.Log.Error().Err(err).Msg("daily run failed, nothing published")
		return
	}
	s.Log.Info().Msg(report.FormatRun(res))
}
