// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Reprocessor re-runs extraction over stored documents.
type Reprocessor interface {
	ReprocessAll(ctx context.Context) error
}

// Scheduler runs the periodic reprocess job that retries documents stuck in
// pending or error state.
type Scheduler struct {
	cron        *cron.Cron
	reprocessor Reprocessor
	spec        string
	logger      *slog.Logger
}

// NewScheduler creates a scheduler using the standard 5-field cron format.
func NewScheduler(reprocessor Reprocessor, spec string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:        c,
		reprocessor: reprocessor,
		spec:        spec,
		logger:      logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, s.reprocess)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.String("spec", s.spec),
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the reprocess job.
func (s *Scheduler) RunNow() {
	go s.reprocess()
}

func (s *Scheduler) reprocess() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	s.logger.Info("starting scheduled document reprocess")
	if err := s.reprocessor.ReprocessAll(ctx); err != nil {
		s.logger.Error("scheduled reprocess failed", slog.Any("error", err))
	}
}
