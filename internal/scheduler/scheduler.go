package scheduler

import (
	"time"

	"martilhaven-backend/internal/jobs"
	"martilhaven-backend/internal/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a new scheduler with the provided job runner
func NewScheduler(jobRunner *jobs.JobRunner) (*Scheduler, error) {
	// Create cron with UTC timezone and seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	if err := s.registerJobs(); err != nil {
		return nil, err
	}
	return s, nil
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs() error {
	cfg := s.jobs.Config().Scheduler

	// Recompute operator certificate statuses
	if _, err := s.cron.AddFunc(cfg.RefreshCertificateStatuses, func() { _ = s.jobs.RefreshCertificateStatuses() }); err != nil {
		logger.Error("Failed to register RefreshCertificateStatuses job", "error", err)
		return err
	}

	// Email the certificate digest
	if _, err := s.cron.AddFunc(cfg.SendCertificateNotices, func() { _ = s.jobs.SendCertificateNotices() }); err != nil {
		logger.Error("Failed to register SendCertificateNotices job", "error", err)
		return err
	}

	logger.Info("All cron jobs registered successfully", "jobs", len(s.cron.Entries()))
	return nil
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// Entries reports the registered jobs and their next run times
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}
