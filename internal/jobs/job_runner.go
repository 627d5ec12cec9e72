package jobs

import (
	"context"
	"fmt"
	"time"

	"martilhaven-backend/internal/config"
	"martilhaven-backend/internal/logger"
	"martilhaven-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	config   *config.Config
	now      func() time.Time
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Email    service.EmailService
	Operator service.OperatorService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		services: services,
		config:   cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery. A failed or panicking job
// is reported to the fleet notice recipients.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) (err error) {
	ctx := context.Background()
	log := logger.WithService("jobs").With("job", jobName)
	defer func() {
		if r := recover(); r != nil {
			log.Error("Job panicked", "panic", r)
			err = fmt.Errorf("job %s panicked: %v", jobName, r)
		}
		if err != nil {
			jr.alert(ctx, jobName, err)
		}
	}()

	log.Info("Starting job")
	start := jr.now()
	if err = jobFunc(ctx); err != nil {
		log.Error("Job failed", "error", err)
		return err
	}
	log.Info("Job completed", "duration", jr.now().Sub(start))
	return nil
}

func (jr *JobRunner) alert(ctx context.Context, jobName string, cause error) {
	subject := fmt.Sprintf("Scheduled job %s failed", jobName)
	message := fmt.Sprintf("The scheduled job %s failed at %s:\n\n%v", jobName, jr.now().Format(time.RFC3339), cause)
	for _, to := range jr.config.Fleet.NoticeRecipients {
		if err := jr.services.Email.SendAdminNotification(ctx, to, subject, message); err != nil {
			logger.Warn("Failed to send job failure alert", "job", jobName, "to", to, "error", err)
		}
	}
}

// RunAll runs every job once, in schedule order (for manual execution)
func (jr *JobRunner) RunAll() error {
	if err := jr.RefreshCertificateStatuses(); err != nil {
		return err
	}
	return jr.SendCertificateNotices()
}
