package jobs

import (
	"context"

	"martilhaven-backend/internal/logger"
)

// RefreshCertificateStatuses recomputes and persists every operator's ASO and NR statuses
func (jr *JobRunner) RefreshCertificateStatuses() error {
	return jr.runWithRecovery("RefreshCertificateStatuses", func(ctx context.Context) error {
		changed, err := jr.services.Operator.RefreshCertificateStatuses(ctx, jr.now())
		if err != nil {
			return err
		}
		logger.Info("Certificate statuses refreshed", "changed", changed)
		return nil
	})
}

// SendCertificateNotices emails one digest listing every active operator with a
// certificate in warning or expired state
func (jr *JobRunner) SendCertificateNotices() error {
	return jr.runWithRecovery("SendCertificateNotices", func(ctx context.Context) error {
		alerts, err := jr.services.Operator.CertificateAlerts(ctx, jr.now())
		if err != nil {
			return err
		}
		if len(alerts) == 0 {
			logger.Info("No operator certificates need attention")
			return nil
		}
		recipients := jr.config.Fleet.NoticeRecipients
		if len(recipients) == 0 {
			logger.Warn("Certificate notices skipped, no recipients configured", "operators", len(alerts))
			return nil
		}
		if err := jr.services.Email.SendCertificateNotice(ctx, recipients, alerts); err != nil {
			return err
		}
		logger.Info("Certificate notice sent", "operators", len(alerts), "recipients", len(recipients))
		return nil
	})
}
