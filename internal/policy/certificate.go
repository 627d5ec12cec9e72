package policy

import (
	"time"

	"martilhaven-backend/internal/domain"
)

// CertificateWarningWindow is how far ahead of expiration a certificate is flagged.
const CertificateWarningWindow = 30 * 24 * time.Hour

// CertificateStatus classifies an expiration date against today. Both dates are compared
// as calendar days in UTC.
func CertificateStatus(expiration, today time.Time) domain.CertificateStatus {
	exp := Day(expiration)
	now := Day(today)
	switch {
	case exp.Before(now):
		return domain.CertificateStatusExpired
	case exp.Sub(now) < CertificateWarningWindow:
		return domain.CertificateStatusWarning
	default:
		return domain.CertificateStatusRegular
	}
}

// ApplyCertificateStatuses recomputes both derived statuses and reports whether either changed.
func ApplyCertificateStatuses(op *domain.Operator, today time.Time) bool {
	aso := CertificateStatus(op.ASOExpirationDate, today)
	nr := CertificateStatus(op.NRExpirationDate, today)
	changed := aso != op.ASOStatus || nr != op.NRStatus
	op.ASOStatus = aso
	op.NRStatus = nr
	return changed
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
