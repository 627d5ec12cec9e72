package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"martilhaven-backend/internal/domain"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr(t time.Time) *time.Time { return &t }

func TestCertificateStatus(t *testing.T) {
	exp := date("2025-03-31")

	tests := []struct {
		name  string
		today time.Time
		want  domain.CertificateStatus
	}{
		{"40 days ahead", exp.AddDate(0, 0, -40), domain.CertificateStatusRegular},
		{"exactly 30 days ahead", exp.AddDate(0, 0, -30), domain.CertificateStatusRegular},
		{"29 days ahead", exp.AddDate(0, 0, -29), domain.CertificateStatusWarning},
		{"10 days ahead", exp.AddDate(0, 0, -10), domain.CertificateStatusWarning},
		{"expires today", exp, domain.CertificateStatusWarning},
		{"one day after", exp.AddDate(0, 0, 1), domain.CertificateStatusExpired},
		{"late in the day", exp.Add(23 * time.Hour), domain.CertificateStatusWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CertificateStatus(exp, tt.today))
		})
	}
}

func TestApplyCertificateStatuses(t *testing.T) {
	today := date("2025-01-01")
	op := &domain.Operator{
		ASOExpirationDate: date("2025-06-01"),
		NRExpirationDate:  date("2024-12-01"),
		ASOStatus:         domain.CertificateStatusRegular,
		NRStatus:          domain.CertificateStatusRegular,
	}

	assert.True(t, ApplyCertificateStatuses(op, today))
	assert.Equal(t, domain.CertificateStatusRegular, op.ASOStatus)
	assert.Equal(t, domain.CertificateStatusExpired, op.NRStatus)
	assert.False(t, ApplyCertificateStatuses(op, today))
}

func TestOverlaps(t *testing.T) {
	w := func(start, end string) domain.Window {
		return domain.Window{Start: date(start), End: ptr(date(end))}
	}
	confirmed := w("2024-06-01", "2024-06-05")

	t.Run("Intersecting", func(t *testing.T) {
		assert.True(t, Overlaps(confirmed, w("2024-06-04", "2024-06-08")))
		assert.True(t, Overlaps(w("2024-05-28", "2024-06-02"), confirmed))
		assert.True(t, Overlaps(confirmed, w("2024-06-02", "2024-06-03")))
	})

	t.Run("Touching end is free", func(t *testing.T) {
		assert.False(t, Overlaps(confirmed, w("2024-06-05", "2024-06-08")))
		assert.False(t, Overlaps(w("2024-05-28", "2024-06-01"), confirmed))
	})

	t.Run("Open windows", func(t *testing.T) {
		open := domain.Window{Start: date("2024-06-03")}
		assert.True(t, Overlaps(open, confirmed))
		assert.True(t, Overlaps(open, domain.Window{Start: date("2030-01-01")}))
		assert.False(t, Overlaps(open, w("2024-05-01", "2024-06-03")))
	})
}

func TestValidateWindow(t *testing.T) {
	start := date("2024-06-01")

	assert.NoError(t, ValidateWindow(domain.Window{Start: start, End: ptr(start.AddDate(0, 0, 1))}, false))
	assert.NoError(t, ValidateWindow(domain.Window{Start: start}, true))

	err := ValidateWindow(domain.Window{Start: start, End: ptr(start)}, false)
	assert.True(t, domain.IsKind(err, domain.ErrorKindValidation))

	err = ValidateWindow(domain.Window{Start: start}, false)
	assert.True(t, domain.IsKind(err, domain.ErrorKindValidation))

	err = ValidateWindow(domain.Window{End: ptr(start)}, true)
	assert.True(t, domain.IsKind(err, domain.ErrorKindValidation))
}

func TestMeasureDuration(t *testing.T) {
	start := date("2024-06-01")
	now := start.Add(5 * time.Hour)

	t.Run("Closed", func(t *testing.T) {
		d := MeasureDuration(start, ptr(start.Add(2*time.Hour)), now)
		assert.Equal(t, 2*time.Hour, d.Elapsed)
		assert.Equal(t, int64(120), d.ElapsedMinutes)
		assert.False(t, d.Ongoing)
		assert.False(t, d.Inconsistent)
	})

	t.Run("Ongoing", func(t *testing.T) {
		d := MeasureDuration(start, nil, now)
		assert.Equal(t, 5*time.Hour, d.Elapsed)
		assert.True(t, d.Ongoing)
	})

	t.Run("Inconsistent", func(t *testing.T) {
		d := MeasureDuration(start, ptr(start.Add(-time.Hour)), now)
		assert.Equal(t, time.Duration(0), d.Elapsed)
		assert.True(t, d.Inconsistent)
	})
}

func TestTransitions(t *testing.T) {
	t.Run("Booking", func(t *testing.T) {
		assert.ElementsMatch(t, []domain.BookingStatus{domain.BookingStatusConfirmed, domain.BookingStatusCancelled},
			NextBookingStatuses(domain.BookingStatusPending))
		assert.True(t, CanTransitionBooking(domain.BookingStatusConfirmed, domain.BookingStatusCompleted))
		assert.False(t, CanTransitionBooking(domain.BookingStatusPending, domain.BookingStatusCompleted))
		assert.Empty(t, NextBookingStatuses(domain.BookingStatusCompleted))
		assert.Empty(t, NextBookingStatuses(domain.BookingStatusCancelled))
	})

	t.Run("Operation", func(t *testing.T) {
		assert.True(t, CanTransitionOperation(domain.OperationStatusActive, domain.OperationStatusCompleted))
		assert.False(t, CanTransitionOperation(domain.OperationStatusCompleted, domain.OperationStatusActive))
	})

	t.Run("Property", func(t *testing.T) {
		assert.True(t, CanTransitionProperty(domain.PropertyStatusRejected, domain.PropertyStatusApproved))
		assert.False(t, CanTransitionProperty(domain.PropertyStatusApproved, domain.PropertyStatusPending))
		assert.NotEmpty(t, NextPropertyStatuses(domain.PropertyStatusRejected))
	})

	t.Run("Forklift", func(t *testing.T) {
		assert.True(t, CanTransitionForklift(domain.ForkliftStatusStopped, domain.ForkliftStatusOperational))
		assert.False(t, CanTransitionForklift(domain.ForkliftStatusStopped, domain.ForkliftStatusStopped))
	})

	t.Run("Returned slice is a copy", func(t *testing.T) {
		next := NextBookingStatuses(domain.BookingStatusPending)
		next[0] = domain.BookingStatusCompleted
		assert.False(t, CanTransitionBooking(domain.BookingStatusPending, domain.BookingStatusCompleted))
	})
}
