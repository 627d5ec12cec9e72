package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"martilhaven-backend/internal/config"
	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOperatorService implements the job-facing part of service.OperatorService
type MockOperatorService struct {
	mock.Mock
	service.OperatorService
}

func (m *MockOperatorService) RefreshCertificateStatuses(ctx context.Context, today time.Time) (int, error) {
	args := m.Called(ctx, today)
	return args.Int(0), args.Error(1)
}

func (m *MockOperatorService) CertificateAlerts(ctx context.Context, today time.Time) ([]domain.Operator, error) {
	args := m.Called(ctx, today)
	ops, _ := args.Get(0).([]domain.Operator)
	return ops, args.Error(1)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendBookingRequestNotification(ctx context.Context, ownerEmail, guestName, propertyTitle string, checkIn, checkOut time.Time) error {
	return m.Called(ctx, ownerEmail, guestName, propertyTitle, checkIn, checkOut).Error(0)
}

func (m *MockEmailService) SendBookingStatusNotification(ctx context.Context, guestEmail, guestName, propertyTitle string, status domain.BookingStatus) error {
	return m.Called(ctx, guestEmail, guestName, propertyTitle, status).Error(0)
}

func (m *MockEmailService) SendCertificateNotice(ctx context.Context, recipients []string, operators []domain.Operator) error {
	return m.Called(ctx, recipients, operators).Error(0)
}

func (m *MockEmailService) SendAdminNotification(ctx context.Context, adminEmail, subject, message string) error {
	return m.Called(ctx, adminEmail, subject, message).Error(0)
}

var fixedNow = time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC)

func newRunner(recipients ...string) (*JobRunner, *MockOperatorService, *MockEmailService) {
	ops := new(MockOperatorService)
	email := new(MockEmailService)
	cfg := &config.Config{Fleet: config.FleetConfig{NoticeRecipients: recipients}}
	jr := NewJobRunner(&Services{Email: email, Operator: ops}, cfg)
	jr.now = func() time.Time { return fixedNow }
	return jr, ops, email
}

func TestRefreshCertificateStatuses(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		jr, ops, email := newRunner("fleet@example.com")
		ops.On("RefreshCertificateStatuses", mock.Anything, fixedNow).Return(3, nil).Once()

		require.NoError(t, jr.RefreshCertificateStatuses())
		ops.AssertExpectations(t)
		email.AssertNotCalled(t, "SendAdminNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failure Alerts Recipients", func(t *testing.T) {
		jr, ops, email := newRunner("fleet@example.com", "safety@example.com")
		ops.On("RefreshCertificateStatuses", mock.Anything, fixedNow).Return(0, errors.New("db down")).Once()
		email.On("SendAdminNotification", mock.Anything, mock.Anything, "Scheduled job RefreshCertificateStatuses failed", mock.Anything).Return(nil).Twice()

		err := jr.RefreshCertificateStatuses()
		assert.EqualError(t, err, "db down")
		email.AssertNumberOfCalls(t, "SendAdminNotification", 2)
	})

	t.Run("Panic Recovered", func(t *testing.T) {
		jr, ops, email := newRunner("fleet@example.com")
		ops.On("RefreshCertificateStatuses", mock.Anything, fixedNow).Run(func(mock.Arguments) { panic("boom") }).Return(0, nil)
		email.On("SendAdminNotification", mock.Anything, "fleet@example.com", mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()

		err := jr.RefreshCertificateStatuses()
		assert.ErrorContains(t, err, "panicked: boom")
		email.AssertExpectations(t)
	})
}

func TestSendCertificateNotices(t *testing.T) {
	alerts := []domain.Operator{{ID: "op-1", Name: "Rui", ASOStatus: domain.CertificateStatusExpired, NRStatus: domain.CertificateStatusRegular}}

	t.Run("Sends Digest", func(t *testing.T) {
		jr, ops, email := newRunner("fleet@example.com")
		ops.On("CertificateAlerts", mock.Anything, fixedNow).Return(alerts, nil).Once()
		email.On("SendCertificateNotice", mock.Anything, []string{"fleet@example.com"}, alerts).Return(nil).Once()

		require.NoError(t, jr.SendCertificateNotices())
		email.AssertExpectations(t)
	})

	t.Run("Nothing To Report", func(t *testing.T) {
		jr, ops, email := newRunner("fleet@example.com")
		ops.On("CertificateAlerts", mock.Anything, fixedNow).Return(nil, nil).Once()

		require.NoError(t, jr.SendCertificateNotices())
		email.AssertNotCalled(t, "SendCertificateNotice", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("No Recipients", func(t *testing.T) {
		jr, ops, email := newRunner()
		ops.On("CertificateAlerts", mock.Anything, fixedNow).Return(alerts, nil).Once()

		require.NoError(t, jr.SendCertificateNotices())
		email.AssertNotCalled(t, "SendCertificateNotice", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRunAll(t *testing.T) {
	jr, ops, email := newRunner("fleet@example.com")
	ops.On("RefreshCertificateStatuses", mock.Anything, fixedNow).Return(0, nil).Once()
	ops.On("CertificateAlerts", mock.Anything, fixedNow).Return(nil, nil).Once()

	require.NoError(t, jr.RunAll())
	ops.AssertExpectations(t)
	email.AssertExpectations(t)
}
