package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/utils"
)

const signature = "\n\nBest regards,\nThe MartilHaven Team"

type emailService struct {
	mailer Mailer
}

func NewEmailService(mailer Mailer) EmailService {
	return &emailService{mailer: mailer}
}

func (s *emailService) SendBookingRequestNotification(ctx context.Context, ownerEmail, guestName, propertyTitle string, checkIn, checkOut time.Time) error {
	body := fmt.Sprintf("Hello,\n\n%s has requested to stay at %s from %s to %s.\n\nPlease log in to confirm or decline the booking.",
		guestName, propertyTitle, checkIn.Format(utils.DateLayout), checkOut.Format(utils.DateLayout))
	return s.mailer.Send(ctx, EmailMessage{
		To:      []string{ownerEmail},
		Subject: fmt.Sprintf("New Booking Request: %s", propertyTitle),
		Body:    body + signature,
	})
}

func (s *emailService) SendBookingStatusNotification(ctx context.Context, guestEmail, guestName, propertyTitle string, status domain.BookingStatus) error {
	body := fmt.Sprintf("Hello %s,\n\nYour booking at %s is now %s.", guestName, propertyTitle, status)
	return s.mailer.Send(ctx, EmailMessage{
		To:      []string{guestEmail},
		Subject: fmt.Sprintf("Booking %s - %s", titleCase(string(status)), propertyTitle),
		Body:    body + signature,
	})
}

func (s *emailService) SendCertificateNotice(ctx context.Context, recipients []string, operators []domain.Operator) error {
	if len(recipients) == 0 || len(operators) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("Hello,\n\nThe following operators have certificates that need attention:\n\n")
	for _, o := range operators {
		fmt.Fprintf(&b, "- %s (%s): ASO %s until %s, NR-11 %s until %s\n",
			o.Name, o.Registration,
			o.ASOStatus, o.ASOExpirationDate.Format(utils.DateLayout),
			o.NRStatus, o.NRExpirationDate.Format(utils.DateLayout))
	}
	return s.mailer.Send(ctx, EmailMessage{
		To:      recipients,
		Subject: fmt.Sprintf("Operator certificates: %d need attention", len(operators)),
		Body:    b.String() + signature,
	})
}

func (s *emailService) SendAdminNotification(ctx context.Context, adminEmail, subject, message string) error {
	return s.mailer.Send(ctx, EmailMessage{
		To:      []string{adminEmail},
		Subject: subject,
		Body:    message + signature,
	})
}
