package service

import (
	"context"
	"fmt"
	"strings"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/logger"
	"martilhaven-backend/internal/repository"
	"martilhaven-backend/internal/utils"

	"github.com/google/uuid"
)

// notifier delivers in-app notifications and emails after a committed write. Failures are
// logged and never reach the caller.
type notifier struct {
	userRepo repository.UserRepository
	noteRepo repository.NotificationRepository
	emailSvc EmailService
	now      Clock
}

func (n *notifier) bookingRequested(ctx context.Context, p *domain.Property, b *domain.Booking) {
	if p.OwnerID == "" {
		return
	}
	owner, err := n.userRepo.GetByID(ctx, p.OwnerID)
	if err != nil {
		logger.WarnContext(ctx, "Owner lookup failed, skipping booking notification", "propertyID", p.ID, "error", err)
		return
	}

	n.push(ctx, owner.ID, "New Booking Request",
		fmt.Sprintf("%s requested %s from %s to %s", b.GuestName, p.Title, b.CheckIn.Format(utils.DateLayout), b.CheckOut.Format(utils.DateLayout)),
		map[string]string{
			"type":        "BOOKING_REQUEST",
			"booking_id":  b.ID,
			"property_id": p.ID,
		})

	if n.emailSvc == nil {
		return
	}
	if err := n.emailSvc.SendBookingRequestNotification(ctx, owner.Email, b.GuestName, p.Title, b.CheckIn, b.CheckOut); err != nil {
		logger.WarnContext(ctx, "Failed to send booking request email", "bookingID", b.ID, "error", err)
	}
}

func (n *notifier) bookingStatusChanged(ctx context.Context, p *domain.Property, b *domain.Booking) {
	if b.GuestID != "" {
		n.push(ctx, b.GuestID, "Booking "+titleCase(string(b.Status)),
			fmt.Sprintf("Your booking for %s is now %s", p.Title, b.Status),
			map[string]string{
				"type":       "BOOKING_" + strings.ToUpper(string(b.Status)),
				"booking_id": b.ID,
			})
	}

	if n.emailSvc == nil || b.GuestEmail == "" {
		return
	}
	if err := n.emailSvc.SendBookingStatusNotification(ctx, b.GuestEmail, b.GuestName, p.Title, b.Status); err != nil {
		logger.WarnContext(ctx, "Failed to send booking status email", "bookingID", b.ID, "status", b.Status, "error", err)
	}
}

func (n *notifier) push(ctx context.Context, userID, title, message string, attrs map[string]string) {
	note := &domain.Notification{
		ID:         uuid.NewString(),
		UserID:     userID,
		Title:      title,
		Message:    message,
		Attributes: attrs,
		CreatedAt:  n.now(),
	}
	if err := n.noteRepo.Create(ctx, note); err != nil {
		logger.WarnContext(ctx, "Failed to store notification", "userID", userID, "title", title, "error", err)
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
