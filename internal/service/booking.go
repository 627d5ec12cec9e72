package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/logger"
	"martilhaven-backend/internal/policy"
	"martilhaven-backend/internal/repository"
	"martilhaven-backend/internal/utils"

	"github.com/google/uuid"
)

type bookingService struct {
	bookingRepo  repository.BookingRepository
	propertyRepo repository.PropertyRepository
	locks        *ResourceLocker
	notify       *notifier
	now          Clock
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	propertyRepo repository.PropertyRepository,
	userRepo repository.UserRepository,
	noteRepo repository.NotificationRepository,
	emailSvc EmailService,
	locks *ResourceLocker,
) BookingService {
	return &bookingService{
		bookingRepo:  bookingRepo,
		propertyRepo: propertyRepo,
		locks:        locks,
		notify:       &notifier{userRepo: userRepo, noteRepo: noteRepo, emailSvc: emailSvc, now: utcNow},
		now:          utcNow,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, actor domain.Actor, in BookingInput) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.CreateBooking", "propertyID", in.PropertyID, "actorID", actor.ID)

	b := &domain.Booking{
		PropertyID: in.PropertyID,
		GuestName:  strings.TrimSpace(in.GuestName),
		GuestEmail: strings.TrimSpace(in.GuestEmail),
		CheckIn:    policy.Day(in.CheckIn),
		CheckOut:   policy.Day(in.CheckOut),
		Guests:     in.Guests,
		Notes:      in.Notes,
		Status:     domain.BookingStatusPending,
	}
	if !actor.Role.Privileged() {
		b.GuestID = actor.ID
	}
	if err := validateBookingFields(b); err != nil {
		logger.ExitMethodWithError("bookingService.CreateBooking", err)
		return nil, err
	}

	unlock := s.locks.Lock(propertyKey(in.PropertyID))
	defer unlock()

	property, err := s.bookableProperty(ctx, in.PropertyID)
	if err != nil {
		logger.ExitMethodWithError("bookingService.CreateBooking", err)
		return nil, err
	}
	if err := s.checkFits(ctx, property, b); err != nil {
		logger.ExitMethodWithError("bookingService.CreateBooking", err)
		return nil, err
	}

	now := s.now()
	b.ID = uuid.NewString()
	b.CreatedAt = now
	b.UpdatedAt = now
	b.UpdatedBy = actor.ID

	if err := s.bookingRepo.Create(ctx, b); err != nil {
		logger.ExitMethodWithError("bookingService.CreateBooking", err)
		return nil, err
	}

	s.notify.bookingRequested(ctx, property, b)

	logger.ExitMethod("bookingService.CreateBooking", "bookingID", b.ID)
	return b, nil
}

func (s *bookingService) GetBooking(ctx context.Context, actor domain.Actor, id string) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role.Privileged() || (b.GuestID != "" && b.GuestID == actor.ID) {
		return b, nil
	}
	p, err := s.propertyRepo.GetByID(ctx, b.PropertyID)
	if err != nil {
		return nil, err
	}
	if !canSeeBooking(actor, b, p) {
		return nil, domain.NewForbiddenError("booking belongs to another guest")
	}
	return b, nil
}

func (s *bookingService) ListBookings(ctx context.Context, filter repository.BookingFilter) ([]domain.Booking, error) {
	return s.bookingRepo.List(ctx, filter)
}

func (s *bookingService) UpdateBooking(ctx context.Context, actor domain.Actor, id string, in BookingUpdate) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.UpdateBooking", "bookingID", id, "actorID", actor.ID)

	b, p, unlock, err := s.lockBooking(ctx, actor, id)
	if err != nil {
		logger.ExitMethodWithError("bookingService.UpdateBooking", err)
		return nil, err
	}
	defer unlock()

	if b.Status.Terminal() {
		err := &domain.Error{Kind: domain.ErrorKindInvalidTransition, Message: fmt.Sprintf("booking %s is %s and can no longer be edited", b.ID, b.Status)}
		logger.ExitMethodWithError("bookingService.UpdateBooking", err)
		return nil, err
	}

	windowChanged := false
	if in.GuestName != nil {
		b.GuestName = strings.TrimSpace(*in.GuestName)
	}
	if in.GuestEmail != nil {
		b.GuestEmail = strings.TrimSpace(*in.GuestEmail)
	}
	if in.CheckIn != nil && !policy.Day(*in.CheckIn).Equal(b.CheckIn) {
		b.CheckIn = policy.Day(*in.CheckIn)
		windowChanged = true
	}
	if in.CheckOut != nil && !policy.Day(*in.CheckOut).Equal(b.CheckOut) {
		b.CheckOut = policy.Day(*in.CheckOut)
		windowChanged = true
	}
	if in.Guests != nil {
		b.Guests = *in.Guests
	}
	if in.Notes != nil {
		b.Notes = *in.Notes
	}
	if err := validateBookingFields(b); err != nil {
		logger.ExitMethodWithError("bookingService.UpdateBooking", err)
		return nil, err
	}

	if windowChanged || in.Guests != nil {
		if err := s.checkFits(ctx, p, b); err != nil {
			logger.ExitMethodWithError("bookingService.UpdateBooking", err)
			return nil, err
		}
	}

	b.UpdatedAt = s.now()
	b.UpdatedBy = actor.ID
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		logger.ExitMethodWithError("bookingService.UpdateBooking", err)
		return nil, err
	}

	logger.ExitMethod("bookingService.UpdateBooking", "bookingID", b.ID)
	return b, nil
}

func (s *bookingService) TransitionBooking(ctx context.Context, actor domain.Actor, id string, target domain.BookingStatus) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.TransitionBooking", "bookingID", id, "target", target, "actorID", actor.ID)

	if !target.Valid() {
		err := domain.NewValidationError("unknown booking status %q", target)
		logger.ExitMethodWithError("bookingService.TransitionBooking", err)
		return nil, err
	}

	b, p, unlock, err := s.lockBooking(ctx, actor, id)
	if err != nil {
		logger.ExitMethodWithError("bookingService.TransitionBooking", err)
		return nil, err
	}
	defer unlock()

	// Only cancelling is open to the guest; everything else is a listing decision.
	if target != domain.BookingStatusCancelled && !canManageProperty(actor, p) {
		err := domain.NewForbiddenError("only the property owner or staff can change this booking")
		logger.ExitMethodWithError("bookingService.TransitionBooking", err)
		return nil, err
	}

	if b.Status == domain.BookingStatusCancelled && target == domain.BookingStatusCancelled {
		logger.ExitMethod("bookingService.TransitionBooking", "bookingID", b.ID, "idempotent", true)
		return b, nil
	}
	if !policy.CanTransitionBooking(b.Status, target) {
		err := domain.NewInvalidTransitionError("booking", b.Status, target)
		logger.ExitMethodWithError("bookingService.TransitionBooking", err)
		return nil, err
	}

	b.Status = target
	b.UpdatedAt = s.now()
	b.UpdatedBy = actor.ID
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		logger.ExitMethodWithError("bookingService.TransitionBooking", err)
		return nil, err
	}

	s.notify.bookingStatusChanged(ctx, p, b)

	logger.ExitMethod("bookingService.TransitionBooking", "bookingID", b.ID, "status", b.Status)
	return b, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, actor domain.Actor, id string) (*domain.Booking, error) {
	return s.TransitionBooking(ctx, actor, id, domain.BookingStatusCancelled)
}

// lockBooking takes the property lock of a booking and returns a fresh copy read under it.
func (s *bookingService) lockBooking(ctx context.Context, actor domain.Actor, id string) (*domain.Booking, *domain.Property, func(), error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	unlock := s.locks.Lock(propertyKey(b.PropertyID))

	b, err = s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		unlock()
		return nil, nil, nil, err
	}
	p, err := s.propertyRepo.GetByID(ctx, b.PropertyID)
	if err != nil {
		unlock()
		return nil, nil, nil, err
	}
	if !canSeeBooking(actor, b, p) {
		unlock()
		return nil, nil, nil, domain.NewForbiddenError("booking belongs to another guest")
	}
	return b, p, unlock, nil
}

// bookableProperty loads the property a booking refers to. A missing or rejected
// property is an input problem for the caller.
func (s *bookingService) bookableProperty(ctx context.Context, id string) (*domain.Property, error) {
	p, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		if domain.IsKind(err, domain.ErrorKindNotFound) {
			return nil, domain.NewValidationError("property %s does not exist", id)
		}
		return nil, err
	}
	if p.Status == domain.PropertyStatusRejected {
		return nil, domain.NewValidationError("property %s is not accepting bookings", id)
	}
	return p, nil
}

// checkFits verifies capacity and availability and prices the stay. Callers hold the
// property lock.
func (s *bookingService) checkFits(ctx context.Context, p *domain.Property, b *domain.Booking) error {
	if p.MaxGuests > 0 && b.Guests > p.MaxGuests {
		return domain.NewValidationError("property %s accepts at most %d guests", p.ID, p.MaxGuests)
	}

	holding, err := s.bookingRepo.List(ctx, repository.BookingFilter{
		PropertyID: p.ID,
		Statuses:   []domain.BookingStatus{domain.BookingStatusPending, domain.BookingStatusConfirmed},
	})
	if err != nil {
		return err
	}
	window := b.Window()
	for _, other := range holding {
		if other.ID == b.ID {
			continue
		}
		if policy.Overlaps(window, other.Window()) {
			return domain.NewConflictError("property %s is already booked from %s to %s",
				p.ID, other.CheckIn.Format(utils.DateLayout), other.CheckOut.Format(utils.DateLayout))
		}
	}

	cost, err := utils.CalculateBookingCost(b.CheckIn, b.CheckOut, p.Price)
	if err != nil {
		return domain.NewValidationError("%v", err)
	}
	b.TotalPrice = cost.Total
	return nil
}

func validateBookingFields(b *domain.Booking) error {
	if b.PropertyID == "" {
		return domain.NewValidationError("property id is required")
	}
	if b.GuestName == "" {
		return domain.NewValidationError("guest name is required")
	}
	if err := validate.Var(b.GuestEmail, "required,email"); err != nil {
		return domain.NewValidationError("guest email %q is invalid", b.GuestEmail)
	}
	if b.Guests < 1 {
		return domain.NewValidationError("at least one guest is required")
	}
	if b.CheckIn.IsZero() || b.CheckOut.IsZero() {
		return domain.NewValidationError("check-in and check-out dates are required")
	}
	return policy.ValidateWindow(domain.Window{Start: b.CheckIn, End: timePtr(b.CheckOut)}, false)
}

func timePtr(t time.Time) *time.Time { return &t }
