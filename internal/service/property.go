package service

import (
	"context"
	"strings"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/logger"
	"martilhaven-backend/internal/policy"
	"martilhaven-backend/internal/repository"

	"github.com/google/uuid"
)

type propertyService struct {
	propertyRepo repository.PropertyRepository
	bookingRepo  repository.BookingRepository
	locks        *ResourceLocker
	now          Clock
}

func NewPropertyService(propertyRepo repository.PropertyRepository, bookingRepo repository.BookingRepository, locks *ResourceLocker) PropertyService {
	return &propertyService{
		propertyRepo: propertyRepo,
		bookingRepo:  bookingRepo,
		locks:        locks,
		now:          utcNow,
	}
}

func (s *propertyService) CreateProperty(ctx context.Context, actor domain.Actor, in PropertyInput) (*domain.Property, error) {
	logger.EnterMethod("propertyService.CreateProperty", "actorID", actor.ID, "title", in.Title)

	now := s.now()
	p := &domain.Property{
		ID:        uuid.NewString(),
		Status:    domain.PropertyStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyPropertyInput(p, actor, in)
	// Listings submitted by owners wait for review; staff listings go live immediately.
	if actor.Role.Privileged() {
		p.Status = domain.PropertyStatusApproved
		p.OwnerID = in.OwnerID
	} else {
		p.OwnerID = actor.ID
	}
	if err := validateProperty(p); err != nil {
		logger.ExitMethodWithError("propertyService.CreateProperty", err)
		return nil, err
	}

	if err := s.propertyRepo.Create(ctx, p); err != nil {
		logger.ExitMethodWithError("propertyService.CreateProperty", err)
		return nil, err
	}

	logger.ExitMethod("propertyService.CreateProperty", "propertyID", p.ID, "status", p.Status)
	return p, nil
}

func (s *propertyService) GetProperty(ctx context.Context, id string) (*domain.Property, error) {
	return s.propertyRepo.GetByID(ctx, id)
}

func (s *propertyService) UpdateProperty(ctx context.Context, actor domain.Actor, id string, in PropertyInput) (*domain.Property, error) {
	logger.EnterMethod("propertyService.UpdateProperty", "propertyID", id, "actorID", actor.ID)

	unlock := s.locks.Lock(propertyKey(id))
	defer unlock()

	p, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("propertyService.UpdateProperty", err)
		return nil, err
	}
	if !canManageProperty(actor, p) {
		err := domain.NewForbiddenError("property belongs to another owner")
		logger.ExitMethodWithError("propertyService.UpdateProperty", err)
		return nil, err
	}

	applyPropertyInput(p, actor, in)
	if actor.Role == domain.RoleAdmin && in.OwnerID != "" {
		p.OwnerID = in.OwnerID
	}
	if err := validateProperty(p); err != nil {
		logger.ExitMethodWithError("propertyService.UpdateProperty", err)
		return nil, err
	}

	p.UpdatedAt = s.now()
	if err := s.propertyRepo.Update(ctx, p); err != nil {
		logger.ExitMethodWithError("propertyService.UpdateProperty", err)
		return nil, err
	}

	logger.ExitMethod("propertyService.UpdateProperty", "propertyID", p.ID)
	return p, nil
}

func (s *propertyService) TransitionProperty(ctx context.Context, actor domain.Actor, id string, target domain.PropertyStatus) (*domain.Property, error) {
	logger.EnterMethod("propertyService.TransitionProperty", "propertyID", id, "target", target, "actorID", actor.ID)

	if !target.Valid() {
		err := domain.NewValidationError("unknown property status %q", target)
		logger.ExitMethodWithError("propertyService.TransitionProperty", err)
		return nil, err
	}

	unlock := s.locks.Lock(propertyKey(id))
	defer unlock()

	p, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("propertyService.TransitionProperty", err)
		return nil, err
	}
	if !policy.CanTransitionProperty(p.Status, target) {
		err := domain.NewInvalidTransitionError("property", p.Status, target)
		logger.ExitMethodWithError("propertyService.TransitionProperty", err)
		return nil, err
	}
	if target == domain.PropertyStatusRejected {
		if err := s.ensureNoHoldingBookings(ctx, p.ID, "rejected"); err != nil {
			logger.ExitMethodWithError("propertyService.TransitionProperty", err)
			return nil, err
		}
	}

	p.Status = target
	p.UpdatedAt = s.now()
	if err := s.propertyRepo.Update(ctx, p); err != nil {
		logger.ExitMethodWithError("propertyService.TransitionProperty", err)
		return nil, err
	}

	logger.ExitMethod("propertyService.TransitionProperty", "propertyID", p.ID, "status", p.Status)
	return p, nil
}

func (s *propertyService) DeleteProperty(ctx context.Context, actor domain.Actor, id string) error {
	logger.EnterMethod("propertyService.DeleteProperty", "propertyID", id, "actorID", actor.ID)

	unlock := s.locks.Lock(propertyKey(id))
	defer unlock()

	p, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("propertyService.DeleteProperty", err)
		return err
	}
	if !canManageProperty(actor, p) {
		err := domain.NewForbiddenError("property belongs to another owner")
		logger.ExitMethodWithError("propertyService.DeleteProperty", err)
		return err
	}
	if err := s.ensureNoHoldingBookings(ctx, p.ID, "deleted"); err != nil {
		logger.ExitMethodWithError("propertyService.DeleteProperty", err)
		return err
	}

	if err := s.propertyRepo.Delete(ctx, p.ID); err != nil {
		logger.ExitMethodWithError("propertyService.DeleteProperty", err)
		return err
	}

	logger.ExitMethod("propertyService.DeleteProperty", "propertyID", p.ID)
	return nil
}

func (s *propertyService) ListProperties(ctx context.Context, filter repository.PropertyFilter) ([]domain.Property, error) {
	return s.propertyRepo.List(ctx, filter)
}

func (s *propertyService) ensureNoHoldingBookings(ctx context.Context, propertyID, action string) error {
	holding, err := s.bookingRepo.List(ctx, repository.BookingFilter{
		PropertyID: propertyID,
		Statuses:   []domain.BookingStatus{domain.BookingStatusPending, domain.BookingStatusConfirmed},
	})
	if err != nil {
		return err
	}
	if len(holding) > 0 {
		return domain.NewConflictError("property %s has %d open bookings and cannot be %s", propertyID, len(holding), action)
	}
	return nil
}

func applyPropertyInput(p *domain.Property, actor domain.Actor, in PropertyInput) {
	p.Title = strings.TrimSpace(in.Title)
	p.Description = in.Description
	p.Price = in.Price
	p.Location = in.Location
	p.City = strings.TrimSpace(in.City)
	p.Bedrooms = in.Bedrooms
	p.Bathrooms = in.Bathrooms
	p.MaxGuests = in.MaxGuests
	p.ImageURL = in.ImageURL
	p.Amenities = append([]string(nil), in.Amenities...)
	if p.Amenities == nil {
		p.Amenities = []string{}
	}
	// Curation fields stay with staff.
	if actor.Role.Privileged() {
		p.Rating = in.Rating
		p.Featured = in.Featured
	}
}

func validateProperty(p *domain.Property) error {
	switch {
	case p.Title == "":
		return domain.NewValidationError("title is required")
	case p.Price.IsNegative():
		return domain.NewValidationError("price must not be negative")
	case p.Bedrooms < 0 || p.Bathrooms < 0 || p.MaxGuests < 0:
		return domain.NewValidationError("room and guest counts must not be negative")
	case p.Rating < 0 || p.Rating > 5:
		return domain.NewValidationError("rating must be between 0 and 5")
	}
	return nil
}
