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

type forkliftService struct {
	forkliftRepo  repository.ForkliftRepository
	operationRepo repository.OperationRepository
	locks         *ResourceLocker
	now           Clock
}

func NewForkliftService(forkliftRepo repository.ForkliftRepository, operationRepo repository.OperationRepository, locks *ResourceLocker) ForkliftService {
	return &forkliftService{
		forkliftRepo:  forkliftRepo,
		operationRepo: operationRepo,
		locks:         locks,
		now:           utcNow,
	}
}

func (s *forkliftService) CreateForklift(ctx context.Context, in ForkliftInput) (*domain.Forklift, error) {
	now := s.now()
	f := &domain.Forklift{
		ID:        uuid.NewString(),
		Status:    in.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if f.Status == "" {
		f.Status = domain.ForkliftStatusOperational
	}
	applyForkliftInput(f, in)
	f.HourMeter = in.HourMeter
	if err := validateForklift(f); err != nil {
		return nil, err
	}

	if err := s.forkliftRepo.Create(ctx, f); err != nil {
		return nil, err
	}
	logger.Info("Forklift registered", "forkliftID", f.ID, "code", f.Code)
	return f, nil
}

func (s *forkliftService) GetForklift(ctx context.Context, id string) (*domain.Forklift, error) {
	return s.forkliftRepo.GetByID(ctx, id)
}

func (s *forkliftService) UpdateForklift(ctx context.Context, id string, in ForkliftInput) (*domain.Forklift, error) {
	unlock := s.locks.Lock(forkliftKey(id))
	defer unlock()

	f, err := s.forkliftRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyForkliftInput(f, in)
	if in.HourMeter < f.HourMeter {
		return nil, domain.NewValidationError("hour meter cannot go back from %.1f to %.1f", f.HourMeter, in.HourMeter)
	}
	f.HourMeter = in.HourMeter
	if err := validateForklift(f); err != nil {
		return nil, err
	}

	f.UpdatedAt = s.now()
	if err := s.forkliftRepo.Update(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *forkliftService) TransitionForklift(ctx context.Context, id string, target domain.ForkliftStatus) (*domain.Forklift, error) {
	logger.EnterMethod("forkliftService.TransitionForklift", "forkliftID", id, "target", target)

	if !target.Valid() {
		err := domain.NewValidationError("unknown forklift status %q", target)
		logger.ExitMethodWithError("forkliftService.TransitionForklift", err)
		return nil, err
	}

	unlock := s.locks.Lock(forkliftKey(id))
	defer unlock()

	f, err := s.forkliftRepo.GetByID(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("forkliftService.TransitionForklift", err)
		return nil, err
	}
	if !policy.CanTransitionForklift(f.Status, target) {
		err := domain.NewInvalidTransitionError("forklift", f.Status, target)
		logger.ExitMethodWithError("forkliftService.TransitionForklift", err)
		return nil, err
	}
	if f.Status == domain.ForkliftStatusOperational {
		if err := s.ensureIdle(ctx, f.ID, "taken out of service"); err != nil {
			logger.ExitMethodWithError("forkliftService.TransitionForklift", err)
			return nil, err
		}
	}

	now := s.now()
	if target == domain.ForkliftStatusMaintenance {
		day := policy.Day(now)
		f.LastMaintenance = &day
	}
	f.Status = target
	f.UpdatedAt = now
	if err := s.forkliftRepo.Update(ctx, f); err != nil {
		logger.ExitMethodWithError("forkliftService.TransitionForklift", err)
		return nil, err
	}

	logger.ExitMethod("forkliftService.TransitionForklift", "forkliftID", f.ID, "status", f.Status)
	return f, nil
}

func (s *forkliftService) DeleteForklift(ctx context.Context, id string) error {
	unlock := s.locks.Lock(forkliftKey(id))
	defer unlock()

	if _, err := s.forkliftRepo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.ensureIdle(ctx, id, "deleted"); err != nil {
		return err
	}
	return s.forkliftRepo.Delete(ctx, id)
}

func (s *forkliftService) ListForklifts(ctx context.Context, filter repository.ForkliftFilter) ([]domain.Forklift, error) {
	return s.forkliftRepo.List(ctx, filter)
}

func (s *forkliftService) ensureIdle(ctx context.Context, forkliftID, action string) error {
	active, err := s.operationRepo.List(ctx, repository.OperationFilter{
		ForkliftID: forkliftID,
		Statuses:   []domain.OperationStatus{domain.OperationStatusActive},
	})
	if err != nil {
		return err
	}
	if len(active) > 0 {
		return domain.NewConflictError("forklift %s has an active operation and cannot be %s", forkliftID, action)
	}
	return nil
}

func applyForkliftInput(f *domain.Forklift, in ForkliftInput) {
	f.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	f.Model = strings.TrimSpace(in.Model)
	f.Type = in.Type
	f.CapacityKg = in.CapacityKg
	if in.LastMaintenance != nil {
		day := policy.Day(*in.LastMaintenance)
		f.LastMaintenance = &day
	}
}

func validateForklift(f *domain.Forklift) error {
	switch {
	case f.Code == "":
		return domain.NewValidationError("code is required")
	case f.Model == "":
		return domain.NewValidationError("model is required")
	case !f.Type.Valid():
		return domain.NewValidationError("unknown forklift type %q", f.Type)
	case f.CapacityKg <= 0:
		return domain.NewValidationError("capacity must be positive")
	case f.HourMeter < 0:
		return domain.NewValidationError("hour meter must not be negative")
	case !f.Status.Valid():
		return domain.NewValidationError("unknown forklift status %q", f.Status)
	}
	return nil
}
