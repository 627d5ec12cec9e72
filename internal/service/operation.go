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

type operationService struct {
	operationRepo repository.OperationRepository
	forkliftRepo  repository.ForkliftRepository
	operatorRepo  repository.OperatorRepository
	locks         *ResourceLocker
	now           Clock
}

func NewOperationService(
	operationRepo repository.OperationRepository,
	forkliftRepo repository.ForkliftRepository,
	operatorRepo repository.OperatorRepository,
	locks *ResourceLocker,
) OperationService {
	return &operationService{
		operationRepo: operationRepo,
		forkliftRepo:  forkliftRepo,
		operatorRepo:  operatorRepo,
		locks:         locks,
		now:           utcNow,
	}
}

func (s *operationService) CreateOperation(ctx context.Context, actor domain.Actor, in OperationInput) (*domain.Operation, error) {
	logger.EnterMethod("operationService.CreateOperation", "forkliftID", in.ForkliftID, "operatorID", in.OperatorID, "actorID", actor.ID)

	now := s.now()
	o := &domain.Operation{
		ForkliftID:       in.ForkliftID,
		OperatorID:       in.OperatorID,
		Sector:           strings.TrimSpace(in.Sector),
		InitialHourMeter: in.InitialHourMeter,
		CurrentHourMeter: in.InitialHourMeter,
		GasConsumption:   in.GasConsumption,
		StartTime:        in.StartTime,
		EndTime:          in.EndTime,
		Status:           domain.OperationStatusActive,
		Notes:            in.Notes,
	}
	if o.StartTime.IsZero() {
		o.StartTime = now
	}
	if err := validateOperation(o); err != nil {
		logger.ExitMethodWithError("operationService.CreateOperation", err)
		return nil, err
	}

	unlock := s.locks.Lock(forkliftKey(in.ForkliftID))
	defer unlock()

	forklift, err := s.usableForklift(ctx, in.ForkliftID)
	if err != nil {
		logger.ExitMethodWithError("operationService.CreateOperation", err)
		return nil, err
	}
	if o.InitialHourMeter < forklift.HourMeter {
		err := domain.NewValidationError("initial hour meter %.1f is below the forklift reading %.1f", o.InitialHourMeter, forklift.HourMeter)
		logger.ExitMethodWithError("operationService.CreateOperation", err)
		return nil, err
	}
	if err := s.activeOperator(ctx, in.OperatorID); err != nil {
		logger.ExitMethodWithError("operationService.CreateOperation", err)
		return nil, err
	}
	if err := s.checkAvailable(ctx, o); err != nil {
		logger.ExitMethodWithError("operationService.CreateOperation", err)
		return nil, err
	}

	o.ID = uuid.NewString()
	o.CreatedAt = now
	o.UpdatedAt = now
	o.UpdatedBy = actor.ID
	if err := s.operationRepo.Create(ctx, o); err != nil {
		logger.ExitMethodWithError("operationService.CreateOperation", err)
		return nil, err
	}

	deriveOperation(o, now)
	logger.ExitMethod("operationService.CreateOperation", "operationID", o.ID)
	return o, nil
}

func (s *operationService) GetOperation(ctx context.Context, id string) (*domain.Operation, error) {
	o, err := s.operationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	deriveOperation(o, s.now())
	return o, nil
}

func (s *operationService) ListOperations(ctx context.Context, filter repository.OperationFilter) ([]domain.Operation, error) {
	operations, err := s.operationRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range operations {
		deriveOperation(&operations[i], now)
	}
	return operations, nil
}

func (s *operationService) UpdateOperation(ctx context.Context, actor domain.Actor, id string, in OperationUpdate) (*domain.Operation, error) {
	logger.EnterMethod("operationService.UpdateOperation", "operationID", id, "actorID", actor.ID)

	o, unlock, err := s.lockOperation(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("operationService.UpdateOperation", err)
		return nil, err
	}
	defer unlock()

	if o.Status.Terminal() {
		err := &domain.Error{Kind: domain.ErrorKindInvalidTransition, Message: fmt.Sprintf("operation %s is %s and can no longer be edited", o.ID, o.Status)}
		logger.ExitMethodWithError("operationService.UpdateOperation", err)
		return nil, err
	}

	windowChanged := false
	if in.Sector != nil {
		o.Sector = strings.TrimSpace(*in.Sector)
	}
	if in.CurrentHourMeter != nil {
		o.CurrentHourMeter = *in.CurrentHourMeter
	}
	if in.GasConsumption != nil {
		gas := *in.GasConsumption
		o.GasConsumption = &gas
	}
	if in.StartTime != nil && !in.StartTime.Equal(o.StartTime) {
		o.StartTime = *in.StartTime
		windowChanged = true
	}
	if in.EndTime != nil {
		end := *in.EndTime
		o.EndTime = &end
		windowChanged = true
	}
	if in.Notes != nil {
		o.Notes = *in.Notes
	}
	if err := validateOperation(o); err != nil {
		logger.ExitMethodWithError("operationService.UpdateOperation", err)
		return nil, err
	}
	if windowChanged {
		if err := s.checkAvailable(ctx, o); err != nil {
			logger.ExitMethodWithError("operationService.UpdateOperation", err)
			return nil, err
		}
	}

	o.UpdatedAt = s.now()
	o.UpdatedBy = actor.ID
	if err := s.operationRepo.Update(ctx, o); err != nil {
		logger.ExitMethodWithError("operationService.UpdateOperation", err)
		return nil, err
	}

	deriveOperation(o, o.UpdatedAt)
	logger.ExitMethod("operationService.UpdateOperation", "operationID", o.ID)
	return o, nil
}

func (s *operationService) TransitionOperation(ctx context.Context, actor domain.Actor, id string, target domain.OperationStatus, reading domain.MeterReading) (*domain.Operation, error) {
	logger.EnterMethod("operationService.TransitionOperation", "operationID", id, "target", target, "actorID", actor.ID)

	if !target.Valid() {
		err := domain.NewValidationError("unknown operation status %q", target)
		logger.ExitMethodWithError("operationService.TransitionOperation", err)
		return nil, err
	}

	o, unlock, err := s.lockOperation(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("operationService.TransitionOperation", err)
		return nil, err
	}
	defer unlock()

	if !policy.CanTransitionOperation(o.Status, target) {
		err := domain.NewInvalidTransitionError("operation", o.Status, target)
		logger.ExitMethodWithError("operationService.TransitionOperation", err)
		return nil, err
	}

	now := s.now()
	if target == domain.OperationStatusCompleted {
		if err := completeOperation(o, reading, now); err != nil {
			logger.ExitMethodWithError("operationService.TransitionOperation", err)
			return nil, err
		}
	}
	o.Status = target
	o.UpdatedAt = now
	o.UpdatedBy = actor.ID
	if err := s.operationRepo.Update(ctx, o); err != nil {
		logger.ExitMethodWithError("operationService.TransitionOperation", err)
		return nil, err
	}

	if target == domain.OperationStatusCompleted {
		s.advanceHourMeter(ctx, o, now)
	}

	deriveOperation(o, now)
	logger.ExitMethod("operationService.TransitionOperation", "operationID", o.ID, "status", o.Status)
	return o, nil
}

func (s *operationService) CompleteOperation(ctx context.Context, actor domain.Actor, id string, reading domain.MeterReading) (*domain.Operation, error) {
	return s.TransitionOperation(ctx, actor, id, domain.OperationStatusCompleted, reading)
}

// deriveOperation fills the read-only fields of an operation: elapsed time (ongoing while no end is
// recorded), hours used and fuel per hour.
func deriveOperation(o *domain.Operation, now time.Time) {
	d := policy.MeasureDuration(o.StartTime, o.EndTime, now)
	o.Duration = &d
	o.HoursUsed = utils.HoursUsed(o.InitialHourMeter, o.CurrentHourMeter)
	o.FuelPerHour = utils.FuelPerHour(o.GasConsumption, o.InitialHourMeter, o.CurrentHourMeter)
}

// completeOperation records the final reading and freezes the end of the shift at now.
func completeOperation(o *domain.Operation, reading domain.MeterReading, now time.Time) error {
	if reading.CurrentHourMeter != nil {
		o.CurrentHourMeter = *reading.CurrentHourMeter
	}
	if reading.GasConsumption != nil {
		gas := *reading.GasConsumption
		o.GasConsumption = &gas
	}
	if o.CurrentHourMeter < o.InitialHourMeter {
		return domain.NewValidationError("current hour meter %.1f is below the initial reading %.1f", o.CurrentHourMeter, o.InitialHourMeter)
	}
	if o.GasConsumption != nil && *o.GasConsumption < 0 {
		return domain.NewValidationError("gas consumption must not be negative")
	}
	if !o.StartTime.Before(now) {
		return domain.NewValidationError("operation %s has not started yet", o.ID)
	}
	end := now
	o.EndTime = &end
	return nil
}

// advanceHourMeter carries the final reading over to the forklift. The operation is
// already committed, so a failure here is logged rather than returned.
func (s *operationService) advanceHourMeter(ctx context.Context, o *domain.Operation, now time.Time) {
	f, err := s.forkliftRepo.GetByID(ctx, o.ForkliftID)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load forklift after completing operation", "operationID", o.ID, "forkliftID", o.ForkliftID, "error", err)
		return
	}
	if o.CurrentHourMeter <= f.HourMeter {
		return
	}
	f.HourMeter = o.CurrentHourMeter
	f.UpdatedAt = now
	if err := s.forkliftRepo.Update(ctx, f); err != nil {
		logger.ErrorContext(ctx, "Failed to advance forklift hour meter", "operationID", o.ID, "forkliftID", f.ID, "error", err)
	}
}

func (s *operationService) lockOperation(ctx context.Context, id string) (*domain.Operation, func(), error) {
	o, err := s.operationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	unlock := s.locks.Lock(forkliftKey(o.ForkliftID))
	o, err = s.operationRepo.GetByID(ctx, id)
	if err != nil {
		unlock()
		return nil, nil, err
	}
	return o, unlock, nil
}

func (s *operationService) usableForklift(ctx context.Context, id string) (*domain.Forklift, error) {
	f, err := s.forkliftRepo.GetByID(ctx, id)
	if err != nil {
		if domain.IsKind(err, domain.ErrorKindNotFound) {
			return nil, domain.NewValidationError("forklift %s does not exist", id)
		}
		return nil, err
	}
	if f.Status != domain.ForkliftStatusOperational {
		return nil, domain.NewValidationError("forklift %s is %s", f.Code, f.Status)
	}
	return f, nil
}

func (s *operationService) activeOperator(ctx context.Context, id string) error {
	op, err := s.operatorRepo.GetByID(ctx, id)
	if err != nil {
		if domain.IsKind(err, domain.ErrorKindNotFound) {
			return domain.NewValidationError("operator %s does not exist", id)
		}
		return err
	}
	if op.Status != domain.UserStatusActive {
		return domain.NewValidationError("operator %s is inactive", op.Registration)
	}
	return nil
}

// checkAvailable rejects a window that overlaps another active operation on the same
// forklift. Callers hold the forklift lock.
func (s *operationService) checkAvailable(ctx context.Context, o *domain.Operation) error {
	active, err := s.operationRepo.List(ctx, repository.OperationFilter{
		ForkliftID: o.ForkliftID,
		Statuses:   []domain.OperationStatus{domain.OperationStatusActive},
	})
	if err != nil {
		return err
	}
	window := o.Window()
	for _, other := range active {
		if other.ID == o.ID {
			continue
		}
		if policy.Overlaps(window, other.Window()) {
			return domain.NewConflictError("forklift %s is already in operation %s", o.ForkliftID, other.ID)
		}
	}
	return nil
}

func validateOperation(o *domain.Operation) error {
	switch {
	case o.ForkliftID == "":
		return domain.NewValidationError("forklift id is required")
	case o.OperatorID == "":
		return domain.NewValidationError("operator id is required")
	case o.InitialHourMeter < 0:
		return domain.NewValidationError("initial hour meter must not be negative")
	case o.CurrentHourMeter < o.InitialHourMeter:
		return domain.NewValidationError("current hour meter %.1f is below the initial reading %.1f", o.CurrentHourMeter, o.InitialHourMeter)
	case o.GasConsumption != nil && *o.GasConsumption < 0:
		return domain.NewValidationError("gas consumption must not be negative")
	}
	return policy.ValidateWindow(o.Window(), true)
}
