package service

import (
	"context"
	"strings"
	"time"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/logger"
	"martilhaven-backend/internal/policy"
	"martilhaven-backend/internal/repository"

	"github.com/google/uuid"
)

type operatorService struct {
	operatorRepo  repository.OperatorRepository
	operationRepo repository.OperationRepository
	now           Clock
}

func NewOperatorService(operatorRepo repository.OperatorRepository, operationRepo repository.OperationRepository) OperatorService {
	return &operatorService{
		operatorRepo:  operatorRepo,
		operationRepo: operationRepo,
		now:           utcNow,
	}
}

func (s *operatorService) CreateOperator(ctx context.Context, in OperatorInput) (*domain.Operator, error) {
	now := s.now()
	o := &domain.Operator{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyOperatorInput(o, in)
	if err := validateOperator(o); err != nil {
		return nil, err
	}
	policy.ApplyCertificateStatuses(o, now)

	if err := s.operatorRepo.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// GetOperator returns the operator with certificate statuses recomputed for today.
func (s *operatorService) GetOperator(ctx context.Context, id string) (*domain.Operator, error) {
	o, err := s.operatorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	policy.ApplyCertificateStatuses(o, s.now())
	return o, nil
}

func (s *operatorService) UpdateOperator(ctx context.Context, id string, in OperatorInput) (*domain.Operator, error) {
	o, err := s.operatorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyOperatorInput(o, in)
	if err := validateOperator(o); err != nil {
		return nil, err
	}

	now := s.now()
	policy.ApplyCertificateStatuses(o, now)
	o.UpdatedAt = now
	if err := s.operatorRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *operatorService) DeleteOperator(ctx context.Context, id string) error {
	if _, err := s.operatorRepo.GetByID(ctx, id); err != nil {
		return err
	}
	active, err := s.operationRepo.List(ctx, repository.OperationFilter{
		OperatorID: id,
		Statuses:   []domain.OperationStatus{domain.OperationStatusActive},
	})
	if err != nil {
		return err
	}
	if len(active) > 0 {
		return domain.NewConflictError("operator %s has an active operation and cannot be deleted", id)
	}
	return s.operatorRepo.Delete(ctx, id)
}

func (s *operatorService) ListOperators(ctx context.Context, filter repository.OperatorFilter) ([]domain.Operator, error) {
	ops, err := s.operatorRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	today := s.now()
	for i := range ops {
		policy.ApplyCertificateStatuses(&ops[i], today)
	}
	return ops, nil
}

func (s *operatorService) RefreshCertificateStatuses(ctx context.Context, today time.Time) (int, error) {
	logger.EnterMethod("operatorService.RefreshCertificateStatuses", "today", policy.Day(today))

	ops, err := s.operatorRepo.List(ctx, repository.OperatorFilter{Order: repository.SortOldestFirst})
	if err != nil {
		logger.ExitMethodWithError("operatorService.RefreshCertificateStatuses", err)
		return 0, err
	}

	changed := 0
	for i := range ops {
		o := &ops[i]
		if !policy.ApplyCertificateStatuses(o, today) {
			continue
		}
		o.UpdatedAt = s.now()
		if err := s.operatorRepo.Update(ctx, o); err != nil {
			logger.ExitMethodWithError("operatorService.RefreshCertificateStatuses", err, "updated", changed)
			return changed, err
		}
		logger.DebugContext(ctx, "Certificate status changed", "operatorID", o.ID, "aso", o.ASOStatus, "nr", o.NRStatus)
		changed++
	}

	logger.ExitMethod("operatorService.RefreshCertificateStatuses", "updated", changed)
	return changed, nil
}

func (s *operatorService) CertificateAlerts(ctx context.Context, today time.Time) ([]domain.Operator, error) {
	ops, err := s.operatorRepo.List(ctx, repository.OperatorFilter{Status: domain.UserStatusActive, Order: repository.SortOldestFirst})
	if err != nil {
		return nil, err
	}
	var alerts []domain.Operator
	for i := range ops {
		policy.ApplyCertificateStatuses(&ops[i], today)
		if needsAttention(&ops[i]) {
			alerts = append(alerts, ops[i])
		}
	}
	return alerts, nil
}

func needsAttention(o *domain.Operator) bool {
	return o.ASOStatus != domain.CertificateStatusRegular || o.NRStatus != domain.CertificateStatusRegular
}

func applyOperatorInput(o *domain.Operator, in OperatorInput) {
	o.Name = strings.TrimSpace(in.Name)
	o.Registration = strings.TrimSpace(in.Registration)
	o.Email = strings.TrimSpace(in.Email)
	o.Phone = in.Phone
	o.Role = in.Role
	if o.Role == "" {
		o.Role = domain.OperatorRoleOperator
	}
	o.Status = in.Status
	if o.Status == "" {
		o.Status = domain.UserStatusActive
	}
	o.ASOExpirationDate = policy.Day(in.ASOExpirationDate)
	o.NRExpirationDate = policy.Day(in.NRExpirationDate)
}

func validateOperator(o *domain.Operator) error {
	switch {
	case o.Name == "":
		return domain.NewValidationError("name is required")
	case o.Registration == "":
		return domain.NewValidationError("registration is required")
	case !o.Role.Valid():
		return domain.NewValidationError("unknown operator role %q", o.Role)
	case !o.Status.Valid():
		return domain.NewValidationError("unknown operator status %q", o.Status)
	case o.ASOExpirationDate.IsZero():
		return domain.NewValidationError("ASO expiration date is required")
	case o.NRExpirationDate.IsZero():
		return domain.NewValidationError("NR expiration date is required")
	}
	if o.Email != "" {
		if err := validate.Var(o.Email, "email"); err != nil {
			return domain.NewValidationError("email %q is invalid", o.Email)
		}
	}
	return nil
}
