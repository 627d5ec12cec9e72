package memory

import (
	"context"
	"strings"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/repository"
)

type forkliftRepository struct {
	st *state
}

func cloneForklift(f domain.Forklift) domain.Forklift {
	f.LastMaintenance = cloneTime(f.LastMaintenance)
	return f
}

func (r *forkliftRepository) Create(ctx context.Context, f *domain.Forklift) error {
	unlock, err := r.st.write(ctx, "failed to create forklift")
	if err != nil {
		return err
	}
	defer unlock()

	if r.st.forklifts.some(func(x domain.Forklift) bool { return strings.EqualFold(x.Code, f.Code) }) {
		return domain.NewConflictError("forklift code %s already in use", f.Code)
	}
	if !r.st.forklifts.insert(f.ID, f.CreatedAt, cloneForklift(*f)) {
		return domain.NewConflictError("forklift %s already exists", f.ID)
	}
	return nil
}

func (r *forkliftRepository) GetByID(ctx context.Context, id string) (*domain.Forklift, error) {
	unlock, err := r.st.read(ctx, "failed to get forklift")
	if err != nil {
		return nil, err
	}
	defer unlock()

	f, ok := r.st.forklifts.get(id)
	if !ok {
		return nil, domain.NewNotFoundError("forklift", id)
	}
	f = cloneForklift(f)
	return &f, nil
}

func (r *forkliftRepository) Update(ctx context.Context, f *domain.Forklift) error {
	unlock, err := r.st.write(ctx, "failed to update forklift")
	if err != nil {
		return err
	}
	defer unlock()

	if r.st.forklifts.some(func(x domain.Forklift) bool { return x.ID != f.ID && strings.EqualFold(x.Code, f.Code) }) {
		return domain.NewConflictError("forklift code %s already in use", f.Code)
	}
	if !r.st.forklifts.replace(f.ID, cloneForklift(*f)) {
		return domain.NewNotFoundError("forklift", f.ID)
	}
	return nil
}

// Delete removes a forklift with no operations on record.
func (r *forkliftRepository) Delete(ctx context.Context, id string) error {
	unlock, err := r.st.write(ctx, "failed to delete forklift")
	if err != nil {
		return err
	}
	defer unlock()

	if _, ok := r.st.forklifts.get(id); !ok {
		return domain.NewNotFoundError("forklift", id)
	}
	if r.st.operations.some(func(o domain.Operation) bool { return o.ForkliftID == id }) {
		return domain.NewConflictError("forklift %s still has recorded history and cannot be deleted", id)
	}
	r.st.forklifts.remove(id)
	return nil
}

func (r *forkliftRepository) List(ctx context.Context, f repository.ForkliftFilter) ([]domain.Forklift, error) {
	unlock, err := r.st.read(ctx, "failed to list forklifts")
	if err != nil {
		return nil, err
	}
	defer unlock()

	out := r.st.forklifts.list(func(x domain.Forklift) bool { return contains(f.Statuses, x.Status) }, f.Order)
	for i := range out {
		out[i] = cloneForklift(out[i])
	}
	return out, nil
}

type operatorRepository struct {
	st *state
}

func (r *operatorRepository) Create(ctx context.Context, o *domain.Operator) error {
	unlock, err := r.st.write(ctx, "failed to create operator")
	if err != nil {
		return err
	}
	defer unlock()

	if r.st.operators.some(func(x domain.Operator) bool { return x.Registration == o.Registration }) {
		return domain.NewConflictError("registration %s already in use", o.Registration)
	}
	if !r.st.operators.insert(o.ID, o.CreatedAt, *o) {
		return domain.NewConflictError("operator %s already exists", o.ID)
	}
	return nil
}

func (r *operatorRepository) GetByID(ctx context.Context, id string) (*domain.Operator, error) {
	unlock, err := r.st.read(ctx, "failed to get operator")
	if err != nil {
		return nil, err
	}
	defer unlock()

	o, ok := r.st.operators.get(id)
	if !ok {
		return nil, domain.NewNotFoundError("operator", id)
	}
	return &o, nil
}

func (r *operatorRepository) Update(ctx context.Context, o *domain.Operator) error {
	unlock, err := r.st.write(ctx, "failed to update operator")
	if err != nil {
		return err
	}
	defer unlock()

	if r.st.operators.some(func(x domain.Operator) bool { return x.ID != o.ID && x.Registration == o.Registration }) {
		return domain.NewConflictError("registration %s already in use", o.Registration)
	}
	if !r.st.operators.replace(o.ID, *o) {
		return domain.NewNotFoundError("operator", o.ID)
	}
	return nil
}

func (r *operatorRepository) Delete(ctx context.Context, id string) error {
	unlock, err := r.st.write(ctx, "failed to delete operator")
	if err != nil {
		return err
	}
	defer unlock()

	if _, ok := r.st.operators.get(id); !ok {
		return domain.NewNotFoundError("operator", id)
	}
	if r.st.operations.some(func(o domain.Operation) bool { return o.OperatorID == id }) {
		return domain.NewConflictError("operator %s still has recorded history and cannot be deleted", id)
	}
	r.st.operators.remove(id)
	return nil
}

func (r *operatorRepository) List(ctx context.Context, f repository.OperatorFilter) ([]domain.Operator, error) {
	unlock, err := r.st.read(ctx, "failed to list operators")
	if err != nil {
		return nil, err
	}
	defer unlock()

	return r.st.operators.list(func(o domain.Operator) bool { return f.Status == "" || o.Status == f.Status }, f.Order), nil
}

type operationRepository struct {
	st *state
}

func cloneOperation(o domain.Operation) domain.Operation {
	o.EndTime = cloneTime(o.EndTime)
	o.GasConsumption = cloneFloat(o.GasConsumption)
	o.Duration = nil
	o.HoursUsed, o.FuelPerHour = 0, 0
	return o
}

func (r *operationRepository) Create(ctx context.Context, o *domain.Operation) error {
	unlock, err := r.st.write(ctx, "failed to create operation")
	if err != nil {
		return err
	}
	defer unlock()

	if _, ok := r.st.forklifts.get(o.ForkliftID); !ok {
		return domain.NewValidationError("forklift %s does not exist", o.ForkliftID)
	}
	if _, ok := r.st.operators.get(o.OperatorID); !ok {
		return domain.NewValidationError("operator %s does not exist", o.OperatorID)
	}
	if !r.st.operations.insert(o.ID, o.CreatedAt, cloneOperation(*o)) {
		return domain.NewConflictError("operation %s already exists", o.ID)
	}
	return nil
}

func (r *operationRepository) GetByID(ctx context.Context, id string) (*domain.Operation, error) {
	unlock, err := r.st.read(ctx, "failed to get operation")
	if err != nil {
		return nil, err
	}
	defer unlock()

	o, ok := r.st.operations.get(id)
	if !ok {
		return nil, domain.NewNotFoundError("operation", id)
	}
	o = cloneOperation(o)
	return &o, nil
}

func (r *operationRepository) Update(ctx context.Context, o *domain.Operation) error {
	unlock, err := r.st.write(ctx, "failed to update operation")
	if err != nil {
		return err
	}
	defer unlock()

	if !r.st.operations.replace(o.ID, cloneOperation(*o)) {
		return domain.NewNotFoundError("operation", o.ID)
	}
	return nil
}

func (r *operationRepository) List(ctx context.Context, f repository.OperationFilter) ([]domain.Operation, error) {
	unlock, err := r.st.read(ctx, "failed to list operations")
	if err != nil {
		return nil, err
	}
	defer unlock()

	out := r.st.operations.list(func(o domain.Operation) bool {
		return (f.ForkliftID == "" || o.ForkliftID == f.ForkliftID) &&
			(f.OperatorID == "" || o.OperatorID == f.OperatorID) &&
			contains(f.Statuses, o.Status)
	}, f.Order)
	for i := range out {
		out[i] = cloneOperation(out[i])
	}
	return out, nil
}
