package memory

import (
	"context"
	"strings"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/repository"
)

type propertyRepository struct {
	st *state
}

func cloneProperty(p domain.Property) domain.Property {
	if p.Amenities != nil {
		p.Amenities = append([]string(nil), p.Amenities...)
	}
	return p
}

func (r *propertyRepository) Create(ctx context.Context, p *domain.Property) error {
	unlock, err := r.st.write(ctx, "failed to create property")
	if err != nil {
		return err
	}
	defer unlock()

	if !r.st.properties.insert(p.ID, p.CreatedAt, cloneProperty(*p)) {
		return domain.NewConflictError("property %s already exists", p.ID)
	}
	return nil
}

func (r *propertyRepository) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	unlock, err := r.st.read(ctx, "failed to get property")
	if err != nil {
		return nil, err
	}
	defer unlock()

	p, ok := r.st.properties.get(id)
	if !ok {
		return nil, domain.NewNotFoundError("property", id)
	}
	p = cloneProperty(p)
	return &p, nil
}

func (r *propertyRepository) Update(ctx context.Context, p *domain.Property) error {
	unlock, err := r.st.write(ctx, "failed to update property")
	if err != nil {
		return err
	}
	defer unlock()

	if !r.st.properties.replace(p.ID, cloneProperty(*p)) {
		return domain.NewNotFoundError("property", p.ID)
	}
	return nil
}

// Delete removes a property with no bookings on record.
func (r *propertyRepository) Delete(ctx context.Context, id string) error {
	unlock, err := r.st.write(ctx, "failed to delete property")
	if err != nil {
		return err
	}
	defer unlock()

	if _, ok := r.st.properties.get(id); !ok {
		return domain.NewNotFoundError("property", id)
	}
	if r.st.bookings.some(func(b domain.Booking) bool { return b.PropertyID == id }) {
		return domain.NewConflictError("property %s still has recorded history and cannot be deleted", id)
	}
	r.st.properties.remove(id)
	return nil
}

func (r *propertyRepository) List(ctx context.Context, f repository.PropertyFilter) ([]domain.Property, error) {
	unlock, err := r.st.read(ctx, "failed to list properties")
	if err != nil {
		return nil, err
	}
	defer unlock()

	props := r.st.properties.list(func(p domain.Property) bool {
		return (f.OwnerID == "" || p.OwnerID == f.OwnerID) &&
			(f.City == "" || strings.EqualFold(p.City, f.City)) &&
			(!f.FeaturedOnly || p.Featured) &&
			contains(f.Statuses, p.Status)
	}, f.Order)
	for i := range props {
		props[i] = cloneProperty(props[i])
	}
	return props, nil
}
