package memory

import (
	"context"
	"strings"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/repository"
)

type bookingRepository struct {
	st *state
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	unlock, err := r.st.write(ctx, "failed to create booking")
	if err != nil {
		return err
	}
	defer unlock()

	if _, ok := r.st.properties.get(b.PropertyID); !ok {
		return domain.NewValidationError("property %s does not exist", b.PropertyID)
	}
	if !r.st.bookings.insert(b.ID, b.CreatedAt, *b) {
		return domain.NewConflictError("booking %s already exists", b.ID)
	}
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	unlock, err := r.st.read(ctx, "failed to get booking")
	if err != nil {
		return nil, err
	}
	defer unlock()

	b, ok := r.st.bookings.get(id)
	if !ok {
		return nil, domain.NewNotFoundError("booking", id)
	}
	return &b, nil
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	unlock, err := r.st.write(ctx, "failed to update booking")
	if err != nil {
		return err
	}
	defer unlock()

	if !r.st.bookings.replace(b.ID, *b) {
		return domain.NewNotFoundError("booking", b.ID)
	}
	return nil
}

func (r *bookingRepository) List(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, error) {
	unlock, err := r.st.read(ctx, "failed to list bookings")
	if err != nil {
		return nil, err
	}
	defer unlock()

	return r.st.bookings.list(func(b domain.Booking) bool {
		return (f.PropertyID == "" || b.PropertyID == f.PropertyID) &&
			(f.GuestID == "" || b.GuestID == f.GuestID) &&
			(f.GuestEmail == "" || strings.EqualFold(b.GuestEmail, f.GuestEmail)) &&
			contains(f.Statuses, b.Status)
	}, f.Order), nil
}

func (r *bookingRepository) CountByProperty(ctx context.Context) (map[string]int, error) {
	unlock, err := r.st.read(ctx, "failed to count bookings")
	if err != nil {
		return nil, err
	}
	defer unlock()

	counts := make(map[string]int)
	for _, row := range r.st.bookings.rows {
		if row.value.Status != domain.BookingStatusCancelled {
			counts[row.value.PropertyID]++
		}
	}
	return counts, nil
}
