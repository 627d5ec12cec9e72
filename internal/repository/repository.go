package repository

import (
	"context"
	"time"

	"martilhaven-backend/internal/domain"
)

// SortOrder selects list ordering. The zero value is newest first; ties keep insertion order.
type SortOrder int

const (
	SortNewestFirst SortOrder = iota
	SortOldestFirst
)

type UserFilter struct {
	Role   domain.Role
	Status domain.UserStatus
	Order  SortOrder
}

type PropertyFilter struct {
	OwnerID      string
	City         string
	Statuses     []domain.PropertyStatus
	FeaturedOnly bool
	Order        SortOrder
}

type BookingFilter struct {
	PropertyID string
	GuestID    string
	GuestEmail string
	Statuses   []domain.BookingStatus
	Order      SortOrder
}

type ForkliftFilter struct {
	Statuses []domain.ForkliftStatus
	Order    SortOrder
}

type OperatorFilter struct {
	Status domain.UserStatus
	Order  SortOrder
}

type OperationFilter struct {
	ForkliftID string
	OperatorID string
	Statuses   []domain.OperationStatus
	Order      SortOrder
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsernameOrEmail(ctx context.Context, identifier string) (*domain.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
}

type PropertyRepository interface {
	Create(ctx context.Context, property *domain.Property) error
	GetByID(ctx context.Context, id string) (*domain.Property, error)
	Update(ctx context.Context, property *domain.Property) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter PropertyFilter) ([]domain.Property, error)
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
	List(ctx context.Context, filter BookingFilter) ([]domain.Booking, error)
	// CountByProperty returns the number of non-cancelled bookings per property id.
	CountByProperty(ctx context.Context) (map[string]int, error)
}

type ForkliftRepository interface {
	Create(ctx context.Context, forklift *domain.Forklift) error
	GetByID(ctx context.Context, id string) (*domain.Forklift, error)
	Update(ctx context.Context, forklift *domain.Forklift) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ForkliftFilter) ([]domain.Forklift, error)
}

type OperatorRepository interface {
	Create(ctx context.Context, operator *domain.Operator) error
	GetByID(ctx context.Context, id string) (*domain.Operator, error)
	Update(ctx context.Context, operator *domain.Operator) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter OperatorFilter) ([]domain.Operator, error)
}

type OperationRepository interface {
	Create(ctx context.Context, operation *domain.Operation) error
	GetByID(ctx context.Context, id string) (*domain.Operation, error)
	Update(ctx context.Context, operation *domain.Operation) error
	List(ctx context.Context, filter OperationFilter) ([]domain.Operation, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID string, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID string) error
}
