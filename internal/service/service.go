package service

import (
	"context"
	"time"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/repository"
)

// Clock supplies the current time. Services default to time.Now in UTC.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, identifier, password string) (*domain.User, *TokenPair, error)
	RefreshToken(ctx context.Context, refresh string) (*TokenPair, error)
}

type UserService interface {
	GetProfile(ctx context.Context, actor domain.Actor) (*domain.User, error)
	UpdateProfile(ctx context.Context, actor domain.Actor, in ProfileInput) (*domain.User, error)
	ListUsers(ctx context.Context, filter repository.UserFilter) ([]domain.User, error)
	CreateUser(ctx context.Context, in UserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, actor domain.Actor, id string, in UserUpdate) (*domain.User, error)
	DeleteUser(ctx context.Context, actor domain.Actor, id string) error
}

type PropertyService interface {
	CreateProperty(ctx context.Context, actor domain.Actor, in PropertyInput) (*domain.Property, error)
	GetProperty(ctx context.Context, id string) (*domain.Property, error)
	UpdateProperty(ctx context.Context, actor domain.Actor, id string, in PropertyInput) (*domain.Property, error)
	TransitionProperty(ctx context.Context, actor domain.Actor, id string, target domain.PropertyStatus) (*domain.Property, error)
	DeleteProperty(ctx context.Context, actor domain.Actor, id string) error
	ListProperties(ctx context.Context, filter repository.PropertyFilter) ([]domain.Property, error)
}

// BookingService is the lifecycle manager for property bookings.
type BookingService interface {
	CreateBooking(ctx context.Context, actor domain.Actor, in BookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, actor domain.Actor, id string) (*domain.Booking, error)
	ListBookings(ctx context.Context, filter repository.BookingFilter) ([]domain.Booking, error)
	UpdateBooking(ctx context.Context, actor domain.Actor, id string, in BookingUpdate) (*domain.Booking, error)
	TransitionBooking(ctx context.Context, actor domain.Actor, id string, target domain.BookingStatus) (*domain.Booking, error)
	CancelBooking(ctx context.Context, actor domain.Actor, id string) (*domain.Booking, error)
}

type ForkliftService interface {
	CreateForklift(ctx context.Context, in ForkliftInput) (*domain.Forklift, error)
	GetForklift(ctx context.Context, id string) (*domain.Forklift, error)
	UpdateForklift(ctx context.Context, id string, in ForkliftInput) (*domain.Forklift, error)
	TransitionForklift(ctx context.Context, id string, target domain.ForkliftStatus) (*domain.Forklift, error)
	DeleteForklift(ctx context.Context, id string) error
	ListForklifts(ctx context.Context, filter repository.ForkliftFilter) ([]domain.Forklift, error)
}

type OperatorService interface {
	CreateOperator(ctx context.Context, in OperatorInput) (*domain.Operator, error)
	GetOperator(ctx context.Context, id string) (*domain.Operator, error)
	UpdateOperator(ctx context.Context, id string, in OperatorInput) (*domain.Operator, error)
	DeleteOperator(ctx context.Context, id string) error
	ListOperators(ctx context.Context, filter repository.OperatorFilter) ([]domain.Operator, error)
	// RefreshCertificateStatuses persists recomputed certificate statuses and returns how many operators changed.
	RefreshCertificateStatuses(ctx context.Context, today time.Time) (int, error)
	// CertificateAlerts lists active operators with a warning or expired certificate.
	CertificateAlerts(ctx context.Context, today time.Time) ([]domain.Operator, error)
}

// OperationService is the lifecycle manager for forklift operations.
type OperationService interface {
	CreateOperation(ctx context.Context, actor domain.Actor, in OperationInput) (*domain.Operation, error)
	GetOperation(ctx context.Context, id string) (*domain.Operation, error)
	ListOperations(ctx context.Context, filter repository.OperationFilter) ([]domain.Operation, error)
	UpdateOperation(ctx context.Context, actor domain.Actor, id string, in OperationUpdate) (*domain.Operation, error)
	TransitionOperation(ctx context.Context, actor domain.Actor, id string, target domain.OperationStatus, reading domain.MeterReading) (*domain.Operation, error)
	CompleteOperation(ctx context.Context, actor domain.Actor, id string, reading domain.MeterReading) (*domain.Operation, error)
}

// QueryService serves read-side projections. It never writes.
type QueryService interface {
	ActiveReservations(ctx context.Context, resourceID string) ([]domain.Reservation, error)
	PopularProperties(ctx context.Context, n int) ([]domain.PropertyRanking, error)
	ReservationsForActor(ctx context.Context, actorID string) ([]domain.Reservation, error)
	BookingsForProperty(ctx context.Context, actor domain.Actor, propertyID string) ([]domain.Booking, error)
	AdminStats(ctx context.Context) (*domain.AdminStats, error)
	FleetOverview(ctx context.Context) (*domain.FleetOverview, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID string, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID string) error
}

type EmailService interface {
	// Booking Notifications
	SendBookingRequestNotification(ctx context.Context, ownerEmail, guestName, propertyTitle string, checkIn, checkOut time.Time) error
	SendBookingStatusNotification(ctx context.Context, guestEmail, guestName, propertyTitle string, status domain.BookingStatus) error

	// Fleet Notifications
	SendCertificateNotice(ctx context.Context, recipients []string, operators []domain.Operator) error

	// Admin Notifications
	SendAdminNotification(ctx context.Context, adminEmail, subject, message string) error
}
