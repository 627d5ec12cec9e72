package service_test

import (
	"context"
	"testing"
	"time"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/repository/memory"
	"martilhaven-backend/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg service.EmailMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

var (
	admin    = domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}
	owner    = domain.Actor{ID: "owner-1", Role: domain.RoleOwner}
	guest    = domain.Actor{ID: "guest-1", Role: domain.RoleCustomer}
	stranger = domain.Actor{ID: "guest-2", Role: domain.RoleCustomer}
)

type fixture struct {
	store      *memory.Store
	mailer     *MockMailer
	properties service.PropertyService
	bookings   service.BookingService
	forklifts  service.ForkliftService
	operators  service.OperatorService
	operations service.OperationService
	queries    service.QueryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	mailer := new(MockMailer)
	mailer.On("Send", mock.Anything, mock.AnythingOfType("service.EmailMessage")).Return(nil)
	emailSvc := service.NewEmailService(mailer)
	locks := service.NewResourceLocker()

	return &fixture{
		store:      store,
		mailer:     mailer,
		properties: service.NewPropertyService(store.PropertyRepository, store.BookingRepository, locks),
		bookings:   service.NewBookingService(store.BookingRepository, store.PropertyRepository, store.UserRepository, store.NotificationRepository, emailSvc, locks),
		forklifts:  service.NewForkliftService(store.ForkliftRepository, store.OperationRepository, locks),
		operators:  service.NewOperatorService(store.OperatorRepository, store.OperationRepository),
		operations: service.NewOperationService(store.OperationRepository, store.ForkliftRepository, store.OperatorRepository, locks),
		queries:    service.NewQueryService(store.UserRepository, store.PropertyRepository, store.BookingRepository, store.ForkliftRepository, store.OperatorRepository, store.OperationRepository),
	}
}

func (f *fixture) seedOwner(t *testing.T) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, f.store.UserRepository.Create(context.Background(), &domain.User{
		ID:        owner.ID,
		Username:  "owner",
		Email:     "owner@example.com",
		Name:      "Olivia Owner",
		Role:      domain.RoleOwner,
		Status:    domain.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}))
}

// approvedProperty creates a property owned by owner and approves it.
func (f *fixture) approvedProperty(t *testing.T, price int64) *domain.Property {
	t.Helper()
	ctx := context.Background()
	p, err := f.properties.CreateProperty(ctx, owner, service.PropertyInput{
		Title:     "Casa Martil",
		City:      "Martil",
		Price:     decimal.NewFromInt(price),
		MaxGuests: 4,
	})
	require.NoError(t, err)
	p, err = f.properties.TransitionProperty(ctx, admin, p.ID, domain.PropertyStatusApproved)
	require.NoError(t, err)
	return p
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func stay(propertyID, in, out string) service.BookingInput {
	return service.BookingInput{
		PropertyID: propertyID,
		GuestName:  "Ana Guest",
		GuestEmail: "ana@example.com",
		CheckIn:    day(in),
		CheckOut:   day(out),
		Guests:     2,
	}
}

func ptr[T any](v T) *T { return &v }
