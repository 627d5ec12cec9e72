package http

import (
	"context"
	"sync"
	"time"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/repository"
	"martilhaven-backend/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*domain.User, error) {
	args := m.Called(ctx, in)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, identifier, password string) (*domain.User, *service.TokenPair, error) {
	args := m.Called(ctx, identifier, password)
	u, _ := args.Get(0).(*domain.User)
	p, _ := args.Get(1).(*service.TokenPair)
	return u, p, args.Error(2)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refresh string) (*service.TokenPair, error) {
	args := m.Called(ctx, refresh)
	p, _ := args.Get(0).(*service.TokenPair)
	return p, args.Error(1)
}

type MockPropertyService struct{ mock.Mock }

func (m *MockPropertyService) CreateProperty(ctx context.Context, actor domain.Actor, in service.PropertyInput) (*domain.Property, error) {
	args := m.Called(ctx, actor, in)
	p, _ := args.Get(0).(*domain.Property)
	return p, args.Error(1)
}

func (m *MockPropertyService) GetProperty(ctx context.Context, id string) (*domain.Property, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*domain.Property)
	return p, args.Error(1)
}

func (m *MockPropertyService) UpdateProperty(ctx context.Context, actor domain.Actor, id string, in service.PropertyInput) (*domain.Property, error) {
	args := m.Called(ctx, actor, id, in)
	p, _ := args.Get(0).(*domain.Property)
	return p, args.Error(1)
}

func (m *MockPropertyService) TransitionProperty(ctx context.Context, actor domain.Actor, id string, target domain.PropertyStatus) (*domain.Property, error) {
	args := m.Called(ctx, actor, id, target)
	p, _ := args.Get(0).(*domain.Property)
	return p, args.Error(1)
}

func (m *MockPropertyService) DeleteProperty(ctx context.Context, actor domain.Actor, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockPropertyService) ListProperties(ctx context.Context, filter repository.PropertyFilter) ([]domain.Property, error) {
	args := m.Called(ctx, filter)
	p, _ := args.Get(0).([]domain.Property)
	return p, args.Error(1)
}

type MockBookingService struct{ mock.Mock }

func (m *MockBookingService) CreateBooking(ctx context.Context, actor domain.Actor, in service.BookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, actor, in)
	b, _ := args.Get(0).(*domain.Booking)
	return b, args.Error(1)
}

func (m *MockBookingService) GetBooking(ctx context.Context, actor domain.Actor, id string) (*domain.Booking, error) {
	args := m.Called(ctx, actor, id)
	b, _ := args.Get(0).(*domain.Booking)
	return b, args.Error(1)
}

func (m *MockBookingService) ListBookings(ctx context.Context, filter repository.BookingFilter) ([]domain.Booking, error) {
	args := m.Called(ctx, filter)
	b, _ := args.Get(0).([]domain.Booking)
	return b, args.Error(1)
}

func (m *MockBookingService) UpdateBooking(ctx context.Context, actor domain.Actor, id string, in service.BookingUpdate) (*domain.Booking, error) {
	args := m.Called(ctx, actor, id, in)
	b, _ := args.Get(0).(*domain.Booking)
	return b, args.Error(1)
}

func (m *MockBookingService) TransitionBooking(ctx context.Context, actor domain.Actor, id string, target domain.BookingStatus) (*domain.Booking, error) {
	args := m.Called(ctx, actor, id, target)
	b, _ := args.Get(0).(*domain.Booking)
	return b, args.Error(1)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, actor domain.Actor, id string) (*domain.Booking, error) {
	args := m.Called(ctx, actor, id)
	b, _ := args.Get(0).(*domain.Booking)
	return b, args.Error(1)
}

type MockOperationService struct{ mock.Mock }

func (m *MockOperationService) CreateOperation(ctx context.Context, actor domain.Actor, in service.OperationInput) (*domain.Operation, error) {
	args := m.Called(ctx, actor, in)
	o, _ := args.Get(0).(*domain.Operation)
	return o, args.Error(1)
}

func (m *MockOperationService) GetOperation(ctx context.Context, id string) (*domain.Operation, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*domain.Operation)
	return o, args.Error(1)
}

func (m *MockOperationService) ListOperations(ctx context.Context, filter repository.OperationFilter) ([]domain.Operation, error) {
	args := m.Called(ctx, filter)
	o, _ := args.Get(0).([]domain.Operation)
	return o, args.Error(1)
}

func (m *MockOperationService) UpdateOperation(ctx context.Context, actor domain.Actor, id string, in service.OperationUpdate) (*domain.Operation, error) {
	args := m.Called(ctx, actor, id, in)
	o, _ := args.Get(0).(*domain.Operation)
	return o, args.Error(1)
}

func (m *MockOperationService) TransitionOperation(ctx context.Context, actor domain.Actor, id string, target domain.OperationStatus, reading domain.MeterReading) (*domain.Operation, error) {
	args := m.Called(ctx, actor, id, target, reading)
	o, _ := args.Get(0).(*domain.Operation)
	return o, args.Error(1)
}

func (m *MockOperationService) CompleteOperation(ctx context.Context, actor domain.Actor, id string, reading domain.MeterReading) (*domain.Operation, error) {
	args := m.Called(ctx, actor, id, reading)
	o, _ := args.Get(0).(*domain.Operation)
	return o, args.Error(1)
}

type MockQueryService struct{ mock.Mock }

func (m *MockQueryService) ActiveReservations(ctx context.Context, resourceID string) ([]domain.Reservation, error) {
	args := m.Called(ctx, resourceID)
	r, _ := args.Get(0).([]domain.Reservation)
	return r, args.Error(1)
}

func (m *MockQueryService) PopularProperties(ctx context.Context, n int) ([]domain.PropertyRanking, error) {
	args := m.Called(ctx, n)
	r, _ := args.Get(0).([]domain.PropertyRanking)
	return r, args.Error(1)
}

func (m *MockQueryService) ReservationsForActor(ctx context.Context, actorID string) ([]domain.Reservation, error) {
	args := m.Called(ctx, actorID)
	r, _ := args.Get(0).([]domain.Reservation)
	return r, args.Error(1)
}

func (m *MockQueryService) BookingsForProperty(ctx context.Context, actor domain.Actor, propertyID string) ([]domain.Booking, error) {
	args := m.Called(ctx, actor, propertyID)
	b, _ := args.Get(0).([]domain.Booking)
	return b, args.Error(1)
}

func (m *MockQueryService) AdminStats(ctx context.Context) (*domain.AdminStats, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*domain.AdminStats)
	return s, args.Error(1)
}

func (m *MockQueryService) FleetOverview(ctx context.Context) (*domain.FleetOverview, error) {
	args := m.Called(ctx)
	o, _ := args.Get(0).(*domain.FleetOverview)
	return o, args.Error(1)
}

// memoryCache is a map-backed display cache for handler tests
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	body, ok := c.entries[key]
	return body, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = append([]byte(nil), body...)
	return nil
}

func (c *memoryCache) Close() error { return nil }

var testTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
