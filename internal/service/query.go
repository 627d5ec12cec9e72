package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/policy"
	"martilhaven-backend/internal/repository"

	"github.com/shopspring/decimal"
)

var holdingBookingStatuses = []domain.BookingStatus{domain.BookingStatusPending, domain.BookingStatusConfirmed}

type queryService struct {
	userRepo      repository.UserRepository
	propertyRepo  repository.PropertyRepository
	bookingRepo   repository.BookingRepository
	forkliftRepo  repository.ForkliftRepository
	operatorRepo  repository.OperatorRepository
	operationRepo repository.OperationRepository
	now           Clock
}

func NewQueryService(
	userRepo repository.UserRepository,
	propertyRepo repository.PropertyRepository,
	bookingRepo repository.BookingRepository,
	forkliftRepo repository.ForkliftRepository,
	operatorRepo repository.OperatorRepository,
	operationRepo repository.OperationRepository,
) QueryService {
	return &queryService{
		userRepo:      userRepo,
		propertyRepo:  propertyRepo,
		bookingRepo:   bookingRepo,
		forkliftRepo:  forkliftRepo,
		operatorRepo:  operatorRepo,
		operationRepo: operationRepo,
		now:           utcNow,
	}
}

// ActiveReservations lists pending and confirmed bookings plus active operations, newest
// first. An empty resourceID spans every resource.
func (s *queryService) ActiveReservations(ctx context.Context, resourceID string) ([]domain.Reservation, error) {
	bookings, err := s.bookingRepo.List(ctx, repository.BookingFilter{PropertyID: resourceID, Statuses: holdingBookingStatuses})
	if err != nil {
		return nil, err
	}
	operations, err := s.operationRepo.List(ctx, repository.OperationFilter{
		ForkliftID: resourceID,
		Statuses:   []domain.OperationStatus{domain.OperationStatusActive},
	})
	if err != nil {
		return nil, err
	}
	return mergeReservations(bookings, operations, s.now()), nil
}

// PopularProperties ranks approved properties by booking count, then rating, both descending.
func (s *queryService) PopularProperties(ctx context.Context, n int) ([]domain.PropertyRanking, error) {
	if n <= 0 {
		return nil, domain.NewValidationError("limit must be positive")
	}
	counts, err := s.bookingRepo.CountByProperty(ctx)
	if err != nil {
		return nil, err
	}
	props, err := s.propertyRepo.List(ctx, repository.PropertyFilter{Statuses: []domain.PropertyStatus{domain.PropertyStatusApproved}})
	if err != nil {
		return nil, err
	}

	ranked := make([]domain.PropertyRanking, 0, len(props))
	for _, p := range props {
		ranked = append(ranked, domain.PropertyRanking{Property: p, BookingCount: counts[p.ID]})
	}
	slices.SortStableFunc(ranked, func(a, b domain.PropertyRanking) int {
		if a.BookingCount != b.BookingCount {
			return b.BookingCount - a.BookingCount
		}
		if a.Property.Rating != b.Property.Rating {
			if a.Property.Rating > b.Property.Rating {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Property.ID, b.Property.ID)
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// ReservationsForActor lists the bookings made by a user and the operations run by an
// operator with that id, newest first.
func (s *queryService) ReservationsForActor(ctx context.Context, actorID string) ([]domain.Reservation, error) {
	if actorID == "" {
		return nil, domain.NewValidationError("actor id is required")
	}
	bookings, err := s.bookingRepo.List(ctx, repository.BookingFilter{GuestID: actorID})
	if err != nil {
		return nil, err
	}
	operations, err := s.operationRepo.List(ctx, repository.OperationFilter{OperatorID: actorID})
	if err != nil {
		return nil, err
	}
	return mergeReservations(bookings, operations, s.now()), nil
}

func (s *queryService) BookingsForProperty(ctx context.Context, actor domain.Actor, propertyID string) ([]domain.Booking, error) {
	p, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !canManageProperty(actor, p) {
		return nil, domain.NewForbiddenError("property belongs to another owner")
	}
	return s.bookingRepo.List(ctx, repository.BookingFilter{PropertyID: propertyID})
}

func (s *queryService) AdminStats(ctx context.Context) (*domain.AdminStats, error) {
	props, err := s.propertyRepo.List(ctx, repository.PropertyFilter{})
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookingRepo.List(ctx, repository.BookingFilter{})
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.List(ctx, repository.UserFilter{})
	if err != nil {
		return nil, err
	}

	stats := &domain.AdminStats{
		TotalProperties:    len(props),
		PropertiesByStatus: map[domain.PropertyStatus]int{},
		TotalUsers:         len(users),
	}
	for _, p := range props {
		stats.PropertiesByStatus[p.Status]++
	}
	revenue := decimal.Zero
	for _, b := range bookings {
		if policy.BookingHolds(b.Status) {
			stats.ActiveBookings++
		}
		if b.Status == domain.BookingStatusConfirmed || b.Status == domain.BookingStatusCompleted {
			revenue = revenue.Add(b.TotalPrice)
		}
	}
	stats.Revenue = revenue.StringFixed(2)
	return stats, nil
}

func (s *queryService) FleetOverview(ctx context.Context) (*domain.FleetOverview, error) {
	forklifts, err := s.forkliftRepo.List(ctx, repository.ForkliftFilter{})
	if err != nil {
		return nil, err
	}
	active, err := s.operationRepo.List(ctx, repository.OperationFilter{Statuses: []domain.OperationStatus{domain.OperationStatusActive}})
	if err != nil {
		return nil, err
	}
	operators, err := s.operatorRepo.List(ctx, repository.OperatorFilter{})
	if err != nil {
		return nil, err
	}

	overview := &domain.FleetOverview{
		TotalForklifts:    len(forklifts),
		ForkliftsByStatus: map[domain.ForkliftStatus]int{},
		ActiveOperations:  len(active),
		TotalOperators:    len(operators),
	}
	for _, f := range forklifts {
		overview.ForkliftsByStatus[f.Status]++
	}
	today := s.now()
	for i := range operators {
		o := &operators[i]
		policy.ApplyCertificateStatuses(o, today)
		switch {
		case o.ASOStatus == domain.CertificateStatusExpired || o.NRStatus == domain.CertificateStatusExpired:
			overview.OperatorsWithExpiration++
		case o.ASOStatus == domain.CertificateStatusWarning || o.NRStatus == domain.CertificateStatusWarning:
			overview.OperatorsWithWarnings++
		}
	}
	return overview, nil
}

func mergeReservations(bookings []domain.Booking, operations []domain.Operation, now time.Time) []domain.Reservation {
	out := make([]domain.Reservation, 0, len(bookings)+len(operations))
	for _, b := range bookings {
		out = append(out, domain.BookingReservation(b))
	}
	for _, o := range operations {
		out = append(out, domain.OperationReservation(o))
	}
	for i := range out {
		d := policy.MeasureDuration(out[i].Start, out[i].End, now)
		out[i].Duration = &d
	}
	// Both inputs are already newest first; a stable sort keeps their tie order.
	slices.SortStableFunc(out, func(a, b domain.Reservation) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}
