package service_test

import (
	"context"
	"testing"
	"time"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryService_PopularProperties(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedOwner(t)

	busy := f.approvedProperty(t, 100)
	curated := func(title string, rating float64) *domain.Property {
		p, err := f.properties.CreateProperty(ctx, admin, service.PropertyInput{
			OwnerID:   owner.ID,
			Title:     title,
			Price:     decimal.NewFromInt(80),
			MaxGuests: 4,
			Rating:    rating,
		})
		require.NoError(t, err)
		require.Equal(t, domain.PropertyStatusApproved, p.Status)
		return p
	}
	good := curated("Riad Tetouan", 4.8)
	best := curated("Villa Cabo Negro", 4.9)
	_, err := f.properties.CreateProperty(ctx, owner, service.PropertyInput{Title: "Pending", Price: decimal.NewFromInt(50), MaxGuests: 2})
	require.NoError(t, err)

	for _, s := range []service.BookingInput{
		stay(busy.ID, "2024-07-01", "2024-07-03"),
		stay(busy.ID, "2024-07-10", "2024-07-12"),
		stay(good.ID, "2024-07-01", "2024-07-03"),
		stay(best.ID, "2024-07-01", "2024-07-03"),
	} {
		_, err := f.bookings.CreateBooking(ctx, guest, s)
		require.NoError(t, err)
	}

	t.Run("Ranked", func(t *testing.T) {
		ranked, err := f.queries.PopularProperties(ctx, 10)
		require.NoError(t, err)
		require.Len(t, ranked, 3)
		assert.Equal(t, busy.ID, ranked[0].Property.ID)
		assert.Equal(t, 2, ranked[0].BookingCount)
		assert.Equal(t, best.ID, ranked[1].Property.ID)
		assert.Equal(t, good.ID, ranked[2].Property.ID)
	})

	t.Run("Limit", func(t *testing.T) {
		ranked, err := f.queries.PopularProperties(ctx, 1)
		require.NoError(t, err)
		require.Len(t, ranked, 1)
		assert.Equal(t, busy.ID, ranked[0].Property.ID)
	})

	t.Run("Non Positive Limit", func(t *testing.T) {
		_, err := f.queries.PopularProperties(ctx, 0)
		assert.True(t, domain.IsKind(err, domain.ErrorKindValidation))
	})
}

func TestQueryService_Reservations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedOwner(t)
	p := f.approvedProperty(t, 100)

	kept, err := f.bookings.CreateBooking(ctx, guest, stay(p.ID, "2024-08-01", "2024-08-04"))
	require.NoError(t, err)
	dropped, err := f.bookings.CreateBooking(ctx, guest, stay(p.ID, "2024-08-10", "2024-08-12"))
	require.NoError(t, err)
	_, err = f.bookings.CancelBooking(ctx, guest, dropped.ID)
	require.NoError(t, err)

	fl := f.forklift(t, "G001", 0)
	op := f.operator(t, "R-1")
	shiftOp, err := f.operations.CreateOperation(ctx, supervisor, shift(fl.ID, op.ID, 0))
	require.NoError(t, err)

	t.Run("Active Across Resources", func(t *testing.T) {
		active, err := f.queries.ActiveReservations(ctx, "")
		require.NoError(t, err)
		require.Len(t, active, 2)
		ids := []string{active[0].ID, active[1].ID}
		assert.ElementsMatch(t, []string{kept.ID, shiftOp.ID}, ids)
		for i := 1; i < len(active); i++ {
			assert.False(t, active[i].CreatedAt.After(active[i-1].CreatedAt))
		}
	})

	t.Run("Active For One Resource", func(t *testing.T) {
		active, err := f.queries.ActiveReservations(ctx, fl.ID)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, domain.ReservationKindOperation, active[0].Kind)
		assert.Nil(t, active[0].End)
		require.NotNil(t, active[0].Duration)
		assert.True(t, active[0].Duration.Ongoing)
	})

	t.Run("For Guest", func(t *testing.T) {
		mine, err := f.queries.ReservationsForActor(ctx, guest.ID)
		require.NoError(t, err)
		require.Len(t, mine, 2)
		for _, r := range mine {
			assert.Equal(t, domain.ReservationKindBooking, r.Kind)
			assert.Equal(t, guest.ID, r.ActorID)
		}
		assert.Equal(t, dropped.ID, mine[0].ID, "newest first")
		assert.Equal(t, kept.ID, mine[1].ID)

		require.NotNil(t, mine[1].Duration)
		assert.False(t, mine[1].Duration.Ongoing)
		assert.Equal(t, 72*time.Hour, mine[1].Duration.Elapsed)
	})

	t.Run("For Operator", func(t *testing.T) {
		mine, err := f.queries.ReservationsForActor(ctx, op.ID)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, shiftOp.ID, mine[0].ID)
	})

	t.Run("Property Bookings Access", func(t *testing.T) {
		list, err := f.queries.BookingsForProperty(ctx, owner, p.ID)
		require.NoError(t, err)
		assert.Len(t, list, 2)

		_, err = f.queries.BookingsForProperty(ctx, stranger, p.ID)
		assert.True(t, domain.IsKind(err, domain.ErrorKindForbidden))

		_, err = f.queries.BookingsForProperty(ctx, admin, "missing")
		assert.True(t, domain.IsKind(err, domain.ErrorKindNotFound))
	})
}

func TestQueryService_AdminStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedOwner(t)
	p := f.approvedProperty(t, 100)

	confirmed, err := f.bookings.CreateBooking(ctx, guest, stay(p.ID, "2024-09-01", "2024-09-04"))
	require.NoError(t, err)
	_, err = f.bookings.TransitionBooking(ctx, owner, confirmed.ID, domain.BookingStatusConfirmed)
	require.NoError(t, err)
	_, err = f.bookings.CreateBooking(ctx, guest, stay(p.ID, "2024-09-10", "2024-09-11"))
	require.NoError(t, err)
	cancelled, err := f.bookings.CreateBooking(ctx, guest, stay(p.ID, "2024-09-20", "2024-09-25"))
	require.NoError(t, err)
	_, err = f.bookings.CancelBooking(ctx, guest, cancelled.ID)
	require.NoError(t, err)

	stats, err := f.queries.AdminStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalProperties)
	assert.Equal(t, 1, stats.PropertiesByStatus[domain.PropertyStatusApproved])
	assert.Equal(t, 2, stats.ActiveBookings)
	assert.Equal(t, 1, stats.TotalUsers)
	assert.Equal(t, "300.00", stats.Revenue)
}

func TestQueryService_FleetOverview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	today := time.Now().UTC()

	fl := f.forklift(t, "G001", 0)
	f.forklift(t, "E002", 0)
	spare := f.forklift(t, "R003", 0)
	_, err := f.forklifts.TransitionForklift(ctx, spare.ID, domain.ForkliftStatusMaintenance)
	require.NoError(t, err)

	op := f.operator(t, "R-1")
	_, err = f.operators.CreateOperator(ctx, service.OperatorInput{
		Name: "Warned", Registration: "R-2",
		ASOExpirationDate: today.AddDate(0, 0, 10),
		NRExpirationDate:  today.AddDate(1, 0, 0),
	})
	require.NoError(t, err)
	_, err = f.operators.CreateOperator(ctx, service.OperatorInput{
		Name: "Lapsed", Registration: "R-3",
		ASOExpirationDate: today.AddDate(0, 0, 10),
		NRExpirationDate:  today.AddDate(0, 0, -1),
	})
	require.NoError(t, err)
	_, err = f.operations.CreateOperation(ctx, supervisor, shift(fl.ID, op.ID, 0))
	require.NoError(t, err)

	overview, err := f.queries.FleetOverview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, overview.TotalForklifts)
	assert.Equal(t, 2, overview.ForkliftsByStatus[domain.ForkliftStatusOperational])
	assert.Equal(t, 1, overview.ForkliftsByStatus[domain.ForkliftStatusMaintenance])
	assert.Equal(t, 1, overview.ActiveOperations)
	assert.Equal(t, 3, overview.TotalOperators)
	assert.Equal(t, 1, overview.OperatorsWithWarnings)
	assert.Equal(t, 1, overview.OperatorsWithExpiration)
}

func TestQueryService_EmptyStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	active, err := f.queries.ActiveReservations(ctx, "")
	require.NoError(t, err)
	assert.NotNil(t, active)
	assert.Empty(t, active)

	mine, err := f.queries.ReservationsForActor(ctx, guest.ID)
	require.NoError(t, err)
	assert.NotNil(t, mine)
	assert.Empty(t, mine)

	popular, err := f.queries.PopularProperties(ctx, 5)
	require.NoError(t, err)
	assert.NotNil(t, popular)
	assert.Empty(t, popular)

	stats, err := f.queries.AdminStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalProperties)
	assert.Equal(t, 0, stats.ActiveBookings)
	assert.Equal(t, 0, stats.TotalUsers)
	assert.Equal(t, "0.00", stats.Revenue)
	assert.NotNil(t, stats.PropertiesByStatus)

	overview, err := f.queries.FleetOverview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, overview.TotalForklifts)
	assert.Equal(t, 0, overview.ActiveOperations)
	assert.Equal(t, 0, overview.TotalOperators)
	assert.NotNil(t, overview.ForkliftsByStatus)
}
