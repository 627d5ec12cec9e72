package postgres

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/logger"
	"martilhaven-backend/internal/repository"
)

const bookingColumns = `id, property_id, guest_id, guest_name, guest_email, check_in, check_out, guests, total_price, status, notes, created_at, updated_at, updated_by`

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	b := &domain.Booking{}
	var guestID, updatedBy sql.NullString
	err := row.Scan(&b.ID, &b.PropertyID, &guestID, &b.GuestName, &b.GuestEmail, &b.CheckIn, &b.CheckOut, &b.Guests,
		&b.TotalPrice, &b.Status, &b.Notes, &b.CreatedAt, &b.UpdatedAt, &updatedBy)
	if err != nil {
		return nil, err
	}
	b.GuestID = guestID.String
	b.UpdatedBy = updatedBy.String
	return b, nil
}

// Create relies on the bookings_no_overlap exclusion constraint as the last line of
// defence against double booking across server instances.
func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	logger.EnterMethod("bookingRepository.Create", "bookingID", b.ID, "propertyID", b.PropertyID)

	query := `INSERT INTO bookings (id, property_id, guest_id, guest_name, guest_email, check_in, check_out, guests, total_price, status, notes, created_at, updated_at, updated_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	logger.DatabaseCall("INSERT", "bookings", "bookingID", b.ID)
	_, err := r.db.ExecContext(ctx, query, b.ID, b.PropertyID, nullString(b.GuestID), b.GuestName, b.GuestEmail, b.CheckIn, b.CheckOut,
		b.Guests, b.TotalPrice, b.Status, b.Notes, b.CreatedAt, b.UpdatedAt, nullString(b.UpdatedBy))
	logger.DatabaseResult("INSERT", 1, err, "bookingID", b.ID)

	if err != nil {
		err = classify(err, "booking", b.ID, "failed to create booking")
		logger.ExitMethodWithError("bookingRepository.Create", err, "bookingID", b.ID)
		return err
	}
	logger.ExitMethod("bookingRepository.Create", "bookingID", b.ID)
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, classify(err, "booking", id, "failed to get booking")
	}
	return b, nil
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	query := `UPDATE bookings SET guest_name=$1, guest_email=$2, check_in=$3, check_out=$4, guests=$5, total_price=$6, status=$7, notes=$8,
	          updated_at=$9, updated_by=$10 WHERE id=$11`
	logger.DatabaseCall("UPDATE", "bookings", "bookingID", b.ID, "status", b.Status)
	res, err := r.db.ExecContext(ctx, query, b.GuestName, b.GuestEmail, b.CheckIn, b.CheckOut, b.Guests, b.TotalPrice, b.Status, b.Notes,
		b.UpdatedAt, nullString(b.UpdatedBy), b.ID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "bookingID", b.ID)
		return classify(err, "booking", b.ID, "failed to update booking")
	}
	return requireAffected(res, "booking", b.ID, "failed to update booking")
}

func (r *bookingRepository) List(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, error) {
	if malformedID(f.PropertyID, f.GuestID) {
		return []domain.Booking{}, nil
	}
	ds := dialect.From("bookings").Prepared(true).Select(goqu.L(bookingColumns))
	if f.PropertyID != "" {
		ds = ds.Where(goqu.C("property_id").Eq(f.PropertyID))
	}
	if f.GuestID != "" {
		ds = ds.Where(goqu.C("guest_id").Eq(f.GuestID))
	}
	if f.GuestEmail != "" {
		ds = ds.Where(goqu.L("LOWER(guest_email) = LOWER(?)", f.GuestEmail))
	}
	if len(f.Statuses) > 0 {
		ds = ds.Where(goqu.C("status").In(stringsOf(f.Statuses)))
	}
	query, args, err := ds.Order(order(f.Order)...).ToSQL()
	if err != nil {
		return nil, domain.NewStorageError("failed to build booking query", err)
	}

	logger.DatabaseCall("SELECT", "bookings", "propertyID", f.PropertyID, "guestID", f.GuestID)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, "booking", "", "failed to list bookings")
	}
	defer rows.Close()

	bookings := []domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, classify(err, "booking", "", "failed to scan booking")
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "booking", "", "failed to list bookings")
	}
	logger.DatabaseResult("SELECT", int64(len(bookings)), nil)
	return bookings, nil
}

func (r *bookingRepository) CountByProperty(ctx context.Context) (map[string]int, error) {
	query, args, err := dialect.From("bookings").Prepared(true).
		Select(goqu.C("property_id"), goqu.COUNT("*")).
		Where(goqu.C("status").Neq(string(domain.BookingStatusCancelled))).
		GroupBy(goqu.C("property_id")).
		ToSQL()
	if err != nil {
		return nil, domain.NewStorageError("failed to build booking count query", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, "booking", "", "failed to count bookings")
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var propertyID string
		var n int
		if err := rows.Scan(&propertyID, &n); err != nil {
			return nil, classify(err, "booking", "", "failed to scan booking count")
		}
		counts[propertyID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "booking", "", "failed to count bookings")
	}
	return counts, nil
}
