package domain

import "time"

// Window is a half-open time interval [Start, End). A nil End is open-ended.
type Window struct {
	Start time.Time
	End   *time.Time
}

// Duration is the elapsed time of a reservation window. Ongoing windows are measured up
// to now; Inconsistent marks an end before the start.
type Duration struct {
	Elapsed        time.Duration `json:"-"`
	ElapsedMinutes int64         `json:"elapsed_minutes"`
	Ongoing        bool          `json:"ongoing"`
	Inconsistent   bool          `json:"inconsistent"`
}

type ReservationKind string

const (
	ReservationKindBooking   ReservationKind = "booking"
	ReservationKindOperation ReservationKind = "operation"
)

// Reservation is the read-side projection shared by bookings and operations.
type Reservation struct {
	Kind       ReservationKind `json:"kind"`
	ID         string          `json:"id"`
	ResourceID string          `json:"resource_id"`
	ActorID    string          `json:"actor_id,omitempty"`
	ActorName  string          `json:"actor_name,omitempty"`
	Start      time.Time       `json:"start"`
	End        *time.Time      `json:"end,omitempty"`
	Status     string          `json:"status"`
	Duration   *Duration       `json:"duration,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

func BookingReservation(b Booking) Reservation {
	end := b.CheckOut
	return Reservation{
		Kind:       ReservationKindBooking,
		ID:         b.ID,
		ResourceID: b.PropertyID,
		ActorID:    b.GuestID,
		ActorName:  b.GuestName,
		Start:      b.CheckIn,
		End:        &end,
		Status:     string(b.Status),
		CreatedAt:  b.CreatedAt,
	}
}

func OperationReservation(o Operation) Reservation {
	return Reservation{
		Kind:       ReservationKindOperation,
		ID:         o.ID,
		ResourceID: o.ForkliftID,
		ActorID:    o.OperatorID,
		Start:      o.StartTime,
		End:        o.EndTime,
		Status:     string(o.Status),
		CreatedAt:  o.CreatedAt,
	}
}

type AdminStats struct {
	TotalProperties    int                    `json:"total_properties"`
	PropertiesByStatus map[PropertyStatus]int `json:"properties_by_status"`
	ActiveBookings     int                    `json:"active_bookings"`
	TotalUsers         int                    `json:"total_users"`
	Revenue            string                 `json:"revenue"`
}

type FleetOverview struct {
	TotalForklifts          int                    `json:"total_forklifts"`
	ForkliftsByStatus       map[ForkliftStatus]int `json:"forklifts_by_status"`
	ActiveOperations        int                    `json:"active_operations"`
	TotalOperators          int                    `json:"total_operators"`
	OperatorsWithWarnings   int                    `json:"operators_with_warnings"`
	OperatorsWithExpiration int                    `json:"operators_with_expired_certificates"`
}
