package service

import (
	"time"

	"martilhaven-backend/internal/domain"

	"github.com/shopspring/decimal"
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Name     string
	Phone    string
}

type ProfileInput struct {
	Name  string
	Email string
	Phone string
}

type UserInput struct {
	Username string
	Email    string
	Password string
	Name     string
	Phone    string
	Role     domain.Role
	Status   domain.UserStatus
}

// UserUpdate carries the admin-editable user fields. Nil fields are left unchanged.
type UserUpdate struct {
	Name   *string
	Phone  *string
	Role   *domain.Role
	Status *domain.UserStatus
}

type PropertyInput struct {
	OwnerID     string
	Title       string
	Description string
	Price       decimal.Decimal
	Location    string
	City        string
	Bedrooms    int
	Bathrooms   int
	MaxGuests   int
	ImageURL    string
	Amenities   []string
	Rating      float64
	Featured    bool
}

type BookingInput struct {
	PropertyID string
	GuestName  string
	GuestEmail string
	CheckIn    time.Time
	CheckOut   time.Time
	Guests     int
	Notes      string
}

// BookingUpdate carries the editable booking fields. Nil fields are left unchanged.
type BookingUpdate struct {
	GuestName  *string
	GuestEmail *string
	CheckIn    *time.Time
	CheckOut   *time.Time
	Guests     *int
	Notes      *string
}

type ForkliftInput struct {
	Code            string
	Model           string
	Type            domain.ForkliftType
	CapacityKg      int
	HourMeter       float64
	Status          domain.ForkliftStatus
	LastMaintenance *time.Time
}

type OperatorInput struct {
	Name              string
	Registration      string
	Email             string
	Phone             string
	Role              domain.OperatorRole
	Status            domain.UserStatus
	ASOExpirationDate time.Time
	NRExpirationDate  time.Time
}

type OperationInput struct {
	ForkliftID       string
	OperatorID       string
	Sector           string
	InitialHourMeter float64
	GasConsumption   *float64
	StartTime        time.Time
	EndTime          *time.Time
	Notes            string
}

// OperationUpdate carries the fields editable while an operation is active. Nil fields are
// left unchanged.
type OperationUpdate struct {
	Sector           *string
	CurrentHourMeter *float64
	GasConsumption   *float64
	StartTime        *time.Time
	EndTime          *time.Time
	Notes            *string
}
