package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PropertyStatus string

const (
	PropertyStatusPending  PropertyStatus = "pending"
	PropertyStatusApproved PropertyStatus = "approved"
	PropertyStatusRejected PropertyStatus = "rejected"
)

func (s PropertyStatus) Valid() bool {
	switch s {
	case PropertyStatusPending, PropertyStatusApproved, PropertyStatusRejected:
		return true
	}
	return false
}

type Property struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"owner_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Location    string          `json:"location"`
	City        string          `json:"city"`
	Bedrooms    int             `json:"bedrooms"`
	Bathrooms   int             `json:"bathrooms"`
	MaxGuests   int             `json:"max_guests"`
	ImageURL    string          `json:"image_url"`
	Amenities   []string        `json:"amenities"`
	Rating      float64         `json:"rating"`
	Status      PropertyStatus  `json:"status"`
	Featured    bool            `json:"featured"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// PropertyRanking is a property with the number of reservations counted against it.
type PropertyRanking struct {
	Property     Property `json:"property"`
	BookingCount int      `json:"booking_count"`
}
