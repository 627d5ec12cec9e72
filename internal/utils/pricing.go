package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// BookingCostBreakdown provides the nightly breakdown of a stay
type BookingCostBreakdown struct {
	Nights       int             `json:"nights"`
	NightlyPrice decimal.Decimal `json:"nightly_price"`
	Total        decimal.Decimal `json:"total"`
}

// ParseDate converts a yyyy-mm-dd formatted string into a UTC midnight time
func ParseDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if len(strings.Split(dateStr, "-")) != 3 {
		return time.Time{}, fmt.Errorf("invalid date format, expected yyyy-mm-dd")
	}
	t, err := time.ParseInLocation(DateLayout, dateStr, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %v", dateStr, err)
	}
	return t, nil
}

// Nights counts the nights between check-in and check-out. The check-out day is not charged.
func Nights(checkIn, checkOut time.Time) int {
	in := time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(), 0, 0, 0, 0, time.UTC)
	out := time.Date(checkOut.Year(), checkOut.Month(), checkOut.Day(), 0, 0, 0, 0, time.UTC)
	return int(out.Sub(in).Hours() / 24)
}

// CalculateBookingCost prices a stay at the property's nightly rate
func CalculateBookingCost(checkIn, checkOut time.Time, nightlyPrice decimal.Decimal) (BookingCostBreakdown, error) {
	nights := Nights(checkIn, checkOut)
	if nights < 1 {
		return BookingCostBreakdown{}, fmt.Errorf("check-out must be at least one night after check-in")
	}
	if nightlyPrice.IsNegative() {
		return BookingCostBreakdown{}, fmt.Errorf("nightly price must not be negative")
	}
	return BookingCostBreakdown{
		Nights:       nights,
		NightlyPrice: nightlyPrice,
		Total:        nightlyPrice.Mul(decimal.NewFromInt(int64(nights))),
	}, nil
}

// HoursUsed returns the hour meter delta of an operation, never negative
func HoursUsed(initial, current float64) float64 {
	if current < initial {
		return 0
	}
	return current - initial
}

// FuelPerHour returns litres consumed per hour meter unit, or zero when nothing was used
func FuelPerHour(gasConsumption *float64, initial, current float64) float64 {
	hours := HoursUsed(initial, current)
	if gasConsumption == nil || hours == 0 {
		return 0
	}
	return *gasConsumption / hours
}
