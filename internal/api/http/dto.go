package http

import (
	"time"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/service"
	"martilhaven-backend/internal/utils"

	"github.com/shopspring/decimal"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"max=100"`
	Phone    string `json:"phone" validate:"max=30"`
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type loginResponse struct {
	User *domain.User `json:"user"`
	service.TokenPair
}

type profileRequest struct {
	Name  string `json:"name" validate:"max=100"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"max=30"`
}

type createUserRequest struct {
	Username string            `json:"username" validate:"required,min=3,max=50"`
	Email    string            `json:"email" validate:"required,email"`
	Password string            `json:"password" validate:"required,min=8"`
	Name     string            `json:"name" validate:"max=100"`
	Phone    string            `json:"phone" validate:"max=30"`
	Role     domain.Role       `json:"role" validate:"required,oneof=admin staff owner customer"`
	Status   domain.UserStatus `json:"status" validate:"omitempty,oneof=active inactive"`
}

type updateUserRequest struct {
	Name   *string            `json:"name" validate:"omitempty,max=100"`
	Phone  *string            `json:"phone" validate:"omitempty,max=30"`
	Role   *domain.Role       `json:"role" validate:"omitempty,oneof=admin staff owner customer"`
	Status *domain.UserStatus `json:"status" validate:"omitempty,oneof=active inactive"`
}

type propertyRequest struct {
	OwnerID     string          `json:"owner_id"`
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Location    string          `json:"location"`
	City        string          `json:"city" validate:"max=100"`
	Bedrooms    int             `json:"bedrooms" validate:"gte=0"`
	Bathrooms   int             `json:"bathrooms" validate:"gte=0"`
	MaxGuests   int             `json:"max_guests" validate:"gte=0"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url"`
	Amenities   []string        `json:"amenities"`
	Rating      float64         `json:"rating" validate:"gte=0,lte=5"`
	Featured    bool            `json:"featured"`
}

func (r propertyRequest) input() service.PropertyInput {
	return service.PropertyInput{
		OwnerID:     r.OwnerID,
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Location:    r.Location,
		City:        r.City,
		Bedrooms:    r.Bedrooms,
		Bathrooms:   r.Bathrooms,
		MaxGuests:   r.MaxGuests,
		ImageURL:    r.ImageURL,
		Amenities:   r.Amenities,
		Rating:      r.Rating,
		Featured:    r.Featured,
	}
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// bookingRequest carries stay dates as yyyy-mm-dd strings
type bookingRequest struct {
	PropertyID string `json:"property_id" validate:"required"`
	GuestName  string `json:"guest_name" validate:"required,max=100"`
	GuestEmail string `json:"guest_email" validate:"required,email"`
	CheckIn    string `json:"check_in" validate:"required"`
	CheckOut   string `json:"check_out" validate:"required"`
	Guests     int    `json:"guests" validate:"required,gte=1"`
	Notes      string `json:"notes" validate:"max=1000"`
}

func (r bookingRequest) input() (service.BookingInput, error) {
	checkIn, err := utils.ParseDate(r.CheckIn)
	if err != nil {
		return service.BookingInput{}, domain.NewValidationError("check_in: %v", err)
	}
	checkOut, err := utils.ParseDate(r.CheckOut)
	if err != nil {
		return service.BookingInput{}, domain.NewValidationError("check_out: %v", err)
	}
	return service.BookingInput{
		PropertyID: r.PropertyID,
		GuestName:  r.GuestName,
		GuestEmail: r.GuestEmail,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     r.Guests,
		Notes:      r.Notes,
	}, nil
}

type bookingUpdateRequest struct {
	GuestName  *string `json:"guest_name" validate:"omitempty,max=100"`
	GuestEmail *string `json:"guest_email" validate:"omitempty,email"`
	CheckIn    *string `json:"check_in"`
	CheckOut   *string `json:"check_out"`
	Guests     *int    `json:"guests" validate:"omitempty,gte=1"`
	Notes      *string `json:"notes" validate:"omitempty,max=1000"`
}

func (r bookingUpdateRequest) input() (service.BookingUpdate, error) {
	in := service.BookingUpdate{
		GuestName:  r.GuestName,
		GuestEmail: r.GuestEmail,
		Guests:     r.Guests,
		Notes:      r.Notes,
	}
	if r.CheckIn != nil {
		d, err := utils.ParseDate(*r.CheckIn)
		if err != nil {
			return in, domain.NewValidationError("check_in: %v", err)
		}
		in.CheckIn = &d
	}
	if r.CheckOut != nil {
		d, err := utils.ParseDate(*r.CheckOut)
		if err != nil {
			return in, domain.NewValidationError("check_out: %v", err)
		}
		in.CheckOut = &d
	}
	return in, nil
}

type forkliftRequest struct {
	Code            string                `json:"code" validate:"required,max=20"`
	Model           string                `json:"model" validate:"required,max=100"`
	Type            domain.ForkliftType   `json:"type" validate:"required,oneof=gas electric retractable"`
	CapacityKg      int                   `json:"capacity_kg" validate:"gt=0"`
	HourMeter       float64               `json:"hour_meter" validate:"gte=0"`
	Status          domain.ForkliftStatus `json:"status" validate:"omitempty,oneof=operational maintenance stopped"`
	LastMaintenance *time.Time            `json:"last_maintenance"`
}

func (r forkliftRequest) input() service.ForkliftInput {
	return service.ForkliftInput{
		Code:            r.Code,
		Model:           r.Model,
		Type:            r.Type,
		CapacityKg:      r.CapacityKg,
		HourMeter:       r.HourMeter,
		Status:          r.Status,
		LastMaintenance: r.LastMaintenance,
	}
}

type operatorRequest struct {
	Name              string              `json:"name" validate:"required,max=100"`
	Registration      string              `json:"registration" validate:"required,max=50"`
	Email             string              `json:"email" validate:"omitempty,email"`
	Phone             string              `json:"phone" validate:"max=30"`
	Role              domain.OperatorRole `json:"role" validate:"omitempty,oneof=operator supervisor"`
	Status            domain.UserStatus   `json:"status" validate:"omitempty,oneof=active inactive"`
	ASOExpirationDate string              `json:"aso_expiration_date" validate:"required"`
	NRExpirationDate  string              `json:"nr_expiration_date" validate:"required"`
}

func (r operatorRequest) input() (service.OperatorInput, error) {
	aso, err := utils.ParseDate(r.ASOExpirationDate)
	if err != nil {
		return service.OperatorInput{}, domain.NewValidationError("aso_expiration_date: %v", err)
	}
	nr, err := utils.ParseDate(r.NRExpirationDate)
	if err != nil {
		return service.OperatorInput{}, domain.NewValidationError("nr_expiration_date: %v", err)
	}
	return service.OperatorInput{
		Name:              r.Name,
		Registration:      r.Registration,
		Email:             r.Email,
		Phone:             r.Phone,
		Role:              r.Role,
		Status:            r.Status,
		ASOExpirationDate: aso,
		NRExpirationDate:  nr,
	}, nil
}

type operationRequest struct {
	ForkliftID       string     `json:"forklift_id" validate:"required"`
	OperatorID       string     `json:"operator_id" validate:"required"`
	Sector           string     `json:"sector" validate:"max=100"`
	InitialHourMeter float64    `json:"initial_hour_meter" validate:"gte=0"`
	GasConsumption   *float64   `json:"gas_consumption" validate:"omitempty,gte=0"`
	StartTime        *time.Time `json:"start_time"`
	EndTime          *time.Time `json:"end_time"`
	Notes            string     `json:"notes" validate:"max=1000"`
}

func (r operationRequest) input() service.OperationInput {
	in := service.OperationInput{
		ForkliftID:       r.ForkliftID,
		OperatorID:       r.OperatorID,
		Sector:           r.Sector,
		InitialHourMeter: r.InitialHourMeter,
		GasConsumption:   r.GasConsumption,
		EndTime:          r.EndTime,
		Notes:            r.Notes,
	}
	if r.StartTime != nil {
		in.StartTime = *r.StartTime
	}
	return in
}

type operationUpdateRequest struct {
	Sector           *string    `json:"sector" validate:"omitempty,max=100"`
	CurrentHourMeter *float64   `json:"current_hour_meter" validate:"omitempty,gte=0"`
	GasConsumption   *float64   `json:"gas_consumption" validate:"omitempty,gte=0"`
	StartTime        *time.Time `json:"start_time"`
	EndTime          *time.Time `json:"end_time"`
	Notes            *string    `json:"notes" validate:"omitempty,max=1000"`
}

func (r operationUpdateRequest) input() service.OperationUpdate {
	return service.OperationUpdate{
		Sector:           r.Sector,
		CurrentHourMeter: r.CurrentHourMeter,
		GasConsumption:   r.GasConsumption,
		StartTime:        r.StartTime,
		EndTime:          r.EndTime,
		Notes:            r.Notes,
	}
}

// operationStatusRequest moves an operation; completion may carry the final reading
type operationStatusRequest struct {
	Status           string   `json:"status" validate:"required"`
	CurrentHourMeter *float64 `json:"current_hour_meter" validate:"omitempty,gte=0"`
	GasConsumption   *float64 `json:"gas_consumption" validate:"omitempty,gte=0"`
}

type meterReadingRequest struct {
	CurrentHourMeter *float64 `json:"current_hour_meter" validate:"omitempty,gte=0"`
	GasConsumption   *float64 `json:"gas_consumption" validate:"omitempty,gte=0"`
}
