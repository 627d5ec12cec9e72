package domain

import "time"

type OperationStatus string

const (
	OperationStatusActive    OperationStatus = "active"
	OperationStatusCompleted OperationStatus = "completed"
)

func (s OperationStatus) Valid() bool {
	return s == OperationStatusActive || s == OperationStatusCompleted
}

func (s OperationStatus) Terminal() bool {
	return s == OperationStatusCompleted
}

// Operation is a forklift shift. An active operation without EndTime holds the forklift
// indefinitely.
type Operation struct {
	ID               string          `json:"id"`
	ForkliftID       string          `json:"forklift_id"`
	OperatorID       string          `json:"operator_id"`
	Sector           string          `json:"sector"`
	InitialHourMeter float64         `json:"initial_hour_meter"`
	CurrentHourMeter float64         `json:"current_hour_meter"`
	GasConsumption   *float64        `json:"gas_consumption,omitempty"`
	StartTime        time.Time       `json:"start_time"`
	EndTime          *time.Time      `json:"end_time,omitempty"`
	Status           OperationStatus `json:"status"`
	Notes            string          `json:"notes"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	UpdatedBy        string          `json:"updated_by,omitempty"`

	// Derived on read, never stored.
	Duration    *Duration `json:"duration,omitempty"`
	HoursUsed   float64   `json:"hours_used"`
	FuelPerHour float64   `json:"fuel_per_hour"`
}

func (o *Operation) Window() Window {
	return Window{Start: o.StartTime, End: o.EndTime}
}

// MeterReading carries the usage counters recorded when an operation is updated or completed.
type MeterReading struct {
	CurrentHourMeter *float64 `json:"current_hour_meter,omitempty"`
	GasConsumption   *float64 `json:"gas_consumption,omitempty"`
}
