package domain

import "time"

type ForkliftStatus string

const (
	ForkliftStatusOperational ForkliftStatus = "operational"
	ForkliftStatusMaintenance ForkliftStatus = "maintenance"
	ForkliftStatusStopped     ForkliftStatus = "stopped"
)

func (s ForkliftStatus) Valid() bool {
	switch s {
	case ForkliftStatusOperational, ForkliftStatusMaintenance, ForkliftStatusStopped:
		return true
	}
	return false
}

type ForkliftType string

const (
	ForkliftTypeGas         ForkliftType = "gas"
	ForkliftTypeElectric    ForkliftType = "electric"
	ForkliftTypeRetractable ForkliftType = "retractable"
)

func (t ForkliftType) Valid() bool {
	switch t {
	case ForkliftTypeGas, ForkliftTypeElectric, ForkliftTypeRetractable:
		return true
	}
	return false
}

type Forklift struct {
	ID              string         `json:"id"`
	Code            string         `json:"code"`
	Model           string         `json:"model"`
	Type            ForkliftType   `json:"type"`
	CapacityKg      int            `json:"capacity_kg"`
	HourMeter       float64        `json:"hour_meter"`
	Status          ForkliftStatus `json:"status"`
	LastMaintenance *time.Time     `json:"last_maintenance,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
